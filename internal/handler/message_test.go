package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/emirhansari/whatsapp-inbox/internal/response"
	"github.com/emirhansari/whatsapp-inbox/internal/service"
)

// stubScheduler records control calls and can be told to fail.
type stubScheduler struct {
	running  bool
	startErr error
	stopErr  error
}

func (s *stubScheduler) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.running = true
	return nil
}

func (s *stubScheduler) Stop() error {
	if s.stopErr != nil {
		return s.stopErr
	}
	s.running = false
	return nil
}

func (s *stubScheduler) IsRunning() bool { return s.running }

// newTestMux mirrors the app's route patterns so PathValue works in tests.
func newTestMux(h *MessageHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations", h.ListConversations)
	mux.HandleFunc("GET /conversations/{id}/messages", h.ListMessages)
	mux.HandleFunc("POST /messages", h.SendMessage)
	mux.HandleFunc("PATCH /messages/{id}/status", h.UpdateStatus)
	mux.HandleFunc("POST /scheduler", h.StartStopScheduler)
	return mux
}

func doRequest(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func sampleMessage() *domain.Message {
	return &domain.Message{
		ConversationID: "conv_905551234567",
		ExternalID:     "wamid.test.1",
		From:           "905551234567",
		To:             "905550001122",
		Timestamp:      time.Unix(1700000000, 0).UTC(),
		ContentType:    domain.ContentText,
		Body:           "hello",
		Status:         domain.StatusSent,
		SenderName:     "Ayşe",
	}
}

func TestListConversations_ReturnsSummaries(t *testing.T) {
	inbox := &stubInbox{conversations: []*domain.ConversationSummary{
		{
			ConversationID:  "conv_905551234567",
			DisplayName:     "Ayşe",
			LastMessageBody: "hello",
			MessageCount:    3,
			SenderNames:     []string{"Ayşe", "Business"},
		},
	}}
	mux := newTestMux(NewMessageHandler(inbox, &stubScheduler{}))

	rec := doRequest(mux, http.MethodGet, "/conversations", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp response.ConversationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "conv_905551234567", resp.Data.Items[0].ConversationID)
	assert.Equal(t, "Ayşe", resp.Data.Items[0].DisplayName)
	assert.Equal(t, 3, resp.Data.Items[0].MessageCount)
}

func TestListConversations_ServiceFailure(t *testing.T) {
	inbox := &stubInbox{listErr: assert.AnError}
	mux := newTestMux(NewMessageHandler(inbox, &stubScheduler{}))

	rec := doRequest(mux, http.MethodGet, "/conversations", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListMessages_ReturnsConversationHistory(t *testing.T) {
	inbox := &stubInbox{messages: []*domain.Message{sampleMessage()}}
	mux := newTestMux(NewMessageHandler(inbox, &stubScheduler{}))

	rec := doRequest(mux, http.MethodGet, "/conversations/conv_905551234567/messages", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp response.MessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "wamid.test.1", resp.Data.Items[0].ExternalID)
	assert.Equal(t, "sent", resp.Data.Items[0].Status)
	assert.Equal(t, "Ayşe", resp.Data.Items[0].SenderName)
}

func TestSendMessage_Created(t *testing.T) {
	msg := sampleMessage()
	inbox := &stubInbox{sendResult: msg}
	mux := newTestMux(NewMessageHandler(inbox, &stubScheduler{}))

	body := `{"conversationId":"conv_905551234567","from":"905550001122","to":"905551234567","body":"hello"}`
	rec := doRequest(mux, http.MethodPost, "/messages", body)

	require.Equal(t, http.StatusCreated, rec.Code)

	// The payload is one message envelope, not a list.
	var resp response.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "wamid.test.1", resp.Data.ExternalID)
	assert.Equal(t, "hello", resp.Data.Body)
}

func TestSendMessage_MissingFields(t *testing.T) {
	inbox := &stubInbox{sendErr: domain.ErrMissingField}
	mux := newTestMux(NewMessageHandler(inbox, &stubScheduler{}))

	rec := doRequest(mux, http.MethodPost, "/messages", `{"body":"hello"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage_MalformedJSON(t *testing.T) {
	mux := newTestMux(NewMessageHandler(&stubInbox{}, &stubScheduler{}))

	rec := doRequest(mux, http.MethodPost, "/messages", `{"body":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_Applied(t *testing.T) {
	msg := sampleMessage()
	msg.Status = domain.StatusDelivered
	inbox := &stubInbox{transitionResult: &service.TransitionResult{Applied: true, Message: msg}}
	mux := newTestMux(NewMessageHandler(inbox, &stubScheduler{}))

	rec := doRequest(mux, http.MethodPatch, "/messages/wamid.test.1/status", `{"status":"delivered"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp response.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "delivered", resp.Data.Status)
	assert.Equal(t, "wamid.test.1", resp.Data.ExternalID)
}

func TestUpdateStatus_UnknownMessage(t *testing.T) {
	inbox := &stubInbox{transitionErr: domain.ErrNotFound}
	mux := newTestMux(NewMessageHandler(inbox, &stubScheduler{}))

	rec := doRequest(mux, http.MethodPatch, "/messages/wamid.missing/status", `{"status":"read"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatus_UnrecognizedStatus(t *testing.T) {
	inbox := &stubInbox{transitionErr: domain.ErrInvalidStatus}
	mux := newTestMux(NewMessageHandler(inbox, &stubScheduler{}))

	rec := doRequest(mux, http.MethodPatch, "/messages/wamid.test.1/status", `{"status":"teleported"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduler_StartAndStop(t *testing.T) {
	sch := &stubScheduler{}
	mux := newTestMux(NewMessageHandler(&stubInbox{}, sch))

	rec := doRequest(mux, http.MethodPost, "/scheduler", `{"action":"start"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sch.running)

	rec = doRequest(mux, http.MethodPost, "/scheduler", `{"action":"stop"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sch.running)
}

func TestScheduler_RejectsUnknownAction(t *testing.T) {
	mux := newTestMux(NewMessageHandler(&stubInbox{}, &stubScheduler{}))

	rec := doRequest(mux, http.MethodPost, "/scheduler", `{"action":"pause"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
