package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/emirhansari/whatsapp-inbox/internal/response"
	"github.com/emirhansari/whatsapp-inbox/internal/service"
	"github.com/emirhansari/whatsapp-inbox/internal/webhook"
)

// stubInbox lets each test script the service layer's answers so the tests
// exercise only the HTTP mapping.
type stubInbox struct {
	processResult *service.ProcessResult
	processErr    error

	sendResult *domain.Message
	sendErr    error

	transitionResult *service.TransitionResult
	transitionErr    error

	conversations []*domain.ConversationSummary
	messages      []*domain.Message
	listErr       error
}

func (s *stubInbox) ProcessEnvelope(_ context.Context, _ *webhook.Envelope) (*service.ProcessResult, error) {
	return s.processResult, s.processErr
}

func (s *stubInbox) SendMessage(_ context.Context, _ service.SendInput) (*domain.Message, error) {
	return s.sendResult, s.sendErr
}

func (s *stubInbox) ApplyTransition(_ context.Context, _, _ string) (*service.TransitionResult, error) {
	return s.transitionResult, s.transitionErr
}

func (s *stubInbox) ListConversations(_ context.Context) ([]*domain.ConversationSummary, error) {
	return s.conversations, s.listErr
}

func (s *stubInbox) ListMessages(_ context.Context, _ string) ([]*domain.Message, error) {
	return s.messages, s.listErr
}

var _ service.InboxService = (*stubInbox)(nil)

func postWebhook(t *testing.T, h *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func decodeEnvelopeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.JSONResponse {
	t.Helper()
	var resp response.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func ackFromData(t *testing.T, data interface{}) response.WebhookAckPayload {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	var ack response.WebhookAckPayload
	require.NoError(t, json.Unmarshal(raw, &ack))
	return ack
}

func TestWebhookReceive_NewMessageAck(t *testing.T) {
	inbox := &stubInbox{processResult: &service.ProcessResult{Kind: service.ResultMessage}}
	h := NewWebhookHandler(inbox, nil)

	rec := postWebhook(t, h, `{"entry":[]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelopeResponse(t, rec)
	assert.True(t, resp.Success)

	ack := ackFromData(t, resp.Data)
	assert.True(t, ack.Accepted)
	assert.Empty(t, ack.Note)
}

func TestWebhookReceive_DuplicateIsAckedWithNote(t *testing.T) {
	inbox := &stubInbox{processResult: &service.ProcessResult{
		Kind:      service.ResultMessage,
		Duplicate: true,
	}}
	h := NewWebhookHandler(inbox, nil)

	rec := postWebhook(t, h, `{"entry":[]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	ack := ackFromData(t, decodeEnvelopeResponse(t, rec).Data)
	assert.True(t, ack.Accepted)
	assert.Equal(t, "duplicate message", ack.Note)
}

func TestWebhookReceive_RedundantTransitionNote(t *testing.T) {
	inbox := &stubInbox{processResult: &service.ProcessResult{
		Kind:       service.ResultStatus,
		Transition: &service.TransitionResult{Applied: false},
	}}
	h := NewWebhookHandler(inbox, nil)

	rec := postWebhook(t, h, `{"entry":[]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	ack := ackFromData(t, decodeEnvelopeResponse(t, rec).Data)
	assert.True(t, ack.Accepted)
	assert.Equal(t, "redundant status transition", ack.Note)
}

func TestWebhookReceive_EmptyEnvelopeNote(t *testing.T) {
	inbox := &stubInbox{processResult: &service.ProcessResult{Kind: service.ResultNoop}}
	h := NewWebhookHandler(inbox, nil)

	rec := postWebhook(t, h, `{"entry":[]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	ack := ackFromData(t, decodeEnvelopeResponse(t, rec).Data)
	assert.True(t, ack.Accepted)
	assert.Equal(t, "no messages or statuses in envelope", ack.Note)
}

func TestWebhookReceive_UnknownMessageStatusIsAckedNotRetried(t *testing.T) {
	inbox := &stubInbox{processErr: domain.ErrNotFound}
	h := NewWebhookHandler(inbox, nil)

	rec := postWebhook(t, h, `{"entry":[]}`)

	// A non-2xx would make the source retry forever; acknowledge and drop.
	assert.Equal(t, http.StatusOK, rec.Code)
	ack := ackFromData(t, decodeEnvelopeResponse(t, rec).Data)
	assert.False(t, ack.Accepted)
	assert.Contains(t, ack.Note, "unknown message")
}

func TestWebhookReceive_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"missing field", domain.ErrMissingField},
		{"invalid status", domain.ErrInvalidStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewWebhookHandler(&stubInbox{processErr: tc.err}, nil)

			rec := postWebhook(t, h, `{"entry":[]}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeEnvelopeResponse(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, http.StatusBadRequest, resp.Error.Code)
		})
	}
}

func TestWebhookReceive_MalformedJSON(t *testing.T) {
	h := NewWebhookHandler(&stubInbox{}, nil)

	rec := postWebhook(t, h, `{"entry":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookReceive_SchemaRejectsWrongShape(t *testing.T) {
	validator, err := webhook.NewValidator()
	require.NoError(t, err)

	h := NewWebhookHandler(&stubInbox{}, validator)

	rec := postWebhook(t, h, `{"entry":"not-an-array"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelopeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "schema")
}

func TestWebhookReceive_SchemaAcceptsValidEnvelope(t *testing.T) {
	validator, err := webhook.NewValidator()
	require.NoError(t, err)

	inbox := &stubInbox{processResult: &service.ProcessResult{Kind: service.ResultNoop}}
	h := NewWebhookHandler(inbox, validator)

	rec := postWebhook(t, h, `{"entry":[{"changes":[{"value":{}}]}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookReceive_StoreFailure(t *testing.T) {
	h := NewWebhookHandler(&stubInbox{processErr: assert.AnError}, nil)

	rec := postWebhook(t, h, `{"entry":[]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
