package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	domain "github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/emirhansari/whatsapp-inbox/internal/request"
	"github.com/emirhansari/whatsapp-inbox/internal/response"
	"github.com/emirhansari/whatsapp-inbox/internal/scheduler"
	"github.com/emirhansari/whatsapp-inbox/internal/service"
)

// MessageHandler wires the read API, direct send and status updates to the
// inbox service, plus the demo simulator's control surface.
type MessageHandler struct {
	inbox  service.InboxService
	schSvc scheduler.SchedulerService
}

// NewMessageHandler constructs a new MessageHandler with its dependencies.
func NewMessageHandler(inbox service.InboxService, schSvc scheduler.SchedulerService) *MessageHandler {
	return &MessageHandler{
		inbox:  inbox,
		schSvc: schSvc,
	}
}

// ListConversations godoc
// @Summary     List conversations
// @Description Returns conversation summaries, most recently active first.
// @Tags        conversations
// @Produce     json
// @Success     200 {object} response.ConversationsResponse
// @Failure     500 {object} map[string]string
// @Router      /conversations [get]
func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.inbox.ListConversations(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := response.ConversationsPayload{
		Items: response.FromDomainConversations(summaries),
		Total: len(summaries),
	}

	response.RespondJSON(w, http.StatusOK, payload)
}

// ListMessages godoc
// @Summary     List a conversation's messages
// @Description Returns one conversation's messages ascending by send time.
// @Tags        conversations
// @Produce     json
// @Param       id path string true "Conversation ID"
// @Success     200 {object} response.MessagesResponse
// @Failure     500 {object} map[string]string
// @Router      /conversations/{id}/messages [get]
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	if conversationID == "" {
		response.RespondError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	msgs, err := h.inbox.ListMessages(r.Context(), conversationID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := response.MessagesPayload{
		Items: response.FromDomainMessages(msgs),
		Total: len(msgs),
	}

	response.RespondJSON(w, http.StatusOK, payload)
}

// SendMessage godoc
// @Summary     Send a message
// @Description Persists a directly sent message with status "sent" and fans out new-message.
// @Tags        messages
// @Accept      json
// @Produce     json
// @Param       request body request.SendMessageRequest true "Message to send"
// @Success     201 {object} response.MessageResponse
// @Failure     400 {object} map[string]string
// @Failure     500 {object} map[string]string
// @Router      /messages [post]
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req request.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.inbox.SendMessage(r.Context(), service.SendInput{
		ConversationID: req.ConversationID,
		From:           req.From,
		To:             req.To,
		Body:           req.Body,
		SenderName:     req.SenderName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrMissingField) {
			response.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, response.FromDomainMessage(msg))
}

// UpdateStatus godoc
// @Summary     Update a message's status
// @Description Applies a forward status transition; redundant requests are accepted as no-ops.
// @Tags        messages
// @Accept      json
// @Produce     json
// @Param       id      path string                      true "External message ID"
// @Param       request body request.UpdateStatusRequest true "Target status"
// @Success     200 {object} response.MessageResponse
// @Failure     400 {object} map[string]string
// @Failure     404 {object} map[string]string
// @Failure     500 {object} map[string]string
// @Router      /messages/{id}/status [patch]
func (h *MessageHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	externalID := r.PathValue("id")
	if externalID == "" {
		response.RespondError(w, http.StatusBadRequest, "message id is required")
		return
	}

	var req request.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.inbox.ApplyTransition(r.Context(), externalID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			response.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			response.RespondError(w, http.StatusNotFound, err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, response.FromDomainMessage(res.Message))
}

// StartStopScheduler godoc
// @Summary     Control the demo simulator
// @Description Starts or stops the background status simulator.
// @Tags        scheduler
// @Accept      json
// @Produce     json
// @Param       request body request.SchedulerRequest true "Scheduler action (start|stop)"
// @Success     200 {object} response.SchedulerControlResponse
// @Failure     400 {object} map[string]string
// @Router      /scheduler [post]
func (h *MessageHandler) StartStopScheduler(w http.ResponseWriter, r *http.Request) {
	var req request.SchedulerRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Action {
	case "start":
		if err := h.schSvc.Start(); err != nil {
			response.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, response.SchedulerControlPayload{
			Message: "simulator started",
		})

	case "stop":
		if err := h.schSvc.Stop(); err != nil {
			response.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, response.SchedulerControlPayload{
			Message: "simulator stopped",
		})

	default:
		response.RespondError(w, http.StatusBadRequest, "action must be 'start' or 'stop'")
	}
}
