package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	domain "github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/emirhansari/whatsapp-inbox/internal/response"
	"github.com/emirhansari/whatsapp-inbox/internal/service"
	"github.com/emirhansari/whatsapp-inbox/internal/webhook"
)

// maxWebhookBody bounds inbound payload size.
const maxWebhookBody = 1 << 20

// WebhookHandler receives upstream webhook envelopes and feeds the pipeline.
type WebhookHandler struct {
	inbox     service.InboxService
	validator *webhook.Validator
}

// NewWebhookHandler constructs the handler. The validator is optional;
// when nil, bodies go straight to the normalizer.
func NewWebhookHandler(inbox service.InboxService, validator *webhook.Validator) *WebhookHandler {
	return &WebhookHandler{inbox: inbox, validator: validator}
}

// Receive godoc
// @Summary     Ingest a webhook envelope
// @Description Accepts one upstream envelope carrying either a new message or a status update.
// @Tags        webhook
// @Accept      json
// @Produce     json
// @Param       envelope body webhook.Envelope true "Webhook envelope"
// @Success     200 {object} response.WebhookAckResponse
// @Failure     400 {object} map[string]string
// @Failure     500 {object} map[string]string
// @Router      /webhook [post]
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if h.validator != nil {
		if err := h.validator.Validate(body); err != nil {
			response.RespondError(w, http.StatusBadRequest, "envelope does not match schema: "+err.Error())
			return
		}
	}

	var env webhook.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.inbox.ProcessEnvelope(r.Context(), &env)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrInvalidStatus):
			response.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			// The upstream source retries on non-2xx; a status update that
			// outran its message is acknowledged and dropped instead.
			response.RespondJSON(w, http.StatusOK, response.WebhookAckPayload{
				Accepted: false,
				Note:     "status update targets unknown message",
			})
		default:
			response.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	payload := response.WebhookAckPayload{Accepted: true}
	switch {
	case res.Kind == service.ResultNoop:
		payload.Note = "no messages or statuses in envelope"
	case res.Duplicate:
		payload.Note = "duplicate message"
	case res.Transition != nil && !res.Transition.Applied:
		payload.Note = "redundant status transition"
	}

	response.RespondJSON(w, http.StatusOK, payload)
}
