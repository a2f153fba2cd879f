package handler

import (
	"log"
	"net/http"

	"github.com/emirhansari/whatsapp-inbox/internal/hub"
	"github.com/emirhansari/whatsapp-inbox/internal/response"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The inbox UI is served from the same origin in deployment;
		// restrict this when that changes.
		return true
	},
}

// WSHandler upgrades connections into per-conversation hub subscriptions.
type WSHandler struct {
	hub *hub.Hub
}

// NewWSHandler returns a websocket handler over the given hub.
func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{hub: h}
}

// Subscribe godoc
// @Summary     Subscribe to a conversation's live events
// @Description Upgrades to a websocket delivering new-message and message-status-updated events.
// @Tags        live
// @Param       conversation_id query string true "Conversation ID"
// @Success     101 {string} string "Switching Protocols"
// @Failure     400 {object} map[string]string
// @Router      /ws [get]
func (h *WSHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		response.RespondError(w, http.StatusBadRequest, "conversation_id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.Printf("[WS] Upgrade failed for %s: %v", conversationID, err)
		return
	}

	hub.NewWSClient(h.hub, conversationID, conn)
}
