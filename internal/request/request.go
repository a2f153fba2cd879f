package request

// SchedulerRequest represents the JSON body for simulator control.
type SchedulerRequest struct {
	// Action controls the demo status simulator. Allowed values:
	// - "start": begin advancing statuses on ticks
	// - "stop":  stop advancing
	Action string `json:"action"`
}

// SendMessageRequest is a direct message send, not via webhook.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	From           string `json:"from"`
	To             string `json:"to"`
	Body           string `json:"body"`
	SenderName     string `json:"senderDisplayName,omitempty"`
}

// UpdateStatusRequest asks for one message's status transition.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
