package response

import (
	"time"

	domain "github.com/emirhansari/whatsapp-inbox/internal/domain/message"
)

type WelcomePayload struct {
	Message string `json:"message"`
}

type HealthPayload struct {
	Status string `json:"status"`
}

type WelcomeResponse struct {
	Success   bool           `json:"success"`
	Data      WelcomePayload `json:"data"`
	Timestamp string         `json:"timestamp"`
}

type HealthResponse struct {
	Success   bool          `json:"success"`
	Data      HealthPayload `json:"data"`
	Timestamp string        `json:"timestamp"`
}

type SchedulerControlPayload struct {
	Message string `json:"message"`
}

type SchedulerControlResponse struct {
	Success   bool                    `json:"success"`
	Data      SchedulerControlPayload `json:"data"`
	Timestamp string                  `json:"timestamp"`
}

// WebhookAckPayload reports how an inbound envelope was handled. Accepted
// covers both fresh records and idempotent no-ops (duplicates, redundant
// transitions); Note says which.
type WebhookAckPayload struct {
	Accepted bool   `json:"accepted"`
	Note     string `json:"note,omitempty"`
}

type WebhookAckResponse struct {
	Success   bool              `json:"success"`
	Data      WebhookAckPayload `json:"data"`
	Timestamp string            `json:"timestamp"`
}

// MessageDTO is a public-facing representation of a message used in API
// responses. It decouples the wire format from the domain entity and plays
// nicely with Swagger.
type MessageDTO struct {
	ConversationID string    `json:"conversationId"`
	ExternalID     string    `json:"externalMessageId"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Timestamp      time.Time `json:"timestamp"`
	ContentType    string    `json:"contentType"`
	Body           string    `json:"body"`
	Status         string    `json:"status"`
	SenderName     string    `json:"senderDisplayName"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MessageResponse envelopes a single message, as returned by direct send
// and status update.
type MessageResponse struct {
	Success   bool       `json:"success"`
	Data      MessageDTO `json:"data"`
	Timestamp string     `json:"timestamp"`
}

type MessagesPayload struct {
	Items []MessageDTO `json:"items"`
	Total int          `json:"total"`
}

type MessagesResponse struct {
	Success   bool            `json:"success"`
	Data      MessagesPayload `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// ConversationDTO is the read-side summary of one conversation.
type ConversationDTO struct {
	ConversationID  string    `json:"conversationId"`
	DisplayName     string    `json:"displayName"`
	LastMessageBody string    `json:"lastMessageBody"`
	LastTimestamp   time.Time `json:"lastTimestamp"`
	MessageCount    int       `json:"messageCount"`
	SenderNames     []string  `json:"senderDisplayNames"`
}

type ConversationsPayload struct {
	Items []ConversationDTO `json:"items"`
	Total int               `json:"total"`
}

type ConversationsResponse struct {
	Success   bool                 `json:"success"`
	Data      ConversationsPayload `json:"data"`
	Timestamp string               `json:"timestamp"`
}

// FromDomainMessage converts one domain message into its DTO.
func FromDomainMessage(m *domain.Message) MessageDTO {
	return MessageDTO{
		ConversationID: m.ConversationID,
		ExternalID:     m.ExternalID,
		From:           m.From,
		To:             m.To,
		Timestamp:      m.Timestamp,
		ContentType:    string(m.ContentType),
		Body:           m.Body,
		Status:         string(m.Status),
		SenderName:     m.SenderName,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomainMessages converts domain messages into DTOs for HTTP responses.
func FromDomainMessages(msgs []*domain.Message) []MessageDTO {
	out := make([]MessageDTO, len(msgs))
	for i, m := range msgs {
		out[i] = FromDomainMessage(m)
	}
	return out
}

// FromDomainConversations converts conversation summaries into DTOs.
func FromDomainConversations(summaries []*domain.ConversationSummary) []ConversationDTO {
	out := make([]ConversationDTO, len(summaries))
	for i, s := range summaries {
		out[i] = ConversationDTO{
			ConversationID:  s.ConversationID,
			DisplayName:     s.DisplayName,
			LastMessageBody: s.LastMessageBody,
			LastTimestamp:   s.LastTimestamp,
			MessageCount:    s.MessageCount,
			SenderNames:     s.SenderNames,
		}
	}
	return out
}
