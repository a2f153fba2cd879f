package messagegorm

import (
	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
)

// toDomain maps a GORM MessageModel to a domain-level Message.
func toDomain(m *MessageModel) *message.Message {
	return &message.Message{
		ConversationID: m.ConversationID,
		ExternalID:     m.ExternalID,
		From:           m.FromNumber,
		To:             m.ToNumber,
		Timestamp:      m.Timestamp,
		ContentType:    message.ContentType(m.ContentType),
		Body:           m.Body,
		Status:         message.Status(m.Status),
		SenderName:     m.SenderName,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// toDomainMany maps a slice of MessageModel to a slice of domain Messages.
func toDomainMany(models []MessageModel) []*message.Message {
	out := make([]*message.Message, len(models))
	for i := range models {
		out[i] = toDomain(&models[i])
	}
	return out
}

// fromDomain maps a domain-level Message to a GORM MessageModel.
func fromDomain(d *message.Message) *MessageModel {
	return &MessageModel{
		ConversationID: d.ConversationID,
		ExternalID:     d.ExternalID,
		FromNumber:     d.From,
		ToNumber:       d.To,
		Timestamp:      d.Timestamp,
		ContentType:    string(d.ContentType),
		Body:           d.Body,
		Status:         string(d.Status),
		SenderName:     d.SenderName,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
