package webhook

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
)

// Command is the normalized result of one envelope: exactly one of Inbound
// or Status is set. A nil command (with nil error) means the envelope was a
// recognized no-op.
type Command struct {
	Inbound *message.Message
	Status  *StatusCommand
}

// StatusCommand asks the pipeline to move one message to a new status.
type StatusCommand struct {
	ExternalID string
	Status     message.Status
}

// Normalizer maps inbound webhook envelopes into pipeline commands. It
// needs the business number to decide which side of a message is the
// external party.
type Normalizer struct {
	businessNumber string
}

// NewNormalizer returns a normalizer bound to the given business number.
func NewNormalizer(businessNumber string) (*Normalizer, error) {
	if message.NormalizeNumber(businessNumber) == "" {
		return nil, fmt.Errorf("%w: business number", message.ErrMissingField)
	}
	return &Normalizer{businessNumber: businessNumber}, nil
}

// Normalize turns one envelope into zero or one command. Only the first
// entry, change and list element are considered; batch envelopes are a
// known limitation of the upstream format we mirror.
func (n *Normalizer) Normalize(env *Envelope) (*Command, error) {
	value := firstValue(env)
	if value == nil {
		return nil, nil
	}

	if len(value.Messages) > 0 {
		msg, err := n.normalizeMessage(value, &value.Messages[0])
		if err != nil {
			return nil, err
		}
		return &Command{Inbound: msg}, nil
	}

	if len(value.Statuses) > 0 {
		cmd, err := normalizeStatus(&value.Statuses[0])
		if err != nil {
			return nil, err
		}
		return &Command{Status: cmd}, nil
	}

	// Neither messages nor statuses: recognized no-op.
	return nil, nil
}

// firstValue digs out the first change value of the first entry, or nil.
func firstValue(env *Envelope) *Value {
	if env == nil || len(env.Entry) == 0 {
		return nil
	}
	entry := env.Entry[0]
	if len(entry.Changes) == 0 {
		return nil
	}
	return &entry.Changes[0].Value
}

func (n *Normalizer) normalizeMessage(value *Value, rec *InboundRecord) (*message.Message, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return nil, fmt.Errorf("%w: message id", message.ErrMissingField)
	}

	external, err := message.ExternalParty(rec.From, rec.To, n.businessNumber)
	if err != nil {
		return nil, err
	}

	to := rec.To
	if to == "" {
		// Inbound messages usually omit "to"; the business is the recipient.
		to = n.businessNumber
	}

	contentType, body := extractBody(rec)
	now := time.Now()

	return &message.Message{
		ConversationID: message.ConversationIDFor(external),
		ExternalID:     rec.ID,
		From:           rec.From,
		To:             to,
		Timestamp:      parseTimestamp(rec.Timestamp, now),
		ContentType:    contentType,
		Body:           body,
		Status:         message.StatusSent,
		SenderName:     n.senderName(value, rec),
		CreatedAt:      now,
	}, nil
}

func normalizeStatus(rec *StatusRecord) (*StatusCommand, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = strings.TrimSpace(rec.MessageID)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: status message id", message.ErrMissingField)
	}

	status, err := message.ParseStatus(rec.Status)
	if err != nil {
		return nil, err
	}
	// Inbound transitions never target "pending"; a message that exists is
	// already at least sent.
	if status == message.StatusPending {
		return nil, fmt.Errorf("%w: %q", message.ErrInvalidStatus, rec.Status)
	}

	return &StatusCommand{ExternalID: id, Status: status}, nil
}

// extractBody picks the display text for a record based on its content type:
// literal text, a caption or filename when present, or a bracketed
// placeholder otherwise.
func extractBody(rec *InboundRecord) (message.ContentType, string) {
	switch rec.Type {
	case "text":
		if rec.Text != nil {
			return message.ContentText, rec.Text.Body
		}
		return message.ContentText, ""

	case "image":
		if rec.Image != nil && rec.Image.Caption != "" {
			return message.ContentImage, rec.Image.Caption
		}
		return message.ContentImage, "[Image]"

	case "video":
		if rec.Video != nil && rec.Video.Caption != "" {
			return message.ContentVideo, rec.Video.Caption
		}
		return message.ContentVideo, "[Video]"

	case "document":
		if rec.Document != nil {
			if rec.Document.Caption != "" {
				return message.ContentDocument, rec.Document.Caption
			}
			if rec.Document.Filename != "" {
				return message.ContentDocument, rec.Document.Filename
			}
		}
		return message.ContentDocument, "[Document]"

	case "audio":
		return message.ContentAudio, "[Voice Message]"

	default:
		return message.ContentOther, "[" + strings.ToUpper(rec.Type) + "]"
	}
}

// senderName resolves the display name: the upstream contact profile when
// present, "Business" when the business is the sender, "Unknown" otherwise.
func (n *Normalizer) senderName(value *Value, rec *InboundRecord) string {
	if len(value.Contacts) > 0 && value.Contacts[0].Profile.Name != "" {
		return value.Contacts[0].Profile.Name
	}
	if message.NormalizeNumber(rec.From) == message.NormalizeNumber(n.businessNumber) {
		return message.BusinessSenderName
	}
	return message.UnknownSenderName
}

// parseTimestamp interprets the upstream unix-seconds string, falling back
// to the given time when missing or unparsable.
func parseTimestamp(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return time.Unix(secs, 0)
}
