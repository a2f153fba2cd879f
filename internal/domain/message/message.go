// Package message holds the domain model and invariants for chat messages.
package message

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentType classifies what kind of content a message carries.
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentImage    ContentType = "image"
	ContentDocument ContentType = "document"
	ContentAudio    ContentType = "audio"
	ContentVideo    ContentType = "video"
	ContentOther    ContentType = "other"
)

// Status is the delivery state of a message. It only ever moves forward:
// pending -> sent -> delivered -> read.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// BusinessSenderName is the display name recorded when the business side
// of a conversation is the sender.
const BusinessSenderName = "Business"

// UnknownSenderName is recorded when the upstream payload carries no
// contact profile for an external sender.
const UnknownSenderName = "Unknown"

var (
	// ErrMissingField is returned when an inbound payload or request lacks
	// a required field. Nothing is persisted in that case.
	ErrMissingField = errors.New("required field is missing")
	// ErrDuplicateMessage is returned when a message with the same external
	// ID has already been stored.
	ErrDuplicateMessage = errors.New("message already exists")
	// ErrInvalidStatus is returned for status values outside the recognized set.
	ErrInvalidStatus = errors.New("invalid status value")
	// ErrNotFound is returned when a lookup or transition targets an unknown
	// external message ID.
	ErrNotFound = errors.New("message not found")
)

// statusRank orders the recognized delivery states.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusSent:      1,
	StatusDelivered: 2,
	StatusRead:      3,
}

// ParseStatus validates a raw status string against the recognized set.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := statusRank[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// IsForward reports whether moving from one status to another is a strictly
// forward transition. Both statuses must be recognized.
func IsForward(from, to Status) bool {
	a, okA := statusRank[from]
	b, okB := statusRank[to]
	return okA && okB && b > a
}

// Message is the canonical unit stored by the inbox: one chat message
// between the business and one external party.
type Message struct {
	ConversationID string
	ExternalID     string
	From           string
	To             string
	Timestamp      time.Time
	ContentType    ContentType
	Body           string
	Status         Status
	SenderName     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizeNumber reduces a phone-number-like string to its digits so the
// same party always yields the same conversation key, regardless of
// formatting.
func NormalizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ConversationIDFor derives the stable conversation key for the external
// party's number. The same derivation applies whether the business sent or
// received the message.
func ConversationIDFor(externalNumber string) string {
	return "conv_" + NormalizeNumber(externalNumber)
}

// NumberFromConversationID recovers the external party's number from a
// conversation key, for display fallbacks ("+<number>").
func NumberFromConversationID(conversationID string) string {
	return strings.TrimPrefix(conversationID, "conv_")
}

// ExternalParty picks which of from/to is the non-business side. It returns
// ErrMissingField when the business number is blank or the derived external
// number normalizes to empty, since the conversation key would otherwise be
// a guess.
func ExternalParty(from, to, businessNumber string) (string, error) {
	business := NormalizeNumber(businessNumber)
	if business == "" {
		return "", fmt.Errorf("%w: business number", ErrMissingField)
	}

	party := from
	if NormalizeNumber(from) == business {
		party = to
	}
	if NormalizeNumber(party) == "" {
		return "", fmt.Errorf("%w: external party number", ErrMissingField)
	}
	return party, nil
}

// NewOutbound constructs a directly sent message. A direct send is
// considered delivered-to-the-wire immediately, so it starts at "sent"
// with a fresh internal external ID.
func NewOutbound(conversationID, from, to, body, senderName string) (*Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	body = strings.TrimSpace(body)

	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversationId", ErrMissingField)
	}
	if from == "" {
		return nil, fmt.Errorf("%w: from", ErrMissingField)
	}
	if to == "" {
		return nil, fmt.Errorf("%w: to", ErrMissingField)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: body", ErrMissingField)
	}
	if senderName == "" {
		senderName = BusinessSenderName
	}

	now := time.Now()
	return &Message{
		ConversationID: conversationID,
		ExternalID:     "out_" + uuid.NewString(),
		From:           from,
		To:             to,
		Timestamp:      now,
		ContentType:    ContentText,
		Body:           body,
		Status:         StatusSent,
		SenderName:     senderName,
		CreatedAt:      now,
	}, nil
}
