package message

import "time"

// ConversationSummary is a derived, read-side view of one conversation.
// It has no independent lifecycle; it is recomputed from the stored
// messages on every read.
type ConversationSummary struct {
	ConversationID  string
	DisplayName     string
	LastMessageBody string
	LastTimestamp   time.Time
	MessageCount    int
	SenderNames     []string
}
