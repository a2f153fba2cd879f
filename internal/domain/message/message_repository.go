package message

import "context"

// Repository defines the persistence operations for Message records.
//
// It is implemented by infrastructure layers (e.g. GORM) while the service
// layer depends only on this interface.
type Repository interface {
	// FindByExternalID returns the message with the given external ID,
	// or ErrNotFound.
	FindByExternalID(ctx context.Context, externalID string) (*Message, error)

	// Insert persists a new message. Returns ErrDuplicateMessage when the
	// external ID is already present; the store is the dedup authority even
	// though the pipeline checks first.
	Insert(ctx context.Context, m *Message) error

	// UpdateStatus sets the status of the message with the given external ID
	// in a single conditional update (no lost updates under concurrent
	// transitions for the same ID) and returns the updated message, or
	// ErrNotFound when no row matched.
	UpdateStatus(ctx context.Context, externalID string, status Status) (*Message, error)

	// ListByConversation returns a conversation's messages ascending by
	// send timestamp.
	ListByConversation(ctx context.Context, conversationID string) ([]*Message, error)

	// All returns every stored message, in no particular order. Used only
	// for conversation aggregation.
	All(ctx context.Context) ([]*Message, error)
}
