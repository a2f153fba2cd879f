package service

import (
	"context"
	"fmt"
	"log"

	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/emirhansari/whatsapp-inbox/internal/hub"
)

// TransitionResult reports whether a requested status transition was
// applied. Applied=false with a nil error means the request was redundant
// or backward and was accepted as a no-op.
type TransitionResult struct {
	Applied bool
	Message *message.Message
}

// ApplyTransition validates a requested status, checks it against the
// current record and performs the conditional update. On success the
// message-status-updated event fans out to the conversation channel.
//
// Unrecognized status strings are ErrInvalidStatus; an unknown message ID is
// ErrNotFound (expected under out-of-order delivery, reported not masked).
func (s *inboxService) ApplyTransition(ctx context.Context, externalID, rawStatus string) (*TransitionResult, error) {
	target, err := message.ParseStatus(rawStatus)
	if err != nil {
		log.Printf("[Service] Rejected transition for %s: %v", externalID, err)
		return nil, err
	}

	current, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if s.forwardOnly && !message.IsForward(current.Status, target) {
		log.Printf("[Service] Ignoring %s -> %s for %s: not a forward transition",
			current.Status, target, externalID)
		return &TransitionResult{Applied: false, Message: current}, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, externalID, target)
	if err != nil {
		return nil, fmt.Errorf("update status of %s: %w", externalID, err)
	}

	log.Printf("[Service] Message %s is now %s", externalID, target)
	s.afterWrite(ctx, updated.ConversationID)
	s.publisher.Publish(updated.ConversationID, hub.Event{
		Kind:           hub.EventStatusUpdated,
		ConversationID: updated.ConversationID,
		Payload: hub.StatusPayload{
			ExternalID: updated.ExternalID,
			Status:     string(updated.Status),
			UpdatedAt:  updated.UpdatedAt,
		},
	})

	return &TransitionResult{Applied: true, Message: updated}, nil
}
