package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
)

// StatusSimulator advances message statuses on scheduler ticks for demo
// traffic. It goes through the same transition path the webhook uses, so
// live viewers see the resulting events exactly as they would in production.
type StatusSimulator struct {
	repo  message.Repository
	inbox InboxService

	// maxPerTick caps how many messages one tick advances.
	maxPerTick int
}

// NewStatusSimulator builds a simulator over the given store and pipeline.
func NewStatusSimulator(repo message.Repository, inbox InboxService, maxPerTick int) *StatusSimulator {
	if maxPerTick <= 0 {
		maxPerTick = 25
	}
	return &StatusSimulator{repo: repo, inbox: inbox, maxPerTick: maxPerTick}
}

// nextStatus is the single forward step the simulator takes per tick.
var nextStatus = map[message.Status]message.Status{
	message.StatusPending:   message.StatusSent,
	message.StatusSent:      message.StatusDelivered,
	message.StatusDelivered: message.StatusRead,
}

// ProcessBatch advances every non-terminal message one step, up to the
// per-tick cap. It satisfies the scheduler's BatchProcessor contract.
func (s *StatusSimulator) ProcessBatch(ctx context.Context) error {
	msgs, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("load messages for simulation: %w", err)
	}

	advanced := 0
	for _, m := range msgs {
		if advanced >= s.maxPerTick {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		next, ok := nextStatus[m.Status]
		if !ok {
			continue
		}

		if _, err := s.inbox.ApplyTransition(ctx, m.ExternalID, string(next)); err != nil {
			// A message deleted or raced away mid-tick is not a batch failure.
			if errors.Is(err, message.ErrNotFound) {
				continue
			}
			log.Printf("[Simulator] Failed to advance %s: %v", m.ExternalID, err)
			continue
		}
		advanced++
	}

	if advanced > 0 {
		log.Printf("[Simulator] Advanced %d message(s).", advanced)
	}
	return nil
}
