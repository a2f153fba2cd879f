package service

import (
	"context"
	"testing"

	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_AdvancesOneStepPerTick(t *testing.T) {
	f := setupInbox(t, true)
	ctx := context.Background()
	seedMessage(t, f) // m1 at "sent"

	sim := NewStatusSimulator(f.repo, f.inbox, 0)

	require.NoError(t, sim.ProcessBatch(ctx))
	stored, err := f.repo.FindByExternalID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, message.StatusDelivered, stored.Status)

	require.NoError(t, sim.ProcessBatch(ctx))
	stored, err = f.repo.FindByExternalID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, message.StatusRead, stored.Status)

	// Terminal state: further ticks change nothing.
	require.NoError(t, sim.ProcessBatch(ctx))
	stored, err = f.repo.FindByExternalID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, message.StatusRead, stored.Status)

	// Two transitions total, fanned out through the normal path.
	assert.Len(t, f.publisher.Events(), 2)
}

func TestSimulator_RespectsPerTickCap(t *testing.T) {
	f := setupInbox(t, true)
	ctx := context.Background()

	for _, raw := range []string{
		`{"entry":[{"changes":[{"value":{"messages":[{"id":"s1","from":"5551111","type":"text","text":{"body":"a"},"timestamp":"1000"}]}}]}]}`,
		`{"entry":[{"changes":[{"value":{"messages":[{"id":"s2","from":"5552222","type":"text","text":{"body":"b"},"timestamp":"1001"}]}}]}]}`,
		`{"entry":[{"changes":[{"value":{"messages":[{"id":"s3","from":"5553333","type":"text","text":{"body":"c"},"timestamp":"1002"}]}}]}]}`,
	} {
		_, err := f.inbox.ProcessEnvelope(ctx, envelope(t, raw))
		require.NoError(t, err)
	}

	sim := NewStatusSimulator(f.repo, f.inbox, 2)
	require.NoError(t, sim.ProcessBatch(ctx))

	all, err := f.repo.All(ctx)
	require.NoError(t, err)

	advanced := 0
	for _, m := range all {
		if m.Status == message.StatusDelivered {
			advanced++
		}
	}
	assert.Equal(t, 2, advanced)
}

func TestSimulator_StopsOnCancelledContext(t *testing.T) {
	f := setupInbox(t, true)
	seedMessage(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := NewStatusSimulator(f.repo, f.inbox, 0)
	err := sim.ProcessBatch(ctx)
	assert.Error(t, err)
}
