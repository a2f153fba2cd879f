package service

import (
	"context"
	"testing"

	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"github.com/emirhansari/whatsapp-inbox/internal/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedMessage stores m1 at status sent and clears captured events.
func seedMessage(t *testing.T, f *fixture) {
	t.Helper()
	_, err := f.inbox.ProcessEnvelope(context.Background(), envelope(t, messageM1))
	require.NoError(t, err)
	f.publisher.mu.Lock()
	f.publisher.events = nil
	f.publisher.mu.Unlock()
}

func TestApplyTransition_FullChain(t *testing.T) {
	f := setupInbox(t, true)
	ctx := context.Background()
	seedMessage(t, f)

	for _, status := range []string{"delivered", "read"} {
		res, err := f.inbox.ApplyTransition(ctx, "m1", status)
		require.NoError(t, err)
		assert.True(t, res.Applied)
	}

	stored, err := f.repo.FindByExternalID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, message.StatusRead, stored.Status)
	assert.Len(t, f.publisher.Events(), 2)
}

func TestApplyTransition_SkippingDeliveredIsPermitted(t *testing.T) {
	f := setupInbox(t, true)
	ctx := context.Background()
	seedMessage(t, f)

	// sent -> read jumps over delivered; any strictly forward move applies.
	res, err := f.inbox.ApplyTransition(ctx, "m1", "read")
	require.NoError(t, err)
	assert.True(t, res.Applied)

	stored, err := f.repo.FindByExternalID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, message.StatusRead, stored.Status)
}

func TestApplyTransition_BackwardIsNoop(t *testing.T) {
	f := setupInbox(t, true)
	ctx := context.Background()
	seedMessage(t, f)

	_, err := f.inbox.ApplyTransition(ctx, "m1", "read")
	require.NoError(t, err)
	f.publisher.mu.Lock()
	f.publisher.events = nil
	f.publisher.mu.Unlock()

	res, err := f.inbox.ApplyTransition(ctx, "m1", "delivered")
	require.NoError(t, err)
	assert.False(t, res.Applied)

	stored, err := f.repo.FindByExternalID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, message.StatusRead, stored.Status)

	// A rejected transition publishes nothing.
	assert.Empty(t, f.publisher.Events())
}

func TestApplyTransition_RedundantIsNoop(t *testing.T) {
	f := setupInbox(t, true)
	ctx := context.Background()
	seedMessage(t, f)

	res, err := f.inbox.ApplyTransition(ctx, "m1", "sent")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Empty(t, f.publisher.Events())
}

func TestApplyTransition_UnrecognizedStatus(t *testing.T) {
	f := setupInbox(t, true)
	ctx := context.Background()
	seedMessage(t, f)

	_, err := f.inbox.ApplyTransition(ctx, "m1", "teleported")
	assert.ErrorIs(t, err, message.ErrInvalidStatus)

	// The record is untouched.
	stored, err := f.repo.FindByExternalID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, message.StatusSent, stored.Status)
	assert.Empty(t, f.publisher.Events())
}

func TestApplyTransition_UnknownMessage(t *testing.T) {
	f := setupInbox(t, true)

	_, err := f.inbox.ApplyTransition(context.Background(), "ghost", "delivered")
	assert.ErrorIs(t, err, message.ErrNotFound)
	assert.Empty(t, f.publisher.Events())
}

func TestApplyTransition_LenientPolicyAcceptsBackward(t *testing.T) {
	// forwardOnly=false reproduces the permissive reference behavior:
	// any recognized status is applied unconditionally.
	f := setupInbox(t, false)
	ctx := context.Background()
	seedMessage(t, f)

	_, err := f.inbox.ApplyTransition(ctx, "m1", "read")
	require.NoError(t, err)

	res, err := f.inbox.ApplyTransition(ctx, "m1", "delivered")
	require.NoError(t, err)
	assert.True(t, res.Applied)

	stored, err := f.repo.FindByExternalID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, message.StatusDelivered, stored.Status)
}

func TestApplyTransition_PublishesStatusPayload(t *testing.T) {
	f := setupInbox(t, true)
	ctx := context.Background()
	seedMessage(t, f)

	_, err := f.inbox.ApplyTransition(ctx, "m1", "delivered")
	require.NoError(t, err)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, hub.EventStatusUpdated, events[0].Kind)

	payload, ok := events[0].Payload.(hub.StatusPayload)
	require.True(t, ok)
	assert.Equal(t, "m1", payload.ExternalID)
	assert.Equal(t, "delivered", payload.Status)
	assert.False(t, payload.UpdatedAt.IsZero())
}
