package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	id "civicfund/pkg/domain"
	audit "civicfund/pkg/platform/audit"
	"civicfund/pkg/platform/audit/store/memory"
	"civicfund/pkg/requestcontext"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_SyncModeStampsEvent(t *testing.T) {
	store := memory.NewInMemoryStore(10)
	pub := NewPublisher(store)
	defer pub.Close()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	userID := id.UserID(uuid.New())

	err := pub.Emit(ctx, audit.Event{UserID: userID, Action: string(audit.EventDonationRecorded)})
	require.NoError(t, err)

	events, err := pub.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, now, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore(100)
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Action: string(audit.EventOTPVerified)}))
	}
	pub.Close()

	events, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(1), WithAsyncBuffer(1))
	pub.Close()
	assert.NotPanics(t, pub.Close)
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }
func (failingStore) ListRecent(context.Context, int) ([]audit.Event, error) {
	return nil, nil
}

func TestPublisher_SyncModeReturnsStoreError(t *testing.T) {
	pub := NewPublisher(failingStore{})
	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventUserCreated)})
	assert.Error(t, err)
}
