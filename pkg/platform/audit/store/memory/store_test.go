package memory

import (
	"context"
	"fmt"
	"testing"

	audit "civicfund/pkg/platform/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_ListRecentNewestFirst(t *testing.T) {
	store := NewInMemoryStore(10)
	ctx := context.Background()
	for i := range 3 {
		require.NoError(t, store.Append(ctx, audit.Event{Subject: fmt.Sprintf("c-%d", i)}))
	}

	events, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c-2", events[0].Subject)
	assert.Equal(t, "c-1", events[1].Subject)
}

func TestInMemoryStore_OverwritesOldestWhenFull(t *testing.T) {
	store := NewInMemoryStore(2)
	ctx := context.Background()
	for i := range 5 {
		require.NoError(t, store.Append(ctx, audit.Event{Subject: fmt.Sprintf("c-%d", i)}))
	}

	events, err := store.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c-4", events[0].Subject)
	assert.Equal(t, "c-3", events[1].Subject)
	assert.Equal(t, int64(3), store.Dropped())
}
