package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySeenStore(t *testing.T) {
	store := NewInMemorySeenStore()
	ctx := context.Background()

	seen, err := store.IsSeen(ctx, "KSEF-2026-0001")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkSeen(ctx, "KSEF-2026-0001"))

	seen, err = store.IsSeen(ctx, "KSEF-2026-0001")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.IsSeen(ctx, "KSEF-2026-0002")
	require.NoError(t, err)
	assert.False(t, seen)
}
