package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencies(t *testing.T) {
	got := Frequencies(map[int]int64{1: 3, 2: 1}, 4)
	assert.InDelta(t, 75.0, got[1], 1e-9)
	assert.InDelta(t, 25.0, got[2], 1e-9)
}

func TestFrequencies_NoUsers(t *testing.T) {
	got := Frequencies(map[int]int64{1: 3}, 0)
	assert.Equal(t, 0.0, got[1])
}

func TestStatistics_Memoized(t *testing.T) {
	store := newFakeUnlocks()
	store.users = 2
	store.preset("alice", 1)

	stats := NewStatistics(store, time.Hour)
	freq, err := stats.Frequencies(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 50.0, freq[1], 1e-9)

	store.preset("bob", 1)
	assert.InDelta(t, 50.0, stats.Frequency(context.Background(), 1), 1e-9, "cached value")

	stats.Invalidate()
	assert.InDelta(t, 100.0, stats.Frequency(context.Background(), 1), 1e-9)
	assert.Equal(t, 0.0, stats.Frequency(context.Background(), 99))
}
