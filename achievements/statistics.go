package achievements

import (
	"context"
	"time"
)

// DefaultFrequencyTTL is how long unlock frequencies are cached.
const DefaultFrequencyTTL = time.Hour

// Statistics computes how many users unlocked each achievement. The result
// scans every unlock and user row, so it is memoized.
type Statistics struct {
	memo *Memo[map[int]float64]
}

// NewStatistics creates statistics over store, cached for ttl.
func NewStatistics(store UnlockStore, ttl time.Duration) *Statistics {
	if ttl <= 0 {
		ttl = DefaultFrequencyTTL
	}
	return &Statistics{
		memo: NewMemo(ttl, func(ctx context.Context) (map[int]float64, error) {
			counts, err := store.CountByAchievement(ctx)
			if err != nil {
				return nil, err
			}
			users, err := store.CountUsers(ctx)
			if err != nil {
				return nil, err
			}
			return Frequencies(counts, users), nil
		}),
	}
}

// Frequencies returns the unlock percentage per achievement id.
func (s *Statistics) Frequencies(ctx context.Context) (map[int]float64, error) {
	return s.memo.Get(ctx)
}

// Frequency returns the unlock percentage of one achievement, or 0 if the
// statistics cannot be loaded.
func (s *Statistics) Frequency(ctx context.Context, id int) float64 {
	freq, err := s.Frequencies(ctx)
	if err != nil {
		return 0
	}
	return freq[id]
}

// Invalidate forces the next call to reload.
func (s *Statistics) Invalidate() {
	s.memo.Invalidate()
}

// Frequencies converts unlock counts into percentages of users. With no
// users every frequency is 0.
func Frequencies(counts map[int]int64, users int64) map[int]float64 {
	out := make(map[int]float64, len(counts))
	for id, n := range counts {
		if users <= 0 {
			out[id] = 0
			continue
		}
		out[id] = float64(n) / float64(users) * 100
	}
	return out
}
