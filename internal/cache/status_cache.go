package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/hirelane/internal/domain"
)

const statusKeyPrefix = "candidate_status:"

// StatusCache stores derived candidate display statuses.
type StatusCache struct {
	cache Cache
	ttl   time.Duration
}

// NewStatusCache wraps c. A non-positive ttl means entries never expire.
func NewStatusCache(c Cache, ttl time.Duration) *StatusCache {
	if ttl < 0 {
		ttl = 0
	}
	return &StatusCache{cache: c, ttl: ttl}
}

func statusKey(candidateID uint) string {
	return fmt.Sprintf("%s%d", statusKeyPrefix, candidateID)
}

// Get returns the cached status. Entries holding an unknown status count as a miss.
func (s *StatusCache) Get(ctx context.Context, candidateID uint) (domain.DisplayStatus, bool, error) {
	var raw string
	hit, err := s.cache.GetJSON(ctx, statusKey(candidateID), &raw)
	if err != nil || !hit {
		return "", false, err
	}
	status, ok := domain.ParseDisplayStatus(raw)
	if !ok {
		return "", false, nil
	}
	return status, true, nil
}

func (s *StatusCache) Set(ctx context.Context, candidateID uint, status domain.DisplayStatus) error {
	return s.cache.SetJSON(ctx, statusKey(candidateID), string(status), s.ttl)
}

func (s *StatusCache) Invalidate(ctx context.Context, candidateID uint) error {
	return s.cache.Del(ctx, statusKey(candidateID))
}
