package memory

import (
	"context"
	"sync"
	"time"

	"github.com/parkingly/parkingly-server/internal/domain"
)

type HistoryRepository struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Append(_ context.Context, e domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, e)
	return nil
}

func (r *HistoryRepository) ListByUser(_ context.Context, userID int64) ([]domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest first, matching the SQL backend's ordering.
	out := make([]domain.HistoryEntry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID == userID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *HistoryRepository) ListEndedSince(_ context.Context, since time.Time) ([]domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.HistoryEntry, 0)
	for _, e := range r.entries {
		if !e.EndTime.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}
