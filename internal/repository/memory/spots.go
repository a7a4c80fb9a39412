package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/parkingly/parkingly-server/internal/domain"
)

type SpotRepository struct {
	mu    sync.RWMutex
	order []string
	spots map[string]*domain.Spot
}

// NewSpotRepository seeds count spots named Slot 1..N with codes P-1..P-N,
// all on level 1 and available.
func NewSpotRepository(count int, ratePerHour int64) *SpotRepository {
	r := &SpotRepository{spots: make(map[string]*domain.Spot)}
	for i := 1; i <= count; i++ {
		id := fmt.Sprintf("S%d", i)
		r.order = append(r.order, id)
		r.spots[id] = &domain.Spot{
			ID:          id,
			Name:        fmt.Sprintf("Slot %d", i),
			Code:        fmt.Sprintf("P-%d", i),
			Level:       1,
			IsAvailable: true,
			RatePerHour: ratePerHour,
		}
	}
	return r
}

func (r *SpotRepository) List(_ context.Context) ([]domain.Spot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Spot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.spots[id])
	}
	return out, nil
}

func (r *SpotRepository) GetByID(_ context.Context, id string) (*domain.Spot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.spots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SpotRepository) SetAvailability(_ context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.spots[id]
	if !ok {
		return domain.ErrSpotNotFound
	}
	s.IsAvailable = available
	return nil
}
