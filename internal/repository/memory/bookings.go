package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/parkingly/parkingly-server/internal/domain"
)

type BookingRepository struct {
	mu       sync.RWMutex
	nextID   int64
	bookings map[int64]*domain.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		nextID:   1,
		bookings: make(map[int64]*domain.Booking),
	}
}

func (r *BookingRepository) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *b
	cp.ID = r.nextID
	r.nextID++
	r.bookings[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (r *BookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BookingRepository) GetActiveByUser(_ context.Context, userID int64) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.UserID == userID && b.IsActive() {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *BookingRepository) GetByQRToken(_ context.Context, token string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.QR != nil && b.QR.Token == token {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *BookingRepository) Update(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return errors.New("booking does not exist")
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}
