package repository

import (
	"context"
	"time"

	"github.com/parkingly/parkingly-server/internal/domain"
)

// Lookups return (nil, nil) when the row does not exist; callers translate
// that into the appropriate domain error.

type SpotRepository interface {
	List(ctx context.Context) ([]domain.Spot, error)
	GetByID(ctx context.Context, id string) (*domain.Spot, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

type BookingRepository interface {
	// Create assigns the ID and persists the booking.
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// GetActiveByUser returns the user's booking in a non-terminal state,
	// if any. The engine guarantees there is at most one.
	GetActiveByUser(ctx context.Context, userID int64) (*domain.Booking, error)
	GetByQRToken(ctx context.Context, token string) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}

type WalletRepository interface {
	// Balance reports the current balance; unknown users read as zero.
	Balance(ctx context.Context, userID int64) (int64, error)
	Credit(ctx context.Context, userID int64, amount int64) (int64, error)
	// Debit subtracts amount if and only if the balance covers it, returning
	// domain.ErrInsufficientBalance otherwise. The balance never goes negative.
	Debit(ctx context.Context, userID int64, amount int64) (int64, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, e domain.HistoryEntry) error
	ListByUser(ctx context.Context, userID int64) ([]domain.HistoryEntry, error)
	ListEndedSince(ctx context.Context, since time.Time) ([]domain.HistoryEntry, error)
}

type UserRepository interface {
	// Create returns domain.ErrEmailExists when the email is taken.
	Create(ctx context.Context, name, email, passwordHash, role string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
