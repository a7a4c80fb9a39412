package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parkingly/parkingly-server/internal/clock"
	"github.com/parkingly/parkingly-server/internal/domain"
	"github.com/parkingly/parkingly-server/internal/qr"
	"github.com/parkingly/parkingly-server/internal/repository"
	"github.com/parkingly/parkingly-server/pkg/events"
	"github.com/parkingly/parkingly-server/pkg/logger"
)

type ParkingService interface {
	ListSpots(ctx context.Context) ([]domain.Spot, error)
	Book(ctx context.Context, userID int64, spotID string) (*domain.Booking, error)
	ActiveBooking(ctx context.Context, userID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, userID int64) error
	ScanEnter(ctx context.Context, token string) (*domain.Booking, error)
	ScanExit(ctx context.Context, token string) (*domain.Booking, error)
	History(ctx context.Context, userID int64) ([]domain.HistoryEntry, error)
	Reports(ctx context.Context) (*domain.Reports, error)
}

type parkingService struct {
	// One lock serializes every state-mutating operation: two concurrent
	// bookings of the same spot, or an exit-scan racing a cancel, must not
	// both win. Expected load is a handful of spots, so a global lock is
	// the whole concurrency story.
	mu sync.Mutex

	spotRepo    repository.SpotRepository
	bookingRepo repository.BookingRepository
	walletRepo  repository.WalletRepository
	historyRepo repository.HistoryRepository
	userRepo    repository.UserRepository
	issuer      *qr.Issuer
	clock       clock.Clock
	pricing     domain.PricingPolicy
	bus         events.Publisher
}

func NewParkingService(
	spotRepo repository.SpotRepository,
	bookingRepo repository.BookingRepository,
	walletRepo repository.WalletRepository,
	historyRepo repository.HistoryRepository,
	userRepo repository.UserRepository,
	issuer *qr.Issuer,
	clk clock.Clock,
	pricing domain.PricingPolicy,
	bus events.Publisher,
) ParkingService {
	return &parkingService{
		spotRepo:    spotRepo,
		bookingRepo: bookingRepo,
		walletRepo:  walletRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		issuer:      issuer,
		clock:       clk,
		pricing:     pricing,
		bus:         bus,
	}
}

func (s *parkingService) ListSpots(ctx context.Context) ([]domain.Spot, error) {
	return s.spotRepo.List(ctx)
}

func (s *parkingService) Book(ctx context.Context, userID int64, spotID string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spot, err := s.spotRepo.GetByID(ctx, spotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load spot: %w", err)
	}
	if spot == nil {
		return nil, domain.ErrSpotNotFound
	}
	if !domain.IsBookableCode(spot.Code) {
		return nil, domain.ErrSpotNotBookable
	}
	if !spot.IsAvailable {
		return nil, domain.ErrSpotUnavailable
	}

	existing, err := s.bookingRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active booking: %w", err)
	}
	if existing != nil {
		existing, err = s.normalize(ctx, existing)
		if err != nil {
			return nil, err
		}
		if existing.IsActive() {
			return nil, domain.ErrActiveBookingExists
		}
	}

	token, err := s.issuer.Issue()
	if err != nil {
		return nil, fmt.Errorf("failed to issue qr token: %w", err)
	}

	booking := &domain.Booking{
		UserID:    userID,
		SpotID:    spotID,
		Status:    domain.BookingPending,
		QR:        &token,
		CreatedAt: s.clock.Now(),
	}
	created, err := s.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	if err := s.spotRepo.SetAvailability(ctx, spotID, false); err != nil {
		return nil, fmt.Errorf("failed to reserve spot: %w", err)
	}

	s.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID: created.ID,
		UserID:    created.UserID,
		SpotID:    created.SpotID,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: created.CreatedAt,
	})

	return created, nil
}

func (s *parkingService) ActiveBooking(ctx context.Context, userID int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.bookingRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active booking: %w", err)
	}
	if booking == nil {
		return nil, nil
	}
	// The read that observes expiry surfaces the expired booking once; after
	// that the booking is terminal and no longer returned here.
	return s.normalize(ctx, booking)
}

func (s *parkingService) Cancel(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.bookingRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load active booking: %w", err)
	}
	if booking == nil || booking.Status != domain.BookingPending {
		return domain.ErrNoCancellableBooking
	}

	booking, err = s.normalize(ctx, booking)
	if err != nil {
		return err
	}
	if booking.Status == domain.BookingExpired {
		return domain.ErrQRExpired
	}

	now := s.clock.Now()
	booking.Status = domain.BookingCancelled
	booking.CancelledAt = &now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if err := s.spotRepo.SetAvailability(ctx, booking.SpotID, true); err != nil {
		return fmt.Errorf("failed to release spot: %w", err)
	}

	s.publish(ctx, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		SpotID:      booking.SpotID,
		CancelledAt: now,
	})

	return nil
}

func (s *parkingService) ScanEnter(ctx context.Context, token string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.bookingRepo.GetByQRToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up qr token: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrTokenNotFound
	}

	booking, err = s.normalize(ctx, booking)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case domain.BookingPending:
		// fall through to check-in
	case domain.BookingExpired:
		return nil, domain.ErrQRExpired
	case domain.BookingCheckedIn:
		return nil, domain.ErrAlreadyCheckedIn
	default:
		return nil, domain.ErrInvalidState
	}

	now := s.clock.Now()
	booking.Status = domain.BookingCheckedIn
	booking.StartTime = &now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to check in booking: %w", err)
	}

	s.publish(ctx, events.BookingCheckedIn, events.BookingCheckedInEvent{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		SpotID:    booking.SpotID,
		StartTime: now,
	})

	return booking, nil
}

func (s *parkingService) ScanExit(ctx context.Context, token string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, err := s.bookingRepo.GetByQRToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up qr token: %w", err)
	}
	if booking == nil {
		return nil, domain.ErrTokenNotFound
	}
	if booking.Status != domain.BookingCheckedIn {
		return nil, domain.ErrNotCheckedIn
	}

	now := s.clock.Now()
	hours, cost := s.pricing.Quote(now.Sub(*booking.StartTime))

	// No partial settlement: the debit happens before any state changes, so
	// an insufficient balance leaves the booking checked-in, the spot taken
	// and the wallet untouched. The operator retries after a top-up.
	balance, err := s.walletRepo.Debit(ctx, booking.UserID, cost)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingCompleted
	booking.EndTime = &now
	booking.Cost = &cost
	booking.DurationHours = &hours
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}
	if err := s.spotRepo.SetAvailability(ctx, booking.SpotID, true); err != nil {
		return nil, fmt.Errorf("failed to release spot: %w", err)
	}

	spotName := booking.SpotID
	if spot, err := s.spotRepo.GetByID(ctx, booking.SpotID); err == nil && spot != nil {
		spotName = spot.Name
	}

	entry := domain.HistoryEntry{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		SpotName:      spotName,
		StartTime:     *booking.StartTime,
		EndTime:       now,
		DurationHours: hours,
		Cost:          cost,
	}
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record history: %w", err)
	}

	event := events.BookingCompletedEvent{
		BookingID:     booking.ID,
		UserID:        booking.UserID,
		SpotName:      spotName,
		StartTime:     *booking.StartTime,
		EndTime:       now,
		DurationHours: hours,
		Cost:          cost,
		Balance:       balance,
	}
	if user, err := s.userRepo.FindByID(ctx, booking.UserID); err == nil && user != nil {
		event.UserEmail = user.Email
		event.UserName = user.Name
	}
	s.publish(ctx, events.BookingCompleted, event)

	return booking, nil
}

func (s *parkingService) History(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	return s.historyRepo.ListByUser(ctx, userID)
}

func (s *parkingService) Reports(ctx context.Context) (*domain.Reports, error) {
	now := s.clock.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	entries, err := s.historyRepo.ListEndedSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	reports := &domain.Reports{}
	for _, e := range entries {
		reports.MonthRevenue += e.Cost
		if !e.EndTime.Before(todayStart) {
			reports.TodayRevenue += e.Cost
			reports.TodayExits++
		}
		if !e.StartTime.Before(todayStart) {
			reports.TodayEntries++
		}
	}
	return reports, nil
}

// normalize is the single lazy-expiry step: a pending booking whose QR window
// has closed transitions to expired and releases its spot before the calling
// operation proceeds. Callers must hold s.mu.
func (s *parkingService) normalize(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if !booking.QRExpired(s.clock.Now()) {
		return booking, nil
	}

	booking.Status = domain.BookingExpired
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to expire booking: %w", err)
	}
	if err := s.spotRepo.SetAvailability(ctx, booking.SpotID, true); err != nil {
		return nil, fmt.Errorf("failed to release spot: %w", err)
	}

	s.publish(ctx, events.BookingExpired, events.BookingExpiredEvent{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		SpotID:    booking.SpotID,
		ExpiredAt: s.clock.Now(),
	})

	return booking, nil
}

func (s *parkingService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
