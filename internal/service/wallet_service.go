package service

import (
	"context"
	"fmt"

	"github.com/parkingly/parkingly-server/internal/clock"
	"github.com/parkingly/parkingly-server/internal/domain"
	"github.com/parkingly/parkingly-server/internal/repository"
	"github.com/parkingly/parkingly-server/pkg/events"
	"github.com/parkingly/parkingly-server/pkg/logger"
)

type WalletService interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	TopUp(ctx context.Context, userID int64, amount int64) (int64, error)
}

type walletService struct {
	walletRepo repository.WalletRepository
	clock      clock.Clock
	bus        events.Publisher
}

func NewWalletService(walletRepo repository.WalletRepository, clk clock.Clock, bus events.Publisher) WalletService {
	return &walletService{walletRepo: walletRepo, clock: clk, bus: bus}
}

func (s *walletService) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.walletRepo.Balance(ctx, userID)
}

func (s *walletService) TopUp(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	balance, err := s.walletRepo.Credit(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit wallet: %w", err)
	}

	event := events.WalletToppedUpEvent{
		UserID:     userID,
		Amount:     amount,
		Balance:    balance,
		ToppedUpAt: s.clock.Now(),
	}
	if err := s.bus.Publish(ctx, events.WalletToppedUp, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", events.WalletToppedUp, "error", err)
	}

	return balance, nil
}
