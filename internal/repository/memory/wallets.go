package memory

import (
	"context"
	"sync"

	"github.com/parkingly/parkingly-server/internal/domain"
)

type WalletRepository struct {
	mu       sync.Mutex
	balances map[int64]int64
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{balances: make(map[int64]int64)}
}

// SetBalance is a test/seed hook.
func (r *WalletRepository) SetBalance(userID, balance int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[userID] = balance
}

func (r *WalletRepository) Balance(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID], nil
}

func (r *WalletRepository) Credit(_ context.Context, userID int64, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.balances[userID] += amount
	return r.balances[userID], nil
}

func (r *WalletRepository) Debit(_ context.Context, userID int64, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	balance := r.balances[userID]
	if balance < amount {
		return balance, domain.ErrInsufficientBalance
	}
	r.balances[userID] = balance - amount
	return r.balances[userID], nil
}
