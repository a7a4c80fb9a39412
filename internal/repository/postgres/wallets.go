package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parkingly/parkingly-server/internal/domain"
)

type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) Balance(ctx context.Context, userID int64) (int64, error) {
	const q = `SELECT balance FROM wallets WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var balance int64
	err := r.pool.QueryRow(ctx, q, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return balance, err
}

func (r *WalletRepository) Credit(ctx context.Context, userID int64, amount int64) (int64, error) {
	const q = `INSERT INTO wallets (user_id, balance) VALUES ($1,$2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2
		RETURNING balance`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var balance int64
	err := r.pool.QueryRow(ctx, q, userID, amount).Scan(&balance)
	return balance, err
}

// Debit is conditional on the balance covering the amount, so the row can
// never go negative even under concurrent settlements.
func (r *WalletRepository) Debit(ctx context.Context, userID int64, amount int64) (int64, error) {
	const q = `UPDATE wallets SET balance = balance - $2
		WHERE user_id=$1 AND balance >= $2
		RETURNING balance`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var balance int64
	err := r.pool.QueryRow(ctx, q, userID, amount).Scan(&balance)
	if err == pgx.ErrNoRows {
		current, berr := r.Balance(ctx, userID)
		if berr != nil {
			return 0, berr
		}
		return current, domain.ErrInsufficientBalance
	}
	return balance, err
}
