package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parkingly/parkingly-server/internal/domain"
)

type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

const historyCols = `booking_id, user_id, spot_name, start_time, end_time, duration_hours, cost`

func (r *HistoryRepository) Append(ctx context.Context, e domain.HistoryEntry) error {
	const q = `INSERT INTO history (` + historyCols + `) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q,
		e.BookingID, e.UserID, e.SpotName, e.StartTime, e.EndTime, e.DurationHours, e.Cost,
	)
	return err
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	const q = `SELECT ` + historyCols + ` FROM history WHERE user_id=$1 ORDER BY end_time DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.list(ctx, q, userID)
}

func (r *HistoryRepository) ListEndedSince(ctx context.Context, since time.Time) ([]domain.HistoryEntry, error) {
	const q = `SELECT ` + historyCols + ` FROM history WHERE end_time >= $1 ORDER BY end_time DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.list(ctx, q, since)
}

func (r *HistoryRepository) list(ctx context.Context, q string, arg interface{}) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.BookingID, &e.UserID, &e.SpotName, &e.StartTime, &e.EndTime, &e.DurationHours, &e.Cost); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
