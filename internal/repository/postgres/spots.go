package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parkingly/parkingly-server/internal/domain"
)

type SpotRepository struct {
	pool *pgxpool.Pool
}

func NewSpotRepository(pool *pgxpool.Pool) *SpotRepository {
	return &SpotRepository{pool: pool}
}

const spotCols = `id, name, code, level, is_available, rate_per_hour`

func (r *SpotRepository) List(ctx context.Context) ([]domain.Spot, error) {
	const q = `SELECT ` + spotCols + ` FROM spots ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spots []domain.Spot
	for rows.Next() {
		var s domain.Spot
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Level, &s.IsAvailable, &s.RatePerHour); err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

func (r *SpotRepository) GetByID(ctx context.Context, id string) (*domain.Spot, error) {
	const q = `SELECT ` + spotCols + ` FROM spots WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Spot
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.Name, &s.Code, &s.Level, &s.IsAvailable, &s.RatePerHour)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SpotRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	const q = `UPDATE spots SET is_available=$2 WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSpotNotFound
	}
	return nil
}
