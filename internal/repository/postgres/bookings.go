package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parkingly/parkingly-server/internal/domain"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingCols = `id, user_id, spot_id, status,
qr_token, qr_expires_at,
created_at, start_time, end_time, cost, duration_hours, cancelled_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b         domain.Booking
		qrToken   *string
		qrExpires *time.Time
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.SpotID, &b.Status,
		&qrToken, &qrExpires,
		&b.CreatedAt, &b.StartTime, &b.EndTime, &b.Cost, &b.DurationHours, &b.CancelledAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if qrToken != nil && qrExpires != nil {
		b.QR = &domain.QRToken{Token: *qrToken, ExpiresAt: *qrExpires}
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	const q = `INSERT INTO bookings (
		user_id, spot_id, status, qr_token, qr_expires_at, created_at
	) VALUES ($1,$2,$3,$4,$5,$6)
	RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var qrToken *string
	var qrExpires *time.Time
	if b.QR != nil {
		qrToken = &b.QR.Token
		qrExpires = &b.QR.ExpiresAt
	}

	return scanBooking(r.pool.QueryRow(ctx, q,
		b.UserID, b.SpotID, b.Status, qrToken, qrExpires, b.CreatedAt,
	))
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, id))
}

func (r *BookingRepository) GetActiveByUser(ctx context.Context, userID int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
		WHERE user_id=$1 AND status IN ('pending','checked-in')
		ORDER BY created_at DESC LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, userID))
}

func (r *BookingRepository) GetByQRToken(ctx context.Context, token string) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE qr_token=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(r.pool.QueryRow(ctx, q, token))
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	const q = `UPDATE bookings SET
		status=$2, start_time=$3, end_time=$4, cost=$5, duration_hours=$6, cancelled_at=$7
		WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q,
		b.ID, b.Status, b.StartTime, b.EndTime, b.Cost, b.DurationHours, b.CancelledAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("booking does not exist")
	}
	return nil
}
