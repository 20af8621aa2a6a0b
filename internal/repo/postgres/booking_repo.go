package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/enums"
	"github.com/playpal-app/backend/internal/domain/model"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepo struct {
	pool *pgxpool.Pool
}

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{pool: pool}
}

// ExistsOverlapping reports whether any non-cancelled booking on the venue
// intersects the half-open range [startsAt, endsAt). Must run inside the
// transaction that holds the venue row lock.
func (r *BookingRepo) ExistsOverlapping(ctx context.Context, tx pgx.Tx, venueID int64, startsAt, endsAt time.Time) (bool, error) {
	if venueID <= 0 || !startsAt.Before(endsAt) {
		return false, fmt.Errorf("invalid overlap lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM bookings
WHERE venue_id = $1
	AND status <> 'cancelled'
	AND starts_at < $3
	AND $2 < ends_at
LIMIT 1
`, venueID, startsAt.UTC(), endsAt.UTC()).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup overlapping booking: %w", err)
	}

	return true, nil
}

func (r *BookingRepo) Insert(ctx context.Context, tx pgx.Tx, booking model.Booking) (model.Booking, error) {
	if booking.VenueID <= 0 || booking.UserID <= 0 || strings.TrimSpace(booking.Activity) == "" {
		return model.Booking{}, fmt.Errorf("invalid booking payload")
	}
	if !booking.StartsAt.Before(booking.EndsAt) {
		return model.Booking{}, fmt.Errorf("booking range is empty")
	}
	if tx == nil {
		return model.Booking{}, fmt.Errorf("transaction is required")
	}

	reference := uuid.NewString()
	err := tx.QueryRow(ctx, `
INSERT INTO bookings (
	reference,
	venue_id,
	user_id,
	activity,
	starts_at,
	ends_at,
	price_cents,
	status,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, 'confirmed', NOW())
RETURNING id, reference, status, created_at
`, reference, booking.VenueID, booking.UserID, booking.Activity,
		booking.StartsAt.UTC(), booking.EndsAt.UTC(), booking.PriceCents).Scan(
		&booking.ID,
		&booking.Reference,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		return model.Booking{}, fmt.Errorf("insert booking: %w", err)
	}

	return booking, nil
}

func (r *BookingRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, bookingID int64) (model.Booking, error) {
	if bookingID <= 0 {
		return model.Booking{}, fmt.Errorf("invalid booking id")
	}
	if tx == nil {
		return model.Booking{}, fmt.Errorf("transaction is required")
	}

	var booking model.Booking
	err := tx.QueryRow(ctx, `
SELECT id, reference, venue_id, user_id, activity, starts_at, ends_at, price_cents, status, created_at
FROM bookings
WHERE id = $1
FOR UPDATE
`, bookingID).Scan(
		&booking.ID,
		&booking.Reference,
		&booking.VenueID,
		&booking.UserID,
		&booking.Activity,
		&booking.StartsAt,
		&booking.EndsAt,
		&booking.PriceCents,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, fmt.Errorf("get booking: %w", err)
	}

	return booking, nil
}

func (r *BookingRepo) SetStatus(ctx context.Context, tx pgx.Tx, bookingID int64, status enums.BookingStatus) error {
	if bookingID <= 0 || status == "" {
		return fmt.Errorf("invalid booking status payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE bookings
SET status = $2, updated_at = NOW()
WHERE id = $1
`, bookingID, string(status))
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// ListForVenueDay returns the non-cancelled bookings whose range intersects
// [dayStart, dayEnd). Read path for slot generation.
func (r *BookingRepo) ListForVenueDay(ctx context.Context, venueID int64, dayStart, dayEnd time.Time) ([]model.Booking, error) {
	if venueID <= 0 || !dayStart.Before(dayEnd) {
		return nil, fmt.Errorf("invalid venue day payload")
	}
	if r.pool == nil {
		return []model.Booking{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, reference, venue_id, user_id, activity, starts_at, ends_at, price_cents, status, created_at
FROM bookings
WHERE venue_id = $1
	AND status <> 'cancelled'
	AND starts_at < $3
	AND $2 < ends_at
ORDER BY starts_at, id
`, venueID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, fmt.Errorf("list venue day bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *BookingRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Booking, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Booking{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, reference, venue_id, user_id, activity, starts_at, ends_at, price_cents, status, created_at
FROM bookings
WHERE user_id = $1
ORDER BY starts_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func scanBookings(rows pgx.Rows) ([]model.Booking, error) {
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		var booking model.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.Reference,
			&booking.VenueID,
			&booking.UserID,
			&booking.Activity,
			&booking.StartsAt,
			&booking.EndsAt,
			&booking.PriceCents,
			&booking.Status,
			&booking.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate bookings: %w", rows.Err())
	}

	return bookings, nil
}
