package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/enums"
	"github.com/playpal-app/backend/internal/domain/model"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("event registration not found")
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Create(ctx context.Context, tx pgx.Tx, event model.Event) (model.Event, error) {
	if event.OrganizerID <= 0 || strings.TrimSpace(event.Name) == "" || event.Capacity < 1 {
		return model.Event{}, fmt.Errorf("invalid event payload")
	}
	if !event.StartsAt.Before(event.EndsAt) {
		return model.Event{}, fmt.Errorf("event range is empty")
	}
	if tx == nil {
		return model.Event{}, fmt.Errorf("transaction is required")
	}

	status := event.Status
	if status == "" {
		status = enums.EventStatusOpen
	}

	err := tx.QueryRow(ctx, `
INSERT INTO events (
	organizer_id,
	name,
	activity,
	starts_at,
	ends_at,
	capacity,
	registration_closes,
	status,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
RETURNING id, status, created_at
`, event.OrganizerID, event.Name, event.Activity, event.StartsAt.UTC(), event.EndsAt.UTC(),
		event.Capacity, event.RegistrationCloses.UTC(), string(status)).Scan(
		&event.ID,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return event, nil
}

const eventSelect = `
SELECT id, organizer_id, name, activity, starts_at, ends_at, capacity, registration_closes, status, created_at
FROM events
`

func (r *EventRepo) GetByID(ctx context.Context, eventID int64) (model.Event, error) {
	if eventID <= 0 {
		return model.Event{}, fmt.Errorf("invalid event id")
	}
	if r.pool == nil {
		return model.Event{}, ErrEventNotFound
	}

	event, err := scanEvent(r.pool.QueryRow(ctx, eventSelect+`WHERE id = $1
`, eventID))
	if err != nil {
		return model.Event{}, err
	}

	count, err := r.countRegistered(ctx, r.pool, eventID)
	if err != nil {
		return model.Event{}, err
	}
	event.RegisteredCount = count

	return event, nil
}

func (r *EventRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, eventID int64) (model.Event, error) {
	if eventID <= 0 {
		return model.Event{}, fmt.Errorf("invalid event id")
	}
	if tx == nil {
		return model.Event{}, fmt.Errorf("transaction is required")
	}
	return scanEvent(tx.QueryRow(ctx, eventSelect+`WHERE id = $1
FOR UPDATE
`, eventID))
}

func scanEvent(row pgx.Row) (model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Name,
		&event.Activity,
		&event.StartsAt,
		&event.EndsAt,
		&event.Capacity,
		&event.RegistrationCloses,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, ErrEventNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// CountRegistered takes the live occupancy for the event: registration
// capacity is enforced by counting rows, not a denormalized counter.
// Callers on the admission path must hold the event row lock first.
func (r *EventRepo) CountRegistered(ctx context.Context, tx pgx.Tx, eventID int64) (int, error) {
	if eventID <= 0 {
		return 0, fmt.Errorf("invalid event id")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	return r.countRegistered(ctx, tx, eventID)
}

func (r *EventRepo) countRegistered(ctx context.Context, q rowQuerier, eventID int64) (int, error) {
	var count int
	err := q.QueryRow(ctx, `
SELECT COUNT(*)
FROM event_registrations
WHERE event_id = $1 AND status = 'registered'
`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count event registrations: %w", err)
	}
	return count, nil
}

func (r *EventRepo) GetRegistration(ctx context.Context, tx pgx.Tx, eventID, userID int64) (model.EventRegistration, error) {
	if eventID <= 0 || userID <= 0 {
		return model.EventRegistration{}, fmt.Errorf("invalid registration lookup payload")
	}
	if tx == nil {
		return model.EventRegistration{}, fmt.Errorf("transaction is required")
	}

	var registration model.EventRegistration
	err := tx.QueryRow(ctx, `
SELECT event_id, user_id, reference, status, registered_at
FROM event_registrations
WHERE event_id = $1 AND user_id = $2
FOR UPDATE
`, eventID, userID).Scan(
		&registration.EventID,
		&registration.UserID,
		&registration.Reference,
		&registration.Status,
		&registration.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.EventRegistration{}, ErrRegistrationNotFound
		}
		return model.EventRegistration{}, fmt.Errorf("get event registration: %w", err)
	}

	return registration, nil
}

// UpsertRegistration admits the user: a fresh row for a first registration,
// or a status flip back after a cancellation. One row per (event, user).
func (r *EventRepo) UpsertRegistration(ctx context.Context, tx pgx.Tx, eventID, userID int64) (model.EventRegistration, error) {
	if eventID <= 0 || userID <= 0 {
		return model.EventRegistration{}, fmt.Errorf("invalid registration payload")
	}
	if tx == nil {
		return model.EventRegistration{}, fmt.Errorf("transaction is required")
	}

	var registration model.EventRegistration
	err := tx.QueryRow(ctx, `
INSERT INTO event_registrations (event_id, user_id, reference, status, registered_at)
VALUES ($1, $2, $3, 'registered', NOW())
ON CONFLICT (event_id, user_id) DO UPDATE SET
	status = 'registered',
	registered_at = NOW()
RETURNING event_id, user_id, reference, status, registered_at
`, eventID, userID, uuid.NewString()).Scan(
		&registration.EventID,
		&registration.UserID,
		&registration.Reference,
		&registration.Status,
		&registration.RegisteredAt,
	)
	if err != nil {
		return model.EventRegistration{}, fmt.Errorf("upsert event registration: %w", err)
	}

	return registration, nil
}

func (r *EventRepo) SetRegistrationStatus(ctx context.Context, tx pgx.Tx, eventID, userID int64, status enums.RegistrationStatus) error {
	if eventID <= 0 || userID <= 0 || status == "" {
		return fmt.Errorf("invalid registration status payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE event_registrations
SET status = $3
WHERE event_id = $1 AND user_id = $2
`, eventID, userID, string(status))
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

func (r *EventRepo) SetStatus(ctx context.Context, tx pgx.Tx, eventID int64, status enums.EventStatus) error {
	if eventID <= 0 || status == "" {
		return fmt.Errorf("invalid event status payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE events
SET status = $2, updated_at = NOW()
WHERE id = $1
`, eventID, string(status))
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}

	return nil
}

func (r *EventRepo) ListOpen(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []model.Event{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	e.id, e.organizer_id, e.name, e.activity, e.starts_at, e.ends_at,
	e.capacity, e.registration_closes, e.status, e.created_at,
	(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id AND er.status = 'registered')
FROM events e
WHERE e.status = 'open'
ORDER BY e.starts_at, e.id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list open events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0, limit)
	for rows.Next() {
		var event model.Event
		if err := rows.Scan(
			&event.ID,
			&event.OrganizerID,
			&event.Name,
			&event.Activity,
			&event.StartsAt,
			&event.EndsAt,
			&event.Capacity,
			&event.RegistrationCloses,
			&event.Status,
			&event.CreatedAt,
			&event.RegisteredCount,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}

	return events, nil
}
