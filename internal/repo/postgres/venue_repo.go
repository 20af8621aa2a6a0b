package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/model"
)

var ErrVenueNotFound = errors.New("venue not found")

type VenueRepo struct {
	pool *pgxpool.Pool
}

func NewVenueRepo(pool *pgxpool.Pool) *VenueRepo {
	return &VenueRepo{pool: pool}
}

func (r *VenueRepo) GetByID(ctx context.Context, venueID int64) (model.Venue, error) {
	if venueID <= 0 {
		return model.Venue{}, fmt.Errorf("invalid venue id")
	}
	if r.pool == nil {
		return model.Venue{}, ErrVenueNotFound
	}
	return r.get(ctx, r.pool, venueID, false)
}

// GetForUpdate loads the venue under a row lock. Booking conflict checks
// run against this lock so overlapping reservation attempts on the same
// venue serialize.
func (r *VenueRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, venueID int64) (model.Venue, error) {
	if venueID <= 0 {
		return model.Venue{}, fmt.Errorf("invalid venue id")
	}
	if tx == nil {
		return model.Venue{}, fmt.Errorf("transaction is required")
	}
	return r.get(ctx, tx, venueID, true)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *VenueRepo) get(ctx context.Context, q rowQuerier, venueID int64, forUpdate bool) (model.Venue, error) {
	query := `
SELECT id, name, location, lat, lon, currency, open_hours
FROM venues
WHERE id = $1
`
	if forUpdate {
		query += "FOR UPDATE\n"
	}

	var venue model.Venue
	var openHoursRaw []byte
	err := q.QueryRow(ctx, query, venueID).Scan(
		&venue.ID,
		&venue.Name,
		&venue.Location,
		&venue.Lat,
		&venue.Lon,
		&venue.Currency,
		&openHoursRaw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Venue{}, ErrVenueNotFound
		}
		return model.Venue{}, fmt.Errorf("get venue: %w", err)
	}

	venue.OpenHours, err = decodeOpenHours(openHoursRaw)
	if err != nil {
		return model.Venue{}, fmt.Errorf("decode venue open hours: %w", err)
	}

	rows, err := q.Query(ctx, `
SELECT activity, hourly_rate_cents
FROM venue_activities
WHERE venue_id = $1
ORDER BY activity
`, venueID)
	if err != nil {
		return model.Venue{}, fmt.Errorf("list venue activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var offer model.VenueActivity
		if err := rows.Scan(&offer.Name, &offer.HourlyRateCents); err != nil {
			return model.Venue{}, fmt.Errorf("scan venue activity: %w", err)
		}
		venue.Offers = append(venue.Offers, offer)
	}
	if rows.Err() != nil {
		return model.Venue{}, fmt.Errorf("iterate venue activities: %w", rows.Err())
	}

	return venue, nil
}

func (r *VenueRepo) List(ctx context.Context, limit int) ([]model.Venue, error) {
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []model.Venue{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name, location, lat, lon, currency, open_hours
FROM venues
ORDER BY name, id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	venues := make([]model.Venue, 0, limit)
	for rows.Next() {
		var venue model.Venue
		var openHoursRaw []byte
		if err := rows.Scan(
			&venue.ID,
			&venue.Name,
			&venue.Location,
			&venue.Lat,
			&venue.Lon,
			&venue.Currency,
			&openHoursRaw,
		); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venue.OpenHours, err = decodeOpenHours(openHoursRaw)
		if err != nil {
			return nil, fmt.Errorf("decode venue open hours: %w", err)
		}
		venues = append(venues, venue)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate venues: %w", rows.Err())
	}

	return venues, nil
}

// open_hours is stored as jsonb keyed by weekday digit, e.g.
// {"1": {"open": "09:00", "close": "17:00"}}.
func decodeOpenHours(raw []byte) (model.OpenHours, error) {
	if len(raw) == 0 {
		return model.OpenHours{}, nil
	}

	byDay := map[string]model.DayWindow{}
	if err := json.Unmarshal(raw, &byDay); err != nil {
		return nil, err
	}

	hours := make(model.OpenHours, len(byDay))
	for key, window := range byDay {
		day, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || day < 0 || day > 6 {
			return nil, fmt.Errorf("invalid weekday key %q", key)
		}
		hours[day] = window
	}

	return hours, nil
}
