package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.Profile{}, ErrProfileNotFound
	}

	var profile model.Profile
	err := r.pool.QueryRow(ctx, `
SELECT user_id, display_name, lat, lon, activities, skill_level, play_days
FROM profiles
WHERE user_id = $1
`, userID).Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.Lat,
		&profile.Lon,
		&profile.Activities,
		&profile.SkillLevel,
		&profile.PlayDays,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// ListCandidates returns profiles the viewer has not swiped on and is not
// matched with. The exclusion happens here so the ranking path stays
// read-only and never sees rows the write paths already claimed.
func (r *ProfileRepo) ListCandidates(ctx context.Context, viewerID int64, limit int) ([]model.Profile, error) {
	if viewerID <= 0 {
		return nil, fmt.Errorf("invalid viewer id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT p.user_id, p.display_name, p.lat, p.lon, p.activities, p.skill_level, p.play_days
FROM profiles p
WHERE p.user_id <> $1
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.actor_user_id = $1 AND s.target_user_id = p.user_id
	)
	AND NOT EXISTS (
		SELECT 1
		FROM matches m
		WHERE m.active
			AND m.user_a_id = LEAST($1, p.user_id)
			AND m.user_b_id = GREATEST($1, p.user_id)
	)
ORDER BY p.user_id
LIMIT $2
`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidate profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0, limit)
	for rows.Next() {
		var profile model.Profile
		if err := rows.Scan(
			&profile.UserID,
			&profile.DisplayName,
			&profile.Lat,
			&profile.Lon,
			&profile.Activities,
			&profile.SkillLevel,
			&profile.PlayDays,
		); err != nil {
			return nil, fmt.Errorf("scan candidate profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate candidate profiles: %w", rows.Err())
	}

	return profiles, nil
}
