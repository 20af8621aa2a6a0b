package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/model"
	"github.com/playpal-app/backend/internal/domain/rules"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepo struct {
	pool *pgxpool.Pool
}

type ActiveMatchRecord struct {
	ID            int64
	PartnerUserID int64
	CreatedAt     time.Time
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// Activate find-or-creates the canonical match row for the unordered pair
// and ensures it is active. The unique index on (user_a_id, user_b_id)
// plus the canonical ordering guarantee at most one row per pair ever; a
// re-match after an unmatch reactivates the same row.
func (r *MatchRepo) Activate(ctx context.Context, tx pgx.Tx, userID, partnerID int64) (model.Match, error) {
	if userID <= 0 || partnerID <= 0 || userID == partnerID {
		return model.Match{}, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return model.Match{}, fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, partnerID)

	var match model.Match
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	active,
	created_at
) VALUES ($1, $2, TRUE, NOW())
ON CONFLICT (user_a_id, user_b_id) DO UPDATE SET
	active = TRUE,
	updated_at = NOW()
RETURNING id, user_a_id, user_b_id, active, created_at
`, userA, userB).Scan(
		&match.ID,
		&match.UserAID,
		&match.UserBID,
		&match.Active,
		&match.CreatedAt,
	)
	if err != nil {
		return model.Match{}, fmt.Errorf("activate match: %w", err)
	}

	return match, nil
}

// Deactivate flags the canonical row inactive. The row and the swipes that
// produced it are kept; a later mutual re-like reactivates the same row.
func (r *MatchRepo) Deactivate(ctx context.Context, tx pgx.Tx, userID, partnerID int64) (bool, error) {
	if userID <= 0 || partnerID <= 0 || userID == partnerID {
		return false, fmt.Errorf("invalid unmatch payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, partnerID)

	result, err := tx.Exec(ctx, `
UPDATE matches
SET active = FALSE, updated_at = NOW()
WHERE user_a_id = $1 AND user_b_id = $2 AND active
`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("deactivate match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *MatchRepo) GetByUsers(ctx context.Context, userID, partnerID int64) (model.Match, error) {
	if userID <= 0 || partnerID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match lookup payload")
	}
	if r.pool == nil {
		return model.Match{}, ErrMatchNotFound
	}

	userA, userB := rules.CanonicalPair(userID, partnerID)

	var match model.Match
	err := r.pool.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, active, created_at
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB).Scan(
		&match.ID,
		&match.UserAID,
		&match.UserBID,
		&match.Active,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}

	return match, nil
}

func (r *MatchRepo) ListActiveForUser(ctx context.Context, userID int64, limit int) ([]ActiveMatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ActiveMatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	id,
	CASE WHEN user_a_id = $1 THEN user_b_id ELSE user_a_id END AS partner_user_id,
	created_at
FROM matches
WHERE (user_a_id = $1 OR user_b_id = $1) AND active
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list active matches: %w", err)
	}
	defer rows.Close()

	items := make([]ActiveMatchRecord, 0, limit)
	for rows.Next() {
		var item ActiveMatchRecord
		if err := rows.Scan(&item.ID, &item.PartnerUserID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan active match: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active matches: %w", rows.Err())
	}

	return items, nil
}
