package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/enums"
	"github.com/playpal-app/backend/internal/domain/model"
	"github.com/playpal-app/backend/internal/domain/rules"
)

var ErrDuplicateSwipe = errors.New("swipe already recorded for this pair")

const uniqueViolationCode = "23505"

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Create records the directional signal. Swipes are immutable and unique
// per ordered pair; the unique index is the authority, so a concurrent
// duplicate surfaces as ErrDuplicateSwipe rather than a second row.
func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction enums.SwipeDirection) (model.Swipe, error) {
	if actorUserID <= 0 || targetUserID <= 0 || direction == "" {
		return model.Swipe{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return model.Swipe{}, fmt.Errorf("transaction is required")
	}

	var swipe model.Swipe
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	direction,
	created_at
) VALUES ($1, $2, $3, NOW())
RETURNING id, actor_user_id, target_user_id, direction, created_at
`, actorUserID, targetUserID, string(direction)).Scan(
		&swipe.ID,
		&swipe.ActorUserID,
		&swipe.TargetUserID,
		&swipe.Direction,
		&swipe.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return model.Swipe{}, ErrDuplicateSwipe
		}
		return model.Swipe{}, fmt.Errorf("insert swipe: %w", err)
	}

	return swipe, nil
}

// LockPair takes a transaction-scoped advisory lock keyed on the canonical
// user pair. Both sides of a reciprocal swipe hash to the same key, so the
// create-lookup-activate window for one pair runs strictly one transaction
// at a time; the lock is released at commit or rollback.
func (r *SwipeRepo) LockPair(ctx context.Context, tx pgx.Tx, userID, partnerID int64) error {
	if userID <= 0 || partnerID <= 0 {
		return fmt.Errorf("invalid pair lock payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	userA, userB := rules.CanonicalPair(userID, partnerID)
	if _, err := tx.Exec(ctx, `
SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))
`, userA, userB); err != nil {
		return fmt.Errorf("lock swipe pair: %w", err)
	}

	return nil
}

// InverseRightExists reports whether target already swiped right on actor.
func (r *SwipeRepo) InverseRightExists(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2 AND direction = 'right'
LIMIT 1
`, targetUserID, actorUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup inverse swipe: %w", err)
	}

	return true, nil
}
