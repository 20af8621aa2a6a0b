package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/enums"
	"github.com/playpal-app/backend/internal/domain/model"
)

var (
	ErrGametimeNotFound = errors.New("gametime not found")
	ErrGametimeFull     = errors.New("gametime is full")
	ErrPlayerNotFound   = errors.New("gametime player not found")
)

type GametimeRepo struct {
	pool *pgxpool.Pool
}

func NewGametimeRepo(pool *pgxpool.Pool) *GametimeRepo {
	return &GametimeRepo{pool: pool}
}

// Create inserts the gametime with the creator already admitted, so the
// counter starts at 1 and the creator holds a joined row from the start.
func (r *GametimeRepo) Create(ctx context.Context, tx pgx.Tx, gametime model.Gametime) (model.Gametime, error) {
	if gametime.CreatorID <= 0 || strings.TrimSpace(gametime.Activity) == "" || gametime.Capacity < 1 {
		return model.Gametime{}, fmt.Errorf("invalid gametime payload")
	}
	if !gametime.StartsAt.Before(gametime.EndsAt) {
		return model.Gametime{}, fmt.Errorf("gametime range is empty")
	}
	if tx == nil {
		return model.Gametime{}, fmt.Errorf("transaction is required")
	}

	err := tx.QueryRow(ctx, `
INSERT INTO gametimes (
	creator_id,
	activity,
	starts_at,
	ends_at,
	capacity,
	player_count,
	status,
	created_at
) VALUES ($1, $2, $3, $4, $5, 1, 'upcoming', NOW())
RETURNING id, player_count, status, created_at
`, gametime.CreatorID, gametime.Activity, gametime.StartsAt.UTC(), gametime.EndsAt.UTC(), gametime.Capacity).Scan(
		&gametime.ID,
		&gametime.PlayerCount,
		&gametime.Status,
		&gametime.CreatedAt,
	)
	if err != nil {
		return model.Gametime{}, fmt.Errorf("insert gametime: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO gametime_players (gametime_id, user_id, status, joined_at)
VALUES ($1, $2, 'joined', NOW())
`, gametime.ID, gametime.CreatorID); err != nil {
		return model.Gametime{}, fmt.Errorf("insert creator player: %w", err)
	}

	return gametime, nil
}

func (r *GametimeRepo) GetByID(ctx context.Context, gametimeID int64) (model.Gametime, error) {
	if gametimeID <= 0 {
		return model.Gametime{}, fmt.Errorf("invalid gametime id")
	}
	if r.pool == nil {
		return model.Gametime{}, ErrGametimeNotFound
	}
	return scanGametime(r.pool.QueryRow(ctx, gametimeSelect+`WHERE id = $1
`, gametimeID))
}

func (r *GametimeRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, gametimeID int64) (model.Gametime, error) {
	if gametimeID <= 0 {
		return model.Gametime{}, fmt.Errorf("invalid gametime id")
	}
	if tx == nil {
		return model.Gametime{}, fmt.Errorf("transaction is required")
	}
	return scanGametime(tx.QueryRow(ctx, gametimeSelect+`WHERE id = $1
FOR UPDATE
`, gametimeID))
}

const gametimeSelect = `
SELECT id, creator_id, activity, starts_at, ends_at, capacity, player_count, status, created_at
FROM gametimes
`

func scanGametime(row pgx.Row) (model.Gametime, error) {
	var gametime model.Gametime
	err := row.Scan(
		&gametime.ID,
		&gametime.CreatorID,
		&gametime.Activity,
		&gametime.StartsAt,
		&gametime.EndsAt,
		&gametime.Capacity,
		&gametime.PlayerCount,
		&gametime.Status,
		&gametime.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Gametime{}, ErrGametimeNotFound
		}
		return model.Gametime{}, fmt.Errorf("get gametime: %w", err)
	}
	return gametime, nil
}

func (r *GametimeRepo) GetPlayer(ctx context.Context, tx pgx.Tx, gametimeID, userID int64) (model.GametimePlayer, error) {
	if gametimeID <= 0 || userID <= 0 {
		return model.GametimePlayer{}, fmt.Errorf("invalid player lookup payload")
	}
	if tx == nil {
		return model.GametimePlayer{}, fmt.Errorf("transaction is required")
	}

	var player model.GametimePlayer
	err := tx.QueryRow(ctx, `
SELECT gametime_id, user_id, status, joined_at
FROM gametime_players
WHERE gametime_id = $1 AND user_id = $2
FOR UPDATE
`, gametimeID, userID).Scan(
		&player.GametimeID,
		&player.UserID,
		&player.Status,
		&player.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GametimePlayer{}, ErrPlayerNotFound
		}
		return model.GametimePlayer{}, fmt.Errorf("get gametime player: %w", err)
	}

	return player, nil
}

// IncrementPlayerCount performs the guarded check-and-increment in one
// statement: the counter only moves while the gametime is still upcoming
// and below capacity. No row updated means the admission lost.
func (r *GametimeRepo) IncrementPlayerCount(ctx context.Context, tx pgx.Tx, gametimeID int64) (int, error) {
	if gametimeID <= 0 {
		return 0, fmt.Errorf("invalid gametime id")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var count int
	err := tx.QueryRow(ctx, `
UPDATE gametimes
SET player_count = player_count + 1, updated_at = NOW()
WHERE id = $1
	AND status = 'upcoming'
	AND player_count < capacity
RETURNING player_count
`, gametimeID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrGametimeFull
		}
		return 0, fmt.Errorf("increment player count: %w", err)
	}

	return count, nil
}

// DecrementPlayerCount floors the counter at floor (1 for the creator's
// permanent seat, 0 otherwise).
func (r *GametimeRepo) DecrementPlayerCount(ctx context.Context, tx pgx.Tx, gametimeID int64, floor int) (int, error) {
	if gametimeID <= 0 || floor < 0 {
		return 0, fmt.Errorf("invalid decrement payload")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var count int
	err := tx.QueryRow(ctx, `
UPDATE gametimes
SET player_count = GREATEST(player_count - 1, $2), updated_at = NOW()
WHERE id = $1
RETURNING player_count
`, gametimeID, floor).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrGametimeNotFound
		}
		return 0, fmt.Errorf("decrement player count: %w", err)
	}

	return count, nil
}

// UpsertPlayer admits the user: a fresh row for a first join, or a status
// flip back to joined after a leave. Never inserts a second row per pair.
func (r *GametimeRepo) UpsertPlayer(ctx context.Context, tx pgx.Tx, gametimeID, userID int64) error {
	if gametimeID <= 0 || userID <= 0 {
		return fmt.Errorf("invalid player payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO gametime_players (gametime_id, user_id, status, joined_at)
VALUES ($1, $2, 'joined', NOW())
ON CONFLICT (gametime_id, user_id) DO UPDATE SET
	status = 'joined',
	joined_at = NOW()
`, gametimeID, userID); err != nil {
		return fmt.Errorf("upsert gametime player: %w", err)
	}

	return nil
}

func (r *GametimeRepo) SetPlayerStatus(ctx context.Context, tx pgx.Tx, gametimeID, userID int64, status enums.ParticipationStatus) error {
	if gametimeID <= 0 || userID <= 0 || status == "" {
		return fmt.Errorf("invalid player status payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE gametime_players
SET status = $3
WHERE gametime_id = $1 AND user_id = $2
`, gametimeID, userID, string(status))
	if err != nil {
		return fmt.Errorf("update player status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}

	return nil
}

func (r *GametimeRepo) SetStatus(ctx context.Context, tx pgx.Tx, gametimeID int64, status enums.GametimeStatus) error {
	if gametimeID <= 0 || status == "" {
		return fmt.Errorf("invalid gametime status payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE gametimes
SET status = $2, updated_at = NOW()
WHERE id = $1
`, gametimeID, string(status))
	if err != nil {
		return fmt.Errorf("update gametime status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGametimeNotFound
	}

	return nil
}

func (r *GametimeRepo) ListUpcoming(ctx context.Context, limit int) ([]model.Gametime, error) {
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []model.Gametime{}, nil
	}

	rows, err := r.pool.Query(ctx, gametimeSelect+`WHERE status = 'upcoming'
ORDER BY starts_at, id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming gametimes: %w", err)
	}
	defer rows.Close()

	gametimes := make([]model.Gametime, 0, limit)
	for rows.Next() {
		var gametime model.Gametime
		if err := rows.Scan(
			&gametime.ID,
			&gametime.CreatorID,
			&gametime.Activity,
			&gametime.StartsAt,
			&gametime.EndsAt,
			&gametime.Capacity,
			&gametime.PlayerCount,
			&gametime.Status,
			&gametime.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan gametime: %w", err)
		}
		gametimes = append(gametimes, gametime)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate gametimes: %w", rows.Err())
	}

	return gametimes, nil
}
