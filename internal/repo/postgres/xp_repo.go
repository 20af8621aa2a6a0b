package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type XPRepo struct {
	pool *pgxpool.Pool
}

func NewXPRepo(pool *pgxpool.Pool) *XPRepo {
	return &XPRepo{pool: pool}
}

// Append writes one progression ledger entry. Runs outside the primary
// operation's transaction: progression credit is best-effort and must not
// tie its fate to the admission write.
func (r *XPRepo) Append(ctx context.Context, userID int64, reason string, amount int, ref string) error {
	if userID <= 0 || strings.TrimSpace(reason) == "" || amount <= 0 {
		return fmt.Errorf("invalid xp entry payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO xp_ledger (user_id, reason, amount, ref, created_at)
VALUES ($1, $2, $3, $4, NOW())
`, userID, reason, amount, ref); err != nil {
		return fmt.Errorf("append xp entry: %w", err)
	}

	return nil
}

func (r *XPRepo) TotalForUser(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return 0, nil
	}

	var total int64
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0)
FROM xp_ledger
WHERE user_id = $1
`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum xp ledger: %w", err)
	}

	return total, nil
}
