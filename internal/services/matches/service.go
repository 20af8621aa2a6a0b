package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/model"
	pgrepo "github.com/playpal-app/backend/internal/repo/postgres"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrNoActiveMatch = errors.New("no active match for this pair")
)

type Store interface {
	GetByUsers(ctx context.Context, userID, partnerID int64) (model.Match, error)
	Deactivate(ctx context.Context, tx pgx.Tx, userID, partnerID int64) (bool, error)
	ListActiveForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.ActiveMatchRecord, error)
}

type MatchItem struct {
	ID            int64     `json:"id"`
	PartnerUserID int64     `json:"partner_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type Service struct {
	pool  *pgxpool.Pool
	store Store
	runTx func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
}

func NewService(pool *pgxpool.Pool, store Store) *Service {
	return &Service{
		pool:  pool,
		store: store,
		runTx: pgrepo.WithTx,
	}
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}

	records, err := s.store.ListActiveForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	items := make([]MatchItem, 0, len(records))
	for _, record := range records {
		items = append(items, MatchItem{
			ID:            record.ID,
			PartnerUserID: record.PartnerUserID,
			CreatedAt:     record.CreatedAt,
		})
	}
	return items, nil
}

// Get returns the caller's active match with the given partner. A row
// deactivated by an unmatch is treated the same as no row at all.
func (s *Service) Get(ctx context.Context, userID, partnerID int64) (MatchItem, error) {
	if userID <= 0 || partnerID <= 0 || userID == partnerID {
		return MatchItem{}, ErrValidation
	}

	match, err := s.store.GetByUsers(ctx, userID, partnerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return MatchItem{}, ErrNoActiveMatch
		}
		return MatchItem{}, fmt.Errorf("get match: %w", err)
	}
	if !match.Active {
		return MatchItem{}, ErrNoActiveMatch
	}

	return MatchItem{
		ID:            match.ID,
		PartnerUserID: partnerID,
		CreatedAt:     match.CreatedAt,
	}, nil
}

// Unmatch deactivates the pair's match. The row and the swipes that
// produced it stay; a later mutual right reactivates the same row.
func (s *Service) Unmatch(ctx context.Context, userID, partnerID int64) error {
	if userID <= 0 || partnerID <= 0 || userID == partnerID {
		return ErrValidation
	}

	return s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		deactivated, err := s.store.Deactivate(ctx, tx, userID, partnerID)
		if err != nil {
			return fmt.Errorf("deactivate match: %w", err)
		}
		if !deactivated {
			return ErrNoActiveMatch
		}
		return nil
	})
}
