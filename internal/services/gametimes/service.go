package gametimes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/playpal-app/backend/internal/domain/enums"
	"github.com/playpal-app/backend/internal/domain/model"
	pgrepo "github.com/playpal-app/backend/internal/repo/postgres"
	admissionsvc "github.com/playpal-app/backend/internal/services/admission"
	progressionsvc "github.com/playpal-app/backend/internal/services/progression"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("gametime not found")
	ErrNotCreator     = errors.New("gametime belongs to another user")
	ErrNotCancellable = errors.New("gametime cannot be cancelled in its current state")
)

// MinCapacity keeps room for at least one player beside the creator.
const MinCapacity = 2

type Store interface {
	Create(ctx context.Context, tx pgx.Tx, gametime model.Gametime) (model.Gametime, error)
	GetByID(ctx context.Context, gametimeID int64) (model.Gametime, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, gametimeID int64) (model.Gametime, error)
	GetPlayer(ctx context.Context, tx pgx.Tx, gametimeID, userID int64) (model.GametimePlayer, error)
	IncrementPlayerCount(ctx context.Context, tx pgx.Tx, gametimeID int64) (int, error)
	DecrementPlayerCount(ctx context.Context, tx pgx.Tx, gametimeID int64, floor int) (int, error)
	UpsertPlayer(ctx context.Context, tx pgx.Tx, gametimeID, userID int64) error
	SetPlayerStatus(ctx context.Context, tx pgx.Tx, gametimeID, userID int64, status enums.ParticipationStatus) error
	SetStatus(ctx context.Context, tx pgx.Tx, gametimeID int64, status enums.GametimeStatus) error
	ListUpcoming(ctx context.Context, limit int) ([]model.Gametime, error)
}

type ProgressionHook interface {
	Award(ctx context.Context, userID int64, reason, ref string)
}

type Service struct {
	pool        *pgxpool.Pool
	store       Store
	progression ProgressionHook
	log         *zap.Logger
	runTx       func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
	now         func() time.Time
}

func NewService(pool *pgxpool.Pool, store Store, progression ProgressionHook, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		pool:        pool,
		store:       store,
		progression: progression,
		log:         log,
		runTx:       pgrepo.WithAdmissionTx,
		now:         time.Now,
	}
}

// Create opens a gametime with the creator already admitted, so the
// counter starts at one.
func (s *Service) Create(ctx context.Context, creatorID int64, activity string, startsAt, endsAt time.Time, capacity int) (model.Gametime, error) {
	activity = strings.TrimSpace(activity)
	if creatorID <= 0 || activity == "" || capacity < MinCapacity {
		return model.Gametime{}, ErrValidation
	}
	if !startsAt.Before(endsAt) || startsAt.Before(s.now()) {
		return model.Gametime{}, ErrValidation
	}

	var created model.Gametime
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		created, err = s.store.Create(ctx, tx, model.Gametime{
			CreatorID: creatorID,
			Activity:  activity,
			StartsAt:  startsAt,
			EndsAt:    endsAt,
			Capacity:  capacity,
		})
		if err != nil {
			return fmt.Errorf("create gametime: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Gametime{}, err
	}
	return created, nil
}

// Join admits the user. Capacity is enforced by the guarded counter
// update, so two racing joins for the last seat cannot both land.
func (s *Service) Join(ctx context.Context, userID, gametimeID int64) (model.Gametime, error) {
	if userID <= 0 || gametimeID <= 0 {
		return model.Gametime{}, ErrValidation
	}

	var joined model.Gametime
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		gametime, err := s.store.GetForUpdate(ctx, tx, gametimeID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrGametimeNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock gametime: %w", err)
		}

		gate := &gate{store: s.store, gametime: gametime}
		if err := admissionsvc.Admit(ctx, tx, gate, userID); err != nil {
			return err
		}

		gametime.PlayerCount = gate.playerCount
		joined = gametime
		return nil
	})
	if err != nil {
		return model.Gametime{}, err
	}

	if s.progression != nil {
		s.progression.Award(ctx, userID, progressionsvc.ReasonGametimeJoined, fmt.Sprintf("gametime:%d", gametimeID))
	}
	return joined, nil
}

// Leave withdraws the user. The creator's seat is permanent; the counter
// never drops below one.
func (s *Service) Leave(ctx context.Context, userID, gametimeID int64) (model.Gametime, error) {
	if userID <= 0 || gametimeID <= 0 {
		return model.Gametime{}, ErrValidation
	}

	var left model.Gametime
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		gametime, err := s.store.GetForUpdate(ctx, tx, gametimeID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrGametimeNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock gametime: %w", err)
		}

		gate := &gate{store: s.store, gametime: gametime}
		if err := admissionsvc.Withdraw(ctx, tx, gate, userID, gametime.CreatorID); err != nil {
			return err
		}

		gametime.PlayerCount = gate.playerCount
		left = gametime
		return nil
	})
	if err != nil {
		return model.Gametime{}, err
	}
	return left, nil
}

// Cancel is creator-only and leaves participation rows untouched.
func (s *Service) Cancel(ctx context.Context, userID, gametimeID int64) error {
	if userID <= 0 || gametimeID <= 0 {
		return ErrValidation
	}

	return s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		gametime, err := s.store.GetForUpdate(ctx, tx, gametimeID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrGametimeNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock gametime: %w", err)
		}
		if gametime.CreatorID != userID {
			return ErrNotCreator
		}
		if gametime.Status != enums.GametimeStatusUpcoming {
			return ErrNotCancellable
		}

		if err := s.store.SetStatus(ctx, tx, gametimeID, enums.GametimeStatusCancelled); err != nil {
			return fmt.Errorf("cancel gametime: %w", err)
		}
		return nil
	})
}

func (s *Service) Get(ctx context.Context, gametimeID int64) (model.Gametime, error) {
	if gametimeID <= 0 {
		return model.Gametime{}, ErrValidation
	}

	gametime, err := s.store.GetByID(ctx, gametimeID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrGametimeNotFound) {
			return model.Gametime{}, ErrNotFound
		}
		return model.Gametime{}, fmt.Errorf("get gametime: %w", err)
	}
	return gametime, nil
}

func (s *Service) ListUpcoming(ctx context.Context, limit int) ([]model.Gametime, error) {
	gametimes, err := s.store.ListUpcoming(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming gametimes: %w", err)
	}
	return gametimes, nil
}

// gate binds the admission flow to the denormalized player counter.
type gate struct {
	store       Store
	gametime    model.Gametime
	playerCount int
}

func (g *gate) CheckAdmittable(context.Context, pgx.Tx) error {
	if g.gametime.Status != enums.GametimeStatusUpcoming {
		return admissionsvc.ErrNotAdmittable
	}
	return nil
}

func (g *gate) Occupant(ctx context.Context, tx pgx.Tx, userID int64) (admissionsvc.Occupancy, error) {
	player, err := g.store.GetPlayer(ctx, tx, g.gametime.ID, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPlayerNotFound) {
			return admissionsvc.OccupancyNone, nil
		}
		return admissionsvc.OccupancyNone, fmt.Errorf("get player: %w", err)
	}
	if player.Status == enums.ParticipationStatusJoined {
		return admissionsvc.OccupancyAdmitted, nil
	}
	return admissionsvc.OccupancyWithdrawn, nil
}

func (g *gate) ClaimSeat(ctx context.Context, tx pgx.Tx) error {
	count, err := g.store.IncrementPlayerCount(ctx, tx, g.gametime.ID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrGametimeFull) {
			return admissionsvc.ErrCapacityFull
		}
		return fmt.Errorf("claim seat: %w", err)
	}
	g.playerCount = count
	return nil
}

func (g *gate) RecordAdmission(ctx context.Context, tx pgx.Tx, userID int64) error {
	return g.store.UpsertPlayer(ctx, tx, g.gametime.ID, userID)
}

func (g *gate) RecordWithdrawal(ctx context.Context, tx pgx.Tx, userID int64) error {
	return g.store.SetPlayerStatus(ctx, tx, g.gametime.ID, userID, enums.ParticipationStatusLeft)
}

func (g *gate) ReleaseSeat(ctx context.Context, tx pgx.Tx) error {
	count, err := g.store.DecrementPlayerCount(ctx, tx, g.gametime.ID, 1)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	g.playerCount = count
	return nil
}
