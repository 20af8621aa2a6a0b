package swipes

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
	progressionsvc "github.com/playpal-app/backend/internal/services/progression"
)

var (
	ErrValidation = errors.New("validation error")
	ErrSelfSwipe  = errors.New("cannot swipe on yourself")
	ErrDuplicate  = errors.New("swipe already recorded for this pair")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type SwipeStore interface {
	LockPair(ctx context.Context, tx pgx.Tx, userID, partnerID int64) error
	Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, direction enums.SwipeDirection) (model.Swipe, error)
	InverseRightExists(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error)
}

type MatchStore interface {
	Activate(ctx context.Context, tx pgx.Tx, userID, partnerID int64) (model.Match, error)
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID int64) (int64, bool, error)
}

type ProgressionHook interface {
	Award(ctx context.Context, userID int64, reason, ref string)
}

type Result struct {
	Swipe   model.Swipe
	Matched bool
	Match   *model.Match
}

type Service struct {
	pool        *pgxpool.Pool
	swipeStore  SwipeStore
	matchStore  MatchStore
	rateLimiter RateLimiter
	progression ProgressionHook
	log         *zap.Logger
	runTx       func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
	now         func() time.Time
}

func NewService(pool *pgxpool.Pool, swipeStore SwipeStore, matchStore MatchStore, rateLimiter RateLimiter, progression ProgressionHook, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		pool:        pool,
		swipeStore:  swipeStore,
		matchStore:  matchStore,
		rateLimiter: rateLimiter,
		progression: progression,
		log:         log,
		runTx:       pgrepo.WithTx,
		now:         time.Now,
	}
}

// Swipe records the directional signal and, on a reciprocal right, forms
// the match inside the same transaction. The swipe row lands even when no
// match forms; duplicates are rejected, never updated.
//
// The pair lock is what makes concurrent mutual rights safe: the two sides
// insert different swipe rows, so nothing else forces them to serialize,
// and each snapshot would miss the other's insert. Holding the pair's
// advisory lock until commit, at read committed, means whichever side runs
// second observes the first side's committed swipe in its inverse lookup.
func (s *Service) Swipe(ctx context.Context, actorID, targetID int64, direction string) (Result, error) {
	dir, err := normalizeDirection(direction)
	if err != nil {
		return Result{}, err
	}
	if actorID <= 0 || targetID <= 0 {
		return Result{}, ErrValidation
	}
	if actorID == targetID {
		return Result{}, ErrSelfSwipe
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, actorID)
		if err != nil {
			return Result{}, fmt.Errorf("check swipe rate: %w", err)
		}
		if !allowed {
			return Result{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	var result Result
	err = s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.swipeStore.LockPair(ctx, tx, actorID, targetID); err != nil {
			return fmt.Errorf("lock swipe pair: %w", err)
		}

		swipe, err := s.swipeStore.Create(ctx, tx, actorID, targetID, dir)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateSwipe) {
				return ErrDuplicate
			}
			return fmt.Errorf("record swipe: %w", err)
		}
		result.Swipe = swipe

		if dir != enums.SwipeDirectionRight {
			return nil
		}

		reciprocal, err := s.swipeStore.InverseRightExists(ctx, tx, actorID, targetID)
		if err != nil {
			return fmt.Errorf("check reciprocal swipe: %w", err)
		}
		if !reciprocal {
			return nil
		}

		match, err := s.matchStore.Activate(ctx, tx, actorID, targetID)
		if err != nil {
			return fmt.Errorf("activate match: %w", err)
		}
		result.Matched = true
		result.Match = &match
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if result.Matched && s.progression != nil {
		ref := fmt.Sprintf("match:%d", result.Match.ID)
		s.progression.Award(ctx, actorID, progressionsvc.ReasonMatchCreated, ref)
		s.progression.Award(ctx, targetID, progressionsvc.ReasonMatchCreated, ref)
	}
	return result, nil
}

func normalizeDirection(input string) (enums.SwipeDirection, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "left":
		return enums.SwipeDirectionLeft, nil
	case "right":
		return enums.SwipeDirectionRight, nil
	default:
		return "", ErrValidation
	}
}
