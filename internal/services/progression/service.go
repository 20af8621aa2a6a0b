package progression

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Award reasons recorded in the xp ledger.
const (
	ReasonBookingCompleted = "booking_completed"
	ReasonGametimeJoined   = "gametime_joined"
	ReasonMatchCreated     = "match_created"
)

var ErrValidation = errors.New("validation error")

type LedgerStore interface {
	Append(ctx context.Context, userID int64, reason string, amount int, ref string) error
	TotalForUser(ctx context.Context, userID int64) (int64, error)
}

type Config struct {
	BookingCompletedXP int
	GametimeJoinedXP   int
	MatchCreatedXP     int
}

func (c Config) Default() Config {
	if c.BookingCompletedXP <= 0 {
		c.BookingCompletedXP = 25
	}
	if c.GametimeJoinedXP <= 0 {
		c.GametimeJoinedXP = 10
	}
	if c.MatchCreatedXP <= 0 {
		c.MatchCreatedXP = 15
	}
	return c
}

type Service struct {
	ledger LedgerStore
	cfg    Config
	log    *zap.Logger
}

func NewService(ledger LedgerStore, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		ledger: ledger,
		cfg:    cfg.Default(),
		log:    log,
	}
}

// Award appends a ledger entry. Failures are logged and swallowed so
// progression never breaks the operation that triggered it.
func (s *Service) Award(ctx context.Context, userID int64, reason, ref string) {
	if s.ledger == nil || userID <= 0 {
		return
	}

	amount := s.amountFor(reason)
	if amount <= 0 {
		s.log.Warn("progression award skipped: unknown reason",
			zap.String("reason", reason),
			zap.Int64("user_id", userID))
		return
	}

	if err := s.ledger.Append(ctx, userID, reason, amount, ref); err != nil {
		s.log.Warn("progression award failed",
			zap.String("reason", reason),
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}

func (s *Service) Total(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	if s.ledger == nil {
		return 0, fmt.Errorf("progression ledger is not configured")
	}

	total, err := s.ledger.TotalForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("read xp total: %w", err)
	}
	return total, nil
}

func (s *Service) amountFor(reason string) int {
	switch reason {
	case ReasonBookingCompleted:
		return s.cfg.BookingCompletedXP
	case ReasonGametimeJoined:
		return s.cfg.GametimeJoinedXP
	case ReasonMatchCreated:
		return s.cfg.MatchCreatedXP
	default:
		return 0
	}
}
