package events

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
)

var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("event not found")
	ErrNotOrganizer   = errors.New("event belongs to another user")
	ErrNotCancellable = errors.New("event cannot be cancelled in its current state")
)

type Store interface {
	Create(ctx context.Context, tx pgx.Tx, event model.Event) (model.Event, error)
	GetByID(ctx context.Context, eventID int64) (model.Event, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, eventID int64) (model.Event, error)
	CountRegistered(ctx context.Context, tx pgx.Tx, eventID int64) (int, error)
	GetRegistration(ctx context.Context, tx pgx.Tx, eventID, userID int64) (model.EventRegistration, error)
	UpsertRegistration(ctx context.Context, tx pgx.Tx, eventID, userID int64) (model.EventRegistration, error)
	SetRegistrationStatus(ctx context.Context, tx pgx.Tx, eventID, userID int64, status enums.RegistrationStatus) error
	SetStatus(ctx context.Context, tx pgx.Tx, eventID int64, status enums.EventStatus) error
	ListOpen(ctx context.Context, limit int) ([]model.Event, error)
}

type Service struct {
	pool  *pgxpool.Pool
	store Store
	log   *zap.Logger
	runTx func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
	now   func() time.Time
}

func NewService(pool *pgxpool.Pool, store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		pool:  pool,
		store: store,
		log:   log,
		runTx: pgrepo.WithAdmissionTx,
		now:   time.Now,
	}
}

func (s *Service) Create(ctx context.Context, organizerID int64, name, activity string, startsAt, endsAt, registrationCloses time.Time, capacity int) (model.Event, error) {
	name = strings.TrimSpace(name)
	activity = strings.TrimSpace(activity)
	if organizerID <= 0 || name == "" || activity == "" || capacity < 1 {
		return model.Event{}, ErrValidation
	}
	if !startsAt.Before(endsAt) || startsAt.Before(s.now()) {
		return model.Event{}, ErrValidation
	}
	if registrationCloses.After(startsAt) || !registrationCloses.After(s.now()) {
		return model.Event{}, ErrValidation
	}

	var created model.Event
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		created, err = s.store.Create(ctx, tx, model.Event{
			OrganizerID:        organizerID,
			Name:               name,
			Activity:           activity,
			StartsAt:           startsAt,
			EndsAt:             endsAt,
			Capacity:           capacity,
			RegistrationCloses: registrationCloses,
		})
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}
	return created, nil
}

// Register admits the user. The registration count is a live row count
// taken under the event row lock, never a stored counter.
func (s *Service) Register(ctx context.Context, userID, eventID int64) (model.EventRegistration, error) {
	if userID <= 0 || eventID <= 0 {
		return model.EventRegistration{}, ErrValidation
	}

	var registration model.EventRegistration
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		event, err := s.store.GetForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrEventNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		gate := &gate{store: s.store, event: event, now: s.now}
		if err := admissionsvc.Admit(ctx, tx, gate, userID); err != nil {
			return err
		}

		registration = gate.registration
		return nil
	})
	if err != nil {
		return model.EventRegistration{}, err
	}
	return registration, nil
}

func (s *Service) Withdraw(ctx context.Context, userID, eventID int64) error {
	if userID <= 0 || eventID <= 0 {
		return ErrValidation
	}

	return s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		event, err := s.store.GetForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrEventNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		gate := &gate{store: s.store, event: event, now: s.now}
		return admissionsvc.Withdraw(ctx, tx, gate, userID, event.OrganizerID)
	})
}

// CancelEvent is organizer-only and does not cascade over registrations.
func (s *Service) CancelEvent(ctx context.Context, userID, eventID int64) error {
	if userID <= 0 || eventID <= 0 {
		return ErrValidation
	}

	return s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		event, err := s.store.GetForUpdate(ctx, tx, eventID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrEventNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if event.OrganizerID != userID {
			return ErrNotOrganizer
		}
		if event.Status != enums.EventStatusDraft && event.Status != enums.EventStatusOpen {
			return ErrNotCancellable
		}

		if err := s.store.SetStatus(ctx, tx, eventID, enums.EventStatusCancelled); err != nil {
			return fmt.Errorf("cancel event: %w", err)
		}
		return nil
	})
}

func (s *Service) Get(ctx context.Context, eventID int64) (model.Event, error) {
	if eventID <= 0 {
		return model.Event{}, ErrValidation
	}

	event, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrEventNotFound) {
			return model.Event{}, ErrNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *Service) ListOpen(ctx context.Context, limit int) ([]model.Event, error) {
	events, err := s.store.ListOpen(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list open events: %w", err)
	}
	return events, nil
}

// gate binds the admission flow to a live registration count.
type gate struct {
	store        Store
	event        model.Event
	now          func() time.Time
	registration model.EventRegistration
}

func (g *gate) CheckAdmittable(context.Context, pgx.Tx) error {
	if g.event.Status != enums.EventStatusOpen {
		return admissionsvc.ErrNotAdmittable
	}
	if !g.now().Before(g.event.RegistrationCloses) {
		return admissionsvc.ErrDeadlinePassed
	}
	return nil
}

func (g *gate) Occupant(ctx context.Context, tx pgx.Tx, userID int64) (admissionsvc.Occupancy, error) {
	registration, err := g.store.GetRegistration(ctx, tx, g.event.ID, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrRegistrationNotFound) {
			return admissionsvc.OccupancyNone, nil
		}
		return admissionsvc.OccupancyNone, fmt.Errorf("get registration: %w", err)
	}
	if registration.Status == enums.RegistrationStatusRegistered {
		return admissionsvc.OccupancyAdmitted, nil
	}
	return admissionsvc.OccupancyWithdrawn, nil
}

func (g *gate) ClaimSeat(ctx context.Context, tx pgx.Tx) error {
	count, err := g.store.CountRegistered(ctx, tx, g.event.ID)
	if err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}
	if count >= g.event.Capacity {
		return admissionsvc.ErrCapacityFull
	}
	return nil
}

func (g *gate) RecordAdmission(ctx context.Context, tx pgx.Tx, userID int64) error {
	registration, err := g.store.UpsertRegistration(ctx, tx, g.event.ID, userID)
	if err != nil {
		return err
	}
	g.registration = registration
	return nil
}

func (g *gate) RecordWithdrawal(ctx context.Context, tx pgx.Tx, userID int64) error {
	return g.store.SetRegistrationStatus(ctx, tx, g.event.ID, userID, enums.RegistrationStatusCancelled)
}

// ReleaseSeat is a no-op: the live count already reflects the flipped row.
func (g *gate) ReleaseSeat(context.Context, pgx.Tx) error {
	return nil
}
