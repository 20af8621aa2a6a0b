package bookings

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
	"github.com/playpal-app/backend/internal/domain/rules"
	pgrepo "github.com/playpal-app/backend/internal/repo/postgres"
	progressionsvc "github.com/playpal-app/backend/internal/services/progression"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrVenueNotFound      = errors.New("venue not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrActivityNotOffered = errors.New("venue does not offer this activity")
	ErrVenueClosed        = errors.New("venue is closed at the requested time")
	ErrSlotConflict       = errors.New("requested range conflicts with an existing booking")
	ErrNotOwner           = errors.New("booking belongs to another user")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrNotCancellable     = errors.New("booking can no longer be cancelled")
	ErrNotCompletable     = errors.New("booking cannot be completed in its current state")
)

const dayKeyLayout = "2006-01-02"

type VenueStore interface {
	GetByID(ctx context.Context, venueID int64) (model.Venue, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, venueID int64) (model.Venue, error)
}

type BookingStore interface {
	ExistsOverlapping(ctx context.Context, tx pgx.Tx, venueID int64, startsAt, endsAt time.Time) (bool, error)
	Insert(ctx context.Context, tx pgx.Tx, booking model.Booking) (model.Booking, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, bookingID int64) (model.Booking, error)
	SetStatus(ctx context.Context, tx pgx.Tx, bookingID int64, status enums.BookingStatus) error
	ListForVenueDay(ctx context.Context, venueID int64, dayStart, dayEnd time.Time) ([]model.Booking, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Booking, error)
}

type SlotCache interface {
	Get(ctx context.Context, venueID int64, day string) ([]rules.Slot, error)
	Set(ctx context.Context, venueID int64, day string, slots []rules.Slot) error
	InvalidateVenue(ctx context.Context, venueID int64) error
}

type ProgressionHook interface {
	Award(ctx context.Context, userID int64, reason, ref string)
}

type Service struct {
	pool        *pgxpool.Pool
	venues      VenueStore
	store       BookingStore
	cache       SlotCache
	progression ProgressionHook
	log         *zap.Logger
	runTx       func(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error
	now         func() time.Time
}

func NewService(pool *pgxpool.Pool, venues VenueStore, store BookingStore, cache SlotCache, progression ProgressionHook, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		pool:        pool,
		venues:      venues,
		store:       store,
		cache:       cache,
		progression: progression,
		log:         log,
		runTx:       pgrepo.WithAdmissionTx,
		now:         time.Now,
	}
}

// Reserve places a booking for [startsAt, endsAt) on the venue. The venue
// row is locked for the whole check-then-insert so two overlapping
// reservations racing for the same venue serialize.
func (s *Service) Reserve(ctx context.Context, userID, venueID int64, activity string, startsAt, endsAt time.Time) (model.Booking, error) {
	activity = strings.TrimSpace(activity)
	if userID <= 0 || venueID <= 0 || activity == "" {
		return model.Booking{}, ErrValidation
	}

	requested := rules.NewInterval(startsAt, endsAt)
	if !requested.Valid() {
		return model.Booking{}, ErrValidation
	}
	if startsAt.Before(s.now()) {
		return model.Booking{}, ErrValidation
	}

	var created model.Booking
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		venue, err := s.venues.GetForUpdate(ctx, tx, venueID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrVenueNotFound) {
				return ErrVenueNotFound
			}
			return fmt.Errorf("lock venue: %w", err)
		}

		rate, offered := offeredRate(venue, activity)
		if !offered {
			return ErrActivityNotOffered
		}

		window, open, err := rules.OpenWindow(venue.OpenHours, startsAt)
		if err != nil {
			return fmt.Errorf("resolve open hours: %w", err)
		}
		if !open || startsAt.Before(window.Start) || endsAt.After(window.End) {
			return ErrVenueClosed
		}

		taken, err := s.store.ExistsOverlapping(ctx, tx, venueID, startsAt, endsAt)
		if err != nil {
			return fmt.Errorf("check overlapping bookings: %w", err)
		}
		if taken {
			return ErrSlotConflict
		}

		created, err = s.store.Insert(ctx, tx, model.Booking{
			VenueID:    venueID,
			UserID:     userID,
			Activity:   activity,
			StartsAt:   startsAt,
			EndsAt:     endsAt,
			PriceCents: rules.PriceCents(rate, requested.Duration()),
		})
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}

	s.dropAvailability(ctx, venueID)
	return created, nil
}

func (s *Service) Cancel(ctx context.Context, userID, bookingID int64) (model.Booking, error) {
	if userID <= 0 || bookingID <= 0 {
		return model.Booking{}, ErrValidation
	}

	var cancelled model.Booking
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		booking, err := s.store.GetForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("lock booking: %w", err)
		}
		if booking.UserID != userID {
			return ErrNotOwner
		}
		switch booking.Status {
		case enums.BookingStatusCancelled:
			return ErrAlreadyCancelled
		case enums.BookingStatusCompleted:
			return ErrNotCancellable
		}

		if err := s.store.SetStatus(ctx, tx, bookingID, enums.BookingStatusCancelled); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		booking.Status = enums.BookingStatusCancelled
		cancelled = booking
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}

	s.dropAvailability(ctx, cancelled.VenueID)
	return cancelled, nil
}

// Complete marks a confirmed booking as completed and credits the owner.
func (s *Service) Complete(ctx context.Context, userID, bookingID int64) (model.Booking, error) {
	if userID <= 0 || bookingID <= 0 {
		return model.Booking{}, ErrValidation
	}

	var completed model.Booking
	err := s.runTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		booking, err := s.store.GetForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("lock booking: %w", err)
		}
		if booking.UserID != userID {
			return ErrNotOwner
		}
		if booking.Status != enums.BookingStatusConfirmed {
			return ErrNotCompletable
		}

		if err := s.store.SetStatus(ctx, tx, bookingID, enums.BookingStatusCompleted); err != nil {
			return fmt.Errorf("complete booking: %w", err)
		}
		booking.Status = enums.BookingStatusCompleted
		completed = booking
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}

	if s.progression != nil {
		s.progression.Award(ctx, userID, progressionsvc.ReasonBookingCompleted, completed.Reference)
	}
	return completed, nil
}

// DaySlots renders the hour grid for the venue on the given date. open is
// false when the venue has no hours that weekday.
func (s *Service) DaySlots(ctx context.Context, venueID int64, date time.Time) ([]rules.Slot, bool, error) {
	if venueID <= 0 {
		return nil, false, ErrValidation
	}

	// Only days with at least one slot are cached. An empty cached list
	// would be ambiguous between a closed day and an open day whose window
	// is shorter than a slot, so those recompute every time.
	day := date.Format(dayKeyLayout)
	if s.cache != nil {
		if slots, err := s.cache.Get(ctx, venueID, day); err == nil && len(slots) > 0 {
			return slots, true, nil
		}
	}

	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrVenueNotFound) {
			return nil, false, ErrVenueNotFound
		}
		return nil, false, fmt.Errorf("get venue: %w", err)
	}

	window, open, err := rules.OpenWindow(venue.OpenHours, date)
	if err != nil {
		return nil, false, fmt.Errorf("resolve open hours: %w", err)
	}
	if !open {
		return []rules.Slot{}, false, nil
	}

	bookings, err := s.store.ListForVenueDay(ctx, venueID, window.Start, window.End)
	if err != nil {
		return nil, false, fmt.Errorf("list day bookings: %w", err)
	}

	busy := make([]rules.Interval, 0, len(bookings))
	for _, b := range bookings {
		busy = append(busy, rules.NewInterval(b.StartsAt, b.EndsAt))
	}

	slots := rules.DaySlots(window, rules.SlotDuration, busy)
	if s.cache != nil && len(slots) > 0 {
		if err := s.cache.Set(ctx, venueID, day, slots); err != nil {
			s.log.Warn("cache day slots failed", zap.Int64("venue_id", venueID), zap.Error(err))
		}
	}
	return slots, true, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Booking, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}

	bookings, err := s.store.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) dropAvailability(ctx context.Context, venueID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateVenue(ctx, venueID); err != nil {
		s.log.Warn("invalidate availability cache failed", zap.Int64("venue_id", venueID), zap.Error(err))
	}
}

func offeredRate(venue model.Venue, activity string) (int64, bool) {
	for _, offer := range venue.Offers {
		if strings.EqualFold(offer.Name, activity) {
			return offer.HourlyRateCents, true
		}
	}
	return 0, false
}
