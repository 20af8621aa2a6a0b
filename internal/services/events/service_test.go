package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/playpal-app/backend/internal/domain/enums"
	"github.com/playpal-app/backend/internal/domain/model"
	pgrepo "github.com/playpal-app/backend/internal/repo/postgres"
	admissionsvc "github.com/playpal-app/backend/internal/services/admission"
)

type stubStore struct {
	event    model.Event
	eventErr error

	registration    model.EventRegistration
	registrationErr error

	registeredCount    int
	upsertCalls        int
	registrationStatus enums.RegistrationStatus
	setStatus          enums.EventStatus
}

func (s *stubStore) Create(_ context.Context, _ pgx.Tx, event model.Event) (model.Event, error) {
	event.ID = 1
	event.Status = enums.EventStatusOpen
	return event, nil
}

func (s *stubStore) GetByID(context.Context, int64) (model.Event, error) {
	return s.event, s.eventErr
}

func (s *stubStore) GetForUpdate(context.Context, pgx.Tx, int64) (model.Event, error) {
	return s.event, s.eventErr
}

func (s *stubStore) CountRegistered(context.Context, pgx.Tx, int64) (int, error) {
	return s.registeredCount, nil
}

func (s *stubStore) GetRegistration(context.Context, pgx.Tx, int64, int64) (model.EventRegistration, error) {
	return s.registration, s.registrationErr
}

func (s *stubStore) UpsertRegistration(_ context.Context, _ pgx.Tx, eventID, userID int64) (model.EventRegistration, error) {
	s.upsertCalls++
	return model.EventRegistration{
		EventID:   eventID,
		UserID:    userID,
		Reference: "reg-1",
		Status:    enums.RegistrationStatusRegistered,
	}, nil
}

func (s *stubStore) SetRegistrationStatus(_ context.Context, _ pgx.Tx, _ int64, _ int64, status enums.RegistrationStatus) error {
	s.registrationStatus = status
	return nil
}

func (s *stubStore) SetStatus(_ context.Context, _ pgx.Tx, _ int64, status enums.EventStatus) error {
	s.setStatus = status
	return nil
}

func (s *stubStore) ListOpen(context.Context, int) ([]model.Event, error) {
	return nil, nil
}

var testNow = time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)

func openEvent() model.Event {
	return model.Event{
		ID:                 1,
		OrganizerID:        10,
		Name:               "City Doubles Night",
		Activity:           "badminton",
		StartsAt:           testNow.Add(48 * time.Hour),
		EndsAt:             testNow.Add(51 * time.Hour),
		Capacity:           3,
		RegistrationCloses: testNow.Add(24 * time.Hour),
		Status:             enums.EventStatusOpen,
	}
}

func newServiceForTest(store Store) *Service {
	svc := NewService(nil, store, zap.NewNop())
	svc.runTx = func(ctx context.Context, _ *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCreateValidatesDeadline(t *testing.T) {
	svc := newServiceForTest(&stubStore{})
	starts := testNow.Add(48 * time.Hour)

	// Deadline after the event start is rejected.
	_, err := svc.Create(context.Background(), 10, "Doubles", "badminton", starts, starts.Add(time.Hour), starts.Add(time.Minute), 8)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterHappyPath(t *testing.T) {
	store := &stubStore{event: openEvent(), registrationErr: pgrepo.ErrRegistrationNotFound, registeredCount: 1}
	svc := newServiceForTest(store)

	registration, err := svc.Register(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registration.Status != enums.RegistrationStatusRegistered {
		t.Fatalf("unexpected registration status %q", registration.Status)
	}
	if store.upsertCalls != 1 {
		t.Fatalf("expected one registration upsert, got %d", store.upsertCalls)
	}
}

func TestRegisterFullEvent(t *testing.T) {
	store := &stubStore{event: openEvent(), registrationErr: pgrepo.ErrRegistrationNotFound, registeredCount: 3}
	svc := newServiceForTest(store)

	if _, err := svc.Register(context.Background(), 7, 1); !errors.Is(err, admissionsvc.ErrCapacityFull) {
		t.Fatalf("expected ErrCapacityFull, got %v", err)
	}
	if store.upsertCalls != 0 {
		t.Fatalf("registration must not be written on a full event")
	}
}

func TestRegisterAfterDeadline(t *testing.T) {
	event := openEvent()
	event.RegistrationCloses = testNow.Add(-time.Hour)
	store := &stubStore{event: event, registrationErr: pgrepo.ErrRegistrationNotFound}
	svc := newServiceForTest(store)

	if _, err := svc.Register(context.Background(), 7, 1); !errors.Is(err, admissionsvc.ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed, got %v", err)
	}
}

func TestRegisterClosedEvent(t *testing.T) {
	event := openEvent()
	event.Status = enums.EventStatusClosed
	store := &stubStore{event: event, registrationErr: pgrepo.ErrRegistrationNotFound}
	svc := newServiceForTest(store)

	if _, err := svc.Register(context.Background(), 7, 1); !errors.Is(err, admissionsvc.ErrNotAdmittable) {
		t.Fatalf("expected ErrNotAdmittable, got %v", err)
	}
}

func TestRegisterTwiceRejected(t *testing.T) {
	store := &stubStore{
		event:        openEvent(),
		registration: model.EventRegistration{EventID: 1, UserID: 7, Status: enums.RegistrationStatusRegistered},
	}
	svc := newServiceForTest(store)

	if _, err := svc.Register(context.Background(), 7, 1); !errors.Is(err, admissionsvc.ErrAlreadyAdmitted) {
		t.Fatalf("expected ErrAlreadyAdmitted, got %v", err)
	}
}

func TestReregisterAfterWithdrawal(t *testing.T) {
	store := &stubStore{
		event:        openEvent(),
		registration: model.EventRegistration{EventID: 1, UserID: 7, Status: enums.RegistrationStatusCancelled},
		registeredCount: 1,
	}
	svc := newServiceForTest(store)

	if _, err := svc.Register(context.Background(), 7, 1); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if store.upsertCalls != 1 {
		t.Fatalf("expected record flip via upsert")
	}
}

func TestWithdrawFlipsRegistration(t *testing.T) {
	store := &stubStore{
		event:        openEvent(),
		registration: model.EventRegistration{EventID: 1, UserID: 7, Status: enums.RegistrationStatusRegistered},
	}
	svc := newServiceForTest(store)

	if err := svc.Withdraw(context.Background(), 7, 1); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if store.registrationStatus != enums.RegistrationStatusCancelled {
		t.Fatalf("expected registration flipped to cancelled, got %q", store.registrationStatus)
	}
}

func TestOrganizerCannotWithdraw(t *testing.T) {
	store := &stubStore{
		event:        openEvent(),
		registration: model.EventRegistration{EventID: 1, UserID: 10, Status: enums.RegistrationStatusRegistered},
	}
	svc := newServiceForTest(store)

	if err := svc.Withdraw(context.Background(), 10, 1); !errors.Is(err, admissionsvc.ErrOwnerCannotWithdraw) {
		t.Fatalf("expected ErrOwnerCannotWithdraw, got %v", err)
	}
}

func TestCancelEventOrganizerOnly(t *testing.T) {
	store := &stubStore{event: openEvent()}
	svc := newServiceForTest(store)

	if err := svc.CancelEvent(context.Background(), 7, 1); !errors.Is(err, ErrNotOrganizer) {
		t.Fatalf("expected ErrNotOrganizer, got %v", err)
	}

	if err := svc.CancelEvent(context.Background(), 10, 1); err != nil {
		t.Fatalf("cancel by organizer: %v", err)
	}
	if store.setStatus != enums.EventStatusCancelled {
		t.Fatalf("expected cancelled status write, got %q", store.setStatus)
	}
}

func TestCancelCompletedEvent(t *testing.T) {
	event := openEvent()
	event.Status = enums.EventStatusCompleted
	svc := newServiceForTest(&stubStore{event: event})

	if err := svc.CancelEvent(context.Background(), 10, 1); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
}
