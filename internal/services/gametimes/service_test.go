package gametimes

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
	gametime    model.Gametime
	gametimeErr error

	player    model.GametimePlayer
	playerErr error

	incrementErr   error
	incrementCalls int
	decrementCalls int
	decrementFloor int
	upsertCalls    int
	playerStatus   enums.ParticipationStatus
	setStatus      enums.GametimeStatus
	created        *model.Gametime
}

func (s *stubStore) Create(_ context.Context, _ pgx.Tx, gametime model.Gametime) (model.Gametime, error) {
	gametime.ID = 1
	gametime.PlayerCount = 1
	gametime.Status = enums.GametimeStatusUpcoming
	s.created = &gametime
	return gametime, nil
}

func (s *stubStore) GetByID(context.Context, int64) (model.Gametime, error) {
	return s.gametime, s.gametimeErr
}

func (s *stubStore) GetForUpdate(context.Context, pgx.Tx, int64) (model.Gametime, error) {
	return s.gametime, s.gametimeErr
}

func (s *stubStore) GetPlayer(context.Context, pgx.Tx, int64, int64) (model.GametimePlayer, error) {
	return s.player, s.playerErr
}

func (s *stubStore) IncrementPlayerCount(context.Context, pgx.Tx, int64) (int, error) {
	s.incrementCalls++
	if s.incrementErr != nil {
		return 0, s.incrementErr
	}
	return s.gametime.PlayerCount + 1, nil
}

func (s *stubStore) DecrementPlayerCount(_ context.Context, _ pgx.Tx, _ int64, floor int) (int, error) {
	s.decrementCalls++
	s.decrementFloor = floor
	count := s.gametime.PlayerCount - 1
	if count < floor {
		count = floor
	}
	return count, nil
}

func (s *stubStore) UpsertPlayer(context.Context, pgx.Tx, int64, int64) error {
	s.upsertCalls++
	return nil
}

func (s *stubStore) SetPlayerStatus(_ context.Context, _ pgx.Tx, _ int64, _ int64, status enums.ParticipationStatus) error {
	s.playerStatus = status
	return nil
}

func (s *stubStore) SetStatus(_ context.Context, _ pgx.Tx, _ int64, status enums.GametimeStatus) error {
	s.setStatus = status
	return nil
}

func (s *stubStore) ListUpcoming(context.Context, int) ([]model.Gametime, error) {
	return nil, nil
}

type recordingHook struct {
	calls  int
	userID int64
	reason string
}

func (h *recordingHook) Award(_ context.Context, userID int64, reason, _ string) {
	h.calls++
	h.userID = userID
	h.reason = reason
}

func upcomingGametime() model.Gametime {
	return model.Gametime{
		ID:          1,
		CreatorID:   10,
		Activity:    "padel",
		Capacity:    4,
		PlayerCount: 2,
		Status:      enums.GametimeStatusUpcoming,
	}
}

func newServiceForTest(store Store, hook ProgressionHook) *Service {
	svc := NewService(nil, store, hook, zap.NewNop())
	svc.runTx = func(ctx context.Context, _ *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	svc.now = func() time.Time {
		return time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreateValidatesCapacity(t *testing.T) {
	svc := newServiceForTest(&stubStore{}, nil)
	starts := time.Date(2026, time.January, 6, 18, 0, 0, 0, time.UTC)

	if _, err := svc.Create(context.Background(), 10, "padel", starts, starts.Add(time.Hour), 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for capacity 1, got %v", err)
	}
}

func TestCreateStartsWithCreatorSeat(t *testing.T) {
	store := &stubStore{}
	svc := newServiceForTest(store, nil)
	starts := time.Date(2026, time.January, 6, 18, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), 10, "padel", starts, starts.Add(time.Hour), 4)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.PlayerCount != 1 {
		t.Fatalf("expected counter to start at 1, got %d", created.PlayerCount)
	}
}

func TestJoinAdmitsAndAwards(t *testing.T) {
	store := &stubStore{gametime: upcomingGametime(), playerErr: pgrepo.ErrPlayerNotFound}
	hook := &recordingHook{}
	svc := newServiceForTest(store, hook)

	joined, err := svc.Join(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if store.incrementCalls != 1 || store.upsertCalls != 1 {
		t.Fatalf("expected counter bump and player upsert, got %d/%d", store.incrementCalls, store.upsertCalls)
	}
	if joined.PlayerCount != 3 {
		t.Fatalf("expected player count 3, got %d", joined.PlayerCount)
	}
	if hook.calls != 1 || hook.userID != 7 {
		t.Fatalf("expected progression award for user 7")
	}
}

func TestJoinFullGametime(t *testing.T) {
	store := &stubStore{
		gametime:     upcomingGametime(),
		playerErr:    pgrepo.ErrPlayerNotFound,
		incrementErr: pgrepo.ErrGametimeFull,
	}
	svc := newServiceForTest(store, &recordingHook{})

	if _, err := svc.Join(context.Background(), 7, 1); !errors.Is(err, admissionsvc.ErrCapacityFull) {
		t.Fatalf("expected ErrCapacityFull, got %v", err)
	}
	if store.upsertCalls != 0 {
		t.Fatalf("player row must not be written on a full gametime")
	}
}

func TestJoinTwiceRejected(t *testing.T) {
	store := &stubStore{
		gametime: upcomingGametime(),
		player:   model.GametimePlayer{GametimeID: 1, UserID: 7, Status: enums.ParticipationStatusJoined},
	}
	svc := newServiceForTest(store, &recordingHook{})

	if _, err := svc.Join(context.Background(), 7, 1); !errors.Is(err, admissionsvc.ErrAlreadyAdmitted) {
		t.Fatalf("expected ErrAlreadyAdmitted, got %v", err)
	}
}

func TestJoinCancelledGametime(t *testing.T) {
	gametime := upcomingGametime()
	gametime.Status = enums.GametimeStatusCancelled
	store := &stubStore{gametime: gametime, playerErr: pgrepo.ErrPlayerNotFound}
	svc := newServiceForTest(store, &recordingHook{})

	if _, err := svc.Join(context.Background(), 7, 1); !errors.Is(err, admissionsvc.ErrNotAdmittable) {
		t.Fatalf("expected ErrNotAdmittable, got %v", err)
	}
}

func TestRejoinAfterLeaveFlipsRecord(t *testing.T) {
	store := &stubStore{
		gametime: upcomingGametime(),
		player:   model.GametimePlayer{GametimeID: 1, UserID: 7, Status: enums.ParticipationStatusLeft},
	}
	svc := newServiceForTest(store, &recordingHook{})

	if _, err := svc.Join(context.Background(), 7, 1); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if store.upsertCalls != 1 {
		t.Fatalf("expected record flip via upsert")
	}
}

func TestLeaveDecrementsWithCreatorFloor(t *testing.T) {
	store := &stubStore{
		gametime: upcomingGametime(),
		player:   model.GametimePlayer{GametimeID: 1, UserID: 7, Status: enums.ParticipationStatusJoined},
	}
	svc := newServiceForTest(store, nil)

	left, err := svc.Leave(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if store.decrementCalls != 1 || store.decrementFloor != 1 {
		t.Fatalf("expected decrement with floor 1, got calls=%d floor=%d", store.decrementCalls, store.decrementFloor)
	}
	if store.playerStatus != enums.ParticipationStatusLeft {
		t.Fatalf("expected player flipped to left, got %q", store.playerStatus)
	}
	if left.PlayerCount != 1 {
		t.Fatalf("expected player count 1, got %d", left.PlayerCount)
	}
}

func TestCreatorCannotLeave(t *testing.T) {
	store := &stubStore{
		gametime: upcomingGametime(),
		player:   model.GametimePlayer{GametimeID: 1, UserID: 10, Status: enums.ParticipationStatusJoined},
	}
	svc := newServiceForTest(store, nil)

	if _, err := svc.Leave(context.Background(), 10, 1); !errors.Is(err, admissionsvc.ErrOwnerCannotWithdraw) {
		t.Fatalf("expected ErrOwnerCannotWithdraw, got %v", err)
	}
}

func TestLeaveWithoutJoining(t *testing.T) {
	store := &stubStore{gametime: upcomingGametime(), playerErr: pgrepo.ErrPlayerNotFound}
	svc := newServiceForTest(store, nil)

	if _, err := svc.Leave(context.Background(), 7, 1); !errors.Is(err, admissionsvc.ErrNotAdmitted) {
		t.Fatalf("expected ErrNotAdmitted, got %v", err)
	}
}

func TestCancelCreatorOnly(t *testing.T) {
	store := &stubStore{gametime: upcomingGametime()}
	svc := newServiceForTest(store, nil)

	if err := svc.Cancel(context.Background(), 7, 1); !errors.Is(err, ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}

	if err := svc.Cancel(context.Background(), 10, 1); err != nil {
		t.Fatalf("cancel by creator: %v", err)
	}
	if store.setStatus != enums.GametimeStatusCancelled {
		t.Fatalf("expected cancelled status write, got %q", store.setStatus)
	}
}

func TestCancelRequiresUpcoming(t *testing.T) {
	gametime := upcomingGametime()
	gametime.Status = enums.GametimeStatusCompleted
	svc := newServiceForTest(&stubStore{gametime: gametime}, nil)

	if err := svc.Cancel(context.Background(), 10, 1); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
}
