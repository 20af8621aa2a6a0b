package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/playpal-app/backend/internal/domain/model"
	pgrepo "github.com/playpal-app/backend/internal/repo/postgres"
)

type stubStore struct {
	match           model.Match
	getErr          error
	deactivated     bool
	deactivateCalls int
	records         []pgrepo.ActiveMatchRecord
}

func (s *stubStore) GetByUsers(context.Context, int64, int64) (model.Match, error) {
	if s.getErr != nil {
		return model.Match{}, s.getErr
	}
	return s.match, nil
}

func (s *stubStore) Deactivate(context.Context, pgx.Tx, int64, int64) (bool, error) {
	s.deactivateCalls++
	return s.deactivated, nil
}

func (s *stubStore) ListActiveForUser(context.Context, int64, int) ([]pgrepo.ActiveMatchRecord, error) {
	return s.records, nil
}

func newServiceForTest(store Store) *Service {
	svc := NewService(nil, store)
	svc.runTx = func(ctx context.Context, _ *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return svc
}

func TestListMapsRecords(t *testing.T) {
	createdAt := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	store := &stubStore{records: []pgrepo.ActiveMatchRecord{
		{ID: 9, PartnerUserID: 8, CreatedAt: createdAt},
	}}
	svc := newServiceForTest(store)

	items, err := svc.List(context.Background(), 3, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].PartnerUserID != 8 || !items[0].CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected item %+v", items[0])
	}
}

func TestGetActiveMatch(t *testing.T) {
	createdAt := time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)
	store := &stubStore{match: model.Match{ID: 9, UserAID: 3, UserBID: 8, Active: true, CreatedAt: createdAt}}
	svc := newServiceForTest(store)

	item, err := svc.Get(context.Background(), 3, 8)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item.ID != 9 || item.PartnerUserID != 8 || !item.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestGetDeactivatedMatchHidden(t *testing.T) {
	store := &stubStore{match: model.Match{ID: 9, UserAID: 3, UserBID: 8, Active: false}}
	svc := newServiceForTest(store)

	if _, err := svc.Get(context.Background(), 3, 8); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("expected ErrNoActiveMatch, got %v", err)
	}
}

func TestGetMissingMatch(t *testing.T) {
	svc := newServiceForTest(&stubStore{getErr: pgrepo.ErrMatchNotFound})

	if _, err := svc.Get(context.Background(), 3, 8); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("expected ErrNoActiveMatch, got %v", err)
	}
}

func TestUnmatchActivePair(t *testing.T) {
	store := &stubStore{deactivated: true}
	svc := newServiceForTest(store)

	if err := svc.Unmatch(context.Background(), 3, 8); err != nil {
		t.Fatalf("unmatch: %v", err)
	}
	if store.deactivateCalls != 1 {
		t.Fatalf("expected one deactivate call, got %d", store.deactivateCalls)
	}
}

func TestUnmatchWithoutActiveMatch(t *testing.T) {
	svc := newServiceForTest(&stubStore{deactivated: false})

	if err := svc.Unmatch(context.Background(), 3, 8); !errors.Is(err, ErrNoActiveMatch) {
		t.Fatalf("expected ErrNoActiveMatch, got %v", err)
	}
}

func TestUnmatchSelfRejected(t *testing.T) {
	svc := newServiceForTest(&stubStore{})

	if err := svc.Unmatch(context.Background(), 3, 3); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
