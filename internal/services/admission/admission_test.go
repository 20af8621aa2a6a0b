package admission

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type stubGate struct {
	admittableErr error
	occupancy     Occupancy
	occupantErr   error
	claimErr      error

	claimCalls    int
	releaseCalls  int
	recordedAdmit int64
	recordedLeave int64
}

func (g *stubGate) CheckAdmittable(context.Context, pgx.Tx) error { return g.admittableErr }

func (g *stubGate) Occupant(_ context.Context, _ pgx.Tx, _ int64) (Occupancy, error) {
	return g.occupancy, g.occupantErr
}

func (g *stubGate) ClaimSeat(context.Context, pgx.Tx) error {
	g.claimCalls++
	return g.claimErr
}

func (g *stubGate) RecordAdmission(_ context.Context, _ pgx.Tx, userID int64) error {
	g.recordedAdmit = userID
	return nil
}

func (g *stubGate) RecordWithdrawal(_ context.Context, _ pgx.Tx, userID int64) error {
	g.recordedLeave = userID
	return nil
}

func (g *stubGate) ReleaseSeat(context.Context, pgx.Tx) error {
	g.releaseCalls++
	return nil
}

func TestAdmitHappyPath(t *testing.T) {
	gate := &stubGate{occupancy: OccupancyNone}

	if err := Admit(context.Background(), nil, gate, 7); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if gate.claimCalls != 1 {
		t.Fatalf("expected 1 seat claim, got %d", gate.claimCalls)
	}
	if gate.recordedAdmit != 7 {
		t.Fatalf("expected admission recorded for user 7, got %d", gate.recordedAdmit)
	}
}

func TestAdmitFlipsWithdrawnRecord(t *testing.T) {
	gate := &stubGate{occupancy: OccupancyWithdrawn}

	if err := Admit(context.Background(), nil, gate, 7); err != nil {
		t.Fatalf("admit after withdrawal: %v", err)
	}
	if gate.claimCalls != 1 || gate.recordedAdmit != 7 {
		t.Fatalf("expected re-admit to claim seat and flip record")
	}
}

func TestAdmitRejectsAlreadyAdmitted(t *testing.T) {
	gate := &stubGate{occupancy: OccupancyAdmitted}

	if err := Admit(context.Background(), nil, gate, 7); !errors.Is(err, ErrAlreadyAdmitted) {
		t.Fatalf("expected ErrAlreadyAdmitted, got %v", err)
	}
	if gate.claimCalls != 0 {
		t.Fatalf("seat must not be claimed for an admitted actor")
	}
}

func TestAdmitStopsOnStateError(t *testing.T) {
	gate := &stubGate{admittableErr: ErrNotAdmittable}

	if err := Admit(context.Background(), nil, gate, 7); !errors.Is(err, ErrNotAdmittable) {
		t.Fatalf("expected ErrNotAdmittable, got %v", err)
	}
	if gate.claimCalls != 0 {
		t.Fatalf("seat must not be claimed when resource is not admittable")
	}
}

func TestAdmitPropagatesCapacityFull(t *testing.T) {
	gate := &stubGate{occupancy: OccupancyNone, claimErr: ErrCapacityFull}

	if err := Admit(context.Background(), nil, gate, 7); !errors.Is(err, ErrCapacityFull) {
		t.Fatalf("expected ErrCapacityFull, got %v", err)
	}
	if gate.recordedAdmit != 0 {
		t.Fatalf("record must not be written when capacity claim fails")
	}
}

func TestWithdrawHappyPath(t *testing.T) {
	gate := &stubGate{occupancy: OccupancyAdmitted}

	if err := Withdraw(context.Background(), nil, gate, 7, 1); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if gate.recordedLeave != 7 {
		t.Fatalf("expected withdrawal recorded for user 7, got %d", gate.recordedLeave)
	}
	if gate.releaseCalls != 1 {
		t.Fatalf("expected 1 seat release, got %d", gate.releaseCalls)
	}
}

func TestWithdrawRejectsOwner(t *testing.T) {
	gate := &stubGate{occupancy: OccupancyAdmitted}

	if err := Withdraw(context.Background(), nil, gate, 7, 7); !errors.Is(err, ErrOwnerCannotWithdraw) {
		t.Fatalf("expected ErrOwnerCannotWithdraw, got %v", err)
	}
	if gate.releaseCalls != 0 {
		t.Fatalf("seat must not be released for an owner withdrawal")
	}
}

func TestWithdrawRequiresAdmittedRecord(t *testing.T) {
	for _, occ := range []Occupancy{OccupancyNone, OccupancyWithdrawn} {
		gate := &stubGate{occupancy: occ}
		if err := Withdraw(context.Background(), nil, gate, 7, 1); !errors.Is(err, ErrNotAdmitted) {
			t.Fatalf("occupancy %d: expected ErrNotAdmitted, got %v", occ, err)
		}
	}
}
