// Package admission holds the shared admit/withdraw flow for
// capacity-limited resources. The resource services plug in a Gate that
// knows its own occupancy bookkeeping; the flow runs inside the caller's
// transaction so check and claim are one atomic decision.
package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotAdmittable       = errors.New("resource is not accepting admissions")
	ErrDeadlinePassed      = errors.New("admission deadline passed")
	ErrCapacityFull        = errors.New("resource is at capacity")
	ErrAlreadyAdmitted     = errors.New("already admitted")
	ErrNotAdmitted         = errors.New("no admitted record")
	ErrOwnerCannotWithdraw = errors.New("owner cannot withdraw from own resource")
)

type Occupancy int

const (
	// OccupancyNone means the actor has no prior record.
	OccupancyNone Occupancy = iota
	// OccupancyAdmitted means the actor currently holds a seat.
	OccupancyAdmitted
	// OccupancyWithdrawn means a prior terminal record exists and will be
	// flipped back on re-admit instead of duplicated.
	OccupancyWithdrawn
)

// Gate is the per-resource occupancy strategy. Every method runs inside
// the transaction the flow was handed; implementations must not commit.
type Gate interface {
	// CheckAdmittable verifies resource state (and deadline, where one
	// applies). Returns ErrNotAdmittable or ErrDeadlinePassed.
	CheckAdmittable(ctx context.Context, tx pgx.Tx) error
	// Occupant reports the actor's current record, locking it if present.
	Occupant(ctx context.Context, tx pgx.Tx, userID int64) (Occupancy, error)
	// ClaimSeat takes one unit of capacity. Returns ErrCapacityFull.
	ClaimSeat(ctx context.Context, tx pgx.Tx) error
	// RecordAdmission inserts the admitted record or flips a withdrawn one.
	RecordAdmission(ctx context.Context, tx pgx.Tx, userID int64) error
	// RecordWithdrawal flips the admitted record to its terminal status.
	RecordWithdrawal(ctx context.Context, tx pgx.Tx, userID int64) error
	// ReleaseSeat returns one unit of capacity.
	ReleaseSeat(ctx context.Context, tx pgx.Tx) error
}

func Admit(ctx context.Context, tx pgx.Tx, gate Gate, userID int64) error {
	if gate == nil {
		return fmt.Errorf("admission gate is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid admission payload")
	}

	if err := gate.CheckAdmittable(ctx, tx); err != nil {
		return err
	}

	occupancy, err := gate.Occupant(ctx, tx, userID)
	if err != nil {
		return err
	}
	if occupancy == OccupancyAdmitted {
		return ErrAlreadyAdmitted
	}

	if err := gate.ClaimSeat(ctx, tx); err != nil {
		return err
	}

	if err := gate.RecordAdmission(ctx, tx, userID); err != nil {
		return fmt.Errorf("record admission: %w", err)
	}
	return nil
}

func Withdraw(ctx context.Context, tx pgx.Tx, gate Gate, userID, ownerID int64) error {
	if gate == nil {
		return fmt.Errorf("admission gate is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid admission payload")
	}
	if userID == ownerID {
		return ErrOwnerCannotWithdraw
	}

	occupancy, err := gate.Occupant(ctx, tx, userID)
	if err != nil {
		return err
	}
	if occupancy != OccupancyAdmitted {
		return ErrNotAdmitted
	}

	if err := gate.RecordWithdrawal(ctx, tx, userID); err != nil {
		return fmt.Errorf("record withdrawal: %w", err)
	}
	if err := gate.ReleaseSeat(ctx, tx); err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}
