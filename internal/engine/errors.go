package engine

import (
	"errors"
	"fmt"
)

// ErrNoTableAvailable matches every AllocationError via errors.Is.
var ErrNoTableAvailable = errors.New("no table available")

// Code is the distinguished error condition exposed to callers.
const Code = "NO_TABLE_AVAILABLE"

type Reason string

const (
	// ReasonNoTableOfSize: no configured table has the required seat count.
	ReasonNoTableOfSize Reason = "no_table_of_size"
	// ReasonCapacityExhausted: every eligible table is claimed at the slot.
	ReasonCapacityExhausted Reason = "capacity_exhausted"
)

type AllocationError struct {
	Reason    Reason
	Guests    int
	TableSize int
}

func (e *AllocationError) Error() string {
	switch e.Reason {
	case ReasonNoTableOfSize:
		return fmt.Sprintf("no table available: no %d-seat tables configured for %d guests", e.TableSize, e.Guests)
	default:
		return fmt.Sprintf("no table available: all %d-seat tables are taken", e.TableSize)
	}
}

func (e *AllocationError) Is(target error) bool { return target == ErrNoTableAvailable }
