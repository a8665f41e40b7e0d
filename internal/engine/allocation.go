package engine

import (
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
)

// Draft is a reservation about to be written.
type Draft struct {
	// ID is set when the draft edits an existing reservation.
	ID     string
	Date   reservation.Date
	Time   reservation.TimeOfDay
	Guests int
	// Table is the caller-supplied table. With table management off it is
	// stored verbatim; otherwise a Configured value is a preference.
	Table reservation.TableRef
}

// Assign resolves the table a draft will be committed with.
func Assign(s Snapshot, d Draft, now time.Time) (reservation.TableRef, error) {
	if !s.Parameters.ManageDisponibilities {
		return d.Table, nil
	}
	free, err := freeTables(s, d, now)
	if err != nil {
		return nil, err
	}
	if pref, ok := d.Table.(reservation.Configured); ok {
		if t, ok := findTable(free, pref.TableID); ok {
			return t.Ref(), nil
		}
	}
	return free[0].Ref(), nil
}

// Change carries the fields an edit touches. Nil fields are unchanged.
type Change struct {
	Date   *reservation.Date
	Time   *reservation.TimeOfDay
	Guests *int
	Table  reservation.TableRef
	// Reactivate forces re-resolution at an unchanged slot. Set it when a
	// reservation that no longer blocks capacity is made blocking again.
	Reactivate bool
}

// Reassignment is the outcome of re-resolving an edited reservation's table.
type Reassignment struct {
	Table      reservation.TableRef
	Reassigned bool
	// PreviousTableName is set when Reassigned is true.
	PreviousTableName string
}

// ApplyTo returns a draft for existing with the change applied.
func (c Change) ApplyTo(existing reservation.Reservation) Draft {
	d := Draft{ID: existing.ID, Date: existing.Date, Time: existing.Time, Guests: existing.Guests, Table: c.Table}
	if c.Date != nil {
		d.Date = *c.Date
	}
	if c.Time != nil {
		d.Time = *c.Time
	}
	if c.Guests != nil {
		d.Guests = *c.Guests
	}
	return d
}

// SlotChanged reports whether the edit moves the reservation or resizes the party.
func (c Change) SlotChanged(existing reservation.Reservation) bool {
	if c.Reactivate {
		return true
	}
	d := c.ApplyTo(existing)
	return d.Date != existing.Date || d.Time != existing.Time || d.Guests != existing.Guests
}

// Reassign re-resolves the table of an edited reservation. Edits that keep the
// slot and party size leave the table untouched; otherwise the previously held
// table is kept while it is still free, and a move is reported when it is not.
func Reassign(s Snapshot, existing reservation.Reservation, c Change, now time.Time) (Reassignment, error) {
	if !s.Parameters.ManageDisponibilities {
		table := existing.Table
		if c.Table != nil {
			table = c.Table
		}
		return Reassignment{Table: table}, nil
	}

	d := c.ApplyTo(existing)
	if !c.SlotChanged(existing) {
		pref, ok := c.Table.(reservation.Configured)
		if !ok || sameConfigured(existing.Table, pref.TableID) {
			return Reassignment{Table: existing.Table}, nil
		}
		// explicit move to another table at the same slot
		free, err := freeTables(s, d, now)
		if err != nil {
			return Reassignment{}, err
		}
		t, ok := findTable(free, pref.TableID)
		if !ok {
			return Reassignment{}, &AllocationError{Reason: ReasonCapacityExhausted, Guests: d.Guests, TableSize: RequiredTableSize(d.Guests)}
		}
		return Reassignment{Table: t.Ref()}, nil
	}

	free, err := freeTables(s, d, now)
	if err != nil {
		return Reassignment{}, err
	}
	if pref, ok := c.Table.(reservation.Configured); ok {
		if t, ok := findTable(free, pref.TableID); ok {
			return Reassignment{Table: t.Ref()}, nil
		}
	}
	if prev, ok := existing.Table.(reservation.Configured); ok {
		if t, ok := findTable(free, prev.TableID); ok {
			return Reassignment{Table: t.Ref()}, nil
		}
		// a recreated table under the same name is still the guest's table
		if id, ok := matchByName(free, prev.Name); ok {
			t, _ := findTable(free, id)
			return Reassignment{Table: t.Ref()}, nil
		}
	}
	r := Reassignment{Table: free[0].Ref()}
	if existing.Table != nil {
		r.Reassigned = true
		r.PreviousTableName = existing.Table.DisplayName()
	}
	return r, nil
}

func freeTables(s Snapshot, d Draft, now time.Time) ([]reservation.Table, error) {
	size := RequiredTableSize(d.Guests)
	if len(EligibleTables(s.Parameters.Tables, size)) == 0 {
		return nil, &AllocationError{Reason: ReasonNoTableOfSize, Guests: d.Guests, TableSize: size}
	}
	q := Query{Date: d.Date, Guests: d.Guests, Exclude: d.ID, Now: now}
	free := AvailableTables(s, q, d.Time)
	if len(free) == 0 {
		return nil, &AllocationError{Reason: ReasonCapacityExhausted, Guests: d.Guests, TableSize: size}
	}
	return free, nil
}

func findTable(tables []reservation.Table, id string) (reservation.Table, bool) {
	for _, t := range tables {
		if t.ID == id {
			return t, true
		}
	}
	return reservation.Table{}, false
}

func sameConfigured(ref reservation.TableRef, id string) bool {
	c, ok := ref.(reservation.Configured)
	return ok && c.TableID == id
}
