package table

import (
	"time"

	"github.com/uwan-net/dflood/packet"
)

// DataKey identifies a data-packet table entry.
type DataKey struct {
	Source   packet.Addr
	DestSink packet.Addr
	Seq      packet.SeqNum
}

// DataEntry is the soft state kept per observed data packet (spec.md §3.3,
// §4.4, §4.8).
type DataEntry struct {
	PendingBytes   []byte // nil once cancelled or forwarded
	LastHeard      time.Time
	ForwardingTime time.Time
	Scheduled      bool
	Duplicates     int
}

// DataState is a derived classification of a DataEntry's lifecycle state
// (spec.md §4.8). It is never stored; DataEntry.State() computes it on demand
// for diagnostics and tests.
type DataState int

const (
	// StatePending: scheduled, duplicates below quota.
	StatePending DataState = iota
	// StateSuppressed: not scheduled, duplicate quota reached.
	StateSuppressed
	// StateCancelled: not scheduled, receive notification observed
	// (PendingBytes is nil and Duplicates is not the reason).
	StateCancelled
	// StateForwarded: not scheduled, emission already happened.
	StateForwarded
)

// State classifies e per spec.md §4.8. Cancelled and Forwarded both present
// as "not scheduled, PendingBytes == nil" and the entry keeps no record of
// which one happened, so State reports both as StateForwarded and never
// returns StateCancelled.
func (e DataEntry) State() DataState {
	if e.Scheduled {
		return StatePending
	}
	if e.PendingBytes == nil {
		return StateForwarded
	}
	return StateSuppressed
}

// DataTable holds one DataEntry per (Source, DestSink, Seq).
type DataTable struct {
	entries map[DataKey]*DataEntry
}

// NewDataTable returns an empty table.
func NewDataTable() *DataTable {
	return &DataTable{entries: make(map[DataKey]*DataEntry)}
}

// Get returns the entry for key, and whether it exists.
func (t *DataTable) Get(key DataKey) (DataEntry, bool) {
	e, ok := t.entries[key]
	if !ok {
		return DataEntry{}, false
	}
	return *e, true
}

// Create inserts a brand-new scheduled entry for key (spec.md §4.4.2 "New").
func (t *DataTable) Create(key DataKey, pending []byte, now, forwardingTime time.Time) DataEntry {
	e := &DataEntry{
		PendingBytes:   pending,
		LastHeard:      now,
		ForwardingTime: forwardingTime,
		Scheduled:      true,
		Duplicates:     0,
	}
	t.entries[key] = e
	return *e
}

// RecordDuplicate increments Duplicates for an existing entry and
// unschedules it once the quota ndupl is reached (spec.md §4.4.2
// "Duplicate", §3.4 invariant 3). Other fields are left unchanged.
func (t *DataTable) RecordDuplicate(key DataKey, ndupl int) DataEntry {
	e := t.entries[key]
	e.Duplicates++
	e.Scheduled = e.Duplicates < ndupl
	return *e
}

// Cancel clears a pending forward on receipt of a matching NOTI (spec.md
// §4.5, §3.4 invariant 4). Duplicates and LastHeard are left unchanged.
func (t *DataTable) Cancel(key DataKey) DataEntry {
	e := t.entries[key]
	e.PendingBytes = nil
	e.ForwardingTime = time.Time{}
	e.Scheduled = false
	return *e
}

// DueForForward returns the keys of all entries eligible for forwarding on
// this tick: scheduled, within the duplicate quota, and past their
// forwarding time (spec.md §4.7.3).
func (t *DataTable) DueForForward(now time.Time, ndupl int) []DataKey {
	var due []DataKey
	for k, v := range t.entries {
		if v.Scheduled && v.Duplicates <= ndupl && !now.Before(v.ForwardingTime) {
			due = append(due, k)
		}
	}
	return due
}

// MarkForwarded clears the pending bytes and schedule flag after the
// forward has been emitted (spec.md §4.7.3).
func (t *DataTable) MarkForwarded(key DataKey) DataEntry {
	e := t.entries[key]
	e.PendingBytes = nil
	e.ForwardingTime = time.Time{}
	e.Scheduled = false
	return *e
}

// Age purges entries whose last-heard time is older than lifetime relative
// to now, returning the keys removed.
func (t *DataTable) Age(now time.Time, lifetime time.Duration) []DataKey {
	var purged []DataKey
	for k, v := range t.entries {
		if now.Sub(v.LastHeard) > lifetime {
			delete(t.entries, k)
			purged = append(purged, k)
		}
	}
	return purged
}

// Len reports the current entry count.
func (t *DataTable) Len() int { return len(t.entries) }
