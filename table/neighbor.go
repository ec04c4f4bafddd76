// Package table implements the three soft-state stores of the flooding
// protocol: sink-neighbor, sink, and data-packet. None of these types are
// goroutine-safe; the engine package is the sole owner and serializes all
// access under its own mutex, the way cache.Cache in the teacher repo
// documents itself as "NOT threadsafe" and leaves serialization to the
// caller.
package table

import (
	"time"

	"github.com/uwan-net/dflood/packet"
)

// NeighborKey identifies a sink-neighbor entry: the immediate forwarder and
// the sink it was heard advertising.
type NeighborKey struct {
	Sender packet.Addr
	Source packet.Addr
}

// NeighborEntry is the soft state kept per sink-neighbor.
type NeighborEntry struct {
	LastSeq         packet.SeqNum
	MinHops         packet.HopCount
	LastHeard       time.Time
	EstimatedPeriod time.Duration
}

// NeighborTable estimates each neighbor's sink-beacon cadence and arbitrates
// broadcast-interval adoption among co-located sinks (spec.md §3.3, §4.3.1-2).
type NeighborTable struct {
	entries map[NeighborKey]NeighborEntry
}

// NewNeighborTable returns an empty table.
func NewNeighborTable() *NeighborTable {
	return &NeighborTable{entries: make(map[NeighborKey]NeighborEntry)}
}

// Upsert records a freshly-heard sink beacon from key, computing the EMA of
// the neighbor's observed beacon interval (α=0.8 weight on history) when an
// entry already exists, or seeding it with defaultInterval otherwise. It
// returns the entry as stored.
func (t *NeighborTable) Upsert(key NeighborKey, seq packet.SeqNum, hops packet.HopCount, now time.Time, defaultInterval time.Duration) NeighborEntry {
	prev, existed := t.entries[key]
	interval := defaultInterval
	if existed {
		observed := now.Sub(prev.LastHeard)
		interval = time.Duration(0.8*float64(prev.EstimatedPeriod) + 0.2*float64(observed))
	}
	entry := NeighborEntry{
		LastSeq:         seq,
		MinHops:         hops,
		LastHeard:       now,
		EstimatedPeriod: interval,
	}
	t.entries[key] = entry
	return entry
}

// MinSender returns the smallest Sender address across all entries, and
// false if the table is empty. This mirrors the teacher-faithful (and
// flagged as likely-surprising, see spec.md §9(b)) original behavior: the
// adoption check in engine's handleSinkLocked reads the *just-updated* entry's
// interval, not necessarily the minimum-address neighbor's.
func (t *NeighborTable) MinSender() (packet.Addr, bool) {
	first := true
	var min packet.Addr
	for k := range t.entries {
		if first || k.Sender < min {
			min = k.Sender
			first = false
		}
	}
	return min, !first
}

// Age purges entries whose last-heard time is older than lifetime relative
// to now, returning the keys removed (for diagnostics/metrics).
func (t *NeighborTable) Age(now time.Time, lifetime time.Duration) []NeighborKey {
	var purged []NeighborKey
	for k, v := range t.entries {
		if now.Sub(v.LastHeard) > lifetime {
			delete(t.entries, k)
			purged = append(purged, k)
		}
	}
	return purged
}

// Len reports the current entry count.
func (t *NeighborTable) Len() int { return len(t.entries) }
