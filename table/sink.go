package table

import (
	"time"

	"github.com/uwan-net/dflood/packet"
)

// SinkEntry is the soft state kept per known sink, recording this node's
// current gradient toward it and any pending rebroadcast of its latest
// beacon (spec.md §3.3, §4.3.3, §4.8).
type SinkEntry struct {
	HighestSeq       packet.SeqNum
	MinHops          packet.HopCount
	LastHeard        time.Time
	ForwardingTime   time.Time
	Scheduled        bool
	TentativeMinHops packet.HopCount
}

// SinkTable holds one SinkEntry per known sink address.
type SinkTable struct {
	entries map[packet.Addr]*SinkEntry
}

// NewSinkTable returns an empty table.
func NewSinkTable() *SinkTable {
	return &SinkTable{entries: make(map[packet.Addr]*SinkEntry)}
}

// Get returns the entry for sink, and whether it exists.
func (t *SinkTable) Get(sink packet.Addr) (SinkEntry, bool) {
	e, ok := t.entries[sink]
	if !ok {
		return SinkEntry{}, false
	}
	return *e, true
}

// Create inserts a brand-new entry for sink in the Scheduled state, per
// spec.md §4.3.3 "New entry": min_hops = hc+1, tentative_min_hops = hc,
// scheduled immediately at now+backoff.
func (t *SinkTable) Create(sink packet.Addr, seq packet.SeqNum, hops packet.HopCount, now time.Time, backoff time.Duration) SinkEntry {
	e := &SinkEntry{
		HighestSeq:       seq,
		MinHops:          hops + 1,
		LastHeard:        now,
		ForwardingTime:   now.Add(backoff),
		Scheduled:        true,
		TentativeMinHops: hops,
	}
	t.entries[sink] = e
	return *e
}

// ApplyNewerSeq handles spec.md §4.3.3 "Newer seq": the beacon's seq is
// strictly greater than the entry's highest. min_hops is left untouched
// until the scheduled forward actually fires.
func (t *SinkTable) ApplyNewerSeq(sink packet.Addr, seq packet.SeqNum, hops packet.HopCount, now time.Time, smallBackoff, largeBackoff time.Duration) SinkEntry {
	e := t.entries[sink]
	e.HighestSeq = seq
	e.TentativeMinHops = hops
	e.Scheduled = true
	if hops > e.MinHops {
		e.ForwardingTime = now.Add(largeBackoff)
	} else {
		e.ForwardingTime = now.Add(smallBackoff)
	}
	e.LastHeard = now
	return *e
}

// ApplySameSeqNotScheduled handles spec.md §4.3.3 "Same seq, not currently
// scheduled, and hc < min_hops": schedule with low backoff.
func (t *SinkTable) ApplySameSeqNotScheduled(sink packet.Addr, hops packet.HopCount, now time.Time, lowBackoff time.Duration) SinkEntry {
	e := t.entries[sink]
	e.TentativeMinHops = hops
	e.Scheduled = true
	e.ForwardingTime = now.Add(lowBackoff)
	e.LastHeard = now
	return *e
}

// ApplySameSeqBetterTentative handles spec.md §4.3.3 "Same seq, currently
// scheduled, and hc < tentative_min_hops": lower TentativeMinHops only.
func (t *SinkTable) ApplySameSeqBetterTentative(sink packet.Addr, hops packet.HopCount, now time.Time) SinkEntry {
	e := t.entries[sink]
	e.TentativeMinHops = hops
	e.LastHeard = now
	return *e
}

// TouchLastHeard refreshes LastHeard without any other change, used by the
// "same seq, no improvement" fallthrough path of spec.md §4.3.3 and §9(a).
func (t *SinkTable) TouchLastHeard(sink packet.Addr, now time.Time) SinkEntry {
	e := t.entries[sink]
	e.LastHeard = now
	return *e
}

// Commit transitions a scheduled entry to Committed after its forward has
// fired (spec.md §4.7.2, §4.8): min_hops becomes tentative_min_hops+1,
// forwarding_time and scheduled are cleared.
func (t *SinkTable) Commit(sink packet.Addr) SinkEntry {
	e := t.entries[sink]
	e.MinHops = e.TentativeMinHops + 1
	e.ForwardingTime = time.Time{}
	e.Scheduled = false
	return *e
}

// DueForForward returns the addresses of all sinks with a scheduled forward
// whose forwarding time has arrived, for the tick handler to emit and then
// Commit. Order is unspecified (map iteration), matching the teacher's
// "take a copy of key list" approach in check_sink_table()/ctrl_rx().
func (t *SinkTable) DueForForward(now time.Time) []packet.Addr {
	var due []packet.Addr
	for k, v := range t.entries {
		if v.Scheduled && !now.Before(v.ForwardingTime) {
			due = append(due, k)
		}
	}
	return due
}

// Age purges entries whose last-heard time is older than lifetime relative
// to now, returning the keys removed.
func (t *SinkTable) Age(now time.Time, lifetime time.Duration) []packet.Addr {
	var purged []packet.Addr
	for k, v := range t.entries {
		if now.Sub(v.LastHeard) > lifetime {
			delete(t.entries, k)
			purged = append(purged, k)
		}
	}
	return purged
}

// Len reports the current entry count.
func (t *SinkTable) Len() int { return len(t.entries) }
