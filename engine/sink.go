package engine

import (
	"github.com/uwan-net/dflood/packet"
	"github.com/uwan-net/dflood/table"
)

// handleSinkLocked processes a validated SINK frame: sink-neighbor update,
// broadcast-interval arbitration, and sink-table update (spec.md §4.3). The
// caller must hold e.mu.
func (e *Engine) handleSinkLocked(f packet.SinkFrame) {
	now := e.now()

	// 1. Sink-neighbor update.
	nbKey := table.NeighborKey{Sender: f.Sender, Source: f.Source}
	nbEntry := e.neighbors.Upsert(nbKey, f.Seq, f.Hops, now, e.cfg.BroadcastInterval)
	e.logf("%d: sink-neighbor %+v updated, interval=%v", e.cfg.Addr, nbKey, nbEntry.EstimatedPeriod)

	// 2. Broadcast-interval arbitration: when multiple sinks coexist, the
	// lower-addressed sink "wins". This reads the just-updated neighbor
	// entry's interval, not necessarily the minimum-address neighbor's —
	// preserved from the original implementation (spec.md §9(b)).
	if minAddr, ok := e.neighbors.MinSender(); ok && e.addr() > minAddr {
		e.cfg.BroadcastInterval = nbEntry.EstimatedPeriod
		e.logf("%d: broadcast interval adopted from neighbor: %v", e.cfg.Addr, e.cfg.BroadcastInterval)
	}

	// 3. Sink-table update.
	sinkKey := f.Source
	existing, ok := e.sinks.Get(sinkKey)
	if !ok {
		entry := e.sinks.Create(sinkKey, f.Seq, f.Hops, now, e.cfg.SmallBackoff)
		e.logf("%d: new sink entry %d: %+v", e.cfg.Addr, sinkKey, entry)
		return
	}

	switch {
	case f.Seq > existing.HighestSeq:
		entry := e.sinks.ApplyNewerSeq(sinkKey, f.Seq, f.Hops, now, e.cfg.SmallBackoff, e.cfg.LargeBackoff)
		e.logf("%d: sink %d entry updated (newer seq): %+v", e.cfg.Addr, sinkKey, entry)
	case f.Seq == existing.HighestSeq:
		switch {
		case !existing.Scheduled && f.Hops < existing.MinHops:
			entry := e.sinks.ApplySameSeqNotScheduled(sinkKey, f.Hops, now, e.cfg.LowBackoff)
			e.logf("%d: sink %d entry updated (same seq, rescheduled): %+v", e.cfg.Addr, sinkKey, entry)
		case existing.Scheduled && f.Hops < existing.TentativeMinHops:
			entry := e.sinks.ApplySameSeqBetterTentative(sinkKey, f.Hops, now)
			e.logf("%d: sink %d entry updated (better tentative hops): %+v", e.cfg.Addr, sinkKey, entry)
		default:
			// Same seq, no improvement: falls through with no scheduling
			// change, only a freshness touch. Intentional (spec.md §9(a)).
			e.sinks.TouchLastHeard(sinkKey, now)
		}
	default:
		// Stale seq (non-wrap-aware comparison, spec.md §9(c)): ignored
		// except for freshness.
		e.sinks.TouchLastHeard(sinkKey, now)
	}
}
