package engine

import (
	"time"

	"github.com/uwan-net/dflood/packet"
)

// Tick is the ctrl_in handler, fired by an external periodic source. In
// order: consider originating a sink beacon, release due sink-table and
// data-table forwards, then age all three tables (spec.md §4.7). Releasing
// scheduled transmissions before aging means an entry that would have aged
// out this tick but was still scheduled and ready gets one final forward.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isSink() {
		e.maybeOriginateBeaconLocked()
	} else {
		e.releaseSinkForwardsLocked()
	}
	e.releaseDataForwardsLocked()

	e.ageTablesLocked()
	e.reportTableSizes()
}

// maybeOriginateBeaconLocked implements spec.md §4.2: a sink emits a beacon
// when broadcast_interval > 0 and either none has been sent yet, or the
// jittered interval has elapsed.
func (e *Engine) maybeOriginateBeaconLocked() {
	if e.cfg.BroadcastInterval <= 0 {
		return
	}
	now := e.now()
	due := !e.haveLastBeacon
	if !due {
		threshold := time.Duration(float64(e.cfg.BroadcastInterval) * 2 * e.rng.Float64())
		due = now.Sub(e.lastBeacon) >= threshold
	}
	if !due {
		return
	}

	f := packet.SinkFrame{Sender: e.addr(), Source: e.addr(), Seq: e.beaconSeq, Hops: 0}
	e.emitRadio(packet.EncodeSink(f))
	e.beaconSeq++
	e.lastBeacon = now
	e.haveLastBeacon = true
	e.mtr.BeaconSent()
	e.logf("%d: sink beacon sent, seq=%d", e.cfg.Addr, f.Seq)
}

// releaseSinkForwardsLocked emits and commits every sink-table entry whose
// scheduled forward is due (spec.md §4.7.2).
func (e *Engine) releaseSinkForwardsLocked() {
	now := e.now()
	for _, sink := range e.sinks.DueForForward(now) {
		entry, ok := e.sinks.Get(sink)
		if !ok {
			continue
		}
		f := packet.SinkFrame{Sender: e.addr(), Source: sink, Seq: entry.HighestSeq, Hops: entry.MinHops}
		e.emitRadio(packet.EncodeSink(f))
		e.sinks.Commit(sink)
		e.mtr.PacketForwarded(packet.ProtoSink)
		e.logf("%d: forwarded sink beacon for %d", e.cfg.Addr, sink)
	}
}

// releaseDataForwardsLocked emits and clears every data-table entry whose
// scheduled forward is due and within the duplicate quota (spec.md §4.7.3).
func (e *Engine) releaseDataForwardsLocked() {
	now := e.now()
	for _, key := range e.data.DueForForward(now, e.ndupl()) {
		entry, ok := e.data.Get(key)
		if !ok || entry.PendingBytes == nil {
			continue
		}
		e.emitRadio(entry.PendingBytes)
		e.data.MarkForwarded(key)
		e.mtr.PacketForwarded(packet.ProtoData)
		e.logf("%d: forwarded data packet %+v", e.cfg.Addr, key)
	}
}

// ageTablesLocked purges stale entries from all three tables (spec.md
// §4.7.4-6, §3.4 invariant 1).
func (e *Engine) ageTablesLocked() {
	now := e.now()
	if purged := e.neighbors.Age(now, e.cfg.Slt); len(purged) > 0 {
		e.logf("%d: aged %d sink-neighbor entries", e.cfg.Addr, len(purged))
	}
	if purged := e.sinks.Age(now, e.cfg.Slt); len(purged) > 0 {
		e.logf("%d: aged %d sink entries", e.cfg.Addr, len(purged))
	}
	if purged := e.data.Age(now, e.cfg.Plt); len(purged) > 0 {
		e.logf("%d: aged %d data entries", e.cfg.Addr, len(purged))
	}
}
