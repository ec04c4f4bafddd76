package engine

import (
	"time"

	"github.com/uwan-net/dflood/packet"
	"github.com/uwan-net/dflood/table"
)

// handleDataLocked processes a validated DATA frame: final delivery,
// transit forwarding with duplicate suppression, or silent drop when no
// gradient is known (spec.md §4.4). The caller must hold e.mu.
func (e *Engine) handleDataLocked(f packet.DataFrame, meta packet.Metadata, raw []byte) {
	now := e.now()

	if f.Dest == e.addr() {
		e.diag.LogData(raw)
		e.sendNotificationLocked(f.Source, f.Seq)
		e.emitApp(f.Payload, meta)
		return
	}

	sinkEntry, known := e.sinks.Get(f.Dest)
	if !known {
		e.logf("%d: no gradient to %d, dropping data packet", e.cfg.Addr, f.Dest)
		return
	}

	myHops := sinkEntry.MinHops
	if int(f.TTL)-1 < int(myHops) {
		e.logf("%d: TTL too small for data packet toward %d, dropping", e.cfg.Addr, f.Dest)
		return
	}

	key := table.DataKey{Source: f.Source, DestSink: f.Dest, Seq: f.Seq}
	existing, ok := e.data.Get(key)
	if !ok {
		forward := f
		forward.Sender = e.addr()
		forward.Hops = myHops
		forward.TTL = f.TTL - 1
		raw := packet.EncodeData(forward)

		delay := e.cfg.Tmin + time.Duration(e.rng.Float64()*float64(e.cfg.Tmax-e.cfg.Tmin))
		entry := e.data.Create(key, raw, now, now.Add(delay))
		e.logf("%d: new data packet %+v scheduled at %v", e.cfg.Addr, key, entry.ForwardingTime)
		return
	}

	if f.Hops <= myHops {
		e.data.RecordDuplicate(key, e.ndupl())
		e.mtr.DuplicateSuppressed()
		e.logf("%d: duplicate data packet %+v, duplicates=%d", e.cfg.Addr, key, existing.Duplicates+1)
	}
}

// sendNotificationLocked emits a NOTI frame acknowledging source/seq to the
// radio link (spec.md §4.4.1).
func (e *Engine) sendNotificationLocked(source packet.Addr, seq packet.SeqNum) {
	f := packet.NotiFrame{Sender: e.addr(), Source: source, Seq: seq}
	e.emitRadio(packet.EncodeNoti(f))
	e.mtr.NotificationSent()
}

// handleNotiLocked processes a validated NOTI frame, cancelling the
// matching data-table entry's pending forward if one exists (spec.md
// §4.5). The caller must hold e.mu.
//
// The key mapping is intentionally not symmetric with handleDataLocked's
// key: in a NOTI, Source is the original data sender and Sender is the
// hearing node, so the data-table key this NOTI cancels is
// (Source, Sender, Seq) — matching the key the forwarder populated when it
// scheduled its own retransmission toward that next hop.
func (e *Engine) handleNotiLocked(f packet.NotiFrame) {
	key := table.DataKey{Source: f.Source, DestSink: f.Sender, Seq: f.Seq}
	if _, ok := e.data.Get(key); ok {
		e.data.Cancel(key)
		e.logf("%d: data packet %+v cancelled by notification", e.cfg.Addr, key)
	}
}

// FromApp is the from_app ingress: wraps payload bytes as a DATA packet
// toward the configured sink and emits it on to_radio (spec.md §4.6). If no
// gradient toward SinkAddr is known, the payload is dropped silently.
func (e *Engine) FromApp(payload []byte, meta packet.Metadata) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sinkEntry, known := e.sinks.Get(e.sinkAddr())
	if !known {
		e.logf("%d: no gradient to configured sink %d, dropping app payload", e.cfg.Addr, e.cfg.SinkAddr)
		return
	}

	f := packet.DataFrame{
		Sender:  e.addr(),
		Source:  e.addr(),
		Seq:     e.pktCnt,
		Hops:    sinkEntry.MinHops,
		Dest:    e.sinkAddr(),
		TTL:     uint8(sinkEntry.MinHops) + e.ttlMargin(),
		Payload: payload,
	}
	e.emitRadio(packet.EncodeData(f))
	e.pktCnt++ // wraps modulo 256 via packet.SeqNum's uint8 storage
	e.mtr.PacketForwarded(packet.ProtoData)
}
