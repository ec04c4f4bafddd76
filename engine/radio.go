package engine

import (
	"github.com/uwan-net/dflood/packet"
)

// FromRadio is the from_radio ingress: decode, validate, and dispatch by
// protocol ID (spec.md §4.1, §4.3-4.5). Decoding failures are silent no-ops
// except for an optional debug log line and a drop-reason metric.
func (e *Engine) FromRadio(raw []byte, meta packet.Metadata) {
	e.mu.Lock()
	defer e.mu.Unlock()

	frame, reason, ok := packet.Decode(raw, meta, e.addr())
	if !ok {
		e.logf("from_radio: dropped frame: %s", reason)
		proto := packet.ProtoID(0xFF) // unknown/unparsed
		if len(raw) > 0 {
			proto = packet.ProtoID(raw[0])
		}
		e.mtr.PacketDropped(proto, reason)
		return
	}

	switch f := frame.(type) {
	case packet.SinkFrame:
		e.mtr.PacketReceived(packet.ProtoSink)
		e.handleSinkLocked(f)
	case packet.DataFrame:
		e.mtr.PacketReceived(packet.ProtoData)
		e.handleDataLocked(f, meta, raw)
	case packet.NotiFrame:
		e.mtr.PacketReceived(packet.ProtoNoti)
		e.handleNotiLocked(f)
	}
	e.reportTableSizes()
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.cfg.Debug {
		e.log.Printf(format, args...)
	}
	e.diag.LogError(format, args...)
}
