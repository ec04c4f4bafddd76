package port

import (
	"testing"

	"github.com/uwan-net/dflood/packet"
)

type recordingSink struct {
	frames [][]byte
}

func (r *recordingSink) FromRadio(raw []byte, meta packet.Metadata) {
	r.frames = append(r.frames, raw)
}

func TestMemoryFanOut(t *testing.T) {
	m := NewMemory()
	a := &recordingSink{}
	b := &recordingSink{}
	m.Join(a)
	m.Join(b)

	frame := packet.EncodeSink(packet.SinkFrame{Sender: 1, Source: 1, Seq: 3, Hops: 0})
	m.EmitRadio(frame)

	if len(a.frames) != 1 || len(b.frames) != 1 {
		t.Fatalf("expected both joined peers to receive the frame, got a=%d b=%d", len(a.frames), len(b.frames))
	}

	m.EmitApp([]byte("payload"), packet.Metadata{})
	if len(m.Delivered()) != 1 || string(m.Delivered()[0]) != "payload" {
		t.Errorf("unexpected delivered payloads: %v", m.Delivered())
	}
}
