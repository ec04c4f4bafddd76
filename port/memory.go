package port

import "github.com/uwan-net/dflood/packet"

// Memory is an in-memory RadioOut/AppOut fake for wiring two or more
// engines together in a single process without real sockets, the way
// cmd/dfloodsim wires its three-node topology.
type Memory struct {
	peers    []RadioSink
	payloads [][]byte
	metas    []packet.Metadata
}

// NewMemory constructs an empty in-memory link.
func NewMemory() *Memory { return &Memory{} }

// Join registers sink as a recipient of every frame EmitRadio sends,
// simulating a shared broadcast medium. A node should not Join itself: the
// self-sourced guard in packet.Decode would drop its own frames anyway,
// but omitting self-delivery keeps test topologies explicit.
func (m *Memory) Join(sink RadioSink) {
	m.peers = append(m.peers, sink)
}

// EmitRadio implements engine.RadioOut by delivering raw to every joined
// peer synchronously.
func (m *Memory) EmitRadio(raw []byte) {
	cp := append([]byte(nil), raw...)
	for _, p := range m.peers {
		p.FromRadio(cp, packet.Metadata{})
	}
}

// EmitApp implements engine.AppOut by recording delivered payloads for
// test inspection.
func (m *Memory) EmitApp(payload []byte, meta packet.Metadata) {
	m.payloads = append(m.payloads, append([]byte(nil), payload...))
	m.metas = append(m.metas, meta)
}

// Delivered returns every payload recorded by EmitApp so far.
func (m *Memory) Delivered() [][]byte { return m.payloads }
