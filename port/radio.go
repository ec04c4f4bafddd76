package port

import (
	"context"
	"log"
	"net"

	"github.com/uwan-net/dflood/packet"
)

// maxFrameSize bounds the per-read buffer for the broadcast socket. DATA
// frames have no protocol-defined maximum length; a longer datagram is cut
// to this size on read.
const maxFrameSize = 2048

// RadioLink is a UDP broadcast socket standing in for the acoustic modem's
// to_radio/from_radio ports. Every node on a subnet binds the same port and
// broadcasts to it; there is no addressing below the protocol's own Sender
// field.
type RadioLink struct {
	conn      *net.UDPConn
	broadcast *net.UDPAddr
	log       *log.Logger
}

// RadioOption configures a RadioLink.
type RadioOption func(*RadioLink)

// WithRadioLogger overrides the link's diagnostic logger.
func WithRadioLogger(l *log.Logger) RadioOption {
	return func(r *RadioLink) { r.log = l }
}

// NewRadioLink binds a UDP socket on bindAddr (host:port) for receiving, and prepares
// broadcastAddr (host:port, typically a subnet's .255 broadcast address or
// a multicast group) as the destination for EmitRadio.
func NewRadioLink(bindAddr, broadcastAddr string, opts ...RadioOption) (*RadioLink, error) {
	laddr, err := net.ResolveUDPAddr("udp4", bindAddr)
	if err != nil {
		return nil, err
	}
	baddr, err := net.ResolveUDPAddr("udp4", broadcastAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, err
	}
	r := &RadioLink{conn: conn, broadcast: baddr, log: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// EmitRadio implements engine.RadioOut by broadcasting raw to the link's
// configured broadcast address. It never blocks on the engine's lock:
// UDP writes are fire-and-forget.
func (r *RadioLink) EmitRadio(raw []byte) {
	if _, err := r.conn.WriteToUDP(raw, r.broadcast); err != nil {
		r.log.Printf("radio: write failed: %v", err)
	}
}

// Serve reads frames off the wire until ctx is cancelled, delivering each
// to sink.FromRadio. CRC validation is out of scope for this transport
// (spec.md Non-goals §... no FEC/CRC hardware here), so every frame is
// handed to the engine with an empty Metadata, which packet.Decode treats
// as CRC-OK by default.
func (r *RadioLink) Serve(ctx context.Context, sink RadioSink) error {
	go func() {
		<-ctx.Done()
		r.conn.Close()
	}()

	buf := make([]byte, maxFrameSize)
	for {
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.log.Printf("radio: read failed: %v", err)
			return err
		}
		raw := append([]byte(nil), buf[:n]...)
		sink.FromRadio(raw, packet.Metadata{})
	}
}

// Close releases the underlying socket.
func (r *RadioLink) Close() error { return r.conn.Close() }
