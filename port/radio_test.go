package port

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/m-lab/go/rtx"

	"github.com/uwan-net/dflood/packet"
)

type fakeRadioSink struct {
	frames chan []byte
}

func (f *fakeRadioSink) FromRadio(raw []byte, meta packet.Metadata) {
	f.frames <- raw
}

func TestRadioLinkSendReceive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Both links bind to loopback on ephemeral ports. There is no routable
	// broadcast address in a test sandbox, so each link's "broadcast"
	// destination is simply pointed at the other link's bound address.
	a, err := NewRadioLink("127.0.0.1:0", "127.0.0.1:0")
	rtx.Must(err, "could not create link a")
	defer a.Close()
	b, err := NewRadioLink("127.0.0.1:0", "127.0.0.1:0")
	rtx.Must(err, "could not create link b")
	defer b.Close()

	a.broadcast = b.conn.LocalAddr().(*net.UDPAddr)
	b.broadcast = a.conn.LocalAddr().(*net.UDPAddr)

	sink := &fakeRadioSink{frames: make(chan []byte, 1)}
	go b.Serve(ctx, sink)

	frame := packet.EncodeSink(packet.SinkFrame{Sender: 1, Source: 1, Seq: 0, Hops: 0})
	a.EmitRadio(frame)

	select {
	case got := <-sink.frames:
		if string(got) != string(frame) {
			t.Errorf("got frame %v, want %v", got, frame)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for radio delivery")
	}
}
