package port

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"os"
	"testing"
	"time"

	"github.com/m-lab/go/rtx"

	"github.com/uwan-net/dflood/packet"
)

// fakeAppSink records every payload FromApp delivers.
type fakeAppSink struct {
	payloads chan []byte
}

func (f *fakeAppSink) FromApp(payload []byte, meta packet.Metadata) {
	f.payloads <- payload
}

func TestAppLinkRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir, err := os.MkdirTemp("", "TestAppLink")
	rtx.Must(err, "could not create tempdir")
	defer os.RemoveAll(dir)

	sockPath := dir + "/app.sock"
	link := NewAppLink(sockPath)
	rtx.Must(link.Listen(), "could not listen")

	sink := &fakeAppSink{payloads: make(chan []byte, 1)}
	go link.Serve(ctx, sink)

	conn, err := net.Dial("unix", sockPath)
	rtx.Must(err, "could not dial app socket")
	defer conn.Close()

	// Busy-wait until the server has registered the client, matching the
	// teacher's connection-establishment test pattern (eventsocket's
	// server_test.go).
	for {
		link.mu.Lock()
		n := len(link.clients)
		link.mu.Unlock()
		if n > 0 {
			break
		}
	}

	// from_app: client writes a JSONL frame, engine side should see it.
	req := appFrame{Payload: base64.StdEncoding.EncodeToString([]byte("hello"))}
	b, err := json.Marshal(req)
	rtx.Must(err, "could not marshal request")
	_, err = conn.Write(append(b, '\n'))
	rtx.Must(err, "could not write request")

	select {
	case got := <-sink.payloads:
		if string(got) != "hello" {
			t.Errorf("got payload %q, want %q", got, "hello")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for from_app delivery")
	}

	// to_app: engine emits, client should see it on the wire.
	link.EmitApp([]byte("world"), packet.Metadata{"x": 1.0})
	r := bufio.NewScanner(conn)
	if !r.Scan() {
		t.Fatal("expected a line from the app link, got none")
	}
	var resp appFrame
	rtx.Must(json.Unmarshal(r.Bytes(), &resp), "could not unmarshal response")
	decoded, err := base64.StdEncoding.DecodeString(resp.Payload)
	rtx.Must(err, "could not decode response payload")
	if string(decoded) != "world" {
		t.Errorf("got delivered payload %q, want %q", decoded, "world")
	}
}
