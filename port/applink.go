package port

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/uwan-net/dflood/packet"
)

// appFrame is the JSONL wire format AppLink speaks with its clients: one
// line per payload, base64-encoded since application payloads are
// arbitrary bytes.
type appFrame struct {
	Payload string          `json:"payload"`
	Meta    packet.Metadata `json:"meta,omitempty"`
}

// AppLink is a unix-domain-socket adapter standing in for the node's
// application-facing to_app/from_app ports. Any number of clients may
// connect; every FromApp-bound line from any client is forwarded to the
// engine, and every EmitApp delivery is broadcast to all connected
// clients. Structurally this is the teacher's eventsocket.Server
// (eventsocket.go) generalized from one-way event notification to a
// bidirectional byte stream.
type AppLink struct {
	filename string
	listener net.Listener
	log      *log.Logger

	mu      sync.Mutex
	clients map[net.Conn]struct{}
}

// NewAppLink prepares an AppLink that will listen on the given unix-domain
// socket path once Listen is called.
func NewAppLink(filename string) *AppLink {
	return &AppLink{
		filename: filename,
		log:      log.Default(),
		clients:  make(map[net.Conn]struct{}),
	}
}

// Listen binds the unix-domain socket. Call this before Serve.
func (a *AppLink) Listen() error {
	l, err := net.Listen("unix", a.filename)
	if err != nil {
		return err
	}
	a.listener = l
	return nil
}

// Serve accepts client connections and pumps their lines into sink.FromApp
// until ctx is cancelled.
func (a *AppLink) Serve(ctx context.Context, sink AppSink) error {
	go func() {
		<-ctx.Done()
		a.listener.Close()
	}()

	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.log.Printf("applink: accept failed: %v", err)
			return err
		}
		a.addClient(conn)
		go a.readClient(conn, sink)
	}
}

func (a *AppLink) addClient(c net.Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clients[c] = struct{}{}
}

func (a *AppLink) removeClient(c net.Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.clients, c)
}

func (a *AppLink) readClient(c net.Conn, sink AppSink) {
	defer func() {
		a.removeClient(c)
		c.Close()
	}()
	s := bufio.NewScanner(c)
	for s.Scan() {
		var f appFrame
		if err := json.Unmarshal(s.Bytes(), &f); err != nil {
			a.log.Printf("applink: malformed frame from %v: %v", c.RemoteAddr(), err)
			continue
		}
		payload, err := base64.StdEncoding.DecodeString(f.Payload)
		if err != nil {
			a.log.Printf("applink: bad payload encoding from %v: %v", c.RemoteAddr(), err)
			continue
		}
		sink.FromApp(payload, f.Meta)
	}
}

// EmitApp implements engine.AppOut by broadcasting payload to every
// connected client as a JSONL frame.
func (a *AppLink) EmitApp(payload []byte, meta packet.Metadata) {
	f := appFrame{Payload: base64.StdEncoding.EncodeToString(payload), Meta: meta}
	b, err := json.Marshal(f)
	if err != nil {
		a.log.Printf("applink: marshal failed: %v", err)
		return
	}
	line := fmt.Sprintf("%s\n", b)

	a.mu.Lock()
	defer a.mu.Unlock()
	for c := range a.clients {
		if _, err := fmt.Fprint(c, line); err != nil {
			a.log.Printf("applink: write to %v failed: %v, dropping client", c.RemoteAddr(), err)
			go func(c net.Conn) {
				a.removeClient(c)
				c.Close()
			}(c)
		}
	}
}

// Close releases the underlying listener.
func (a *AppLink) Close() error {
	if a.listener == nil {
		return nil
	}
	return a.listener.Close()
}
