// Package engine implements the dflood protocol state machine: the
// receive-side handlers per protocol ID, emit-side packet construction,
// application ingress, sink-beacon origination, and the periodic tick
// driver that releases scheduled transmissions and ages the three
// soft-state tables (spec.md §4).
package engine

import (
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/uwan-net/dflood/packet"
	"github.com/uwan-net/dflood/table"
)

// RadioOut receives outbound wire-format frames destined for the radio
// link. Implementations must not block; spec.md §5 requires that no
// handler block on I/O while holding the engine's lock.
type RadioOut interface {
	EmitRadio(raw []byte)
}

// AppOut receives payload bytes delivered to the local application, along
// with the metadata dictionary carried by the originating DATA frame.
type AppOut interface {
	EmitApp(payload []byte, meta packet.Metadata)
}

// Engine is a single node's protocol state machine. One Engine is
// instantiated per node; it is safe for concurrent use by from_radio,
// from_app, and ctrl_in callers, all of which contend for one mutex
// (spec.md §5).
type Engine struct {
	mu sync.Mutex

	cfg   Config
	radio RadioOut
	app   AppOut
	log   *log.Logger
	mtr   Metrics
	rng   *rand.Rand
	clock func() time.Time

	diag Diagnostics

	neighbors *table.NeighborTable
	sinks     *table.SinkTable
	data      *table.DataTable

	beaconSeq      packet.SeqNum
	lastBeacon     time.Time
	haveLastBeacon bool
	pktCnt         packet.SeqNum
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithLogger injects a diagnostic logger. The default discards all output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics injects an instrumentation sink. The default is a no-op, and
// a nil m keeps that default.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.mtr = m
		}
	}
}

// WithRand overrides the jitter source, for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithClock overrides the engine's notion of "now", for tests that need to
// advance time without sleeping real backoff windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// Diagnostics receives the optional errors_<addr>.txt / data_<addr>.txt
// file logging described in spec.md §6.4. The default is a no-op so that
// callers who don't configure Config.ErrorsToFile or Config.DataToFile
// pay nothing for it.
type Diagnostics interface {
	LogError(format string, args ...interface{})
	LogData(raw []byte)
}

type nopDiagnostics struct{}

func (nopDiagnostics) LogError(string, ...interface{}) {}
func (nopDiagnostics) LogData([]byte)                  {}

// WithDiagnostics injects a Diagnostics sink, typically a
// *diagnostics.Sink constructed from Config.ErrorsToFile/DataToFile.
func WithDiagnostics(d Diagnostics) Option {
	return func(e *Engine) { e.diag = d }
}

// New constructs an Engine for cfg, emitting radio frames via radio and
// delivered application payloads via app.
func New(cfg Config, radio RadioOut, app AppOut, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg.normalized(),
		radio:     radio,
		app:       app,
		log:       log.New(io.Discard, "", 0),
		mtr:       nopMetrics{},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:     time.Now,
		diag:      nopDiagnostics{},
		neighbors: table.NewNeighborTable(),
		sinks:     table.NewSinkTable(),
		data:      table.NewDataTable(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// addr returns the node's own address as a packet.Addr.
func (e *Engine) addr() packet.Addr { return packet.Addr(e.cfg.Addr) }

// sinkAddr returns the node's configured sink address.
func (e *Engine) sinkAddr() packet.Addr { return packet.Addr(e.cfg.SinkAddr) }

// isSink reports whether this node originates beacons for its own address.
func (e *Engine) isSink() bool { return e.cfg.Addr == e.cfg.SinkAddr }

// ndupl returns the configured duplicate-overhear quota. cfg is always
// normalized by New, so cfg.Ndupl is never nil here.
func (e *Engine) ndupl() int { return *e.cfg.Ndupl }

// ttlMargin returns the configured TTL robustness margin above hop-distance.
// cfg is always normalized by New, so cfg.R is never nil here.
func (e *Engine) ttlMargin() uint8 { return *e.cfg.R }

func (e *Engine) emitRadio(raw []byte) {
	if e.radio != nil {
		e.radio.EmitRadio(raw)
	}
}

func (e *Engine) emitApp(payload []byte, meta packet.Metadata) {
	if e.app != nil {
		e.app.EmitApp(payload, meta)
	}
	e.mtr.DeliveredToApp()
}

func (e *Engine) now() time.Time { return e.clock() }

func (e *Engine) reportTableSizes() {
	e.mtr.TableSizes(e.neighbors.Len(), e.sinks.Len(), e.data.Len())
}

// SinkCount, NeighborCount and DataCount expose table occupancy for tests
// and diagnostics, the way the teacher's Cache.CycleCount() exposes
// internal bookkeeping without leaking the table's representation.
func (e *Engine) SinkCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sinks.Len()
}

func (e *Engine) NeighborCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.neighbors.Len()
}

func (e *Engine) DataCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.Len()
}
