package engine

import "time"

// Backoff tiers choose which rebroadcast fires first, so that nodes closer
// to the sink suppress further-away rebroadcasts through overhearing
// (spec.md §4.3).
const (
	DefaultLowBackoff   = 1 * time.Second
	DefaultSmallBackoff = 2500 * time.Millisecond
	DefaultLargeBackoff = 5 * time.Second
)

// Construction parameter defaults, per spec.md §6.
const (
	DefaultBroadcastInterval = 30 * time.Second
	DefaultTmin              = 5 * time.Second
	DefaultTmax              = 65 * time.Second
	DefaultNdupl             = 2
	DefaultPlt               = 120 * time.Second
	DefaultSlt               = 50 * time.Second
	DefaultR                 = 2
)

// Ndupl returns a pointer to n, for setting Config.Ndupl to an explicit
// value (including 0) that New must not override with DefaultNdupl.
func Ndupl(n int) *int { return &n }

// R returns a pointer to r, for setting Config.R to an explicit value
// (including 0) that New must not override with DefaultR.
func R(r uint8) *uint8 { return &r }

// Config holds the construction parameters of spec.md §6. Zero-value fields
// for the backoff tiers and lifetimes are normalized to their package
// defaults by New.
type Config struct {
	// Addr is this node's address.
	Addr uint8
	// SinkAddr is this node's configured destination sink. If Addr ==
	// SinkAddr, the node originates sink beacons (spec.md §4.2).
	SinkAddr uint8

	// BroadcastInterval is the mean sink-beacon cadence. Zero disables
	// beacon origination entirely (spec.md §4.2); it is never defaulted by
	// New, unlike the other tunables below — callers who want the
	// documented default of 30s must set it explicitly (cmd/dfloodnode's
	// flag default does).
	BroadcastInterval time.Duration

	// ErrorsToFile and DataToFile redirect diagnostics and delivered
	// payloads to append-only files (see package diagnostics).
	ErrorsToFile bool
	DataToFile   bool

	// Tmin, Tmax bound the data-forward backoff window.
	Tmin, Tmax time.Duration

	// Ndupl is the max tolerated duplicate overhears before suppression. A
	// nil pointer defaults to DefaultNdupl; an explicit 0 is a legitimate,
	// distinct value (the original topology's relay node configures it,
	// top_block.py:50-53) and is never overridden. Use the Ndupl helper to
	// set it: Config{Ndupl: engine.Ndupl(0)}.
	Ndupl *int

	// Plt is the data-table entry lifetime.
	Plt time.Duration
	// Slt is the sink/neighbor table entry lifetime.
	Slt time.Duration

	// R is the TTL robustness margin above hop-distance. A nil pointer
	// defaults to DefaultR; an explicit 0 is a legitimate, distinct value
	// (the original topology's leaf node configures it, top_block.py:46-49)
	// and is never overridden. Use the R helper to set it:
	// Config{R: engine.R(0)}.
	R *uint8

	// Debug enables per-packet diagnostic logging.
	Debug bool

	// FEC is reserved for a future forward-error-correction mode. The core
	// never reads it (spec.md §6 "Reserved; not consumed by the core").
	FEC interface{}

	// LowBackoff, SmallBackoff, LargeBackoff are the sink-rebroadcast
	// backoff tiers of spec.md §4.3. Zero values are replaced by the
	// package defaults.
	LowBackoff, SmallBackoff, LargeBackoff time.Duration
}

// normalized returns a copy of cfg with all zero-valued tunables replaced by
// their documented defaults.
func (cfg Config) normalized() Config {
	if cfg.Tmin == 0 {
		cfg.Tmin = DefaultTmin
	}
	if cfg.Tmax == 0 {
		cfg.Tmax = DefaultTmax
	}
	if cfg.Ndupl == nil {
		cfg.Ndupl = Ndupl(DefaultNdupl)
	}
	if cfg.Plt == 0 {
		cfg.Plt = DefaultPlt
	}
	if cfg.Slt == 0 {
		cfg.Slt = DefaultSlt
	}
	if cfg.R == nil {
		cfg.R = R(DefaultR)
	}
	if cfg.LowBackoff == 0 {
		cfg.LowBackoff = DefaultLowBackoff
	}
	if cfg.SmallBackoff == 0 {
		cfg.SmallBackoff = DefaultSmallBackoff
	}
	if cfg.LargeBackoff == 0 {
		cfg.LargeBackoff = DefaultLargeBackoff
	}
	return cfg
}
