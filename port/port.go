// Package port implements the engine's three external interfaces as
// concrete transports: a UDP broadcast radio link standing in for the
// acoustic modem, a unix-domain-socket application link, and a ticker
// wrapping time.Ticker for ctrl_in (spec.md §6.2). Each adapter follows the
// teacher's context-driven Listen/Serve split (eventsocket.go) rather than
// spawning goroutines from a constructor.
package port

import (
	"github.com/uwan-net/dflood/packet"
)

// RadioSink is satisfied by engine.Engine's FromRadio method. A RadioLink
// delivers every frame it reads off the wire to a RadioSink.
type RadioSink interface {
	FromRadio(raw []byte, meta packet.Metadata)
}

// AppSink is satisfied by engine.Engine's FromApp method. An AppLink
// delivers every payload it reads from an application client to an AppSink.
type AppSink interface {
	FromApp(payload []byte, meta packet.Metadata)
}
