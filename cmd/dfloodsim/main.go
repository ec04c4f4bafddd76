// Command dfloodsim runs a small, fixed three-node topology entirely
// in-process: a sink (address 0), a relay (address 1) that can hear both
// the sink and a leaf, and a leaf (address 3) that only hears the relay.
// It supplements the original GNU Radio flow graph (examples/top_block.py)
// that wired together three dflood blocks with message_strobe ctrl_in
// sources and a random_pdu generator feeding the leaf's from_app port,
// printing everything the sink delivers to its application port.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/uwan-net/dflood/engine"
	"github.com/uwan-net/dflood/packet"
	"github.com/uwan-net/dflood/port"
)

var (
	duration = flag.Duration("duration", 60*time.Second, "How long to run the simulation")
	appEvery = flag.Duration("app.every", 10*time.Second, "How often the leaf node generates a random application payload")
)

// loggingApp prints every payload delivered to the application port,
// mirroring blocks.message_debug's print_pdu sink in the original flow
// graph.
type loggingApp struct{ label string }

func (a loggingApp) EmitApp(payload []byte, meta packet.Metadata) {
	log.Printf("%s: delivered %d bytes: %x", a.label, len(payload), payload)
}

func main() {
	flag.Parse()

	sinkOut := port.NewMemory()
	relayOut := port.NewMemory()
	leafOut := port.NewMemory()

	sink := engine.New(engine.Config{Addr: 0, SinkAddr: 0, BroadcastInterval: 30 * time.Second},
		sinkOut, loggingApp{label: "sink(0)"})
	relay := engine.New(engine.Config{Addr: 1, SinkAddr: 0, LowBackoff: time.Second, SmallBackoff: 2500 * time.Millisecond, LargeBackoff: 5 * time.Second, Ndupl: engine.Ndupl(0)},
		relayOut, loggingApp{label: "relay(1)"})
	leaf := engine.New(engine.Config{Addr: 3, SinkAddr: 0, Tmin: 5 * time.Second, Tmax: 65 * time.Second, R: engine.R(0)},
		leafOut, loggingApp{label: "leaf(3)"})

	// Wire the same topology as the GRC flow graph's msg_connect calls:
	// sink <-> relay <-> leaf, with no direct sink-leaf link.
	sinkOut.Join(relay)
	relayOut.Join(sink)
	relayOut.Join(leaf)
	leafOut.Join(relay)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	appTicker := time.NewTicker(*appEvery)
	defer appTicker.Stop()
	deadline := time.After(*duration)

	rng := rand.New(rand.NewSource(1))

	for {
		select {
		case <-deadline:
			log.Println("dfloodsim: simulation complete")
			return
		case <-ticker.C:
			sink.Tick()
			relay.Tick()
			leaf.Tick()
		case <-appTicker.C:
			payload := []byte(fmt.Sprintf("sample-%d", rng.Intn(1<<16)))
			log.Printf("leaf(3): originating %q toward sink", payload)
			leaf.FromApp(payload, nil)
		}
	}
}
