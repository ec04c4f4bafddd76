// Command dfloodnode runs one dflood protocol node, bridging a UDP
// broadcast radio link and a unix-domain-socket application link through
// an engine.Engine.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"

	"github.com/uwan-net/dflood/diagnostics"
	"github.com/uwan-net/dflood/engine"
	"github.com/uwan-net/dflood/metrics"
	"github.com/uwan-net/dflood/port"
)

func init() {
	// Always prepend the filename and line number.
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

var (
	addr     = flag.Uint("addr", 0, "This node's protocol address (0-255)")
	sinkAddr = flag.Uint("sink", 0, "The sink address this node routes data toward")

	radioBind      = flag.String("radio.bind", ":4242", "Local UDP address the radio link listens on")
	radioBroadcast = flag.String("radio.broadcast", "255.255.255.255:4242", "UDP broadcast address the radio link sends to")
	appSocket      = flag.String("app.socket", "/tmp/dflood.sock", "Unix-domain socket the application link listens on")

	broadcastInterval = flag.Duration("beacon.interval", engine.DefaultBroadcastInterval, "Mean sink-beacon cadence; 0 disables beacon origination")
	tickInterval      = flag.Duration("tick.interval", time.Second, "How often the engine's scheduling and aging tick fires")

	tmin  = flag.Duration("tmin", engine.DefaultTmin, "Minimum data-forward backoff delay")
	tmax  = flag.Duration("tmax", engine.DefaultTmax, "Maximum data-forward backoff delay")
	ndupl = flag.Int("ndupl", engine.DefaultNdupl, "Max tolerated duplicate overhears before suppression; 0 is a valid value")
	plt   = flag.Duration("plt", engine.DefaultPlt, "Data-table entry lifetime")
	slt   = flag.Duration("slt", engine.DefaultSlt, "Sink/neighbor table entry lifetime")
	ttlR  = flag.Uint("r", engine.DefaultR, "TTL robustness margin above hop-distance; 0 is a valid value")

	errorsToFile = flag.Bool("diagnostics.errors", false, "Append per-node errors to errors_<addr>.txt")
	dataToFile   = flag.Bool("diagnostics.data", false, "Append received data packets to data_<addr>.txt")
	debug        = flag.Bool("debug", false, "Enable verbose protocol logging")

	promPort = flag.String("prom", ":9090", "Prometheus metrics export address and port")
)

func main() {
	flag.Parse()
	flagx.ArgsFromEnv(flag.CommandLine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	promSrv := prometheusx.MustStartPrometheus(*promPort)
	defer promSrv.Shutdown(ctx)

	sink, err := diagnostics.NewSink(uint8(*addr), *errorsToFile, *dataToFile)
	rtx.Must(err, "could not open diagnostics files")
	defer sink.Close()

	radio, err := port.NewRadioLink(*radioBind, *radioBroadcast)
	rtx.Must(err, "could not create radio link")
	defer radio.Close()

	app := port.NewAppLink(*appSocket)
	rtx.Must(app.Listen(), "could not listen on application socket")
	defer app.Close()

	cfg := engine.Config{
		Addr:              uint8(*addr),
		SinkAddr:          uint8(*sinkAddr),
		BroadcastInterval: *broadcastInterval,
		ErrorsToFile:      *errorsToFile,
		DataToFile:        *dataToFile,
		Tmin:              *tmin,
		Tmax:              *tmax,
		Ndupl:             engine.Ndupl(*ndupl),
		Plt:               *plt,
		Slt:               *slt,
		R:                 engine.R(uint8(*ttlR)),
		Debug:             *debug,
	}

	e := engine.New(cfg, radio, app,
		engine.WithLogger(log.New(os.Stderr, "dflood: ", log.LstdFlags)),
		engine.WithMetrics(metrics.New()),
		engine.WithDiagnostics(sink),
	)

	go radio.Serve(ctx, e)
	go app.Serve(ctx, e)
	go port.NewTicker(*tickInterval).Run(ctx, e)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("dfloodnode: shutting down")
	case <-ctx.Done():
	}
}
