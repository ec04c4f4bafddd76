// Package metrics defines the Prometheus collectors for the dflood engine
// and a Prometheus type implementing engine.Metrics over them.
//
// When defining new operations or metrics, these are helpful values to track:
//  - things coming into or going out of the system: packets, beacons, forwards.
//  - the success or error status of any of the above.
//  - the distribution of processing latency or table occupancy.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uwan-net/dflood/packet"
)

var (
	// PacketsReceivedTotal counts every frame accepted by packet.Decode,
	// broken down by protocol.
	PacketsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dflood_packets_received_total",
			Help: "Number of frames successfully decoded off the radio link.",
		}, []string{"proto"})

	// PacketsDroppedTotal counts every frame rejected by packet.Decode,
	// broken down by protocol and drop reason. Data packets dropped later
	// for lack of a gradient or for insufficient TTL are not counted here.
	PacketsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dflood_packets_dropped_total",
			Help: "Number of frames dropped, by protocol and reason.",
		}, []string{"proto", "reason"})

	// PacketsForwardedTotal counts every SINK or DATA frame this node
	// re-emits on the radio link, plus every DATA frame it originates from
	// an application payload, broken down by protocol.
	PacketsForwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dflood_packets_forwarded_total",
			Help: "Number of frames forwarded onto the radio link.",
		}, []string{"proto"})

	// BeaconsSentTotal counts sink beacons this node has originated.
	BeaconsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dflood_beacons_sent_total",
			Help: "Number of sink beacons originated by this node.",
		})

	// NotificationsSentTotal counts NOTI acknowledgements this node has
	// emitted upon final-hop delivery.
	NotificationsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dflood_notifications_sent_total",
			Help: "Number of NOTI frames emitted upon final-hop delivery.",
		})

	// DuplicatesSuppressedTotal counts data-packet overhears that
	// incremented a data-table entry's duplicate count.
	DuplicatesSuppressedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dflood_duplicates_suppressed_total",
			Help: "Number of duplicate data-packet overhears recorded.",
		})

	// DeliveredToAppTotal counts payloads handed to the application port.
	DeliveredToAppTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dflood_delivered_to_app_total",
			Help: "Number of payloads delivered to the application link.",
		})

	// TableSize tracks the current occupancy of each soft-state table.
	TableSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dflood_table_size",
			Help: "Current number of live entries in a soft-state table.",
		}, []string{"table"})
)

func init() {
	log.Println("Prometheus metrics in dflood.metrics are registered.")
}

// Prometheus implements engine.Metrics over the collectors above. The zero
// value is ready to use; all state lives in the package-level collectors.
type Prometheus struct{}

// New returns a ready-to-use Prometheus metrics sink.
func New() Prometheus { return Prometheus{} }

func (Prometheus) PacketReceived(proto packet.ProtoID) {
	PacketsReceivedTotal.With(prometheus.Labels{"proto": proto.String()}).Inc()
}

func (Prometheus) PacketDropped(proto packet.ProtoID, reason packet.DropReason) {
	PacketsDroppedTotal.With(prometheus.Labels{"proto": proto.String(), "reason": reason.String()}).Inc()
}

func (Prometheus) PacketForwarded(proto packet.ProtoID) {
	PacketsForwardedTotal.With(prometheus.Labels{"proto": proto.String()}).Inc()
}

func (Prometheus) BeaconSent() { BeaconsSentTotal.Inc() }

func (Prometheus) NotificationSent() { NotificationsSentTotal.Inc() }

func (Prometheus) DuplicateSuppressed() { DuplicatesSuppressedTotal.Inc() }

func (Prometheus) DeliveredToApp() { DeliveredToAppTotal.Inc() }

func (Prometheus) TableSizes(neighbors, sinks, data int) {
	TableSize.With(prometheus.Labels{"table": "neighbor"}).Set(float64(neighbors))
	TableSize.With(prometheus.Labels{"table": "sink"}).Set(float64(sinks))
	TableSize.With(prometheus.Labels{"table": "data"}).Set(float64(data))
}
