package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/uwan-net/dflood/metrics"
	"github.com/uwan-net/dflood/packet"
)

func TestPrometheusCounters(t *testing.T) {
	m := metrics.New()

	m.PacketReceived(packet.ProtoSink)
	if got := testutil.ToFloat64(metrics.PacketsReceivedTotal.With(prometheus.Labels{"proto": "SINK"})); got != 1 {
		t.Errorf("PacketsReceivedTotal[SINK] = %v, want 1", got)
	}

	m.PacketDropped(packet.ProtoData, packet.DropBadLength)
	want := prometheus.Labels{"proto": "DATA", "reason": packet.DropBadLength.String()}
	if got := testutil.ToFloat64(metrics.PacketsDroppedTotal.With(want)); got != 1 {
		t.Errorf("PacketsDroppedTotal[DATA,%s] = %v, want 1", packet.DropBadLength, got)
	}

	m.BeaconSent()
	m.NotificationSent()
	m.DuplicateSuppressed()
	m.DeliveredToApp()
	if got := testutil.ToFloat64(metrics.BeaconsSentTotal); got != 1 {
		t.Errorf("BeaconsSentTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.NotificationsSentTotal); got != 1 {
		t.Errorf("NotificationsSentTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.DuplicatesSuppressedTotal); got != 1 {
		t.Errorf("DuplicatesSuppressedTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.DeliveredToAppTotal); got != 1 {
		t.Errorf("DeliveredToAppTotal = %v, want 1", got)
	}
}

func TestPrometheusTableSizes(t *testing.T) {
	m := metrics.New()
	m.TableSizes(3, 2, 1)

	for table, want := range map[string]float64{"neighbor": 3, "sink": 2, "data": 1} {
		got := testutil.ToFloat64(metrics.TableSize.With(prometheus.Labels{"table": table}))
		if got != want {
			t.Errorf("TableSize[%s] = %v, want %v", table, got, want)
		}
	}
}
