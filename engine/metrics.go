package engine

import "github.com/uwan-net/dflood/packet"

// Metrics receives instrumentation callbacks from the engine. The
// metrics package implements this over Prometheus collectors; tests and
// callers that don't care about instrumentation can leave it nil, in which
// case the engine uses a no-op implementation.
type Metrics interface {
	PacketReceived(proto packet.ProtoID)
	PacketDropped(proto packet.ProtoID, reason packet.DropReason)
	PacketForwarded(proto packet.ProtoID)
	BeaconSent()
	NotificationSent()
	DuplicateSuppressed()
	DeliveredToApp()
	TableSizes(neighbors, sinks, data int)
}

type nopMetrics struct{}

func (nopMetrics) PacketReceived(packet.ProtoID)               {}
func (nopMetrics) PacketDropped(packet.ProtoID, packet.DropReason) {}
func (nopMetrics) PacketForwarded(packet.ProtoID)               {}
func (nopMetrics) BeaconSent()                                  {}
func (nopMetrics) NotificationSent()                            {}
func (nopMetrics) DuplicateSuppressed()                          {}
func (nopMetrics) DeliveredToApp()                               {}
func (nopMetrics) TableSizes(int, int, int)                      {}
