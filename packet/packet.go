// Package packet implements the three on-wire frame shapes of the
// duplicate-reduction flooding protocol: SINK, NOTI and DATA. It knows
// nothing about tables, scheduling or sockets; it only encodes, decodes and
// validates byte vectors, mirroring the wire layout of the GNU Radio block
// this protocol was distilled from.
package packet

import "fmt"

// Addr is a node address. The address space is 8 bits wide.
type Addr uint8

// SeqNum is a per-sink or per-source sequence counter. It wraps modulo 256
// and is compared by raw value, not wrap-aware order.
type SeqNum uint8

// HopCount is the number of sink rebroadcasts a frame has traversed.
type HopCount uint8

// ProtoID identifies which of the three frame shapes a byte vector carries.
type ProtoID uint8

// Protocol identifiers, fixed at byte offset 0 of every frame.
const (
	ProtoData ProtoID = 0
	ProtoSink ProtoID = 1
	ProtoNoti ProtoID = 2
)

func (p ProtoID) String() string {
	switch p {
	case ProtoData:
		return "DATA"
	case ProtoSink:
		return "SINK"
	case ProtoNoti:
		return "NOTI"
	default:
		return fmt.Sprintf("ProtoID(%d)", uint8(p))
	}
}

// Prefix offsets shared by all three frame shapes.
const (
	offProto  = 0
	offSender = 1
	offSource = 2
	offSeq    = 3
	offHops   = 4
)

// Fixed lengths for the shapes that have them.
const (
	sinkPacketLength = 5
	notiPacketLength = 4
	dataHeaderLength = 7 // prefix(5) + DestSink + TTL
)

// Metadata is the opaque key/value dictionary carried alongside a frame on
// ingress and egress. The only key the core ever inspects is "CRC_OK".
type Metadata map[string]interface{}

// CRCOK reports the truthy value of the "CRC_OK" entry, defaulting to true
// when the key is absent (a PHY/MAC layer that never sets it is assumed
// trustworthy).
func (m Metadata) CRCOK() bool {
	v, ok := m["CRC_OK"]
	if !ok {
		return true
	}
	b, ok := v.(bool)
	if !ok {
		return true
	}
	return b
}

// SinkFrame is a sink-beacon advertisement: prefix only, length 5.
type SinkFrame struct {
	Sender Addr
	Source Addr // the sink being advertised
	Seq    SeqNum
	Hops   HopCount
}

// NotiFrame is a one-hop receive notification: prefix minus HopCount, length 4.
type NotiFrame struct {
	Sender Addr
	Source Addr // the original data sender being acknowledged
	Seq    SeqNum
}

// DataFrame is a data packet in transit toward DestSink.
type DataFrame struct {
	Sender  Addr
	Source  Addr // originating sensor
	Seq     SeqNum
	Hops    HopCount // forwarder's known hop-distance to DestSink
	Dest    Addr
	TTL     uint8
	Payload []byte
}

// EncodeSink renders f as its 5-byte wire form.
func EncodeSink(f SinkFrame) []byte {
	return []byte{byte(ProtoSink), byte(f.Sender), byte(f.Source), byte(f.Seq), byte(f.Hops)}
}

// EncodeNoti renders f as its 4-byte wire form.
func EncodeNoti(f NotiFrame) []byte {
	return []byte{byte(ProtoNoti), byte(f.Sender), byte(f.Source), byte(f.Seq)}
}

// EncodeData renders f as its wire form: a 7-byte header followed by payload.
func EncodeData(f DataFrame) []byte {
	out := make([]byte, dataHeaderLength+len(f.Payload))
	out[offProto] = byte(ProtoData)
	out[offSender] = byte(f.Sender)
	out[offSource] = byte(f.Source)
	out[offSeq] = byte(f.Seq)
	out[offHops] = byte(f.Hops)
	out[5] = byte(f.Dest)
	out[6] = f.TTL
	copy(out[dataHeaderLength:], f.Payload)
	return out
}

// Frame is whichever of SinkFrame, NotiFrame or DataFrame Decode produced.
type Frame interface {
	proto() ProtoID
}

func (SinkFrame) proto() ProtoID { return ProtoSink }
func (NotiFrame) proto() ProtoID { return ProtoNoti }
func (DataFrame) proto() ProtoID { return ProtoData }

// ProtoOf returns the protocol identifier of a decoded Frame.
func ProtoOf(f Frame) ProtoID { return f.proto() }

// DropReason classifies why Decode rejected a frame, for diagnostics and
// metrics only — the protocol itself never surfaces these upstream.
type DropReason int

const (
	// DropNone means decoding succeeded; callers should not see this value
	// outside of Decode's own bookkeeping.
	DropNone DropReason = iota
	DropCRC
	DropBadProto
	DropBadLength
	DropSelfSourced
)

func (r DropReason) String() string {
	switch r {
	case DropCRC:
		return "crc_failed"
	case DropBadProto:
		return "bad_protocol_id"
	case DropBadLength:
		return "bad_length"
	case DropSelfSourced:
		return "self_sourced"
	default:
		return "none"
	}
}

// Decode validates and parses raw against self's address, per spec.md §4.1:
// CRC check, protocol ID range, shape-specific length, and self-origination.
// A rejection is reported via reason and ok=false; the caller must treat it
// as a silent no-op except for optional diagnostics.
func Decode(raw []byte, meta Metadata, self Addr) (f Frame, reason DropReason, ok bool) {
	if !meta.CRCOK() {
		return nil, DropCRC, false
	}
	if len(raw) < 1 {
		return nil, DropBadLength, false
	}
	proto := ProtoID(raw[offProto])
	switch proto {
	case ProtoData:
		if len(raw) < dataHeaderLength {
			return nil, DropBadLength, false
		}
	case ProtoSink:
		if len(raw) != sinkPacketLength {
			return nil, DropBadLength, false
		}
	case ProtoNoti:
		if len(raw) != notiPacketLength {
			return nil, DropBadLength, false
		}
	default:
		return nil, DropBadProto, false
	}

	sender := Addr(raw[offSender])
	source := Addr(raw[offSource])
	if sender == self || source == self {
		return nil, DropSelfSourced, false
	}

	switch proto {
	case ProtoSink:
		return SinkFrame{
			Sender: sender,
			Source: source,
			Seq:    SeqNum(raw[offSeq]),
			Hops:   HopCount(raw[offHops]),
		}, DropNone, true
	case ProtoNoti:
		return NotiFrame{
			Sender: sender,
			Source: source,
			Seq:    SeqNum(raw[offSeq]),
		}, DropNone, true
	default: // ProtoData
		payload := append([]byte(nil), raw[dataHeaderLength:]...)
		return DataFrame{
			Sender:  sender,
			Source:  source,
			Seq:     SeqNum(raw[offSeq]),
			Hops:    HopCount(raw[offHops]),
			Dest:    Addr(raw[5]),
			TTL:     raw[6],
			Payload: payload,
		}, DropNone, true
	}
}
