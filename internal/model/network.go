package model

import (
	"cmp"
	"fmt"
	"net"
	"strconv"
	"time"
)

// NetIOStats represents network I/O counters for a process.
type NetIOStats struct {
	BytesSent   uint64    // Total bytes sent
	BytesRecv   uint64    // Total bytes received
	PacketsSent uint64    // Total packets sent
	PacketsRecv uint64    // Total packets received
	UpdatedAt   time.Time // When these stats were last updated
}

// Protocol represents a transport protocol.
type Protocol string

const (
	ProtocolTCP     Protocol = "TCP"
	ProtocolUDP     Protocol = "UDP"
	ProtocolUnknown Protocol = "UNK"
)

// TrafficDirection tells whether a flow was initiated by this host or a peer.
type TrafficDirection int

const (
	DirectionUnknown TrafficDirection = iota
	DirectionIncoming
	DirectionOutgoing
)

// String returns a human-readable name for the TrafficDirection.
func (d TrafficDirection) String() string {
	switch d {
	case DirectionIncoming:
		return "incoming"
	case DirectionOutgoing:
		return "outgoing"
	default:
		return "unknown"
	}
}

// ConnectionKey is the identity of an observed flow.
type ConnectionKey struct {
	SrcAddr  string
	SrcPort  uint16
	DstAddr  string
	DstPort  uint16
	Protocol Protocol
}

// Compare orders keys by source address, source port, destination address,
// destination port, then protocol. Returns -1, 0, or 1.
func (k ConnectionKey) Compare(o ConnectionKey) int {
	if c := cmp.Compare(k.SrcAddr, o.SrcAddr); c != 0 {
		return c
	}
	if c := cmp.Compare(k.SrcPort, o.SrcPort); c != 0 {
		return c
	}
	if c := cmp.Compare(k.DstAddr, o.DstAddr); c != 0 {
		return c
	}
	if c := cmp.Compare(k.DstPort, o.DstPort); c != 0 {
		return c
	}
	return cmp.Compare(k.Protocol, o.Protocol)
}

// Source returns the source endpoint as "ip:port".
func (k ConnectionKey) Source() string {
	return JoinAddr(k.SrcAddr, k.SrcPort)
}

// Destination returns the destination endpoint as "ip:port".
func (k ConnectionKey) Destination() string {
	return JoinAddr(k.DstAddr, k.DstPort)
}

// String formats the key as "src → dst PROTO".
func (k ConnectionKey) String() string {
	return fmt.Sprintf("%s → %s %s", k.Source(), k.Destination(), k.Protocol)
}

// Resolution holds metadata attached by the enrichment stage.
// Empty fields mean "not resolved (yet)".
type Resolution struct {
	AppProtocol string // e.g. "https", "dns"
	Domain      string // reverse-resolved host name of the remote peer
	Country     string // ISO country code of the remote peer
	ASName      string // autonomous system organization of the remote peer
}

// Merge overwrites fields of r with the non-empty fields of other.
func (r *Resolution) Merge(other Resolution) {
	if other.AppProtocol != "" {
		r.AppProtocol = other.AppProtocol
	}
	if other.Domain != "" {
		r.Domain = other.Domain
	}
	if other.Country != "" {
		r.Country = other.Country
	}
	if other.ASName != "" {
		r.ASName = other.ASName
	}
}

// ConnectionValue holds the measurements for a flow.
type ConnectionValue struct {
	Resolution

	Index       int              // Insertion order in the store
	PID         int32            // Owning process, 0 if unknown
	ProcessName string           // Owning process name
	Bytes       uint64           // Bytes transferred (both directions)
	Packets     uint64           // Packets transferred (both directions)
	Direction   TrafficDirection // Who initiated the flow
	FirstSeen   time.Time
	LastSeen    time.Time
	Favorite    bool
}

// Record pairs a connection's identity with its measurements.
type Record struct {
	Key   ConnectionKey
	Value ConnectionValue
}

// Observation is one sighting of a flow produced by a collector.
// Bytes and Packets are deltas since the previous sighting.
type Observation struct {
	Resolution

	Key         ConnectionKey
	PID         int32
	ProcessName string
	Direction   TrafficDirection
	Bytes       uint64
	Packets     uint64
	Seen        time.Time
}

// JoinAddr formats an address and port as "ip:port", bracketing IPv6.
// An empty address is rendered as "*".
func JoinAddr(ip string, port uint16) string {
	if ip == "" {
		ip = "*"
	}
	return net.JoinHostPort(ip, strconv.Itoa(int(port)))
}

// SplitAddr splits "ip:port" into its parts.
// Returns port 0 if the address doesn't contain a valid port.
func SplitAddr(addr string) (string, uint16) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return host, 0
	}
	return host, uint16(port)
}

// ExtractPort extracts the port number from an address string like "127.0.0.1:8080".
// Returns 0 if the address doesn't contain a valid port.
func ExtractPort(addr string) int {
	_, port := SplitAddr(addr)
	return int(port)
}
