package collector

import (
	"github.com/shirou/gopsutil/v3/net"

	"github.com/kostyay/netinspect/internal/model"
)

// Socket types as reported in ConnectionStat.Type.
const (
	sockStream = 1
	sockDgram  = 2
)

// getProtocol maps a socket type to a transport protocol.
func getProtocol(connType uint32) model.Protocol {
	switch connType {
	case sockStream:
		return model.ProtocolTCP
	case sockDgram:
		return model.ProtocolUDP
	default:
		return model.ProtocolUnknown
	}
}

// listeningPorts returns the local ports that accept inbound traffic: TCP
// sockets in LISTEN and unconnected UDP sockets.
func listeningPorts(conns []net.ConnectionStat) map[uint32]bool {
	ports := make(map[uint32]bool)
	for _, c := range conns {
		switch {
		case c.Status == "LISTEN":
			ports[c.Laddr.Port] = true
		case c.Type == sockDgram && c.Raddr.IP == "":
			ports[c.Laddr.Port] = true
		}
	}
	return ports
}

// direction reports incoming when the local side is a listening port.
func direction(conn net.ConnectionStat, listening map[uint32]bool) model.TrafficDirection {
	if listening[conn.Laddr.Port] {
		return model.DirectionIncoming
	}
	return model.DirectionOutgoing
}

// flowKey orients the connection from initiator to responder.
func flowKey(conn net.ConnectionStat, listening map[uint32]bool) model.ConnectionKey {
	local := conn.Laddr
	remote := conn.Raddr
	key := model.ConnectionKey{
		SrcAddr:  local.IP,
		SrcPort:  uint16(local.Port),
		DstAddr:  remote.IP,
		DstPort:  uint16(remote.Port),
		Protocol: getProtocol(conn.Type),
	}
	if direction(conn, listening) == model.DirectionIncoming {
		key.SrcAddr, key.DstAddr = key.DstAddr, key.SrcAddr
		key.SrcPort, key.DstPort = key.DstPort, key.SrcPort
	}
	return key
}

// counterDelta returns curr-prev, or 0 if the counter went backwards
// (interface reset or wrap).
func counterDelta(prev, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}

// share splits total over n parts; the first total%n parts get one extra.
func share(total uint64, n, i int) uint64 {
	if n <= 0 {
		return 0
	}
	part := total / uint64(n)
	if uint64(i) < total%uint64(n) {
		part++
	}
	return part
}
