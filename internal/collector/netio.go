package collector

import (
	"github.com/kostyay/netinspect/internal/model"
)

// processIO is a traffic counter owned by a set of processes. On darwin each
// process has its own; on linux the counter belongs to a network namespace
// and is shared by every process inside it.
type processIO struct {
	Key     string
	PIDs    []int32
	Stats   model.NetIOStats
	Packets bool // Stats carries packet counters
}

// claim is a group's delta and the flows it is split across.
type claim struct {
	flows []int
	total uint64
}

// claimTraffic matches flows to the process counters that have a previous
// sample. Groups without packet counters only claim bytes.
func claimTraffic(observations []model.Observation, groups []processIO, prev map[string]model.NetIOStats) (bytes, packets []claim) {
	owner := make(map[int32]int)
	for gi, g := range groups {
		for _, pid := range g.PIDs {
			owner[pid] = gi
		}
	}

	flows := make([][]int, len(groups))
	for i, obs := range observations {
		if obs.PID == 0 {
			continue
		}
		if gi, ok := owner[obs.PID]; ok {
			flows[gi] = append(flows[gi], i)
		}
	}

	for gi, g := range groups {
		before, ok := prev[g.Key]
		if !ok || len(flows[gi]) == 0 {
			continue
		}
		bytes = append(bytes, claim{
			flows: flows[gi],
			total: counterDelta(before.BytesSent+before.BytesRecv, g.Stats.BytesSent+g.Stats.BytesRecv),
		})
		if g.Packets {
			packets = append(packets, claim{
				flows: flows[gi],
				total: counterDelta(before.PacketsSent+before.PacketsRecv, g.Stats.PacketsSent+g.Stats.PacketsRecv),
			})
		}
	}
	return bytes, packets
}

// splitTraffic gives each claimed flow its share of the claim and spreads
// what the claims leave of the host total evenly over the other flows.
func splitTraffic(n int, claims []claim, host uint64) []uint64 {
	out := make([]uint64, n)
	claimed := make([]bool, n)
	var used uint64
	for _, cl := range claims {
		for j, i := range cl.flows {
			out[i] = share(cl.total, len(cl.flows), j)
			claimed[i] = true
		}
		used += cl.total
	}

	var rest []int
	for i := range out {
		if !claimed[i] {
			rest = append(rest, i)
		}
	}
	left := counterDelta(used, host)
	for j, i := range rest {
		out[i] = share(left, len(rest), j)
	}
	return out
}
