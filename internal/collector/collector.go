package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/kostyay/netinspect/internal/model"
)

// Collector is the interface for sampling live network flows.
type Collector interface {
	// Collect returns one observation per active flow. Traffic fields are
	// deltas since the previous call.
	Collect(ctx context.Context) ([]model.Observation, error)
}

// New returns a Collector backed by the operating system's socket table.
// Traffic comes from per-process counters where the platform has them and
// from the host interface counters otherwise.
func New() Collector {
	c := newFlowCollector(net.ConnectionsWithContext, systemCounters)
	c.processCounters = processCounters
	return c
}

// CollectOnce samples twice, interval apart, so the returned observations
// carry traffic measured during the interval.
func CollectOnce(ctx context.Context, c Collector, interval time.Duration) ([]model.Observation, error) {
	first, err := c.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return first, nil
	}

	select {
	case <-ctx.Done():
		return first, nil
	case <-time.After(interval):
	}

	second, err := c.Collect(ctx)
	if err != nil {
		return first, err
	}
	return append(first, second...), nil
}

type (
	connectionsFunc     func(ctx context.Context, kind string) ([]net.ConnectionStat, error)
	countersFunc        func(ctx context.Context) (*model.NetIOStats, error)
	processCountersFunc func(ctx context.Context) ([]processIO, error)
)

// systemCounters returns host-wide interface counters.
func systemCounters(ctx context.Context) (*model.NetIOStats, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return nil, fmt.Errorf("no interface counters")
	}
	all := counters[0]
	return &model.NetIOStats{
		BytesSent:   all.BytesSent,
		BytesRecv:   all.BytesRecv,
		PacketsSent: all.PacketsSent,
		PacketsRecv: all.PacketsRecv,
		UpdatedAt:   time.Now(),
	}, nil
}

type flowCollector struct {
	connections     connectionsFunc
	counters        countersFunc
	processCounters processCountersFunc
	now             func() time.Time

	processCache map[int32]string
	cacheMu      sync.RWMutex

	// Previous samples, swapped under ioMu since fetches may overlap.
	ioMu     sync.Mutex
	prevIO   *model.NetIOStats
	prevProc map[string]model.NetIOStats
}

func newFlowCollector(conns connectionsFunc, counters countersFunc) *flowCollector {
	return &flowCollector{
		connections:  conns,
		counters:     counters,
		now:          time.Now,
		processCache: make(map[int32]string),
	}
}

func (c *flowCollector) Collect(ctx context.Context) ([]model.Observation, error) {
	conns, err := c.connections(ctx, "inet")
	if err != nil {
		return nil, fmt.Errorf("failed to get connections: %w", err)
	}

	now := c.now()
	listening := listeningPorts(conns)

	var observations []model.Observation
	pids := make(map[int32]bool)
	for _, conn := range conns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if conn.Raddr.IP == "" || conn.Raddr.Port == 0 {
			continue // listener, not a flow
		}

		obs := model.Observation{
			Key:       flowKey(conn, listening),
			Direction: direction(conn, listening),
			PID:       conn.Pid,
			Seen:      now,
		}
		if conn.Pid != 0 {
			obs.ProcessName = c.processName(ctx, conn.Pid)
			pids[conn.Pid] = true
		}
		observations = append(observations, obs)
	}

	c.pruneProcessCache(pids)
	c.attributeTraffic(ctx, observations)

	return observations, nil
}

// attributeTraffic fills in the traffic since the previous call. Flows
// owned by a process with its own counters share that process's delta; the
// rest of the host delta is spread evenly over the remaining flows.
func (c *flowCollector) attributeTraffic(ctx context.Context, observations []model.Observation) {
	if c.counters == nil {
		return
	}
	curr, err := c.counters(ctx)
	if err != nil || curr == nil {
		return
	}
	var groups []processIO
	if c.processCounters != nil {
		// Without per-process counters every flow takes the even split.
		groups, _ = c.processCounters(ctx)
	}

	c.ioMu.Lock()
	prev, prevProc := c.prevIO, c.prevProc
	c.prevIO = curr
	c.prevProc = make(map[string]model.NetIOStats, len(groups))
	for _, g := range groups {
		c.prevProc[g.Key] = g.Stats
	}
	c.ioMu.Unlock()

	if prev == nil || len(observations) == 0 {
		return
	}

	byteClaims, packetClaims := claimTraffic(observations, groups, prevProc)
	bytes := splitTraffic(len(observations), byteClaims,
		counterDelta(prev.BytesSent+prev.BytesRecv, curr.BytesSent+curr.BytesRecv))
	packets := splitTraffic(len(observations), packetClaims,
		counterDelta(prev.PacketsSent+prev.PacketsRecv, curr.PacketsSent+curr.PacketsRecv))
	for i := range observations {
		observations[i].Bytes = bytes[i]
		observations[i].Packets = packets[i]
	}
}

func (c *flowCollector) processName(ctx context.Context, pid int32) string {
	c.cacheMu.RLock()
	if name, ok := c.processCache[pid]; ok {
		c.cacheMu.RUnlock()
		return name
	}
	c.cacheMu.RUnlock()

	var name string
	if proc, err := process.NewProcessWithContext(ctx, pid); err == nil {
		name, _ = proc.NameWithContext(ctx)
	}

	c.cacheMu.Lock()
	c.processCache[pid] = name
	c.cacheMu.Unlock()

	return name
}

// pruneProcessCache drops names of processes that own no flow anymore.
func (c *flowCollector) pruneProcessCache(live map[int32]bool) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	for pid := range c.processCache {
		if !live[pid] {
			delete(c.processCache, pid)
		}
	}
}
