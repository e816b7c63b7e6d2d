package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/kostyay/netinspect/internal/model"
)

func fakeConnections(conns []net.ConnectionStat, err error) connectionsFunc {
	return func(ctx context.Context, kind string) ([]net.ConnectionStat, error) {
		return conns, err
	}
}

// fakeCounters returns the given samples in order, repeating the last one.
func fakeCounters(samples ...model.NetIOStats) countersFunc {
	var mu sync.Mutex
	i := 0
	return func(ctx context.Context) (*model.NetIOStats, error) {
		mu.Lock()
		defer mu.Unlock()
		s := samples[i]
		if i < len(samples)-1 {
			i++
		}
		return &s, nil
	}
}

func testConns() []net.ConnectionStat {
	return []net.ConnectionStat{
		// Listener on 22 and an inbound SSH session.
		{Type: sockStream, Status: "LISTEN", Laddr: net.Addr{IP: "0.0.0.0", Port: 22}},
		{Type: sockStream, Status: "ESTABLISHED", Laddr: net.Addr{IP: "10.0.0.5", Port: 22}, Raddr: net.Addr{IP: "203.0.113.9", Port: 51515}},
		// Outbound HTTPS.
		{Type: sockStream, Status: "ESTABLISHED", Laddr: net.Addr{IP: "10.0.0.5", Port: 40001}, Raddr: net.Addr{IP: "93.184.216.34", Port: 443}},
		// Outbound DNS over UDP.
		{Type: sockDgram, Laddr: net.Addr{IP: "10.0.0.5", Port: 40002}, Raddr: net.Addr{IP: "1.1.1.1", Port: 53}},
	}
}

func TestNew(t *testing.T) {
	if New() == nil {
		t.Error("New() returned nil")
	}
}

func TestCollect_SkipsListenersAndOrientsFlows(t *testing.T) {
	c := newFlowCollector(fakeConnections(testConns(), nil), nil)

	obs, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("len(obs) = %d, want 3", len(obs))
	}

	inbound := obs[0]
	wantIn := model.ConnectionKey{SrcAddr: "203.0.113.9", SrcPort: 51515, DstAddr: "10.0.0.5", DstPort: 22, Protocol: model.ProtocolTCP}
	if inbound.Key != wantIn {
		t.Errorf("inbound key = %+v, want %+v", inbound.Key, wantIn)
	}
	if inbound.Direction != model.DirectionIncoming {
		t.Errorf("inbound direction = %v, want incoming", inbound.Direction)
	}

	outbound := obs[1]
	wantOut := model.ConnectionKey{SrcAddr: "10.0.0.5", SrcPort: 40001, DstAddr: "93.184.216.34", DstPort: 443, Protocol: model.ProtocolTCP}
	if outbound.Key != wantOut {
		t.Errorf("outbound key = %+v, want %+v", outbound.Key, wantOut)
	}
	if outbound.Direction != model.DirectionOutgoing {
		t.Errorf("outbound direction = %v, want outgoing", outbound.Direction)
	}

	if obs[2].Key.Protocol != model.ProtocolUDP {
		t.Errorf("dns protocol = %q, want UDP", obs[2].Key.Protocol)
	}
}

func TestCollect_SeenTimestamp(t *testing.T) {
	c := newFlowCollector(fakeConnections(testConns(), nil), nil)
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	obs, _ := c.Collect(context.Background())
	for i, o := range obs {
		if !o.Seen.Equal(fixed) {
			t.Errorf("obs[%d].Seen = %v, want %v", i, o.Seen, fixed)
		}
	}
}

func TestCollect_Error(t *testing.T) {
	c := newFlowCollector(fakeConnections(nil, errors.New("boom")), nil)

	_, err := c.Collect(context.Background())
	if err == nil {
		t.Fatal("Collect() should return an error")
	}
}

func TestCollect_ContextCancellation(t *testing.T) {
	c := newFlowCollector(fakeConnections(testConns(), nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obs, err := c.Collect(ctx)
	if err == nil {
		t.Error("Collect() with cancelled context should return an error")
	}
	if obs != nil {
		t.Error("Collect() with cancelled context should not return observations")
	}
}

func TestCollect_AttributesTrafficDeltas(t *testing.T) {
	c := newFlowCollector(
		fakeConnections(testConns(), nil),
		fakeCounters(
			model.NetIOStats{BytesSent: 1000, BytesRecv: 1000, PacketsSent: 10, PacketsRecv: 10},
			model.NetIOStats{BytesSent: 1500, BytesRecv: 1501, PacketsSent: 13, PacketsRecv: 13},
		),
	)

	first, _ := c.Collect(context.Background())
	for i, o := range first {
		if o.Bytes != 0 || o.Packets != 0 {
			t.Errorf("first sample obs[%d] traffic = %d/%d, want 0/0", i, o.Bytes, o.Packets)
		}
	}

	second, _ := c.Collect(context.Background())
	var bytes, packets uint64
	for _, o := range second {
		bytes += o.Bytes
		packets += o.Packets
	}
	if bytes != 1001 {
		t.Errorf("total bytes = %d, want 1001", bytes)
	}
	if packets != 6 {
		t.Errorf("total packets = %d, want 6", packets)
	}
}

// fakeProcessCounters returns the given samples in order, repeating the last one.
func fakeProcessCounters(samples ...[]processIO) processCountersFunc {
	var mu sync.Mutex
	i := 0
	return func(ctx context.Context) ([]processIO, error) {
		mu.Lock()
		defer mu.Unlock()
		s := samples[i]
		if i < len(samples)-1 {
			i++
		}
		return s, nil
	}
}

func TestCollect_AttributesProcessTraffic(t *testing.T) {
	conns := []net.ConnectionStat{
		{Type: sockStream, Pid: 100, Laddr: net.Addr{IP: "10.0.0.5", Port: 40001}, Raddr: net.Addr{IP: "93.184.216.34", Port: 443}},
		{Type: sockStream, Pid: 100, Laddr: net.Addr{IP: "10.0.0.5", Port: 40002}, Raddr: net.Addr{IP: "93.184.216.35", Port: 443}},
		{Type: sockStream, Pid: 200, Laddr: net.Addr{IP: "10.0.0.5", Port: 40003}, Raddr: net.Addr{IP: "1.1.1.1", Port: 853}},
		{Type: sockDgram, Laddr: net.Addr{IP: "10.0.0.5", Port: 40004}, Raddr: net.Addr{IP: "8.8.8.8", Port: 53}},
	}
	c := newFlowCollector(
		fakeConnections(conns, nil),
		fakeCounters(
			model.NetIOStats{BytesRecv: 0, PacketsRecv: 0},
			model.NetIOStats{BytesRecv: 10000, PacketsRecv: 100},
		),
	)
	c.processCounters = fakeProcessCounters(
		[]processIO{
			{Key: "a", PIDs: []int32{100}, Packets: true},
			{Key: "b", PIDs: []int32{200}},
		},
		[]processIO{
			{Key: "a", PIDs: []int32{100}, Stats: model.NetIOStats{BytesRecv: 8000, PacketsRecv: 60}, Packets: true},
			{Key: "b", PIDs: []int32{200}, Stats: model.NetIOStats{BytesRecv: 1500}},
		},
	)

	_, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	obs, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	wantBytes := []uint64{4000, 4000, 1500, 500}
	// Process b has no packet counters, so its flow shares the rest with
	// the unowned flow.
	wantPackets := []uint64{30, 30, 20, 20}
	for i, o := range obs {
		if o.Bytes != wantBytes[i] {
			t.Errorf("obs[%d].Bytes = %d, want %d", i, o.Bytes, wantBytes[i])
		}
		if o.Packets != wantPackets[i] {
			t.Errorf("obs[%d].Packets = %d, want %d", i, o.Packets, wantPackets[i])
		}
	}
}

func TestCollect_ConcurrentCalls(t *testing.T) {
	c := newFlowCollector(
		fakeConnections(testConns(), nil),
		fakeCounters(
			model.NetIOStats{BytesSent: 100},
			model.NetIOStats{BytesSent: 200},
			model.NetIOStats{BytesSent: 300},
		),
	)
	c.processCounters = fakeProcessCounters([]processIO{{Key: "ns", PIDs: []int32{1}}})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Collect(context.Background()); err != nil {
				t.Errorf("Collect() error = %v", err)
			}
		}()
	}
	wg.Wait()

	c.ioMu.Lock()
	defer c.ioMu.Unlock()
	if c.prevIO == nil {
		t.Error("prevIO should hold the last sample")
	}
}

func TestCollect_PrunesProcessCache(t *testing.T) {
	withPID := []net.ConnectionStat{
		{Type: sockStream, Pid: 4242, Laddr: net.Addr{IP: "10.0.0.5", Port: 40001}, Raddr: net.Addr{IP: "93.184.216.34", Port: 443}},
	}
	var mu sync.Mutex
	current := withPID
	c := newFlowCollector(func(ctx context.Context, kind string) ([]net.ConnectionStat, error) {
		mu.Lock()
		defer mu.Unlock()
		return current, nil
	}, nil)

	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	c.cacheMu.RLock()
	_, cached := c.processCache[4242]
	c.cacheMu.RUnlock()
	if !cached {
		t.Fatal("process name should be cached while its flow is live")
	}

	mu.Lock()
	current = testConns()
	mu.Unlock()
	if _, err := c.Collect(context.Background()); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	if len(c.processCache) != 0 {
		t.Errorf("processCache = %v, want empty after the process went away", c.processCache)
	}
}

func TestCollectOnce_NoInterval(t *testing.T) {
	c := newFlowCollector(fakeConnections(testConns(), nil), nil)

	obs, err := CollectOnce(context.Background(), c, 0)
	if err != nil {
		t.Fatalf("CollectOnce() error = %v", err)
	}
	if len(obs) != 3 {
		t.Errorf("len(obs) = %d, want 3", len(obs))
	}
}

func TestCollectOnce_TwoSamples(t *testing.T) {
	c := newFlowCollector(fakeConnections(testConns(), nil), nil)

	obs, err := CollectOnce(context.Background(), c, time.Millisecond)
	if err != nil {
		t.Fatalf("CollectOnce() error = %v", err)
	}
	if len(obs) != 6 {
		t.Errorf("len(obs) = %d, want 6", len(obs))
	}
}

func TestCollectorInterface_Live(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live socket table test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	obs, err := New().Collect(ctx)
	if err != nil {
		t.Skipf("Collect() returned error (may be expected in some environments): %v", err)
	}
	for i, o := range obs {
		if o.Key.DstAddr == "" {
			t.Errorf("obs[%d] has empty destination", i)
		}
	}
}
