package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kostyay/netinspect/internal/model"
	"github.com/kostyay/netinspect/internal/store"
)

// mockCollector is a test double for collector.Collector.
type mockCollector struct {
	mu           sync.Mutex
	observations []model.Observation
	err          error
	calls        int
}

func (m *mockCollector) Collect(ctx context.Context) ([]model.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.observations, m.err
}

// newMockCollector creates a mockCollector with the given observations.
func newMockCollector(observations ...model.Observation) *mockCollector {
	return &mockCollector{observations: observations}
}

// newMockCollectorWithError creates a mockCollector that returns an error.
func newMockCollectorWithError(err error) *mockCollector {
	return &mockCollector{err: err}
}

// mockStats records collection statistics.
type mockStats struct {
	collects    int
	lastErr     error
	connections int
}

func (s *mockStats) ObserveCollect(observations int, err error) {
	s.collects++
	s.lastErr = err
}

func (s *mockStats) ObserveStore(connections int, bytes uint64) {
	s.connections = connections
}

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testObservations returns n distinct outgoing flows. Flow i has (i+1)*100
// bytes, i+1 packets and was seen i seconds after testEpoch. Even flows are
// https to the US, odd flows are dns to Germany.
func testObservations(n int) []model.Observation {
	obs := make([]model.Observation, n)
	for i := range obs {
		res := model.Resolution{
			AppProtocol: "https",
			Domain:      fmt.Sprintf("host%d.example.com", i),
			Country:     "US",
			ASName:      "EXAMPLE-NET",
		}
		if i%2 == 1 {
			res.AppProtocol = "dns"
			res.Country = "DE"
			res.ASName = "RESOLVER-AS"
		}
		obs[i] = model.Observation{
			Resolution: res,
			Key: model.ConnectionKey{
				SrcAddr:  "10.0.0.2",
				SrcPort:  uint16(40000 + i),
				DstAddr:  fmt.Sprintf("93.184.216.%d", i+1),
				DstPort:  443,
				Protocol: model.ProtocolTCP,
			},
			Direction: model.DirectionOutgoing,
			Bytes:     uint64(i+1) * 100,
			Packets:   uint64(i + 1),
			Seen:      testEpoch.Add(time.Duration(i) * time.Second),
		}
	}
	return obs
}

// newTestStore returns a store holding n test flows.
func newTestStore(n int) *store.Store {
	st := store.New()
	st.Observe(testObservations(n)...)
	return st
}

var errSample = errors.New("permission denied")
