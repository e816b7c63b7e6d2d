// Package store holds the live set of observed connections.
//
// The collector goroutine writes into the Store while the UI reads from it,
// so readers never iterate the live map: they take a Snapshot, which is a
// point-in-time copy.
package store

import (
	"sync"
	"time"

	"github.com/kostyay/netinspect/internal/model"
)

// Totals are the aggregate traffic counters of the store.
type Totals struct {
	Connections int
	Bytes       uint64
	Packets     uint64
}

// Snapshot is a consistent, point-in-time copy of the store.
type Snapshot struct {
	Records []model.Record
	Totals  Totals
	Version uint64 // increases on every mutation
	TakenAt time.Time
}

// Store is a concurrency-safe set of connection records keyed by identity.
type Store struct {
	mu      sync.RWMutex
	records map[model.ConnectionKey]*model.ConnectionValue
	totals  Totals
	version uint64
	now     func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		records: make(map[model.ConnectionKey]*model.ConnectionValue),
		now:     time.Now,
	}
}

// Observe merges collector sightings into the store and returns how many
// previously unseen connections were added.
func (s *Store) Observe(observations ...model.Observation) int {
	if len(observations) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, obs := range observations {
		seen := obs.Seen
		if seen.IsZero() {
			seen = s.now()
		}

		val, ok := s.records[obs.Key]
		if !ok {
			val = &model.ConnectionValue{
				Index:     len(s.records),
				FirstSeen: seen,
			}
			s.records[obs.Key] = val
			s.totals.Connections++
			added++
		}

		val.Bytes += obs.Bytes
		val.Packets += obs.Packets
		if seen.After(val.LastSeen) {
			val.LastSeen = seen
		}
		if obs.Direction != model.DirectionUnknown {
			val.Direction = obs.Direction
		}
		if obs.PID != 0 {
			val.PID = obs.PID
		}
		if obs.ProcessName != "" {
			val.ProcessName = obs.ProcessName
		}
		val.Resolution.Merge(obs.Resolution)

		s.totals.Bytes += obs.Bytes
		s.totals.Packets += obs.Packets
	}
	s.version++

	return added
}

// Resolve attaches enrichment results to an existing record.
// Returns false if the key is unknown.
func (s *Store) Resolve(key model.ConnectionKey, res model.Resolution) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.records[key]
	if !ok {
		return false
	}
	before := val.Resolution
	val.Resolution.Merge(res)
	if val.Resolution != before {
		s.version++
	}
	return true
}

// ToggleFavorite flips the favorite flag of a record and returns the new value.
// Returns false for an unknown key.
func (s *Store) ToggleFavorite(key model.ConnectionKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.records[key]
	if !ok {
		return false
	}
	val.Favorite = !val.Favorite
	s.version++
	return val.Favorite
}

// Get returns a copy of a single record.
func (s *Store) Get(key model.ConnectionKey) (model.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[key]
	if !ok {
		return model.Record{}, false
	}
	return model.Record{Key: key, Value: *val}, true
}

// Totals returns the aggregate traffic counters.
func (s *Store) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

// Snapshot copies every record under the read lock. Records are returned in
// insertion order.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.Record, len(s.records))
	for key, val := range s.records {
		records[val.Index] = model.Record{Key: key, Value: *val}
	}

	return Snapshot{
		Records: records,
		Totals:  s.totals,
		Version: s.version,
		TakenAt: s.now(),
	}
}
