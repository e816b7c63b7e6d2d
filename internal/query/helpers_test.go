package query

import (
	"fmt"
	"time"

	"github.com/kostyay/netinspect/internal/model"
	"github.com/kostyay/netinspect/internal/store"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// rec builds a record whose identity is derived from id.
func rec(id int, bytes, packets uint64) model.Record {
	return model.Record{
		Key: model.ConnectionKey{
			SrcAddr:  "10.0.0.1",
			SrcPort:  uint16(40000 + id),
			DstAddr:  fmt.Sprintf("198.51.100.%d", id%250),
			DstPort:  443,
			Protocol: model.ProtocolTCP,
		},
		Value: model.ConnectionValue{
			Index:    id,
			Bytes:    bytes,
			Packets:  packets,
			LastSeen: baseTime.Add(time.Duration(id) * time.Second),
		},
	}
}

func withResolution(r model.Record, app, domain, country, as string) model.Record {
	r.Value.Resolution = model.Resolution{AppProtocol: app, Domain: domain, Country: country, ASName: as}
	return r
}

func favorite(r model.Record) model.Record {
	r.Value.Favorite = true
	return r
}

// snapshotOf wraps records in a store.Snapshot with totals computed from them.
func snapshotOf(version uint64, records ...model.Record) store.Snapshot {
	snap := store.Snapshot{Records: records, Version: version, TakenAt: baseTime}
	for _, r := range records {
		snap.Totals.Connections++
		snap.Totals.Bytes += r.Value.Bytes
		snap.Totals.Packets += r.Value.Packets
	}
	return snap
}

func manyRecords(n int) []model.Record {
	out := make([]model.Record, n)
	for i := range out {
		out[i] = rec(i, uint64(n-i), uint64(i%7))
	}
	return out
}

func bytesOf(records []model.Record) []uint64 {
	out := make([]uint64, len(records))
	for i, r := range records {
		out[i] = r.Value.Bytes
	}
	return out
}
