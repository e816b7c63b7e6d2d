package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/kostyay/netinspect/internal/model"
)

// SortMode selects the ordering of the report.
type SortMode int

const (
	MostRecent SortMode = iota
	MostBytes
	MostPackets
)

// SortModes lists every mode in selector order.
var SortModes = []SortMode{MostRecent, MostBytes, MostPackets}

// String returns a human-readable name for the SortMode.
func (s SortMode) String() string {
	switch s {
	case MostRecent:
		return "Most recent"
	case MostBytes:
		return "Most bytes"
	case MostPackets:
		return "Most packets"
	default:
		return fmt.Sprintf("SortMode(%d)", s)
	}
}

// Flag returns the CLI spelling of the mode.
func (s SortMode) Flag() string {
	switch s {
	case MostBytes:
		return "bytes"
	case MostPackets:
		return "packets"
	default:
		return "recent"
	}
}

// Next returns the following mode, wrapping around.
func (s SortMode) Next() SortMode {
	return SortModes[(int(s)+1)%len(SortModes)]
}

// ParseSortMode parses "recent", "bytes" or "packets".
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recent", "most-recent":
		return MostRecent, nil
	case "bytes", "most-bytes":
		return MostBytes, nil
	case "packets", "most-packets":
		return MostPackets, nil
	default:
		return MostRecent, fmt.Errorf("unknown sort mode %q (want recent, bytes or packets)", s)
	}
}

// Comparator returns a comparison function for mode. The primary key is
// descending; ties fall back to the connection identity so the order is total.
func Comparator(mode SortMode) func(a, b model.Record) int {
	return func(a, b model.Record) int {
		var c int
		switch mode {
		case MostBytes:
			c = cmp.Compare(b.Value.Bytes, a.Value.Bytes)
		case MostPackets:
			c = cmp.Compare(b.Value.Packets, a.Value.Packets)
		default:
			c = b.Value.LastSeen.Compare(a.Value.LastSeen)
		}

		// Secondary sort for stable ordering when primary keys are equal
		if c == 0 {
			c = a.Key.Compare(b.Key)
		}
		return c
	}
}

// Sort orders records in place by mode.
func Sort(records []model.Record, mode SortMode) {
	slices.SortFunc(records, Comparator(mode))
}
