package ui

import (
	"time"
)

// TickMsg is sent on each refresh interval.
type TickMsg time.Time

// DataMsg reports the result of one collection cycle. The observations have
// already been merged into the store when it arrives.
type DataMsg struct {
	Observed int // observations merged
	Added    int // previously unseen connections
	Err      error
}

// ExportMsg reports the outcome of a report export.
type ExportMsg struct {
	Path  string
	Count int
	Err   error
}

// UpdateMsg carries a newer release tag, if any.
type UpdateMsg struct {
	Latest string
}
