// Package output renders inspect results for machines: JSON for the CLI and
// JSON or CSV report files for the TUI export action.
package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/kostyay/netinspect/internal/model"
	"github.com/kostyay/netinspect/internal/query"
	"github.com/kostyay/netinspect/internal/store"
)

// Report is a rendered query: either one page or the full sequence.
type Report struct {
	Timestamp time.Time
	Criteria  query.Criteria
	Mode      query.SortMode
	Totals    store.Totals
	Records   []model.Record
	Page      *query.Page // nil for an unpaginated report
}

// JSONConnection represents a connection in JSON output.
type JSONConnection struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Protocol    string    `json:"protocol"`
	AppProtocol string    `json:"app_protocol,omitempty"`
	Domain      string    `json:"domain,omitempty"`
	Country     string    `json:"country,omitempty"`
	ASName      string    `json:"as_name,omitempty"`
	Direction   string    `json:"direction"`
	PID         int32     `json:"pid,omitempty"`
	Process     string    `json:"process,omitempty"`
	Bytes       uint64    `json:"bytes"`
	Packets     uint64    `json:"packets"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	Favorite    bool      `json:"favorite"`
}

// JSONCriteria mirrors the active filters.
type JSONCriteria struct {
	App           string `json:"app,omitempty"`
	Domain        string `json:"domain,omitempty"`
	Country       string `json:"country,omitempty"`
	ASName        string `json:"as_name,omitempty"`
	OnlyFavorites bool   `json:"only_favorites"`
}

// JSONPage describes the window of a paginated report.
type JSONPage struct {
	Number     int `json:"number"`
	Size       int `json:"size"`
	TotalPages int `json:"total_pages"`
	First      int `json:"first"` // 1-based, 0 when empty
	Last       int `json:"last"`
}

// JSONOutput is the root JSON output structure.
type JSONOutput struct {
	Timestamp        time.Time        `json:"timestamp"`
	Sort             string           `json:"sort"`
	Criteria         JSONCriteria     `json:"criteria"`
	Matches          int              `json:"matches"`
	TotalConnections int              `json:"total_connections"`
	TotalBytes       uint64           `json:"total_bytes"`
	TotalPackets     uint64           `json:"total_packets"`
	Page             *JSONPage        `json:"page,omitempty"`
	Connections      []JSONConnection `json:"connections"`
}

// NewJSONConnection converts a record.
func NewJSONConnection(r model.Record) JSONConnection {
	return JSONConnection{
		Source:      r.Key.Source(),
		Destination: r.Key.Destination(),
		Protocol:    string(r.Key.Protocol),
		AppProtocol: r.Value.AppProtocol,
		Domain:      r.Value.Domain,
		Country:     r.Value.Country,
		ASName:      r.Value.ASName,
		Direction:   r.Value.Direction.String(),
		PID:         r.Value.PID,
		Process:     r.Value.ProcessName,
		Bytes:       r.Value.Bytes,
		Packets:     r.Value.Packets,
		FirstSeen:   r.Value.FirstSeen,
		LastSeen:    r.Value.LastSeen,
		Favorite:    r.Value.Favorite,
	}
}

func newJSONOutput(rep Report) JSONOutput {
	out := JSONOutput{
		Timestamp: rep.Timestamp,
		Sort:      rep.Mode.Flag(),
		Criteria: JSONCriteria{
			App:           rep.Criteria.App(),
			Domain:        rep.Criteria.Domain(),
			Country:       rep.Criteria.Country(),
			ASName:        rep.Criteria.ASName(),
			OnlyFavorites: rep.Criteria.OnlyFavorites(),
		},
		Matches:          len(rep.Records),
		TotalConnections: rep.Totals.Connections,
		TotalBytes:       rep.Totals.Bytes,
		TotalPackets:     rep.Totals.Packets,
		Connections:      make([]JSONConnection, 0, len(rep.Records)),
	}

	rows := rep.Records
	if rep.Page != nil {
		out.Matches = rep.Page.Total
		out.Page = &JSONPage{
			Number:     rep.Page.Number,
			Size:       rep.Page.Size,
			TotalPages: rep.Page.TotalPages,
			First:      rep.Page.DisplayStart(),
			Last:       rep.Page.DisplayEnd(),
		}
		rows = rep.Page.Rows
	}
	for _, r := range rows {
		out.Connections = append(out.Connections, NewJSONConnection(r))
	}
	return out
}

// RenderJSON writes the report as indented JSON to the writer.
func RenderJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newJSONOutput(rep))
}
