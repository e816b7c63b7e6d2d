package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"source", "destination", "protocol", "app_protocol", "domain", "country",
	"as_name", "direction", "pid", "process", "bytes", "packets",
	"first_seen", "last_seen", "favorite",
}

// RenderCSV writes one row per connection of the report.
func RenderCSV(w io.Writer, rep Report) error {
	out := newJSONOutput(rep)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range out.Connections {
		row := []string{
			c.Source,
			c.Destination,
			c.Protocol,
			c.AppProtocol,
			c.Domain,
			c.Country,
			c.ASName,
			c.Direction,
			strconv.FormatInt(int64(c.PID), 10),
			c.Process,
			strconv.FormatUint(c.Bytes, 10),
			strconv.FormatUint(c.Packets, 10),
			formatTime(c.FirstSeen),
			formatTime(c.LastSeen),
			strconv.FormatBool(c.Favorite),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// WriteFile saves the report to path. A .csv extension selects CSV,
// anything else JSON.
func WriteFile(path string, rep Report) error {
	// #nosec G304 - path is chosen by the local user
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	render := RenderJSON
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		render = RenderCSV
	}
	if err := render(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

// DefaultReportName returns a timestamped file name for an export.
func DefaultReportName(now time.Time, ext string) string {
	return fmt.Sprintf("netinspect-report-%s.%s", now.Format("20060102-150405"), ext)
}
