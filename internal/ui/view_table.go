package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/kostyay/netinspect/internal/model"
	"github.com/kostyay/netinspect/internal/query"
)

// column identifies a table column.
type column int

const (
	colFavorite column = iota
	colSource
	colDestination
	colProtocol
	colApp
	colDomain
	colCountry
	colAS
	colPackets
	colBytes
	colSeen
)

// columnDef defines a table column with sizing properties.
type columnDef struct {
	label      string
	id         column
	minWidth   int  // minimum width
	flex       int  // flex weight for extra space distribution (0 = fixed)
	rightAlign bool // true for right-aligned columns (numbers)
}

// sortColumn returns the column that the sort mode orders by.
func sortColumn(mode query.SortMode) column {
	switch mode {
	case query.MostBytes:
		return colBytes
	case query.MostPackets:
		return colPackets
	default:
		return colSeen
	}
}

// inspectColumns returns the column definitions for the inspect table.
func inspectColumns() []columnDef {
	return []columnDef{
		{label: " ", id: colFavorite, minWidth: 1},
		{label: "Source", id: colSource, minWidth: 18, flex: 2},
		{label: "Destination", id: colDestination, minWidth: 18, flex: 2},
		{label: "Proto", id: colProtocol, minWidth: 5},
		{label: "App", id: colApp, minWidth: 8, flex: 1},
		{label: "Domain", id: colDomain, minWidth: 12, flex: 3},
		{label: "Ctry", id: colCountry, minWidth: 4},
		{label: "AS", id: colAS, minWidth: 10, flex: 2},
		{label: "Packets", id: colPackets, minWidth: 8, rightAlign: true},
		{label: "Bytes", id: colBytes, minWidth: 9, rightAlign: true},
		{label: "Seen", id: colSeen, minWidth: 5, rightAlign: true},
	}
}

// cellValue renders one cell of a record.
func (m Model) cellValue(col column, r model.Record) string {
	switch col {
	case colFavorite:
		if r.Value.Favorite {
			return "★"
		}
		return " "
	case colSource:
		return r.Key.Source()
	case colDestination:
		return r.Key.Destination()
	case colProtocol:
		return string(r.Key.Protocol)
	case colApp:
		return orDash(r.Value.AppProtocol)
	case colDomain:
		return orDash(r.Value.Domain)
	case colCountry:
		return orDash(r.Value.Country)
	case colAS:
		return orDash(r.Value.ASName)
	case colPackets:
		return formatCount(r.Value.Packets)
	case colBytes:
		return formatBytes(r.Value.Bytes)
	case colSeen:
		return formatAge(r.Value.LastSeen, m.snap.TakenAt)
	default:
		return ""
	}
}

// formatRow lays a record out in the given column widths.
func (m Model) formatRow(columns []columnDef, widths []int, r model.Record) string {
	var b strings.Builder
	for i, col := range columns {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(fitCell(m.cellValue(col.id, r), widths[i], col.rightAlign))
	}
	return b.String()
}

// fitCell truncates and pads s to width.
func fitCell(s string, width int, rightAlign bool) string {
	s = truncateString(s, width)
	pad := width - ansi.StringWidth(s)
	if pad <= 0 {
		return s
	}
	if rightAlign {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}

// renderRow renders a table row with selection and direction styling.
func renderRow(content string, isSelected bool, dir model.TrafficDirection) string {
	row := "  " + content
	if isSelected {
		return SelectedConnStyle().Render(row) + "\n"
	}
	return DirectionStyle(dir).Render(row) + "\n"
}

// renderTableHeader renders the column headers with a sort indicator on the
// column the current mode orders by.
func renderTableHeader(columns []columnDef, widths []int, sortCol column) string {
	var b strings.Builder

	// Add 2-space prefix to align with data rows (which have "  " prefix from renderRow)
	b.WriteString("  ")

	headerStyle := TableHeaderStyle()
	selectedStyle := TableHeaderSelectedStyle()
	sortStyle := SortIndicatorStyle()

	for i, col := range columns {
		if i > 0 {
			b.WriteString(" ")
		}

		isSorted := sortCol == col.id
		header := col.label

		padWidth := widths[i] - ansi.StringWidth(header)
		if isSorted {
			padWidth--
		}
		if padWidth < 0 {
			padWidth = 0
		}

		if isSorted && col.rightAlign {
			b.WriteString(strings.Repeat(" ", padWidth))
			b.WriteString(sortStyle.Render("▽"))
			b.WriteString(selectedStyle.Render(header))
			continue
		}

		var paddedHeader string
		if col.rightAlign {
			paddedHeader = strings.Repeat(" ", padWidth) + header
		} else {
			paddedHeader = header + strings.Repeat(" ", padWidth)
		}
		if isSorted {
			b.WriteString(selectedStyle.Render(paddedHeader))
			b.WriteString(sortStyle.Render("▽"))
		} else {
			b.WriteString(headerStyle.Render(paddedHeader))
		}
	}

	return b.String()
}

// calculateColumnWidths distributes available width among columns.
// Fixed columns (flex=0) get their minWidth, remaining space goes to flex columns.
func calculateColumnWidths(columns []columnDef, availableWidth int) []int {
	widths := make([]int, len(columns))

	// Account for spaces between columns and selection marker
	separators := len(columns) - 1
	selectionMarker := 2 // "  " prefix for all rows
	availableWidth -= separators + selectionMarker

	// First pass: assign minimum widths and calculate total flex
	totalMinWidth := 0
	totalFlex := 0
	for i, col := range columns {
		widths[i] = col.minWidth
		totalMinWidth += col.minWidth
		totalFlex += col.flex
	}

	// Distribute remaining space to flex columns
	extraSpace := availableWidth - totalMinWidth
	if extraSpace > 0 && totalFlex > 0 {
		for i, col := range columns {
			if col.flex > 0 {
				extra := (extraSpace * col.flex) / totalFlex
				widths[i] += extra
			}
		}
	}

	return widths
}
