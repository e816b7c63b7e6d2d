package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/kostyay/netinspect/internal/config"
	"github.com/kostyay/netinspect/internal/query"
)

// Layout constants for fixed header/footer with scrollable content.
const (
	headerHeight = 3 // double-line box header (top border + content + bottom border)
	footerHeight = 2 // page status + keybindings
	frameHeight  = 2 // top and bottom border
	frozenHeight = 2 // filter bar + table header
)

// filterLabels are the short labels of the filter inputs, indexed like query.Fields.
var filterLabels = map[query.FilterField]string{
	query.FieldApp:     "app",
	query.FieldCountry: "country",
	query.FieldDomain:  "domain",
	query.FieldASName:  "as",
}

// renderHeader renders the industrial-style header with live indicator and stats.
func (m Model) renderHeader() string {
	borderStyle := BorderStyle()
	titleStyle := HeaderStyle()
	liveStyle := LiveIndicatorStyle()
	statsStyle := StatsStyle()
	warnStyle := WarnStyle()

	innerWidth := m.width - 2

	// Double-line box drawing
	topLeft := "╔"
	topRight := "╗"
	bottomLeft := "╚"
	bottomRight := "╝"
	horizontal := "═"
	vertical := "║"

	title := " NETINSPECT "
	remainingWidth := innerWidth - len(title)
	if remainingWidth < 0 {
		remainingWidth = 0
	}
	leftPad := remainingWidth / 2
	rightPad := remainingWidth - leftPad

	topBorder := borderStyle.Render(topLeft)
	topBorder += borderStyle.Render(strings.Repeat(horizontal, leftPad))
	topBorder += titleStyle.Render(title)
	topBorder += borderStyle.Render(strings.Repeat(horizontal, rightPad))
	topBorder += borderStyle.Render(topRight)

	liveText := liveStyle.Render("◉ LIVE")
	if !m.loaded {
		liveText = liveStyle.Render("○ WAIT")
	}

	totals := m.snap.Totals
	statsText := statsStyle.Render(fmt.Sprintf("  %s connections", formatCount(uint64(totals.Connections))))
	ioText := statsStyle.Render(fmt.Sprintf("   ⇅ %s   %s pkts", formatBytes(totals.Bytes), formatCount(totals.Packets)))
	refreshText := statsStyle.Render(fmt.Sprintf("   %.1fs", m.refreshInterval.Seconds()))

	// Error or update indicator
	rightContent := ""
	if m.lastError != nil {
		rightContent = ErrorStyle().Render(fmt.Sprintf("  ⚠ %s", truncateString(m.lastError.Error(), 30)))
	} else if m.updateAvailable != "" {
		rightContent = warnStyle.Render(fmt.Sprintf("  ▲ %s", m.updateAvailable))
	}

	content := liveText + statsText + ioText + refreshText + rightContent

	padding := innerWidth - lipgloss.Width(content) - 2 // -2 for the spaces around content
	if padding < 0 {
		padding = 0
	}

	contentLine := borderStyle.Render(vertical)
	contentLine += " " + content + strings.Repeat(" ", padding) + " "
	contentLine += borderStyle.Render(vertical)

	bottomBorder := borderStyle.Render(bottomLeft)
	bottomBorder += borderStyle.Render(strings.Repeat(horizontal, innerWidth))
	bottomBorder += borderStyle.Render(bottomRight)

	return topBorder + "\n" + contentLine + "\n" + bottomBorder
}

// contentWidth returns the available width for table content.
// Accounts for frame border and padding.
func (m Model) contentWidth() int {
	// Frame has 2 chars border + 2 chars padding = 4 total
	return m.width - 4
}

// renderFilterBar renders the filter inputs, the favorites toggle and the
// sort mode on one line.
func (m Model) renderFilterBar() string {
	labelStyle := FooterDescStyle()
	activeStyle := FooterKeyStyle()

	var parts []string
	for i, field := range query.Fields {
		label := filterLabels[field] + ":"
		if i == m.focus || m.state.Criteria.Text(field) != "" {
			label = activeStyle.Render(label)
		} else {
			label = labelStyle.Render(label)
		}
		parts = append(parts, label+m.inputs[i].View())
	}

	fav := labelStyle.Render("☆ all")
	if m.state.Criteria.OnlyFavorites() {
		fav = FavoriteStyle().Render("★ favorites")
	}
	parts = append(parts, fav)
	parts = append(parts, labelStyle.Render("sort:")+activeStyle.Render(m.state.Mode.String()))

	return strings.Join(parts, "  ")
}

// renderFrozenHeader returns the lines that stay visible when the table scrolls.
func (m Model) renderFrozenHeader() string {
	columns := inspectColumns()
	widths := calculateColumnWidths(columns, m.contentWidth())
	return m.renderFilterBar() + "\n" + renderTableHeader(columns, widths, sortColumn(m.state.Mode))
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Wait for viewport to be initialized
	if !m.ready {
		return LoadingStyle().Render("Initializing...")
	}

	baseContent := m.renderBaseView()

	if m.helpMode {
		return m.overlayModal(baseContent, m.renderHelpModalContent(), "Keyboard Shortcuts", 60)
	}
	if m.detailsMode {
		if content := m.renderDetailsModalContent(); content != "" {
			return m.overlayModal(baseContent, content, "Connection", 64)
		}
	}

	return baseContent
}

// renderBaseView renders the main UI without modals.
func (m Model) renderBaseView() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	frameTitle := fmt.Sprintf("matches: %d", m.result.Total)
	if n := m.state.Criteria.ActiveCount(); n > 0 {
		frameTitle = fmt.Sprintf("matches: %d · %d filters", m.result.Total, n)
	}
	b.WriteString(m.renderFrameWithFrozenHeader(frameTitle))
	b.WriteString("\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

// renderFrameWithFrozenHeader renders the frame with frozen header above scrollable viewport.
func (m Model) renderFrameWithFrozenHeader(title string) string {
	borderColor := lipgloss.Color(config.CurrentTheme.Styles.Table.HeaderFgColor)
	titleColor := lipgloss.Color(config.CurrentTheme.Styles.Header.TitleFg)

	topLeft := "╭"
	topRight := "╮"
	bottomLeft := "╰"
	bottomRight := "╯"
	horizontal := "─"
	vertical := "│"

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor).Bold(true)

	innerWidth := m.width - 2

	titleWithPadding := " " + title + " "
	remainingWidth := innerWidth - lipgloss.Width(titleWithPadding)
	if remainingWidth < 0 {
		remainingWidth = 0
		titleWithPadding = truncateString(titleWithPadding, innerWidth)
	}
	leftPad := remainingWidth / 2
	rightPad := remainingWidth - leftPad

	topBorder := borderStyle.Render(topLeft)
	topBorder += borderStyle.Render(strings.Repeat(horizontal, leftPad))
	topBorder += titleStyle.Render(titleWithPadding)
	topBorder += borderStyle.Render(strings.Repeat(horizontal, rightPad))
	topBorder += borderStyle.Render(topRight)

	bottomBorder := borderStyle.Render(bottomLeft)
	bottomBorder += borderStyle.Render(strings.Repeat(horizontal, innerWidth))
	bottomBorder += borderStyle.Render(bottomRight)

	var result strings.Builder
	result.WriteString(topBorder)
	result.WriteString("\n")

	renderLine := func(line string) {
		result.WriteString(borderStyle.Render(vertical))
		result.WriteString(" ")
		result.WriteString(padRight(line, innerWidth-2))
		result.WriteString(" ")
		result.WriteString(borderStyle.Render(vertical))
		result.WriteString("\n")
	}

	for _, line := range strings.Split(m.renderFrozenHeader(), "\n") {
		renderLine(line)
	}
	for _, line := range strings.Split(m.viewport.View(), "\n") {
		renderLine(line)
	}

	result.WriteString(bottomBorder)
	return result.String()
}

// renderPageStatus returns the "Showing X-Y of Z" line with page controls.
func (m Model) renderPageStatus() string {
	page := m.result.Page
	if page.Empty() {
		return ""
	}

	prev := FooterKeyStyle().Render("◀ prev")
	if !page.HasPrev() {
		prev = DimmedStyle().Render("◀ prev")
	}
	next := FooterKeyStyle().Render("next ▶")
	if !page.HasNext() {
		next = DimmedStyle().Render("next ▶")
	}

	showing := fmt.Sprintf("Showing %d-%d of %d", page.DisplayStart(), page.DisplayEnd(), page.Total)
	return fmt.Sprintf("%s  %s  page %d/%d  %s", showing, prev, page.Number, page.TotalPages, next)
}

// renderFooter renders the two-row footer with page status and keybindings.
func (m Model) renderFooter() string {
	var b strings.Builder
	statusStyle := StatusStyle()

	// Row 1: transient status, or the page window
	status := m.renderPageStatus()
	if m.status != "" && m.now().Sub(m.statusAt) < statusTTL {
		status = m.status
	}
	b.WriteString(statusStyle.Width(m.width).Render(ansi.Truncate(status, m.width, "…")))
	b.WriteString("\n")

	// Row 2: Keybindings, cut to one line on narrow terminals
	keys := ansi.Truncate(m.renderKeybindingsText(), m.width, "…")
	b.WriteString(FooterStyle().Width(m.width).Render(keys))

	return b.String()
}

// renderKeybindingsText returns keybindings in modern minimal style.
func (m Model) renderKeybindingsText() string {
	keyStyle := FooterKeyStyle()
	descStyle := FooterDescStyle()

	btn := func(key, label string) string {
		return keyStyle.Render(key) + " " + descStyle.Render(label)
	}

	sep := descStyle.Render("  ·  ")

	var group string
	var parts []string
	switch {
	case m.detailsMode:
		group = "DETAILS"
		parts = []string{
			btn("*", "favorite"),
			btn("esc", "close"),
		}
	case m.inputFocused():
		group = "FILTER"
		parts = []string{
			btn("tab", "next"),
			btn("⇧tab", "prev"),
			btn("^x", "clear"),
			btn("↵", "done"),
		}
	default:
		group = "TABLE"
		parts = []string{
			btn("←→", "page"),
			btn("↵", "details"),
			btn("*", "fav"),
			btn("/", "filter"),
			btn("f", "favorites"),
			btn("s", "sort"),
			btn("e", "export"),
			btn("?", "help"),
			btn("q", "quit"),
		}
	}

	return FooterGroupStyle().Render(group) + "  " + strings.Join(parts, sep)
}

// renderTableData renders the rows of the current page.
func (m Model) renderTableData() string {
	columns := inspectColumns()
	widths := calculateColumnWidths(columns, m.contentWidth())

	var b strings.Builder
	for i, r := range m.result.Rows() {
		content := truncateString(m.formatRow(columns, widths, r), m.contentWidth()-2)
		b.WriteString(renderRow(content, i == m.cursor, r.Value.Direction))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// emptyMessage returns what the table shows when the page has no rows.
func (m Model) emptyMessage() string {
	switch {
	case !m.loaded && m.snap.Totals.Connections == 0:
		return LoadingStyle().Render("Loading...")
	case m.snap.Totals.Connections == 0:
		return EmptyStyle().Render("Waiting for connections...")
	default:
		return EmptyStyle().Render("No results")
	}
}

// updateViewportContent renders the current page and sets viewport content.
// MUST be called from Update() (not View()) so viewport knows content height for scrolling.
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}

	content := m.emptyMessage()
	if len(m.result.Rows()) > 0 {
		content = m.renderTableData()
	}
	m.viewport.SetContent(content)
}

// syncViewportScroll adjusts the viewport scroll position to keep the cursor visible.
// MUST be called from Update() (not View()) to persist the scroll position.
func (m *Model) syncViewportScroll() {
	if !m.ready {
		return
	}

	lineNumber := m.cursorLinePosition()

	if lineNumber < m.viewport.YOffset {
		m.viewport.SetYOffset(lineNumber)
		return
	}

	visibleEnd := m.viewport.YOffset + m.viewport.Height
	if lineNumber >= visibleEnd {
		m.viewport.SetYOffset(lineNumber - m.viewport.Height + 1)
	}
}

// cursorLinePosition returns the viewport line of the selected row.
func (m Model) cursorLinePosition() int {
	return m.cursor
}

// overlayModal renders a modal on top of background content with dimmed backdrop.
func (m Model) overlayModal(background, content, title string, modalWidth int) string {
	if m.width < modalWidth+4 {
		modalWidth = m.width - 4
	}

	contentLines := strings.Split(content, "\n")
	modalHeight := len(contentLines) + 4

	framedModal := RenderFrameWithTitle(content, title, modalWidth, modalHeight)
	modalLines := strings.Split(framedModal, "\n")

	leftPad := max((m.width-modalWidth-4)/2, 0)
	topPad := max((m.height-modalHeight)/2, 0)

	bgLines := strings.Split(background, "\n")
	for len(bgLines) < m.height {
		bgLines = append(bgLines, "")
	}

	dimStyle := DimmedStyle()
	for i := range bgLines {
		bgLines[i] = dimStyle.Render(ansi.Strip(bgLines[i]))
	}

	for i, modalLine := range modalLines {
		bgIdx := topPad + i
		if bgIdx >= 0 && bgIdx < len(bgLines) {
			leftBg := ""
			if leftPad > 0 {
				leftBg = dimStyle.Render(strings.Repeat(" ", leftPad))
			}
			bgLines[bgIdx] = leftBg + modalLine
		}
	}

	return strings.Join(bgLines[:max(m.height, 1)], "\n")
}

// renderDetailsModalContent describes the selected connection.
func (m Model) renderDetailsModalContent() string {
	rec, ok := m.selected()
	if !ok {
		return ""
	}
	// The page may predate the last favorite toggle or late enrichment.
	if live, ok := m.store.Get(rec.Key); ok {
		rec = live
	}
	descStyle := FooterDescStyle()
	valueStyle := ConnStyle()

	row := func(label, value string) string {
		return descStyle.Render(fmt.Sprintf("  %-11s", label)) + valueStyle.Render(value)
	}

	process := "-"
	if rec.Value.ProcessName != "" {
		process = fmt.Sprintf("%s (%d)", rec.Value.ProcessName, rec.Value.PID)
	} else if rec.Value.PID > 0 {
		process = fmt.Sprintf("pid %d", rec.Value.PID)
	}

	favorite := "no"
	if rec.Value.Favorite {
		favorite = FavoriteStyle().Render("★ yes")
	}

	now := m.snap.TakenAt
	if now.IsZero() {
		now = time.Now()
	}

	lines := []string{
		"",
		row("Source", rec.Key.Source()),
		row("Destination", rec.Key.Destination()),
		row("Protocol", string(rec.Key.Protocol)),
		row("Direction", rec.Value.Direction.String()),
		row("App", orDash(rec.Value.AppProtocol)),
		row("Domain", orDash(rec.Value.Domain)),
		row("Country", orDash(rec.Value.Country)),
		row("AS", orDash(rec.Value.ASName)),
		row("Process", process),
		"",
		row("Bytes", formatBytes(rec.Value.Bytes)),
		row("Packets", formatCount(rec.Value.Packets)),
		row("First seen", formatTimestamp(rec.Value.FirstSeen, now)),
		row("Last seen", formatTimestamp(rec.Value.LastSeen, now)),
		row("Favorite", favorite),
		"",
		"  " + FooterKeyStyle().Render("*") + descStyle.Render(" Toggle favorite  ") +
			FooterKeyStyle().Render("Esc") + descStyle.Render(" Close"),
	}
	return strings.Join(lines, "\n")
}

// renderHelpModalContent returns the help modal content.
func (m Model) renderHelpModalContent() string {
	keyStyle := FooterKeyStyle()
	descStyle := FooterDescStyle()

	lines := []string{HeaderStyle().Render("Keyboard Shortcuts"), ""}
	for _, k := range helpBindings {
		lines = append(lines, keyStyle.Render(fmt.Sprintf("%-10s", k.Key))+descStyle.Render(k.Desc))
	}
	return strings.Join(lines, "\n")
}
