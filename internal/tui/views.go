package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/rmarin/tablero/internal/domain"
	"github.com/rmarin/tablero/internal/tui/styles"
)

// entrySource adapts a checklist entry slice for fuzzy matching
type entrySource []domain.ChecklistEntry

func (s entrySource) String(i int) string { return strings.ToLower(s[i].Name) }
func (s entrySource) Len() int            { return len(s) }

// visibleEntries returns the checklist entries after applying the panel filter
func (m Model) visibleEntries() []domain.ChecklistEntry {
	query := strings.TrimSpace(m.listFilter.Value())
	if query == "" {
		return m.entries
	}
	matches := fuzzy.FindFrom(strings.ToLower(query), entrySource(m.entries))
	filtered := make([]domain.ChecklistEntry, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, m.entries[match.Index])
	}
	return filtered
}

// View renders the current application state
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.state {
	case StatePickingStore:
		return m.viewStorePicker()
	case StateHelp:
		return m.viewHelp()
	case StateConfirmReviewAll:
		return m.viewDashboard("Mark ALL discrepancy rows as reviewed? (y/n)")
	case StateConfirmLogout:
		if m.returnState == StatePickingStore {
			return m.viewStorePicker()
		}
		return m.viewDashboard("Log out and clear cached folders? (y/n)")
	default:
		return m.viewDashboard("")
	}
}

func (m Model) viewStorePicker() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Tablero — Stores"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " resolving stores…\n")
		return b.String()
	}

	if m.filterActive || m.storeFilter.Value() != "" {
		b.WriteString(m.storeFilter.View() + "\n\n")
	}

	if len(m.filtered) == 0 {
		b.WriteString(styles.DimStyle.Render("no stores found") + "\n")
	}
	for i, s := range m.filtered {
		line := s.Name
		if i == m.storeCursor && !m.filterActive {
			line = styles.HighlightStyle.Render(line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	if m.state == StateConfirmLogout {
		b.WriteString("\n" + styles.AccentStyle.Render("Log out and clear cached folders? (y/n)") + "\n")
	}

	b.WriteString("\n" + m.statusBar("enter select · / filter · r refresh · ? help · ctrl+c quit"))
	return b.String()
}

func (m Model) viewDashboard(prompt string) string {
	storeName, date := m.dashboard.Selection()

	header := styles.TitleStyle.Render("Tablero") + "  " +
		styles.AccentStyle.Render(storeName) + "  " +
		styles.SubtitleStyle.Render(date.Format("Mon 2006-01-02"))
	if m.stale {
		header += "  " + styles.StaleStyle.Render("STALE")
	}
	if m.loading {
		header += "  " + m.spinner.View()
	}

	paneWidth := m.width/2 - 2
	if paneWidth < 20 {
		paneWidth = 20
	}
	paneHeight := m.height - 6
	if paneHeight < 5 {
		paneHeight = 5
	}

	left := m.renderChecklistPane(paneWidth, paneHeight)
	right := m.renderLedgerPane(paneWidth, paneHeight)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	footer := m.statusBar("tab pane · [ ] day · t today · x review · X all · s store · r refresh · ? help")
	if prompt != "" {
		footer = styles.AccentStyle.Render(prompt)
	}

	return header + "\n" + body + "\n" + footer
}

func (m Model) renderChecklistPane(width, height int) string {
	border := styles.InactiveBorder
	if m.focus == PaneChecklists {
		border = styles.ActiveBorder
	}

	var b strings.Builder
	title := "Checklists"
	if m.bundle != nil {
		overall := m.bundle.Overall()
		title = fmt.Sprintf("Checklists  %d/%d (%d%%)", overall.Completed, overall.Total, overall.Percentage)
	}
	b.WriteString(styles.TitleStyle.Render(title) + "\n")

	if m.listFilterActive || m.listFilter.Value() != "" {
		b.WriteString(m.listFilter.View() + "\n")
	}

	entries := m.visibleEntries()
	if len(entries) == 0 {
		b.WriteString(styles.DimStyle.Render("no checklists for this date") + "\n")
	}

	for i, entry := range entries {
		if i >= height-3 {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("… %d more", len(entries)-i)) + "\n")
			break
		}
		b.WriteString(m.renderEntryLine(entry, i == m.listCursor && m.focus == PaneChecklists) + "\n")
	}

	// Expanded item view for the selected checklist
	if m.listCursor < len(entries) {
		b.WriteString("\n" + m.renderItems(entries[m.listCursor], height))
	}

	return border.Width(width).Height(height).Render(b.String())
}

func (m Model) renderEntryLine(entry domain.ChecklistEntry, selected bool) string {
	class := domain.ClassifyChecklist(entry.Name)
	badge := ""
	if m.showAdminBadge && entry.Provenance == domain.ProvenanceAdmin {
		badge = " " + styles.AdminBadge.Render("[admin]")
	}
	stats := fmt.Sprintf(" %d/%d", entry.Stats.Completed, entry.Stats.Total)

	line := entry.Name + stats + badge
	if class == domain.ClassOther {
		line = entry.Name + stats
	}
	if selected {
		return styles.HighlightStyle.Render(line)
	}
	return "  " + line
}

func (m Model) renderItems(entry domain.ChecklistEntry, height int) string {
	var b strings.Builder
	limit := height / 2
	for i, item := range entry.Items {
		if i >= limit {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("… %d more items", len(entry.Items)-i)) + "\n")
			break
		}
		mark := styles.DimStyle.Render(styles.CheckPending)
		if item.Completed {
			mark = styles.SuccessStyle.Render(styles.CheckDone)
		}
		line := mark + " " + item.Text
		if item.By != "" {
			line += styles.DimStyle.Render(" — " + item.By)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderLedgerPane(width, height int) string {
	border := styles.InactiveBorder
	if m.focus == PaneLedger {
		border = styles.ActiveBorder
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Discrepancies (%d)", len(m.rows))) + "\n")

	if len(m.rows) == 0 {
		b.WriteString(styles.DimStyle.Render("no pending discrepancies") + "\n")
	}

	for i, row := range m.rows {
		if i >= height-2 {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("… %d more", len(m.rows)-i)) + "\n")
			break
		}
		key := row.Key
		extra := strings.Join(trailingFields(row), " · ")
		if i == m.rowCursor && m.focus == PaneLedger {
			key = styles.HighlightStyle.Render(key)
		} else {
			key = "  " + key
		}
		if extra != "" {
			key += styles.DimStyle.Render("  " + extra)
		}
		b.WriteString(key + "\n")
	}

	return border.Width(width).Height(height).Render(b.String())
}

// trailingFields returns the row's non-key fields for compact display
func trailingFields(row domain.DiscrepancyRow) []string {
	var out []string
	for _, f := range row.Fields {
		if strings.TrimSpace(f) != row.Key {
			out = append(out, strings.TrimSpace(f))
		}
	}
	return out
}

func (m Model) viewHelp() string {
	rows := [][2]string{
		{"enter", "select store / confirm"},
		{"tab", "switch pane"},
		{"j/k, ↓/↑", "move cursor"},
		{"[ / ]", "previous / next day"},
		{"t", "jump to today"},
		{"/", "filter"},
		{"r", "refresh"},
		{"x", "mark ledger row reviewed"},
		{"X", "mark all ledger rows reviewed"},
		{"s", "change store"},
		{"ctrl+l", "logout"},
		{"ctrl+c", "quit"},
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Help") + "\n\n")
	for _, r := range rows {
		b.WriteString(styles.AccentStyle.Render(fmt.Sprintf("%-10s", r[0])) + " " + r[1] + "\n")
	}
	b.WriteString("\n" + styles.DimStyle.Render("esc to close"))
	return b.String()
}

func (m Model) statusBar(hint string) string {
	if m.status != "" {
		if m.lastErr != nil {
			return styles.ErrorStyle.Render(m.status)
		}
		return styles.SuccessStyle.Render(m.status)
	}
	return styles.DimStyle.Render(hint)
}

func itoa(n int) string { return strconv.Itoa(n) }
