// Package tui implements the Bubble Tea terminal user interface.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sprite-ai/agvis/internal/report"
)

// View tabs for the detail pane.
const (
	tabDetail = iota
	tabMap
	tabJSON
	tabCount
)

// Model is the top-level Bubble Tea model for agvis.
type Model struct {
	rep *report.DiffReport

	// UI state
	width  int
	height int

	// Region list
	regionIndex int // currently selected region

	// Detail pane
	viewTab    int
	jsonLines  []report.HighlightedLine
	jsonScroll int

	// Help
	showHelp bool
}

// New creates a new TUI model from a diff report.
func New(rep *report.DiffReport) Model {
	m := Model{rep: rep}
	m.jsonLines = highlightReport(rep)
	return m
}

func highlightReport(rep *report.DiffReport) []report.HighlightedLine {
	raw, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil
	}
	return report.HighlightJSON(string(raw))
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.viewTab == tabJSON {
				if m.jsonScroll < len(m.jsonLines)-1 {
					m.jsonScroll++
				}
			} else {
				m.nextRegion()
			}

		case key.Matches(msg, keys.Up):
			if m.viewTab == tabJSON {
				if m.jsonScroll > 0 {
					m.jsonScroll--
				}
			} else {
				m.prevRegion()
			}

		case key.Matches(msg, keys.NextRegion):
			m.nextRegion()

		case key.Matches(msg, keys.PrevRegion):
			m.prevRegion()

		case key.Matches(msg, keys.Tab):
			m.viewTab = (m.viewTab + 1) % tabCount

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

func (m *Model) nextRegion() {
	if m.regionIndex < len(m.rep.ChangeRegions)-1 {
		m.regionIndex++
	}
}

func (m *Model) prevRegion() {
	if m.regionIndex > 0 {
		m.regionIndex--
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Layout: region list on left, detail pane on right
	listWidth := m.regionListWidth()
	detailWidth := m.width - listWidth - 1 // -1 for gap

	regionList := m.renderRegionList(listWidth, m.height-2)
	detail := m.renderDetail(detailWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, regionList, " ", detail)

	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) regionListWidth() int {
	w := 30
	if w > m.width/3 {
		w = m.width / 3
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" %d regions  %.3f%% changed", m.rep.RegionCount, m.rep.PercentChanged)
	if len(m.rep.ChangeRegions) > 0 {
		left = fmt.Sprintf(" Region %d/%d  %.3f%% changed",
			m.regionIndex+1, m.rep.RegionCount, m.rep.PercentChanged)
	}

	right := fmt.Sprintf("%dx%d  %s  ? help ",
		m.rep.Size.Width, m.rep.Size.Height, tabName(m.viewTab))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func tabName(tab int) string {
	switch tab {
	case tabMap:
		return "map"
	case tabJSON:
		return "json"
	default:
		return "detail"
	}
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(detailHeaderStyle.Render("agvis — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"↑/k", "Previous region (scroll in json view)"},
		{"↓/j", "Next region (scroll in json view)"},
		{"n/Tab", "Next region"},
		{"N/S-Tab", "Previous region"},
		{"v", "Cycle detail/map/json view"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// Run starts the TUI application.
func Run(rep *report.DiffReport) error {
	m := New(rep)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
