package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sprite-ai/agvis/internal/report"
)

func (m Model) renderRegionList(width, height int) string {
	var b strings.Builder

	if len(m.rep.ChangeRegions) == 0 {
		b.WriteString(regionItemStyle.Render("No changes"))
	}

	for i, r := range m.rep.ChangeRegions {
		line := fmt.Sprintf("%-10s %5d px", r.ID, r.Pixels)

		style := regionItemStyle
		if i == m.regionIndex {
			style = regionItemSelectedStyle
		}

		b.WriteString(style.Width(width - 4).Render(line))
		if i < len(m.rep.ChangeRegions)-1 {
			b.WriteByte('\n')
		}
	}

	innerHeight := height - 2 // borders
	return regionListStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderDetail(width, height int) string {
	innerHeight := height - 2

	var b strings.Builder
	switch m.viewTab {
	case tabMap:
		b.WriteString(detailHeaderStyle.Render("Coverage map"))
		b.WriteByte('\n')
		m.renderCoverageMap(&b, width-4, innerHeight-3)
	case tabJSON:
		b.WriteString(detailHeaderStyle.Render("Report JSON"))
		b.WriteByte('\n')
		m.renderJSON(&b, innerHeight-3)
	default:
		m.renderRegionDetail(&b)
	}

	return detailViewStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderRegionDetail(b *strings.Builder) {
	b.WriteString(detailHeaderStyle.Render(filepath.Base(m.rep.Current)))
	b.WriteByte('\n')

	pctStyle := percentLowStyle
	if m.rep.PercentChanged >= 5 {
		pctStyle = percentHighStyle
	}

	row := func(label, value string) {
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	row("baseline", filepath.Base(m.rep.Baseline))
	row("size", fmt.Sprintf("%dx%d", m.rep.Size.Width, m.rep.Size.Height))
	b.WriteString(detailLabelStyle.Render("changed"))
	b.WriteString(pctStyle.Render(fmt.Sprintf("%.3f%%", m.rep.PercentChanged)))
	b.WriteString(detailValueStyle.Render(fmt.Sprintf("  (avg diff %.3f%%)", m.rep.AvgDiffPercent)))
	b.WriteByte('\n')
	if m.rep.Resized {
		row("resized", "current rescaled to baseline size")
	}
	b.WriteByte('\n')

	if len(m.rep.ChangeRegions) == 0 {
		b.WriteString(detailValueStyle.Render("No change regions."))
		return
	}

	r := m.rep.ChangeRegions[m.regionIndex]
	b.WriteString(detailHeaderStyle.Render(r.ID))
	b.WriteByte('\n')
	row("position", fmt.Sprintf("%d,%d", r.X, r.Y))
	row("box", fmt.Sprintf("%dx%d", r.W, r.H))
	row("pixels", fmt.Sprintf("%d changed / %d box", r.Pixels, r.Area))
	row("coverage", fmt.Sprintf("%.4f", r.Coverage))
	row("relative", fmt.Sprintf("x %.6f  y %.6f  w %.6f  h %.6f", r.Rel.X, r.Rel.Y, r.Rel.W, r.Rel.H))
	if r.Intent != "" {
		row("intent", r.Intent)
	}
}

// renderCoverageMap draws the image as a character grid, marking the cells
// each region covers. The selected region renders highlighted.
func (m Model) renderCoverageMap(b *strings.Builder, width, height int) {
	if m.rep.Size.Width <= 0 || m.rep.Size.Height <= 0 || width < 2 || height < 2 {
		b.WriteString(detailValueStyle.Render("Map unavailable."))
		return
	}

	cols, rows := width, height
	grid := make([]int, cols*rows) // 0 empty, i+1 = region i

	for i, r := range m.rep.ChangeRegions {
		x0 := r.X * cols / m.rep.Size.Width
		y0 := r.Y * rows / m.rep.Size.Height
		x1 := (r.X + r.W) * cols / m.rep.Size.Width
		y1 := (r.Y + r.H) * rows / m.rep.Size.Height
		for y := y0; y <= y1 && y < rows; y++ {
			for x := x0; x <= x1 && x < cols; x++ {
				grid[y*cols+x] = i + 1
			}
		}
	}

	const (
		cellEmpty = iota
		cellRegion
		cellSelected
	)
	styleFor := func(kind int) lipgloss.Style {
		switch kind {
		case cellRegion:
			return mapRegionStyle
		case cellSelected:
			return mapSelectedStyle
		default:
			return mapCellStyle
		}
	}

	for y := 0; y < rows; y++ {
		var run strings.Builder
		runKind := cellEmpty
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(styleFor(runKind).Render(run.String()))
				run.Reset()
			}
		}
		for x := 0; x < cols; x++ {
			cell := grid[y*cols+x]
			kind := cellEmpty
			ch := "·"
			if cell > 0 {
				ch = regionGlyph(cell - 1)
				kind = cellRegion
				if cell-1 == m.regionIndex {
					kind = cellSelected
				}
			}
			if kind != runKind {
				flush()
				runKind = kind
			}
			run.WriteString(ch)
		}
		flush()
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
}

// regionGlyph labels map cells 1-9 then a-z, wrapping past that.
func regionGlyph(i int) string {
	if i < 9 {
		return string(rune('1' + i))
	}
	return string(rune('a' + (i-9)%26))
}

func (m Model) renderJSON(b *strings.Builder, visibleLines int) {
	if visibleLines < 1 {
		visibleLines = 1
	}

	end := m.jsonScroll + visibleLines
	if end > len(m.jsonLines) {
		end = len(m.jsonLines)
	}

	for i := m.jsonScroll; i < end; i++ {
		b.WriteString(styleJSONLine(m.jsonLines[i]))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
}

// styleJSONLine renders one highlighted line with its token colors.
func styleJSONLine(line report.HighlightedLine) string {
	var b strings.Builder
	for _, t := range line.Tokens {
		if t.Color == "" {
			b.WriteString(t.Text)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render(t.Text))
	}
	return b.String()
}
