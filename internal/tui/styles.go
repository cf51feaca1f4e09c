package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorPurple    = lipgloss.Color("#bd93f9")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Region list styles
	regionListStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	regionItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	regionItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight).
				Bold(true)

	// Detail pane styles
	detailViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	detailHeaderStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true).
				Padding(0, 0, 1, 0)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Width(12)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorFg)

	// Coverage map styles
	mapCellStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	mapRegionStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	mapSelectedStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	// Summary line styles
	percentHighStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	percentLowStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Help bar
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
