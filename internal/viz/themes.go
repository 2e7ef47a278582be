package viz

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme colours the interactive views and the chart series.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Warning lipgloss.Color
	// Series are xterm-256 colours assigned to chart lines in key order.
	Series []asciigraph.AnsiColor
}

var (
	ThemeClinic = Theme{
		Name:    "clinic",
		Primary: lipgloss.Color("86"),
		Accent:  lipgloss.Color("213"),
		Text:    lipgloss.Color("255"),
		Muted:   lipgloss.Color("242"),
		Warning: lipgloss.Color("220"),
		Series:  []asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Red, asciigraph.Green, asciigraph.Yellow, asciigraph.Magenta, asciigraph.Blue},
	}

	ThemeLedger = Theme{
		Name:    "ledger",
		Primary: lipgloss.Color("82"),
		Accent:  lipgloss.Color("220"),
		Text:    lipgloss.Color("252"),
		Muted:   lipgloss.Color("238"),
		Warning: lipgloss.Color("196"),
		Series:  []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Yellow, asciigraph.Orange, asciigraph.Olive, asciigraph.Lime},
	}

	ThemePlain = Theme{
		Name:    "plain",
		Primary: lipgloss.Color("255"),
		Accent:  lipgloss.Color("255"),
		Text:    lipgloss.Color("255"),
		Muted:   lipgloss.Color("244"),
		Warning: lipgloss.Color("255"),
		Series:  []asciigraph.AnsiColor{asciigraph.Default},
	}

	Themes = []Theme{ThemeClinic, ThemeLedger, ThemePlain}
)

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// next cycles through Themes.
func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// SeriesColor returns the chart colour of the i-th series.
func (t Theme) SeriesColor(i int) asciigraph.AnsiColor {
	if len(t.Series) == 0 {
		return asciigraph.Default
	}
	return t.Series[i%len(t.Series)]
}

// seriesStyle renders a legend label in the same colour as its line.
func (t Theme) seriesStyle(i int) lipgloss.Style {
	c := t.SeriesColor(i)
	if c == asciigraph.Default {
		return lipgloss.NewStyle().Foreground(t.Text)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(int(c))))
}
