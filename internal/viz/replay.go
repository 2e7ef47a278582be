package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/popsim/internal/solution"
)

type replayTick time.Time

const replayFPS = 30

// Replay scrubs through a trace one step at a time. The focused series is
// charted up to the cursor and every key is listed at the cursor.
type Replay struct {
	title   string
	times   []float64
	trace   *solution.Trace
	keys    []string
	focus   int
	cursor  int
	playing bool
	theme   Theme
	styles  styles
	width   int
	height  int
}

func NewReplay(title string, times []float64, tr *solution.Trace, theme Theme) Replay {
	n := min(len(times), tr.Len())
	return Replay{
		title:  title,
		times:  times[:n],
		trace:  tr,
		keys:   tr.Keys(),
		cursor: max(n-1, 0),
		theme:  theme,
		styles: newStyles(theme),
		width:  80,
		height: 24,
	}
}

// Cursor returns the step shown.
func (r Replay) Cursor() int { return r.cursor }

// Focus returns the charted key.
func (r Replay) Focus() string {
	if len(r.keys) == 0 {
		return ""
	}
	return r.keys[r.focus]
}

func (r Replay) Playing() bool { return r.playing }

func (r Replay) Init() tea.Cmd { return nil }

func tick() tea.Cmd {
	return tea.Tick(time.Second/replayFPS, func(t time.Time) tea.Msg { return replayTick(t) })
}

func (r Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := len(r.times) - 1
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width, r.height = msg.Width, msg.Height
	case replayTick:
		if !r.playing {
			return r, nil
		}
		if r.cursor >= last {
			r.playing = false
			return r, nil
		}
		r.cursor++
		return r, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return r, tea.Quit
		case "left", "h":
			r.cursor = max(r.cursor-1, 0)
		case "right", "l":
			r.cursor = min(r.cursor+1, last)
		case "home", "g":
			r.cursor = 0
		case "end", "G":
			r.cursor = max(last, 0)
		case "tab":
			if len(r.keys) > 0 {
				r.focus = (r.focus + 1) % len(r.keys)
			}
		case "shift+tab":
			if len(r.keys) > 0 {
				r.focus = (r.focus + len(r.keys) - 1) % len(r.keys)
			}
		case "t":
			r.theme = r.theme.next()
			r.styles = newStyles(r.theme)
		case " ":
			if r.playing {
				r.playing = false
				return r, nil
			}
			if r.cursor >= last {
				r.cursor = 0
			}
			r.playing = true
			return r, tick()
		}
	}
	return r, nil
}

func (r Replay) View() string {
	var s strings.Builder
	s.WriteString(r.styles.title.Render(strings.ToUpper(r.title)) + "\n")

	if len(r.times) == 0 {
		s.WriteString(r.styles.warning.Render("empty trace") + "\n")
		return s.String()
	}

	status := "PAUSED"
	if r.playing {
		status = "PLAYING"
	}
	s.WriteString(fmt.Sprintf("%s  t=%.2f  step %d/%d\n", r.styles.selected.Render(status), r.times[r.cursor], r.cursor+1, len(r.times)))
	s.WriteString(ProgressBar(float64(r.cursor+1)/float64(len(r.times)), min(r.width-4, 60)) + "\n\n")

	if focus := r.Focus(); focus != "" {
		ys := r.trace.Floats(focus)[:r.cursor+1]
		if len(ys) > 1 && anyFinite(ys) {
			graph := asciigraph.Plot(ys,
				asciigraph.Height(max(r.height/3, 5)),
				asciigraph.Width(max(r.width-16, 20)),
				asciigraph.Caption(focus),
				asciigraph.SeriesColors(r.theme.SeriesColor(r.focus)),
			)
			s.WriteString(r.styles.panel.Render(graph) + "\n")
		}
	}

	row := r.trace.Row(r.cursor, r.keys)
	for i, k := range r.keys {
		label := r.styles.label.Render(k)
		if i == r.focus {
			label = r.styles.selected.Width(22).Render("▶ " + k)
		}
		value := row[i].String()
		if !row[i].Valid {
			value = "n/a"
		}
		s.WriteString(label + r.styles.value.Render(value) + "\n")
	}

	s.WriteString("\n" + r.styles.muted.Render("←/→ step · space play · tab series · t theme · q quit"))
	return s.String()
}
