package viz

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/popsim/internal/config"
	"github.com/san-kum/popsim/internal/dynamo"
	"github.com/san-kum/popsim/internal/experiment"
)

const (
	stateMenu = iota
	stateConfig
	stateReplay
)

// Browser lists the registered models, lets the user edit one model's
// parameters and replays the finished run.
type Browser struct {
	reg         *experiment.Registry
	state       int
	cursor      int
	models      []string
	selected    string
	specs       []dynamo.ParamSpec
	paramCursor int
	editing     bool
	editBuf     string
	err         error
	replay      Replay
	theme       Theme
	styles      styles
	width       int
	height      int
}

func NewBrowser(reg *experiment.Registry, theme Theme) Browser {
	return Browser{
		reg:    reg,
		models: reg.ListModels(),
		theme:  theme,
		styles: newStyles(theme),
		width:  80,
		height: 24,
	}
}

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		b.width, b.height = ws.Width, ws.Height
	}

	switch b.state {
	case stateReplay:
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			b.state = stateConfig
			return b, nil
		}
		next, cmd := b.replay.Update(msg)
		b.replay = next.(Replay)
		return b, cmd
	case stateConfig:
		if k, ok := msg.(tea.KeyMsg); ok {
			return b.configKey(k)
		}
	default:
		if k, ok := msg.(tea.KeyMsg); ok {
			return b.menuKey(k)
		}
	}
	return b, nil
}

func (b Browser) menuKey(msg tea.KeyMsg) (Browser, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return b, tea.Quit
	case "up", "k":
		b.cursor = max(b.cursor-1, 0)
	case "down", "j":
		b.cursor = min(b.cursor+1, len(b.models)-1)
	case "enter", " ":
		if len(b.models) == 0 {
			return b, nil
		}
		b.selected = b.models[b.cursor]
		b.specs = b.paramSpecs(b.selected)
		b.state, b.paramCursor, b.err = stateConfig, 0, nil
	}
	return b, nil
}

func (b Browser) configKey(msg tea.KeyMsg) (Browser, tea.Cmd) {
	if b.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(b.editBuf, 64); err == nil {
				b.specs[b.paramCursor].Value = v
			}
			b.editing, b.editBuf = false, ""
		case "esc":
			b.editing, b.editBuf = false, ""
		case "backspace":
			if len(b.editBuf) > 0 {
				b.editBuf = b.editBuf[:len(b.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				b.editBuf += s
			}
		}
		return b, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return b, tea.Quit
	case "q", "esc":
		b.state = stateMenu
	case "up", "k":
		b.paramCursor = max(b.paramCursor-1, 0)
	case "down", "j":
		b.paramCursor = min(b.paramCursor+1, len(b.specs)-1)
	case "enter", " ":
		if len(b.specs) > 0 {
			b.editing = true
			b.editBuf = strconv.FormatFloat(b.specs[b.paramCursor].Value, 'g', -1, 64)
		}
	case "left", "h":
		b.nudge(-1)
	case "right", "l":
		b.nudge(1)
	case "s":
		b.start()
	}
	return b, nil
}

// nudge moves the selected parameter by its slider interval, or by a tenth
// of its value when no interval is known.
func (b *Browser) nudge(dir float64) {
	if len(b.specs) == 0 {
		return
	}
	spec := &b.specs[b.paramCursor]
	step := spec.Interval
	if step == 0 {
		step = 0.1 * spec.Value
		if step == 0 {
			step = 0.1
		}
	}
	spec.Value += dir * step
}

// paramSpecs returns the model's annotated parameters, or every default in
// lexical order for models without annotations.
func (b Browser) paramSpecs(name string) []dynamo.ParamSpec {
	entry, err := b.reg.GetModel(name)
	if err != nil {
		return nil
	}
	defaults := entry.Defaults()
	if d, ok := entry.New().(dynamo.Describer); ok {
		if specs := d.ParamSpecs(); len(specs) > 0 {
			return specs
		}
	}
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	specs := make([]dynamo.ParamSpec, len(keys))
	for i, k := range keys {
		specs[i] = dynamo.ParamSpec{Key: k}.Fill(defaults)
	}
	return specs
}

// Config returns the run config built from the edited parameters.
func (b Browser) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Model = b.selected
	for _, s := range b.specs {
		cfg.SetParam(s.Key, s.Value)
	}
	return cfg
}

func (b *Browser) start() {
	e, err := experiment.New(b.reg, b.Config())
	if err != nil {
		b.err = err
		return
	}
	result, err := e.Run()
	if err != nil {
		b.err = err
		return
	}
	b.err = nil

	title := b.selected
	if d, ok := e.GetSimulator().Model().(dynamo.Describer); ok {
		title = d.Title()
	}
	if result.TerminatedEarly() {
		title += " (cut off)"
	}
	b.replay = NewReplay(title, result.Times, result.Trace, b.theme)
	b.replay.width, b.replay.height = b.width, b.height
	b.state = stateReplay
}

func (b Browser) View() string {
	switch b.state {
	case stateConfig:
		return b.viewConfig()
	case stateReplay:
		return b.replay.View()
	}
	return b.viewMenu()
}

func (b Browser) viewMenu() string {
	var s strings.Builder
	s.WriteString(b.styles.title.Render("POPSIM") + "\n" + b.styles.muted.Render("system dynamics models") + "\n\n")
	for i, name := range b.models {
		entry, _ := b.reg.GetModel(name)
		line := fmt.Sprintf("  %-16s %s", name, b.styles.muted.Render(entry.Description))
		if i == b.cursor {
			line = b.styles.selected.Render(fmt.Sprintf("▸ %-16s", name)) + " " + entry.Description
		}
		s.WriteString(line + "\n")
	}
	s.WriteString("\n" + b.styles.muted.Render("j/k navigate · enter select · q quit"))
	return s.String()
}

func (b Browser) viewConfig() string {
	var s strings.Builder
	s.WriteString(b.styles.title.Render(strings.ToUpper(b.selected)) + "\n\n")
	for i, spec := range b.specs {
		val := strconv.FormatFloat(spec.Value, 'g', 6, 64)
		if b.editing && i == b.paramCursor {
			val = b.editBuf + "_"
		}
		label := spec.Label
		if label == "" {
			label = spec.Key
		}
		if i == b.paramCursor {
			s.WriteString(b.styles.selected.Width(24).Render("▸ "+label) + b.styles.value.Render(val) + "\n")
		} else {
			s.WriteString(b.styles.label.Width(24).Render("  "+label) + val + "\n")
		}
	}
	if b.err != nil {
		s.WriteString("\n" + b.styles.warning.Render(b.err.Error()) + "\n")
	}
	s.WriteString("\n" + b.styles.muted.Render("j/k select · h/l adjust · enter edit · s run · esc back"))
	return s.String()
}

// RunBrowser takes over the terminal until the user quits.
func RunBrowser(reg *experiment.Registry, theme Theme) error {
	_, err := tea.NewProgram(NewBrowser(reg, theme), tea.WithAltScreen()).Run()
	return err
}

// RunReplay shows r full screen until the user quits.
func RunReplay(r Replay) error {
	_, err := tea.NewProgram(r, tea.WithAltScreen()).Run()
	return err
}
