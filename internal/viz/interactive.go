package viz

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pongsim/internal/config"
	"github.com/san-kum/pongsim/internal/sim"
)

var (
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

var presetInfo = map[string]string{
	"pong":       "two paddles, one ball, tracker opponent",
	"scenario-a": "single ball bouncing off the floor",
	"pair":       "two overlapping balls pushed apart",
	"billiards":  "cue ball into a four-ball rack",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// editable settings on the config screen, in display order.
var settingNames = []string{"width", "height", "resume_ms", "max_frame_dt"}

// App is the preset picker that hands off to the live Model.
type App struct {
	state       int
	cursor      int
	presets     []string
	cfg         *config.Config
	paramCursor int
	editing     bool
	editBuf     string
	width       int
	height      int
	clock       sim.Clock
	live        Model
	err         error
}

func NewInteractiveApp(clock sim.Clock) *App {
	return &App{
		state:   stateMenu,
		presets: config.ListPresets(),
		clock:   clock,
		width:   80,
		height:  24,
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if a.state == stateSim {
			return a.forward(msg)
		}
		return a, nil
	case tea.KeyMsg:
		switch a.state {
		case stateMenu:
			return a.menuKey(msg)
		case stateConfig:
			return a.configKey(msg)
		}
	}
	if a.state == stateSim {
		return a.forward(msg)
	}
	return a, nil
}

func (a App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.live.Update(msg)
	a.live = next.(Model)
	return a, cmd
}

func (a App) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		cfg, err := config.GetPreset(a.presets[a.cursor])
		if err != nil {
			a.err = err
			return a, nil
		}
		a.cfg, a.state, a.paramCursor, a.err = cfg, stateConfig, 0, nil
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(a.editBuf, 64); err == nil {
				a.setSetting(settingNames[a.paramCursor], v)
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				a.editBuf += s
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(settingNames)-1 {
			a.paramCursor++
		}
	case "enter", " ":
		a.editing = true
		a.editBuf = strconv.FormatFloat(a.setting(settingNames[a.paramCursor]), 'f', -1, 64)
	case "s":
		return a.start()
	}
	return a, nil
}

func (a App) setting(name string) float64 {
	switch name {
	case "width":
		return a.cfg.Arena.Width
	case "height":
		return a.cfg.Arena.Height
	case "resume_ms":
		return float64(a.cfg.ResumeOffset / time.Millisecond)
	case "max_frame_dt":
		return a.cfg.MaxFrameDt
	}
	return 0
}

func (a *App) setSetting(name string, v float64) {
	if v < 0 {
		return
	}
	switch name {
	case "width":
		a.cfg.Arena.Width = v
	case "height":
		a.cfg.Arena.Height = v
	case "resume_ms":
		a.cfg.ResumeOffset = time.Duration(v * float64(time.Millisecond))
	case "max_frame_dt":
		a.cfg.MaxFrameDt = v
	}
}

func (a App) start() (tea.Model, tea.Cmd) {
	if err := a.cfg.Validate(); err != nil {
		a.err = err
		return a, nil
	}
	live, err := NewModel(a.cfg, a.clock)
	if err != nil {
		a.err = err
		return a, nil
	}
	live.resize(a.width, a.height)
	a.live, a.state, a.err = live, stateSim, nil
	return a, live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateSim:
		return a.live.View()
	case stateConfig:
		return a.configView()
	}
	return a.menuView()
}

func (a App) menuView() string {
	var s strings.Builder
	s.WriteString(cyan.Bold(true).Render("PONGSIM") + "\n\n")
	for i, name := range a.presets {
		line := fmt.Sprintf("%-12s %s", name, dim.Render(presetInfo[name]))
		if i == a.cursor {
			s.WriteString(green.Render("> ") + white.Render(line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if a.err != nil {
		s.WriteString("\n" + a.err.Error() + "\n")
	}
	s.WriteString(dim.Render("\n↑↓ select  enter open  q quit"))
	return s.String()
}

func (a App) configView() string {
	var s strings.Builder
	s.WriteString(cyan.Bold(true).Render(strings.ToUpper(a.cfg.Name)) + "\n\n")
	for i, name := range settingNames {
		val := strconv.FormatFloat(a.setting(name), 'f', -1, 64)
		if a.editing && i == a.paramCursor {
			val = a.editBuf + "_"
		}
		line := fmt.Sprintf("%-14s %s", name, val)
		if i == a.paramCursor {
			s.WriteString(green.Render("> ") + white.Render(line) + "\n")
		} else {
			s.WriteString("  " + dim.Render(line) + "\n")
		}
	}
	s.WriteString(fmt.Sprintf("\n%d bodies, %d trackers\n", len(a.cfg.Bodies), len(a.cfg.Trackers)))
	if a.err != nil {
		s.WriteString("\n" + a.err.Error() + "\n")
	}
	s.WriteString(dim.Render("\nenter edit  s start  esc back"))
	return s.String()
}
