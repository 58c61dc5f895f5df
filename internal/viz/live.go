package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pongsim/internal/config"
	"github.com/san-kum/pongsim/internal/control"
	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/metrics"
	"github.com/san-kum/pongsim/internal/physics"
	"github.com/san-kum/pongsim/internal/sim"
)

const (
	defaultCols     = 60
	defaultRows     = 24
	minCols         = 20
	minRows         = 8
	historyCapacity = 300
	frameInterval   = time.Second / 60
)

type TickMsg time.Time

// Model is the live terminal host: a Loop driven by bubbletea ticks, with the
// mouse steering one body and trackers steering the rest.
type Model struct {
	cfg      *config.Config
	clock    sim.Clock
	sim      *sim.Simulation
	loop     *sim.Loop
	trackers []*control.Tracker
	pointer  *control.Pointer
	canvas   *Canvas
	view     Viewport
	theme    Theme
	frame    sim.Frame
	energy   []float64
	speed    []float64

	paramKeys     []string
	initialParams map[string]float64
	selected      int

	showHelp bool
	message  string
}

// NewModel builds the bodies for cfg and starts the loop. A nil clock means
// the wall clock.
func NewModel(cfg *config.Config, clock sim.Clock) (Model, error) {
	if clock == nil {
		clock = sim.SystemClock{}
	}
	m := Model{
		cfg:    cfg,
		clock:  clock,
		theme:  ThemeArcade,
		canvas: NewCanvas(defaultCols, defaultRows),
	}
	if err := m.build(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) build() error {
	bodies, err := config.BuildBodies(m.cfg)
	if err != nil {
		return err
	}
	m.sim = sim.New(bodies...)
	m.loop = sim.NewLoop(m.sim, m.clock, sim.LoopConfig{ResumeOffset: m.cfg.ResumeOffset, MaxFrameDt: m.cfg.MaxFrameDt})

	m.trackers = nil
	tracked := make(map[string]bool)
	for _, tc := range m.cfg.Trackers {
		m.trackers = append(m.trackers, control.NewTracker(m.sim.Find(tc.Body), m.sim.Find(tc.Target), tc.Lead))
		tracked[tc.Body] = true
	}
	m.pointer = control.NewPointer(humanBody(m.cfg, tracked))

	m.view = NewViewport(m.cfg.ArenaRect(), m.canvas)
	m.energy = make([]float64, 0, historyCapacity)
	m.speed = make([]float64, 0, historyCapacity)
	m.frame = sim.Frame{Snapshot: m.sim.Snapshot()}
	m.initParams()
	m.loop.Start()
	return nil
}

// humanBody picks the body the mouse drives: the first untracked player, else
// the first untracked body.
func humanBody(cfg *config.Config, tracked map[string]bool) int {
	for i, b := range cfg.Bodies {
		if b.Kind == "player" && !tracked[b.Name] {
			return i
		}
	}
	for i, b := range cfg.Bodies {
		if !tracked[b.Name] {
			return i
		}
	}
	return 0
}

func (m *Model) initParams() {
	m.initialParams = make(map[string]float64)
	_ = m.sim.Update(m.pointer.Body, func(b *physics.Body) {
		for k, v := range b.GetParams() {
			m.initialParams[k] = v
		}
	})
	m.paramKeys = make([]string, 0, len(m.initialParams))
	for k := range m.initialParams {
		m.paramKeys = append(m.paramKeys, k)
	}
	sort.Strings(m.paramKeys)
	m.selected = 0
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.step()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "space":
		if m.loop.Toggle() {
			m.message = "resumed"
		} else {
			m.message = "paused"
		}
	case "r":
		if err := m.build(); err != nil {
			m.message = err.Error()
		} else {
			m.message = "reset"
		}
	case "tab":
		if len(m.paramKeys) > 0 {
			m.selected = (m.selected + 1) % len(m.paramKeys)
		}
	case "up", "k":
		m.adjustParam(1.05)
	case "down", "j":
		m.adjustParam(0.95)
	case "t":
		m.theme = NextTheme(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	var setErr error
	err := m.sim.Update(m.pointer.Body, func(b *physics.Body) {
		setErr = b.SetParam(key, b.GetParams()[key]*factor)
	})
	if err == nil {
		err = setErr
	}
	if err != nil {
		m.message = err.Error()
	}
}

// handleMouse maps terminal cells onto the arena. Any press also resumes a
// paused loop.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := m.view.ToArena(msg.X-canvasPadLeft, msg.Y-canvasPadTop)
	now := m.clock.Now()

	var err error
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.loop.Resume()
		err = m.pointer.Press(m.sim, x, y, now)
	case tea.MouseActionMotion:
		if m.pointer.Down() {
			err = m.pointer.Drag(m.sim, x, y, now)
		}
	case tea.MouseActionRelease:
		var flung bool
		flung, err = m.pointer.Release(m.sim, x, y, now)
		if flung {
			vx, vy := m.pointer.Velocity()
			m.message = fmt.Sprintf("fling %.0f px/s", math.Hypot(vx, vy))
		}
	}
	if err != nil {
		m.message = err.Error()
	}
}

func (m *Model) resize(w, h int) {
	cols := max(minCols, w-statsWidth-2*canvasPadLeft-2)
	rows := max(minRows, h-2*canvasPadTop-1)
	m.canvas = NewCanvas(cols, rows)
	m.view = NewViewport(m.cfg.ArenaRect(), m.canvas)
}

func (m *Model) step() {
	for _, tr := range m.trackers {
		if err := tr.Apply(m.sim); err != nil {
			m.message = err.Error()
		}
	}

	frame, err := m.loop.Tick()
	if err != nil {
		m.message = err.Error()
		return
	}
	m.frame = frame
	if frame.Stepped {
		m.energy = pushHistory(m.energy, metrics.TotalKineticEnergy(frame.Snapshot))
		if b := m.pointer.Body; b < len(frame.Bodies) {
			m.speed = pushHistory(m.speed, math.Hypot(frame.Bodies[b].DX, frame.Bodies[b].DY))
		}
	}
	for _, fault := range m.sim.DrainErrors() {
		m.message = fault.Error()
	}
}

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(headerStyle(m.theme).Render(strings.ToUpper(m.cfg.Name)) + "\n")
	if m.loop.Running() {
		s.WriteString(statusStyle(m.theme.Running).Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(statusStyle(m.theme.Paused).Render("PAUSED") + "\n\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(row("Time", fmt.Sprintf("%.2fs", m.frame.Time)))
	s.WriteString(row("Ticks", fmt.Sprintf("%d", m.frame.Tick)))
	s.WriteString(row("Frame dt", fmt.Sprintf("%.1fms", m.frame.Dt*1000)))

	s.WriteString("\nBODIES\n")
	for i, b := range m.frame.Bodies {
		marker := "  "
		if i == m.pointer.Body {
			marker = "> "
		}
		line := fmt.Sprintf("%s%-8s %-9s %6.0f px/s", marker, b.Name, b.Mode, math.Hypot(b.DX, b.DY))
		s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Render(line) + "\n")
	}
	if len(m.speed) > 1 {
		s.WriteString("  " + SparklineChart(m.speed, 30) + "\n")
	}

	d := m.frame.Diagnostics
	s.WriteString("\n")
	s.WriteString(row("Contacts", fmt.Sprintf("%d", d.Contacts)))
	s.WriteString(row("Wall hits", fmt.Sprintf("%d", d.WallHits)))
	s.WriteString(row("Rejected", fmt.Sprintf("%d", d.RejectedGoals)))
	if faults := d.InvalidModes + d.InvalidStates + d.DegenerateContacts; faults > 0 {
		s.WriteString(labelStyle.Render("Faults") + statusStyle(m.theme.Error).Render(fmt.Sprintf("%d", faults)) + "\n")
	}

	if len(m.paramKeys) > 0 {
		s.WriteString("\nPARAMETERS\n")
		current := map[string]float64{}
		_ = m.sim.Update(m.pointer.Body, func(b *physics.Body) { current = b.GetParams() })
		for i, k := range m.paramKeys {
			line := fmt.Sprintf("%-10s %s %.2f", k, ParamBar(current[k], m.initialParams[k], 10), current[k])
			if i == m.selected {
				s.WriteString(statusStyle(m.theme.Accent).Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	}

	if m.message != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Muted).Render(m.message) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit T:Theme ?:Help\nTab/↑↓:Tune  Mouse:drag, flick to fling"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset bodies             ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  T        - Cycle themes             ║
║  Mouse    - Drag to steer, flick     ║
║             to fling                 ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) draw() {
	m.canvas.Clear()
	arena := m.cfg.ArenaRect()

	x0, y0 := m.view.ToPixel(arena.Left, arena.Top)
	x1, y1 := m.view.ToPixel(arena.Right, arena.Bottom)
	m.canvas.DrawRect(x0, y0, x1, y1, string(m.theme.Wall))

	if hasHalves(m.cfg) {
		_, ym := m.view.ToPixel(arena.Left, arena.CenterY())
		m.canvas.DrawDashed(x0, x1, ym, string(m.theme.Net))
	}

	for i, b := range m.frame.Bodies {
		cx, cy := m.view.ToPixel(b.X, b.Y)
		m.canvas.FillCircle(cx, cy, m.view.Length(b.Radius), b.Color)
		if i == m.pointer.Body && b.Mode == dynamo.Forced {
			var goal dynamo.KinematicState
			_ = m.sim.Update(i, func(body *physics.Body) { goal = body.Goal() })
			gx, gy := m.view.ToPixel(goal.X, goal.Y)
			m.canvas.DrawLine(gx-1, gy, gx+1, gy, string(m.theme.Accent))
			m.canvas.DrawLine(gx, gy-1, gx, gy+1, string(m.theme.Accent))
		}
	}
}

func hasHalves(cfg *config.Config) bool {
	for _, b := range cfg.Bodies {
		if b.Region == config.RegionLower || b.Region == config.RegionUpper {
			return true
		}
	}
	return false
}
