package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/registry"
	"github.com/san-kum/orbsim/internal/sim"
)

const (
	width           = 64
	height          = 24
	historyCapacity = 300
	trailCapacity   = 160
	frameRate       = 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is a read-only view of a running simulation. It polls registry
// snapshots on every tick and writes only the time-scale.
type Model struct {
	sim    *sim.Simulation
	frame  *registry.Frame
	canvas *Canvas
	camera *Camera

	// ref is the index of the body the view is centred on; -1 is the origin.
	ref    int
	extent float64
	trails [][]dynamo.Vec3

	energy        []float64
	initialEnergy float64

	theme    int
	styles   styles
	showHelp bool
}

func NewModel(s *sim.Simulation) Model {
	m := Model{
		sim:    s,
		frame:  &registry.Frame{},
		canvas: NewCanvas(width, height),
		camera: NewCamera(),
		ref:    -1,
		energy: make([]float64, 0, historyCapacity),
		styles: newStyles(Themes[0]),
	}
	s.Registry.Snapshot(m.frame)
	m.trails = make([][]dynamo.Vec3, len(m.frame.Bodies))
	m.initialEnergy = s.Energy(m.frame)
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		m.poll()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ts := m.sim.TimeScale
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		ts.Toggle()
	case "+", "=":
		ts.Adjust(sim.ScaleStepFine)
	case "-", "_":
		ts.Adjust(-sim.ScaleStepFine)
	case "]":
		ts.Adjust(sim.ScaleStepCoarse)
	case "[":
		ts.Adjust(-sim.ScaleStepCoarse)
	case "}":
		ts.Adjust(sim.ScaleStepHuge)
	case "{":
		ts.Adjust(-sim.ScaleStepHuge)
	case "0":
		ts.Set(1)
	case "tab":
		m.cycleRef(1)
	case "shift+tab":
		m.cycleRef(-1)
	case "up", "k":
		m.camera.TiltBy(math.Pi / 24)
	case "down", "j":
		m.camera.TiltBy(-math.Pi / 24)
	case "z":
		m.camera.ZoomIn()
	case "Z":
		m.camera.ZoomOut()
	case "c":
		m.clearTrails()
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
		m.styles = newStyles(Themes[m.theme])
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// cycleRef steps the reference body through origin, 0, 1, ... n-1.
func (m *Model) cycleRef(dir int) {
	n := len(m.frame.Bodies) + 1
	m.ref = ((m.ref+1+dir)%n+n)%n - 1
	m.extent = 0
	m.clearTrails()
}

func (m *Model) clearTrails() {
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
}

// poll takes a fresh snapshot, refits the view and, if the simulation has
// advanced, records trails and energy.
func (m *Model) poll() {
	steps := m.frame.Steps
	m.sim.Registry.Snapshot(m.frame)

	rel := m.frame.Relative(m.ref)
	m.fit(rel)
	if m.frame.Steps == steps && len(m.energy) > 0 {
		return
	}

	for i, p := range rel {
		t := append(m.trails[i], p)
		if len(t) > trailCapacity {
			t = t[1:]
		}
		m.trails[i] = t
	}

	m.energy = append(m.energy, m.sim.Energy(m.frame))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// fit grows the view extent to keep every body on screen and lets it shrink
// slowly when they draw in.
func (m *Model) fit(rel []dynamo.Vec3) {
	var far float64
	for _, p := range rel {
		x, y := m.camera.Flatten(p)
		far = math.Max(far, math.Max(math.Abs(x), math.Abs(y)))
	}
	far *= 1.1
	switch {
	case far > m.extent:
		m.extent = far
	default:
		m.extent = math.Max(far, m.extent*0.995)
	}
	if m.extent == 0 {
		m.extent = 1
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	sw, sh := m.canvas.PixelSize()

	rel := m.frame.Relative(m.ref)

	for _, trail := range m.trails {
		for _, p := range trail {
			if x, y, ok := m.camera.Project(p, m.extent, sw, sh); ok {
				m.canvas.Set(x, y)
			}
		}
	}

	for i, p := range rel {
		x, y, ok := m.camera.Project(p, m.extent, sw, sh)
		if !ok {
			continue
		}
		m.canvas.Disc(x, y, m.discRadius(i, sw))
	}
	for i, p := range rel {
		if x, y, ok := m.camera.Project(p, m.extent, sw, sh); ok {
			m.canvas.Glyph(x, y, bodyGlyph(i))
		}
	}
}

// discRadius converts a body's physical radius to sub-pixels, capped so a
// star doesn't swallow the screen.
func (m *Model) discRadius(i, sw int) int {
	r := m.frame.Bodies[i].Radius
	if r <= 0 || m.extent <= 0 {
		return 0
	}
	px := r * m.camera.Zoom * float64(sw) / 2 / m.extent
	return int(math.Min(6, px))
}

func bodyGlyph(i int) rune {
	const glyphs = "●◆▲■★◉"
	rs := []rune(glyphs)
	return rs[i%len(rs)]
}

func (m Model) refName() string {
	if m.ref < 0 || m.ref >= len(m.frame.Bodies) {
		return "origin"
	}
	return m.frame.Bodies[m.ref].Name
}

func (m Model) View() string {
	m.draw()
	st := m.styles
	theme := Themes[m.theme]

	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.sim.Name)) + "\n")

	scale := m.sim.TimeScale.Load()
	if scale == 0 {
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	} else {
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Scale", fmt.Sprintf("x%.1f", scale))
	row("Sim time", fmt.Sprintf("%.2fs", m.frame.SimTime))
	row("Steps", fmt.Sprintf("%d", m.frame.Steps))
	row("Units", fmt.Sprintf("%s (G=%g)", m.sim.Units.Name, m.sim.Units.G))
	row("Centre", m.refName())

	if n := len(m.energy); n > 0 {
		e := m.energy[n-1]
		row("Energy", fmt.Sprintf("%.6g", e))
		if m.initialEnergy != 0 {
			row("Drift", fmt.Sprintf("%.2e", math.Abs(e-m.initialEnergy)/math.Abs(m.initialEnergy)))
		}
	}
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString("\nBODIES\n")
	rel := m.frame.Relative(m.ref)
	for i, b := range m.frame.Bodies {
		mark := lipgloss.NewStyle().Foreground(theme.BodyColor(i)).Render(string(bodyGlyph(i)))
		line := fmt.Sprintf("%-10s r=%-9.4g v=%.4g", truncate(b.Name, 10), rel[i].Len(), b.Velocity.Len())
		if i == m.ref {
			s.WriteString(mark + " " + st.active.Render(line) + "\n")
		} else {
			s.WriteString(mark + " " + st.value.Render(line) + "\n")
		}
	}

	s.WriteString(st.help.Render(Separator(40, theme.Muted) + "\nSP:Pause +/-:x0.5 [/]:x5 {/}:x50\nTAB:Centre J/K:Tilt Z:Zoom ?:Help Q:Quit"))

	statsView := st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Space        pause / resume
  + - (or =)   time-scale ±0.5
  [ ]          time-scale ±5
  { }          time-scale ±50
  0            real time
  Tab          centre on next body (shift+tab: previous)
  j k          tilt view
  z Z          zoom in / out
  c            clear trails
  t            cycle theme
  ?            toggle this help
  q            quit
`

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run shows the live view of s until the user quits. The caller owns starting
// and stopping the simulation.
func Run(s *sim.Simulation) error {
	_, err := tea.NewProgram(NewModel(s), tea.WithAltScreen()).Run()
	return err
}
