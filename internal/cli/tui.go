package cli

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/render"
	"github.com/matzehuels/orgtower/pkg/scene"
)

// Terminal cell size in scene pixels. Cells are roughly twice as tall as
// they are wide.
const (
	cellW = 8.0
	cellH = 16.0
)

// panStep is the number of cells an arrow key pans.
const panStep = 4

// chrome is the number of terminal lines outside the plot: status, help
// and the detail table.
const chrome = 2 + detailLines

// Explorer styles
var (
	exploreTitleStyle    = StyleTitle
	exploreEdgeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	exploreSelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	exploreDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Key bindings
// =============================================================================

type exploreKeys struct {
	Graph   key.Binding
	Tree    key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Reset   key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Active  key.Binding
	Next    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newExploreKeys() exploreKeys {
	return exploreKeys{
		Graph:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "graph")),
		Tree:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tree")),
		ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Reset:   key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan")),
		Down:    key.NewBinding(key.WithKeys("down", "j")),
		Left:    key.NewBinding(key.WithKeys("left", "h")),
		Right:   key.NewBinding(key.WithKeys("right", "l")),
		Active:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "active only")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next node")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k exploreKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Graph, k.Tree, k.ZoomIn, k.ZoomOut, k.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k exploreKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Graph, k.Tree, k.Active},
		{k.ZoomIn, k.ZoomOut, k.Reset, k.Up},
		{k.Next, k.Help, k.Quit},
	}
}

// =============================================================================
// ExploreModel - Interactive scene viewer
// =============================================================================

// frameMsg carries a scene snapshot into the update loop.
type frameMsg graph.Layout

// ExploreModel is the bubbletea model of the explore command. It plots
// the nodes of a live scene onto the terminal grid.
type ExploreModel struct {
	scene  *scene.Scene
	frames <-chan graph.Layout
	keys   exploreKeys
	help   help.Model

	width  int
	height int
	layout graph.Layout
	hover  string
	detail *scene.Detail
}

// NewExploreModel creates an explorer over sc. frames delivers snapshots;
// it may be nil when the scene never changes on its own.
func NewExploreModel(sc *scene.Scene, frames <-chan graph.Layout) ExploreModel {
	return ExploreModel{
		scene:  sc,
		frames: frames,
		keys:   newExploreKeys(),
		help:   help.New(),
		layout: sc.Snapshot(),
	}
}

// waitFrame blocks until the next snapshot.
func waitFrame(frames <-chan graph.Layout) tea.Cmd {
	if frames == nil {
		return nil
	}
	return func() tea.Msg {
		l, ok := <-frames
		if !ok {
			return nil
		}
		return frameMsg(l)
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return waitFrame(m.frames)
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.layout = graph.Layout(msg)
		return m, waitFrame(m.frames)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		w, h := m.plotSize()
		m.scene.Resize(float64(w)*cellW, float64(h)*cellH)
		m.scene.ResetView()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Graph):
			m.scene.SetMode(scene.ModeGraph)
		case key.Matches(msg, m.keys.Tree):
			m.scene.SetMode(scene.ModeTree)
		case key.Matches(msg, m.keys.ZoomIn):
			m.scene.ZoomIn()
		case key.Matches(msg, m.keys.ZoomOut):
			m.scene.ZoomOut()
		case key.Matches(msg, m.keys.Reset):
			m.scene.ResetView()
		case key.Matches(msg, m.keys.Up):
			m.scene.Pan(0, panStep*cellH)
		case key.Matches(msg, m.keys.Down):
			m.scene.Pan(0, -panStep*cellH)
		case key.Matches(msg, m.keys.Left):
			m.scene.Pan(panStep*cellW, 0)
		case key.Matches(msg, m.keys.Right):
			m.scene.Pan(-panStep*cellW, 0)
		case key.Matches(msg, m.keys.Active):
			m.scene.SetActiveOnly(!m.scene.ActiveOnly())
			m.hover, m.detail = "", nil
		case key.Matches(msg, m.keys.Next):
			m.hoverNext()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		// Updates without a frame channel are pulled.
		if m.frames == nil {
			m.layout = m.scene.Snapshot()
		}
	}
	return m, nil
}

// hoverNext moves the hover to the next node in label order.
func (m *ExploreModel) hoverNext() {
	ids := make([]string, 0, len(m.layout.Nodes))
	labels := make(map[string]string, len(m.layout.Nodes))
	for _, n := range m.layout.Nodes {
		ids = append(ids, n.ID)
		labels[n.ID] = n.Label
	}
	if len(ids) == 0 {
		return
	}
	sort.Slice(ids, func(i, j int) bool {
		if labels[ids[i]] != labels[ids[j]] {
			return labels[ids[i]] < labels[ids[j]]
		}
		return ids[i] < ids[j]
	})
	next := ids[0]
	for i, id := range ids {
		if id == m.hover {
			next = ids[(i+1)%len(ids)]
			break
		}
	}
	m.hover = next
	if d, ok := m.scene.Hover(next); ok {
		m.detail = &d
	} else {
		m.detail = nil
	}
}

// plotSize returns the plot area in cells.
func (m ExploreModel) plotSize() (int, int) {
	return max(m.width, 1), max(m.height-chrome, 1)
}

func (m ExploreModel) View() string {
	if m.width == 0 {
		return "loading..."
	}
	var b strings.Builder

	status := fmt.Sprintf("%s · %d nodes · zoom %.2f", m.layout.Mode, len(m.layout.Nodes), m.layout.Transform.K)
	if m.scene.ActiveOnly() {
		status += " · active only"
	}
	b.WriteString(exploreTitleStyle.Render(appName) + " " + exploreDimStyle.Render(status))
	b.WriteString("\n")

	w, h := m.plotSize()
	b.WriteString(plot(m.layout, m.hover, w, h))
	b.WriteString("\n")

	if m.detail != nil {
		b.WriteString(renderDetail(*m.detail))
	} else {
		b.WriteString(strings.Repeat("\n", detailLines-1))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// =============================================================================
// Plotting
// =============================================================================

type cell struct {
	r     rune
	style *lipgloss.Style
}

// plot draws l onto a w×h character grid. Connectors are drawn first so
// node labels stay readable.
func plot(l graph.Layout, hover string, w, h int) string {
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	set := func(x, y int, r rune, st *lipgloss.Style) {
		if x >= 0 && x < w && y >= 0 && y < h {
			grid[y][x] = cell{r: r, style: st}
		}
	}
	toCell := func(x, y float64) (int, int) {
		p := l.Transform.Apply(r2.Vec{X: x, Y: y})
		return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
	}

	edge := exploreEdgeStyle
	for _, c := range l.Connectors {
		x1, y1 := toCell(c.X1, c.Y1)
		x2, y2 := toCell(c.X2, c.Y2)
		steps := max(abs(x2-x1), abs(y2-y1))
		for i := 0; i <= steps; i++ {
			t := 0.0
			if steps > 0 {
				t = float64(i) / float64(steps)
			}
			x := int(math.Round(float64(x1) + t*float64(x2-x1)))
			y := int(math.Round(float64(y1) + t*float64(y2-y1)))
			set(x, y, '·', &edge)
		}
	}

	for _, n := range l.Nodes {
		st := lipgloss.NewStyle().Foreground(lipgloss.Color(render.KindColorName(n.Kind)))
		if n.ID == hover {
			st = st.Inherit(exploreSelectedStyle)
		}
		x, y := toCell(n.X, n.Y)
		label := []rune(n.Label)
		if l.IsTree() {
			x -= len(label) / 2
		} else {
			set(x, y, '●', &st)
			x += 2
		}
		for i, r := range label {
			set(x+i, y, r, &st)
		}
	}

	lines := make([]string, h)
	for y, row := range grid {
		var line strings.Builder
		for x := 0; x < len(row); {
			st := row[x].style
			var run strings.Builder
			for ; x < len(row) && row[x].style == st; x++ {
				run.WriteRune(row[x].r)
			}
			if st == nil {
				line.WriteString(run.String())
			} else {
				line.WriteString(st.Render(run.String()))
			}
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// =============================================================================
// Detail panel
// =============================================================================

// detailLines is the height of the detail table: borders, header and one
// row.
const detailLines = 5

func renderDetail(d scene.Detail) string {
	chair := ""
	if d.Node.Chair != nil {
		chair = d.Node.Chair.Name
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Group", "Kind", "Status", "Chair", "Parents", "Children").
		Row(d.Node.DisplayLabel(), d.Node.Kind, d.Node.Status, chair,
			strings.Join(d.Parents, ", "), fmt.Sprintf("%d", len(d.Children))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(render.KindColorName(d.Node.Kind)))
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}
