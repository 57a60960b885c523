// Package ui is the terminal front end: a bubbletea program that draws the
// market-cap bubble chart and drives the camera from the mouse, the
// keyboard and the search box.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/vanderheijden86/bubblecap/pkg/interaction"
	"github.com/vanderheijden86/bubblecap/pkg/layout"
	"github.com/vanderheijden86/bubblecap/pkg/loader"
	"github.com/vanderheijden86/bubblecap/pkg/model"
	"github.com/vanderheijden86/bubblecap/pkg/render"
	"github.com/vanderheijden86/bubblecap/pkg/search"
	"github.com/vanderheijden86/bubblecap/pkg/stats"
	"github.com/vanderheijden86/bubblecap/pkg/viewport"
)

const (
	// FrameInterval paces camera transitions.
	FrameInterval = 16 * time.Millisecond

	headerLines = 1
	footerLines = 1

	wheelStep = 100.0
	panCols   = 5
	panRows   = 2
	zoomStep  = 1.25
)

// Options configures the model. Zero values select the defaults.
type Options struct {
	Title          string
	Padding        float64
	LabelThreshold float64
	Debounce       time.Duration
	Transition     time.Duration
	Clock          viewport.Clock
	Theme          *Theme
	Logger         zerolog.Logger
	// Reloads delivers dataset reloads from a loader.Watcher.
	Reloads <-chan loader.Reload
	// Clipboard copies text; defaults to the system clipboard.
	Clipboard func(string) error
}

// debounceMsg fires a search debounce timer.
type debounceMsg struct{ token uint64 }

// frameMsg advances a camera transition of one generation.
type frameMsg struct{ gen uint64 }

// ReloadMsg carries a dataset reload into the update loop.
type ReloadMsg struct{ Reload loader.Reload }

// Model is the bubbletea model for the chart.
type Model struct {
	opts  Options
	theme Theme
	log   zerolog.Logger

	dataset *model.Dataset
	hier    *layout.Hierarchy
	cam     *viewport.Controller
	session *search.Session
	hover   *interaction.Surface

	input     textinput.Model
	searching bool
	help      bool

	width, height int
	ready         bool

	mouse    *layout.Point
	dragging bool
	dragFrom layout.Point

	status string
}

// NewModel creates a model over ds.
func NewModel(ds *model.Dataset, opts Options) Model {
	if ds == nil {
		ds = model.NewDataset()
	}
	if opts.Title == "" {
		opts.Title = "bubblecap"
	}
	if opts.Padding <= 0 {
		opts.Padding = layout.DefaultPadding
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	theme := DefaultTheme(nil)
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search company, symbol, BSE code or ISIN"
	ti.CharLimit = 80
	ti.Width = 40

	m := Model{
		opts:    opts,
		theme:   theme,
		log:     opts.Logger.With().Str("component", "ui").Logger(),
		dataset: ds,
		session: search.NewSession(search.Build(ds), opts.Debounce),
		hover:   &interaction.Surface{},
		input:   ti,
	}
	m.relayout(layout.Size{})
	return m
}

func (m *Model) relayout(size layout.Size) {
	m.hier = layout.Compute(m.dataset, size, m.opts.Padding)
	if m.cam == nil {
		m.cam = viewport.New(m.hier.Size, m.hier.Root, viewport.Config{
			Clock:          m.opts.Clock,
			Duration:       m.opts.Transition,
			LabelThreshold: m.opts.LabelThreshold,
		})
	} else {
		m.cam.Resize(m.hier.Size, m.hier.Root)
	}
	m.hover.Reset()
}

func (m Model) chartRows() int {
	return max(m.height-headerLines-footerLines, 0)
}

// Init starts listening for reloads.
func (m Model) Init() tea.Cmd {
	return m.waitForReload()
}

func (m Model) waitForReload() tea.Cmd {
	ch := m.opts.Reloads
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return ReloadMsg{Reload: r}
	}
}

func (m Model) frameCmd() tea.Cmd {
	if !m.cam.Animating() {
		return nil
	}
	gen := m.cam.Generation()
	return tea.Tick(FrameInterval, func(time.Time) tea.Msg { return frameMsg{gen: gen} })
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.input.Width = max(msg.Width-30, 10)
		m.relayout(ChartSize(m.width, m.chartRows()))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearching(msg)
		}
		if m.help {
			return m.updateHelp(msg)
		}
		return m.updateNormal(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case debounceMsg:
		return m, m.apply(m.session.Fire(msg.token))

	case frameMsg:
		if msg.gen != m.cam.Generation() {
			return m, nil
		}
		m.cam.Tick()
		m.retrack()
		return m, m.frameCmd()

	case ReloadMsg:
		m.reload(msg.Reload)
		return m, m.waitForReload()
	}
	return m, nil
}

// updateNormal handles keys while the search box is not focused.
func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	center := m.cam.Size().Center()
	switch msg.String() {
	case "ctrl+c", "q":
		m.cam.Close()
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.input.Focus()
	case "?":
		m.help = true
		return m, nil
	case "h", "left":
		m.cam.Pan(panCols*CellWidth, 0)
	case "l", "right":
		m.cam.Pan(-panCols*CellWidth, 0)
	case "k", "up":
		m.cam.Pan(0, panRows*CellHeight)
	case "j", "down":
		m.cam.Pan(0, -panRows*CellHeight)
	case "+", "=":
		m.cam.ZoomBy(zoomStep, center)
	case "-", "_":
		m.cam.ZoomBy(1/zoomStep, center)
	case "0":
		m.cam.Home()
		return m, m.frameCmd()
	case "y":
		m.copyISIN()
		return m, nil
	default:
		return m, nil
	}
	m.retrack()
	return m, nil
}

// updateHelp handles keys while the help modal is open.
func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cam.Close()
		return m, tea.Quit
	case "?", "esc":
		m.help = false
	}
	return m, nil
}

// updateSearching handles keys while the search box has focus.
func (m Model) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cam.Close()
		return m, tea.Quit
	case "esc":
		m.searching = false
		m.input.Blur()
		m.input.SetValue("")
		return m, m.apply(m.session.SetText(""))
	case "down", "ctrl+n":
		m.session.Down()
		return m, nil
	case "up", "ctrl+p":
		m.session.Up()
		return m, nil
	case "enter":
		return m, m.confirm()
	case " ":
		if _, ok := m.session.Selected(); ok {
			return m, m.confirm()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, tea.Batch(cmd, m.apply(m.session.SetText(m.input.Value())))
}

// confirm applies the highlighted suggestion and echoes its name into the
// input; the session swallows that echo.
func (m *Model) confirm() tea.Cmd {
	eff := m.session.Confirm()
	if !eff.Commit {
		return nil
	}
	m.input.SetValue(eff.Query)
	m.input.CursorEnd()
	m.session.SetText(m.input.Value())
	return m.apply(eff)
}

// apply carries out a session effect.
func (m *Model) apply(eff search.Effect) tea.Cmd {
	if eff.Schedule {
		token := eff.Token
		return tea.Tick(eff.Delay, func(time.Time) tea.Msg { return debounceMsg{token: token} })
	}
	if eff.Commit {
		return m.commit(eff.Query)
	}
	return nil
}

// commit points the camera at the committed query: the matching company,
// or the home view for an empty query.
func (m *Model) commit(query string) tea.Cmd {
	if strings.TrimSpace(query) == "" {
		m.cam.Home()
		return m.frameCmd()
	}
	n, ok := m.hier.FindByName(query)
	if !ok {
		return nil
	}
	m.log.Debug().Str("query", query).Str("company", n.ID).Msg("Focus company")
	m.cam.Focus(*n)
	return m.frameCmd()
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	row := msg.Y - headerLines
	if row < 0 || row >= m.chartRows() {
		m.mouse = nil
		m.dragging = false
		m.hover.Track(nil, layout.Point{})
		return m, nil
	}
	p := CellCenter(msg.X, row)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.cam.Wheel(-wheelStep, p)
	case msg.Button == tea.MouseButtonWheelDown:
		m.cam.Wheel(wheelStep, p)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging = true
		m.dragFrom = p
	case msg.Action == tea.MouseActionRelease:
		m.dragging = false
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.cam.Pan(p.X-m.dragFrom.X, p.Y-m.dragFrom.Y)
		m.dragFrom = p
	}

	m.mouse = &p
	m.retrack()
	return m, nil
}

// retrack re-runs the hit test at the last pointer position. Terminals only
// report the pointer, so enter and leave are derived from what lies under
// it after every pointer or camera change.
func (m *Model) retrack() {
	if m.mouse == nil {
		return
	}
	hit, _ := m.hier.At(m.cam.ToWorld(*m.mouse))
	m.hover.Track(hit, *m.mouse)
}

func (m *Model) copyISIN() {
	n, ok := m.hover.Hovered()
	if !ok {
		m.status = "hover a bubble to copy its ISIN"
		return
	}
	if n.Record.ISIN == "" {
		m.status = n.Record.Name + " has no ISIN"
		return
	}
	if err := m.opts.Clipboard(n.Record.ISIN); err != nil {
		m.log.Warn().Err(err).Msg("Clipboard write failed")
		m.status = "clipboard unavailable"
		return
	}
	m.status = "copied " + n.Record.ISIN
}

func (m *Model) reload(r loader.Reload) {
	if r.Err != nil {
		m.log.Error().Err(r.Err).Msg("Dataset reload failed")
		m.status = "reload failed: " + r.Err.Error()
		return
	}
	if r.Result == nil || r.Result.Dataset == nil {
		return
	}

	changes := stats.Diff(m.dataset, r.Result.Dataset, 0)
	m.dataset = r.Result.Dataset
	m.session.SetIndex(search.Build(m.dataset))
	m.relayout(m.hier.Size)
	m.retrack()

	m.log.Info().
		Int("companies", m.dataset.Len()).
		Int("added", len(changes.Added)).
		Int("removed", len(changes.Removed)).
		Int("moves", len(changes.Moves)).
		Msg("Dataset reloaded")
	m.status = fmt.Sprintf("reloaded: %d companies (+%d −%d, %d moved)",
		m.dataset.Len(), len(changes.Added), len(changes.Removed), len(changes.Moves))
}

// View renders the header, chart and footer.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	rows := m.chartRows()
	canvas := NewCanvas(m.width, rows)
	canvas.Draw(render.Frame(m.hier, m.cam, m.hover, render.Options{Measure: measureTooltip}))
	chart := canvas.Lines(m.theme.Renderer)

	if m.help {
		chart = strings.Split(RenderHelp(m.theme, m.width, rows), "\n")
	} else if m.searching {
		for i, line := range m.suggestionLines() {
			if i >= len(chart) {
				break
			}
			chart[i] = line
		}
	}

	parts := []string{m.renderHeader()}
	if rows > 0 {
		parts = append(parts, strings.Join(chart, "\n"))
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	t := m.theme
	title := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).Padding(0, 1).Render(m.opts.Title)
	count := t.Renderer.NewStyle().Foreground(t.Secondary).Render(fmt.Sprintf("[%d]", len(m.hier.Leaves)))

	var box string
	if m.searching || m.input.Value() != "" {
		box = m.input.View()
	} else {
		box = t.Renderer.NewStyle().Foreground(t.Subtext).Render("press / to search")
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(title + count + " " + box)
}

func (m Model) renderFooter() string {
	t := m.theme
	helpStyle := t.Renderer.NewStyle().Foreground(t.Subtext).Padding(0, 1)
	zoomStyle := t.Renderer.NewStyle().Foreground(t.Secondary).Padding(0, 1)
	statusStyle := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).Padding(0, 1)

	var keys string
	if m.searching {
		keys = "↑/↓: select • enter: zoom • esc: clear"
	} else {
		keys = "/: search • hjkl: pan • +/-: zoom • 0: home • y: copy ISIN • ?: help • q: quit"
	}

	status := m.status
	if n, ok := m.hover.Hovered(); ok && status == "" {
		status = n.Record.Name
	}

	left := statusStyle.Render(status)
	right := zoomStyle.Render(fmt.Sprintf("%.2fx", m.cam.Transform().K)) + helpStyle.Render(keys)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := t.Renderer.NewStyle().Width(gap).Render("")
	return lipgloss.NewStyle().MaxWidth(m.width).Render(left + filler + right)
}

// Accessors used by the command layer and tests.

// Searching reports whether the search box has focus.
func (m Model) Searching() bool { return m.searching }

// HelpVisible reports whether the key binding modal is open.
func (m Model) HelpVisible() bool { return m.help }

// Query returns the search box text.
func (m Model) Query() string { return m.input.Value() }

// Suggestions returns the visible suggestions.
func (m Model) Suggestions() []search.Match { return m.session.Suggestions() }

// Transform returns the camera transform.
func (m Model) Transform() viewport.Transform { return m.cam.Transform() }

// Animating reports whether a camera transition is running.
func (m Model) Animating() bool { return m.cam.Animating() }

// Hovered returns the identifier of the hovered company.
func (m Model) Hovered() (string, bool) {
	n, ok := m.hover.Hovered()
	return n.ID, ok
}

// Status returns the footer status message.
func (m Model) Status() string { return m.status }

// Hierarchy returns the current layout.
func (m Model) Hierarchy() *layout.Hierarchy { return m.hier }

// Camera returns the camera controller.
func (m Model) Camera() *viewport.Controller { return m.cam }
