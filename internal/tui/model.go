// Package tui provides a BubbleTea demo host for the event overlay: a fake
// application fills the terminal and the overlay is drawn on top of it.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/math/f64"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/display"
	"github.com/jmylchreest/eventlog/internal/hittest"
	"github.com/jmylchreest/eventlog/internal/overlay"
	"github.com/jmylchreest/eventlog/internal/theme"
	"github.com/jmylchreest/eventlog/pkg/eventlog"
)

// Executor runs fn on the UI loop and waits for it to finish.
// *uiloop.Runner satisfies it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// swipeRows is the vertical drag distance, in rows, that counts as a swipe.
const swipeRows = 2

// termHost is the terminal surface. It is only touched on the UI loop.
type termHost struct {
	cols, rows int
}

func (h *termHost) Size() hittest.Size      { return SurfaceSize(h.cols, h.rows) }
func (h *termHost) RootTransform() f64.Aff3 { return f64.Aff3{} }

// Model is the demo TUI model.
type Model struct {
	ctx    context.Context
	exec   Executor
	log    *eventlog.EventLog
	host   *termHost
	logger *slog.Logger
	scheme theme.Scheme

	// Frames painted on the UI loop, newest only.
	frames chan frameMsg

	keys     KeyMap
	help     help.Model
	showHelp bool

	width  int
	height int
	ready  bool

	canvas *Canvas
	state  overlay.State

	pressed  bool
	pressCol int
	pressRow int

	// The application underneath
	appTaps int
	lastTap string
	sent    int

	statusMsg string
	statusErr bool
}

type frameMsg struct {
	canvas *Canvas
	state  overlay.State
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type tickMsg time.Time

// New creates the demo model. The render callback is installed on the loop
// through exec, so New blocks until the loop is running.
func New(ctx context.Context, exec Executor, log *eventlog.EventLog, cfg *config.Config, logger *slog.Logger) (Model, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := Model{
		ctx:    ctx,
		exec:   exec,
		log:    log,
		host:   &termHost{},
		logger: logger,
		scheme: theme.ParseScheme(cfg.Theme.ColorScheme, lipgloss.HasDarkBackground()),
		frames: make(chan frameMsg, 1),
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}

	host, frames, scheme := m.host, m.frames, m.scheme
	err := exec.Do(ctx, func() {
		log.OnRender(func(f display.Frame) {
			c := Paint(f, log.Overlay().Theme(), scheme, host.cols, host.rows, time.Now())
			publish(frames, frameMsg{canvas: c, state: f.Snapshot.State})
		})
	})
	if err != nil {
		return Model{}, fmt.Errorf("failed to install render callback: %w", err)
	}
	return m, nil
}

// publish hands msg to the TUI, replacing any frame it has not picked up.
func publish(ch chan frameMsg, msg frameMsg) {
	for {
		select {
		case ch <- msg:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.watchFrames, tick())
}

// watchFrames waits for the next painted frame.
func (m Model) watchFrames() tea.Msg {
	select {
	case f := <-m.frames:
		return f
	case <-m.ctx.Done():
		return nil
	}
}

// tick refreshes relative timestamps once a second.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		return m, m.resize(msg.Width, max(msg.Height-1, 1))

	case frameMsg:
		m.canvas = msg.canvas
		m.state = msg.state
		return m, m.watchFrames

	case tickMsg:
		m.onLoop(func() { m.log.Overlay().Refresh() })
		return m, tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	return m, nil
}

// resize sizes the host to the canvas area, attaching on first use.
func (m Model) resize(cols, rows int) tea.Cmd {
	var attachErr error
	m.onLoop(func() {
		m.host.cols, m.host.rows = cols, rows
		if m.log.Overlay().Attached() {
			m.log.Overlay().Refresh()
			return
		}
		attachErr = m.log.Attach(m.host)
	})
	if attachErr != nil {
		return status("Attach failed: "+attachErr.Error(), true)
	}
	return nil
}

// onLoop runs fn on the UI loop and waits for it.
func (m Model) onLoop(fn func()) {
	if err := m.exec.Do(m.ctx, fn); err != nil {
		m.logger.Debug("ui loop unavailable", "error", err)
	}
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Message):
		m.sent++
		m.log.SendParams(fmt.Sprintf("Message %d", m.sent), map[string]any{
			"screen": "demo",
			"seq":    m.sent,
			"taps":   m.appTaps,
		}, eventlog.CategoryMessage)
		return m, nil

	case key.Matches(msg, m.keys.Error):
		m.sent++
		m.log.Sendf(eventlog.CategoryError, fmt.Sprintf("Error %d", m.sent), "request failed after %d retries", m.sent%4)
		return m, nil

	case key.Matches(msg, m.keys.Warning):
		m.sent++
		m.log.Send(fmt.Sprintf("Warning %d", m.sent), "", eventlog.CategoryWarning)
		return m, nil

	case key.Matches(msg, m.keys.Analytics):
		m.sent++
		m.log.Send(fmt.Sprintf("Analytics %d", m.sent), "", eventlog.CategoryAnalytics)
		return m, nil

	case key.Matches(msg, m.keys.Burst):
		for i := 0; i < 10; i++ {
			m.sent++
			m.log.Send(fmt.Sprintf("Burst %d", m.sent), "", eventlog.CategoryAnalytics)
		}
		return m, status("Sent 10 events", false)

	case key.Matches(msg, m.keys.Peek):
		m.onLoop(func() {
			machine := m.log.Machine()
			if !machine.TapPeek() {
				machine.TapCollapse()
			}
		})
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.onLoop(func() { m.log.Machine().DismissDetail() })
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		return m, m.scroll(-3 * CellHeight)

	case key.Matches(msg, m.keys.ScrollDn):
		return m, m.scroll(3 * CellHeight)
	}
	return m, nil
}

func (m Model) scroll(dy float64) tea.Cmd {
	m.onLoop(func() { m.log.Overlay().Scroll(dy) })
	return nil
}

// handleMouse routes pointer input. A press and release at the same place
// is a tap; a vertical drag is a swipe. Taps the overlay does not claim
// reach the application.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return m, m.scroll(-CellHeight)
	case msg.Button == tea.MouseButtonWheelDown:
		return m, m.scroll(CellHeight)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pressed = true
		m.pressCol, m.pressRow = msg.X, msg.Y
		return m, nil

	case msg.Action == tea.MouseActionRelease && m.pressed:
		m.pressed = false
		if dy := msg.Y - m.pressRow; dy <= -swipeRows || dy >= swipeRows {
			dir := display.SwipeDown
			if dy < 0 {
				dir = display.SwipeUp
			}
			p := CellCenter(m.pressCol, m.pressRow)
			m.onLoop(func() { m.log.Overlay().Swipe(p, dir) })
			return m, nil
		}
		return m.tap(msg.X, msg.Y)
	}
	return m, nil
}

func (m Model) tap(col, row int) (tea.Model, tea.Cmd) {
	if row >= m.height-1 {
		return m, nil
	}

	var claimed bool
	p := CellCenter(col, row)
	m.onLoop(func() { claimed = m.log.Tap(p) })
	if claimed {
		return m, nil
	}

	m.appTaps++
	m.lastTap = fmt.Sprintf("%d,%d", col, row)
	return m, nil
}

// AppTaps returns the number of taps that reached the application.
func (m Model) AppTaps() int {
	return m.appTaps
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	background := m.background()
	var body string
	if m.canvas != nil {
		body = m.canvas.Render(background)
	} else {
		body = strings.Join(background, "\n")
	}

	footer := m.help.View(m.keys)
	if m.statusMsg != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			style = style.Foreground(lipgloss.Color("9"))
		}
		footer = style.Render(m.statusMsg)
	}
	return body + "\n" + footer
}

// background is the application drawn under the overlay.
func (m Model) background() []string {
	rows := max(m.height-1, 1)
	lines := make([]string, rows)

	content := []string{
		"",
		"  Demo application",
		"",
		fmt.Sprintf("  taps received:  %d", m.appTaps),
		fmt.Sprintf("  last tap:       %s", orNone(m.lastTap)),
		fmt.Sprintf("  events sent:    %d", m.sent),
		fmt.Sprintf("  overlay:        %s", m.state),
		"",
		"  Press m/e/w/a to emit events. Click anywhere: taps the",
		"  overlay does not claim land here.",
	}
	for i := range lines {
		if i < len(content) {
			lines[i] = content[i]
		}
	}
	return lines
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// RunOptions configures the TUI.
type RunOptions struct {
	Context  context.Context
	Executor Executor
	EventLog *eventlog.EventLog
	Config   *config.Config
	Logger   *slog.Logger
}

// Run starts the TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := New(ctx, opts.Executor, opts.EventLog, opts.Config, opts.Logger)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = p.Run()

	m.onLoop(func() { opts.EventLog.Detach() })
	return err
}
