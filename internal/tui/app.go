// Package tui is the terminal rendition of the reading panel: a notes
// editor above a result pane, driven by a panel.Controller.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/readless/internal/applog"
	"github.com/lotas/readless/internal/panel"
	"github.com/lotas/readless/internal/render"
	"github.com/lotas/readless/internal/server"
)

// DefaultActionTimeout bounds a single summarize or save.
const DefaultActionTimeout = 2 * time.Minute

const resultPlaceholder = "Select text in the browser and press ctrl+r."

// --- Messages ---

type actionDoneMsg struct {
	action string
	err    error
}

type statusTickMsg struct{}

type bridgeMsg struct {
	msg server.IncomingMsg
	ok  bool
}

// Options configures the panel chrome.
type Options struct {
	// Source names the selection source in the top bar.
	Source string
	// Endpoint is shown in the top bar.
	Endpoint string
	// Connected reports the source's connection state. Nil hides it.
	Connected func() bool
	// Events carries unsolicited extension messages; tab updates in them
	// name the tab shown in the top bar.
	Events <-chan server.IncomingMsg
	// Timeout bounds each controller action. Zero means DefaultActionTimeout.
	Timeout time.Duration
}

// --- Model ---

type Model struct {
	ctrl *panel.Controller
	view *panelView
	opts Options

	notes  textarea.Model
	result viewport.Model
	markup string

	confirms  []string // pending confirmations, oldest first
	activeTab string
	running   int
	lastErr   error
	connected bool
	width     int
	height    int
}

// NewModel builds the panel and the controller behind it.
func NewModel(store panel.Store, source panel.Source, proc panel.Processor, opts Options) Model {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultActionTimeout
	}
	view := newPanelView()

	ta := textarea.New()
	ta.Placeholder = "Research notes..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Focus()

	vp := viewport.New(0, 0)
	vp.SetContent(resultPlaceholder)

	return Model{
		ctrl:   panel.New(store, source, proc, view),
		view:   view,
		opts:   opts,
		notes:  ta,
		result: vp,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, listenView(m.view), m.run("init", m.ctrl.Initialize)}
	if m.opts.Connected != nil {
		cmds = append(cmds, tickStatus())
	}
	if m.opts.Events != nil {
		cmds = append(cmds, listenBridge(m.opts.Events))
	}
	return tea.Batch(cmds...)
}

func listenBridge(events <-chan server.IncomingMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		return bridgeMsg{msg: msg, ok: ok}
	}
}

// run executes a controller action off the update loop.
func (m Model) run(action string, fn func(context.Context) error) tea.Cmd {
	timeout := m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func tickStatus() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return statusTickMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case noteLoadedMsg:
		m.notes.SetValue(msg.text)
		return m, listenView(m.view)

	case resultMsg:
		m.markup = msg.markup
		m.refreshResult()
		return m, listenView(m.view)

	case confirmMsg:
		m.confirms = append(m.confirms, msg.text)
		return m, listenView(m.view)

	case actionDoneMsg:
		if msg.action != "init" {
			m.running--
		}
		m.lastErr = nil
		if msg.err != nil && msg.action == "save" {
			m.lastErr = msg.err
		}
		return m, nil

	case bridgeMsg:
		if !msg.ok {
			return m, nil
		}
		if len(msg.msg.Tab) > 0 {
			if tab, err := server.ParseTab(msg.msg.Tab); err == nil {
				m.activeTab = tab.Label()
			}
		}
		return m, listenBridge(m.opts.Events)

	case statusTickMsg:
		if m.opts.Connected != nil {
			m.connected = m.opts.Connected()
		}
		return m, tickStatus()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateNotes(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// Confirmations are modal and dismissed one at a time: nothing else
	// gets through while any is pending.
	if len(m.confirms) > 0 {
		if key == "esc" || key == "enter" {
			m.confirms = m.confirms[1:]
		}
		return m, nil
	}

	switch key {
	case "ctrl+r":
		m.running++
		applog.Info("tui.summarize", "source", m.opts.Source)
		return m, m.run("summarize", m.ctrl.Summarize)
	case "ctrl+s":
		m.view.setNote(m.notes.Value())
		m.running++
		return m, m.run("save", m.ctrl.SaveNotes)
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		return m, cmd
	}

	return m.updateNotes(msg)
}

func (m Model) updateNotes(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	m.view.setNote(m.notes.Value())
	return m, cmd
}

// paneSizes returns the inner heights of the notes and result panes.
func (m Model) paneSizes() (notes, result int) {
	// top bar, bottom bar and two bordered panes
	body := m.height - 2 - 4
	if body < 4 {
		body = 4
	}
	notes = body * NotesHeightPct / 100
	if notes < 2 {
		notes = 2
	}
	return notes, body - notes
}

func (m *Model) layout() {
	inner := m.width - 2
	if inner < 10 {
		inner = 10
	}
	notesH, resultH := m.paneSizes()
	m.notes.SetWidth(inner)
	m.notes.SetHeight(notesH)
	m.result.Width = inner
	m.result.Height = resultH
	m.refreshResult()
}

func (m *Model) refreshResult() {
	if m.markup == "" {
		return
	}
	text, err := render.Terminal(m.markup)
	if err != nil {
		applog.Error("tui.render", err)
		text = m.markup
	}
	if m.result.Width > 0 {
		text = lipgloss.NewStyle().Width(m.result.Width).Render(text)
	}
	m.result.SetContent(text)
	m.result.GotoTop()
}

func (m Model) View() string {
	if len(m.confirms) > 0 {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Render(m.confirms[0] + "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("enter/esc ok"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var status string
	if m.opts.Connected != nil {
		if m.connected {
			status = "● connected"
		} else {
			status = "○ waiting for browser..."
		}
	}
	if m.activeTab != "" {
		status += "  " + m.activeTab
	}
	if m.running > 0 {
		status += fmt.Sprintf("  working (%d)...", m.running)
	}
	topBar := renderNavbar(m.opts.Source, status, m.opts.Endpoint, m.width)

	notesBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62"))
	resultBorder := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240"))

	notes := notesBorder.Render(m.notes.View())
	result := resultBorder.Render(m.result.View())

	bottomBarStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	bottomText := "ctrl+r summarize selection · ctrl+s save notes · pgup/pgdn scroll · ctrl+c quit"
	if m.lastErr != nil {
		bottomText = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("save failed: "+m.lastErr.Error()) + "  " + bottomText
	}
	bottomBar := bottomBarStyle.Render(bottomText)

	return lipgloss.JoinVertical(lipgloss.Left, topBar, notes, result, bottomBar)
}
