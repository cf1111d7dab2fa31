package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/readless/internal/panel"
)

// Messages the panel view forwards to the program.
type noteLoadedMsg struct{ text string }
type resultMsg struct{ markup string }
type confirmMsg struct{ text string }

// panelView implements panel.View for the bubbletea program. Controller
// actions run as tea.Cmds on their own goroutines; writes reach the model
// as messages, in the order they were made.
type panelView struct {
	mu   sync.Mutex
	note string
	msgs chan tea.Msg
}

var _ panel.View = (*panelView)(nil)

func newPanelView() *panelView {
	return &panelView{msgs: make(chan tea.Msg, 16)}
}

func (v *panelView) SetNote(text string) {
	v.setNote(text)
	v.msgs <- noteLoadedMsg{text: text}
}

// Note returns the note field as last synced from the textarea.
func (v *panelView) Note() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.note
}

func (v *panelView) ShowResult(markup string) {
	v.msgs <- resultMsg{markup: markup}
}

func (v *panelView) Confirm(msg string) {
	v.msgs <- confirmMsg{text: msg}
}

func (v *panelView) setNote(text string) {
	v.mu.Lock()
	v.note = text
	v.mu.Unlock()
}

// listenView delivers the next view write to Update.
func listenView(v *panelView) tea.Cmd {
	return func() tea.Msg {
		return <-v.msgs
	}
}
