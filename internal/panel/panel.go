// Package panel implements the reading panel: it loads and saves the
// research note, and summarizes the text selected in the active tab.
package panel

import (
	"context"
	"strings"

	"github.com/lotas/readless/internal/applog"
	"github.com/lotas/readless/internal/readless"
	"github.com/lotas/readless/internal/render"
	"github.com/lotas/readless/internal/types"
)

const (
	// NotesKey is the fixed key the research note is stored under.
	NotesKey = "researchNotes"

	// Operation is the processing operation requested for selections.
	Operation = readless.OpQA

	NoSelectionMessage = "Please select some text first"
	SavedMessage       = "Notes saved successfully"
	ErrorPrefix        = "ERROR: "
)

// Store is a persistent string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Source finds the active browser tab and reads its current selection.
type Source interface {
	ActiveTab(ctx context.Context) (types.Tab, error)
	Selection(ctx context.Context, tab types.Tab) (string, error)
}

// Processor sends content to the processing endpoint.
type Processor interface {
	Process(ctx context.Context, content, operation string) (string, error)
}

// View is the panel surface. Implementations must be safe for concurrent
// use; each ShowResult fully replaces the previous result.
type View interface {
	SetNote(text string)
	Note() string
	ShowResult(markup string)
	// Confirm surfaces a blocking confirmation to the user.
	Confirm(msg string)
}

// Controller wires the panel actions to their collaborators. It holds no
// state of its own, so concurrent actions race only on the View.
type Controller struct {
	store  Store
	source Source
	proc   Processor
	view   View
}

// New returns a Controller.
func New(store Store, source Source, proc Processor, view View) *Controller {
	return &Controller{store: store, source: source, proc: proc, view: view}
}

// Initialize loads the persisted note into the note field. A missing or
// empty note leaves the field untouched. Read failures are logged and
// returned but never shown.
func (c *Controller) Initialize(ctx context.Context) error {
	note, ok, err := c.store.Get(ctx, NotesKey)
	if err != nil {
		applog.Error("panel.init", err)
		return err
	}
	if ok && note != "" {
		c.view.SetNote(note)
	}
	applog.Info("panel.init", "note_chars", len(note))
	return nil
}

// Summarize reads the active tab's selection, sends it for processing and
// renders the answer. An empty selection renders NoSelectionMessage and
// returns ErrNoSelection without contacting the endpoint. Every other
// failure renders ErrorPrefix followed by the error text. The returned
// error is for logging; the user already saw the outcome.
func (c *Controller) Summarize(ctx context.Context) error {
	tab, err := c.source.ActiveTab(ctx)
	if err != nil {
		return c.fail(&TabError{Op: "query active tab", Err: err})
	}

	selection, err := c.source.Selection(ctx, tab)
	if err != nil {
		return c.fail(&TabError{Op: "read selection", Err: err})
	}

	if strings.TrimSpace(selection) == "" {
		applog.Info("panel.summarize.empty", "tab", tab.Label())
		c.Render(NoSelectionMessage)
		return ErrNoSelection
	}

	applog.Info("panel.summarize", "tab", tab.Label(), "chars", len(selection))
	text, err := c.proc.Process(ctx, selection, Operation)
	if err != nil {
		return c.fail(err)
	}

	c.Render(render.Text(text))
	applog.Info("panel.summarize.done", "chars", len(text))
	return nil
}

// SaveNotes writes the note field under NotesKey and confirms exactly once.
// A failed write is logged and returned; the confirmation is still shown.
func (c *Controller) SaveNotes(ctx context.Context) error {
	note := c.view.Note()
	err := c.store.Set(ctx, NotesKey, note)
	if err != nil {
		applog.Error("panel.save", err)
	} else {
		applog.Info("panel.save", "chars", len(note))
	}
	c.view.Confirm(SavedMessage)
	return err
}

// Render replaces the whole result region with content.
func (c *Controller) Render(content string) {
	c.view.ShowResult(render.Fragment(content))
}

func (c *Controller) fail(err error) error {
	applog.Error("panel.summarize", err, "kind", Classify(err))
	c.Render(ErrorPrefix + render.Text(err.Error()))
	return err
}
