package browser

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
	"github.com/lotas/readless/internal/types"
)

// PrimarySource reads the desktop selection. On Linux this is the X11/
// Wayland primary selection, i.e. whatever text is highlighted in any
// window; elsewhere it falls back to the clipboard.
type PrimarySource struct {
	read func() (string, error)
}

// NewPrimarySource returns a source backed by the system clipboard tools.
func NewPrimarySource() *PrimarySource {
	usePrimarySelection()
	return &PrimarySource{read: clipboard.ReadAll}
}

// ActiveTab returns a placeholder tab; the desktop selection has no tab.
func (s *PrimarySource) ActiveTab(context.Context) (types.Tab, error) {
	if clipboard.Unsupported {
		return types.Tab{}, errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")
	}
	return types.Tab{Title: "primary selection"}, nil
}

// Selection returns the currently selected text.
func (s *PrimarySource) Selection(context.Context, types.Tab) (string, error) {
	return s.read()
}
