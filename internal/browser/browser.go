// Package browser provides the selection sources the panel reads from:
// the companion extension over the websocket bridge, a Chromium DevTools
// endpoint, and the desktop primary selection.
package browser

import "github.com/lotas/readless/internal/panel"

// selectionScript returns the page's current text selection.
const selectionScript = `() => window.getSelection().toString()`

var (
	_ panel.Source = (*ExtensionSource)(nil)
	_ panel.Source = (*CDPSource)(nil)
	_ panel.Source = (*PrimarySource)(nil)
)
