package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/lotas/readless/internal/server"
	"github.com/lotas/readless/internal/types"
)

// DefaultRequestTimeout bounds each round trip to the extension.
const DefaultRequestTimeout = 10 * time.Second

// Requester sends a command to the extension and waits for its answer.
type Requester interface {
	Request(ctx context.Context, msg server.OutgoingMsg) (server.IncomingMsg, error)
}

// ExtensionSource asks the companion browser extension for the active tab
// and runs the selection script in it.
type ExtensionSource struct {
	bridge  Requester
	Timeout time.Duration
}

// NewExtensionSource returns a source backed by the websocket bridge.
func NewExtensionSource(bridge Requester) *ExtensionSource {
	return &ExtensionSource{bridge: bridge, Timeout: DefaultRequestTimeout}
}

// ActiveTab returns the active tab of the focused window.
func (s *ExtensionSource) ActiveTab(ctx context.Context) (types.Tab, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.bridge.Request(ctx, server.OutgoingMsg{Action: server.ActionActiveTab})
	if err != nil {
		return types.Tab{}, err
	}
	tab, err := server.ParseTab(resp.Tab)
	if err != nil {
		return types.Tab{}, fmt.Errorf("active tab: %w", err)
	}
	return tab, nil
}

// Selection evaluates the selection script in tab and returns its text.
func (s *ExtensionSource) Selection(ctx context.Context, tab types.Tab) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.bridge.Request(ctx, server.OutgoingMsg{
		Action: server.ActionGetSelection,
		TabID:  tab.ID,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (s *ExtensionSource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}
