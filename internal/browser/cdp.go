package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/lotas/readless/internal/applog"
	"github.com/lotas/readless/internal/types"
)

const focusScript = `() => [document.visibilityState === "visible", document.hasFocus()]`

// CDPSource reads selections from a Chromium-based browser started with
// --remote-debugging-port. The connection is opened lazily and reused.
type CDPSource struct {
	controlURL string

	mu      sync.Mutex
	browser *rod.Browser
}

// NewCDPSource returns a source for the DevTools websocket URL
// (ws://127.0.0.1:9222/devtools/browser/<id>).
func NewCDPSource(controlURL string) *CDPSource {
	return &CDPSource{controlURL: controlURL}
}

func (s *CDPSource) connect() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}
	if s.controlURL == "" {
		return nil, errors.New("cdp: no DevTools URL configured")
	}
	b := rod.New().ControlURL(s.controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("cdp: connect: %w", err)
	}
	applog.Info("cdp.connected", "url", s.controlURL)
	s.browser = b
	return b, nil
}

// reset drops a connection that failed so the next call reconnects.
func (s *CDPSource) reset(b *rod.Browser) {
	s.mu.Lock()
	if s.browser == b {
		s.browser = nil
	}
	s.mu.Unlock()
}

// pageState is what ActiveTab learns about each open page.
type pageState struct {
	visible bool
	focused bool
}

// pickActive prefers a focused visible page, then any visible page.
// It returns -1 when no page is visible.
func pickActive(states []pageState) int {
	fallback := -1
	for i, st := range states {
		if st.visible && st.focused {
			return i
		}
		if st.visible && fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// ActiveTab returns the page the user is looking at.
func (s *CDPSource) ActiveTab(ctx context.Context) (types.Tab, error) {
	b, err := s.connect()
	if err != nil {
		return types.Tab{}, err
	}
	pages, err := b.Context(ctx).Pages()
	if err != nil {
		s.reset(b)
		return types.Tab{}, fmt.Errorf("cdp: list pages: %w", err)
	}

	states := make([]pageState, len(pages))
	for i, p := range pages {
		res, err := p.Context(ctx).Eval(focusScript)
		if err != nil {
			continue
		}
		arr := res.Value.Arr()
		if len(arr) == 2 {
			states[i] = pageState{visible: arr[0].Bool(), focused: arr[1].Bool()}
		}
	}

	idx := pickActive(states)
	if idx < 0 {
		return types.Tab{}, errors.New("cdp: no visible page")
	}
	info, err := pages[idx].Info()
	if err != nil {
		return types.Tab{}, fmt.Errorf("cdp: page info: %w", err)
	}
	return types.Tab{
		ID:     idx,
		Target: string(info.TargetID),
		URL:    info.URL,
		Title:  info.Title,
	}, nil
}

// Selection evaluates the selection script in the page behind tab.
func (s *CDPSource) Selection(ctx context.Context, tab types.Tab) (string, error) {
	b, err := s.connect()
	if err != nil {
		return "", err
	}
	page, err := b.PageFromTarget(proto.TargetTargetID(tab.Target))
	if err != nil {
		return "", fmt.Errorf("cdp: open target %s: %w", tab.Target, err)
	}
	res, err := page.Context(ctx).Eval(selectionScript)
	if err != nil {
		return "", fmt.Errorf("cdp: read selection: %w", err)
	}
	return res.Value.Str(), nil
}
