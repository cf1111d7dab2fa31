package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/lotas/readless/internal/server"
	"github.com/lotas/readless/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

type fakeBridge struct {
	sent []server.OutgoingMsg
	resp server.IncomingMsg
	err  error
}

func (b *fakeBridge) Request(_ context.Context, msg server.OutgoingMsg) (server.IncomingMsg, error) {
	b.sent = append(b.sent, msg)
	return b.resp, b.err
}

func TestExtensionSource_ActiveTab(t *testing.T) {
	bridge := &fakeBridge{resp: server.IncomingMsg{Tab: json.RawMessage(`{"id":5,"url":"https://go.dev","title":"Go"}`)}}
	tab, err := NewExtensionSource(bridge).ActiveTab(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.Tab{ID: 5, URL: "https://go.dev", Title: "Go"}, tab)
	require.Len(t, bridge.sent, 1)
	assert.Equal(t, server.ActionActiveTab, bridge.sent[0].Action)
}

func TestExtensionSource_ActiveTabMissingPayload(t *testing.T) {
	_, err := NewExtensionSource(&fakeBridge{}).ActiveTab(context.Background())
	assert.Error(t, err)
}

func TestExtensionSource_Selection(t *testing.T) {
	bridge := &fakeBridge{resp: server.IncomingMsg{Content: "highlighted"}}
	got, err := NewExtensionSource(bridge).Selection(context.Background(), types.Tab{ID: 9})
	require.NoError(t, err)

	assert.Equal(t, "highlighted", got)
	assert.Equal(t, server.OutgoingMsg{Action: server.ActionGetSelection, TabID: 9}, bridge.sent[0])
}

func TestExtensionSource_PropagatesBridgeError(t *testing.T) {
	bridge := &fakeBridge{err: server.ErrNotConnected}
	_, err := NewExtensionSource(bridge).Selection(context.Background(), types.Tab{ID: 1})
	assert.ErrorIs(t, err, server.ErrNotConnected)
}

func TestExtensionSource_OverWebsocket(t *testing.T) {
	srv := server.New(0)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	for !srv.Connected() {
		time.Sleep(5 * time.Millisecond)
	}

	// Fake extension answering activeTab and getSelection.
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var cmd server.OutgoingMsg
			json.Unmarshal(data, &cmd)
			ok := true
			resp := server.IncomingMsg{Type: "response", ID: cmd.ID, OK: &ok}
			switch cmd.Action {
			case server.ActionActiveTab:
				resp.Tab = json.RawMessage(`{"id":3,"url":"https://example.com","title":"Example"}`)
			case server.ActionGetSelection:
				resp.Content = "text from tab " + strconv.Itoa(cmd.TabID)
			}
			out, _ := json.Marshal(resp)
			conn.Write(ctx, websocket.MessageText, out)
		}
	}()

	src := NewExtensionSource(srv)
	tab, err := src.ActiveTab(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, tab.ID)

	sel, err := src.Selection(ctx, tab)
	require.NoError(t, err)
	assert.Equal(t, "text from tab 3", sel)
}

func TestPrimarySource(t *testing.T) {
	src := &PrimarySource{read: func() (string, error) { return "picked", nil }}
	got, err := src.Selection(context.Background(), types.Tab{})
	require.NoError(t, err)
	assert.Equal(t, "picked", got)

	src.read = func() (string, error) { return "", errors.New("xclip: exit status 1") }
	_, err = src.Selection(context.Background(), types.Tab{})
	assert.Error(t, err)
}

func TestPickActive(t *testing.T) {
	tests := []struct {
		name   string
		states []pageState
		want   int
	}{
		{"none", nil, -1},
		{"all hidden", []pageState{{}, {}}, -1},
		{"focused wins", []pageState{{visible: true}, {visible: true, focused: true}}, 1},
		{"first visible", []pageState{{}, {visible: true}, {visible: true}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickActive(tt.states))
		})
	}
}

func TestCDPSource_NoURL(t *testing.T) {
	_, err := NewCDPSource("").ActiveTab(context.Background())
	assert.Error(t, err)
}
