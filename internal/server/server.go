package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/lotas/readless/internal/applog"
	"nhooyr.io/websocket"
)

// Bridge actions understood by the extension.
const (
	ActionActiveTab    = "activeTab"
	ActionGetSelection = "getSelection"
)

// ErrNotConnected is returned by Request when no extension is attached.
var ErrNotConnected = errors.New("browser extension not connected")

// IncomingMsg is a message from the extension to readless.
type IncomingMsg struct {
	Type string          `json:"type"`
	Tab  json.RawMessage `json:"tab,omitempty"`
	// Command response fields
	ID      string `json:"id,omitempty"`
	OK      *bool  `json:"ok,omitempty"`
	Error   string `json:"error,omitempty"`
	Content string `json:"content,omitempty"`
}

// Failed reports whether the message is a command response with ok=false.
func (m IncomingMsg) Failed() bool {
	return m.OK != nil && !*m.OK
}

// OutgoingMsg is a command from readless to the extension.
type OutgoingMsg struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	TabID  int    `json:"tabId,omitempty"`
}

// Server manages the WebSocket connection to the extension.
type Server struct {
	port    int
	msgs    chan IncomingMsg
	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
	pending map[string]chan IncomingMsg
}

// New creates a new Server. Port 0 means the caller manages the listener.
func New(port int) *Server {
	return &Server{
		port:    port,
		msgs:    make(chan IncomingMsg, 64),
		pending: make(map[string]chan IncomingMsg),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Messages returns the channel of unsolicited messages from the extension.
// Responses claimed by Request are not delivered here.
func (s *Server) Messages() <-chan IncomingMsg {
	return s.msgs
}

// Connected reports whether an extension is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Send sends a command to the connected extension.
func (s *Server) Send(msg OutgoingMsg) error {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	applog.Info("bridge.send", "action", msg.Action, "id", msg.ID)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Request sends msg with a fresh ID and waits for the response carrying the
// same ID, or until ctx is done.
func (s *Server) Request(ctx context.Context, msg OutgoingMsg) (IncomingMsg, error) {
	msg.ID = uuid.NewString()
	ch := make(chan IncomingMsg, 1)

	s.mu.Lock()
	s.pending[msg.ID] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, msg.ID)
		s.mu.Unlock()
	}()

	if err := s.Send(msg); err != nil {
		return IncomingMsg{}, fmt.Errorf("%s: %w", msg.Action, err)
	}

	select {
	case resp := <-ch:
		if resp.Failed() {
			return resp, fmt.Errorf("%s: %s", msg.Action, resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		return IncomingMsg{}, fmt.Errorf("%s: waiting for extension: %w", msg.Action, ctx.Err())
	}
}

// dispatch routes a response to its waiting Request, or onto Messages.
func (s *Server) dispatch(msg IncomingMsg) {
	if msg.ID != "" {
		s.mu.Lock()
		ch, ok := s.pending[msg.ID]
		s.mu.Unlock()
		if ok {
			select {
			case ch <- msg:
			default:
			}
			return
		}
	}
	select {
	case s.msgs <- msg:
	default:
		applog.Warn("bridge.dropped", "type", msg.Type, "id", msg.ID)
	}
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("bridge.accept", err)
			return
		}

		conn.SetReadLimit(4 << 20) // 4 MB; selections can be whole pages

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("bridge.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("bridge.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("bridge.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg IncomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("bridge.parse", err)
				continue
			}
			applog.Info("bridge.recv", "type", msg.Type, "id", msg.ID)
			s.dispatch(msg)
		}
	})
}

// ListenAndServe starts the WebSocket server on the configured port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("bridge.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
