// Package processor is the HTTP service behind the readless endpoint. It
// turns {content, operation} requests into prompts for a language model
// and answers with plain text.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lotas/readless/internal/applog"
	"github.com/lotas/readless/internal/llm"
	"github.com/lotas/readless/internal/readless"
)

const (
	// MaxContentLen caps the bytes of content sent to the model.
	MaxContentLen = 8000
	maxBodyBytes  = 1 << 20
)

// Service answers processing requests with a Generator.
type Service struct {
	gen llm.Generator
	// LogRequests enables chi's request logger on stderr.
	LogRequests bool
}

// New returns a Service backed by gen.
func New(gen llm.Generator) *Service {
	return &Service{gen: gen}
}

// Router returns the HTTP routes of the service.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.LogRequests {
		r.Use(middleware.Logger)
	}
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Post("/api/readless/process", s.handle(func(op, content string) (string, error) {
		return BuildPrompt(op, content), nil
	}))
	r.Post("/api/summarize/process", s.handle(BuildSummarizePrompt))
	return r
}

// cors lets the browser extension call the service from any origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type promptFunc func(op, content string) (string, error)

func (s *Service) handle(build promptFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req readless.Request
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeText(w, http.StatusBadRequest, "ERROR: invalid request body: "+err.Error())
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			applog.Warn("serve.empty", "path", r.URL.Path)
			writeText(w, http.StatusBadRequest, "ERROR: readless backend: content is empty")
			return
		}

		op := readless.NormalizeOperation(req.Operation)
		prompt, err := build(op, truncate(req.Content, MaxContentLen))
		if err != nil {
			writeText(w, http.StatusBadRequest, "ERROR: "+err.Error())
			return
		}

		out, err := s.gen.Generate(r.Context(), prompt)
		if err != nil {
			applog.Error("serve.generate", err, "op", op, "path", r.URL.Path)
			status := http.StatusBadGateway
			if errors.Is(err, context.Canceled) {
				status = http.StatusServiceUnavailable
			}
			writeText(w, status, "ERROR: "+err.Error())
			return
		}

		applog.Info("serve.process", "op", op, "path", r.URL.Path,
			"in", len(req.Content), "out", len(out), "ms", time.Since(start).Milliseconds())
		writeText(w, http.StatusOK, out)
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ListenAndServe serves the router on addr until ctx is cancelled.
func (s *Service) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	applog.Info("serve.start", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}
