package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	fileName    = "readless.log"
	maxFileSize = 5 << 20 // 5 MB
	maxValueLen = 200
	truncSuffix = "…"
)

var (
	mu   sync.Mutex
	file *os.File
	path string
)

// Init opens the log file in dir for appending. Call once at startup.
// A file larger than 5 MB is rotated to .log.1 before opening.
// Logging is a no-op until Init succeeds.
func Init(dir string) error {
	p := filepath.Join(dir, fileName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if info, err := os.Stat(p); err == nil && info.Size() > maxFileSize {
		os.Rename(p, p+".1")
	}

	f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mu.Lock()
	if file != nil {
		file.Close()
	}
	file = f
	path = p
	mu.Unlock()
	return nil
}

// Path returns the active log file path, or "" before Init.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return path
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
		path = ""
	}
}

// Info logs a structured event line.
//
//	applog.Info("panel.summarize", "tab", 12, "chars", 431)
//	applog.Info("bridge.connected", "remote", addr)
func Info(event string, kv ...any) {
	write("INFO", event, nil, kv)
}

// Warn logs an event that was handled but deserves attention.
func Warn(event string, kv ...any) {
	write("WARN", event, nil, kv)
}

// Error logs an event with an error.
//
//	applog.Error("store.set", err, "key", key)
func Error(event string, err error, kv ...any) {
	write("ERROR", event, err, kv)
}

func write(level, event string, err error, kv []any) {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return
	}
	file.WriteString(format(time.Now(), level, event, err, kv))
}

func format(ts time.Time, level, event string, err error, kv []any) string {
	var b strings.Builder
	b.WriteString(ts.UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(event)

	if err != nil {
		b.WriteString(" err=")
		b.WriteString(quote(err.Error()))
	}

	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(kv[i]))
		b.WriteByte('=')
		b.WriteString(quote(fmt.Sprint(kv[i+1])))
	}
	b.WriteByte('\n')
	return b.String()
}

func quote(s string) string {
	if len(s) > maxValueLen {
		s = s[:maxValueLen] + truncSuffix
	}
	if strings.ContainsAny(s, " \t\n\"") {
		return "\"" + strings.ReplaceAll(strings.ReplaceAll(s, "\"", "\\\""), "\n", "\\n") + "\""
	}
	return s
}
