package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotas/readless/internal/types"
)

// Markdown formats a research note as a markdown document.
func Markdown(note types.Note) string {
	var b strings.Builder

	b.WriteString("# Research notes\n")
	if note.UpdatedAt.IsZero() {
		b.WriteString("> Never saved\n")
	} else {
		fmt.Fprintf(&b, "> Saved %s (%s)\n",
			note.UpdatedAt.Local().Format("2006-01-02 15:04"), relativeTime(note.UpdatedAt))
	}

	text := strings.TrimRight(note.Text, "\n")
	if text != "" {
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
