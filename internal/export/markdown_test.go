package export

import (
	"strings"
	"testing"
	"time"

	"github.com/lotas/readless/internal/types"
)

func TestMarkdown_Note(t *testing.T) {
	note := types.Note{
		Key:       "researchNotes",
		Text:      "mitosis has four phases\nsee chapter 3\n",
		UpdatedAt: time.Now().Add(-3 * 24 * time.Hour),
	}

	result := Markdown(note)

	if !strings.HasPrefix(result, "# Research notes\n") {
		t.Errorf("missing header, got:\n%s", result)
	}
	if !strings.Contains(result, "3d ago") {
		t.Errorf("expected relative save time, got:\n%s", result)
	}
	if !strings.HasSuffix(result, "\nmitosis has four phases\nsee chapter 3\n") {
		t.Errorf("expected note body at the end, got:\n%s", result)
	}
}

func TestMarkdown_NeverSaved(t *testing.T) {
	result := Markdown(types.Note{Key: "researchNotes"})

	if !strings.Contains(result, "> Never saved") {
		t.Errorf("expected never-saved marker, got:\n%s", result)
	}
	if strings.Count(result, "\n") != 2 {
		t.Errorf("expected header lines only, got:\n%q", result)
	}
}

func TestMarkdown_RelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-3 * 24 * time.Hour), "3d ago"},
		{now.Add(-5 * time.Hour), "5h ago"},
		{now.Add(-30 * time.Minute), "30m ago"},
		{now, "just now"},
	}
	for _, tt := range tests {
		if got := relativeTime(tt.at); got != tt.want {
			t.Errorf("relativeTime(%v) = %q, want %q", now.Sub(tt.at), got, tt.want)
		}
	}
}
