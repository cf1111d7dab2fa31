package export

import (
	"encoding/json"
	"time"

	"github.com/lotas/readless/internal/types"
)

type jsonNote struct {
	Key       string     `json:"key"`
	Note      string     `json:"note"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// JSON formats a research note as a JSON document. updatedAt is null
// for a note that was never saved.
func JSON(note types.Note) (string, error) {
	out := jsonNote{Key: note.Key, Note: note.Text}
	if !note.UpdatedAt.IsZero() {
		ts := note.UpdatedAt.UTC()
		out.UpdatedAt = &ts
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
