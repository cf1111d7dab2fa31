package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lotas/readless/internal/types"
)

type wireTab struct {
	ID           int    `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	WindowID     int    `json:"windowId"`
	LastAccessed int64  `json:"lastAccessed"`
}

// ParseTab converts a raw JSON tab into a Tab.
func ParseTab(raw json.RawMessage) (types.Tab, error) {
	if len(raw) == 0 {
		return types.Tab{}, fmt.Errorf("parse tab: empty payload")
	}
	var wt wireTab
	if err := json.Unmarshal(raw, &wt); err != nil {
		return types.Tab{}, fmt.Errorf("parse tab: %w", err)
	}
	tab := types.Tab{
		ID:       wt.ID,
		URL:      wt.URL,
		Title:    wt.Title,
		WindowID: wt.WindowID,
	}
	if wt.LastAccessed > 0 {
		tab.LastAccessed = time.UnixMilli(wt.LastAccessed)
	}
	return tab, nil
}
