package types

import "time"

// Tab identifies a browser tab the panel can read a selection from.
type Tab struct {
	ID           int    // browser tab ID; 0 when the source has no tab IDs
	Target       string // DevTools target ID for CDP sources
	URL          string
	Title        string
	WindowID     int
	LastAccessed time.Time
}

// Label returns the best human-readable name for the tab.
func (t Tab) Label() string {
	if t.Title != "" {
		return t.Title
	}
	if t.URL != "" {
		return t.URL
	}
	return "untitled tab"
}

// Profile is a Firefox profile that has a session file to read.
type Profile struct {
	Name      string
	Path      string // absolute path to profile directory
	IsDefault bool   // default of an install, or Default=1
	Session   string // newest session file in the profile
	SavedAt   time.Time
}

// Note is the persisted research note with its last write time.
type Note struct {
	Key       string
	Text      string
	UpdatedAt time.Time
}
