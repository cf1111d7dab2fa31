package firefox

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lotas/readless/internal/types"
	"github.com/pierrec/lz4/v4"
)

// mozlz4 header: 8-byte magic "mozLz40\x00"
var mozLz4Magic = []byte("mozLz40\x00")

// DecompressMozLz4 decompresses data in Mozilla's mozlz4 format.
// The format is: 8-byte magic "mozLz40\x00" + 4-byte LE uint32 uncompressed size + lz4 block data.
func DecompressMozLz4(data []byte) ([]byte, error) {
	const headerSize = 12 // 8 magic + 4 size

	if len(data) < headerSize {
		return nil, fmt.Errorf("mozlz4: data too short (%d bytes)", len(data))
	}

	for i := 0; i < len(mozLz4Magic); i++ {
		if data[i] != mozLz4Magic[i] {
			return nil, fmt.Errorf("mozlz4: invalid header magic")
		}
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[8:12])

	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("mozlz4: decompress failed: %w", err)
	}

	return dst[:n], nil
}

type rawEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type rawTab struct {
	Entries      []rawEntry `json:"entries"`
	Index        int        `json:"index"`
	LastAccessed int64      `json:"lastAccessed"`
}

type rawWindow struct {
	Tabs     []rawTab `json:"tabs"`
	Selected int      `json:"selected"` // 1-based
}

type rawSession struct {
	Windows        []rawWindow `json:"windows"`
	SelectedWindow int         `json:"selectedWindow"` // 1-based
}

// ParseActiveTab returns the selected tab of the selected window in a
// decompressed session file. Firefox stores both indices 1-based; out of
// range values fall back to the first window and the most recently
// accessed tab.
func ParseActiveTab(data []byte) (types.Tab, error) {
	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Tab{}, fmt.Errorf("parse session JSON: %w", err)
	}
	if len(raw.Windows) == 0 {
		return types.Tab{}, fmt.Errorf("session has no open windows")
	}

	winIdx := raw.SelectedWindow - 1
	if winIdx < 0 || winIdx >= len(raw.Windows) {
		winIdx = 0
	}
	window := raw.Windows[winIdx]
	if len(window.Tabs) == 0 {
		return types.Tab{}, fmt.Errorf("window %d has no tabs", winIdx+1)
	}

	tabIdx := window.Selected - 1
	if tabIdx < 0 || tabIdx >= len(window.Tabs) {
		tabIdx = 0
		for i, t := range window.Tabs {
			if t.LastAccessed > window.Tabs[tabIdx].LastAccessed {
				tabIdx = i
			}
		}
	}
	rt := window.Tabs[tabIdx]
	if len(rt.Entries) == 0 {
		return types.Tab{}, fmt.Errorf("selected tab has no history entries")
	}

	// index is 1-based; current page is entries[index-1].
	entryIdx := rt.Index - 1
	if entryIdx < 0 || entryIdx >= len(rt.Entries) {
		entryIdx = len(rt.Entries) - 1
	}
	entry := rt.Entries[entryIdx]

	return types.Tab{
		URL:          entry.URL,
		Title:        entry.Title,
		WindowID:     winIdx,
		LastAccessed: time.UnixMilli(rt.LastAccessed),
	}, nil
}

// ReadActiveTab reads the newest session file of a profile directory
// (recovery.jsonlz4 while Firefox runs, previous.jsonlz4 after it quit)
// and returns its active tab.
func ReadActiveTab(profileDir string) (types.Tab, error) {
	path, _, ok := newestSession(profileDir)
	if !ok {
		return types.Tab{}, fmt.Errorf("no session file found in %s", filepath.Join(profileDir, "sessionstore-backups"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Tab{}, fmt.Errorf("read session file: %w", err)
	}

	decompressed, err := DecompressMozLz4(data)
	if err != nil {
		return types.Tab{}, fmt.Errorf("decompress session file: %w", err)
	}

	return ParseActiveTab(decompressed)
}
