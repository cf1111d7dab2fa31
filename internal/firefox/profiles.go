package firefox

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/lotas/readless/internal/types"
)

// sessionFiles are tried in order: the running session, then the last one.
var sessionFiles = []string{"recovery.jsonlz4", "previous.jsonlz4"}

// FirefoxDirs returns the directories that may hold profiles.ini on this
// platform: the regular install first, then Snap and Flatpak.
func FirefoxDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	switch runtime.GOOS {
	case "linux":
		return []string{
			filepath.Join(home, ".mozilla", "firefox"),
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox"),
			filepath.Join(home, ".var", "app", "org.mozilla.firefox", ".mozilla", "firefox"),
		}
	case "darwin":
		return []string{filepath.Join(home, "Library", "Application Support", "Firefox")}
	default:
		return nil
	}
}

type iniProfile struct {
	name     string
	path     string
	relative bool
	def      bool
}

// parseProfilesINI reads the Profile sections of profiles.ini. Paths are
// resolved against firefoxDir. A profile named by an Install section's
// Default key counts as default, like one marked Default=1.
func parseProfilesINI(r io.Reader, firefoxDir string) ([]types.Profile, error) {
	var (
		sections   []iniProfile
		installDef = map[string]bool{}
		current    *iniProfile
		inInstall  bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if current != nil {
				sections = append(sections, *current)
				current = nil
			}
			section := line[1 : len(line)-1]
			inInstall = strings.HasPrefix(section, "Install")
			if strings.HasPrefix(section, "Profile") {
				current = &iniProfile{}
			}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if inInstall {
			if key == "Default" {
				installDef[value] = true
			}
			continue
		}
		if current == nil {
			continue
		}
		switch key {
		case "Name":
			current.name = value
		case "Path":
			current.path = value
		case "IsRelative":
			current.relative = value == "1"
		case "Default":
			current.def = value == "1"
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan profiles.ini: %w", err)
	}

	profiles := make([]types.Profile, 0, len(sections))
	for _, s := range sections {
		p := types.Profile{
			Name:      s.name,
			Path:      s.path,
			IsDefault: s.def || installDef[s.path],
		}
		if s.relative {
			p.Path = filepath.Join(firefoxDir, s.path)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// newestSession returns the most recently written session file of a
// profile directory.
func newestSession(profileDir string) (string, time.Time, bool) {
	var (
		best    string
		bestMod time.Time
	)
	for _, name := range sessionFiles {
		p := filepath.Join(profileDir, "sessionstore-backups", name)
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) {
			best, bestMod = p, info.ModTime()
		}
	}
	return best, bestMod, best != ""
}

// LoadProfiles reads profiles.ini in dir and keeps the profiles that have
// a session file.
func LoadProfiles(dir string) ([]types.Profile, error) {
	f, err := os.Open(filepath.Join(dir, "profiles.ini"))
	if err != nil {
		return nil, fmt.Errorf("open profiles.ini: %w", err)
	}
	defer f.Close()

	all, err := parseProfilesINI(f, dir)
	if err != nil {
		return nil, err
	}
	var usable []types.Profile
	for _, p := range all {
		if session, mod, ok := newestSession(p.Path); ok {
			p.Session, p.SavedAt = session, mod
			usable = append(usable, p)
		}
	}
	return usable, nil
}

// DiscoverProfiles collects the usable profiles of every Firefox install
// found on this system.
func DiscoverProfiles() ([]types.Profile, error) {
	var (
		profiles []types.Profile
		found    bool
	)
	for _, dir := range FirefoxDirs() {
		ps, err := LoadProfiles(dir)
		if err != nil {
			continue
		}
		found = true
		profiles = append(profiles, ps...)
	}
	if !found {
		return nil, fmt.Errorf("could not find Firefox profiles.ini for %s", runtime.GOOS)
	}
	return profiles, nil
}

// ResolveProfile discovers profiles and picks one by name. See pickProfile
// for the choice when name is empty.
func ResolveProfile(name string) (types.Profile, error) {
	profiles, err := DiscoverProfiles()
	if err != nil {
		return types.Profile{}, fmt.Errorf("discover profiles: %w", err)
	}
	return pickProfile(profiles, name)
}

// pickProfile returns the profile called name. With no name it returns the
// profile whose session was written last, which is the one a running
// browser uses; ties go to a default profile, then to list order.
func pickProfile(profiles []types.Profile, name string) (types.Profile, error) {
	if len(profiles) == 0 {
		return types.Profile{}, fmt.Errorf("no Firefox profiles with a session file found")
	}
	if name != "" {
		for _, p := range profiles {
			if p.Name == name {
				return p, nil
			}
		}
		return types.Profile{}, fmt.Errorf("profile %q not found", name)
	}

	best := profiles[0]
	for _, p := range profiles[1:] {
		switch {
		case p.SavedAt.After(best.SavedAt):
			best = p
		case p.SavedAt.Equal(best.SavedAt) && p.IsDefault && !best.IsDefault:
			best = p
		}
	}
	return best, nil
}
