package firefox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lotas/readless/internal/types"
)

const testProfilesINI = `[General]
StartWithLastProfile=1
Version=2

[Profile0]
Name=default-release
IsRelative=1
Path=abc123.default-release

[Profile1]
Name=dev-edition
IsRelative=0
Path=/abs/dev
Default=1

[Profile2]
Name=old
IsRelative=1
Path=zzz.old

[Install308046B0AF4A39CB]
Default=abc123.default-release
Locked=1
`

// writeSession creates a session file in profileDir with the given mtime.
func writeSession(t *testing.T, profileDir, name string, mod time.Time) string {
	t.Helper()
	dir := filepath.Join(profileDir, "sessionstore-backups")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("dummy"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(p, mod, mod); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseProfilesINI(t *testing.T) {
	profiles, err := parseProfilesINI(strings.NewReader(testProfilesINI), "/ff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}

	tests := []struct {
		name      string
		path      string
		isDefault bool
	}{
		{"default-release", filepath.Join("/ff", "abc123.default-release"), true}, // via Install section
		{"dev-edition", "/abs/dev", true},
		{"old", filepath.Join("/ff", "zzz.old"), false},
	}
	for i, tt := range tests {
		p := profiles[i]
		if p.Name != tt.name {
			t.Errorf("profile %d: name = %q, want %q", i, p.Name, tt.name)
		}
		if p.Path != tt.path {
			t.Errorf("profile %d: path = %q, want %q", i, p.Path, tt.path)
		}
		if p.IsDefault != tt.isDefault {
			t.Errorf("profile %d: default = %v, want %v", i, p.IsDefault, tt.isDefault)
		}
	}
}

func TestLoadProfiles_KeepsProfilesWithSessions(t *testing.T) {
	dir := t.TempDir()
	ini := `[Profile0]
Name=used
IsRelative=1
Path=used

[Profile1]
Name=empty
IsRelative=1
Path=empty
`
	if err := os.WriteFile(filepath.Join(dir, "profiles.ini"), []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}
	mod := time.Now().Add(-time.Hour).Truncate(time.Second)
	session := writeSession(t, filepath.Join(dir, "used"), "previous.jsonlz4", mod)
	os.MkdirAll(filepath.Join(dir, "empty"), 0o755)

	profiles, err := LoadProfiles(dir)
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 usable profile, got %d", len(profiles))
	}
	if profiles[0].Name != "used" {
		t.Errorf("name = %q", profiles[0].Name)
	}
	if profiles[0].Session != session {
		t.Errorf("session = %q, want %q", profiles[0].Session, session)
	}
	if !profiles[0].SavedAt.Equal(mod) {
		t.Errorf("saved at = %v, want %v", profiles[0].SavedAt, mod)
	}
}

func TestLoadProfiles_MissingINI(t *testing.T) {
	if _, err := LoadProfiles(t.TempDir()); err == nil {
		t.Error("expected error without profiles.ini")
	}
}

func TestNewestSession(t *testing.T) {
	profileDir := t.TempDir()
	now := time.Now()
	writeSession(t, profileDir, "recovery.jsonlz4", now.Add(-2*time.Hour))
	previous := writeSession(t, profileDir, "previous.jsonlz4", now.Add(-time.Minute))

	got, _, ok := newestSession(profileDir)
	if !ok {
		t.Fatal("expected a session file")
	}
	if got != previous {
		t.Errorf("newestSession = %q, want %q", got, previous)
	}

	if _, _, ok := newestSession(t.TempDir()); ok {
		t.Error("expected no session file in an empty profile")
	}
}

func TestFirefoxDirs(t *testing.T) {
	for _, dir := range FirefoxDirs() {
		if !filepath.IsAbs(dir) {
			t.Errorf("expected absolute dir, got %q", dir)
		}
	}
}

func TestPickProfile(t *testing.T) {
	now := time.Now()
	profiles := []types.Profile{
		{Name: "work", Path: "/p/work", SavedAt: now.Add(-time.Hour)},
		{Name: "default-release", Path: "/p/default", IsDefault: true, SavedAt: now.Add(-2 * time.Hour)},
		{Name: "running", Path: "/p/running", SavedAt: now},
	}

	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "running", false},
		{"work", "work", false},
		{"missing", "", true},
	}
	for _, tt := range tests {
		got, err := pickProfile(profiles, tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("pickProfile(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("pickProfile(%q): %v", tt.name, err)
			continue
		}
		if got.Name != tt.want {
			t.Errorf("pickProfile(%q) = %q, want %q", tt.name, got.Name, tt.want)
		}
	}

	tied := []types.Profile{
		{Name: "a", SavedAt: now},
		{Name: "b", IsDefault: true, SavedAt: now},
	}
	if got, _ := pickProfile(tied, ""); got.Name != "b" {
		t.Errorf("tie should go to the default profile, got %q", got.Name)
	}

	if _, err := pickProfile(nil, ""); err == nil {
		t.Error("expected error for empty profile list")
	}
}
