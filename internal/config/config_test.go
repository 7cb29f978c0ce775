package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/ws"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"RexPath", RexPath, "/test/ws/.rex"},
		{"ConfigPath", ConfigPath, "/test/ws/.rex/config.json"},
		{"SessionPath", SessionPath, "/test/ws/.rex/session.json"},
		{"HistoryPath", HistoryPath, "/test/ws/.rex/history.jsonl"},
		{"CachePath", CachePath, "/test/ws/.rex/cache"},
		{"DBPath", DBPath, "/test/ws/.rex/cache/collection.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsWorkspace(t *testing.T) {
	tmpDir := t.TempDir()

	if IsWorkspace(tmpDir) {
		t.Error("IsWorkspace() = true for plain directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, RexDir), 0755); err != nil {
		t.Fatalf("Failed to create .rex: %v", err)
	}

	if !IsWorkspace(tmpDir) {
		t.Error("IsWorkspace() = false for workspace directory")
	}
}

func TestIsWorkspace_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, RexDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .rex file: %v", err)
	}

	if IsWorkspace(tmpDir) {
		t.Error("IsWorkspace() = true when .rex is a file")
	}
}

func TestFindWorkspace(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, "ws")
	nestedDir := filepath.Join(wsDir, "notes", "drafts")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.Mkdir(filepath.Join(wsDir, RexDir), 0755); err != nil {
		t.Fatalf("Failed to create .rex: %v", err)
	}

	for _, start := range []string{nestedDir, wsDir} {
		found, err := FindWorkspace(start)
		if err != nil {
			t.Fatalf("FindWorkspace(%q) error = %v", start, err)
		}
		if found != wsDir {
			t.Errorf("FindWorkspace(%q) = %q, want %q", start, found, wsDir)
		}
	}
}

func TestFindWorkspace_NotFound(t *testing.T) {
	if _, err := FindWorkspace(t.TempDir()); err == nil {
		t.Error("FindWorkspace() should return error when no workspace found")
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(RexPath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .rex: %v", err)
	}

	cfg := &Config{
		IterationLimit:   40,
		CollectionKey:    "title_author_year",
		LiteratureSource: SourceASTA,
	}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestLoad_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(RexPath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .rex: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != (Config{}) {
		t.Errorf("Load() = %+v, want empty config", cfg)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(RexPath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .rex: %v", err)
	}
	if err := os.WriteFile(ConfigPath(tmpDir), []byte("not json"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load() should return error for invalid JSON")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"all set", Config{IterationLimit: 5, CollectionKey: "title", LiteratureSource: SourceMetaso}, false},
		{"negative limit", Config{IterationLimit: -1}, true},
		{"bad key", Config{CollectionKey: "doi"}, true},
		{"bad source", Config{LiteratureSource: "arxiv"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~/notes", filepath.Join(home, "notes")},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.path); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
