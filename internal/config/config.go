// Package config handles workspace and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/rexplorer/internal/collection"
)

// Config is per-workspace configuration stored in .rex/config.json. Set
// fields override the global config.
type Config struct {
	IterationLimit   int    `json:"iteration_limit,omitempty"`
	CollectionKey    string `json:"collection_key,omitempty"`    // title or title_author_year
	LiteratureSource string `json:"literature_source,omitempty"` // metaso or asta
}

const (
	RexDir      = ".rex"
	ConfigFile  = "config.json"
	SessionFile = "session.json"
	HistoryFile = "history.jsonl"
	CacheDir    = "cache"
	DBFile      = "collection.db"
	LitFile     = "literature.jsonl"
)

// Literature sources.
const (
	SourceMetaso = "metaso"
	SourceASTA   = "asta"
)

// ValidSources lists the supported literature sources.
var ValidSources = []string{SourceMetaso, SourceASTA}

// RexPath returns the path to the .rex directory from a root path.
func RexPath(root string) string {
	return filepath.Join(root, RexDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RexDir, ConfigFile)
}

// SessionPath returns the path to the saved session from a root path.
func SessionPath(root string) string {
	return filepath.Join(root, RexDir, SessionFile)
}

// HistoryPath returns the path to the action history from a root path.
func HistoryPath(root string) string {
	return filepath.Join(root, RexDir, HistoryFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, RexDir, CacheDir)
}

// DBPath returns the path to the collection index from a root path.
func DBPath(root string) string {
	return filepath.Join(root, RexDir, CacheDir, DBFile)
}

// LiteraturePath returns the path to the persisted literature cache from a
// root path.
func LiteraturePath(root string) string {
	return filepath.Join(root, RexDir, CacheDir, LitFile)
}

// IsWorkspace checks if the given path contains a rex workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(RexPath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a rex workspace.
// Returns the workspace root path or an error if not found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a rex workspace (no .rex directory found; run 'rex init')")
		}
		abs = parent
	}
}

// Load reads configuration from the workspace at the given root. A missing
// config file yields an empty config.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the workspace at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks every set field.
func (c *Config) Validate() error {
	if err := ValidateIterationLimit(c.IterationLimit); err != nil {
		return err
	}
	if err := ValidateCollectionKey(c.CollectionKey); err != nil {
		return err
	}
	return ValidateSource(c.LiteratureSource)
}

// ValidateIterationLimit rejects negative limits. Zero means unset.
func ValidateIterationLimit(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid iteration_limit: %d (must be positive)", n)
	}
	return nil
}

// ValidateCollectionKey checks the paper identity strategy name.
func ValidateCollectionKey(name string) error {
	_, err := collection.KeyFuncByName(name)
	return err
}

// ValidateSource checks the literature source name. Empty is allowed.
func ValidateSource(source string) error {
	if source == "" {
		return nil
	}
	for _, valid := range ValidSources {
		if source == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid literature_source: %s (valid: %v)", source, ValidSources)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
