package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matsen/rexplorer/internal/budget"
)

// GlobalConfig represents configuration stored in ~/.config/rex/config.yml.
type GlobalConfig struct {
	Provider         string `yaml:"provider,omitempty"` // gemini or claude
	Model            string `yaml:"model,omitempty"`
	GeminiAPIKey     string `yaml:"gemini_api_key,omitempty"`
	LiteratureSource string `yaml:"literature_source,omitempty"`
	MetasoAPIKey     string `yaml:"metaso_api_key,omitempty"`
	ASTAAPIKey       string `yaml:"asta_api_key,omitempty"`
	IterationLimit   int    `yaml:"iteration_limit,omitempty"`
	CollectionKey    string `yaml:"collection_key,omitempty"`
	ActionTimeout    string `yaml:"action_timeout,omitempty"` // Go duration, e.g. "90s"
	LogMode          string `yaml:"log_mode,omitempty"`       // dev, prod or quiet
	LiteratureSize   int    `yaml:"literature_size,omitempty"`
	CacheSize        int    `yaml:"cache_size,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "rex"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Model providers.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/rex/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Settings is the effective configuration: global config, then workspace
// config, then environment.
type Settings struct {
	Provider         string
	Model            string
	GeminiAPIKey     string
	LiteratureSource string
	MetasoAPIKey     string
	ASTAAPIKey       string
	IterationLimit   int
	CollectionKey    string
	ActionTimeout    time.Duration
	LogMode          string
	LiteratureSize   int
	CacheSize        int
}

// Resolve merges the global config, the workspace config (nil for none)
// and environment overrides, and validates the result.
func Resolve(global *GlobalConfig, ws *Config) (Settings, error) {
	if global == nil {
		global = &GlobalConfig{}
	}
	s := Settings{
		Provider:         global.Provider,
		Model:            global.Model,
		GeminiAPIKey:     global.GeminiAPIKey,
		LiteratureSource: global.LiteratureSource,
		MetasoAPIKey:     global.MetasoAPIKey,
		ASTAAPIKey:       global.ASTAAPIKey,
		IterationLimit:   global.IterationLimit,
		CollectionKey:    global.CollectionKey,
		LogMode:          global.LogMode,
		LiteratureSize:   global.LiteratureSize,
		CacheSize:        global.CacheSize,
	}

	if global.ActionTimeout != "" {
		d, err := time.ParseDuration(global.ActionTimeout)
		if err != nil || d < 0 {
			return Settings{}, fmt.Errorf("invalid action_timeout: %q", global.ActionTimeout)
		}
		s.ActionTimeout = d
	}

	if ws != nil {
		if ws.IterationLimit != 0 {
			s.IterationLimit = ws.IterationLimit
		}
		if ws.CollectionKey != "" {
			s.CollectionKey = ws.CollectionKey
		}
		if ws.LiteratureSource != "" {
			s.LiteratureSource = ws.LiteratureSource
		}
	}

	if err := applyEnv(&s); err != nil {
		return Settings{}, err
	}

	if s.Provider == "" {
		s.Provider = ProviderGemini
	}
	if s.Provider != ProviderGemini && s.Provider != ProviderClaude {
		return Settings{}, fmt.Errorf("invalid provider: %s (valid: %s, %s)", s.Provider, ProviderGemini, ProviderClaude)
	}
	if s.LiteratureSource == "" {
		s.LiteratureSource = SourceMetaso
	}
	if s.IterationLimit == 0 {
		s.IterationLimit = budget.DefaultLimit
	}

	if err := ValidateIterationLimit(s.IterationLimit); err != nil {
		return Settings{}, err
	}
	if err := ValidateCollectionKey(s.CollectionKey); err != nil {
		return Settings{}, err
	}
	if err := ValidateSource(s.LiteratureSource); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyEnv(s *Settings) error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		s.GeminiAPIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" && s.GeminiAPIKey == "" {
		s.GeminiAPIKey = v
	}
	if v := os.Getenv("METASO_API_KEY"); v != "" {
		s.MetasoAPIKey = v
	}
	if v := os.Getenv("ASTA_API_KEY"); v != "" {
		s.ASTAAPIKey = v
	}
	if v := os.Getenv("REX_ITERATION_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REX_ITERATION_LIMIT: %q", v)
		}
		s.IterationLimit = n
	}
	return nil
}

// HelpfulConfigMessage explains where to put API keys.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`Tip: create %s to configure rex:
  mkdir -p %s
  cat > %s <<EOF
  provider: gemini
  gemini_api_key: ...
  literature_source: metaso
  metaso_api_key: ...
  EOF

Keys can also come from GEMINI_API_KEY, METASO_API_KEY and ASTA_API_KEY
(a .env file in the working directory is read too).`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
