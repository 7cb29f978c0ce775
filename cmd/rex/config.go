package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/rexplorer/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set workspace configuration values",
	Long: `Get or set workspace configuration values.

Usage:
  rex config                           # Show resolved settings
  rex config iteration-limit           # Get specific value
  rex config iteration-limit 40        # Set value
  rex config literature-source asta    # Switch literature source

Keys:
  iteration-limit    Operation budget per session
  collection-key     Paper identity: title or title_author_year
  literature-source  metaso or asta

API keys, provider and model live in the global config
(~/.config/rex/config.yml) or the environment.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// SettingsResponse shows resolved settings without secrets.
type SettingsResponse struct {
	Provider         string `json:"provider"`
	Model            string `json:"model,omitempty"`
	LiteratureSource string `json:"literature_source"`
	IterationLimit   int    `json:"iteration_limit"`
	CollectionKey    string `json:"collection_key,omitempty"`
	ActionTimeout    string `json:"action_timeout,omitempty"`
	GeminiKeySet     bool   `json:"gemini_api_key_set"`
	LiteratureKeySet bool   `json:"literature_api_key_set"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()

	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if len(args) == 0 {
		showSettings(cfg)
		return nil
	}

	key := normalizeKey(args[0])
	if len(args) == 1 {
		value, ok := configValue(cfg, key)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
		}
		return nil
	}

	value := args[1]
	switch key {
	case "iteration-limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			exitWithError(ExitConfigError, "iteration-limit must be a number: %q", value)
		}
		if err := config.ValidateIterationLimit(n); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.IterationLimit = n
	case "collection-key":
		if err := config.ValidateCollectionKey(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.CollectionKey = value
	case "literature-source":
		if err := config.ValidateSource(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.LiteratureSource = value
	default:
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

func showSettings(cfg *config.Config) {
	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	s, err := config.Resolve(global, cfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	resp := SettingsResponse{
		Provider:         s.Provider,
		Model:            s.Model,
		LiteratureSource: s.LiteratureSource,
		IterationLimit:   s.IterationLimit,
		CollectionKey:    s.CollectionKey,
		GeminiKeySet:     s.GeminiAPIKey != "",
	}
	if s.ActionTimeout > 0 {
		resp.ActionTimeout = s.ActionTimeout.String()
	}
	switch s.LiteratureSource {
	case config.SourceASTA:
		resp.LiteratureKeySet = s.ASTAAPIKey != ""
	default:
		resp.LiteratureKeySet = s.MetasoAPIKey != ""
	}

	if !humanOutput {
		outputJSON(resp)
		return
	}
	fmt.Printf("provider:          %s\n", resp.Provider)
	if resp.Model != "" {
		fmt.Printf("model:             %s\n", resp.Model)
	}
	fmt.Printf("literature-source: %s\n", resp.LiteratureSource)
	fmt.Printf("iteration-limit:   %d\n", resp.IterationLimit)
	fmt.Printf("collection-key:    %s\n", resp.CollectionKey)
	if resp.ActionTimeout != "" {
		fmt.Printf("action-timeout:    %s\n", resp.ActionTimeout)
	}
	if !resp.GeminiKeySet && resp.Provider == config.ProviderGemini {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
	}
}

// configValue reads one workspace key.
func configValue(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "iteration-limit":
		return strconv.Itoa(cfg.IterationLimit), true
	case "collection-key":
		return cfg.CollectionKey, true
	case "literature-source":
		return cfg.LiteratureSource, true
	default:
		return "", false
	}
}

// normalizeKey converts key formats (iteration-limit, iteration_limit) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
