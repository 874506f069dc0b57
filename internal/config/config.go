/*
Package config handles loading, saving, and validating notesort configuration.

Configuration is stored in ~/.notesort.yaml:

  workspace: /home/me/notes
  inbox: inbox
  data_dir: /home/me/.notesort
  provider:
    base_url: http://localhost:11434
    chat_model: llama3.1
    embed_model: nomic-embed-text
    dimension: 768
  confidence_threshold: 0.7
  top_k: 5
  min_content_length: 20
  settle_seconds: 2
  embed_cache_size: 256
  excluded_folders: [".obsidian", ".git", ".trash"]
  extensions: [".md", ".txt"]
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultFileName is the config file name under the user's home directory.
const DefaultFileName = ".notesort.yaml"

// Config represents the root configuration structure.
type Config struct {
	// Workspace is the note workspace root.
	Workspace string `yaml:"workspace"`

	// Inbox is the unsorted-notes directory, relative to Workspace.
	Inbox string `yaml:"inbox"`

	// DataDir holds the database and the vector snapshot.
	DataDir string `yaml:"data_dir"`

	Provider ProviderConfig `yaml:"provider"`

	// ConfidenceThreshold is the minimum suggestion confidence for an
	// automatic move.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// TopK is the number of similar notes retrieved per classification.
	TopK int `yaml:"top_k"`

	// MinContentLength is the minimum character count for a note to be
	// classified.
	MinContentLength int `yaml:"min_content_length"`

	// SettleSeconds is the watch-mode debounce window.
	SettleSeconds int `yaml:"settle_seconds"`

	// EmbedCacheSize bounds the in-memory embedding cache.
	EmbedCacheSize int `yaml:"embed_cache_size"`

	ExcludedFolders []string `yaml:"excluded_folders"`
	Extensions      []string `yaml:"extensions"`
}

// ProviderConfig configures the model provider endpoint.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`

	// APIKey may be left empty; the NOTESORT_API_KEY environment
	// variable takes precedence either way.
	APIKey string `yaml:"api_key,omitempty"`

	ChatModel  string `yaml:"chat_model"`
	EmbedModel string `yaml:"embed_model"`
	Dimension  int    `yaml:"dimension"`
}

// Default returns a config populated with defaults. Workspace is left empty
// and must be set by the user.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Inbox:   "inbox",
		DataDir: filepath.Join(home, ".notesort"),
		Provider: ProviderConfig{
			BaseURL:    "http://localhost:11434",
			ChatModel:  "llama3.1",
			EmbedModel: "nomic-embed-text",
			Dimension:  768,
		},
		ConfidenceThreshold: 0.7,
		TopK:                5,
		MinContentLength:    20,
		SettleSeconds:       2,
		EmbedCacheSize:      256,
		ExcludedFolders:     []string{".obsidian", ".git", ".trash"},
		Extensions:          []string{".md", ".txt"},
	}
}

// DefaultPath returns ~/.notesort.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// EffectiveAPIKey returns the API key to use, preferring the environment.
func (p *ProviderConfig) EffectiveAPIKey() string {
	if key := os.Getenv("NOTESORT_API_KEY"); key != "" {
		return key
	}
	return p.APIKey
}

// SettleWindow returns the debounce window as a duration.
func (c *Config) SettleWindow() time.Duration {
	return time.Duration(c.SettleSeconds) * time.Second
}

// InboxPath returns the absolute inbox path.
func (c *Config) InboxPath() string {
	if filepath.IsAbs(c.Inbox) {
		return c.Inbox
	}
	return filepath.Join(c.Workspace, c.Inbox)
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "notesort.db")
}

// SnapshotPath returns the vector snapshot location.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "vectors.json")
}

// Validate checks the config for values that would break classification.
func (c *Config) Validate() error {
	if c.Workspace == "" {
		return &InvalidConfigError{
			Message: "workspace is not set",
			Hint:    "Set 'workspace' to your notes directory",
		}
	}
	if c.Provider.BaseURL == "" {
		return &InvalidConfigError{
			Message: "provider.base_url is not set",
			Hint:    "Point base_url at an OpenAI-compatible endpoint",
		}
	}
	if c.Provider.Dimension <= 0 {
		return &InvalidConfigError{
			Message: fmt.Sprintf("provider.dimension must be positive, got %d", c.Provider.Dimension),
			Hint:    "Use the embedding dimension your model produces (e.g. 768)",
		}
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return &InvalidConfigError{
			Message: fmt.Sprintf("confidence_threshold must be in [0, 1], got %.2f", c.ConfidenceThreshold),
		}
	}
	if c.TopK <= 0 {
		return &InvalidConfigError{
			Message: fmt.Sprintf("top_k must be positive, got %d", c.TopK),
		}
	}
	return nil
}
