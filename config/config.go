package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the assistant service.
type Config struct {
	Vector    VectorConfig    `yaml:"vector"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Agent     AgentConfig     `yaml:"agent"`
	Database  DatabaseConfig  `yaml:"database"`
	WebSearch WebSearchConfig `yaml:"web_search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// VectorConfig locates the persisted vector index groups.
type VectorConfig struct {
	// BaseDir contains one subdirectory per store group.
	BaseDir string `yaml:"base_dir"`
	// Modes maps a conversation mode to its ordered group directory names.
	Modes map[string][]string `yaml:"modes"`
}

// GroupRetrieve overrides retrieval knobs for a single store group. Fields
// are pointers so an explicit zero is distinguishable from unset; setting
// score_threshold: 0 disables the threshold for that group.
type GroupRetrieve struct {
	TopK           *int     `yaml:"top_k"`
	ScoreThreshold *float64 `yaml:"score_threshold"`
}

// GroupKnobs holds the resolved retrieval settings for one group.
type GroupKnobs struct {
	TopK           int
	ScoreThreshold float64
}

// RetrieveConfig holds retrieval configuration. Per-group values override
// the defaults; the split exists because groups were tuned independently.
type RetrieveConfig struct {
	TopK           int                      `yaml:"top_k"`
	ScoreThreshold float64                  `yaml:"score_threshold"`
	Groups         map[string]GroupRetrieve `yaml:"groups"`
}

// ForGroup resolves the effective knobs for a group, falling back to the
// top-level defaults for every unset field.
func (r RetrieveConfig) ForGroup(group string) GroupKnobs {
	k := GroupKnobs{TopK: r.TopK, ScoreThreshold: r.ScoreThreshold}
	g, ok := r.Groups[group]
	if !ok {
		return k
	}
	if g.TopK != nil {
		k.TopK = *g.TopK
	}
	if g.ScoreThreshold != nil {
		k.ScoreThreshold = *g.ScoreThreshold
	}
	return k
}

// OpenAIConfig holds the chat and embedding service configuration.
type OpenAIConfig struct {
	APIKeyEnv      string  `yaml:"api_key_env"` // Environment variable for API key
	BaseURL        string  `yaml:"base_url"`
	ChatModel      string  `yaml:"chat_model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// AgentConfig holds per-turn orchestration knobs.
type AgentConfig struct {
	// MaxToolCalls bounds tool executions in one turn so the loop
	// terminates even if the model keeps requesting tools.
	MaxToolCalls    int    `yaml:"max_tool_calls"`
	DefaultMode     string `yaml:"default_mode"`
	DefaultLanguage string `yaml:"default_language"`
	DigestDays      int    `yaml:"digest_days"`
	DigestLimit     int    `yaml:"digest_limit"`
}

// DatabaseConfig locates the sqlite database backing the record and
// community stores.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WebSearchConfig holds the best-effort web search configuration.
type WebSearchConfig struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Vector: VectorConfig{
			BaseDir: "vector_db",
			Modes: map[string][]string{
				"mom":       {"mom_docs", "common_docs"},
				"doctor":    {"doctor_docs", "common_docs"},
				"nutrition": {"nutrient_docs", "common_docs"},
			},
		},
		Retrieve: RetrieveConfig{
			TopK:           4,
			ScoreThreshold: 0.25,
			Groups: map[string]GroupRetrieve{
				"common_docs": {TopK: intPtr(3)},
			},
		},
		OpenAI: OpenAIConfig{
			APIKeyEnv:      "OPENAI_API_KEY",
			BaseURL:        "https://api.openai.com/v1",
			ChatModel:      "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.2,
			MaxTokens:      800,
			TimeoutSeconds: 60,
		},
		Agent: AgentConfig{
			MaxToolCalls:    6,
			DefaultMode:     "mom",
			DefaultLanguage: "ko",
			DigestDays:      7,
			DigestLimit:     50,
		},
		Database: DatabaseConfig{
			Path: "todoc.db",
		},
		WebSearch: WebSearchConfig{
			Enabled:        true,
			TimeoutSeconds: 6,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for todoc.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "todoc.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".todoc", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GroupDir resolves a store group name to its directory under BaseDir.
func (c *Config) GroupDir(group string) string {
	return filepath.Join(c.Vector.BaseDir, group)
}

func intPtr(v int) *int { return &v }
