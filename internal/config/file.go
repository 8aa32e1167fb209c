package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	RAGConfigPath    string   `toml:"rag_config_path"`
	ProbeTimeoutSecs *int     `toml:"probe_timeout_seconds"`
	Model            string   `toml:"model"`
	MaxTokens        *int     `toml:"max_tokens"`
	Temperature      *float64 `toml:"temperature"`
	OllamaBaseURL    string   `toml:"ollama_base_url"`
	OllamaModel      string   `toml:"ollama_model"`
	BackupKeep       *int     `toml:"backup_keep"`
}

// ConfigPath returns the path to the config file (~/.ragctl/config.toml).
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	cfg := &FileConfig{}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	// If config already exists, do nothing
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	// Ensure directory exists
	if err := EnsureDataDir(); err != nil {
		return err
	}

	defaultConfig := `# ragctl Configuration

# Path to the HybridRAG application config that mode/feature commands edit
# rag_config_path = "config/default_config.yaml"

# Live probe settings
# probe_timeout_seconds = 60
# model = "gpt-35-turbo"       # only sent to non-Azure endpoints
# max_tokens = 50
# temperature = 0.0

# Offline mode (local Ollama)
# ollama_base_url = "http://localhost:11434"
# ollama_model = "llama3"

# Housekeeping
# backup_keep = 5
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
