package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds ragctl settings loaded from environment and file.
// Priority: CLI flags → Env vars (RAGCTL_*) → config.toml → defaults
type Config struct {
	// RAGConfigPath locates the HybridRAG application YAML config that
	// the mode and feature commands edit.
	RAGConfigPath string

	// ProbeTimeout bounds one live probe call.
	ProbeTimeout time.Duration

	// Probe payload defaults
	Model       string
	MaxTokens   int
	Temperature float64

	// Offline-mode backend
	OllamaBaseURL string
	OllamaModel   string

	// BackupKeep is how many backups to retain per file.
	BackupKeep int
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() *Config {
	fileConfig, _ := LoadFile() // Ignore error, use defaults

	return &Config{
		RAGConfigPath: getEnvOrFile("RAGCTL_RAG_CONFIG", fileConfig.RAGConfigPath, "config/default_config.yaml"),
		ProbeTimeout:  time.Duration(getEnvIntOrFile("RAGCTL_PROBE_TIMEOUT", fileConfig.ProbeTimeoutSecs, 60)) * time.Second,
		Model:         getEnvOrFile("RAGCTL_MODEL", fileConfig.Model, "gpt-35-turbo"),
		MaxTokens:     getEnvIntOrFile("RAGCTL_MAX_TOKENS", fileConfig.MaxTokens, 50),
		Temperature:   getEnvFloatOrFile("RAGCTL_TEMPERATURE", fileConfig.Temperature, 0.0),
		OllamaBaseURL: getEnvOrFile("RAGCTL_OLLAMA_URL", fileConfig.OllamaBaseURL, "http://localhost:11434"),
		OllamaModel:   getEnvOrFile("RAGCTL_OLLAMA_MODEL", fileConfig.OllamaModel, "llama3"),
		BackupKeep:    getEnvIntOrFile("RAGCTL_BACKUP_KEEP", fileConfig.BackupKeep, 5),
	}
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvIntOrFile returns env int, file int, or default (in priority order)
func getEnvIntOrFile(key string, fileValue *int, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getEnvFloatOrFile returns env float, file float, or default (in priority order)
func getEnvFloatOrFile(key string, fileValue *float64, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}
