// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	DebugMode   bool     `env:"DEBUG_MODE" envDefault:"true"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// InferenceConfig holds local model inference settings
type InferenceConfig struct {
	Host        string        `env:"HOST" envDefault:"http://localhost:11434"`
	Model       string        `env:"MODEL" envDefault:"llama3.1:8b"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"300s"`
	Temperature float32       `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int           `env:"MAX_TOKENS" envDefault:"4000"`
}

// SearchConfig holds web-search enrichment settings. An empty APIKey
// degrades gracefully to the built-in offline insight data.
type SearchConfig struct {
	APIKey  string        `env:"API_KEY"`
	APIURL  string        `env:"API_URL" envDefault:"https://google.serper.dev/search"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Enabled bool          `env:"ENABLED" envDefault:"true"`
}

// ImageConfig holds banner generation settings. An empty APIKey disables
// asset generation entirely.
type ImageConfig struct {
	APIKey  string        `env:"API_KEY"`
	APIURL  string        `env:"API_URL" envDefault:"https://fal.run/fal-ai/flux/schnell"`
	Model   string        `env:"MODEL" envDefault:"fal-ai/flux/schnell"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// ConversationConfig holds state-machine tunables
type ConversationConfig struct {
	MaxAge         time.Duration `env:"MAX_AGE" envDefault:"10h"`
	HistoryWindow  int           `env:"HISTORY_WINDOW" envDefault:"20"`
	EarlyExitWords []string      `env:"EARLY_EXIT_PHRASES" envSeparator:"|" envDefault:"generate now|generate campaign|skip questions|just generate|create campaign|go ahead|proceed"`
}

// LogConfig holds structured logging settings
type LogConfig struct {
	Dir        string `env:"DIR" envDefault:"logs"`
	Level      string `env:"LEVEL" envDefault:"info"`
	Production bool   `env:"PRODUCTION" envDefault:"false"`
}

// Config is the environment-supplied application configuration
type Config struct {
	Server       ServerConfig       `envPrefix:"SERVER_"`
	Inference    InferenceConfig    `envPrefix:"OLLAMA_"`
	Search       SearchConfig       `envPrefix:"SERPER_"`
	Image        ImageConfig        `envPrefix:"FAL_"`
	Conversation ConversationConfig `envPrefix:"CONVERSATION_"`
	Log          LogConfig          `envPrefix:"LOG_"`

	DataDir string `env:"DATA_DIR" envDefault:"data"`
}

// AppConfig is the runtime configuration, a merge of the environment
// config and the LLM settings persisted under the data dir. The LLM
// section is editable at runtime through the config endpoint.
type AppConfig struct {
	Config

	LLMProvider string            `json:"llm_provider"`
	LLMConfig   map[string]string `json:"llm_config"`
}

// Load reads the environment (and an optional .env file) into a Config
func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	for _, dir := range []string{cfg.DataDir, cfg.Log.Dir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return &cfg, nil
}

// persistedLLM is the slice of AppConfig saved to disk
type persistedLLM struct {
	LLMProvider string            `json:"llm_provider"`
	LLMConfig   map[string]string `json:"llm_config"`
}

// InitConfig loads the environment config, merges any persisted LLM
// settings from the data dir and installs the result as the current
// configuration
func InitConfig() error {
	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	configFile = filepath.Join(baseConfig.DataDir, "config.json")

	currentConfig = &AppConfig{
		Config:      *baseConfig,
		LLMProvider: "ollama",
		LLMConfig: map[string]string{
			"host":          baseConfig.Inference.Host,
			"default_model": baseConfig.Inference.Model,
		},
	}

	if data, err := os.ReadFile(configFile); err == nil {
		var saved persistedLLM
		if json.Unmarshal(data, &saved) == nil && saved.LLMProvider != "" {
			currentConfig.LLMProvider = saved.LLMProvider
			if saved.LLMConfig != nil {
				currentConfig.LLMConfig = saved.LLMConfig
			}
		}
	}

	return saveLocked()
}

// GetCurrentConfig returns a copy of the current configuration
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		baseConfig, _ := Load()
		if baseConfig == nil {
			baseConfig = &Config{}
		}
		return &AppConfig{
			Config:      *baseConfig,
			LLMProvider: "ollama",
			LLMConfig: map[string]string{
				"host":          baseConfig.Inference.Host,
				"default_model": baseConfig.Inference.Model,
			},
		}
	}

	cp := *currentConfig
	cp.LLMConfig = make(map[string]string, len(currentConfig.LLMConfig))
	for k, v := range currentConfig.LLMConfig {
		cp.LLMConfig[k] = v
	}
	return &cp
}

// UpdateLLMConfig replaces the runtime LLM settings and persists them
func UpdateLLMConfig(provider string, llmConfig map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("configuration not initialized")
	}

	currentConfig.LLMProvider = provider
	currentConfig.LLMConfig = llmConfig

	return saveLocked()
}

// saveLocked persists the LLM section; callers hold configMutex
func saveLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("no configuration to save")
	}

	dir := filepath.Dir(configFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(persistedLLM{
		LLMProvider: currentConfig.LLMProvider,
		LLMConfig:   currentConfig.LLMConfig,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(configFile, data, 0o644)
}
