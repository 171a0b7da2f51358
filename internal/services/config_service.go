// internal/services/config_service.go
package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Promethia/CampaignForge/internal/config"
	"github.com/Promethia/CampaignForge/internal/errors"
	"github.com/Promethia/CampaignForge/internal/logging"
)

// ConfigChangeSubscriber receives a callback after the LLM configuration
// has been persisted
type ConfigChangeSubscriber interface {
	OnConfigChanged(oldConfig, newConfig *config.AppConfig)
}

// ConfigChangeRecord keeps an in-memory trail of runtime config updates
type ConfigChangeRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Section     string    `json:"section"`
	OldProvider string    `json:"old_provider"`
	NewProvider string    `json:"new_provider"`
}

// ConfigService mediates access to the runtime configuration and
// fans out change notifications to interested services
type ConfigService struct {
	cachedConfig  *config.AppConfig
	lastUpdated   time.Time
	subscribers   []ConfigChangeSubscriber
	changeHistory []ConfigChangeRecord
	mu            sync.RWMutex
}

// NewConfigService creates the config service with a warm cache
func NewConfigService() *ConfigService {
	return &ConfigService{
		cachedConfig:  config.GetCurrentConfig(),
		lastUpdated:   time.Now(),
		subscribers:   make([]ConfigChangeSubscriber, 0),
		changeHistory: make([]ConfigChangeRecord, 0, 32),
	}
}

// Subscribe registers a subscriber for config change notifications
func (s *ConfigService) Subscribe(sub ConfigChangeSubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
}

// GetCurrentConfig returns the cached runtime configuration
func (s *ConfigService) GetCurrentConfig() *config.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cachedConfig == nil {
		return config.GetCurrentConfig()
	}
	return s.cachedConfig
}

// UpdateLLMConfig validates, persists and broadcasts an LLM provider change
func (s *ConfigService) UpdateLLMConfig(provider string, providerConfig map[string]string) error {
	if provider == "" {
		return errors.NewValidationError("provider cannot be empty", nil)
	}
	if providerConfig == nil {
		providerConfig = make(map[string]string)
	}
	if _, ok := providerConfig["default_model"]; !ok {
		switch provider {
		case "ollama":
			providerConfig["default_model"] = "llama3.1:8b"
		case "openrouter":
			providerConfig["default_model"] = "openai/gpt-4o-mini"
		}
	}

	s.mu.Lock()
	oldConfig := s.cachedConfig

	if err := config.UpdateLLMConfig(provider, providerConfig); err != nil {
		s.mu.Unlock()
		return errors.NewProcessingError("persist LLM config", err)
	}

	newConfig := config.GetCurrentConfig()
	s.cachedConfig = newConfig
	s.lastUpdated = time.Now()
	s.changeHistory = append(s.changeHistory, ConfigChangeRecord{
		Timestamp:   s.lastUpdated,
		Section:     "llm",
		OldProvider: oldProvider(oldConfig),
		NewProvider: provider,
	})
	subs := make([]ConfigChangeSubscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.OnConfigChanged(oldConfig, newConfig)
	}

	logging.L().Info("LLM configuration updated",
		zap.String("provider", provider),
		zap.String("model", providerConfig["default_model"]))
	return nil
}

// ChangeHistory returns a copy of the recorded config changes
func (s *ConfigService) ChangeHistory() []ConfigChangeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]ConfigChangeRecord, len(s.changeHistory))
	copy(history, s.changeHistory)
	return history
}

func oldProvider(cfg *config.AppConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.LLMProvider
}
