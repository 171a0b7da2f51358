// internal/services/llm_service.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Promethia/CampaignForge/internal/config"
	"github.com/Promethia/CampaignForge/internal/llm"
	"github.com/Promethia/CampaignForge/internal/logging"
)

// LLMService wraps the active inference provider with readiness
// tracking, a response cache and structured-output helpers
type LLMService struct {
	provider      llm.Provider
	providerName  string
	defaultModel  string
	isReady       bool
	readyState    string
	providerMutex sync.RWMutex

	cache *gocache.Cache
}

// NewLLMService initializes the service from the current configuration.
// A misconfigured provider yields a not-ready service rather than an
// error so the rest of the application can start.
func NewLLMService() *LLMService {
	service := newBaseLLMService()

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		service.readyState = "failed to retrieve configuration"
		return service
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("initialization failed: %v", err)
		return service
	}

	service.provider = provider
	service.providerName = cfg.LLMProvider
	service.defaultModel = cfg.LLMConfig["default_model"]
	service.isReady = true
	service.readyState = "ready"
	return service
}

// NewEmptyLLMService creates a standby service with no provider (tests,
// and startup before configuration)
func NewEmptyLLMService() *LLMService {
	service := newBaseLLMService()
	service.providerName = "empty"
	service.readyState = "standby: no inference provider configured"
	return service
}

func newBaseLLMService() *LLMService {
	return &LLMService{
		readyState: "uninitialized",
		cache:      gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// IsReady reports whether a provider is installed and initialized
func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.provider != nil && s.isReady
}

// GetReadyState describes the current readiness for diagnostics
func (s *LLMService) GetReadyState() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.readyState
}

// GetProviderName returns the active provider key
func (s *LLMService) GetProviderName() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.providerName
}

// GetDefaultModel returns the model used when requests name none
func (s *LLMService) GetDefaultModel() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.defaultModel
}

// UpdateProvider hot-swaps the inference backend
func (s *LLMService) UpdateProvider(providerName string, providerConfig map[string]string) error {
	provider, err := llm.GetProvider(providerName, providerConfig)
	if err != nil {
		return err
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	s.providerName = providerName
	s.defaultModel = providerConfig["default_model"]
	s.isReady = true
	s.readyState = "ready"
	s.cache.Flush()

	logging.L().Info("inference provider updated",
		zap.String("provider", providerName),
		zap.String("model", s.defaultModel))
	return nil
}

// OnConfigChanged reconfigures the provider after a runtime config update
func (s *LLMService) OnConfigChanged(_, newConfig *config.AppConfig) {
	if newConfig == nil {
		return
	}
	if err := s.UpdateProvider(newConfig.LLMProvider, newConfig.LLMConfig); err != nil {
		logging.L().Warn("provider swap after config change failed",
			zap.String("provider", newConfig.LLMProvider),
			zap.Error(err))
	}
}

func (s *LLMService) currentProvider() (llm.Provider, error) {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	if !s.isReady || s.provider == nil {
		return nil, fmt.Errorf("inference service not ready: %s", s.readyState)
	}
	return s.provider, nil
}

// CreateChatCompletion sends a prompt and returns the raw text reply
func (s *LLMService) CreateChatCompletion(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	provider, err := s.currentProvider()
	if err != nil {
		return nil, err
	}

	if req.Model == "" {
		req.Model = s.GetDefaultModel()
	}

	cacheKey := s.cacheKey(req.Prompt, req.SystemPrompt, req.Model)
	if cached, found := s.cache.Get(cacheKey); found {
		if resp, ok := cached.(*llm.CompletionResponse); ok {
			return resp, nil
		}
	}

	resp, err := provider.CompleteText(ctx, req)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(cacheKey, resp)
	return resp, nil
}

func (s *LLMService) cacheKey(prompt, systemPrompt, model string) string {
	sum := sha256.Sum256([]byte(prompt + "\x00" + systemPrompt + "\x00" + model))
	return hex.EncodeToString(sum[:])
}

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// CleanJSONString strips markdown fences and surrounding prose from a
// model reply, keeping the outermost JSON object when one is present
func CleanJSONString(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "\uFEFF")

	if match := jsonFenceRe.FindStringSubmatch(text); len(match) == 2 {
		text = strings.TrimSpace(match[1])
	}

	// keep the outermost object if prose surrounds it
	start := strings.IndexAny(text, "{[")
	if start > 0 {
		text = text[start:]
	}
	if len(text) > 0 {
		var closer byte
		switch text[0] {
		case '{':
			closer = '}'
		case '[':
			closer = ']'
		}
		if closer != 0 {
			if end := strings.LastIndexByte(text, closer); end > 0 {
				text = text[:end+1]
			}
		}
	}
	return text
}
