// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Promethia/CampaignForge/internal/api"
	"github.com/Promethia/CampaignForge/internal/config"
	"github.com/Promethia/CampaignForge/internal/di"
	"github.com/Promethia/CampaignForge/internal/logging"
	"github.com/Promethia/CampaignForge/internal/services"
	"github.com/Promethia/CampaignForge/internal/storage"
)

// Server is the subset of http.Server the app drives, extracted for tests
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App bundles the process-level pieces: config, router, server, signals
type App struct {
	config   *config.AppConfig
	router   http.Handler
	server   Server
	stopChan chan os.Signal
}

var instance *App

// GetApp returns the process singleton
func GetApp() *App {
	if instance == nil {
		instance = &App{
			stopChan: make(chan os.Signal, 1),
		}
	}
	return instance
}

// InitServices builds every service in dependency order and registers
// it in the DI container. Construction never fails on a misconfigured
// upstream; degraded services report through /health instead.
func InitServices() error {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	// storage for export artifacts
	fileStorage, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("init file storage: %w", err)
	}
	container.Register("storage", fileStorage)

	// inference
	llmService := services.NewLLMService()
	container.Register("llm", llmService)

	// runtime config surface, notifying the LLM service on updates
	configService := services.NewConfigService()
	configService.Subscribe(llmService)
	container.Register("config", configService)

	// enrichment
	searchService := services.NewSearchService(
		cfg.Search.APIKey,
		cfg.Search.APIURL,
		cfg.Search.Enabled,
		cfg.Search.Timeout,
	)
	container.Register("search", searchService)

	// assets
	bannerService := services.NewBannerService(
		cfg.Image.APIKey,
		cfg.Image.APIURL,
		cfg.Image.Model,
		cfg.Image.Timeout,
	)
	container.Register("banner", bannerService)

	// generation
	campaignService := services.NewCampaignService(
		llmService,
		cfg.Inference.Temperature,
		cfg.Inference.MaxTokens,
	)
	container.Register("campaign", campaignService)

	// conversation state machine
	store := services.NewConversationStore(cfg.Conversation.MaxAge)
	locks := services.NewLockManager()
	conversationService := services.NewConversationService(
		store,
		locks,
		services.NewContextExtractor(),
		searchService,
		campaignService,
		llmService,
		cfg.Conversation.EarlyExitWords,
		cfg.Conversation.HistoryWindow,
	)
	container.Register("locks", locks)
	container.Register("conversation", conversationService)

	// export
	exportService := services.NewExportService(fileStorage)
	container.Register("export", exportService)

	logging.L().Info("services initialized",
		zap.Strings("services", container.Names()))
	return nil
}

// Initialize loads config, prepares directories, wires services and
// builds the router
func Initialize() error {
	baseConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	for _, dir := range []string{
		baseConfig.DataDir,
		filepath.Join(baseConfig.DataDir, "exports"),
		baseConfig.Log.Dir,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	logging.Init(logging.Options{
		Dir:        baseConfig.Log.Dir,
		Level:      baseConfig.Log.Level,
		Production: baseConfig.Log.Production,
	})

	if err := config.InitConfig(); err != nil {
		return fmt.Errorf("init runtime config: %w", err)
	}

	if err := InitServices(); err != nil {
		return fmt.Errorf("init services: %w", err)
	}

	router, err := api.SetupRouter()
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	app := GetApp()
	app.config = config.GetCurrentConfig()
	app.router = router
	return nil
}

// Run starts the HTTP server and blocks until a shutdown signal
func Run() error {
	app := GetApp()
	if app.server == nil {
		app.server = &http.Server{
			Addr:         ":" + app.config.Server.Port,
			Handler:      app.router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 0, // streaming responses manage their own deadlines
		}
	}

	errChan := make(chan error, 1)
	go func() {
		logging.L().Info("server listening",
			zap.String("port", app.config.Server.Port))
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	signal.Notify(app.stopChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-app.stopChan:
		logging.L().Info("shutdown signal received",
			zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	app.cleanup()
	logging.L().Info("server stopped")
	return nil
}

// cleanup releases background resources held by services
func (a *App) cleanup() {
	container := di.GetContainer()
	if locks, ok := container.Get("locks").(*services.LockManager); ok {
		locks.Stop()
	}
	logging.Sync()
}
