// internal/api/router.go
package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Promethia/CampaignForge/internal/config"
	"github.com/Promethia/CampaignForge/internal/di"
	"github.com/Promethia/CampaignForge/internal/services"
)

// SetupRouter wires the HTTP surface. Services come from the DI
// container only; the router never constructs them.
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	container := di.GetContainer()

	conversationService, ok := container.Get("conversation").(*services.ConversationService)
	if !ok {
		return nil, fmt.Errorf("conversation service not initialized")
	}
	bannerService, ok := container.Get("banner").(*services.BannerService)
	if !ok {
		return nil, fmt.Errorf("banner service not initialized")
	}
	exportService, ok := container.Get("export").(*services.ExportService)
	if !ok {
		return nil, fmt.Errorf("export service not initialized")
	}
	configService, ok := container.Get("config").(*services.ConfigService)
	if !ok {
		return nil, fmt.Errorf("config service not initialized")
	}
	llmService, ok := container.Get("llm").(*services.LLMService)
	if !ok {
		return nil, fmt.Errorf("llm service not initialized")
	}
	searchService, ok := container.Get("search").(*services.SearchService)
	if !ok {
		return nil, fmt.Errorf("search service not initialized")
	}

	handler := NewHandler(
		conversationService,
		bannerService,
		exportService,
		configService,
		llmService,
		searchService,
	)

	if !cfg.Server.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(corsMiddleware(cfg.Server.CORSOrigins))
	r.Use(requestIDMiddleware())

	r.GET("/", handler.Index)
	r.GET("/health", handler.GetHealth)
	r.GET("/config", handler.GetConfig)
	r.PUT("/config/llm", handler.UpdateLLMConfig)

	chatLimited := RateLimitMiddleware(60, time.Minute)

	r.POST("/chat", chatLimited, handler.Chat)
	r.GET("/ws/chat/:user_id", handler.ChatWebSocket)

	campaignGroup := r.Group("/campaign")
	{
		campaignGroup.POST("/generate-now", chatLimited, handler.GenerateNow)
		campaignGroup.POST("/:user_id/banner", handler.GenerateBanner)
		campaignGroup.POST("/:user_id/export", handler.ExportCampaign)
	}

	conversationGroup := r.Group("/conversation")
	{
		conversationGroup.POST("/:user_id/reset", handler.ResetConversation)
		conversationGroup.GET("/:user_id/context", handler.GetConversationContext)
	}

	r.POST("/search/enhance-context", handler.EnhanceContext)
	r.GET("/exports/:export_id/download", handler.DownloadExport)

	return r, nil
}
