// internal/api/handlers.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/Promethia/CampaignForge/internal/errors"
	"github.com/Promethia/CampaignForge/internal/logging"
	"github.com/Promethia/CampaignForge/internal/models"
	"github.com/Promethia/CampaignForge/internal/services"
)

// Handler carries the services behind the HTTP surface
type Handler struct {
	ConversationService *services.ConversationService
	BannerService       *services.BannerService
	ExportService       *services.ExportService
	ConfigService       *services.ConfigService
	LLMService          *services.LLMService
	SearchService       *services.SearchService
	Response            *ResponseHelper
}

// NewHandler creates the API handler
func NewHandler(
	conversationService *services.ConversationService,
	bannerService *services.BannerService,
	exportService *services.ExportService,
	configService *services.ConfigService,
	llmService *services.LLMService,
	searchService *services.SearchService,
) *Handler {
	return &Handler{
		ConversationService: conversationService,
		BannerService:       bannerService,
		ExportService:       exportService,
		ConfigService:       configService,
		LLMService:          llmService,
		SearchService:       searchService,
		Response:            NewResponseHelper(),
	}
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// UserRequest carries only a user identifier
type UserRequest struct {
	UserID string `json:"user_id"`
}

// BannerRequest is the body of POST /campaign/:user_id/banner
type BannerRequest struct {
	Platform    string `json:"platform"`
	AspectRatio string `json:"aspect_ratio"`
}

// ExportRequest is the body of POST /campaign/:user_id/export
type ExportRequest struct {
	Format string `json:"format"`
}

// UpdateLLMConfigRequest is the body of PUT /config/llm
type UpdateLLMConfigRequest struct {
	Provider string            `json:"provider"`
	Config   map[string]string `json:"config"`
}

// respondError maps an application error onto the envelope
func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	switch status {
	case http.StatusBadGateway:
		h.Response.BadGateway(c, code, err.Error())
	case http.StatusInternalServerError:
		logging.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		h.Response.InternalError(c, err.Error())
	default:
		h.Response.Error(c, status, code, err.Error())
	}
}

// respondConversationError is respondError with the conversation-specific
// code for a missing record
func (h *Handler) respondConversationError(c *gin.Context, err error) {
	if apperrors.IsNotFoundError(err) {
		h.Response.Error(c, http.StatusNotFound, ErrorConversationNotFound, err.Error())
		return
	}
	h.respondError(c, err)
}

// Chat runs one turn of the conversation state machine
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}
	if !validUserID(req.UserID) {
		h.Response.BadRequest(c, "user_id must be 1-64 characters of [A-Za-z0-9_-]")
		return
	}
	if !validMessage(req.Message) {
		h.Response.BadRequest(c, "message must not be empty")
		return
	}

	result, err := h.ConversationService.ProcessMessage(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, result)
}

// GenerateNow skips remaining questions and generates immediately
func (h *Handler) GenerateNow(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}
	if !validUserID(req.UserID) {
		h.Response.BadRequest(c, "user_id must be 1-64 characters of [A-Za-z0-9_-]")
		return
	}

	result, err := h.ConversationService.ForceGenerate(c.Request.Context(), req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, result)
}

// EnhanceContext runs web enrichment for the user's current context
func (h *Handler) EnhanceContext(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}
	if !validUserID(req.UserID) {
		h.Response.BadRequest(c, "user_id must be 1-64 characters of [A-Za-z0-9_-]")
		return
	}

	result, insights, err := h.ConversationService.EnhanceContext(c.Request.Context(), req.UserID)
	if err != nil {
		h.respondConversationError(c, err)
		return
	}
	if insights.Unavailable {
		h.respondError(c, apperrors.NewEnrichmentError(
			"research backend unavailable: "+insights.Reason, nil))
		return
	}
	h.Response.Success(c, gin.H{
		"result":   result,
		"insights": insights,
	})
}

// ResetConversation discards the user's record and starts over
func (h *Handler) ResetConversation(c *gin.Context) {
	userID := c.Param("user_id")
	if !validUserID(userID) {
		h.Response.BadRequest(c, "user_id must be 1-64 characters of [A-Za-z0-9_-]")
		return
	}

	result, err := h.ConversationService.Reset(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, result, "conversation reset")
}

// GetConversationContext returns the current record snapshot
func (h *Handler) GetConversationContext(c *gin.Context) {
	userID := c.Param("user_id")
	if !validUserID(userID) {
		h.Response.BadRequest(c, "user_id must be 1-64 characters of [A-Za-z0-9_-]")
		return
	}

	snapshot, err := h.ConversationService.Snapshot(userID)
	if err != nil {
		h.respondConversationError(c, err)
		return
	}
	h.Response.Success(c, gin.H{
		"user_id":           snapshot.UserID,
		"phase":             snapshot.Phase,
		"context":           snapshot.Context,
		"missing_fields":    snapshot.Context.MissingRequired(),
		"enrichment_failed": snapshot.EnrichmentFailed,
		"has_campaign":      snapshot.Campaign != nil,
		"updated_at":        snapshot.UpdatedAt,
	})
}

// GenerateBanner produces a banner asset for the user's campaign.
// Asset failures are reported in the response body, not as an HTTP
// error, so a broken image backend never hides the campaign itself.
func (h *Handler) GenerateBanner(c *gin.Context) {
	userID := c.Param("user_id")
	if !validUserID(userID) {
		h.Response.BadRequest(c, "user_id must be 1-64 characters of [A-Za-z0-9_-]")
		return
	}

	var req BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	platform := models.Platform(strings.ToLower(strings.TrimSpace(req.Platform)))
	if platform == "" {
		platform = models.PlatformInstagram
	}

	var ratio models.AspectRatio
	if req.AspectRatio != "" {
		ratio = models.AspectRatio(req.AspectRatio)
		if !ratio.Valid() {
			h.Response.BadRequest(c, "unsupported aspect_ratio "+req.AspectRatio)
			return
		}
	} else if preferred, ok := models.PlatformRatios[platform]; ok {
		ratio = preferred
	} else {
		ratio = models.Ratio1x1
	}

	snapshot, err := h.ConversationService.Snapshot(userID)
	if err != nil {
		h.respondConversationError(c, err)
		return
	}
	if snapshot.Campaign == nil {
		h.Response.NotFound(c, "no generated campaign for user "+userID)
		return
	}

	banner, err := h.BannerService.GenerateBanner(c.Request.Context(), &snapshot.Context, platform, ratio)
	if err != nil {
		h.Response.Success(c, gin.H{
			"banner": nil,
			"error": &APIError{
				Code:    ErrorBannerFailed,
				Message: err.Error(),
			},
		}, "banner generation failed, campaign is unaffected")
		return
	}

	if err := h.ConversationService.AttachBanner(userID, banner); err != nil {
		h.respondConversationError(c, err)
		return
	}
	h.Response.Success(c, gin.H{"banner": banner})
}

// ExportCampaign renders the generated campaign as a download artifact
func (h *Handler) ExportCampaign(c *gin.Context) {
	userID := c.Param("user_id")
	if !validUserID(userID) {
		h.Response.BadRequest(c, "user_id must be 1-64 characters of [A-Za-z0-9_-]")
		return
	}

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}
	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(req.Format)))
	if format == "" {
		format = models.ExportPDF
	}
	if !format.Valid() {
		h.Response.Error(c, http.StatusBadRequest, ErrorExportFormatInvalid,
			"unsupported export format "+req.Format)
		return
	}

	snapshot, err := h.ConversationService.Snapshot(userID)
	if err != nil {
		h.respondConversationError(c, err)
		return
	}
	if snapshot.Campaign == nil {
		h.Response.NotFound(c, "no generated campaign for user "+userID)
		return
	}

	result, err := h.ExportService.ExportCampaign(userID, snapshot.Campaign, format)
	if err != nil {
		if apperrors.IsValidationError(err) {
			h.respondError(c, err)
			return
		}
		h.Response.Error(c, http.StatusInternalServerError, ErrorExportFailed, err.Error())
		return
	}
	h.Response.Success(c, result)
}

// DownloadExport streams a previously exported artifact
func (h *Handler) DownloadExport(c *gin.Context) {
	fileName := c.Param("export_id")
	if fileName == "" || strings.ContainsAny(fileName, "/\\") || strings.Contains(fileName, "..") {
		h.Response.BadRequest(c, "invalid export identifier")
		return
	}

	content, err := h.ExportService.LoadExport(fileName)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			h.Response.Error(c, http.StatusNotFound, ErrorExportNotFound, err.Error())
			return
		}
		h.respondError(c, err)
		return
	}
	h.Response.FileResponse(c, content, fileName, contentTypeFor(fileName))
}

// GetHealth reports service readiness
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"llm_ready":      h.LLMService.IsReady(),
		"llm_state":      h.LLMService.GetReadyState(),
		"search_enabled": h.SearchService.Available(),
		"banner_enabled": h.BannerService.Enabled(),
		"conversations":  h.ConversationService.Store.Count(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// GetConfig returns the non-secret runtime configuration
func (h *Handler) GetConfig(c *gin.Context) {
	cfg := h.ConfigService.GetCurrentConfig()
	h.Response.Success(c, gin.H{
		"llm_provider":    cfg.LLMProvider,
		"llm_model":       h.LLMService.GetDefaultModel(),
		"llm_ready":       h.LLMService.IsReady(),
		"search_enabled":  h.SearchService.Available(),
		"banner_enabled":  h.BannerService.Enabled(),
		"required_fields": models.RequiredFields,
		"debug_mode":      cfg.Server.DebugMode,
	})
}

// UpdateLLMConfig swaps the inference provider at runtime
func (h *Handler) UpdateLLMConfig(c *gin.Context) {
	var req UpdateLLMConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}
	if req.Provider == "" {
		h.Response.Error(c, http.StatusBadRequest, ErrorLLMConfigInvalid,
			"provider must not be empty")
		return
	}

	if err := h.ConfigService.UpdateLLMConfig(req.Provider, req.Config); err != nil {
		h.respondError(c, err)
		return
	}
	h.Response.Success(c, gin.H{
		"provider": req.Provider,
		"ready":    h.LLMService.IsReady(),
	}, "LLM configuration updated")
}

// Index describes the service
func (h *Handler) Index(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"service": "CampaignForge",
		"message": "conversational marketing campaign generator",
		"endpoints": []string{
			"POST /chat",
			"POST /campaign/generate-now",
			"POST /search/enhance-context",
			"POST /conversation/:user_id/reset",
			"GET /conversation/:user_id/context",
			"POST /campaign/:user_id/banner",
			"POST /campaign/:user_id/export",
			"GET /exports/:export_id/download",
			"GET /ws/chat/:user_id",
			"GET /health",
			"GET /config",
		},
	})
}

func contentTypeFor(fileName string) string {
	switch {
	case strings.HasSuffix(fileName, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(fileName, ".json"):
		return "application/json"
	case strings.HasSuffix(fileName, ".md"):
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
