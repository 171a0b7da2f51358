// internal/api/handlers_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Promethia/CampaignForge/internal/errors"
	"github.com/Promethia/CampaignForge/internal/llm"
	"github.com/Promethia/CampaignForge/internal/models"
	"github.com/Promethia/CampaignForge/internal/services"
	"github.com/Promethia/CampaignForge/internal/storage"
)

type stubEnricher struct{}

func (stubEnricher) Available() bool { return false }
func (stubEnricher) EnrichContext(context.Context, *models.ContextProfile) models.Insights {
	return models.Insights{Unavailable: true, Reason: "disabled"}
}

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, *models.ContextProfile) (*models.GeneratedCampaign, error) {
	return &models.GeneratedCampaign{
		Strategy: models.CampaignStrategy{Overview: "stub strategy"},
	}, nil
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, *models.ContextProfile) (*models.GeneratedCampaign, error) {
	return nil, apperrors.NewGenerationError("model unavailable", nil)
}

type neverReadyCompletion struct{}

func (neverReadyCompletion) IsReady() bool         { return false }
func (neverReadyCompletion) GetReadyState() string { return "standby" }
func (neverReadyCompletion) CreateChatCompletion(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	return newTestRouterWithGenerator(t, stubGenerator{})
}

func newTestRouterWithGenerator(t *testing.T, generator services.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fileStorage, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	locks := services.NewLockManager()
	t.Cleanup(locks.Stop)

	conversationService := services.NewConversationService(
		services.NewConversationStore(time.Hour),
		locks,
		services.NewContextExtractor(),
		stubEnricher{},
		generator,
		neverReadyCompletion{},
		nil,
		20,
	)

	handler := NewHandler(
		conversationService,
		services.NewBannerService("", "", "", time.Second),
		services.NewExportService(fileStorage),
		services.NewConfigService(),
		services.NewEmptyLLMService(),
		services.NewSearchService("", "", false, time.Second),
	)

	r := gin.New()
	r.Use(requestIDMiddleware())
	r.GET("/", handler.Index)
	r.GET("/health", handler.GetHealth)
	r.GET("/config", handler.GetConfig)
	r.POST("/chat", handler.Chat)
	r.POST("/campaign/generate-now", handler.GenerateNow)
	r.POST("/campaign/:user_id/banner", handler.GenerateBanner)
	r.POST("/campaign/:user_id/export", handler.ExportCampaign)
	r.POST("/conversation/:user_id/reset", handler.ResetConversation)
	r.POST("/search/enhance-context", handler.EnhanceContext)
	r.GET("/conversation/:user_id/context", handler.GetConversationContext)
	r.GET("/exports/:export_id/download", handler.DownloadExport)
	r.GET("/ws/chat/:user_id", handler.ChatWebSocket)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope APIResponse
	if w.Header().Get("Content-Type") != "" && json.Valid(w.Body.Bytes()) {
		json.Unmarshal(w.Body.Bytes(), &envelope)
	}
	return w, envelope
}

func TestChatValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body ChatRequest
	}{
		{"empty user id", ChatRequest{UserID: "", Message: "hi"}},
		{"bad characters", ChatRequest{UserID: "user id!", Message: "hi"}},
		{"too long", ChatRequest{UserID: string(bytes.Repeat([]byte("a"), 65)), Message: "hi"}},
		{"blank message", ChatRequest{UserID: "user-1", Message: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, envelope := doJSON(t, r, http.MethodPost, "/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, envelope.Success)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, ErrorValidation, envelope.Error.Code)
		})
	}
}

func TestChatWelcomeAndRequestID(t *testing.T) {
	r := newTestRouter(t)

	w, envelope := doJSON(t, r, http.MethodPost, "/chat",
		ChatRequest{UserID: "user-1", Message: "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.RequestID)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestResetRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	// seed a conversation past the welcome
	doJSON(t, r, http.MethodPost, "/chat", ChatRequest{UserID: "user-1", Message: "hi"})
	doJSON(t, r, http.MethodPost, "/chat", ChatRequest{UserID: "user-1", Message: "We sell organic coffee beans"})

	w, _ := doJSON(t, r, http.MethodGet, "/conversation/user-1/context", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Organic coffee beans")

	w, envelope := doJSON(t, r, http.MethodPost, "/conversation/user-1/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	w, _ = doJSON(t, r, http.MethodGet, "/conversation/user-1/context", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(models.PhaseCollectingContext))
	assert.NotContains(t, w.Body.String(), "Organic coffee beans")
}

func TestContextUnknownUser(t *testing.T) {
	r := newTestRouter(t)

	w, envelope := doJSON(t, r, http.MethodGet, "/conversation/ghost/context", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorConversationNotFound, envelope.Error.Code)
}

func TestGenerateNowAndExport(t *testing.T) {
	r := newTestRouter(t)

	w, envelope := doJSON(t, r, http.MethodPost, "/campaign/generate-now",
		UserRequest{UserID: "user-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)
	assert.Contains(t, w.Body.String(), "stub strategy")

	w, envelope = doJSON(t, r, http.MethodPost, "/campaign/user-1/export",
		ExportRequest{Format: "json"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)

	// pull the artifact back down
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var result models.ExportResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.NotEmpty(t, result.FileName)

	req := httptest.NewRequest(http.MethodGet, "/exports/"+result.FileName+"/download", nil)
	download := httptest.NewRecorder()
	r.ServeHTTP(download, req)
	assert.Equal(t, http.StatusOK, download.Code)
	assert.Contains(t, download.Header().Get("Content-Disposition"), result.FileName)
	assert.Contains(t, download.Body.String(), "stub strategy")
}

func TestExportWithoutCampaign(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/campaign/nobody/export",
		ExportRequest{Format: "pdf"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportBadFormat(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/campaign/generate-now", UserRequest{UserID: "user-1"})

	w, envelope := doJSON(t, r, http.MethodPost, "/campaign/user-1/export",
		ExportRequest{Format: "docx"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorExportFormatInvalid, envelope.Error.Code)
}

func TestBannerFailureDoesNotFailRequest(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/campaign/generate-now", UserRequest{UserID: "user-1"})

	// banner service has no API key, so generation fails as an asset
	// error carried inside a 200 response
	w, envelope := doJSON(t, r, http.MethodPost, "/campaign/user-1/banner",
		BannerRequest{Platform: "instagram"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)
	assert.Contains(t, w.Body.String(), ErrorBannerFailed)
}

func TestDownloadRejectsPathTraversal(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/exports/..%5Csecrets.txt/download", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"llm_ready":false`)
}

func TestValidUserID(t *testing.T) {
	assert.True(t, validUserID("user-1"))
	assert.True(t, validUserID("User_2"))
	assert.False(t, validUserID(""))
	assert.False(t, validUserID("has space"))
	assert.False(t, validUserID("emoji🙂"))
	assert.False(t, validUserID(string(bytes.Repeat([]byte("x"), 65))))
}

func TestGenerateNowUpstreamFailure(t *testing.T) {
	r := newTestRouterWithGenerator(t, failingGenerator{})

	w, envelope := doJSON(t, r, http.MethodPost, "/campaign/generate-now",
		UserRequest{UserID: "user-1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorGenerationFailed, envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "model unavailable")
}

func TestEnhanceContextBackendDown(t *testing.T) {
	r := newTestRouter(t)

	// establish the conversation first
	w, _ := doJSON(t, r, http.MethodPost, "/chat",
		ChatRequest{UserID: "user-1", Message: "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	w, envelope := doJSON(t, r, http.MethodPost, "/search/enhance-context",
		UserRequest{UserID: "user-1"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorEnrichmentUnavailable, envelope.Error.Code)
}

func TestEnhanceContextUnknownUser(t *testing.T) {
	r := newTestRouter(t)

	w, envelope := doJSON(t, r, http.MethodPost, "/search/enhance-context",
		UserRequest{UserID: "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ErrorConversationNotFound, envelope.Error.Code)
}
