// internal/services/banner_service_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Promethia/CampaignForge/internal/errors"
	"github.com/Promethia/CampaignForge/internal/models"
)

func TestGenerateBannerDisabledWithoutKey(t *testing.T) {
	svc := NewBannerService("", "http://unused", "flux", time.Second)
	assert.False(t, svc.Enabled())

	_, err := svc.GenerateBanner(context.Background(), testProfile(), models.PlatformInstagram, "")
	require.Error(t, err)
	assert.True(t, errors.IsAssetError(err))
}

func TestGenerateBannerSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Key test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"images":[{"url":"https://cdn.example/banner.png"}]}`))
	}))
	defer server.Close()

	svc := NewBannerService("test-key", server.URL, "flux", time.Second)

	banner, err := svc.GenerateBanner(context.Background(), testProfile(), models.PlatformTikTok, "")
	require.NoError(t, err)
	assert.Equal(t, "tiktok", banner.Platform)
	// TikTok defaults to the vertical shape
	assert.Equal(t, models.Ratio9x16, banner.AspectRatio)
	assert.Equal(t, "576x1024", banner.Dimensions)
	assert.Equal(t, "https://cdn.example/banner.png", banner.URL)
	assert.NotEmpty(t, banner.Prompt)
}

func TestGenerateBannerRejectsBadRatio(t *testing.T) {
	svc := NewBannerService("test-key", "http://unused", "flux", time.Second)

	_, err := svc.GenerateBanner(context.Background(), testProfile(), models.PlatformInstagram, "2:1")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestGenerateBannerUpstreamFailureIsAssetError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewBannerService("test-key", server.URL, "flux", time.Second)

	_, err := svc.GenerateBanner(context.Background(), testProfile(), models.PlatformInstagram, models.Ratio1x1)
	require.Error(t, err)
	assert.True(t, errors.IsAssetError(err))
}

func TestGenerateBannerEmptyResponseIsAssetError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"images":[]}`))
	}))
	defer server.Close()

	svc := NewBannerService("test-key", server.URL, "flux", time.Second)

	_, err := svc.GenerateBanner(context.Background(), testProfile(), models.PlatformInstagram, models.Ratio1x1)
	require.Error(t, err)
	assert.True(t, errors.IsAssetError(err))
}

func TestBuildPromptReflectsContext(t *testing.T) {
	svc := NewBannerService("test-key", "http://unused", "flux", time.Second)

	profile := testProfile()
	profile.KeyMessages = []string{"Baked fresh daily"}
	prompt := svc.BuildPrompt(profile, models.PlatformLinkedIn)

	assert.Contains(t, prompt, "Bakery in Amsterdam")
	assert.Contains(t, prompt, "Local families")
	assert.Contains(t, prompt, "LinkedIn")
	assert.Contains(t, prompt, "Baked fresh daily")
	// casual tone style guidance
	assert.Contains(t, prompt, "friendly design")
}

func TestBuildPromptDefaultsWhenContextEmpty(t *testing.T) {
	svc := NewBannerService("test-key", "http://unused", "flux", time.Second)

	prompt := svc.BuildPrompt(&models.ContextProfile{}, models.Platform("unknown"))
	assert.Contains(t, prompt, "our product or service")
	assert.Contains(t, prompt, "digital marketing banner")
	// unset tone falls back to professional styling
	assert.Contains(t, prompt, "clean corporate design")
}
