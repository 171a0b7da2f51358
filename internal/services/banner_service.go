// internal/services/banner_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Promethia/CampaignForge/internal/errors"
	"github.com/Promethia/CampaignForge/internal/logging"
	"github.com/Promethia/CampaignForge/internal/models"
)

// BannerService generates banner assets through an image API. Without
// an API key the service is disabled and every request returns an asset
// error; asset failures never block text-campaign delivery.
type BannerService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewBannerService creates the asset generator. An empty apiKey
// disables generation.
func NewBannerService(apiKey, apiURL, model string, timeout time.Duration) *BannerService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BannerService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether asset generation is configured
func (s *BannerService) Enabled() bool {
	return s.apiKey != ""
}

// toneStyles maps brand tone to image style guidance
var toneStyles = map[models.BrandTone]string{
	models.ToneProfessional:  "clean corporate design, modern layout, professional typography, sophisticated",
	models.ToneCasual:        "friendly design, warm colors, relatable imagery, approachable",
	models.ToneFunny:         "playful design, bright colors, engaging composition, humorous elements",
	models.ToneInspirational: "uplifting design, motivational imagery, elegant composition, inspiring",
	models.ToneAuthoritative: "bold design, strong typography, premium aesthetic, trustworthy",
}

// platformStyles adds channel-specific guidance to the image prompt
var platformStyles = map[models.Platform]string{
	models.PlatformFacebook:  "Facebook ad banner, optimized for news feed",
	models.PlatformInstagram: "Instagram post, visually appealing and shareable",
	models.PlatformTwitter:   "Twitter promoted post banner",
	models.PlatformLinkedIn:  "LinkedIn professional banner, corporate style",
	models.PlatformYouTube:   "YouTube channel art or video thumbnail",
	models.PlatformTikTok:    "TikTok video thumbnail, trendy and eye-catching",
	models.PlatformGoogleAds: "display ad banner, clear and conversion-focused",
	models.PlatformEmail:     "email header banner, professional and clean",
}

// BuildPrompt assembles the image prompt from the campaign context
func (s *BannerService) BuildPrompt(profile *models.ContextProfile, platform models.Platform) string {
	product := profile.ProductDetails
	if product == "" {
		product = "our product or service"
	}
	audience := profile.TargetAudience
	if audience == "" {
		audience = "target customers"
	}

	parts := []string{
		fmt.Sprintf("Professional marketing banner for %s", product),
		fmt.Sprintf("targeting %s", audience),
	}

	if style, ok := platformStyles[platform]; ok {
		parts = append(parts, style)
	} else {
		parts = append(parts, "digital marketing banner")
	}

	if len(profile.KeyMessages) > 0 {
		parts = append(parts, fmt.Sprintf("key message: %s", profile.KeyMessages[0]))
	}

	style, ok := toneStyles[profile.BrandTone]
	if !ok {
		style = toneStyles[models.ToneProfessional]
	}
	parts = append(parts, style, "high quality, detailed")

	return strings.Join(parts, ", ")
}

// GenerateBanner produces one banner for the platform. When ratio is
// empty the platform's default shape is used.
func (s *BannerService) GenerateBanner(ctx context.Context, profile *models.ContextProfile, platform models.Platform, ratio models.AspectRatio) (*models.BannerAsset, error) {
	if !s.Enabled() {
		return nil, errors.NewAssetError("asset generation not configured", nil)
	}

	if ratio == "" {
		if defaultRatio, ok := models.PlatformRatios[platform]; ok {
			ratio = defaultRatio
		} else {
			ratio = models.Ratio1x1
		}
	}
	if !ratio.Valid() {
		return nil, errors.NewValidationError(
			fmt.Sprintf("unsupported aspect ratio %q", ratio), nil)
	}

	prompt := s.BuildPrompt(profile, platform)
	width, height := ratio.Dimensions()

	payload, err := json.Marshal(map[string]interface{}{
		"prompt":                prompt,
		"image_size":            map[string]int{"width": width, "height": height},
		"num_inference_steps":   4,
		"enable_safety_checker": true,
	})
	if err != nil {
		return nil, errors.NewAssetError("encode banner request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, errors.NewAssetError("build banner request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewAssetError("image API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.NewAssetError(
			fmt.Sprintf("image API returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var response struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.NewAssetError("decode image API response", err)
	}
	if len(response.Images) == 0 || response.Images[0].URL == "" {
		return nil, errors.NewAssetError("image API returned no images", nil)
	}

	logging.L().Info("banner generated",
		zap.String("platform", string(platform)),
		zap.String("ratio", string(ratio)))

	return &models.BannerAsset{
		Platform:    string(platform),
		AspectRatio: ratio,
		Dimensions:  fmt.Sprintf("%dx%d", width, height),
		URL:         response.Images[0].URL,
		Prompt:      prompt,
		Model:       s.model,
		GeneratedAt: time.Now(),
	}, nil
}
