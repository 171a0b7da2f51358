// internal/services/campaign_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Promethia/CampaignForge/internal/errors"
	"github.com/Promethia/CampaignForge/internal/llm"
	"github.com/Promethia/CampaignForge/internal/logging"
	"github.com/Promethia/CampaignForge/internal/models"
)

// CompletionClient is the slice of LLMService the campaign generator
// depends on
type CompletionClient interface {
	IsReady() bool
	GetReadyState() string
	CreateChatCompletion(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// CampaignService turns an accumulated context profile into structured
// campaign deliverables via the inference provider
type CampaignService struct {
	LLM CompletionClient

	temperature float32
	maxTokens   int
}

// NewCampaignService creates the generator
func NewCampaignService(llmClient CompletionClient, temperature float32, maxTokens int) *CampaignService {
	if temperature <= 0 {
		temperature = 0.7
	}
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	return &CampaignService{
		LLM:         llmClient,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

const campaignSystemPrompt = `You are a marketing strategist and creative co-pilot. You create comprehensive, data-driven marketing campaigns tailored to the brand context you are given. All content must be specific and actionable.`

// Generate produces a campaign for the profile. Provider failure, or a
// response so empty that even loose extraction finds nothing, yields a
// generation error; phase handling for retry is the caller's concern.
func (s *CampaignService) Generate(ctx context.Context, profile *models.ContextProfile) (*models.GeneratedCampaign, error) {
	if !s.LLM.IsReady() {
		return nil, errors.NewGenerationError(
			"inference provider not available: "+s.LLM.GetReadyState(), nil)
	}

	resp, err := s.LLM.CreateChatCompletion(ctx, llm.CompletionRequest{
		Prompt:       s.buildCampaignPrompt(profile),
		SystemPrompt: campaignSystemPrompt,
		Temperature:  s.temperature,
		MaxTokens:    s.maxTokens,
	})
	if err != nil {
		return nil, errors.NewGenerationError("campaign generation failed, please retry", err)
	}

	campaign, err := s.parseCampaign(resp.Text)
	if err != nil {
		return nil, err
	}

	campaign.GeneratedAt = time.Now()
	return campaign, nil
}

// buildCampaignPrompt assembles the deliverables request from the
// collected context
func (s *CampaignService) buildCampaignPrompt(profile *models.ContextProfile) string {
	contextJSON, _ := json.MarshalIndent(profile.ToMap(), "", "  ")

	var b strings.Builder
	b.WriteString("Generate a COMPLETE marketing campaign based on this context:\n\n")
	b.Write(contextJSON)
	b.WriteString(`

DELIVERABLES REQUIRED:

1. CAMPAIGN STRATEGY OVERVIEW — overall approach, positioning, key differentiators, success metrics
2. AD COPY for each specified platform — headlines, body copy, calls-to-action, hashtags where relevant
3. EMAIL DRAFTS — welcome, educational follow-up and promotional emails, complete with subject lines
4. SOCIAL MEDIA CONTENT — 5-7 post ideas with full copy and platform-specific formatting
5. CAMPAIGN TIMELINE — a four-week content calendar from preparation through optimization
6. KEY MESSAGING — 3-5 core brand messages

Return as structured JSON with this exact format:
{
  "campaign_strategy": {
    "overview": "2-3 paragraph strategy",
    "targeting": "Audience targeting approach",
    "positioning": "Brand positioning statement",
    "success_metrics": ["Metric 1", "Metric 2"]
  },
  "ad_copy": {
    "facebook": ["Headline 1", "Headline 2"],
    "instagram": ["Post 1", "Post 2"]
  },
  "email_drafts": ["Subject: ...\n\nBody...", "Subject: ...\n\nBody..."],
  "social_media_posts": ["Platform: post content with hashtags"],
  "content_calendar": {
    "week_1": ["Task 1", "Task 2"],
    "week_2": ["Task 1", "Task 2"],
    "week_3": ["Task 1", "Task 2"],
    "week_4": ["Task 1", "Task 2"]
  },
  "key_messaging": ["Message 1", "Message 2", "Message 3"]
}`)
	return b.String()
}

// parseCampaign runs the recovery chain: direct JSON, fenced-block
// extraction, then loose text-to-sections extraction
func (s *CampaignService) parseCampaign(text string) (*models.GeneratedCampaign, error) {
	var campaign models.GeneratedCampaign
	if err := json.Unmarshal([]byte(text), &campaign); err == nil && !campaignIsEmpty(&campaign) {
		return &campaign, nil
	}

	cleaned := CleanJSONString(text)
	campaign = models.GeneratedCampaign{}
	if err := json.Unmarshal([]byte(cleaned), &campaign); err == nil && !campaignIsEmpty(&campaign) {
		return &campaign, nil
	}

	logging.L().Warn("structured campaign parse failed, using loose extraction",
		zap.Int("response_len", len(text)))

	loose := s.extractFromText(text)
	if loose == nil {
		return nil, errors.NewGenerationError(
			"model response could not be parsed into a campaign, please retry", nil)
	}
	return loose, nil
}

// extractFromText builds a fallback campaign from unstructured model
// output. Returns nil when the text carries no usable content.
func (s *CampaignService) extractFromText(text string) *models.GeneratedCampaign {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 40 {
		return nil
	}

	campaign := defaultCampaignScaffold()
	campaign.Strategy.Overview = trimmed
	campaign.Fallback = true

	// pull any list-looking lines into key messaging
	var bullets []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•") {
			if msg := strings.TrimSpace(strings.TrimLeft(line, "-*• ")); msg != "" {
				bullets = append(bullets, msg)
			}
		}
	}
	if len(bullets) > 0 {
		if len(bullets) > 5 {
			bullets = bullets[:5]
		}
		campaign.KeyMessaging = bullets
	}

	return &campaign
}

func campaignIsEmpty(c *models.GeneratedCampaign) bool {
	return c.Strategy.Overview == "" && len(c.AdCopy) == 0 &&
		len(c.EmailDrafts) == 0 && len(c.SocialMediaPosts) == 0 &&
		len(c.KeyMessaging) == 0
}

// defaultCampaignScaffold is the generic structure used by the loose
// extraction path so every section is populated
func defaultCampaignScaffold() models.GeneratedCampaign {
	return models.GeneratedCampaign{
		Strategy: models.CampaignStrategy{
			Overview:       "Data-driven marketing campaign focused on your target audience and business goals.",
			Targeting:      "Precision targeting based on audience demographics and behaviors.",
			Positioning:    "Clear market positioning highlighting unique value propositions.",
			SuccessMetrics: []string{"Engagement rate", "Conversion rate", "ROI", "Brand awareness"},
		},
		AdCopy: map[string][]string{
			"facebook":  {"Engaging ad copy tailored to your audience"},
			"instagram": {"Visual content with compelling captions"},
		},
		EmailDrafts: []string{
			"Subject: Welcome to Our Campaign\n\nEngaging introduction email content.",
			"Subject: Special Offer Inside\n\nCompelling follow-up content.",
		},
		SocialMediaPosts: []string{
			"Engaging social media post with relevant hashtags",
			"Educational content about your industry",
			"Promotional post with a clear call-to-action",
		},
		ContentCalendar: map[string][]string{
			"week_1": {"Platform setup", "Content creation", "Audience research"},
			"week_2": {"Campaign launch", "Initial promotions", "Engagement tracking"},
			"week_3": {"Performance analysis", "Content optimization", "A/B testing"},
			"week_4": {"Scale successful tactics", "Audience expansion", "ROI calculation"},
		},
		KeyMessaging: []string{
			"Clear value proposition",
			"Compelling unique selling points",
			"Strong call-to-action messaging",
		},
	}
}

// String renders a short generation summary for logs
func campaignSummary(c *models.GeneratedCampaign) string {
	return fmt.Sprintf("sections: ads=%d emails=%d posts=%d calendar=%d",
		len(c.AdCopy), len(c.EmailDrafts), len(c.SocialMediaPosts), len(c.ContentCalendar))
}
