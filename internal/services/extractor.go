// internal/services/extractor.go
package services

import (
	"regexp"
	"strings"

	"github.com/Promethia/CampaignForge/internal/models"
)

// ContextExtractor pulls marketing attributes out of free-form chat
// messages. It never fails: unparseable input yields empty updates so
// the state machine can re-prompt.
type ContextExtractor struct{}

// NewContextExtractor creates an extractor
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{}
}

// Field extraction patterns operate on the lowercased message. The
// first matching pattern per field wins.
var fieldPatterns = map[string][]*regexp.Regexp{
	models.FieldTargetAudience: {
		regexp.MustCompile(`(?:audience|target|customers?|users?).{0,20}?(?:is|are|:)\s*([^.!?]+)`),
		regexp.MustCompile(`(?:reach|targeting|focusing on)\s+([^.!?]+)`),
	},
	models.FieldProductDetails: {
		regexp.MustCompile(`(?:product|service|business|offering).{0,30}?(?:is|are|:)\s*([^.!?]+)`),
		regexp.MustCompile(`(?:i run|we run|i own|we own|i have|we have)\s+(?:an?\s+)?([^.!?]+)`),
		regexp.MustCompile(`(?:sell|offer|provide)\s+([^.!?]+)`),
	},
	"competitors": {
		regexp.MustCompile(`(?:competitors?|competition).{0,30}?(?:is|are|:)\s*([^.!?]+)`),
		regexp.MustCompile(`(?:competing against|similar to)\s+([^.!?]+)`),
	},
	"key_messages": {
		regexp.MustCompile(`(?:message|value|benefit|proposition).{0,30}?(?:is|are|:)\s*([^.!?]+)`),
		regexp.MustCompile(`(?:highlight|emphasize|focus on)\s+([^.!?]+)`),
	},
	"budget": {
		regexp.MustCompile(`budget.{0,20}?(?:is|of|:)\s*([^.!?]+)`),
		regexp.MustCompile(`(?:spend|spending)\s+(?:around|about|up to)?\s*(\$?[\d,]+k?(?:\s*(?:per|a|\/)\s*\w+)?)`),
	},
	"timeline": {
		regexp.MustCompile(`(?:timeline|schedule|launch).{0,20}?(?:is|in|:)\s*([^.!?]+)`),
		regexp.MustCompile(`(?:over the next|within|for the next)\s+([^.!?]+)`),
	},
}

var toneKeywords = map[string]models.BrandTone{
	"professional":  models.ToneProfessional,
	"casual":        models.ToneCasual,
	"funny":         models.ToneFunny,
	"humorous":      models.ToneFunny,
	"inspirational": models.ToneInspirational,
	"inspiring":     models.ToneInspirational,
	"authoritative": models.ToneAuthoritative,
}

// goalKeywords is ordered so multiword phrases are tested before their
// single-word substrings
var goalKeywords = []struct {
	keyword string
	goal    models.CampaignGoal
}{
	{"brand awareness", models.GoalAwareness},
	{"awareness", models.GoalAwareness},
	{"lead generation", models.GoalLeadGeneration},
	{"leads", models.GoalLeadGeneration},
	{"conversions", models.GoalConversion},
	{"conversion", models.GoalConversion},
	{"engagement", models.GoalEngagement},
}

var platformKeywords = []struct {
	keyword  string
	platform models.Platform
}{
	{"facebook", models.PlatformFacebook},
	{"instagram", models.PlatformInstagram},
	{"twitter", models.PlatformTwitter},
	{"linkedin", models.PlatformLinkedIn},
	{"email", models.PlatformEmail},
	{"google ads", models.PlatformGoogleAds},
	{"tiktok", models.PlatformTikTok},
	{"youtube", models.PlatformYouTube},
}

var listSeparatorRe = regexp.MustCompile(`[,;]|\band\b`)

// Extract parses the message against the current profile and returns
// field updates plus whether anything was recognized
func (e *ContextExtractor) Extract(message string, current *models.ContextProfile) (models.ContextUpdates, bool) {
	var updates models.ContextUpdates
	lower := strings.ToLower(message)

	for field, patterns := range fieldPatterns {
		for _, pattern := range patterns {
			match := pattern.FindStringSubmatch(lower)
			if match == nil {
				continue
			}
			value := strings.TrimSpace(match[1])
			if len(value) <= 2 {
				continue
			}
			switch field {
			case models.FieldTargetAudience:
				updates.TargetAudience = capitalize(value)
			case models.FieldProductDetails:
				updates.ProductDetails = capitalize(value)
			case "competitors":
				updates.Competitors = splitList(value)
			case "key_messages":
				updates.KeyMessages = splitList(value)
			case "budget":
				updates.Budget = value
			case "timeline":
				updates.Timeline = value
			}
			break
		}
	}

	for keyword, tone := range toneKeywords {
		if strings.Contains(lower, keyword) {
			updates.BrandTone = tone
			break
		}
	}

	for _, entry := range goalKeywords {
		if strings.Contains(lower, entry.keyword) {
			updates.CampaignGoals = appendGoal(updates.CampaignGoals, entry.goal)
		}
	}

	for _, entry := range platformKeywords {
		if strings.Contains(lower, entry.keyword) {
			updates.Platforms = append(updates.Platforms, entry.platform)
		}
	}

	return updates, !updates.IsEmpty()
}

func splitList(value string) []string {
	parts := listSeparatorRe.Split(value, -1)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func appendGoal(goals []models.CampaignGoal, goal models.CampaignGoal) []models.CampaignGoal {
	for _, g := range goals {
		if g == goal {
			return goals
		}
	}
	return append(goals, goal)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
