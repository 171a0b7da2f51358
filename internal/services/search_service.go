// internal/services/search_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Promethia/CampaignForge/internal/logging"
	"github.com/Promethia/CampaignForge/internal/models"
)

// SearchService is the enrichment client. With an API key it queries
// the Serper web-search API; without one it falls back to built-in
// industry data. Failures never propagate: callers get an Insights
// value with Unavailable set and generation proceeds without
// enrichment.
type SearchService struct {
	apiKey  string
	apiURL  string
	enabled bool
	client  *http.Client
}

// NewSearchService creates the enrichment client. An empty apiKey
// degrades to offline insight data.
func NewSearchService(apiKey, apiURL string, enabled bool, timeout time.Duration) *SearchService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SearchService{
		apiKey:  apiKey,
		apiURL:  apiURL,
		enabled: enabled,
		client:  &http.Client{Timeout: timeout},
	}
}

// Offline insight data by industry category, used when no search API
// key is configured
var (
	builtinCompetitors = map[string][]string{
		"health":    {"Fitbit", "MyFitnessPal", "Headspace", "Calm"},
		"tech":      {"Apple", "Samsung", "Google", "Microsoft"},
		"fashion":   {"Zara", "H&M", "Nike", "Adidas"},
		"food":      {"McDonald's", "Starbucks", "Domino's", "Chipotle"},
		"finance":   {"PayPal", "Square", "Robinhood", "Coinbase"},
		"education": {"Coursera", "Udemy", "Khan Academy", "Duolingo"},
	}

	builtinTrends = map[string][]string{
		"health":    {"mindfulness", "wellness", "fitness tracking", "mental health"},
		"tech":      {"AI assistants", "smart home", "cybersecurity", "cloud computing"},
		"fashion":   {"sustainable fashion", "athleisure", "vintage", "custom fit"},
		"food":      {"plant-based", "meal prep", "local sourcing", "food delivery"},
		"finance":   {"crypto", "fintech", "digital banking", "investment apps"},
		"education": {"online learning", "skill development", "micro-courses", "career transition"},
	}

	genericCompetitors = []string{"Industry Leader A", "Emerging Competitor B", "Direct Competitor C"}
	genericTrends      = []string{"digital transformation", "customer experience", "sustainability", "innovation"}
)

// Available reports whether enrichment is enabled at all
func (s *SearchService) Available() bool {
	return s.enabled
}

// EnrichContext looks up competitors and trending keywords for the
// profile's subject. The returned Insights carries Unavailable instead
// of an error on any upstream failure.
func (s *SearchService) EnrichContext(ctx context.Context, profile *models.ContextProfile) models.Insights {
	if !s.enabled {
		return models.Insights{Unavailable: true, Reason: "web search disabled"}
	}

	subject := profile.ProductDetails
	if subject == "" {
		subject = profile.TargetAudience
	}
	if subject == "" {
		return models.Insights{Unavailable: true, Reason: "no subject to search for"}
	}

	if s.apiKey == "" {
		return s.offlineInsights(subject)
	}

	insights := models.Insights{}

	competitors, err := s.searchWeb(ctx, fmt.Sprintf("top competitors of %s", subject))
	if err != nil {
		logging.L().Warn("competitor search unavailable", zap.Error(err))
		return models.Insights{Unavailable: true, Reason: err.Error()}
	}
	for _, result := range competitors {
		insights.Competitors = append(insights.Competitors, models.Insight{
			Kind:   "competitor",
			Value:  result.Title,
			Source: result.Link,
		})
	}

	trends, err := s.searchWeb(ctx, fmt.Sprintf("current marketing trends %s", subject))
	if err != nil {
		logging.L().Warn("trend search unavailable", zap.Error(err))
		// keep whatever competitors we already have
		if insights.Empty() {
			return models.Insights{Unavailable: true, Reason: err.Error()}
		}
		return insights
	}
	for _, result := range trends {
		insights.TrendingKeywords = append(insights.TrendingKeywords, models.Insight{
			Kind:   "trend",
			Value:  result.Title,
			Source: result.Link,
		})
	}

	return insights
}

// ApplyInsights merges enrichment facts into the profile and marks it
// web-enhanced. No-op for unavailable or empty insight sets.
func ApplyInsights(profile *models.ContextProfile, insights models.Insights) {
	if insights.Unavailable || insights.Empty() {
		return
	}

	updates := models.ContextUpdates{}
	for _, c := range insights.Competitors {
		updates.Competitors = append(updates.Competitors, c.Value)
	}
	for _, t := range insights.TrendingKeywords {
		updates.TrendingKeywords = append(updates.TrendingKeywords, t.Value)
	}
	profile.Merge(updates)
	profile.WebEnhanced = true
}

type searchResult struct {
	Title   string
	Link    string
	Snippet string
}

// searchWeb performs one Serper query, returning up to five organic
// results
func (s *SearchService) searchWeb(ctx context.Context, query string) ([]searchResult, error) {
	payload, err := json.Marshal(map[string]interface{}{"q": query, "num": 5})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var response struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	results := make([]searchResult, 0, len(response.Organic))
	for _, item := range response.Organic {
		results = append(results, searchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// offlineInsights serves the built-in category data keyed by substring
// match on the subject
func (s *SearchService) offlineInsights(subject string) models.Insights {
	lower := strings.ToLower(subject)

	competitors := genericCompetitors
	for category, names := range builtinCompetitors {
		if strings.Contains(lower, category) {
			competitors = names
			break
		}
	}

	trends := genericTrends
	for category, keywords := range builtinTrends {
		if strings.Contains(lower, category) {
			trends = keywords
			break
		}
	}

	insights := models.Insights{}
	for _, name := range competitors {
		insights.Competitors = append(insights.Competitors, models.Insight{
			Kind:   "competitor",
			Value:  name,
			Source: "builtin",
		})
	}
	for _, keyword := range trends {
		insights.TrendingKeywords = append(insights.TrendingKeywords, models.Insight{
			Kind:   "trend",
			Value:  keyword,
			Source: "builtin",
		})
	}
	return insights
}
