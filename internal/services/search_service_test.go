// internal/services/search_service_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Promethia/CampaignForge/internal/models"
)

func TestEnrichContextDisabled(t *testing.T) {
	svc := NewSearchService("", "", false, time.Second)

	insights := svc.EnrichContext(context.Background(), testProfile())
	assert.True(t, insights.Unavailable)
	assert.Equal(t, "web search disabled", insights.Reason)
	assert.False(t, svc.Available())
}

func TestEnrichContextNeedsSubject(t *testing.T) {
	svc := NewSearchService("", "", true, time.Second)

	insights := svc.EnrichContext(context.Background(), &models.ContextProfile{})
	assert.True(t, insights.Unavailable)
}

func TestEnrichContextOfflineFallback(t *testing.T) {
	svc := NewSearchService("", "", true, time.Second)

	profile := &models.ContextProfile{ProductDetails: "a health coaching app"}
	insights := svc.EnrichContext(context.Background(), profile)
	require.False(t, insights.Unavailable)

	var competitors []string
	for _, c := range insights.Competitors {
		assert.Equal(t, "builtin", c.Source)
		competitors = append(competitors, c.Value)
	}
	assert.Contains(t, competitors, "Fitbit")
	assert.NotEmpty(t, insights.TrendingKeywords)
}

func TestEnrichContextQueriesSearchAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organic":[
			{"title":"Competitor One","link":"https://one.example","snippet":"..."},
			{"title":"Competitor Two","link":"https://two.example","snippet":"..."}
		]}`))
	}))
	defer server.Close()

	svc := NewSearchService("secret-key", server.URL, true, time.Second)
	insights := svc.EnrichContext(context.Background(), testProfile())

	require.False(t, insights.Unavailable)
	require.Len(t, insights.Competitors, 2)
	assert.Equal(t, "Competitor One", insights.Competitors[0].Value)
	assert.Equal(t, "https://one.example", insights.Competitors[0].Source)
	assert.Len(t, insights.TrendingKeywords, 2)
}

func TestEnrichContextUpstreamFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewSearchService("secret-key", server.URL, true, time.Second)
	insights := svc.EnrichContext(context.Background(), testProfile())

	assert.True(t, insights.Unavailable)
	assert.NotEmpty(t, insights.Reason)
}

func TestEnrichContextTimeoutDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	svc := NewSearchService("secret-key", server.URL, true, 20*time.Millisecond)
	insights := svc.EnrichContext(context.Background(), testProfile())

	assert.True(t, insights.Unavailable)
}

func TestApplyInsights(t *testing.T) {
	profile := testProfile()
	ApplyInsights(profile, models.Insights{
		Competitors: []models.Insight{
			{Kind: "competitor", Value: "Corner Bakery", Source: "https://example.com"},
		},
		TrendingKeywords: []models.Insight{
			{Kind: "trend", Value: "sourdough", Source: "https://example.com"},
		},
	})

	assert.Equal(t, []string{"Corner Bakery"}, profile.Competitors)
	assert.Equal(t, []string{"sourdough"}, profile.TrendingKeywords)
	assert.True(t, profile.WebEnhanced)
}

func TestApplyInsightsUnavailableIsNoop(t *testing.T) {
	profile := testProfile()
	ApplyInsights(profile, models.Insights{Unavailable: true, Reason: "timeout"})

	assert.Empty(t, profile.Competitors)
	assert.False(t, profile.WebEnhanced)
}
