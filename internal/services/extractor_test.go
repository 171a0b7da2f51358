// internal/services/extractor_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Promethia/CampaignForge/internal/models"
)

func TestExtractProductDetails(t *testing.T) {
	e := NewContextExtractor()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"sell phrasing", "We sell organic coffee beans", "Organic coffee beans"},
		{"ownership phrasing", "I run a bakery in Amsterdam", "Bakery in amsterdam"},
		{"explicit statement", "Our product is a meal planning app", "A meal planning app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates, matched := e.Extract(tt.message, &models.ContextProfile{})
			assert.True(t, matched)
			assert.Equal(t, tt.want, updates.ProductDetails)
		})
	}
}

func TestExtractTargetAudience(t *testing.T) {
	e := NewContextExtractor()

	updates, matched := e.Extract(
		"Our target audience is young professionals aged 25-35", &models.ContextProfile{})
	assert.True(t, matched)
	assert.Equal(t, "Young professionals aged 25-35", updates.TargetAudience)
}

func TestExtractToneGoalsPlatforms(t *testing.T) {
	e := NewContextExtractor()

	updates, matched := e.Extract(
		"We want a professional brand that drives brand awareness and conversions on LinkedIn and email",
		&models.ContextProfile{})
	assert.True(t, matched)
	assert.Equal(t, models.ToneProfessional, updates.BrandTone)
	assert.ElementsMatch(t,
		[]models.CampaignGoal{models.GoalAwareness, models.GoalConversion},
		updates.CampaignGoals)
	assert.ElementsMatch(t,
		[]models.Platform{models.PlatformLinkedIn, models.PlatformEmail},
		updates.Platforms)
}

func TestExtractCompetitorsSplitsList(t *testing.T) {
	e := NewContextExtractor()

	updates, matched := e.Extract(
		"Our competitors are starbucks, blue bottle and dunkin", &models.ContextProfile{})
	assert.True(t, matched)
	assert.Equal(t, []string{"starbucks", "blue bottle", "dunkin"}, updates.Competitors)
}

func TestExtractBudgetAndTimeline(t *testing.T) {
	e := NewContextExtractor()

	updates, matched := e.Extract(
		"Our budget is $5000 per month, launching over the next 6 weeks", &models.ContextProfile{})
	assert.True(t, matched)
	assert.Contains(t, updates.Budget, "$5000")
	assert.Contains(t, updates.Timeline, "6 weeks")
}

func TestExtractNothingLeavesUpdatesEmpty(t *testing.T) {
	e := NewContextExtractor()

	updates, matched := e.Extract("hello there", &models.ContextProfile{})
	assert.False(t, matched)
	assert.True(t, updates.IsEmpty())
}

func TestExtractGoalDedup(t *testing.T) {
	e := NewContextExtractor()

	// "brand awareness" and its substring "awareness" must produce one goal
	updates, _ := e.Extract("we need brand awareness", &models.ContextProfile{})
	assert.Equal(t, []models.CampaignGoal{models.GoalAwareness}, updates.CampaignGoals)
}
