// internal/services/conversation_service.go
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

// Enricher is the slice of SearchService the state machine depends on
type Enricher interface {
	Available() bool
	EnrichContext(ctx context.Context, profile *models.ContextProfile) models.Insights
}

// Generator is the slice of CampaignService the state machine depends on
type Generator interface {
	Generate(ctx context.Context, profile *models.ContextProfile) (*models.GeneratedCampaign, error)
}

// ChatResult is what one conversation step returns to the API layer
type ChatResult struct {
	Response   string                    `json:"response"`
	Phase      models.Phase              `json:"phase"`
	Context    models.ContextProfile     `json:"context"`
	IsComplete bool                      `json:"is_complete"`
	Campaign   *models.GeneratedCampaign `json:"campaign_content,omitempty"`
}

// ConversationService drives the per-user conversation state machine:
// collect context, gather insights, generate, done. All record
// mutations for one user are serialized through the lock manager.
type ConversationService struct {
	Store     *ConversationStore
	Locks     *LockManager
	Extractor *ContextExtractor
	Search    Enricher
	Campaigns Generator
	LLM       CompletionClient

	earlyExitPhrases []string
	historyWindow    int
}

// NewConversationService wires the state machine
func NewConversationService(
	store *ConversationStore,
	locks *LockManager,
	extractor *ContextExtractor,
	search Enricher,
	campaigns Generator,
	llmClient CompletionClient,
	earlyExitPhrases []string,
	historyWindow int,
) *ConversationService {
	if len(earlyExitPhrases) == 0 {
		earlyExitPhrases = []string{
			"generate now", "generate campaign", "skip questions",
			"just generate", "create campaign", "go ahead", "proceed",
		}
	}
	if historyWindow <= 0 {
		historyWindow = 20
	}
	return &ConversationService{
		Store:            store,
		Locks:            locks,
		Extractor:        extractor,
		Search:           search,
		Campaigns:        campaigns,
		LLM:              llmClient,
		earlyExitPhrases: earlyExitPhrases,
		historyWindow:    historyWindow,
	}
}

const welcomeMessage = `Welcome! I'm your AI marketing strategist. I'll help you create a comprehensive marketing campaign step by step.

Let's start with the basics: tell me about your product or service, and I'll guide you through the rest.`

// fieldQuestions maps each required field to the question that fills it
var fieldQuestions = map[string]string{
	models.FieldProductDetails:     "📦 Product/Service: tell me about what you're offering and its key benefits.",
	models.FieldTargetAudience:     "🎯 Target Audience: who are you trying to reach? (e.g. 'young professionals aged 25-35 interested in fitness')",
	models.FieldBrandTone:          "🎭 Brand Tone: how would you describe your brand's personality? (professional, casual, funny, inspirational, authoritative)",
	models.FieldCampaignGoals:      "🏁 Campaign Goals: what do you want to achieve? (brand awareness, conversions, engagement, lead generation)",
	models.FieldPreferredPlatforms: "📱 Platforms: where will you market? (Facebook, Instagram, Twitter, LinkedIn, Email, Google Ads, TikTok, YouTube)",
}

var researchTriggers = []string{"research", "suggest", "find some", "look up", "automate"}

// ProcessMessage advances the conversation for one user message
func (s *ConversationService) ProcessMessage(ctx context.Context, userID, message string) (*ChatResult, error) {
	var result *ChatResult
	err := s.Locks.WithUserLock(userID, func() error {
		var innerErr error
		result, innerErr = s.processLocked(ctx, userID, message)
		return innerErr
	})
	return result, err
}

func (s *ConversationService) processLocked(ctx context.Context, userID, message string) (*ChatResult, error) {
	record, created := s.Store.GetOrCreate(userID)
	if created {
		record.AppendTurn("assistant", welcomeMessage)
		s.Store.Put(record)
		return s.resultFor(record, welcomeMessage, false), nil
	}

	record.AppendTurn("user", message)

	// extraction never fails; unrecognized input just re-prompts
	if updates, matched := s.Extractor.Extract(message, &record.Context); matched {
		record.Context.Merge(updates)
	}

	wantsGeneration := s.matchesEarlyExit(message)

	switch record.Phase {
	case models.PhaseCollectingContext:
		if wantsGeneration {
			// early exit: proceed with whatever context exists
			record.EarlyExit = !record.Context.IsComplete()
			return s.generateLocked(ctx, record)
		}
		if record.Context.IsComplete() {
			record.Phase = models.PhaseGatheringInsights
			response := "Great, I have the basics! Now let's gather some strategic insights.\n\nDo you have specific competitors I should know about, or would you like me to research some based on your industry?"
			return s.finishTurn(record, response, false), nil
		}
		return s.askNextQuestion(ctx, record, message)

	case models.PhaseGatheringInsights:
		if wantsGeneration {
			return s.generateLocked(ctx, record)
		}
		if s.matchesResearchRequest(message) {
			return s.enrichLocked(ctx, record)
		}
		return s.askInsightQuestion(ctx, record, message)

	case models.PhaseGeneratingCampaign:
		// a previous attempt failed; any message retries
		return s.generateLocked(ctx, record)

	case models.PhaseDone:
		response := "Your campaign is ready! You can export it, generate banner assets, or reset the conversation to start a new one."
		return s.finishTurn(record, response, true), nil
	}

	return nil, errors.NewProcessingError(
		fmt.Sprintf("conversation in unknown phase %q", record.Phase), nil)
}

// ForceGenerate moves the conversation straight to campaign generation
// regardless of the current phase
func (s *ConversationService) ForceGenerate(ctx context.Context, userID string) (*ChatResult, error) {
	var result *ChatResult
	err := s.Locks.WithUserLock(userID, func() error {
		record, _ := s.Store.GetOrCreate(userID)
		if record.Phase == models.PhaseDone && record.Campaign != nil {
			result = s.resultFor(record, "Campaign already generated.", true)
			return nil
		}
		record.EarlyExit = !record.Context.IsComplete()
		var innerErr error
		result, innerErr = s.generateLocked(ctx, record)
		return innerErr
	})
	return result, err
}

// EnhanceContext runs web enrichment explicitly for a user
func (s *ConversationService) EnhanceContext(ctx context.Context, userID string) (*ChatResult, models.Insights, error) {
	var result *ChatResult
	var insights models.Insights
	err := s.Locks.WithUserLock(userID, func() error {
		record := s.Store.Get(userID)
		if record == nil {
			return errors.NewNotFoundError(
				fmt.Sprintf("no conversation for user %q", userID), nil)
		}

		insights = s.Search.EnrichContext(ctx, &record.Context)
		record.EnrichmentFailed = insights.Unavailable
		ApplyInsights(&record.Context, insights)

		response := s.describeInsights(insights)
		result = s.finishTurn(record, response, false)
		return nil
	})
	return result, insights, err
}

// Reset discards the record for userID and returns a fresh welcome.
// Calling it repeatedly is safe: the record always comes back to the
// initial phase with an empty context mapping.
func (s *ConversationService) Reset(userID string) (*ChatResult, error) {
	var result *ChatResult
	err := s.Locks.WithUserLock(userID, func() error {
		s.Store.Delete(userID)
		record, _ := s.Store.GetOrCreate(userID)
		record.AppendTurn("assistant", welcomeMessage)
		s.Store.Put(record)
		result = s.resultFor(record, welcomeMessage, false)
		return nil
	})
	return result, err
}

// Snapshot returns a read-only copy of the record for UI display
func (s *ConversationService) Snapshot(userID string) (*models.ConversationRecord, error) {
	var snapshot *models.ConversationRecord
	err := s.Locks.WithUserReadLock(userID, func() error {
		record := s.Store.Get(userID)
		if record == nil {
			return errors.NewNotFoundError(
				fmt.Sprintf("no conversation for user %q", userID), nil)
		}
		snapshot = record.Clone()
		return nil
	})
	return snapshot, err
}

// AttachBanner appends a generated banner asset to the user's campaign.
// The asset itself is produced outside the lock; this only mutates the
// stored record.
func (s *ConversationService) AttachBanner(userID string, banner *models.BannerAsset) error {
	return s.Locks.WithUserLock(userID, func() error {
		record := s.Store.Get(userID)
		if record == nil || record.Campaign == nil {
			return errors.NewNotFoundError(
				fmt.Sprintf("no generated campaign for user %q", userID), nil)
		}
		record.Campaign.Banners = append(record.Campaign.Banners, *banner)
		record.UpdatedAt = time.Now()
		s.Store.Put(record)
		return nil
	})
}

// generateLocked runs campaign generation for the record. On failure
// the phase stays at generating so the next message retries; on success
// the record moves to done.
func (s *ConversationService) generateLocked(ctx context.Context, record *models.ConversationRecord) (*ChatResult, error) {
	record.Phase = models.PhaseGeneratingCampaign
	s.Store.Put(record)

	campaign, err := s.Campaigns.Generate(ctx, &record.Context)
	if err != nil {
		logging.L().Warn("campaign generation failed",
			zap.String("user_id", record.UserID), zap.Error(err))
		return nil, errors.Wrap(err, "campaign generation", errors.ErrorTypeGeneration)
	}

	record.Campaign = campaign
	record.Phase = models.PhaseDone

	logging.L().Info("campaign generated",
		zap.String("user_id", record.UserID),
		zap.Bool("early_exit", record.EarlyExit),
		zap.String("summary", campaignSummary(campaign)))

	response := "🎉 Campaign generation complete! I've created a comprehensive marketing campaign tailored to your needs."
	result := s.finishTurn(record, response, true)
	result.Campaign = campaign
	return result, nil
}

// enrichLocked applies web enrichment inside the gathering phase.
// Enrichment failure never blocks the path to generation.
func (s *ConversationService) enrichLocked(ctx context.Context, record *models.ConversationRecord) (*ChatResult, error) {
	insights := s.Search.EnrichContext(ctx, &record.Context)
	record.EnrichmentFailed = insights.Unavailable
	ApplyInsights(&record.Context, insights)

	response := s.describeInsights(insights)
	return s.finishTurn(record, response, false), nil
}

func (s *ConversationService) describeInsights(insights models.Insights) string {
	if insights.Unavailable {
		return "I couldn't reach the research service right now, but that won't hold us up. We can proceed with the context you've given me. Say \"create campaign\" when you're ready."
	}
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	if len(insights.Competitors) > 0 {
		b.WriteString("\nCompetitors:\n")
		for _, c := range insights.Competitors {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Value, c.Source)
		}
	}
	if len(insights.TrendingKeywords) > 0 {
		b.WriteString("\nTrending topics:\n")
		for _, t := range insights.TrendingKeywords {
			fmt.Fprintf(&b, "- %s (%s)\n", t.Value, t.Source)
		}
	}
	b.WriteString("\nSay \"create campaign\" when you're ready to generate.")
	return b.String()
}

// askNextQuestion picks the highest-priority missing field and prompts
// for it, through the model when one is available
func (s *ConversationService) askNextQuestion(ctx context.Context, record *models.ConversationRecord, message string) (*ChatResult, error) {
	missing := record.Context.MissingRequired()
	question := fieldQuestions[missing[0]]

	response := s.conversationalReply(ctx, record, message, question)
	return s.finishTurn(record, response, false), nil
}

// askInsightQuestion walks the optional insight fields in order
func (s *ConversationService) askInsightQuestion(ctx context.Context, record *models.ConversationRecord, message string) (*ChatResult, error) {
	var question string
	switch {
	case len(record.Context.Competitors) == 0:
		question = "🔍 Competitor Research: who are your main competitors? I can also research some based on your industry, just say \"research competitors\"."
	case len(record.Context.TrendingKeywords) == 0:
		question = "📈 Market Trends: any specific keywords or trends to target? I can research current trends in your space."
	case len(record.Context.KeyMessages) == 0:
		question = "💡 Key Messages: what are your main value propositions or unique selling points?"
	default:
		question = "We have everything we need. Say \"create campaign\" to generate your deliverables!"
	}

	response := s.conversationalReply(ctx, record, message, question)
	return s.finishTurn(record, response, false), nil
}

// conversationalReply asks the model for a natural reply steering
// toward nextQuestion, falling back to the plain question when the
// model is unavailable. Inference failure here never stalls the
// conversation.
func (s *ConversationService) conversationalReply(ctx context.Context, record *models.ConversationRecord, message, nextQuestion string) string {
	if s.LLM == nil || !s.LLM.IsReady() {
		return nextQuestion
	}

	contextJSON, _ := json.Marshal(record.Context.ToMap())
	prompt := fmt.Sprintf(`Current marketing context:
%s

Conversation phase: %s
User message: %q

Next question to guide toward: %s

Acknowledge the user's input naturally, then guide them to the next question. Be concise, stay focused on marketing.`,
		string(contextJSON), record.Phase, message, nextQuestion)

	resp, err := s.LLM.CreateChatCompletion(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: campaignSystemPrompt,
		Temperature:  0.7,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		return nextQuestion
	}
	return resp.Text
}

// finishTurn appends the assistant reply, trims the history window and
// persists the record
func (s *ConversationService) finishTurn(record *models.ConversationRecord, response string, complete bool) *ChatResult {
	record.AppendTurn("assistant", response)
	record.History = record.RecentHistory(s.historyWindow)
	s.Store.Put(record)
	return s.resultFor(record, response, complete)
}

func (s *ConversationService) resultFor(record *models.ConversationRecord, response string, complete bool) *ChatResult {
	return &ChatResult{
		Response:   response,
		Phase:      record.Phase,
		Context:    record.Context.Clone(),
		IsComplete: complete,
	}
}

func (s *ConversationService) matchesEarlyExit(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range s.earlyExitPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func (s *ConversationService) matchesResearchRequest(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range researchTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
