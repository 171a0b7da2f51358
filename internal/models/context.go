// internal/models/context.go
package models

// BrandTone describes the voice and personality of the brand
type BrandTone string

const (
	ToneProfessional  BrandTone = "professional"
	ToneCasual        BrandTone = "casual"
	ToneFunny         BrandTone = "funny"
	ToneInspirational BrandTone = "inspirational"
	ToneAuthoritative BrandTone = "authoritative"
)

// CampaignGoal is a primary objective for the campaign
type CampaignGoal string

const (
	GoalAwareness      CampaignGoal = "brand_awareness"
	GoalConversion     CampaignGoal = "conversions"
	GoalEngagement     CampaignGoal = "engagement"
	GoalLeadGeneration CampaignGoal = "lead_generation"
)

// Platform is a marketing channel
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformEmail     Platform = "email"
	PlatformGoogleAds Platform = "google_ads"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
)

// Required context fields, in the order questions are asked
const (
	FieldProductDetails     = "product_details"
	FieldTargetAudience     = "target_audience"
	FieldBrandTone          = "brand_tone"
	FieldCampaignGoals      = "campaign_goals"
	FieldPreferredPlatforms = "preferred_platforms"
)

// RequiredFields is the minimum set that ends context collection,
// ordered by asking priority.
var RequiredFields = []string{
	FieldProductDetails,
	FieldTargetAudience,
	FieldBrandTone,
	FieldCampaignGoals,
	FieldPreferredPlatforms,
}

// ContextProfile is the accumulated marketing context for one user.
// Fields are only appended to or overwritten per-field; nothing here
// removes previously collected values.
type ContextProfile struct {
	TargetAudience     string         `json:"target_audience,omitempty"`
	BrandTone          BrandTone      `json:"brand_tone,omitempty"`
	CampaignGoals      []CampaignGoal `json:"campaign_goals,omitempty"`
	PreferredPlatforms []Platform     `json:"preferred_platforms,omitempty"`
	ProductDetails     string         `json:"product_details,omitempty"`

	Competitors         []string `json:"competitors,omitempty"`
	TrendingKeywords    []string `json:"trending_keywords,omitempty"`
	ProductReferences   []string `json:"product_references,omitempty"`
	KeyMessages         []string `json:"key_messages,omitempty"`
	Budget              string   `json:"budget,omitempty"`
	Timeline            string   `json:"timeline,omitempty"`
	UniqueSellingPoints []string `json:"unique_selling_points,omitempty"`

	// WebEnhanced marks that web-search insights were merged in
	WebEnhanced bool `json:"web_enhanced"`
}

// ContextUpdates carries extracted field values before they are merged
// into a profile. Nil/empty members mean "no update" for that field.
type ContextUpdates struct {
	TargetAudience   string
	BrandTone        BrandTone
	CampaignGoals    []CampaignGoal
	Platforms        []Platform
	ProductDetails   string
	Competitors      []string
	TrendingKeywords []string
	KeyMessages      []string
	Budget           string
	Timeline         string
}

// IsEmpty reports whether the extraction produced nothing
func (u ContextUpdates) IsEmpty() bool {
	return u.TargetAudience == "" && u.BrandTone == "" &&
		len(u.CampaignGoals) == 0 && len(u.Platforms) == 0 &&
		u.ProductDetails == "" && len(u.Competitors) == 0 &&
		len(u.TrendingKeywords) == 0 && len(u.KeyMessages) == 0 &&
		u.Budget == "" && u.Timeline == ""
}

// Merge applies updates to the profile. Scalar fields overwrite when the
// user restates them; list fields are merged without duplicates.
func (p *ContextProfile) Merge(u ContextUpdates) {
	if u.TargetAudience != "" {
		p.TargetAudience = u.TargetAudience
	}
	if u.BrandTone != "" {
		p.BrandTone = u.BrandTone
	}
	if u.ProductDetails != "" {
		p.ProductDetails = u.ProductDetails
	}
	if u.Budget != "" {
		p.Budget = u.Budget
	}
	if u.Timeline != "" {
		p.Timeline = u.Timeline
	}
	p.CampaignGoals = mergeGoals(p.CampaignGoals, u.CampaignGoals)
	p.PreferredPlatforms = mergePlatforms(p.PreferredPlatforms, u.Platforms)
	p.Competitors = mergeStrings(p.Competitors, u.Competitors)
	p.TrendingKeywords = mergeStrings(p.TrendingKeywords, u.TrendingKeywords)
	p.KeyMessages = mergeStrings(p.KeyMessages, u.KeyMessages)
}

// MissingRequired returns the unset required fields in asking order
func (p *ContextProfile) MissingRequired() []string {
	missing := make([]string, 0, len(RequiredFields))
	for _, field := range RequiredFields {
		switch field {
		case FieldProductDetails:
			if p.ProductDetails == "" {
				missing = append(missing, field)
			}
		case FieldTargetAudience:
			if p.TargetAudience == "" {
				missing = append(missing, field)
			}
		case FieldBrandTone:
			if p.BrandTone == "" {
				missing = append(missing, field)
			}
		case FieldCampaignGoals:
			if len(p.CampaignGoals) == 0 {
				missing = append(missing, field)
			}
		case FieldPreferredPlatforms:
			if len(p.PreferredPlatforms) == 0 {
				missing = append(missing, field)
			}
		}
	}
	return missing
}

// IsComplete reports whether the required minimum field set is satisfied
func (p *ContextProfile) IsComplete() bool {
	return len(p.MissingRequired()) == 0
}

// ToMap renders the profile as a plain attribute mapping for prompts
// and the context endpoint. Unset fields are omitted.
func (p *ContextProfile) ToMap() map[string]interface{} {
	m := make(map[string]interface{})
	if p.ProductDetails != "" {
		m[FieldProductDetails] = p.ProductDetails
	}
	if p.TargetAudience != "" {
		m[FieldTargetAudience] = p.TargetAudience
	}
	if p.BrandTone != "" {
		m[FieldBrandTone] = string(p.BrandTone)
	}
	if len(p.CampaignGoals) > 0 {
		goals := make([]string, len(p.CampaignGoals))
		for i, g := range p.CampaignGoals {
			goals[i] = string(g)
		}
		m[FieldCampaignGoals] = goals
	}
	if len(p.PreferredPlatforms) > 0 {
		platforms := make([]string, len(p.PreferredPlatforms))
		for i, pl := range p.PreferredPlatforms {
			platforms[i] = string(pl)
		}
		m[FieldPreferredPlatforms] = platforms
	}
	if len(p.Competitors) > 0 {
		m["competitors"] = p.Competitors
	}
	if len(p.TrendingKeywords) > 0 {
		m["trending_keywords"] = p.TrendingKeywords
	}
	if len(p.KeyMessages) > 0 {
		m["key_messages"] = p.KeyMessages
	}
	if len(p.UniqueSellingPoints) > 0 {
		m["unique_selling_points"] = p.UniqueSellingPoints
	}
	if p.Budget != "" {
		m["budget"] = p.Budget
	}
	if p.Timeline != "" {
		m["timeline"] = p.Timeline
	}
	return m
}

// Clone returns a deep copy of the profile
func (p ContextProfile) Clone() ContextProfile {
	cp := p
	cp.CampaignGoals = append([]CampaignGoal(nil), p.CampaignGoals...)
	cp.PreferredPlatforms = append([]Platform(nil), p.PreferredPlatforms...)
	cp.Competitors = append([]string(nil), p.Competitors...)
	cp.TrendingKeywords = append([]string(nil), p.TrendingKeywords...)
	cp.ProductReferences = append([]string(nil), p.ProductReferences...)
	cp.KeyMessages = append([]string(nil), p.KeyMessages...)
	cp.UniqueSellingPoints = append([]string(nil), p.UniqueSellingPoints...)
	return cp
}

func mergeStrings(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if v != "" && !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}

func mergeGoals(existing, incoming []CampaignGoal) []CampaignGoal {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[CampaignGoal]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}

func mergePlatforms(existing, incoming []Platform) []Platform {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[Platform]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range incoming {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}
