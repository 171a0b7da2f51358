// internal/models/campaign.go
package models

import "time"

// CampaignStrategy is the strategic overview section of a campaign
type CampaignStrategy struct {
	Overview       string   `json:"overview"`
	Targeting      string   `json:"targeting"`
	Positioning    string   `json:"positioning"`
	SuccessMetrics []string `json:"success_metrics"`
}

// GeneratedCampaign is the structured bundle of marketing deliverables
// produced for one conversation. It is not persisted beyond the record
// that produced it.
type GeneratedCampaign struct {
	Strategy         CampaignStrategy    `json:"campaign_strategy"`
	AdCopy           map[string][]string `json:"ad_copy"`
	EmailDrafts      []string            `json:"email_drafts"`
	SocialMediaPosts []string            `json:"social_media_posts"`
	ContentCalendar  map[string][]string `json:"content_calendar"`
	KeyMessaging     []string            `json:"key_messaging"`

	// Banners holds optional image assets; asset failures never remove
	// the text sections above
	Banners []BannerAsset `json:"banners,omitempty"`

	// Fallback marks that the content came from the loose-extraction or
	// default scaffold path rather than structured model output
	Fallback bool `json:"fallback,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Clone returns a deep copy of the campaign
func (c GeneratedCampaign) Clone() GeneratedCampaign {
	cp := c
	cp.AdCopy = make(map[string][]string, len(c.AdCopy))
	for k, v := range c.AdCopy {
		cp.AdCopy[k] = append([]string(nil), v...)
	}
	cp.ContentCalendar = make(map[string][]string, len(c.ContentCalendar))
	for k, v := range c.ContentCalendar {
		cp.ContentCalendar[k] = append([]string(nil), v...)
	}
	cp.EmailDrafts = append([]string(nil), c.EmailDrafts...)
	cp.SocialMediaPosts = append([]string(nil), c.SocialMediaPosts...)
	cp.KeyMessaging = append([]string(nil), c.KeyMessaging...)
	cp.Strategy.SuccessMetrics = append([]string(nil), c.Strategy.SuccessMetrics...)
	cp.Banners = append([]BannerAsset(nil), c.Banners...)
	return cp
}

// AspectRatio is one of the fixed banner shapes
type AspectRatio string

const (
	Ratio1x1  AspectRatio = "1:1"
	Ratio16x9 AspectRatio = "16:9"
	Ratio9x16 AspectRatio = "9:16"
	Ratio4x3  AspectRatio = "4:3"
	Ratio3x4  AspectRatio = "3:4"
)

// RatioDimensions maps each supported aspect ratio to pixel dimensions
var RatioDimensions = map[AspectRatio][2]int{
	Ratio1x1:  {1024, 1024},
	Ratio16x9: {1024, 576},
	Ratio9x16: {576, 1024},
	Ratio4x3:  {1024, 768},
	Ratio3x4:  {768, 1024},
}

// Valid reports whether r is a supported aspect ratio
func (r AspectRatio) Valid() bool {
	_, ok := RatioDimensions[r]
	return ok
}

// Dimensions returns width and height for the ratio, defaulting to square
func (r AspectRatio) Dimensions() (int, int) {
	if dims, ok := RatioDimensions[r]; ok {
		return dims[0], dims[1]
	}
	return 1024, 1024
}

// PlatformRatios maps marketing platforms to their default banner shape
var PlatformRatios = map[Platform]AspectRatio{
	PlatformFacebook:  Ratio1x1,
	PlatformInstagram: Ratio1x1,
	PlatformTwitter:   Ratio16x9,
	PlatformLinkedIn:  Ratio1x1,
	PlatformYouTube:   Ratio16x9,
	PlatformTikTok:    Ratio9x16,
	PlatformGoogleAds: Ratio16x9,
	PlatformEmail:     Ratio16x9,
}

// BannerAsset references one generated banner image
type BannerAsset struct {
	Platform    string      `json:"platform"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	Dimensions  string      `json:"dimensions"`
	URL         string      `json:"url,omitempty"`
	ImageData   string      `json:"image_data,omitempty"` // base64, when downloaded
	Prompt      string      `json:"prompt"`
	Model       string      `json:"model,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Insight is a single enrichment fact with source attribution
type Insight struct {
	Kind   string `json:"kind"` // "competitor" or "trend"
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Insights is the result of one enrichment attempt
type Insights struct {
	Competitors      []Insight `json:"competitors,omitempty"`
	TrendingKeywords []Insight `json:"trending_keywords,omitempty"`

	// Unavailable is set on network error, quota or timeout; the
	// pipeline proceeds without enrichment
	Unavailable bool   `json:"unavailable,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Empty reports whether the enrichment produced no facts
func (i Insights) Empty() bool {
	return len(i.Competitors) == 0 && len(i.TrendingKeywords) == 0
}
