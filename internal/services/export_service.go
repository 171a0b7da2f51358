// internal/services/export_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Promethia/CampaignForge/internal/errors"
	"github.com/Promethia/CampaignForge/internal/logging"
	"github.com/Promethia/CampaignForge/internal/models"
	"github.com/Promethia/CampaignForge/internal/storage"
)

// ExportService renders generated campaigns to downloadable artifacts.
// PDF is the primary format; a failed PDF render falls back to the
// plain-text rendering of the same content.
type ExportService struct {
	Storage *storage.FileStorage

	// pdfRenderer defaults to renderPDF; tests swap it in
	pdfRenderer func(*models.GeneratedCampaign) ([]byte, error)
}

// NewExportService creates the exporter
func NewExportService(fileStorage *storage.FileStorage) *ExportService {
	s := &ExportService{Storage: fileStorage}
	s.pdfRenderer = s.renderPDF
	return s
}

const exportDir = "exports"

// ExportCampaign renders the campaign in the requested format and
// writes it under the export directory
func (s *ExportService) ExportCampaign(userID string, campaign *models.GeneratedCampaign, format models.ExportFormat) (*models.ExportResult, error) {
	if campaign == nil {
		return nil, errors.NewValidationError("no campaign to export", nil)
	}
	if !format.Valid() {
		return nil, errors.NewValidationError(
			fmt.Sprintf("unsupported export format %q", format), nil)
	}

	exportID := uuid.NewString()
	fellBack := false

	var content []byte
	var err error
	switch format {
	case models.ExportJSON:
		content, err = json.MarshalIndent(campaign, "", "  ")
	case models.ExportMarkdown:
		content = []byte(s.renderMarkdown(campaign))
	case models.ExportText:
		content = []byte(s.renderText(campaign))
	case models.ExportPDF:
		content, err = s.pdfRenderer(campaign)
		if err != nil {
			logging.L().Warn("pdf render failed, falling back to text",
				zap.String("user_id", userID), zap.Error(err))
			content = []byte(s.renderText(campaign))
			format = models.ExportText
			fellBack = true
			err = nil
		}
	}
	if err != nil {
		return nil, errors.NewProcessingError("render campaign export", err)
	}

	fileName := fmt.Sprintf("campaign_%s_%s.%s", userID, exportID[:8], fileExtension(format))
	if err := s.Storage.SaveFile(exportDir, fileName, content); err != nil {
		return nil, errors.NewProcessingError("save campaign export", err)
	}

	return &models.ExportResult{
		ID:        exportID,
		UserID:    userID,
		Format:    format,
		FileName:  fileName,
		FilePath:  s.Storage.FullPath(exportDir, fileName),
		Size:      int64(len(content)),
		FellBack:  fellBack,
		CreatedAt: time.Now(),
	}, nil
}

// LoadExport reads a previously written artifact by file name
func (s *ExportService) LoadExport(fileName string) ([]byte, error) {
	if !s.Storage.FileExists(exportDir, fileName) {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("export %q not found", fileName), nil)
	}
	return s.Storage.LoadFile(exportDir, fileName)
}

func fileExtension(format models.ExportFormat) string {
	if format == models.ExportMarkdown {
		return "md"
	}
	return string(format)
}

// renderText produces the plain-text rendering shared by the txt format
// and the PDF fallback
func (s *ExportService) renderText(campaign *models.GeneratedCampaign) string {
	var b strings.Builder

	b.WriteString("MARKETING CAMPAIGN\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString("CAMPAIGN STRATEGY\n\n")
	writeLabeled(&b, "Overview", campaign.Strategy.Overview)
	writeLabeled(&b, "Targeting", campaign.Strategy.Targeting)
	writeLabeled(&b, "Positioning", campaign.Strategy.Positioning)
	if len(campaign.Strategy.SuccessMetrics) > 0 {
		b.WriteString("Success metrics:\n")
		for _, metric := range campaign.Strategy.SuccessMetrics {
			b.WriteString("  - " + metric + "\n")
		}
		b.WriteString("\n")
	}

	if len(campaign.AdCopy) > 0 {
		b.WriteString("AD COPY\n\n")
		for _, platform := range sortedKeys(campaign.AdCopy) {
			b.WriteString(strings.ToUpper(platform) + ":\n")
			for _, copyLine := range campaign.AdCopy[platform] {
				b.WriteString("  - " + copyLine + "\n")
			}
			b.WriteString("\n")
		}
	}

	if len(campaign.EmailDrafts) > 0 {
		b.WriteString("EMAIL DRAFTS\n\n")
		for i, draft := range campaign.EmailDrafts {
			fmt.Fprintf(&b, "Email %d:\n%s\n\n", i+1, draft)
		}
	}

	if len(campaign.SocialMediaPosts) > 0 {
		b.WriteString("SOCIAL MEDIA POSTS\n\n")
		for _, post := range campaign.SocialMediaPosts {
			b.WriteString("  - " + post + "\n")
		}
		b.WriteString("\n")
	}

	if len(campaign.ContentCalendar) > 0 {
		b.WriteString("CONTENT CALENDAR\n\n")
		for _, week := range sortedKeys(campaign.ContentCalendar) {
			b.WriteString(week + ":\n")
			for _, task := range campaign.ContentCalendar[week] {
				b.WriteString("  - " + task + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(campaign.KeyMessaging) > 0 {
		b.WriteString("KEY MESSAGING\n\n")
		for _, msg := range campaign.KeyMessaging {
			b.WriteString("  - " + msg + "\n")
		}
	}

	if len(campaign.Banners) > 0 {
		b.WriteString("\nBANNER ASSETS\n\n")
		for _, banner := range campaign.Banners {
			fmt.Fprintf(&b, "  - %s (%s, %s): %s\n",
				banner.Platform, banner.AspectRatio, banner.Dimensions, banner.URL)
		}
	}

	return b.String()
}

// renderMarkdown produces the markdown rendering
func (s *ExportService) renderMarkdown(campaign *models.GeneratedCampaign) string {
	var b strings.Builder

	b.WriteString("# Marketing Campaign\n\n")

	b.WriteString("## Campaign Strategy\n\n")
	b.WriteString(campaign.Strategy.Overview + "\n\n")
	if campaign.Strategy.Targeting != "" {
		b.WriteString("**Targeting:** " + campaign.Strategy.Targeting + "\n\n")
	}
	if campaign.Strategy.Positioning != "" {
		b.WriteString("**Positioning:** " + campaign.Strategy.Positioning + "\n\n")
	}
	if len(campaign.Strategy.SuccessMetrics) > 0 {
		b.WriteString("**Success metrics:**\n\n")
		for _, metric := range campaign.Strategy.SuccessMetrics {
			b.WriteString("- " + metric + "\n")
		}
		b.WriteString("\n")
	}

	if len(campaign.AdCopy) > 0 {
		b.WriteString("## Ad Copy\n\n")
		for _, platform := range sortedKeys(campaign.AdCopy) {
			b.WriteString("### " + strings.Title(platform) + "\n\n")
			for _, copyLine := range campaign.AdCopy[platform] {
				b.WriteString("- " + copyLine + "\n")
			}
			b.WriteString("\n")
		}
	}

	if len(campaign.EmailDrafts) > 0 {
		b.WriteString("## Email Drafts\n\n")
		for i, draft := range campaign.EmailDrafts {
			fmt.Fprintf(&b, "### Email %d\n\n```\n%s\n```\n\n", i+1, draft)
		}
	}

	if len(campaign.SocialMediaPosts) > 0 {
		b.WriteString("## Social Media Posts\n\n")
		for _, post := range campaign.SocialMediaPosts {
			b.WriteString("- " + post + "\n")
		}
		b.WriteString("\n")
	}

	if len(campaign.ContentCalendar) > 0 {
		b.WriteString("## Content Calendar\n\n")
		for _, week := range sortedKeys(campaign.ContentCalendar) {
			b.WriteString("**" + week + "**\n\n")
			for _, task := range campaign.ContentCalendar[week] {
				b.WriteString("- " + task + "\n")
			}
			b.WriteString("\n")
		}
	}

	if len(campaign.KeyMessaging) > 0 {
		b.WriteString("## Key Messaging\n\n")
		for _, msg := range campaign.KeyMessaging {
			b.WriteString("- " + msg + "\n")
		}
		b.WriteString("\n")
	}

	if len(campaign.Banners) > 0 {
		b.WriteString("## Banner Assets\n\n")
		for _, banner := range campaign.Banners {
			fmt.Fprintf(&b, "- %s (%s, %s): %s\n",
				banner.Platform, banner.AspectRatio, banner.Dimensions, banner.URL)
		}
	}

	return b.String()
}

// renderPDF lays the campaign out on A4 pages. Core PDF fonts are
// latin-1 only, so content passes through the unicode translator.
func (s *ExportService) renderPDF(campaign *models.GeneratedCampaign) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	title := func(text string) {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, tr(text), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	heading := func(text string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
	}
	body := func(text string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(text), "", "L", false)
		pdf.Ln(2)
	}
	bullets := func(items []string) {
		pdf.SetFont("Helvetica", "", 10)
		for _, item := range items {
			pdf.MultiCell(0, 5, tr("- "+item), "", "L", false)
		}
		pdf.Ln(2)
	}

	title("Marketing Campaign")

	heading("Campaign Strategy")
	body(campaign.Strategy.Overview)
	if campaign.Strategy.Targeting != "" {
		body("Targeting: " + campaign.Strategy.Targeting)
	}
	if campaign.Strategy.Positioning != "" {
		body("Positioning: " + campaign.Strategy.Positioning)
	}
	if len(campaign.Strategy.SuccessMetrics) > 0 {
		heading("Success Metrics")
		bullets(campaign.Strategy.SuccessMetrics)
	}

	if len(campaign.AdCopy) > 0 {
		heading("Ad Copy")
		for _, platform := range sortedKeys(campaign.AdCopy) {
			body(strings.ToUpper(platform))
			bullets(campaign.AdCopy[platform])
		}
	}

	if len(campaign.EmailDrafts) > 0 {
		heading("Email Drafts")
		for i, draft := range campaign.EmailDrafts {
			body(fmt.Sprintf("Email %d:\n%s", i+1, draft))
		}
	}

	if len(campaign.SocialMediaPosts) > 0 {
		heading("Social Media Posts")
		bullets(campaign.SocialMediaPosts)
	}

	if len(campaign.ContentCalendar) > 0 {
		heading("Content Calendar")
		for _, week := range sortedKeys(campaign.ContentCalendar) {
			body(week)
			bullets(campaign.ContentCalendar[week])
		}
	}

	if len(campaign.KeyMessaging) > 0 {
		heading("Key Messaging")
		bullets(campaign.KeyMessaging)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLabeled(b *strings.Builder, label, value string) {
	if value != "" {
		b.WriteString(label + ": " + value + "\n\n")
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
