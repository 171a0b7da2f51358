// internal/services/export_service_test.go
package services

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Promethia/CampaignForge/internal/errors"
	"github.com/Promethia/CampaignForge/internal/models"
	"github.com/Promethia/CampaignForge/internal/storage"
)

func newTestExportService(t *testing.T) *ExportService {
	t.Helper()
	fileStorage, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return NewExportService(fileStorage)
}

func exportableCampaign() *models.GeneratedCampaign {
	return &models.GeneratedCampaign{
		Strategy: models.CampaignStrategy{
			Overview:       "Reach local families through social proof.",
			Targeting:      "Parents within 10km",
			Positioning:    "The neighborhood bakery",
			SuccessMetrics: []string{"Foot traffic"},
		},
		AdCopy:           map[string][]string{"facebook": {"Fresh bread every morning"}},
		EmailDrafts:      []string{"Subject: Welcome\n\nThanks for joining."},
		SocialMediaPosts: []string{"Sourdough Saturday is back!"},
		ContentCalendar:  map[string][]string{"week_1": {"Shoot product photos"}},
		KeyMessaging:     []string{"Baked fresh daily"},
	}
}

func TestExportCampaignJSON(t *testing.T) {
	svc := newTestExportService(t)

	result, err := svc.ExportCampaign("user-1", exportableCampaign(), models.ExportJSON)
	require.NoError(t, err)
	assert.Equal(t, models.ExportJSON, result.Format)
	assert.False(t, result.FellBack)
	assert.Greater(t, result.Size, int64(0))

	content, err := svc.LoadExport(result.FileName)
	require.NoError(t, err)

	var roundTrip models.GeneratedCampaign
	require.NoError(t, json.Unmarshal(content, &roundTrip))
	assert.Equal(t, "The neighborhood bakery", roundTrip.Strategy.Positioning)
}

func TestExportCampaignMarkdown(t *testing.T) {
	svc := newTestExportService(t)

	result, err := svc.ExportCampaign("user-1", exportableCampaign(), models.ExportMarkdown)
	require.NoError(t, err)

	content, err := svc.LoadExport(result.FileName)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "# Marketing Campaign")
	assert.Contains(t, text, "## Ad Copy")
	assert.Contains(t, text, "Fresh bread every morning")
	assert.Contains(t, text, "Baked fresh daily")
}

func TestExportCampaignText(t *testing.T) {
	svc := newTestExportService(t)

	result, err := svc.ExportCampaign("user-1", exportableCampaign(), models.ExportText)
	require.NoError(t, err)

	content, err := svc.LoadExport(result.FileName)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "MARKETING CAMPAIGN")
	assert.Contains(t, text, "CAMPAIGN STRATEGY")
	assert.Contains(t, text, "Sourdough Saturday is back!")
}

func TestExportCampaignPDF(t *testing.T) {
	svc := newTestExportService(t)

	result, err := svc.ExportCampaign("user-1", exportableCampaign(), models.ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, models.ExportPDF, result.Format)
	assert.False(t, result.FellBack)

	content, err := svc.LoadExport(result.FileName)
	require.NoError(t, err)
	require.Greater(t, len(content), 4)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestExportCampaignValidation(t *testing.T) {
	svc := newTestExportService(t)

	_, err := svc.ExportCampaign("user-1", nil, models.ExportPDF)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = svc.ExportCampaign("user-1", exportableCampaign(), models.ExportFormat("docx"))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadExportMissing(t *testing.T) {
	svc := newTestExportService(t)

	_, err := svc.LoadExport("does-not-exist.pdf")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestExportCampaignPDFFallsBackToText(t *testing.T) {
	svc := newTestExportService(t)
	svc.pdfRenderer = func(*models.GeneratedCampaign) ([]byte, error) {
		return nil, fmt.Errorf("missing font descriptor")
	}

	result, err := svc.ExportCampaign("user-1", exportableCampaign(), models.ExportPDF)
	require.NoError(t, err)

	assert.True(t, result.FellBack)
	assert.Equal(t, models.ExportText, result.Format)
	assert.Equal(t, ".txt", filepath.Ext(result.FileName))

	content, err := svc.LoadExport(result.FileName)
	require.NoError(t, err)
	assert.Contains(t, string(content), "The neighborhood bakery")
	assert.NotEqual(t, "%PDF", string(content[:4]))
}
