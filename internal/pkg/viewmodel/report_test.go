package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fixthesign/fixthesign/app/models"
)

func TestNewReport(t *testing.T) {
	t.Parallel()

	processed := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	rec := models.ReportRecord{
		ReportUUID:  "a6e9f2d0-0000-0000-0000-000000000001",
		State:       models.ReportStateProcessed,
		ReportedAt:  time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		ProcessedAt: &processed,
		Address:     "Musterstrasse 1, Berlin",
		ImageURL:    "https://cdn.example.com/r/1.jpg",
		Location:    models.Location{Lat: 52.52, Lng: 13.405},
		Objects: []models.TrafficSign{
			{X1: 1, Y1: 2, X2: 3, Y2: 4, Tag: models.SignTagDamaged},
			{X1: 5, Y1: 6, X2: 7, Y2: 8, Tag: models.SignTagHealthy},
		},
	}

	vm := NewReport(rec)
	assert.True(t, vm.IsProcessed)
	assert.Equal(t, 2, vm.SignCount)
	assert.Equal(t, 1, vm.DamagedCount)
	assert.Equal(t, "2 sign(s), 1 damaged", vm.Summary)
	assert.Equal(t, "52.520000", vm.Latitude)
	assert.NotEmpty(t, vm.ProcessedAt)
}

func TestNewReportSummaries(t *testing.T) {
	t.Parallel()

	pending := NewReport(models.ReportRecord{State: models.ReportStateNew})
	assert.Equal(t, "Analysis pending", pending.Summary)
	assert.Empty(t, pending.ProcessedAt)

	empty := NewReport(models.ReportRecord{State: models.ReportStateProcessed})
	assert.Equal(t, "No traffic signs found", empty.Summary)

	healthy := NewReport(models.ReportRecord{
		State:   models.ReportStateProcessed,
		Objects: []models.TrafficSign{{Tag: models.SignTagHealthy}},
	})
	assert.Equal(t, "1 sign(s), none damaged", healthy.Summary)
}

func TestNewReportList(t *testing.T) {
	t.Parallel()

	recs := []models.ReportRecord{
		{ReportUUID: "first"},
		{ReportUUID: "second"},
	}
	vms := NewReportList(recs)
	assert.Len(t, vms, 2)
	assert.Equal(t, "first", vms[0].ReportUUID)
}
