package viewmodel

import (
	"fmt"
	"time"

	"github.com/fixthesign/fixthesign/app/models"
)

// Report contains all information needed to render a report card or
// detail page.
type Report struct {
	ReportUUID string

	// Lifecycle
	State       string
	IsProcessed bool
	ReportedAt  string
	ProcessedAt string

	// Where the sign stands
	Address   string
	Latitude  string
	Longitude string

	// Photo and analysis
	ImageURL     string
	Description  string
	Signs        []models.TrafficSign
	SignCount    int
	DamagedCount int

	// Short status line for the list view
	Summary string
}

// NewReport maps a backend report record onto the view model.
func NewReport(rec models.ReportRecord) Report {
	vm := Report{
		ReportUUID:   rec.ReportUUID,
		State:        rec.State,
		IsProcessed:  rec.IsProcessed(),
		ReportedAt:   formatTime(rec.ReportedAt),
		Address:      rec.Address,
		Latitude:     fmt.Sprintf("%.6f", rec.Location.Lat),
		Longitude:    fmt.Sprintf("%.6f", rec.Location.Lng),
		ImageURL:     rec.ImageURL,
		Description:  rec.Description,
		Signs:        rec.Objects,
		SignCount:    len(rec.Objects),
		DamagedCount: rec.DamagedCount(),
	}
	if rec.ProcessedAt != nil {
		vm.ProcessedAt = formatTime(*rec.ProcessedAt)
	}
	vm.Summary = summarize(vm)
	return vm
}

// NewReportList maps a slice of records, newest first as delivered.
func NewReportList(recs []models.ReportRecord) []Report {
	out := make([]Report, len(recs))
	for i, rec := range recs {
		out[i] = NewReport(rec)
	}
	return out
}

func summarize(vm Report) string {
	if !vm.IsProcessed {
		return "Analysis pending"
	}
	switch {
	case vm.SignCount == 0:
		return "No traffic signs found"
	case vm.DamagedCount == 0:
		return fmt.Sprintf("%d sign(s), none damaged", vm.SignCount)
	default:
		return fmt.Sprintf("%d sign(s), %d damaged", vm.SignCount, vm.DamagedCount)
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("02.01.2006 15:04")
}
