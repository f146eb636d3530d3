package models

import "time"

// Report lifecycle states as returned by the report backend.
const (
	ReportStateNew       = "new"
	ReportStateProcessed = "processed"
)

// Tags attached to detected traffic signs on a processed report.
const (
	SignTagDamaged = "DAMAGED"
	SignTagHealthy = "HEALTHY"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TrafficSign is one detected sign on a processed report, in natural image
// pixel coordinates.
type TrafficSign struct {
	X1  float64 `json:"x1"`
	Y1  float64 `json:"y1"`
	X2  float64 `json:"x2"`
	Y2  float64 `json:"y2"`
	Tag string  `json:"tag"`
}

// ReportRecord is the server-authoritative report. Created by the backend on
// submission; the client only ever reads it back.
type ReportRecord struct {
	ReportUUID  string        `json:"report_uuid"`
	State       string        `json:"state"`
	ReportedAt  time.Time     `json:"reported_at"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
	Address     string        `json:"address"`
	ImageURL    string        `json:"image_url"`
	Description string        `json:"description,omitempty"`
	Location    Location      `json:"location"`
	Objects     []TrafficSign `json:"objects"`
}

// IsProcessed reports whether the backend has finished analyzing the report.
func (r *ReportRecord) IsProcessed() bool {
	return r.State == ReportStateProcessed
}

// DamagedCount returns the number of detected signs tagged as damaged.
func (r *ReportRecord) DamagedCount() int {
	n := 0
	for _, obj := range r.Objects {
		if obj.Tag == SignTagDamaged {
			n++
		}
	}
	return n
}
