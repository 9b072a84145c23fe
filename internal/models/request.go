package models

import "time"

// TimeRange optionally overrides the default analysis window.
type TimeRange struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// AnalysisRequest is the request body shared by all analysis endpoints
// except forecast.
type AnalysisRequest struct {
	PatientID string     `json:"patient_id"`
	TimeRange *TimeRange `json:"time_range,omitempty"`
}

// WindowDays resolves the analysis window in days. When the request carries
// both start and end dates, their difference wins; otherwise defaultDays.
func (r *AnalysisRequest) WindowDays(defaultDays int) int {
	if r.TimeRange == nil || r.TimeRange.StartDate == nil || r.TimeRange.EndDate == nil {
		return defaultDays
	}
	days := int(r.TimeRange.EndDate.Sub(*r.TimeRange.StartDate).Hours() / 24)
	if days <= 0 {
		return defaultDays
	}
	return days
}

// ForecastRequest is the request body for the forecast endpoint.
type ForecastRequest struct {
	PatientID    string `json:"patient_id"`
	Metric       string `json:"metric"`        // systolic, diastolic, pulse
	ForecastDays int    `json:"forecast_days"` // 7-90
}

// Normalize applies defaults and clamps the horizon to its valid range.
func (r *ForecastRequest) Normalize() {
	if r.Metric == "" {
		r.Metric = "systolic"
	}
	if r.ForecastDays == 0 {
		r.ForecastDays = 30
	}
	if r.ForecastDays < 7 {
		r.ForecastDays = 7
	}
	if r.ForecastDays > 90 {
		r.ForecastDays = 90
	}
}
