package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensioapp/tensio/internal/models"
	"github.com/tensioapp/tensio/internal/timeseries"
)

func TestPatterns_InsufficientReadings(t *testing.T) {
	st := &fakeStore{patient: testPatient(), readings: flatReadings(5, 120, 80)}
	svc := newTestService(st)

	_, err := svc.Patterns(context.Background(), "p-1", 30)
	require.Error(t, err)

	var analysisErr *Error
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, CodeInsufficientData, analysisErr.Code)
}

func TestPatterns_MorningSpike(t *testing.T) {
	now := time.Now().UTC()
	var readings []models.BloodPressureReading
	for i := 0; i < 5; i++ {
		readings = append(readings, models.BloodPressureReading{
			Systolic: 160, Diastolic: 95, TimeOfDay: "morning",
			MeasurementDate: now.AddDate(0, 0, -i),
		})
		readings = append(readings, models.BloodPressureReading{
			Systolic: 130, Diastolic: 82, TimeOfDay: "evening",
			MeasurementDate: now.AddDate(0, 0, -i),
		})
	}
	svc := newTestService(&fakeStore{patient: testPatient(), readings: readings})

	analysis, err := svc.Patterns(context.Background(), "p-1", 30)
	require.NoError(t, err)

	var spike *models.Pattern
	for i := range analysis.Patterns {
		if analysis.Patterns[i].Type == "Morning Spike" {
			spike = &analysis.Patterns[i]
		}
	}
	require.NotNil(t, spike, "expected a morning spike pattern")
	// A 30-point gap crosses the high severity cutoff.
	assert.Equal(t, "high", spike.Severity)
	assert.Equal(t, "100% of mornings", spike.Frequency)
	assert.Equal(t, "Blood pressure averages 160 mmHg in the morning, 30 points higher than evening", spike.Description)
}

func TestPatterns_EveningElevation(t *testing.T) {
	now := time.Now().UTC()
	var readings []models.BloodPressureReading
	for i := 0; i < 5; i++ {
		readings = append(readings, models.BloodPressureReading{
			Systolic: 125, Diastolic: 80, TimeOfDay: "morning",
			MeasurementDate: now.AddDate(0, 0, -i),
		})
		readings = append(readings, models.BloodPressureReading{
			Systolic: 145, Diastolic: 90, TimeOfDay: "evening",
			MeasurementDate: now.AddDate(0, 0, -i),
		})
	}
	svc := newTestService(&fakeStore{patient: testPatient(), readings: readings})

	analysis, err := svc.Patterns(context.Background(), "p-1", 30)
	require.NoError(t, err)

	found := false
	for _, p := range analysis.Patterns {
		if p.Type == "Evening Elevation" {
			found = true
			assert.Equal(t, "moderate", p.Severity)
		}
	}
	assert.True(t, found)
}

func TestPatterns_ConsistentReadings(t *testing.T) {
	svc := newTestService(&fakeStore{patient: testPatient(), readings: flatReadings(10, 122, 80)})

	analysis, err := svc.Patterns(context.Background(), "p-1", 30)
	require.NoError(t, err)

	require.Len(t, analysis.Patterns, 1)
	assert.Equal(t, "Consistent Readings", analysis.Patterns[0].Type)
	assert.Equal(t, "low", analysis.Patterns[0].Severity)
	assert.Equal(t, "Std dev: 0.0 mmHg", analysis.Patterns[0].Frequency)
}

func TestPatterns_OrthostaticHypotensionRisk(t *testing.T) {
	now := time.Now().UTC()
	var readings []models.BloodPressureReading
	for i := 0; i < 4; i++ {
		readings = append(readings, models.BloodPressureReading{
			Systolic: 140, Diastolic: 88, Position: "sitting",
			MeasurementDate: now.AddDate(0, 0, -i),
		})
		readings = append(readings, models.BloodPressureReading{
			Systolic: 120, Diastolic: 78, Position: "standing",
			MeasurementDate: now.AddDate(0, 0, -i),
		})
	}
	svc := newTestService(&fakeStore{patient: testPatient(), readings: readings})

	analysis, err := svc.Patterns(context.Background(), "p-1", 30)
	require.NoError(t, err)

	var risk *models.Pattern
	for i := range analysis.Patterns {
		if analysis.Patterns[i].Type == "Orthostatic Hypotension Risk" {
			risk = &analysis.Patterns[i]
		}
	}
	require.NotNil(t, risk)
	assert.Equal(t, "high", risk.Severity)
	// High severity patterns sort ahead of the rest.
	assert.Equal(t, *risk, analysis.Patterns[0])
}

func TestPatterns_StressResponse(t *testing.T) {
	now := time.Now().UTC()
	var readings []models.BloodPressureReading
	var lifestyle []models.LifestyleEntry

	// Four high-stress days at 150, four low-stress days at 125.
	for i := 0; i < 8; i++ {
		date := now.AddDate(0, 0, -i)
		systolic := 150
		stress := "high"
		if i >= 4 {
			systolic = 125
			stress = "low"
		}
		readings = append(readings, models.BloodPressureReading{
			Systolic: systolic, Diastolic: 85, MeasurementDate: date,
		})
		lifestyle = append(lifestyle, models.LifestyleEntry{
			EntryDate:   timeseries.DayKey(date),
			StressLevel: stress,
		})
	}
	svc := newTestService(&fakeStore{patient: testPatient(), readings: readings, lifestyle: lifestyle})

	analysis, err := svc.Patterns(context.Background(), "p-1", 30)
	require.NoError(t, err)

	found := false
	for _, p := range analysis.Patterns {
		if p.Type == "Stress Response" {
			found = true
			assert.Equal(t, "Blood pressure averages 25 mmHg higher on days with high stress", p.Description)
		}
	}
	assert.True(t, found)
}

func TestPatterns_EmptyListNotNil(t *testing.T) {
	// Nine readings with moderate spread trigger no pattern at all.
	now := time.Now().UTC()
	var readings []models.BloodPressureReading
	for i := 0; i < 9; i++ {
		readings = append(readings, models.BloodPressureReading{
			Systolic: 120 + (i%3)*10, Diastolic: 80,
			MeasurementDate: now.AddDate(0, 0, -i),
		})
	}
	svc := newTestService(&fakeStore{patient: testPatient(), readings: readings})

	analysis, err := svc.Patterns(context.Background(), "p-1", 30)
	require.NoError(t, err)

	assert.NotNil(t, analysis.Patterns)
	assert.Empty(t, analysis.Patterns)
}
