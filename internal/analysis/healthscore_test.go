package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensioapp/tensio/internal/models"
)

func TestHealthScore_InsufficientReadings(t *testing.T) {
	st := &fakeStore{patient: testPatient(), readings: flatReadings(3, 120, 80)}
	svc := newTestService(st)

	_, err := svc.HealthScore(context.Background(), "p-1", 30)
	require.Error(t, err)

	var analysisErr *Error
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, CodeInsufficientData, analysisErr.Code)
	assert.Equal(t, 3, analysisErr.Details["readings_count"])
	assert.Equal(t, 7, analysisErr.Details["minimum_required"])
}

func TestHealthScore_WithoutLifestyleDropsSleepCategory(t *testing.T) {
	st := &fakeStore{patient: testPatient(), readings: flatReadings(7, 118, 78)}
	svc := newTestService(st)

	score, err := svc.HealthScore(context.Background(), "p-1", 30)
	require.NoError(t, err)

	require.Len(t, score.Categories, 4)
	names := make([]string, len(score.Categories))
	for i, c := range score.Categories {
		names[i] = c.Name
	}
	assert.Equal(t, []string{
		"Blood Pressure Control",
		"Medication Adherence",
		"Lifestyle Factors",
		"Monitoring Consistency",
	}, names)

	// All normal readings with zero spread: 100 plus the consistency bonus,
	// clamped back to 100.
	assert.Equal(t, 100, score.Categories[0].Score)
	assert.Equal(t, "excellent", score.Categories[0].Status)

	// Nothing prescribed scores a floor of 85.
	assert.Equal(t, 85, score.Categories[1].Score)

	// No lifestyle entries yield the neutral 50.
	assert.Equal(t, 50, score.Categories[2].Score)

	// 7 readings over 30 days, none time-labeled.
	assert.Equal(t, 23, score.Categories[3].Score)

	// Weighted mean over the four present categories.
	assert.Equal(t, 76, score.Overall)
}

func TestHealthScore_WithLifestyleAddsSleepCategory(t *testing.T) {
	st := &fakeStore{
		patient:  testPatient(),
		readings: flatReadings(7, 118, 78),
		lifestyle: []models.LifestyleEntry{{
			EntryDate:        "2026-08-30",
			PhysicalActivity: intPtr(45),
			DietQuality:      "healthy",
			SaltIntake:       "low",
			StressLevel:      "low",
			WaterIntake:      intPtr(8),
			SleepDuration:    floatPtr(8),
			SleepQuality:     "good",
		}},
	}
	svc := newTestService(st)

	score, err := svc.HealthScore(context.Background(), "p-1", 30)
	require.NoError(t, err)

	require.Len(t, score.Categories, 5)
	assert.Equal(t, "Sleep & Recovery", score.Categories[4].Name)

	// 50 base + 20 activity + 15 diet + 10 salt + 10 stress + 5 water,
	// capped at 100.
	assert.Equal(t, 100, score.Categories[2].Score)
	// 50 base + 30 duration + 15 quality.
	assert.Equal(t, 95, score.Categories[4].Score)
}

func TestHealthScore_PoorControlFlagsImprovementAreas(t *testing.T) {
	st := &fakeStore{
		patient:  testPatient(),
		readings: flatReadings(14, 165, 102),
		medications: []models.Medication{
			{Name: "Lisinopril", Active: true, AdherenceRate: floatPtr(60)},
		},
	}
	svc := newTestService(st)

	score, err := svc.HealthScore(context.Background(), "p-1", 30)
	require.NoError(t, err)

	// Every reading is in the high band: 30 weight plus consistency bonus.
	assert.Equal(t, 35, score.Categories[0].Score)
	assert.Equal(t, "poor", score.Categories[0].Status)
	assert.Equal(t, 60, score.Categories[1].Score)

	assert.Contains(t, score.ImprovementAreas, "Focus on consistent blood pressure management")
	assert.Contains(t, score.ImprovementAreas, "Consult your doctor about adjusting treatment")
	assert.Contains(t, score.ImprovementAreas, "Set reminders to improve medication consistency")
	assert.LessOrEqual(t, len(score.ImprovementAreas), 5)
}

func TestHealthScore_MonitoringRewardsConsistentTimeOfDay(t *testing.T) {
	readings := flatReadings(15, 118, 78)
	for i := range readings {
		readings[i].TimeOfDay = "morning"
	}
	st := &fakeStore{patient: testPatient(), readings: readings}
	svc := newTestService(st)

	score, err := svc.HealthScore(context.Background(), "p-1", 30)
	require.NoError(t, err)

	// 15/30 coverage = 50, plus the full 10-point time-of-day bonus.
	assert.Equal(t, 60, score.Categories[3].Score)
}
