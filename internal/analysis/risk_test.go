package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensioapp/tensio/internal/models"
)

func TestRiskAssessment_InsufficientReadings(t *testing.T) {
	st := &fakeStore{patient: testPatient(), readings: flatReadings(3, 120, 80)}
	svc := newTestService(st)

	_, err := svc.RiskAssessment(context.Background(), "p-1", 30)
	require.Error(t, err)

	var analysisErr *Error
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, CodeInsufficientData, analysisErr.Code)
	assert.Equal(t, 3, analysisErr.Details["readings_count"])
	assert.Equal(t, 7, analysisErr.Details["minimum_required"])
}

func TestRiskAssessment_LowRisk(t *testing.T) {
	st := &fakeStore{patient: testPatient(), readings: flatReadings(10, 118, 78)}
	svc := newTestService(st)

	assessment, err := svc.RiskAssessment(context.Background(), "p-1", 30)
	require.NoError(t, err)

	assert.Equal(t, "low", assessment.OverallRisk)
	assert.Equal(t, 0, assessment.RiskScore)
	assert.Empty(t, assessment.Factors)
	assert.NotNil(t, assessment.Factors, "factors must serialize as [], not null")
	require.NotEmpty(t, assessment.Recommendations)
	assert.Equal(t, "Maintain your healthy lifestyle habits", assessment.Recommendations[0])
}

func TestRiskAssessment_ModerateRisk(t *testing.T) {
	// 100% elevated readings (+20), average in stage 2 (+6), age 65 (+10).
	patient := testPatient()
	patient.Age = 65
	st := &fakeStore{patient: patient, readings: flatReadings(14, 150, 95)}
	svc := newTestService(st)

	assessment, err := svc.RiskAssessment(context.Background(), "p-1", 30)
	require.NoError(t, err)

	assert.Equal(t, 36, assessment.RiskScore)
	assert.Equal(t, "moderate", assessment.OverallRisk)
	assert.Equal(t, "Continue regular monitoring and follow treatment plan", assessment.Recommendations[0])

	names := make(map[string]bool)
	for _, f := range assessment.Factors {
		names[f.Name] = true
	}
	assert.True(t, names["Consistently Elevated BP"])
	assert.True(t, names["Age"])
}

func TestRiskAssessment_HighRisk(t *testing.T) {
	patient := testPatient()
	patient.Age = 65
	st := &fakeStore{
		patient:  patient,
		readings: flatReadings(14, 150, 95),
		medications: []models.Medication{
			{Name: "Lisinopril", Active: true, AdherenceRate: floatPtr(80)},
		},
		lifestyle: []models.LifestyleEntry{{EntryDate: "2026-08-30", SaltIntake: "high"}},
	}
	svc := newTestService(st)

	assessment, err := svc.RiskAssessment(context.Background(), "p-1", 30)
	require.NoError(t, err)

	// 20 elevated + 6 average + 12 adherence + 8 salt + 8 inactivity + 10 age.
	assert.Equal(t, 64, assessment.RiskScore)
	assert.Equal(t, "high", assessment.OverallRisk)
	assert.Equal(t, "Schedule follow-up appointment within 1-2 weeks", assessment.Recommendations[0])
	assert.LessOrEqual(t, len(assessment.Recommendations), 5)
}

func TestRiskAssessment_CriticalRiskCapsAt100(t *testing.T) {
	patient := testPatient()
	patient.Age = 70
	patient.MedicalHistory = "Type 2 diabetes, chronic kidney disease, heart failure"
	st := &fakeStore{
		patient:  patient,
		readings: flatReadings(14, 185, 125),
		medications: []models.Medication{
			{Name: "Lisinopril", Active: true, AdherenceRate: floatPtr(50)},
		},
		lifestyle: []models.LifestyleEntry{{
			EntryDate: "2026-08-30", SaltIntake: "high",
			StressLevel: "severe", SmokingStatus: "current",
		}},
	}
	svc := newTestService(st)

	assessment, err := svc.RiskAssessment(context.Background(), "p-1", 30)
	require.NoError(t, err)

	assert.Equal(t, 100, assessment.RiskScore)
	assert.Equal(t, "critical", assessment.OverallRisk)
	assert.Equal(t, "Schedule urgent appointment with your healthcare provider", assessment.Recommendations[0])
	assert.NotEmpty(t, assessment.Factors)

	names := make(map[string]bool)
	for _, f := range assessment.Factors {
		names[f.Name] = true
	}
	assert.True(t, names["Critical BP Episodes"])
	assert.True(t, names["Diabetes"])
	assert.True(t, names["Kidney Disease"])
	assert.True(t, names["Heart Condition"])
	assert.True(t, names["Smoking"])
}

func TestRiskAssessment_ExcellentAdherenceFactorWithoutPoints(t *testing.T) {
	st := &fakeStore{
		patient:  testPatient(),
		readings: flatReadings(10, 118, 78),
		medications: []models.Medication{
			{Name: "Lisinopril", Active: true, AdherenceRate: floatPtr(97)},
		},
	}
	svc := newTestService(st)

	assessment, err := svc.RiskAssessment(context.Background(), "p-1", 30)
	require.NoError(t, err)

	assert.Equal(t, 0, assessment.RiskScore)
	require.Len(t, assessment.Factors, 1)
	assert.Equal(t, "Medication Adherence", assessment.Factors[0].Name)
	assert.Equal(t, "low", assessment.Factors[0].Impact)
}
