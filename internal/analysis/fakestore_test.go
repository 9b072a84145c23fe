package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/tensioapp/tensio/internal/cache"
	"github.com/tensioapp/tensio/internal/config"
	"github.com/tensioapp/tensio/internal/logging"
	"github.com/tensioapp/tensio/internal/models"
)

// fakeStore is an in-memory Store backed by fixed slices. Fetch windows are
// ignored; tests generate data inside the window they query.
type fakeStore struct {
	patient     *models.PatientProfile
	readings    []models.BloodPressureReading
	medications []models.Medication
	medLogs     []models.MedicationLogEntry
	lifestyle   []models.LifestyleEntry

	err error

	patientFetches int
}

func (f *fakeStore) FetchPatient(_ context.Context, _ string) (*models.PatientProfile, error) {
	f.patientFetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.patient, nil
}

func (f *fakeStore) FetchReadings(_ context.Context, _ string, _, _ time.Time) ([]models.BloodPressureReading, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.readings, nil
}

func (f *fakeStore) FetchMedications(_ context.Context, _ string, activeOnly bool) ([]models.Medication, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !activeOnly {
		return f.medications, nil
	}
	var active []models.Medication
	for _, m := range f.medications {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

func (f *fakeStore) FetchMedicationLogs(_ context.Context, _ string, _ time.Time) ([]models.MedicationLogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.medLogs, nil
}

func (f *fakeStore) FetchLifestyleEntries(_ context.Context, _ string, _ time.Time) ([]models.LifestyleEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lifestyle, nil
}

func (f *fakeStore) Close() error { return nil }

func testPatient() *models.PatientProfile {
	return &models.PatientProfile{ID: "p-1", UserID: "u-1", Name: "Test Patient", Age: 30}
}

func newTestService(st *fakeStore) *Service {
	return NewService(st, cache.NewMemory(100, time.Minute), logging.NewDevelopment(), config.AnalysisConfig{
		MinReadings:         7,
		DefaultWindowDays:   30,
		PredictionDays:      30,
		ForecastHistoryDays: 60,
	})
}

// flatReadings builds n readings at the given pressure, newest first, one
// per day ending today.
func flatReadings(n, systolic, diastolic int) []models.BloodPressureReading {
	readings := make([]models.BloodPressureReading, n)
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		readings[i] = models.BloodPressureReading{
			ID:              fmt.Sprintf("r-%d", i),
			PatientID:       "p-1",
			Systolic:        systolic,
			Diastolic:       diastolic,
			MeasurementDate: now.AddDate(0, 0, -i),
		}
	}
	return readings
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
