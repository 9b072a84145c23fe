package store

import (
	"context"
	"time"

	"github.com/tensioapp/tensio/internal/models"
)

// Store provides read access to patient health data. All methods return
// the zero slice (never nil maps) on empty result sets; FetchPatient
// returns (nil, nil) when the patient does not exist.
type Store interface {
	// FetchPatient looks a patient up by patient id, falling back to
	// user id when no patient row matches.
	FetchPatient(ctx context.Context, patientID string) (*models.PatientProfile, error)

	// FetchReadings returns blood pressure readings within [start, end],
	// newest first.
	FetchReadings(ctx context.Context, patientID string, start, end time.Time) ([]models.BloodPressureReading, error)

	// FetchMedications returns the patient's medications, optionally
	// restricted to active prescriptions.
	FetchMedications(ctx context.Context, patientID string, activeOnly bool) ([]models.Medication, error)

	// FetchMedicationLogs returns dose logs scheduled after the cutoff,
	// newest first.
	FetchMedicationLogs(ctx context.Context, patientID string, since time.Time) ([]models.MedicationLogEntry, error)

	// FetchLifestyleEntries returns lifestyle log entries dated on or
	// after the cutoff day, newest first.
	FetchLifestyleEntries(ctx context.Context, patientID string, since time.Time) ([]models.LifestyleEntry, error)

	// Close releases the underlying connections.
	Close() error
}
