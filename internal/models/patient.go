package models

import "time"

// BloodPressureReading represents a single blood pressure measurement.
// Systolic and diastolic are always present; everything else is optional.
type BloodPressureReading struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	Systolic        int       `json:"systolic"`
	Diastolic       int       `json:"diastolic"`
	Pulse           *int      `json:"pulse,omitempty"`
	MeasurementDate time.Time `json:"measurement_date"`
	TimeOfDay       string    `json:"time_of_day,omitempty"` // morning, afternoon, evening, night
	Position        string    `json:"position,omitempty"`    // sitting, standing, lying, unknown
	Arm             string    `json:"arm,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// Medication represents a prescribed medication.
type Medication struct {
	ID            string   `json:"id"`
	PatientID     string   `json:"patient_id"`
	Name          string   `json:"name"`
	Dosage        string   `json:"dosage"`
	Frequency     string   `json:"frequency"`
	Active        bool     `json:"active"`
	AdherenceRate *float64 `json:"adherence_rate,omitempty"` // 0-100
	TimeOfDay     []string `json:"time_of_day,omitempty"`
}

// MedicationLogEntry represents a scheduled dose and whether it was taken.
type MedicationLogEntry struct {
	ID            string     `json:"id"`
	MedicationID  string     `json:"medication_id"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	Taken         bool       `json:"taken"`
	TakenTime     *time.Time `json:"taken_time,omitempty"`
	SkippedReason string     `json:"skipped_reason,omitempty"`
}

// LifestyleEntry is a sparse per-day lifestyle log. EntryDate has day
// granularity and is kept as a YYYY-MM-DD string, matching the store.
type LifestyleEntry struct {
	ID                 string   `json:"id"`
	PatientID          string   `json:"patient_id"`
	EntryDate          string   `json:"entry_date"`
	PhysicalActivity   *int     `json:"physical_activity,omitempty"` // minutes
	ExerciseType       string   `json:"exercise_type,omitempty"`
	DietQuality        string   `json:"diet_quality,omitempty"` // healthy, moderate, poor
	SaltIntake         string   `json:"salt_intake,omitempty"`  // low, moderate, high
	SleepDuration      *float64 `json:"sleep_duration,omitempty"`
	SleepQuality       string   `json:"sleep_quality,omitempty"` // excellent, good, fair, poor
	StressLevel        string   `json:"stress_level,omitempty"`  // low, moderate, high, severe
	WaterIntake        *int     `json:"water_intake,omitempty"`  // glasses
	Weight             *float64 `json:"weight,omitempty"`
	AlcoholConsumption *int     `json:"alcohol_consumption,omitempty"` // drinks
	SmokingStatus      string   `json:"smoking_status,omitempty"`
	SodiumMg           *int     `json:"sodium_mg,omitempty"`
	CaffeineIntake     *int     `json:"caffeine_intake,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}

// PatientProfile represents a patient record joined with its user record.
// Age comes from the linked user and is 0 when the join yields nothing.
type PatientProfile struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name,omitempty"`
	Age            int    `json:"age,omitempty"`
	RiskLevel      string `json:"risk_level"`
	MedicalHistory string `json:"medical_history,omitempty"`
	Allergies      string `json:"allergies,omitempty"`
}
