package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq" // registers the postgres driver

	"github.com/tensioapp/tensio/internal/config"
	"github.com/tensioapp/tensio/internal/models"
	"github.com/tensioapp/tensio/internal/timeseries"
)

// Postgres implements Store on top of a Postgres database.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool and verifies connectivity.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// NewPostgresWithDB wraps an existing connection pool.
func NewPostgresWithDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Close closes the connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}

// FetchPatient looks a patient up by id, then by user id.
func (s *Postgres) FetchPatient(ctx context.Context, patientID string) (*models.PatientProfile, error) {
	const q = `
		SELECT
			p.id::text,
			p.user_id::text,
			COALESCE(u.name, ''),
			COALESCE(u.age, 0),
			COALESCE(p.risk_level, ''),
			COALESCE(p.medical_history, ''),
			COALESCE(p.allergies, '')
		FROM patients p
		LEFT JOIN users u ON p.user_id = u.id
		WHERE p.id::text = $1`

	patient, err := s.scanPatient(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	if patient != nil {
		return patient, nil
	}

	// Callers sometimes hold the user id instead of the patient id.
	const qByUser = `
		SELECT
			p.id::text,
			p.user_id::text,
			COALESCE(u.name, ''),
			COALESCE(u.age, 0),
			COALESCE(p.risk_level, ''),
			COALESCE(p.medical_history, ''),
			COALESCE(p.allergies, '')
		FROM patients p
		LEFT JOIN users u ON p.user_id = u.id
		WHERE p.user_id::text = $1`

	return s.scanPatient(ctx, qByUser, patientID)
}

func (s *Postgres) scanPatient(ctx context.Context, query, id string) (*models.PatientProfile, error) {
	var p models.PatientProfile
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Age, &p.RiskLevel, &p.MedicalHistory, &p.Allergies,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch patient: %w", err)
	}
	return &p, nil
}

// FetchReadings returns readings within [start, end], newest first.
func (s *Postgres) FetchReadings(ctx context.Context, patientID string, start, end time.Time) ([]models.BloodPressureReading, error) {
	const q = `
		SELECT
			id::text,
			patient_id::text,
			systolic,
			diastolic,
			pulse,
			measurement_date,
			COALESCE(time_of_day, ''),
			COALESCE(position, ''),
			COALESCE(arm, ''),
			COALESCE(notes, '')
		FROM blood_pressure_readings
		WHERE patient_id::text = $1
		  AND measurement_date >= $2
		  AND measurement_date <= $3
		ORDER BY measurement_date DESC`

	rows, err := s.db.QueryContext(ctx, q, patientID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch readings: %w", err)
	}
	defer rows.Close()

	readings := []models.BloodPressureReading{}
	for rows.Next() {
		var r models.BloodPressureReading
		var pulse sql.NullInt64
		if err := rows.Scan(
			&r.ID, &r.PatientID, &r.Systolic, &r.Diastolic, &pulse,
			&r.MeasurementDate, &r.TimeOfDay, &r.Position, &r.Arm, &r.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		if pulse.Valid {
			v := int(pulse.Int64)
			r.Pulse = &v
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}
	return readings, nil
}

// FetchMedications returns the patient's medications.
func (s *Postgres) FetchMedications(ctx context.Context, patientID string, activeOnly bool) ([]models.Medication, error) {
	q := `
		SELECT
			id::text,
			patient_id::text,
			name,
			COALESCE(dosage, ''),
			COALESCE(frequency, ''),
			active,
			adherence_rate,
			COALESCE(time_of_day, '{}')
		FROM medications
		WHERE patient_id::text = $1`
	if activeOnly {
		q += ` AND active = TRUE`
	}

	rows, err := s.db.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch medications: %w", err)
	}
	defer rows.Close()

	meds := []models.Medication{}
	for rows.Next() {
		var m models.Medication
		var adherence sql.NullFloat64
		if err := rows.Scan(
			&m.ID, &m.PatientID, &m.Name, &m.Dosage, &m.Frequency,
			&m.Active, &adherence, pq.Array(&m.TimeOfDay),
		); err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		if adherence.Valid {
			v := adherence.Float64
			m.AdherenceRate = &v
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medications: %w", err)
	}
	return meds, nil
}

// FetchMedicationLogs returns dose logs scheduled after the cutoff, newest first.
func (s *Postgres) FetchMedicationLogs(ctx context.Context, patientID string, since time.Time) ([]models.MedicationLogEntry, error) {
	const q = `
		SELECT
			ml.id::text,
			ml.medication_id::text,
			ml.scheduled_time,
			ml.taken,
			ml.taken_time,
			COALESCE(ml.skipped_reason, '')
		FROM medication_logs ml
		WHERE ml.patient_id::text = $1
		  AND ml.scheduled_time >= $2
		ORDER BY ml.scheduled_time DESC`

	rows, err := s.db.QueryContext(ctx, q, patientID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch medication logs: %w", err)
	}
	defer rows.Close()

	logs := []models.MedicationLogEntry{}
	for rows.Next() {
		var l models.MedicationLogEntry
		var takenTime sql.NullTime
		if err := rows.Scan(
			&l.ID, &l.MedicationID, &l.ScheduledTime, &l.Taken, &takenTime, &l.SkippedReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan medication log: %w", err)
		}
		if takenTime.Valid {
			t := takenTime.Time
			l.TakenTime = &t
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medication logs: %w", err)
	}
	return logs, nil
}

// FetchLifestyleEntries returns lifestyle entries dated on or after the
// cutoff day, newest first.
func (s *Postgres) FetchLifestyleEntries(ctx context.Context, patientID string, since time.Time) ([]models.LifestyleEntry, error) {
	const q = `
		SELECT
			id::text,
			patient_id::text,
			entry_date::text,
			physical_activity,
			COALESCE(exercise_type, ''),
			COALESCE(diet_quality, ''),
			COALESCE(salt_intake, ''),
			sleep_duration,
			COALESCE(sleep_quality, ''),
			COALESCE(stress_level, ''),
			water_intake,
			weight,
			alcohol_consumption,
			COALESCE(smoking_status, ''),
			sodium_mg,
			caffeine_intake,
			COALESCE(notes, '')
		FROM lifestyle_entries
		WHERE patient_id::text = $1
		  AND entry_date >= $2
		ORDER BY entry_date DESC`

	rows, err := s.db.QueryContext(ctx, q, patientID, since.Format(timeseries.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lifestyle entries: %w", err)
	}
	defer rows.Close()

	entries := []models.LifestyleEntry{}
	for rows.Next() {
		var e models.LifestyleEntry
		var (
			physicalActivity sql.NullInt64
			sleepDuration    sql.NullFloat64
			waterIntake      sql.NullInt64
			weight           sql.NullFloat64
			alcohol          sql.NullInt64
			sodium           sql.NullInt64
			caffeine         sql.NullInt64
		)
		if err := rows.Scan(
			&e.ID, &e.PatientID, &e.EntryDate,
			&physicalActivity, &e.ExerciseType, &e.DietQuality, &e.SaltIntake,
			&sleepDuration, &e.SleepQuality, &e.StressLevel,
			&waterIntake, &weight, &alcohol, &e.SmokingStatus,
			&sodium, &caffeine, &e.Notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lifestyle entry: %w", err)
		}
		e.PhysicalActivity = nullInt(physicalActivity)
		e.SleepDuration = nullFloat(sleepDuration)
		e.WaterIntake = nullInt(waterIntake)
		e.Weight = nullFloat(weight)
		e.AlcoholConsumption = nullInt(alcohol)
		e.SodiumMg = nullInt(sodium)
		e.CaffeineIntake = nullInt(caffeine)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lifestyle entries: %w", err)
	}
	return entries, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
