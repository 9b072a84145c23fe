package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tensioapp/tensio/internal/cache"
	"github.com/tensioapp/tensio/internal/config"
	"github.com/tensioapp/tensio/internal/logging"
	"github.com/tensioapp/tensio/internal/models"
	"github.com/tensioapp/tensio/internal/store"
)

// Service runs the analytic routines. It is stateless apart from the shared
// artifact cache; concurrent calls are safe.
type Service struct {
	store  store.Store
	cache  cache.Cache
	logger *logging.Logger
	cfg    config.AnalysisConfig
}

// NewService creates a new analysis service
func NewService(st store.Store, c cache.Cache, logger *logging.Logger, cfg config.AnalysisConfig) *Service {
	return &Service{
		store:  st,
		cache:  c,
		logger: logger,
		cfg:    cfg,
	}
}

// InvalidateCache removes every cached artifact for the patient and returns
// the number of removed entries.
func (s *Service) InvalidateCache(ctx context.Context, patientID string) int {
	removed := s.cache.Invalidate(ctx, patientID)
	s.logger.Info("Cache invalidated",
		"patient_id", patientID,
		"entries_removed", removed)
	return removed
}

// CacheStats reports cache occupancy and configuration.
func (s *Service) CacheStats(ctx context.Context) cache.Stats {
	return s.cache.Stats(ctx)
}

// runCached serves kind from the cache when possible, otherwise computes the
// artifact and stores its serialized form. A cache hit round-trips through
// JSON so hits and misses yield bit-identical bodies.
func runCached[T any](ctx context.Context, s *Service, patientID, kind string, params map[string]any, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	if raw, ok := s.cache.Get(ctx, patientID, kind, params); ok {
		var artifact T
		if err := json.Unmarshal(raw, &artifact); err == nil {
			s.logger.Debug("Cache hit", "patient_id", patientID, "kind", kind)
			return artifact, nil
		}
		// Corrupt entry: fall through and recompute.
		s.logger.Warn("Discarding undecodable cache entry", "patient_id", patientID, "kind", kind)
	}

	artifact, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	raw, err := json.Marshal(artifact)
	if err != nil {
		return zero, NewError(CodeAnalysisFailed, fmt.Sprintf("failed to serialize %s artifact", kind))
	}
	s.cache.Set(ctx, patientID, kind, params, raw)

	return artifact, nil
}

// resolvePatient loads the patient profile or fails with PatientNotFound.
func (s *Service) resolvePatient(ctx context.Context, patientID string) (*models.PatientProfile, error) {
	patient, err := s.store.FetchPatient(ctx, patientID)
	if err != nil {
		return nil, ErrDatabase(err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound(patientID)
	}
	return patient, nil
}

// window converts a day count to a [start, end] fetch range ending now.
func window(days int) (time.Time, time.Time) {
	end := time.Now().UTC()
	return end.AddDate(0, 0, -days), end
}

func (s *Service) fetchReadings(ctx context.Context, patientID string, days int) ([]models.BloodPressureReading, error) {
	start, end := window(days)
	readings, err := s.store.FetchReadings(ctx, patientID, start, end)
	if err != nil {
		return nil, ErrDatabase(err)
	}
	return readings, nil
}

func (s *Service) fetchMedications(ctx context.Context, patientID string) ([]models.Medication, error) {
	meds, err := s.store.FetchMedications(ctx, patientID, true)
	if err != nil {
		return nil, ErrDatabase(err)
	}
	return meds, nil
}

func (s *Service) fetchMedicationLogs(ctx context.Context, patientID string, days int) ([]models.MedicationLogEntry, error) {
	start, _ := window(days)
	logs, err := s.store.FetchMedicationLogs(ctx, patientID, start)
	if err != nil {
		return nil, ErrDatabase(err)
	}
	return logs, nil
}

func (s *Service) fetchLifestyle(ctx context.Context, patientID string, days int) ([]models.LifestyleEntry, error) {
	start, _ := window(days)
	entries, err := s.store.FetchLifestyleEntries(ctx, patientID, start)
	if err != nil {
		return nil, ErrDatabase(err)
	}
	return entries, nil
}

// requireReadings enforces the minimum reading count shared by every routine
// except insight generation.
func (s *Service) requireReadings(readings []models.BloodPressureReading, routine string) error {
	if len(readings) >= s.cfg.MinReadings {
		return nil
	}
	return ErrInsufficientReadings(
		fmt.Sprintf("Not enough readings for %s (have %d, need %d)", routine, len(readings), s.cfg.MinReadings),
		len(readings), s.cfg.MinReadings,
	)
}
