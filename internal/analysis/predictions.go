package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/tensioapp/tensio/internal/models"
	"github.com/tensioapp/tensio/internal/stats"
)

// Predictions projects each metric forward by fitting a linear regression
// over the reading sequence and extrapolating by the configured horizon.
// Pulse is included only when at least five readings carry one.
func (s *Service) Predictions(ctx context.Context, patientID string, days int) ([]models.TrendPrediction, error) {
	params := map[string]any{"days": days}
	return runCached(ctx, s, patientID, "predictions", params, func(ctx context.Context) ([]models.TrendPrediction, error) {
		return s.computePredictions(ctx, patientID, days)
	})
}

func (s *Service) computePredictions(ctx context.Context, patientID string, days int) ([]models.TrendPrediction, error) {
	if _, err := s.resolvePatient(ctx, patientID); err != nil {
		return nil, err
	}
	readings, err := s.fetchReadings(ctx, patientID, days)
	if err != nil {
		return nil, err
	}
	if len(readings) < s.cfg.MinReadings {
		return nil, ErrInsufficientReadings(
			fmt.Sprintf("Not enough readings for predictions (have %d, need %d)", len(readings), s.cfg.MinReadings),
			len(readings), s.cfg.MinReadings)
	}

	horizon := s.cfg.PredictionDays

	predictions := []models.TrendPrediction{
		metricPrediction(readings, metricSystolic, horizon),
		metricPrediction(readings, metricDiastolic, horizon),
	}

	var withPulse []models.BloodPressureReading
	for _, r := range readings {
		if r.Pulse != nil {
			withPulse = append(withPulse, r)
		}
	}
	if len(withPulse) >= 5 {
		predictions = append(predictions, metricPrediction(withPulse, metricPulse, horizon))
	}

	return predictions, nil
}

// metricSpec binds a metric to its display name, value accessor, trend rule
// and plausibility clamp.
type metricSpec struct {
	key         string
	displayName string
	value       func(models.BloodPressureReading) float64
	clampLo     float64
	clampHi     float64
}

var (
	metricSystolic = metricSpec{
		key:         "systolic",
		displayName: "Systolic BP",
		value:       func(r models.BloodPressureReading) float64 { return float64(r.Systolic) },
		clampLo:     80, clampHi: 200,
	}
	metricDiastolic = metricSpec{
		key:         "diastolic",
		displayName: "Diastolic BP",
		value:       func(r models.BloodPressureReading) float64 { return float64(r.Diastolic) },
		clampLo:     50, clampHi: 130,
	}
	metricPulse = metricSpec{
		key:         "pulse",
		displayName: "Heart Rate",
		value: func(r models.BloodPressureReading) float64 {
			if r.Pulse == nil {
				return 0
			}
			return float64(*r.Pulse)
		},
		clampLo: 40, clampHi: 150,
	}
)

func metricPrediction(readings []models.BloodPressureReading, spec metricSpec, horizonDays int) models.TrendPrediction {
	sorted := make([]models.BloodPressureReading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MeasurementDate.Before(sorted[j].MeasurementDate)
	})

	values := make([]float64, len(sorted))
	for i, r := range sorted {
		values[i] = spec.value(r)
	}
	n := len(values)

	// Current value: mean of the last up-to-7 readings.
	recent := values
	if n > 7 {
		recent = values[n-7:]
	}
	currentValue := stats.Mean(recent)

	reg := stats.LinearRegression(values)

	// Estimate measurement density to translate the horizon in days into
	// index units.
	readingsPerDay := 1.0
	if n >= 2 {
		span := int(sorted[n-1].MeasurementDate.Sub(sorted[0].MeasurementDate).Hours() / 24)
		if span == 0 {
			span = 1
		}
		readingsPerDay = float64(n) / float64(span)
	}

	futureX := float64(n) + float64(horizonDays)*readingsPerDay
	predicted := reg.Intercept + reg.Slope*futureX

	dailyChange := reg.Slope * readingsPerDay
	var trend string
	if spec.key == "systolic" || spec.key == "diastolic" {
		// For BP, decreasing is improving.
		switch {
		case dailyChange < -0.3:
			trend = "improving"
		case dailyChange > 0.3:
			trend = "worsening"
		default:
			trend = "stable"
		}
	} else {
		switch {
		case dailyChange < 0.5 && dailyChange > -0.5:
			trend = "stable"
		case dailyChange < 0:
			trend = "improving"
		default:
			trend = "worsening"
		}
	}

	confidence := 30
	if n > 1 {
		dataFactor := float64(n) / 30
		if dataFactor > 1 {
			dataFactor = 1
		}
		confidence = int(stats.Clamp(reg.RSquared*100*dataFactor, 30, 95))
	}

	predicted = stats.Clamp(predicted, spec.clampLo, spec.clampHi)

	return models.TrendPrediction{
		Metric:         spec.displayName,
		CurrentValue:   stats.Round1(currentValue),
		PredictedValue: stats.Round1(predicted),
		Confidence:     confidence,
		Timeframe:      fmt.Sprintf("%d days", horizonDays),
		Trend:          trend,
	}
}
