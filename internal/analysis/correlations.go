package analysis

import (
	"context"
	"math"
	"sort"

	"github.com/tensioapp/tensio/internal/models"
	"github.com/tensioapp/tensio/internal/stats"
	"github.com/tensioapp/tensio/internal/timeseries"
)

// minDaysForCorrelation is the minimum number of joined days required.
const minDaysForCorrelation = 5

// correlationFactor binds a display name to the daily-join field it reads.
type correlationFactor struct {
	name    string
	extract func(*timeseries.DailyRecord) (float64, bool)
}

func floatField(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// stressScale maps the categorical stress level onto an ordinal scale.
var stressScale = map[string]float64{
	"low":      1,
	"moderate": 2,
	"high":     3,
	"severe":   4,
}

// correlationFactors is the fixed set of factors tested against daily
// average systolic, in evaluation order.
var correlationFactors = []correlationFactor{
	{"Sodium Intake", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.SodiumMg) }},
	{"Physical Activity", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.PhysicalActivity) }},
	{"Sleep Duration", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.SleepDuration) }},
	{"Stress Level", func(d *timeseries.DailyRecord) (float64, bool) {
		v, ok := stressScale[d.StressLevel]
		return v, ok
	}},
	{"Body Weight", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.Weight) }},
	{"Water Intake", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.WaterIntake) }},
	{"Caffeine Intake", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.CaffeineIntake) }},
	{"Alcohol Consumption", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.AlcoholConsumption) }},
	{"Diastolic BP", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.Diastolic) }},
	{"Heart Rate", func(d *timeseries.DailyRecord) (float64, bool) { return floatField(d.Pulse) }},
}

// Correlations computes Pearson correlations between daily-average systolic
// pressure and each lifestyle or vital factor with enough paired days.
func (s *Service) Correlations(ctx context.Context, patientID string, days int) (models.CorrelationAnalysis, error) {
	params := map[string]any{"days": days}
	return runCached(ctx, s, patientID, "correlations", params, func(ctx context.Context) (models.CorrelationAnalysis, error) {
		return s.computeCorrelations(ctx, patientID, days)
	})
}

func (s *Service) computeCorrelations(ctx context.Context, patientID string, days int) (models.CorrelationAnalysis, error) {
	var zero models.CorrelationAnalysis

	if _, err := s.resolvePatient(ctx, patientID); err != nil {
		return zero, err
	}
	readings, err := s.fetchReadings(ctx, patientID, days)
	if err != nil {
		return zero, err
	}
	if err := s.requireReadings(readings, "correlation analysis"); err != nil {
		return zero, err
	}
	lifestyle, err := s.fetchLifestyle(ctx, patientID, days)
	if err != nil {
		return zero, err
	}

	joined := timeseries.BuildDailyJoin(readings, lifestyle)
	if len(joined) < minDaysForCorrelation {
		return zero, ErrInsufficientDays(
			"Not enough daily data points for correlation analysis",
			len(joined), minDaysForCorrelation)
	}
	dates := timeseries.SortedDates(joined)

	correlations := []models.Correlation{}
	for _, f := range correlationFactors {
		var pairs []stats.Pair
		for _, date := range dates {
			rec := joined[date]
			if rec.Systolic == nil {
				continue
			}
			if v, ok := f.extract(rec); ok {
				pairs = append(pairs, stats.Pair{X: *rec.Systolic, Y: v})
			}
		}

		r, ok := stats.Pearson(pairs)
		if !ok {
			continue
		}

		direction := "negative"
		if r > 0 {
			direction = "positive"
		}
		correlations = append(correlations, models.Correlation{
			Factor1:     f.name,
			Factor2:     "Systolic BP",
			Correlation: stats.Round3(r),
			Strength:    correlationStrength(r),
			Direction:   direction,
		})
	}

	sort.SliceStable(correlations, func(i, j int) bool {
		return math.Abs(correlations[i].Correlation) > math.Abs(correlations[j].Correlation)
	})

	return models.CorrelationAnalysis{Correlations: correlations}, nil
}

func correlationStrength(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs >= 0.7:
		return "strong"
	case abs >= 0.4:
		return "moderate"
	default:
		return "weak"
	}
}
