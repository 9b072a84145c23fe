package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/tensioapp/tensio/internal/models"
	"github.com/tensioapp/tensio/internal/stats"
	"github.com/tensioapp/tensio/internal/timeseries"
)

// Patterns detects named blood pressure patterns across time-of-day,
// day-of-week, position, lifestyle and variability dimensions.
func (s *Service) Patterns(ctx context.Context, patientID string, days int) (models.PatternAnalysis, error) {
	params := map[string]any{"days": days}
	return runCached(ctx, s, patientID, "patterns", params, func(ctx context.Context) (models.PatternAnalysis, error) {
		return s.computePatterns(ctx, patientID, days)
	})
}

func (s *Service) computePatterns(ctx context.Context, patientID string, days int) (models.PatternAnalysis, error) {
	var zero models.PatternAnalysis

	if _, err := s.resolvePatient(ctx, patientID); err != nil {
		return zero, err
	}
	readings, err := s.fetchReadings(ctx, patientID, days)
	if err != nil {
		return zero, err
	}
	if len(readings) < s.cfg.MinReadings {
		return zero, ErrInsufficientReadings(
			fmt.Sprintf("Not enough readings for pattern analysis (have %d, need %d)", len(readings), s.cfg.MinReadings),
			len(readings), s.cfg.MinReadings)
	}
	lifestyle, err := s.fetchLifestyle(ctx, patientID, days)
	if err != nil {
		return zero, err
	}

	var patterns []models.Pattern
	patterns = append(patterns, timeOfDayPatterns(readings)...)
	patterns = append(patterns, weeklyPatterns(readings)...)
	patterns = append(patterns, positionPatterns(readings)...)
	if len(lifestyle) > 0 {
		patterns = append(patterns, lifestylePatterns(readings, lifestyle)...)
	}
	patterns = append(patterns, variabilityPatterns(readings)...)

	severityOrder := map[string]int{"high": 0, "moderate": 1, "low": 2}
	sort.SliceStable(patterns, func(i, j int) bool {
		return severityOrder[patterns[i].Severity] < severityOrder[patterns[j].Severity]
	})
	if len(patterns) > 10 {
		patterns = patterns[:10]
	}
	if patterns == nil {
		patterns = []models.Pattern{}
	}

	return models.PatternAnalysis{Patterns: patterns}, nil
}

// groupAverages groups readings by key and averages systolic for groups with
// at least minGroup members.
func groupAverages(readings []models.BloodPressureReading, minGroup int, key func(models.BloodPressureReading) string) (map[string][]models.BloodPressureReading, map[string]float64) {
	groups := make(map[string][]models.BloodPressureReading)
	for _, r := range readings {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	averages := make(map[string]float64)
	for k, group := range groups {
		if len(group) >= minGroup {
			averages[k] = meanSystolic(group)
		}
	}
	return groups, averages
}

func timeOfDayPatterns(readings []models.BloodPressureReading) []models.Pattern {
	var patterns []models.Pattern

	groups, averages := groupAverages(readings, 3, func(r models.BloodPressureReading) string {
		if r.TimeOfDay == "" {
			return "unknown"
		}
		return r.TimeOfDay
	})
	if len(averages) < 2 {
		return patterns
	}

	morningAvg := averages["morning"]
	eveningAvg := averages["evening"]
	if eveningAvg == 0 {
		eveningAvg = averages["night"]
	}
	if morningAvg == 0 || eveningAvg == 0 {
		return patterns
	}

	if morningAvg-eveningAvg > 15 {
		mornings := groups["morning"]
		highMornings := countReadings(mornings, func(r models.BloodPressureReading) bool { return r.Systolic >= 140 })
		frequency := "frequently"
		if len(mornings) > 0 {
			frequency = fmt.Sprintf("%.0f%% of mornings", float64(highMornings)/float64(len(mornings))*100)
		}
		severity := "moderate"
		if morningAvg-eveningAvg >= 25 {
			severity = "high"
		}
		patterns = append(patterns, models.Pattern{
			Type:        "Morning Spike",
			Frequency:   frequency,
			Severity:    severity,
			Description: fmt.Sprintf("Blood pressure averages %.0f mmHg in the morning, %.0f points higher than evening", morningAvg, morningAvg-eveningAvg),
		})
	} else if eveningAvg-morningAvg > 15 {
		patterns = append(patterns, models.Pattern{
			Type:        "Evening Elevation",
			Frequency:   "Most evenings",
			Severity:    "moderate",
			Description: fmt.Sprintf("Blood pressure tends to rise in the evening by %.0f mmHg compared to morning", eveningAvg-morningAvg),
		})
	}

	return patterns
}

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
var weekendNames = []string{"Saturday", "Sunday"}

func weeklyPatterns(readings []models.BloodPressureReading) []models.Pattern {
	var patterns []models.Pattern

	_, averages := groupAverages(readings, 2, func(r models.BloodPressureReading) string {
		return r.MeasurementDate.Weekday().String()
	})
	if len(averages) < 3 {
		return patterns
	}

	collect := func(names []string) []float64 {
		var vals []float64
		for _, name := range names {
			if avg, ok := averages[name]; ok {
				vals = append(vals, avg)
			}
		}
		return vals
	}
	weekdayAvgs := collect(weekdayNames)
	weekendAvgs := collect(weekendNames)

	if len(weekdayAvgs) > 0 && len(weekendAvgs) > 0 {
		weekdayAvg := stats.Mean(weekdayAvgs)
		weekendAvg := stats.Mean(weekendAvgs)

		if weekendAvg-weekdayAvg > 8 {
			patterns = append(patterns, models.Pattern{
				Type:        "Weekend Effect",
				Frequency:   "Most weekends",
				Severity:    "low",
				Description: fmt.Sprintf("Blood pressure tends to be %.0f mmHg higher on weekends, possibly due to diet or activity changes", weekendAvg-weekdayAvg),
			})
		} else if weekdayAvg-weekendAvg > 8 {
			patterns = append(patterns, models.Pattern{
				Type:        "Workweek Stress",
				Frequency:   "During work days",
				Severity:    "moderate",
				Description: fmt.Sprintf("Blood pressure averages %.0f mmHg higher during weekdays, suggesting work-related stress", weekdayAvg-weekendAvg),
			})
		}
	}

	var highestDay, lowestDay string
	for day, avg := range averages {
		if highestDay == "" || avg > averages[highestDay] {
			highestDay = day
		}
		if lowestDay == "" || avg < averages[lowestDay] {
			lowestDay = day
		}
	}
	if diff := averages[highestDay] - averages[lowestDay]; diff > 12 {
		patterns = append(patterns, models.Pattern{
			Type:        "Weekly Variation",
			Frequency:   fmt.Sprintf("Every %s", highestDay),
			Severity:    "low",
			Description: fmt.Sprintf("%ss tend to have higher readings (%.0f mmHg) compared to %ss (%.0f mmHg)", highestDay, averages[highestDay], lowestDay, averages[lowestDay]),
		})
	}

	return patterns
}

func positionPatterns(readings []models.BloodPressureReading) []models.Pattern {
	var patterns []models.Pattern

	var known []models.BloodPressureReading
	for _, r := range readings {
		if r.Position != "" && r.Position != "unknown" {
			known = append(known, r)
		}
	}
	_, averages := groupAverages(known, 3, func(r models.BloodPressureReading) string { return r.Position })

	sitting, hasSitting := averages["sitting"]
	standing, hasStanding := averages["standing"]
	if !hasSitting || !hasStanding {
		return patterns
	}

	diff := standing - sitting
	if diff > 10 {
		patterns = append(patterns, models.Pattern{
			Type:        "Orthostatic Variation",
			Frequency:   "When standing",
			Severity:    "moderate",
			Description: fmt.Sprintf("Blood pressure increases by %.0f mmHg when standing compared to sitting - discuss with your doctor", diff),
		})
	} else if diff < -15 {
		patterns = append(patterns, models.Pattern{
			Type:        "Orthostatic Hypotension Risk",
			Frequency:   "When standing",
			Severity:    "high",
			Description: fmt.Sprintf("Blood pressure drops by %.0f mmHg when standing - this may cause dizziness", -diff),
		})
	}

	return patterns
}

// lifestylePatterns date-matches lifestyle entries against same-day readings
// and compares group averages for stress, exercise and sleep.
func lifestylePatterns(readings []models.BloodPressureReading, lifestyle []models.LifestyleEntry) []models.Pattern {
	var patterns []models.Pattern

	readingsByDate := make(map[string][]models.BloodPressureReading)
	for _, r := range readings {
		key := timeseries.DayKey(r.MeasurementDate)
		readingsByDate[key] = append(readingsByDate[key], r)
	}

	var highStress, lowStress []models.BloodPressureReading
	var exercised, sedentary []models.BloodPressureReading
	var poorSleep, goodSleep []models.BloodPressureReading

	for _, entry := range lifestyle {
		dayReadings, ok := readingsByDate[entry.EntryDate]
		if !ok {
			continue
		}

		switch entry.StressLevel {
		case "high", "severe":
			highStress = append(highStress, dayReadings...)
		case "low":
			lowStress = append(lowStress, dayReadings...)
		}

		activity := entryActivity(entry)
		if activity >= 30 {
			exercised = append(exercised, dayReadings...)
		} else if activity < 10 {
			sedentary = append(sedentary, dayReadings...)
		}

		sleep := entrySleep(entry)
		if sleep < 6 {
			poorSleep = append(poorSleep, dayReadings...)
		} else if sleep >= 7 {
			goodSleep = append(goodSleep, dayReadings...)
		}
	}

	if len(highStress) >= 3 && len(lowStress) >= 3 {
		if diff := meanSystolic(highStress) - meanSystolic(lowStress); diff > 10 {
			patterns = append(patterns, models.Pattern{
				Type:        "Stress Response",
				Frequency:   "On high-stress days",
				Severity:    "moderate",
				Description: fmt.Sprintf("Blood pressure averages %.0f mmHg higher on days with high stress", diff),
			})
		}
	}

	if len(exercised) >= 3 && len(sedentary) >= 3 {
		if diff := meanSystolic(sedentary) - meanSystolic(exercised); diff > 5 {
			patterns = append(patterns, models.Pattern{
				Type:        "Exercise Benefit",
				Frequency:   "On active days",
				Severity:    "low",
				Description: fmt.Sprintf("Blood pressure is %.0f mmHg lower on days with 30+ minutes of exercise", diff),
			})
		}
	}

	if len(poorSleep) >= 2 && len(goodSleep) >= 2 {
		if diff := meanSystolic(poorSleep) - meanSystolic(goodSleep); diff > 8 {
			patterns = append(patterns, models.Pattern{
				Type:        "Sleep Impact",
				Frequency:   "After poor sleep",
				Severity:    "moderate",
				Description: fmt.Sprintf("Blood pressure is %.0f mmHg higher after nights with less than 6 hours of sleep", diff),
			})
		}
	}

	return patterns
}

func variabilityPatterns(readings []models.BloodPressureReading) []models.Pattern {
	var patterns []models.Pattern
	if len(readings) < 7 {
		return patterns
	}

	recent := headReadings(readings, 14)
	values := make([]float64, len(recent))
	for i, r := range recent {
		values[i] = float64(r.Systolic)
	}
	stdDev := stats.StdDev(values)

	if stdDev > 15 {
		patterns = append(patterns, models.Pattern{
			Type:        "High Variability",
			Frequency:   fmt.Sprintf("Std dev: %.1f mmHg", stdDev),
			Severity:    "high",
			Description: "Your readings show high variability which may indicate inconsistent measurement technique or underlying issues",
		})
	} else if stdDev < 8 {
		patterns = append(patterns, models.Pattern{
			Type:        "Consistent Readings",
			Frequency:   fmt.Sprintf("Std dev: %.1f mmHg", stdDev),
			Severity:    "low",
			Description: "Your blood pressure readings are consistent, indicating good measurement technique",
		})
	}

	return patterns
}
