package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tensioapp/tensio/internal/models"
)

// Insights generates the prioritized insight list for a patient. Unlike the
// other routines, an insufficient reading count is not an error here: the
// routine degrades to a single "more data needed" item.
func (s *Service) Insights(ctx context.Context, patientID string, days int) ([]models.Insight, error) {
	params := map[string]any{"days": days}
	return runCached(ctx, s, patientID, "insights", params, func(ctx context.Context) ([]models.Insight, error) {
		return s.computeInsights(ctx, patientID, days)
	})
}

func (s *Service) computeInsights(ctx context.Context, patientID string, days int) ([]models.Insight, error) {
	if _, err := s.resolvePatient(ctx, patientID); err != nil {
		return nil, err
	}

	readings, err := s.fetchReadings(ctx, patientID, days)
	if err != nil {
		return nil, err
	}
	medications, err := s.fetchMedications(ctx, patientID)
	if err != nil {
		return nil, err
	}
	lifestyle, err := s.fetchLifestyle(ctx, patientID, days)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	if len(readings) < s.cfg.MinReadings {
		return []models.Insight{newInsight("info", "More Data Needed",
			fmt.Sprintf("You have %d readings. We need at least %d for detailed analysis.", len(readings), s.cfg.MinReadings),
			3, now,
			"Take your blood pressure daily",
			"Log readings at consistent times")}, nil
	}

	insights := bpPatternInsights(readings, now)
	if len(medications) > 0 {
		insights = append(insights, medicationInsights(medications, now)...)
	}
	if len(lifestyle) > 0 {
		insights = append(insights, lifestyleInsights(lifestyle[0], now)...)
	}
	insights = append(insights, timeOfDayInsights(readings, now)...)

	sort.SliceStable(insights, func(i, j int) bool { return insights[i].Priority < insights[j].Priority })
	if len(insights) > 8 {
		insights = insights[:8]
	}
	return insights, nil
}

func newInsight(kind, title, message string, priority int, timestamp string, recommendations ...string) models.Insight {
	return models.Insight{
		ID:              uuid.New().String(),
		Type:            kind,
		Title:           title,
		Message:         message,
		Priority:        priority,
		Timestamp:       timestamp,
		Recommendations: recommendations,
	}
}

// bpPatternInsights compares the most recent two weeks of readings against
// the preceding two weeks and flags elevated, critical, well-controlled and
// unstable windows. Readings arrive newest first.
func bpPatternInsights(readings []models.BloodPressureReading, timestamp string) []models.Insight {
	var insights []models.Insight
	if len(readings) == 0 {
		return insights
	}

	recent := headReadings(readings, 14)
	var older []models.BloodPressureReading
	if len(readings) > 14 {
		older = readings[14:min(28, len(readings))]
	}

	avgSystolic := meanSystolic(recent)

	if len(older) > 0 {
		oldAvg := meanSystolic(older)
		if avgSystolic < oldAvg-5 {
			insights = append(insights, newInsight("success", "Blood Pressure Improving",
				fmt.Sprintf("Your average systolic BP has decreased by %.0f mmHg compared to the previous period.", oldAvg-avgSystolic),
				1, timestamp,
				"Keep up your current routine",
				"Continue monitoring regularly"))
		} else if avgSystolic > oldAvg+5 {
			insights = append(insights, newInsight("warning", "Blood Pressure Trending Up",
				fmt.Sprintf("Your average systolic BP has increased by %.0f mmHg. Consider reviewing your lifestyle factors.", avgSystolic-oldAvg),
				2, timestamp,
				"Review your sodium intake",
				"Ensure medication compliance",
				"Consider scheduling a check-up"))
		}
	}

	highCount := countReadings(recent, func(r models.BloodPressureReading) bool {
		return r.Systolic >= 140 || r.Diastolic >= 90
	})
	if float64(highCount) > float64(len(recent))*0.5 {
		insights = append(insights, newInsight("danger", "Consistently Elevated Readings",
			fmt.Sprintf("%d out of %d recent readings are elevated. Please consult your healthcare provider.", highCount, len(recent)),
			1, timestamp,
			"Contact your doctor",
			"Review your medication",
			"Monitor more frequently"))
	}

	criticalCount := countReadings(recent, func(r models.BloodPressureReading) bool {
		return r.Systolic >= 180 || r.Diastolic >= 120
	})
	if criticalCount > 0 {
		insights = append(insights, newInsight("danger", "Critical Reading Detected",
			fmt.Sprintf("You had %d reading(s) in the critical range. Seek medical attention if symptoms occur.", criticalCount),
			1, timestamp,
			"Seek immediate medical attention if experiencing symptoms",
			"Contact your healthcare provider today",
			"Do not skip medications"))
	}

	normalCount := countReadings(recent, func(r models.BloodPressureReading) bool {
		return r.Systolic < 130 && r.Diastolic < 85
	})
	if float64(normalCount) >= float64(len(recent))*0.7 {
		insights = append(insights, newInsight("success", "Excellent BP Control",
			fmt.Sprintf("%d out of %d readings are within normal range. Great job!", normalCount, len(recent)),
			2, timestamp,
			"Maintain your current lifestyle",
			"Continue regular monitoring"))
	}

	if systolicRange(recent) > 30 {
		insights = append(insights, newInsight("warning", "High BP Variability",
			"Your blood pressure readings show significant variability. Consistent readings are important for accurate assessment.",
			3, timestamp,
			"Take readings at the same time daily",
			"Rest for 5 minutes before measuring",
			"Use the same arm each time"))
	}

	return insights
}

func medicationInsights(medications []models.Medication, timestamp string) []models.Insight {
	var insights []models.Insight

	var active []models.Medication
	for _, m := range medications {
		if m.Active {
			active = append(active, m)
		}
	}
	if len(active) == 0 {
		return insights
	}

	var lowNames []string
	highCount := 0
	for _, m := range active {
		if adherenceOr(m, 100) < 85 {
			lowNames = append(lowNames, m.Name)
		}
		if adherenceOr(m, 0) >= 95 {
			highCount++
		}
	}

	if len(lowNames) > 0 {
		named := lowNames[:min(2, len(lowNames))]
		insights = append(insights, newInsight("warning", "Medication Adherence Alert",
			fmt.Sprintf("Your adherence to %s could be improved. Consistent medication use is key to BP control.", strings.Join(named, ", ")),
			2, timestamp,
			"Set daily medication reminders",
			"Use a pill organizer",
			"Talk to your doctor if side effects are an issue"))
	}

	if highCount == len(active) {
		insights = append(insights, newInsight("success", "Excellent Medication Adherence",
			"You're taking your medications consistently. This significantly helps control your blood pressure.",
			3, timestamp))
	}

	return insights
}

// lifestyleInsights inspects the most recent lifestyle entry only.
func lifestyleInsights(recent models.LifestyleEntry, timestamp string) []models.Insight {
	var insights []models.Insight

	activity := 0
	if recent.PhysicalActivity != nil {
		activity = *recent.PhysicalActivity
	}
	if activity >= 30 {
		insights = append(insights, newInsight("success", "Great Exercise Habits",
			fmt.Sprintf("You logged %d minutes of activity. Regular exercise helps lower BP naturally.", activity),
			4, timestamp))
	} else if activity < 15 {
		insights = append(insights, newInsight("info", "Increase Physical Activity",
			"Consider adding more physical activity to your routine. Even a 30-minute walk can help.",
			3, timestamp,
			"Aim for 30 minutes of moderate exercise daily",
			"Start with walking",
			"Take the stairs when possible"))
	}

	if recent.SaltIntake == "high" {
		insights = append(insights, newInsight("warning", "High Sodium Intake",
			"High sodium intake can elevate blood pressure. Try to reduce salt in your diet.",
			2, timestamp,
			"Avoid processed foods",
			"Don't add salt at the table",
			"Read nutrition labels"))
	}

	sleep := 7.0
	if recent.SleepDuration != nil {
		sleep = *recent.SleepDuration
	}
	if sleep < 6 {
		insights = append(insights, newInsight("warning", "Insufficient Sleep",
			fmt.Sprintf("You're getting %.1f hours of sleep. Poor sleep can affect blood pressure.", sleep),
			3, timestamp,
			"Aim for 7-9 hours of sleep",
			"Maintain a consistent sleep schedule",
			"Limit screen time before bed"))
	}

	if recent.StressLevel == "high" || recent.StressLevel == "severe" {
		insights = append(insights, newInsight("warning", "High Stress Levels",
			"Chronic stress can elevate blood pressure. Consider stress management techniques.",
			3, timestamp,
			"Practice deep breathing exercises",
			"Try meditation or yoga",
			"Take regular breaks during work"))
	}

	return insights
}

// timeOfDayInsights compares morning against evening/night averages when
// both groups have at least three samples.
func timeOfDayInsights(readings []models.BloodPressureReading, timestamp string) []models.Insight {
	var insights []models.Insight
	if len(readings) < 7 {
		return insights
	}

	var morning, evening []models.BloodPressureReading
	for _, r := range readings {
		switch r.TimeOfDay {
		case "morning":
			morning = append(morning, r)
		case "evening", "night":
			evening = append(evening, r)
		}
	}
	if len(morning) < 3 || len(evening) < 3 {
		return insights
	}

	morningAvg := meanSystolic(morning)
	eveningAvg := meanSystolic(evening)

	if morningAvg-eveningAvg > 15 {
		insights = append(insights, newInsight("info", "Morning Blood Pressure Surge",
			fmt.Sprintf("Your morning readings average %.0f mmHg vs %.0f mmHg in the evening. Morning surges are common but worth monitoring.", morningAvg, eveningAvg),
			3, timestamp,
			"Take morning medications before getting out of bed",
			"Rise slowly in the morning",
			"Discuss with your doctor if pattern persists"))
	} else if eveningAvg-morningAvg > 15 {
		insights = append(insights, newInsight("warning", "Elevated Evening Readings",
			fmt.Sprintf("Your blood pressure tends to spike in the evening hours (%.0f mmHg vs %.0f mmHg in the morning).", eveningAvg, morningAvg),
			2, timestamp,
			"Reduce salt intake after 6 PM",
			"Practice relaxation techniques before bed",
			"Avoid caffeine in the afternoon"))
	}

	return insights
}

// Shared reading helpers.

func headReadings(readings []models.BloodPressureReading, n int) []models.BloodPressureReading {
	if len(readings) > n {
		return readings[:n]
	}
	return readings
}

func meanSystolic(readings []models.BloodPressureReading) float64 {
	if len(readings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range readings {
		sum += r.Systolic
	}
	return float64(sum) / float64(len(readings))
}

func meanDiastolic(readings []models.BloodPressureReading) float64 {
	if len(readings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range readings {
		sum += r.Diastolic
	}
	return float64(sum) / float64(len(readings))
}

func countReadings(readings []models.BloodPressureReading, match func(models.BloodPressureReading) bool) int {
	n := 0
	for _, r := range readings {
		if match(r) {
			n++
		}
	}
	return n
}

// systolicRange returns max-min of the systolic values.
func systolicRange(readings []models.BloodPressureReading) int {
	if len(readings) == 0 {
		return 0
	}
	lo, hi := readings[0].Systolic, readings[0].Systolic
	for _, r := range readings[1:] {
		if r.Systolic < lo {
			lo = r.Systolic
		}
		if r.Systolic > hi {
			hi = r.Systolic
		}
	}
	return hi - lo
}

func adherenceOr(m models.Medication, def float64) float64 {
	if m.AdherenceRate == nil {
		return def
	}
	return *m.AdherenceRate
}
