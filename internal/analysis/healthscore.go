package analysis

import (
	"context"
	"math"

	"github.com/tensioapp/tensio/internal/models"
)

// Health score category names and their weights in the composite. The sleep
// category is only present, and only then weighted, when lifestyle data
// exists.
const (
	categoryBPControl  = "Blood Pressure Control"
	categoryMedication = "Medication Adherence"
	categoryLifestyle  = "Lifestyle Factors"
	categoryMonitoring = "Monitoring Consistency"
	categorySleep      = "Sleep & Recovery"
)

var healthScoreWeights = map[string]float64{
	categoryBPControl:  0.35,
	categoryMedication: 0.25,
	categoryLifestyle:  0.20,
	categoryMonitoring: 0.10,
	categorySleep:      0.10,
}

// HealthScore computes the weighted composite health score.
func (s *Service) HealthScore(ctx context.Context, patientID string, days int) (models.HealthScore, error) {
	params := map[string]any{"days": days}
	return runCached(ctx, s, patientID, "health_score", params, func(ctx context.Context) (models.HealthScore, error) {
		return s.computeHealthScore(ctx, patientID, days)
	})
}

func (s *Service) computeHealthScore(ctx context.Context, patientID string, days int) (models.HealthScore, error) {
	var zero models.HealthScore

	if _, err := s.resolvePatient(ctx, patientID); err != nil {
		return zero, err
	}
	readings, err := s.fetchReadings(ctx, patientID, days)
	if err != nil {
		return zero, err
	}
	if err := s.requireReadings(readings, "health score"); err != nil {
		return zero, err
	}
	medications, err := s.fetchMedications(ctx, patientID)
	if err != nil {
		return zero, err
	}
	lifestyle, err := s.fetchLifestyle(ctx, patientID, days)
	if err != nil {
		return zero, err
	}

	var categories []models.HealthCategory
	var improvementAreas []string
	addCategory := func(name string, score int) {
		categories = append(categories, models.HealthCategory{
			Name:   name,
			Score:  score,
			Status: scoreStatus(score),
		})
	}

	bpScore := bpControlScore(readings)
	addCategory(categoryBPControl, bpScore)
	if bpScore < 70 {
		improvementAreas = append(improvementAreas, "Focus on consistent blood pressure management")
	}
	if bpScore < 50 {
		improvementAreas = append(improvementAreas, "Consult your doctor about adjusting treatment")
	}

	medScore := medicationScore(medications)
	addCategory(categoryMedication, medScore)
	if medScore < 85 {
		improvementAreas = append(improvementAreas, "Set reminders to improve medication consistency")
	}

	lifeScore := lifestyleScore(lifestyle)
	addCategory(categoryLifestyle, lifeScore)
	if lifeScore < 70 {
		improvementAreas = append(improvementAreas, "Increase physical activity to 150 min/week")
	}
	if lifeScore < 60 {
		improvementAreas = append(improvementAreas, "Reduce sodium intake below 2000mg/day")
	}

	monScore := monitoringScore(readings, days)
	addCategory(categoryMonitoring, monScore)
	if monScore < 70 {
		improvementAreas = append(improvementAreas, "Monitor blood pressure more regularly")
	}

	if len(lifestyle) > 0 {
		sleepScore := sleepScore(lifestyle)
		addCategory(categorySleep, sleepScore)
		if sleepScore < 70 {
			improvementAreas = append(improvementAreas, "Improve sleep quality and duration")
		}
	}

	// Weighted mean over the categories actually present.
	var weighted, totalWeight float64
	for _, c := range categories {
		w, ok := healthScoreWeights[c.Name]
		if !ok {
			w = 0.1
		}
		weighted += float64(c.Score) * w
		totalWeight += w
	}
	overall := int(math.Round(weighted / totalWeight))

	if len(improvementAreas) > 5 {
		improvementAreas = improvementAreas[:5]
	}
	if improvementAreas == nil {
		improvementAreas = []string{}
	}

	return models.HealthScore{
		Overall:          overall,
		Categories:       categories,
		ImprovementAreas: improvementAreas,
	}, nil
}

// bpControlScore scores the distribution of the recent two weeks of
// readings across the normal/elevated/high/critical bands (weighted
// 100/60/30/0) with a consistency bonus or penalty from the systolic range.
func bpControlScore(readings []models.BloodPressureReading) int {
	if len(readings) == 0 {
		return 50
	}

	recent := headReadings(readings, 14)
	var normal, elevated, high, critical int
	for _, r := range recent {
		switch {
		case r.Systolic >= 180 || r.Diastolic >= 120:
			critical++
		case r.Systolic >= 140 || r.Diastolic >= 90:
			high++
		case r.Systolic >= 130 || r.Diastolic >= 85:
			elevated++
		default:
			normal++
		}
	}

	total := float64(len(recent))
	score := float64(normal)/total*100 +
		float64(elevated)/total*60 +
		float64(high)/total*30

	spread := systolicRange(recent)
	if spread < 15 {
		score += 5
	} else if spread > 30 {
		score -= 10
	}

	return clampScore(int(math.Round(score)))
}

// medicationScore averages the recorded adherence of active medications.
// 85 when nothing is prescribed, 75 when prescribed but unrecorded.
func medicationScore(medications []models.Medication) int {
	var active []models.Medication
	for _, m := range medications {
		if m.Active {
			active = append(active, m)
		}
	}
	if len(active) == 0 {
		return 85
	}

	var rates []float64
	for _, m := range active {
		if m.AdherenceRate != nil {
			rates = append(rates, *m.AdherenceRate)
		}
	}
	if len(rates) == 0 {
		return 75
	}

	sum := 0.0
	for _, r := range rates {
		sum += r
	}
	return clampScore(int(math.Round(sum / float64(len(rates)))))
}

// scoreTier is one row of a first-match-wins delta table.
type scoreTier struct {
	when  func(models.LifestyleEntry) bool
	delta int
}

// applyTiers returns the delta of the first matching tier, 0 when none match.
func applyTiers(e models.LifestyleEntry, tiers []scoreTier) int {
	for _, t := range tiers {
		if t.when(e) {
			return t.delta
		}
	}
	return 0
}

func entryActivity(e models.LifestyleEntry) int {
	if e.PhysicalActivity == nil {
		return 0
	}
	return *e.PhysicalActivity
}

func entrySleep(e models.LifestyleEntry) float64 {
	if e.SleepDuration == nil {
		return 7
	}
	return *e.SleepDuration
}

func entryWater(e models.LifestyleEntry) int {
	if e.WaterIntake == nil {
		return 0
	}
	return *e.WaterIntake
}

// lifestyleDayTiers are the per-day delta tables for the lifestyle score,
// applied on top of a base of 50 and capped at 100.
var lifestyleDayTiers = [][]scoreTier{
	{ // physical activity
		{func(e models.LifestyleEntry) bool { return entryActivity(e) >= 30 }, 20},
		{func(e models.LifestyleEntry) bool { return entryActivity(e) >= 15 }, 10},
		{func(e models.LifestyleEntry) bool { return entryActivity(e) > 0 }, 5},
	},
	{ // diet quality
		{func(e models.LifestyleEntry) bool { return e.DietQuality == "healthy" }, 15},
		{func(e models.LifestyleEntry) bool { return e.DietQuality == "moderate" }, 8},
	},
	{ // salt intake
		{func(e models.LifestyleEntry) bool { return e.SaltIntake == "low" }, 10},
		{func(e models.LifestyleEntry) bool { return e.SaltIntake == "moderate" }, 5},
		{func(e models.LifestyleEntry) bool { return e.SaltIntake == "high" }, -5},
	},
	{ // stress level
		{func(e models.LifestyleEntry) bool { return e.StressLevel == "low" }, 10},
		{func(e models.LifestyleEntry) bool { return e.StressLevel == "moderate" }, 5},
		{func(e models.LifestyleEntry) bool { return e.StressLevel == "high" || e.StressLevel == "severe" }, -5},
	},
	{ // water intake
		{func(e models.LifestyleEntry) bool { return entryWater(e) >= 8 }, 5},
		{func(e models.LifestyleEntry) bool { return entryWater(e) >= 6 }, 3},
	},
}

// sleepDayTiers are the per-day delta tables for the sleep score.
var sleepDayTiers = [][]scoreTier{
	{ // duration
		{func(e models.LifestyleEntry) bool { d := entrySleep(e); return d >= 7 && d <= 9 }, 30},
		{func(e models.LifestyleEntry) bool {
			d := entrySleep(e)
			return (d >= 6 && d < 7) || (d > 9 && d <= 10)
		}, 20},
		{func(e models.LifestyleEntry) bool { d := entrySleep(e); return d >= 5 && d < 6 }, 10},
	},
	{ // quality
		{func(e models.LifestyleEntry) bool { return e.SleepQuality == "excellent" }, 20},
		{func(e models.LifestyleEntry) bool { return e.SleepQuality == "good" }, 15},
		{func(e models.LifestyleEntry) bool { return e.SleepQuality == "fair" }, 8},
	},
}

func dayScore(e models.LifestyleEntry, tierGroups [][]scoreTier) int {
	score := 50
	for _, tiers := range tierGroups {
		score += applyTiers(e, tiers)
	}
	if score > 100 {
		score = 100
	}
	return score
}

func averageDayScores(lifestyle []models.LifestyleEntry, tierGroups [][]scoreTier) int {
	if len(lifestyle) == 0 {
		return 50
	}
	window := lifestyle
	if len(window) > 7 {
		window = window[:7]
	}
	sum := 0
	for _, e := range window {
		sum += dayScore(e, tierGroups)
	}
	return int(math.Round(float64(sum) / float64(len(window))))
}

func lifestyleScore(lifestyle []models.LifestyleEntry) int {
	return averageDayScores(lifestyle, lifestyleDayTiers)
}

func sleepScore(lifestyle []models.LifestyleEntry) int {
	return averageDayScores(lifestyle, sleepDayTiers)
}

// monitoringScore rewards reading coverage over the window, with a bonus
// for consistent time-of-day labeling.
func monitoringScore(readings []models.BloodPressureReading, days int) int {
	if len(readings) == 0 {
		return 0
	}

	coverage := float64(len(readings)) / float64(days) * 100

	counts := make(map[string]int)
	labeled := 0
	for _, r := range readings {
		if r.TimeOfDay != "" {
			counts[r.TimeOfDay]++
			labeled++
		}
	}
	if labeled > 0 {
		most := 0
		for _, c := range counts {
			if c > most {
				most = c
			}
		}
		coverage += float64(most) / float64(labeled) * 10
	}

	return clampScore(int(math.Round(coverage)))
}

func scoreStatus(score int) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
