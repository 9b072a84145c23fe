package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/tensioapp/tensio/internal/models"
)

// RiskAssessment accumulates a clamped 0-100 risk score from blood pressure,
// medication adherence, lifestyle and demographic rule tables.
func (s *Service) RiskAssessment(ctx context.Context, patientID string, days int) (models.RiskAssessment, error) {
	params := map[string]any{"days": days}
	return runCached(ctx, s, patientID, "risk_assessment", params, func(ctx context.Context) (models.RiskAssessment, error) {
		return s.computeRiskAssessment(ctx, patientID, days)
	})
}

func (s *Service) computeRiskAssessment(ctx context.Context, patientID string, days int) (models.RiskAssessment, error) {
	var zero models.RiskAssessment

	patient, err := s.resolvePatient(ctx, patientID)
	if err != nil {
		return zero, err
	}
	if patient.Age == 0 {
		// A zero age means the user join came back empty; the age rules
		// will never fire for this patient.
		s.logger.Warn("Patient age unavailable, age-based risk rules skipped", "patient_id", patientID)
	}
	readings, err := s.fetchReadings(ctx, patientID, days)
	if err != nil {
		return zero, err
	}
	if err := s.requireReadings(readings, "risk assessment"); err != nil {
		return zero, err
	}
	medications, err := s.fetchMedications(ctx, patientID)
	if err != nil {
		return zero, err
	}
	// Dose logs are part of the fetch contract for this routine but the
	// current rule set scores adherence from the medication records.
	if _, err := s.fetchMedicationLogs(ctx, patientID, days); err != nil {
		return zero, err
	}
	lifestyle, err := s.fetchLifestyle(ctx, patientID, days)
	if err != nil {
		return zero, err
	}

	rc := newRiskContext(patient, readings, medications, lifestyle)

	acc := &riskAccumulator{}
	for _, group := range riskRuleGroups {
		group.apply(rc, acc)
	}

	score := acc.score
	if score > 100 {
		score = 100
	}

	var overall, topRecommendation string
	switch {
	case score >= 70:
		overall = "critical"
		topRecommendation = "Schedule urgent appointment with your healthcare provider"
	case score >= 50:
		overall = "high"
		topRecommendation = "Schedule follow-up appointment within 1-2 weeks"
	case score >= 30:
		overall = "moderate"
		topRecommendation = "Continue regular monitoring and follow treatment plan"
	default:
		overall = "low"
		topRecommendation = "Maintain your healthy lifestyle habits"
	}

	recommendations := append([]string{topRecommendation}, acc.recommendations...)
	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}

	factors := acc.factors
	if factors == nil {
		factors = []models.RiskFactor{}
	}

	return models.RiskAssessment{
		OverallRisk:     overall,
		RiskScore:       score,
		Factors:         factors,
		Recommendations: recommendations,
	}, nil
}

// riskContext carries the derived inputs the rule tables evaluate.
type riskContext struct {
	recent        []models.BloodPressureReading
	avgSystolic   float64
	avgDiastolic  float64
	highPct       float64
	criticalCount int
	variability   int

	hasActiveMeds bool
	avgAdherence  float64

	lifestyle *models.LifestyleEntry
	age       int
	history   string
}

func newRiskContext(patient *models.PatientProfile, readings []models.BloodPressureReading, medications []models.Medication, lifestyle []models.LifestyleEntry) *riskContext {
	rc := &riskContext{
		age:     patient.Age,
		history: strings.ToLower(patient.MedicalHistory),
	}

	if len(readings) > 0 {
		recent := headReadings(readings, 14)
		rc.recent = recent
		rc.avgSystolic = meanSystolic(recent)
		rc.avgDiastolic = meanDiastolic(recent)
		highCount := countReadings(recent, func(r models.BloodPressureReading) bool {
			return r.Systolic >= 140 || r.Diastolic >= 90
		})
		rc.highPct = float64(highCount) / float64(len(recent)) * 100
		rc.criticalCount = countReadings(recent, func(r models.BloodPressureReading) bool {
			return r.Systolic >= 180 || r.Diastolic >= 120
		})
		rc.variability = systolicRange(recent)
	}

	var active []models.Medication
	for _, m := range medications {
		if m.Active {
			active = append(active, m)
		}
	}
	if len(active) > 0 {
		rc.hasActiveMeds = true
		sum := 0.0
		for _, m := range active {
			sum += adherenceOr(m, 100)
		}
		rc.avgAdherence = sum / float64(len(active))
	}

	if len(lifestyle) > 0 {
		rc.lifestyle = &lifestyle[0]
	}
	return rc
}

func (rc *riskContext) activityMinutes() int {
	if rc.lifestyle == nil || rc.lifestyle.PhysicalActivity == nil {
		return 0
	}
	return *rc.lifestyle.PhysicalActivity
}

func (rc *riskContext) sleepHours() float64 {
	if rc.lifestyle == nil || rc.lifestyle.SleepDuration == nil {
		return 7
	}
	return *rc.lifestyle.SleepDuration
}

func (rc *riskContext) alcoholDrinks() int {
	if rc.lifestyle == nil || rc.lifestyle.AlcoholConsumption == nil {
		return 0
	}
	return *rc.lifestyle.AlcoholConsumption
}

// riskHit is the outcome of one triggered rule.
type riskHit struct {
	points         int
	factor         *models.RiskFactor
	recommendation string
}

// riskRule pairs a predicate with its outcome.
type riskRule struct {
	when func(*riskContext) bool
	hit  func(*riskContext) riskHit
}

// riskGroup is an ordered rule tier: the first matching rule fires and the
// rest of the group is skipped, like the elif chain it replaces.
type riskGroup []riskRule

func (g riskGroup) apply(rc *riskContext, acc *riskAccumulator) {
	for _, rule := range g {
		if rule.when(rc) {
			acc.add(rule.hit(rc))
			return
		}
	}
}

type riskAccumulator struct {
	score           int
	factors         []models.RiskFactor
	recommendations []string
}

func (a *riskAccumulator) add(h riskHit) {
	a.score += h.points
	if h.factor != nil {
		a.factors = append(a.factors, *h.factor)
	}
	if h.recommendation != "" {
		a.recommendations = append(a.recommendations, h.recommendation)
	}
}

func factor(name, impact, description string) *models.RiskFactor {
	return &models.RiskFactor{Name: name, Impact: impact, Description: description}
}

// riskRuleGroups is the full scoring table, evaluated top to bottom:
// blood pressure (up to ~35 effective points), medication adherence (up to
// 20), lifestyle (up to ~25), then demographics and history (up to ~15).
var riskRuleGroups = []riskGroup{
	// No readings at all in the window.
	{{
		when: func(rc *riskContext) bool { return len(rc.recent) == 0 },
		hit: func(rc *riskContext) riskHit {
			return riskHit{
				points:         10,
				factor:         factor("Insufficient BP Data", "moderate", "No recent blood pressure readings available"),
				recommendation: "Start monitoring blood pressure daily",
			}
		},
	}},

	// Hypertensive crisis episodes.
	{{
		when: func(rc *riskContext) bool { return rc.criticalCount > 0 },
		hit: func(rc *riskContext) riskHit {
			return riskHit{
				points:         25,
				factor:         factor("Critical BP Episodes", "high", fmt.Sprintf("%d reading(s) in hypertensive crisis range", rc.criticalCount)),
				recommendation: "Seek immediate medical evaluation for critical readings",
			}
		},
	}},

	// Share of elevated readings.
	{
		{
			when: func(rc *riskContext) bool { return len(rc.recent) > 0 && rc.highPct >= 70 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         20,
					factor:         factor("Consistently Elevated BP", "high", fmt.Sprintf("%.0f%% of readings are elevated", rc.highPct)),
					recommendation: "Review current medication effectiveness with provider",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return len(rc.recent) > 0 && rc.highPct >= 40 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         12,
					factor:         factor("Frequently Elevated BP", "moderate", fmt.Sprintf("%.0f%% of readings are elevated", rc.highPct)),
					recommendation: "Monitor blood pressure more frequently",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return len(rc.recent) > 0 && rc.highPct >= 20 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points: 5,
					factor: factor("Occasionally Elevated BP", "low", fmt.Sprintf("%.0f%% of readings are elevated", rc.highPct)),
				}
			},
		},
	},

	// Average level tier; points only, no named factor.
	{
		{
			when: func(rc *riskContext) bool {
				return len(rc.recent) > 0 && (rc.avgSystolic >= 160 || rc.avgDiastolic >= 100)
			},
			hit: func(rc *riskContext) riskHit { return riskHit{points: 10} },
		},
		{
			when: func(rc *riskContext) bool {
				return len(rc.recent) > 0 && (rc.avgSystolic >= 140 || rc.avgDiastolic >= 90)
			},
			hit: func(rc *riskContext) riskHit { return riskHit{points: 6} },
		},
		{
			when: func(rc *riskContext) bool {
				return len(rc.recent) > 0 && (rc.avgSystolic >= 130 || rc.avgDiastolic >= 85)
			},
			hit: func(rc *riskContext) riskHit { return riskHit{points: 3} },
		},
	},

	// Systolic spread between measurements.
	{
		{
			when: func(rc *riskContext) bool { return len(rc.recent) > 0 && rc.variability > 40 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         8,
					factor:         factor("Blood Pressure Variability", "high", fmt.Sprintf("Readings vary by %d mmHg between measurements", rc.variability)),
					recommendation: "Maintain consistent measurement times and conditions",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return len(rc.recent) > 0 && rc.variability > 25 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points: 4,
					factor: factor("Blood Pressure Variability", "moderate", fmt.Sprintf("Readings vary by %d mmHg between measurements", rc.variability)),
				}
			},
		},
	},

	// Medication adherence.
	{
		{
			when: func(rc *riskContext) bool { return rc.hasActiveMeds && rc.avgAdherence < 70 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         20,
					factor:         factor("Poor Medication Adherence", "high", fmt.Sprintf("Average adherence rate is %.0f%%", rc.avgAdherence)),
					recommendation: "Set up medication reminders and discuss barriers with your doctor",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return rc.hasActiveMeds && rc.avgAdherence < 85 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         12,
					factor:         factor("Medication Adherence", "moderate", fmt.Sprintf("Missed doses detected (adherence: %.0f%%)", rc.avgAdherence)),
					recommendation: "Use a pill organizer or reminder app",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return rc.hasActiveMeds && rc.avgAdherence >= 95 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					factor: factor("Medication Adherence", "low", fmt.Sprintf("Excellent adherence rate (%.0f%%)", rc.avgAdherence)),
				}
			},
		},
	},

	// Dietary sodium.
	{
		{
			when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.lifestyle.SaltIntake == "high" },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         8,
					factor:         factor("High Sodium Diet", "high", "Reported high salt intake increases BP"),
					recommendation: "Reduce sodium intake to less than 2,300mg daily",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.lifestyle.SaltIntake == "moderate" },
			hit:  func(rc *riskContext) riskHit { return riskHit{points: 3} },
		},
	},

	// Physical activity.
	{
		{
			when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.activityMinutes() < 15 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         8,
					factor:         factor("Low Physical Activity", "high", fmt.Sprintf("Only %d minutes of activity logged", rc.activityMinutes())),
					recommendation: "Aim for 30 minutes of moderate exercise 5 days a week",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.activityMinutes() < 30 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points: 4,
					factor: factor("Physical Activity", "moderate", fmt.Sprintf("%d minutes of activity - could be increased", rc.activityMinutes())),
				}
			},
		},
	},

	// Stress level.
	{
		{
			when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.lifestyle.StressLevel == "severe" },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         8,
					factor:         factor("Severe Stress", "high", "High stress levels can significantly elevate BP"),
					recommendation: "Practice stress management: meditation, deep breathing, or yoga",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.lifestyle.StressLevel == "high" },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points: 5,
					factor: factor("High Stress", "moderate", "Stress can contribute to elevated blood pressure"),
				}
			},
		},
	},

	// Sleep duration.
	{
		{
			when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.sleepHours() < 5 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points:         6,
					factor:         factor("Sleep Deprivation", "high", fmt.Sprintf("Only %.1f hours of sleep", rc.sleepHours())),
					recommendation: "Prioritize getting 7-9 hours of quality sleep",
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.sleepHours() < 6 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points: 3,
					factor: factor("Insufficient Sleep", "moderate", fmt.Sprintf("%.1f hours of sleep - below recommended", rc.sleepHours())),
				}
			},
		},
	},

	// Alcohol.
	{{
		when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.alcoholDrinks() > 2 },
		hit: func(rc *riskContext) riskHit {
			return riskHit{
				points:         5,
				factor:         factor("Alcohol Consumption", "moderate", fmt.Sprintf("%d drinks - above recommended limit", rc.alcoholDrinks())),
				recommendation: "Limit alcohol to 1-2 drinks per day maximum",
			}
		},
	}},

	// Smoking.
	{{
		when: func(rc *riskContext) bool { return rc.lifestyle != nil && rc.lifestyle.SmokingStatus == "current" },
		hit: func(rc *riskContext) riskHit {
			return riskHit{
				points:         10,
				factor:         factor("Smoking", "high", "Smoking significantly increases cardiovascular risk"),
				recommendation: "Consider smoking cessation programs",
			}
		},
	}},

	// Age.
	{
		{
			when: func(rc *riskContext) bool { return rc.age >= 65 },
			hit: func(rc *riskContext) riskHit {
				return riskHit{
					points: 10,
					factor: factor("Age", "moderate", fmt.Sprintf("Age %d is a non-modifiable risk factor", rc.age)),
				}
			},
		},
		{
			when: func(rc *riskContext) bool { return rc.age >= 55 },
			hit:  func(rc *riskContext) riskHit { return riskHit{points: 6} },
		},
		{
			when: func(rc *riskContext) bool { return rc.age >= 45 },
			hit:  func(rc *riskContext) riskHit { return riskHit{points: 3} },
		},
	},

	// Medical history, case-insensitive substring matches.
	{{
		when: func(rc *riskContext) bool { return strings.Contains(rc.history, "diabetes") },
		hit: func(rc *riskContext) riskHit {
			return riskHit{
				points:         10,
				factor:         factor("Diabetes", "high", "Diabetes increases cardiovascular risk"),
				recommendation: "Maintain good blood sugar control",
			}
		},
	}},
	{{
		when: func(rc *riskContext) bool {
			return strings.Contains(rc.history, "kidney") || strings.Contains(rc.history, "renal")
		},
		hit: func(rc *riskContext) riskHit {
			return riskHit{
				points: 10,
				factor: factor("Kidney Disease", "high", "Kidney function affects blood pressure regulation"),
			}
		},
	}},
	{{
		when: func(rc *riskContext) bool {
			return strings.Contains(rc.history, "heart") || strings.Contains(rc.history, "cardiac")
		},
		hit: func(rc *riskContext) riskHit {
			return riskHit{
				points: 8,
				factor: factor("Heart Condition", "high", "Existing heart condition increases risk"),
			}
		},
	}},
}
