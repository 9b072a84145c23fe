package timeseries

import (
	"sort"

	"github.com/tensioapp/tensio/internal/models"
)

// DailyPoint is a single daily-averaged value.
type DailyPoint struct {
	Date  string
	Value float64
}

// DailyAverage groups readings by calendar date and averages the value
// extracted by pick. Readings for which pick reports no value are skipped;
// days with zero contributing readings are absent from the result. Points
// are returned in ascending date order.
func DailyAverage(readings []models.BloodPressureReading, pick func(models.BloodPressureReading) (float64, bool)) []DailyPoint {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, r := range readings {
		v, ok := pick(r)
		if !ok {
			continue
		}
		key := DayKey(r.MeasurementDate)
		sums[key] += v
		counts[key]++
	}

	points := make([]DailyPoint, 0, len(sums))
	for key, sum := range sums {
		points = append(points, DailyPoint{Date: key, Value: sum / float64(counts[key])})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

// DailyRecord merges the daily-averaged BP metrics with the lifestyle entry
// for the same calendar date. BP fields are nil on days without readings;
// lifestyle fields are nil/empty on days without an entry.
type DailyRecord struct {
	Systolic  *float64
	Diastolic *float64
	Pulse     *float64

	PhysicalActivity   *float64
	SleepDuration      *float64
	StressLevel        string
	WaterIntake        *float64
	Weight             *float64
	SodiumMg           *float64
	CaffeineIntake     *float64
	AlcoholConsumption *float64
	SaltIntake         string
}

// BuildDailyJoin produces a date-keyed join of daily-averaged readings and
// raw lifestyle fields. A date appears only if at least one reading or one
// lifestyle entry exists for it.
func BuildDailyJoin(readings []models.BloodPressureReading, lifestyle []models.LifestyleEntry) map[string]*DailyRecord {
	joined := make(map[string]*DailyRecord)
	record := func(date string) *DailyRecord {
		if rec, ok := joined[date]; ok {
			return rec
		}
		rec := &DailyRecord{}
		joined[date] = rec
		return rec
	}

	for _, p := range DailyAverage(readings, func(r models.BloodPressureReading) (float64, bool) {
		return float64(r.Systolic), true
	}) {
		v := p.Value
		record(p.Date).Systolic = &v
	}
	for _, p := range DailyAverage(readings, func(r models.BloodPressureReading) (float64, bool) {
		return float64(r.Diastolic), true
	}) {
		v := p.Value
		record(p.Date).Diastolic = &v
	}
	for _, p := range DailyAverage(readings, func(r models.BloodPressureReading) (float64, bool) {
		if r.Pulse == nil {
			return 0, false
		}
		return float64(*r.Pulse), true
	}) {
		v := p.Value
		record(p.Date).Pulse = &v
	}

	for _, e := range lifestyle {
		if e.EntryDate == "" {
			continue
		}
		rec := record(e.EntryDate)
		rec.PhysicalActivity = intField(e.PhysicalActivity)
		if e.SleepDuration != nil {
			v := *e.SleepDuration
			rec.SleepDuration = &v
		}
		rec.StressLevel = e.StressLevel
		rec.WaterIntake = intField(e.WaterIntake)
		if e.Weight != nil {
			v := *e.Weight
			rec.Weight = &v
		}
		rec.SodiumMg = intField(e.SodiumMg)
		rec.CaffeineIntake = intField(e.CaffeineIntake)
		rec.AlcoholConsumption = intField(e.AlcoholConsumption)
		rec.SaltIntake = e.SaltIntake
	}

	return joined
}

// SortedDates returns the join's dates in ascending order.
func SortedDates(joined map[string]*DailyRecord) []string {
	dates := make([]string, 0, len(joined))
	for date := range joined {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

func intField(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
