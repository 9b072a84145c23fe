package analysis

import (
	"context"
	"fmt"

	"github.com/tensioapp/tensio/internal/models"
	"github.com/tensioapp/tensio/internal/stats"
	"github.com/tensioapp/tensio/internal/timeseries"
)

// minForecastDays is the minimum number of distinct days with readings.
const minForecastDays = 7

// forecastBounds holds the per-metric plausibility clamps: the predicted
// value stays inside [predLo, predHi], the confidence band inside the wider
// [boundLo, boundHi].
type forecastBounds struct {
	displayName      string
	predLo, predHi   float64
	boundLo, boundHi float64
}

var metricBounds = map[string]forecastBounds{
	"systolic":  {"Systolic BP", 80, 200, 70, 220},
	"diastolic": {"Diastolic BP", 50, 130, 40, 150},
	"pulse":     {"Heart Rate", 40, 150, 30, 180},
}

// Forecast projects daily averages of one metric forward with widening
// 95% confidence bounds. An unknown metric silently falls back to systolic.
func (s *Service) Forecast(ctx context.Context, patientID, metric string, forecastDays int) (models.TimeSeriesForecast, error) {
	if _, ok := metricBounds[metric]; !ok {
		metric = "systolic"
	}
	params := map[string]any{"metric": metric, "days": forecastDays}
	return runCached(ctx, s, patientID, "forecast", params, func(ctx context.Context) (models.TimeSeriesForecast, error) {
		return s.computeForecast(ctx, patientID, metric, forecastDays)
	})
}

func (s *Service) computeForecast(ctx context.Context, patientID, metric string, forecastDays int) (models.TimeSeriesForecast, error) {
	var zero models.TimeSeriesForecast

	if _, err := s.resolvePatient(ctx, patientID); err != nil {
		return zero, err
	}
	readings, err := s.fetchReadings(ctx, patientID, s.cfg.ForecastHistoryDays)
	if err != nil {
		return zero, err
	}
	if len(readings) < s.cfg.MinReadings {
		return zero, ErrInsufficientReadings(
			fmt.Sprintf("Not enough readings for forecast (have %d, need %d)", len(readings), s.cfg.MinReadings),
			len(readings), s.cfg.MinReadings)
	}

	historical := historicalPoints(readings, metric)
	if len(historical) < minForecastDays {
		return zero, ErrInsufficientDays(
			"Not enough daily data points for forecast",
			len(historical), minForecastDays)
	}

	bounds := metricBounds[metric]
	forecast, err := forecastPoints(historical, forecastDays, bounds)
	if err != nil {
		return zero, err
	}

	return models.TimeSeriesForecast{
		Metric:     bounds.displayName,
		Historical: historical,
		Forecast:   forecast,
	}, nil
}

// historicalPoints builds ascending daily averages of the selected metric.
func historicalPoints(readings []models.BloodPressureReading, metric string) []models.HistoricalDataPoint {
	pick := func(r models.BloodPressureReading) (float64, bool) {
		switch metric {
		case "diastolic":
			return float64(r.Diastolic), true
		case "pulse":
			if r.Pulse == nil {
				return 0, false
			}
			return float64(*r.Pulse), true
		default:
			return float64(r.Systolic), true
		}
	}

	daily := timeseries.DailyAverage(readings, pick)
	points := make([]models.HistoricalDataPoint, len(daily))
	for i, p := range daily {
		points[i] = models.HistoricalDataPoint{Date: p.Date, Value: stats.Round1(p.Value)}
	}
	return points
}

func forecastPoints(historical []models.HistoricalDataPoint, forecastDays int, bounds forecastBounds) ([]models.ForecastDataPoint, error) {
	values := make([]float64, len(historical))
	for i, h := range historical {
		values[i] = h.Value
	}
	n := len(values)

	reg := stats.LinearRegression(values)

	// Residual standard error drives the band width; with too few points
	// fall back to a fixed spread.
	stdError := 10.0
	if n > 2 {
		residuals := make([]float64, n)
		for i, v := range values {
			residuals[i] = v - (reg.Intercept + reg.Slope*float64(i))
		}
		stdError = stats.StdDev(residuals)
	}

	lastDate, err := timeseries.ParseDate(historical[n-1].Date)
	if err != nil {
		return nil, NewError(CodeAnalysisFailed, fmt.Sprintf("invalid historical date %q", historical[n-1].Date))
	}

	forecast := make([]models.ForecastDataPoint, 0, forecastDays)
	for i := 1; i <= forecastDays; i++ {
		futureX := float64(n + i - 1)
		predicted := reg.Intercept + reg.Slope*futureX

		// 95% interval, widening linearly with the horizon.
		margin := 1.96 * stdError * (1 + float64(i)/float64(forecastDays)*0.5)

		predicted = stats.Clamp(predicted, bounds.predLo, bounds.predHi)
		upper := predicted + margin
		if upper > bounds.boundHi {
			upper = bounds.boundHi
		}
		lower := predicted - margin
		if lower < bounds.boundLo {
			lower = bounds.boundLo
		}

		forecast = append(forecast, models.ForecastDataPoint{
			Date:       timeseries.DayKey(lastDate.AddDate(0, 0, i)),
			Predicted:  stats.Round1(predicted),
			UpperBound: stats.Round1(upper),
			LowerBound: stats.Round1(lower),
		})
	}
	return forecast, nil
}
