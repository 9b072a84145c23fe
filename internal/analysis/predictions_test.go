package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensioapp/tensio/internal/models"
)

// trendReadings builds one reading per day, newest first. The newest reading
// has startSystolic; each day back in time adds step, so a positive step
// means systolic has been falling toward the present.
func trendReadings(n, startSystolic, step int, pulse *int) []models.BloodPressureReading {
	now := time.Now().UTC()
	readings := make([]models.BloodPressureReading, n)
	for i := 0; i < n; i++ {
		readings[i] = models.BloodPressureReading{
			Systolic:        startSystolic + i*step,
			Diastolic:       85,
			Pulse:           pulse,
			MeasurementDate: now.AddDate(0, 0, -i),
		}
	}
	return readings
}

func TestPredictions_InsufficientReadings(t *testing.T) {
	st := &fakeStore{patient: testPatient(), readings: flatReadings(4, 120, 80)}
	svc := newTestService(st)

	_, err := svc.Predictions(context.Background(), "p-1", 30)
	require.Error(t, err)

	var analysisErr *Error
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, CodeInsufficientData, analysisErr.Code)
	assert.Equal(t, 4, analysisErr.Details["readings_count"])
}

func TestPredictions_ImprovingSystolic(t *testing.T) {
	// Systolic declines 1 mmHg per day over 30 days.
	st := &fakeStore{patient: testPatient(), readings: trendReadings(30, 120, 1, nil)}
	svc := newTestService(st)

	predictions, err := svc.Predictions(context.Background(), "p-1", 30)
	require.NoError(t, err)
	require.Len(t, predictions, 2, "no pulse data, so no heart rate prediction")

	systolic := predictions[0]
	assert.Equal(t, "Systolic BP", systolic.Metric)
	assert.Equal(t, "improving", systolic.Trend)
	assert.Less(t, systolic.PredictedValue, systolic.CurrentValue)
	assert.Equal(t, "30 days", systolic.Timeframe)
	// A perfect linear fit over 30 readings earns full confidence.
	assert.Equal(t, 95, systolic.Confidence)
	// Current value is the mean of the last seven readings: 126..120.
	assert.Equal(t, 123.0, systolic.CurrentValue)
}

func TestPredictions_StableWhenFlat(t *testing.T) {
	st := &fakeStore{patient: testPatient(), readings: flatReadings(14, 128, 82)}
	svc := newTestService(st)

	predictions, err := svc.Predictions(context.Background(), "p-1", 30)
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	for _, p := range predictions {
		assert.Equal(t, "stable", p.Trend)
		assert.Equal(t, p.CurrentValue, p.PredictedValue)
		// Zero variance means the fit explains nothing; confidence floors.
		assert.Equal(t, 30, p.Confidence)
	}
}

func TestPredictions_WorseningSystolic(t *testing.T) {
	st := &fakeStore{patient: testPatient(), readings: trendReadings(20, 130, -1, nil)}
	svc := newTestService(st)

	predictions, err := svc.Predictions(context.Background(), "p-1", 30)
	require.NoError(t, err)

	assert.Equal(t, "worsening", predictions[0].Trend)
	assert.Greater(t, predictions[0].PredictedValue, predictions[0].CurrentValue)
}

func TestPredictions_PulseRequiresFiveReadings(t *testing.T) {
	// Only 4 readings carry a pulse.
	readings := flatReadings(10, 120, 80)
	for i := 0; i < 4; i++ {
		readings[i].Pulse = intPtr(72)
	}
	st := &fakeStore{patient: testPatient(), readings: readings}
	svc := newTestService(st)

	predictions, err := svc.Predictions(context.Background(), "p-1", 30)
	require.NoError(t, err)
	assert.Len(t, predictions, 2)

	// A fifth pulse reading brings the heart rate metric in.
	readings[4].Pulse = intPtr(74)
	svc.InvalidateCache(context.Background(), "p-1")
	predictions, err = svc.Predictions(context.Background(), "p-1", 30)
	require.NoError(t, err)
	require.Len(t, predictions, 3)
	assert.Equal(t, "Heart Rate", predictions[2].Metric)
}

func TestPredictions_ClampedToPlausibleRange(t *testing.T) {
	// Steep decline would extrapolate far below any plausible pressure.
	st := &fakeStore{patient: testPatient(), readings: trendReadings(30, 120, 3, nil)}
	svc := newTestService(st)

	predictions, err := svc.Predictions(context.Background(), "p-1", 30)
	require.NoError(t, err)

	assert.Equal(t, 80.0, predictions[0].PredictedValue)
}
