// Package stats provides the statistical primitives shared by the analysis
// routines: Pearson correlation, ordinary least squares regression and
// population standard deviation.
package stats

import "math"

// MinPairsForCorrelation is the minimum number of paired samples required
// before a correlation is reported.
const MinPairsForCorrelation = 5

// noiseFloor below which a correlation is treated as noise, not a signal.
const noiseFloor = 0.1

// Pair is a single paired observation.
type Pair struct {
	X float64
	Y float64
}

// Pearson computes the Pearson correlation coefficient over paired samples.
// It reports ok=false when fewer than MinPairsForCorrelation pairs are
// given, when the denominator is non-positive (zero variance in either
// series), or when the magnitude is below the noise floor.
func Pearson(pairs []Pair) (float64, bool) {
	n := float64(len(pairs))
	if len(pairs) < MinPairsForCorrelation {
		return 0, false
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for _, p := range pairs {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
		sumY2 += p.Y * p.Y
	}

	numerator := n*sumXY - sumX*sumY
	denominatorSq := (n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY)
	if denominatorSq <= 0 {
		return 0, false
	}

	r := numerator / math.Sqrt(denominatorSq)
	if math.Abs(r) < noiseFloor {
		return 0, false
	}
	return r, true
}

// Regression holds the result of an ordinary least squares fit over index
// positions 0..n-1.
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// LinearRegression fits y = intercept + slope*i by least squares, with the
// sample index as x. The degenerate case (n <= 1) yields slope 0 and
// intercept mean(y); R² is 0 when total variance is 0.
func LinearRegression(y []float64) Regression {
	n := len(y)
	if n == 0 {
		return Regression{}
	}

	var sumY float64
	for _, v := range y {
		sumY += v
	}
	meanY := sumY / float64(n)
	meanX := float64(n-1) / 2

	var sxx, sxy float64
	for i, v := range y {
		dx := float64(i) - meanX
		sxx += dx * dx
		sxy += dx * (v - meanY)
	}

	if sxx == 0 {
		return Regression{Intercept: meanY}
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var ssRes, ssTot float64
	for i, v := range y {
		fitted := intercept + slope*float64(i)
		ssRes += (v - fitted) * (v - fitted)
		ssTot += (v - meanY) * (v - meanY)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return Regression{Slope: slope, Intercept: intercept, RSquared: r2}
}

// StdDev computes the population standard deviation.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Mean computes the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
