package stats

import (
	"math"
	"testing"
)

func TestPearson_PerfectPositive(t *testing.T) {
	pairs := []Pair{
		{X: 1, Y: 2}, {X: 2, Y: 4}, {X: 3, Y: 6}, {X: 4, Y: 8}, {X: 5, Y: 10},
	}
	r, ok := Pearson(pairs)
	if !ok {
		t.Fatal("expected correlation to be reported")
	}
	if math.Abs(r-1.0) > 1e-9 {
		t.Errorf("Expected r=1.0, got %f", r)
	}
}

func TestPearson_PerfectNegative(t *testing.T) {
	pairs := []Pair{
		{X: 1, Y: 10}, {X: 2, Y: 8}, {X: 3, Y: 6}, {X: 4, Y: 4}, {X: 5, Y: 2},
	}
	r, ok := Pearson(pairs)
	if !ok {
		t.Fatal("expected correlation to be reported")
	}
	if math.Abs(r+1.0) > 1e-9 {
		t.Errorf("Expected r=-1.0, got %f", r)
	}
}

func TestPearson_Symmetry(t *testing.T) {
	// Swapping X and Y must give the same coefficient.
	a := []Pair{{1, 3}, {2, 7}, {3, 4}, {4, 9}, {5, 6}, {6, 11}}
	b := make([]Pair, len(a))
	for i, p := range a {
		b[i] = Pair{X: p.Y, Y: p.X}
	}

	ra, okA := Pearson(a)
	rb, okB := Pearson(b)
	if okA != okB {
		t.Fatalf("symmetry broken: okA=%v okB=%v", okA, okB)
	}
	if math.Abs(ra-rb) > 1e-12 {
		t.Errorf("Expected symmetric r, got %f vs %f", ra, rb)
	}
}

func TestPearson_TooFewPairs(t *testing.T) {
	pairs := []Pair{{1, 2}, {2, 4}, {3, 6}, {4, 8}}
	if _, ok := Pearson(pairs); ok {
		t.Error("expected no correlation below the minimum sample size")
	}
}

func TestPearson_ZeroVariance(t *testing.T) {
	pairs := []Pair{{5, 1}, {5, 2}, {5, 3}, {5, 4}, {5, 5}}
	if _, ok := Pearson(pairs); ok {
		t.Error("expected no correlation when one series is constant")
	}
}

func TestPearson_NoiseFloor(t *testing.T) {
	// Nearly uncorrelated data must be suppressed.
	pairs := []Pair{{1, 5}, {2, 3}, {3, 6}, {4, 2}, {5, 5}, {6, 4}, {7, 5}, {8, 3}}
	r, ok := Pearson(pairs)
	if ok && math.Abs(r) < 0.1 {
		t.Errorf("correlation below noise floor reported: %f", r)
	}
}

func TestLinearRegression_PerfectLine(t *testing.T) {
	y := []float64{10, 12, 14, 16, 18}
	reg := LinearRegression(y)

	if math.Abs(reg.Slope-2.0) > 1e-9 {
		t.Errorf("Expected slope=2.0, got %f", reg.Slope)
	}
	if math.Abs(reg.Intercept-10.0) > 1e-9 {
		t.Errorf("Expected intercept=10.0, got %f", reg.Intercept)
	}
	if math.Abs(reg.RSquared-1.0) > 1e-9 {
		t.Errorf("Expected R²=1.0, got %f", reg.RSquared)
	}
}

func TestLinearRegression_Constant(t *testing.T) {
	y := []float64{120, 120, 120, 120}
	reg := LinearRegression(y)

	if reg.Slope != 0 {
		t.Errorf("Expected slope=0 for constant series, got %f", reg.Slope)
	}
	if reg.Intercept != 120 {
		t.Errorf("Expected intercept=120, got %f", reg.Intercept)
	}
	if reg.RSquared != 0 {
		t.Errorf("Expected R²=0 for constant series, got %f", reg.RSquared)
	}
}

func TestLinearRegression_Degenerate(t *testing.T) {
	if reg := LinearRegression(nil); reg != (Regression{}) {
		t.Errorf("Expected zero regression for empty input, got %+v", reg)
	}
	reg := LinearRegression([]float64{135})
	if reg.Slope != 0 || reg.Intercept != 135 {
		t.Errorf("Expected slope=0 intercept=135 for single sample, got %+v", reg)
	}
}

func TestStdDev(t *testing.T) {
	// Population standard deviation of {2,4,4,4,5,5,7,9} is exactly 2.
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if sd := StdDev(values); math.Abs(sd-2.0) > 1e-9 {
		t.Errorf("Expected stddev=2.0, got %f", sd)
	}
	if sd := StdDev(nil); sd != 0 {
		t.Errorf("Expected stddev=0 for empty input, got %f", sd)
	}
}

func TestMean(t *testing.T) {
	if m := Mean([]float64{120, 130, 140}); m != 130 {
		t.Errorf("Expected mean=130, got %f", m)
	}
	if m := Mean(nil); m != 0 {
		t.Errorf("Expected mean=0 for empty input, got %f", m)
	}
}

func TestRounding(t *testing.T) {
	if v := Round1(129.96); v != 130.0 {
		t.Errorf("Round1(129.96)=%f", v)
	}
	if v := Round1(129.94); v != 129.9 {
		t.Errorf("Round1(129.94)=%f", v)
	}
	if v := Round3(0.12345); v != 0.123 {
		t.Errorf("Round3(0.12345)=%f", v)
	}
}

func TestClamp(t *testing.T) {
	if v := Clamp(250, 80, 200); v != 200 {
		t.Errorf("Clamp high failed: %f", v)
	}
	if v := Clamp(50, 80, 200); v != 80 {
		t.Errorf("Clamp low failed: %f", v)
	}
	if v := Clamp(120, 80, 200); v != 120 {
		t.Errorf("Clamp passthrough failed: %f", v)
	}
}
