package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/deepscout/matchup/internal/model"
)

func dist(mean, stddev float64) model.Distribution {
	return model.Distribution{Mean: mean, StdDev: stddev, Samples: 10}
}

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// ---- Estimator tests ----

// TestEstimate_KnownSeries: [10,20,30] → mean 20, sample stddev 10.
func TestEstimate_KnownSeries(t *testing.T) {
	d, err := Estimate([]float64{10, 20, 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(d.Mean, 20.0, 1e-12) {
		t.Errorf("Mean: want 20.0, got %f", d.Mean)
	}
	if !approx(d.StdDev, 10.0, 1e-12) {
		t.Errorf("StdDev: want 10.0, got %f", d.StdDev)
	}
	if d.Samples != 3 {
		t.Errorf("Samples: want 3, got %d", d.Samples)
	}
}

// TestEstimate_ConstantSeries: identical scores give zero spread, not an error.
func TestEstimate_ConstantSeries(t *testing.T) {
	d, err := Estimate([]float64{42, 42, 42, 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Mean != 42.0 {
		t.Errorf("Mean: want 42.0, got %f", d.Mean)
	}
	if d.StdDev != 0.0 {
		t.Errorf("StdDev: want 0.0, got %f", d.StdDev)
	}
}

// TestEstimate_InsufficientData: zero or one sample cannot define a spread.
func TestEstimate_InsufficientData(t *testing.T) {
	cases := []struct {
		name   string
		series []float64
	}{
		{"empty", nil},
		{"single", []float64{55}},
	}
	for _, c := range cases {
		_, err := Estimate(c.series)
		if err == nil {
			t.Errorf("%s: expected error, got none", c.name)
			continue
		}
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("%s: want ErrInsufficientData, got %v", c.name, err)
		}
	}
}

// ---- Combiner tests ----

// TestCombine_Sums: alliance mean is the sum of means, variance the sum of
// squared stddevs.
func TestCombine_Sums(t *testing.T) {
	a := dist(50, 10)
	b := dist(30, 5)

	ad := Combine(a, b)
	if !approx(ad.Mean, 80.0, 1e-12) {
		t.Errorf("Mean: want 80.0, got %f", ad.Mean)
	}
	if !approx(ad.Variance, 125.0, 1e-12) {
		t.Errorf("Variance: want 125.0, got %f", ad.Variance)
	}
	if !approx(ad.StdDev(), math.Sqrt(125.0), 1e-12) {
		t.Errorf("StdDev: want %f, got %f", math.Sqrt(125.0), ad.StdDev())
	}
}

// TestCombine_Commutative: Combine(a,b) and Combine(b,a) are identical.
func TestCombine_Commutative(t *testing.T) {
	a := dist(47.3, 12.81)
	b := dist(52.9, 7.07)

	ab := Combine(a, b)
	ba := Combine(b, a)
	if ab != ba {
		t.Errorf("combine not commutative: %+v vs %+v", ab, ba)
	}
}

// ---- Win probability tests ----

// TestWinProbability_EqualAlliances: identical distributions → exactly even.
func TestWinProbability_EqualAlliances(t *testing.T) {
	a := model.AllianceDistribution{Mean: 100, Variance: 50}
	b := model.AllianceDistribution{Mean: 100, Variance: 50}

	p := WinProbability(a, b)
	if !approx(p, 0.5, 1e-12) {
		t.Errorf("want 0.5, got %f", p)
	}
}

// TestWinProbability_Complement: P(a beats b) + P(b beats a) = 1.
func TestWinProbability_Complement(t *testing.T) {
	a := model.AllianceDistribution{Mean: 110, Variance: 64}
	b := model.AllianceDistribution{Mean: 95, Variance: 36}

	sum := WinProbability(a, b) + WinProbability(b, a)
	if !approx(sum, 1.0, 1e-9) {
		t.Errorf("complement: want sum 1.0, got %.12f", sum)
	}
}

// TestWinProbability_KnownValue: muD == sigmaD → Phi(1) ≈ 0.8413.
func TestWinProbability_KnownValue(t *testing.T) {
	a := model.AllianceDistribution{Mean: 60, Variance: 50}
	b := model.AllianceDistribution{Mean: 50, Variance: 50}

	p := WinProbability(a, b)
	if !approx(p, 0.8413447460685429, 1e-9) {
		t.Errorf("Phi(1): want 0.841345, got %.12f", p)
	}
}

// TestWinProbability_StrongerFavorite: larger mean gap moves the probability
// toward 1, never past it.
func TestWinProbability_StrongerFavorite(t *testing.T) {
	b := model.AllianceDistribution{Mean: 50, Variance: 100}
	prev := 0.5
	for _, mean := range []float64{55, 65, 80, 120, 300} {
		a := model.AllianceDistribution{Mean: mean, Variance: 100}
		p := WinProbability(a, b)
		if p <= prev {
			t.Errorf("mean %.0f: probability %f did not increase past %f", mean, p, prev)
		}
		if p > 1.0 {
			t.Errorf("mean %.0f: probability %f exceeds 1", mean, p)
		}
		prev = p
	}
}

// TestWinProbability_DegenerateSigma: two point masses compare by mean alone.
func TestWinProbability_DegenerateSigma(t *testing.T) {
	cases := []struct {
		name  string
		meanA float64
		meanB float64
		want  float64
	}{
		{"a ahead", 100, 90, 1.0},
		{"a behind", 90, 100, 0.0},
		{"exact tie", 100, 100, 0.5},
	}
	for _, c := range cases {
		a := model.AllianceDistribution{Mean: c.meanA, Variance: 0}
		b := model.AllianceDistribution{Mean: c.meanB, Variance: 0}
		got := WinProbability(a, b)
		if got != c.want {
			t.Errorf("%s: want %.1f, got %f", c.name, c.want, got)
		}
	}
}

// ---- Density curve tests ----

// TestDensityCurve_Shape: exactly 51 points spanning mean±3σ, ascending x,
// positive y, peak at the center, symmetric tails.
func TestDensityCurve_Shape(t *testing.T) {
	const mean, stddev = 50.0, 10.0
	points, err := DensityCurve(mean, stddev, "alliance-red")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 51 {
		t.Fatalf("points: want 51, got %d", len(points))
	}

	if !approx(points[0].X, mean-3*stddev, 0.01) {
		t.Errorf("first x: want %.2f, got %f", mean-3*stddev, points[0].X)
	}
	if !approx(points[50].X, mean+3*stddev, 0.01) {
		t.Errorf("last x: want %.2f, got %f", mean+3*stddev, points[50].X)
	}

	for i, p := range points {
		if p.Y <= 0 {
			t.Errorf("point %d: y must be positive, got %g", i, p.Y)
		}
		if p.Label != "alliance-red" {
			t.Errorf("point %d: label want alliance-red, got %q", i, p.Label)
		}
		if i > 0 && p.X <= points[i-1].X {
			t.Errorf("point %d: x not ascending (%f after %f)", i, p.X, points[i-1].X)
		}
	}

	// Peak sits at the middle sample (the mean) and tails mirror around it.
	peak := points[25].Y
	for i, p := range points {
		if p.Y > peak {
			t.Errorf("point %d: y %g exceeds center peak %g", i, p.Y, peak)
		}
	}
	for k := 1; k <= 25; k++ {
		if !approx(points[25-k].Y, points[25+k].Y, 1e-9) {
			t.Errorf("symmetry at ±%d: %g vs %g", k, points[25-k].Y, points[25+k].Y)
		}
	}
}

// TestDensityCurve_XRounding: x values carry at most two decimals, y stays
// full precision.
func TestDensityCurve_XRounding(t *testing.T) {
	points, err := DensityCurve(47.123, 9.876, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range points {
		// A value already rounded to two decimals survives a second
		// rounding bit for bit.
		if r := math.Round(p.X*100) / 100; p.X != r {
			t.Errorf("point %d: x %v not rounded to 2 decimals", i, p.X)
		}
	}
}

// TestDensityCurve_Degenerate: zero or negative spread cannot be plotted.
func TestDensityCurve_Degenerate(t *testing.T) {
	for _, sd := range []float64{0, -1} {
		_, err := DensityCurve(100, sd, "x")
		if err == nil {
			t.Errorf("stddev %.0f: expected error, got none", sd)
			continue
		}
		if !errors.Is(err, ErrDegenerateDistribution) {
			t.Errorf("stddev %.0f: want ErrDegenerateDistribution, got %v", sd, err)
		}
	}
}

// TestDensityCurve_Deterministic: identical inputs give bit-identical curves.
func TestDensityCurve_Deterministic(t *testing.T) {
	first, err := DensityCurve(88.8, 7.7, "red")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := DensityCurve(88.8, 7.7, "red")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("point %d differs across runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
