// Package stats turns score series into distributions and distributions
// into win probabilities. Everything here is pure: same inputs, same
// outputs, no I/O.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/deepscout/matchup/internal/model"
)

var (
	// ErrInsufficientData means a series has fewer than two scored matches,
	// so a sample standard deviation cannot be computed.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateDistribution means a distribution has no spread, so a
	// density curve cannot be plotted for it.
	ErrDegenerateDistribution = errors.New("degenerate distribution")
)

// curveSamples is the fixed number of points in a density curve: 50 equal
// steps across mean ± 3 stddev, endpoints included.
const curveSamples = 51

// Estimate fits a normal distribution to a score series: arithmetic mean
// and sample standard deviation (Bessel's correction, n-1 denominator).
// Fewer than two samples cannot define a spread and return
// ErrInsufficientData.
func Estimate(series []float64) (model.Distribution, error) {
	n := len(series)
	if n < 2 {
		return model.Distribution{}, fmt.Errorf("%w: %d scored matches, need at least 2", ErrInsufficientData, n)
	}

	var sum float64
	for _, v := range series {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range series {
		d := v - mean
		sq += d * d
	}
	variance := sq / float64(n-1)

	return model.Distribution{
		Mean:    mean,
		StdDev:  math.Sqrt(variance),
		Samples: n,
	}, nil
}

// Combine merges two teammates into one alliance distribution. Teams are
// treated as independent, so means add and variances add. Order of the two
// arguments does not matter.
func Combine(a, b model.Distribution) model.AllianceDistribution {
	return model.AllianceDistribution{
		Mean:     a.Mean + b.Mean,
		Variance: a.StdDev*a.StdDev + b.StdDev*b.StdDev,
	}
}

// WinProbability returns P(a outscores b): the score difference D = A - B
// is normal with mean a.Mean-b.Mean and variance a.Variance+b.Variance, and
// the result is P(D > 0) = Phi(muD / sigmaD).
//
// When sigmaD is zero both alliances are point masses and the comparison is
// certain; the limiting value is returned by the sign of muD (1 when a is
// ahead, 0 when behind, 0.5 on an exact tie).
func WinProbability(a, b model.AllianceDistribution) float64 {
	muD := a.Mean - b.Mean
	sigmaD := math.Sqrt(a.Variance + b.Variance)

	if sigmaD == 0 {
		switch {
		case muD > 0:
			return 1
		case muD < 0:
			return 0
		default:
			return 0.5
		}
	}

	return normalCDF(muD / sigmaD)
}

// DensityCurve samples the normal PDF for one distribution: exactly 51
// points across [mean-3*stddev, mean+3*stddev], x rounded to two decimals
// for display, y left at full precision. A distribution with no spread has
// no plottable density and returns ErrDegenerateDistribution.
func DensityCurve(mean, stddev float64, label string) ([]model.CurvePoint, error) {
	if stddev <= 0 {
		return nil, fmt.Errorf("%w: stddev %.4f", ErrDegenerateDistribution, stddev)
	}

	min := mean - 3*stddev
	max := mean + 3*stddev
	step := (max - min) / float64(curveSamples-1)

	points := make([]model.CurvePoint, 0, curveSamples)
	for i := 0; i < curveSamples; i++ {
		x := min + step*float64(i)
		points = append(points, model.CurvePoint{
			X:     round2(x),
			Y:     normalPDF(x, mean, stddev),
			Label: label,
		})
	}
	return points, nil
}

func normalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}

func normalPDF(x, mean, stddev float64) float64 {
	d := (x - mean) / stddev
	return math.Exp(-0.5*d*d) / (stddev * math.Sqrt(2*math.Pi))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
