// Package statistics holds the resampling helpers used when comparing pass
// rates between two models.
package statistics

import (
	"math"
	"math/rand/v2"
	"slices"
)

// ConfidenceInterval is a percentile bootstrap interval around Mean.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultIterations is the number of resamples drawn when Options leaves
// Iterations unset.
const DefaultIterations = 10000

// Options controls a bootstrap run. Level is the confidence level in
// (0, 1); zero means 0.95. Seed makes the resampling reproducible and a
// negative seed draws from a random source.
type Options struct {
	Level      float64
	Iterations int
	Seed       int64
}

func (o Options) withDefaults() Options {
	if o.Level <= 0 || o.Level >= 1 {
		o.Level = 0.95
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	return o
}

func (o Options) rng() *rand.Rand {
	if o.Seed >= 0 {
		return rand.New(rand.NewPCG(uint64(o.Seed), 0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// MeanCI bootstraps the mean of samples. With fewer than two samples the
// interval collapses onto the sample mean and no resampling happens.
func MeanCI(samples []float64, opts Options) ConfidenceInterval {
	opts = opts.withDefaults()
	m := mean(samples)
	if len(samples) < 2 {
		return ConfidenceInterval{Lower: m, Upper: m, Mean: m, ConfidenceLevel: opts.Level}
	}

	rng := opts.rng()
	buf := make([]float64, len(samples))
	stats := make([]float64, opts.Iterations)
	for i := range stats {
		stats[i] = mean(resample(rng, samples, buf))
	}
	return percentileInterval(stats, m, opts)
}

// DifferenceCI bootstraps mean(candidate) - mean(baseline), resampling the
// two groups independently. When either group has fewer than two samples
// the interval collapses onto the observed difference.
func DifferenceCI(baseline, candidate []float64, opts Options) ConfidenceInterval {
	opts = opts.withDefaults()
	diff := mean(candidate) - mean(baseline)
	if len(baseline) < 2 || len(candidate) < 2 {
		return ConfidenceInterval{Lower: diff, Upper: diff, Mean: diff, ConfidenceLevel: opts.Level}
	}

	rng := opts.rng()
	bufA := make([]float64, len(baseline))
	bufB := make([]float64, len(candidate))
	stats := make([]float64, opts.Iterations)
	for i := range stats {
		stats[i] = mean(resample(rng, candidate, bufB)) - mean(resample(rng, baseline, bufA))
	}
	return percentileInterval(stats, diff, opts)
}

// IsSignificant reports whether the interval excludes zero.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

// NormalizedGain is Hake's gain (post - pre) / (1 - pre) for rates in
// [0, 1]. It is 0 when pre is already at the ceiling or nothing changed,
// and 1 once post reaches the ceiling.
func NormalizedGain(pre, post float64) float64 {
	switch {
	case pre >= 1:
		return 0
	case post >= 1:
		return 1
	case math.Abs(post-pre) < 1e-12:
		return 0
	}
	return (post - pre) / (1 - pre)
}

func resample(rng *rand.Rand, from, into []float64) []float64 {
	for i := range into {
		into[i] = from[rng.IntN(len(from))]
	}
	return into
}

func percentileInterval(stats []float64, observed float64, opts Options) ConfidenceInterval {
	slices.Sort(stats)
	n := len(stats)
	alpha := 1 - opts.Level
	lo := int(math.Floor(alpha / 2 * float64(n)))
	hi := min(int(math.Floor((1-alpha/2)*float64(n))), n-1)
	return ConfidenceInterval{
		Lower:           stats[lo],
		Upper:           stats[hi],
		Mean:            observed,
		ConfidenceLevel: opts.Level,
		NumBootstraps:   n,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
