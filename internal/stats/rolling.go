package stats

import (
	"math"
	"sort"
)

// DecayFactor is the geometric decay applied per-sample (oldest-first) when
// computing the weighted mean: weight_i = DecayFactor^(n-1-i), so the most
// recent sample always carries weight 1.
const DecayFactor = 0.9

// WeightedMean computes a geometrically decayed mean over values, ordered
// oldest-first, so recent samples dominate without a hard cutoff.
func WeightedMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var weightedSum, weightTotal float64
	weight := 1.0
	for i := len(values) - 1; i >= 0; i-- {
		weightedSum += values[i] * weight
		weightTotal += weight
		weight *= DecayFactor
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

// Mean returns the unweighted arithmetic mean.
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

// Percentile returns the pXX value over values using linear interpolation
// between the two nearest ranks, matching the common "sort and interpolate"
// approach rather than nearest-rank truncation.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Trend fits a weighted least-squares line over values (oldest-first, with
// the same geometric decay as WeightedMean biasing recent points) and
// returns its slope: positive means degrading (e.g. rising latency),
// negative means improving.
func Trend(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	xs := make([]float64, n)
	weights := make([]float64, n)
	weight := 1.0
	for i := n - 1; i >= 0; i-- {
		xs[i] = float64(i)
		weights[i] = weight
		weight *= DecayFactor
	}

	var sumW, sumWX, sumWY, sumWXY, sumWXX float64
	for i := 0; i < n; i++ {
		w := weights[i]
		x := xs[i]
		y := values[i]
		sumW += w
		sumWX += w * x
		sumWY += w * y
		sumWXY += w * x * y
		sumWXX += w * x * x
	}

	denom := sumW*sumWXX - sumWX*sumWX
	if denom == 0 {
		return 0
	}
	return (sumW*sumWXY - sumWX*sumWY) / denom
}
