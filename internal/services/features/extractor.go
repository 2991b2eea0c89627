package features

import (
	"math"

	"VolScan/internal/domain/models"
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(bars)-1, or nil if insufficient data.
// A non-positive close yields a zero return.
func ComputeLogReturns(bars []models.PriceBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		cur := bars[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// TrailingStats returns the mean and sample standard deviation (n-1) of the
// last window values, along with the number of values used.
// A window larger than the input uses the whole input.
func TrailingStats(values []float64, window int) (mean, std float64, n int) {
	n = window
	if n <= 0 || n > len(values) {
		n = len(values)
	}
	if n == 0 {
		return 0, 0, 0
	}
	tail := values[len(values)-n:]

	sum := 0.0
	for _, v := range tail {
		sum += v
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0, n
	}

	// two-pass variance
	ss := 0.0
	for _, v := range tail {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-1)), n
}

// MinStdDev is the smallest standard deviation treated as non-degenerate.
// Identical returns can leave rounding residue well below it.
const MinStdDev = 1e-12

// ZScore is (x-mean)/std. ok is false when std is degenerate or not finite.
func ZScore(x, mean, std float64) (z float64, ok bool) {
	if math.IsNaN(std) || math.IsInf(std, 0) || std < MinStdDev {
		return 0, false
	}
	z = (x - mean) / std
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, false
	}
	return z, true
}

// PercentMove is the percentage change from prev to cur, 0 when prev is not positive.
func PercentMove(prev, cur float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
