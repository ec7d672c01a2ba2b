// Package stats provides the nullable arithmetic helpers shared by the
// feature builders and the backtester. Results are *float64 so that
// "unknown" (nil) stays distinct from zero: division by zero, a nil operand,
// or an insufficient sample all resolve to nil, never to 0 or ±Inf.
package stats

import "math"

// Float returns a pointer to v. Convenience for literals.
func Float(v float64) *float64 {
	return &v
}

// Mean returns the arithmetic mean of xs, or nil for an empty slice.
func Mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return Float(sum / float64(len(xs)))
}

// StdDev returns the sample standard deviation of xs (Bessel's correction,
// divide by n-1). Undefined for fewer than two samples, so nil.
func StdDev(xs []float64) *float64 {
	n := len(xs)
	if n <= 1 {
		return nil
	}
	mean := *Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return Float(math.Sqrt(sumSq / float64(n-1)))
}

// ZScore standardizes latest against mean/std. Nil when either statistic is
// unknown or std is zero.
func ZScore(latest float64, mean, std *float64) *float64 {
	if mean == nil || std == nil || *std == 0 {
		return nil
	}
	return Float((latest - *mean) / *std)
}

// EMA computes an exponential moving average over ascending-time values with
// smoothing k = 2/(period+1), seeded with the oldest value. Nil for an empty
// series or a non-positive period.
func EMA(values []float64, period int) *float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	k := 2.0 / (float64(period) + 1.0)
	ema := values[0]
	for _, v := range values[1:] {
		ema = v*k + ema*(1.0-k)
	}
	return Float(ema)
}

// PercentChange returns (latest-reference)/reference*100, or nil when either
// operand is unknown or the reference is zero.
func PercentChange(latest, reference *float64) *float64 {
	if latest == nil || reference == nil || *reference == 0 {
		return nil
	}
	return Float((*latest - *reference) / *reference * 100.0)
}

// SafeRatio returns num/den, or nil when either operand is unknown or den is
// zero.
func SafeRatio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return Float(*num / *den)
}

// SafeDiv divides concrete values, resolving a zero denominator to nil.
func SafeDiv(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return Float(num / den)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to three decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
