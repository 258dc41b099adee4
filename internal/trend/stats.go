package trend

import "math"

// Stats summarizes a demand series.
type Stats struct {
	Average              float64 `json:"average_demand"`
	Min                  float64 `json:"min_demand"`
	Max                  float64 `json:"max_demand"`
	TotalChange          float64 `json:"total_change"`
	PercentChange        float64 `json:"percent_change"`
	Volatility           float64 `json:"volatility"`
	MonthlyAverageChange float64 `json:"monthly_average_change"`
}

// Statistics computes Stats over values, oldest first. Volatility is the
// sample standard deviation of month-to-month changes. Fewer than two values
// give zero change and volatility.
func Statistics(values []float64) Stats {
	switch len(values) {
	case 0:
		return Stats{}
	case 1:
		return Stats{Average: values[0], Min: values[0], Max: values[0]}
	}

	lo, hi, sum := values[0], values[0], 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	first, last := values[0], values[len(values)-1]
	total := last - first
	var pct float64
	if first > 0 {
		pct = total / first * 100
	}

	changes := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		changes[i-1] = values[i] - values[i-1]
	}

	return Stats{
		Average:              round(sum/float64(len(values)), 2),
		Min:                  lo,
		Max:                  hi,
		TotalChange:          total,
		PercentChange:        round(pct, 2),
		Volatility:           round(stdev(changes), 2),
		MonthlyAverageChange: round(total/float64(len(values)), 2),
	}
}

// stdev is the sample standard deviation, 0 for fewer than two values.
func stdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
