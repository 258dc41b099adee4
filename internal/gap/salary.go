package gap

import "math"

const (
	minSalaryImpact = 1.5
	maxSalaryImpact = 15.0
	minGainFactor   = 0.3
)

// SalaryImpact estimates, in lakhs, the pay increase from raising a skill
// from current to target proficiency. Demand drives the magnitude and is
// clamped to [30,100]; the proficiency gain multiplier never drops below 0.3.
// The result is clamped to [1.5,15] and rounded to one decimal.
func SalaryImpact(demand, current, target float64) float64 {
	d := math.Max(30, math.Min(100, demand))
	gain := math.Max(minGainFactor, (target-current)/5)
	impact := d * 1000 * gain / 100000
	impact = math.Max(minSalaryImpact, math.Min(maxSalaryImpact, impact))
	return math.Round(impact*10) / 10
}

// LearningHours estimates study time from demand: twice the demand score,
// bounded to [50,300].
func LearningHours(demand float64) int {
	return int(math.Max(50, math.Min(300, demand*2)))
}
