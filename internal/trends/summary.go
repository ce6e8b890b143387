package trends

import (
	"fmt"
	"math"
)

// Direction classifies a growth rate.
type Direction string

const (
	Rising  Direction = "rising"
	Falling Direction = "falling"
	Stable  Direction = "stable"
)

// StableBand is the growth rate magnitude below which a series counts as stable.
const StableBand = 0.05

// Classify maps a growth rate to a Direction using StableBand.
func Classify(rate float64) Direction {
	switch {
	case rate > StableBand:
		return Rising
	case rate < -StableBand:
		return Falling
	default:
		return Stable
	}
}

// FormatRate renders a growth rate as a signed percentage with one decimal,
// e.g. 0.123 -> "+12.3%".
func FormatRate(rate float64) string {
	pct := math.Round(rate*1000) / 10
	if pct > 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	if pct == 0 {
		pct = 0 // normalise -0
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// Favourable reports whether a direction is good news for the given series:
// falling expenses and rising incomes are favourable.
func Favourable(d Direction, expense bool) bool {
	if expense {
		return d == Falling
	}
	return d == Rising
}
