package scoring

import (
	"math"
	"time"
)

// TemporalRelevance computes how much an evidence record still matters at
// "now". Evidence with no relevant date or no decay rate does not age.
// Otherwise relevance falls off exponentially with elapsed days.
func TemporalRelevance(relevantDate *time.Time, decayRate float64, now time.Time) float64 {
	if relevantDate == nil || decayRate <= 0 {
		return 1.0
	}
	days := now.Sub(*relevantDate).Hours() / 24
	if days <= 0 {
		return 1.0
	}
	return Clamp01(math.Exp(-decayRate * days))
}
