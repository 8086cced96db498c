package scoring

import "github.com/yungbote/veracity-backend/internal/types"

// Tier score boundaries. Tiers only ever move with score, never directly.
const (
	ContributorMinScore = 100
	TrustedMinScore     = 500
	ExpertMinScore      = 2000
	AuthorityMinScore   = 10000
)

// TierForScore is the step function from accumulated reputation to tier.
func TierForScore(score float64) types.ReputationTier {
	switch {
	case score >= AuthorityMinScore:
		return types.TierAuthority
	case score >= ExpertMinScore:
		return types.TierExpert
	case score >= TrustedMinScore:
		return types.TierTrusted
	case score >= ContributorMinScore:
		return types.TierContributor
	default:
		return types.TierNovice
	}
}

// VoteWeight maps a tier to the weight one vote carries.
func VoteWeight(tier types.ReputationTier) float64 {
	switch tier {
	case types.TierAuthority:
		return 5.0
	case types.TierExpert:
		return 3.0
	case types.TierTrusted:
		return 2.0
	case types.TierContributor:
		return 1.5
	default:
		return 1.0
	}
}
