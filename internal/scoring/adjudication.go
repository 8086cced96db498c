package scoring

import "github.com/yungbote/veracity-backend/internal/types"

// TallyVotes re-aggregates a challenge's full vote set. Tallies are always
// rebuilt from scratch, never incremented, so concurrent vote writes cannot
// drift the counters. Abstains count heads but carry no weight in the ratio.
func TallyVotes(votes []*types.ChallengeVote) types.VoteBreakdown {
	var b types.VoteBreakdown
	for _, v := range votes {
		if v == nil {
			continue
		}
		switch v.Choice {
		case types.VoteSupport:
			b.SupportVotes++
			b.SupportWeight += v.Weight
		case types.VoteReject:
			b.RejectVotes++
			b.RejectWeight += v.Weight
		case types.VoteAbstain:
			b.AbstainVotes++
		}
	}
	total := b.SupportWeight + b.RejectWeight
	if total > 0 {
		b.SupportPercentage = b.SupportWeight / total
	}
	return b
}

// ResolutionOutcome is the verdict and score impact a resolution produces.
type ResolutionOutcome struct {
	Type   types.ResolutionType
	Impact float64
}

// ResolveOutcome decides a challenge from its final support percentage.
// Full acceptance scales the type's max impact by the support percentage;
// partial acceptance (at least half the threshold) additionally halves it;
// anything below that is rejected with no impact.
func ResolveOutcome(supportPercentage, acceptanceThreshold, maxImpact float64) ResolutionOutcome {
	switch {
	case supportPercentage >= acceptanceThreshold:
		return ResolutionOutcome{
			Type:   types.ResolutionAccepted,
			Impact: -maxImpact * supportPercentage,
		}
	case supportPercentage >= 0.5*acceptanceThreshold:
		return ResolutionOutcome{
			Type:   types.ResolutionPartiallyAccepted,
			Impact: -maxImpact * supportPercentage * 0.5,
		}
	default:
		return ResolutionOutcome{Type: types.ResolutionRejected, Impact: 0}
	}
}
