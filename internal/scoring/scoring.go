// Package scoring holds the pure veracity math: temporal decay, effective
// evidence weights, consensus ratios, challenge impact, source credibility,
// and reputation tiers. Everything here is deterministic and side-effect
// free; callers pass "now" explicitly so results are reproducible.
package scoring

const (
	// NeutralScore is returned when a target has no usable evidence.
	NeutralScore = 0.5

	// HistoryThreshold is the minimum |delta| that counts as a material
	// score change and earns an audit-history entry.
	HistoryThreshold = 0.01

	// OpenChallengePenalty is subtracted per open challenge.
	OpenChallengePenalty = 0.05

	// MaxChallengePenalty caps the accumulated open-challenge penalty so
	// spam challenges cannot zero out a score.
	MaxChallengePenalty = 0.5

	// Peer-review multipliers applied to an evidence record's weight.
	PeerReviewAcceptedMultiplier = 1.2
	PeerReviewPendingMultiplier  = 1.0
	PeerReviewDisputedMultiplier = 0.8
	PeerReviewRejectedMultiplier = 0.5

	// Source credibility component weights (sum to 1.0).
	WeightVerifiedRatio      = 0.4
	WeightUnchallengedRatio  = 0.3
	WeightConsensusAlignment = 0.3

	// EmptySourceVerifiedRatio is the verified-ratio floor for a source
	// with no evidence yet.
	EmptySourceVerifiedRatio = 0.2

	// NeutralConsensusAlignment is the placeholder alignment signal until
	// a real source-vs-consensus comparison exists.
	NeutralConsensusAlignment = 0.5
)

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
