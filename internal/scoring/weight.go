package scoring

import (
	"time"

	"github.com/yungbote/veracity-backend/internal/types"
)

// EffectiveWeight computes the weight one evidence record contributes right
// now. Temporal relevance is recomputed on every read rather than stored,
// since "now" keeps moving.
func EffectiveWeight(ev *types.Evidence, sourceCredibility float64, now time.Time) float64 {
	w := Clamp01(ev.BaseWeight) *
		Clamp01(ev.Confidence) *
		TemporalRelevance(ev.RelevantDate, ev.DecayRate, now) *
		Clamp01(sourceCredibility) *
		PeerReviewMultiplier(ev.PeerReviewStatus)
	return Clamp01(w)
}

func PeerReviewMultiplier(status types.PeerReviewStatus) float64 {
	switch status {
	case types.PeerReviewAccepted:
		return PeerReviewAcceptedMultiplier
	case types.PeerReviewDisputed:
		return PeerReviewDisputedMultiplier
	case types.PeerReviewRejected:
		return PeerReviewRejectedMultiplier
	default:
		return PeerReviewPendingMultiplier
	}
}
