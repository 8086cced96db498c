package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/yungbote/veracity-backend/internal/types"
)

func TestEffectiveWeight(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		ev          types.Evidence
		credibility float64
		want        float64
	}{
		{
			name: "plain_pending",
			ev: types.Evidence{
				BaseWeight: 0.8, Confidence: 0.5,
				PeerReviewStatus: types.PeerReviewPending,
			},
			credibility: 1.0,
			want:        0.4,
		},
		{
			name: "accepted_boost",
			ev: types.Evidence{
				BaseWeight: 0.5, Confidence: 1.0,
				PeerReviewStatus: types.PeerReviewAccepted,
			},
			credibility: 1.0,
			want:        0.6,
		},
		{
			name: "rejected_halves",
			ev: types.Evidence{
				BaseWeight: 1.0, Confidence: 1.0,
				PeerReviewStatus: types.PeerReviewRejected,
			},
			credibility: 1.0,
			want:        0.5,
		},
		{
			name: "zero_confidence_zeroes",
			ev: types.Evidence{
				BaseWeight: 1.0, Confidence: 0,
				PeerReviewStatus: types.PeerReviewAccepted,
			},
			credibility: 1.0,
			want:        0,
		},
		{
			name: "zero_credibility_zeroes",
			ev: types.Evidence{
				BaseWeight: 1.0, Confidence: 1.0,
				PeerReviewStatus: types.PeerReviewAccepted,
			},
			credibility: 0,
			want:        0,
		},
		{
			name: "accepted_boost_clamped_to_one",
			ev: types.Evidence{
				BaseWeight: 1.0, Confidence: 1.0,
				PeerReviewStatus: types.PeerReviewAccepted,
			},
			credibility: 1.0,
			want:        1.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectiveWeight(&tc.ev, tc.credibility, now)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("EffectiveWeight=%v, want %v", got, tc.want)
			}
			if got < 0 || got > 1 {
				t.Fatalf("EffectiveWeight=%v out of [0,1]", got)
			}
		})
	}
}

func TestEffectiveWeightExtremeInputsStayBounded(t *testing.T) {
	now := time.Now()
	old := now.AddDate(-50, 0, 0)
	ev := types.Evidence{
		BaseWeight: 5, Confidence: 9, DecayRate: 1e9, RelevantDate: &old,
		PeerReviewStatus: types.PeerReviewAccepted,
	}
	got := EffectiveWeight(&ev, 3.0, now)
	if got < 0 || got > 1 {
		t.Fatalf("EffectiveWeight=%v out of [0,1] for extreme inputs", got)
	}
}
