package scoring

import (
	"math"
	"testing"

	"github.com/yungbote/veracity-backend/internal/types"
)

func TestTallyVotes(t *testing.T) {
	votes := []*types.ChallengeVote{
		{Choice: types.VoteSupport, Weight: 2.0},
		{Choice: types.VoteSupport, Weight: 1.0},
		{Choice: types.VoteReject, Weight: 1.5},
		{Choice: types.VoteAbstain, Weight: 5.0},
		nil,
	}
	b := TallyVotes(votes)
	if b.SupportVotes != 2 || b.RejectVotes != 1 || b.AbstainVotes != 1 {
		t.Fatalf("vote heads = %d/%d/%d, want 2/1/1", b.SupportVotes, b.RejectVotes, b.AbstainVotes)
	}
	if b.SupportWeight != 3.0 || b.RejectWeight != 1.5 {
		t.Fatalf("weights = %v/%v, want 3.0/1.5", b.SupportWeight, b.RejectWeight)
	}
	want := 3.0 / 4.5
	if math.Abs(b.SupportPercentage-want) > 1e-9 {
		t.Fatalf("SupportPercentage=%v, want %v (abstains excluded)", b.SupportPercentage, want)
	}
}

func TestTallyVotesEmpty(t *testing.T) {
	b := TallyVotes(nil)
	if b.SupportPercentage != 0 {
		t.Fatalf("SupportPercentage=%v for no votes, want 0", b.SupportPercentage)
	}
}

func TestResolveOutcome(t *testing.T) {
	cases := []struct {
		name       string
		supportPct float64
		threshold  float64
		maxImpact  float64
		wantType   types.ResolutionType
		wantImpact float64
	}{
		{
			name:       "spec_scenario_accepted",
			supportPct: 0.65, threshold: 0.6, maxImpact: 0.3,
			wantType: types.ResolutionAccepted, wantImpact: -0.195,
		},
		{
			name:       "exactly_at_threshold_accepted",
			supportPct: 0.6, threshold: 0.6, maxImpact: 0.3,
			wantType: types.ResolutionAccepted, wantImpact: -0.18,
		},
		{
			name:       "partial_above_half_threshold",
			supportPct: 0.4, threshold: 0.6, maxImpact: 0.3,
			wantType: types.ResolutionPartiallyAccepted, wantImpact: -0.06,
		},
		{
			name:       "exactly_half_threshold_partial",
			supportPct: 0.3, threshold: 0.6, maxImpact: 0.3,
			wantType: types.ResolutionPartiallyAccepted, wantImpact: -0.045,
		},
		{
			name:       "below_half_threshold_rejected",
			supportPct: 0.2, threshold: 0.6, maxImpact: 0.3,
			wantType: types.ResolutionRejected, wantImpact: 0,
		},
		{
			name:       "no_votes_rejected",
			supportPct: 0, threshold: 0.6, maxImpact: 0.3,
			wantType: types.ResolutionRejected, wantImpact: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveOutcome(tc.supportPct, tc.threshold, tc.maxImpact)
			if got.Type != tc.wantType {
				t.Fatalf("Type=%v, want %v", got.Type, tc.wantType)
			}
			if math.Abs(got.Impact-tc.wantImpact) > 1e-9 {
				t.Fatalf("Impact=%v, want %v", got.Impact, tc.wantImpact)
			}
		})
	}
}
