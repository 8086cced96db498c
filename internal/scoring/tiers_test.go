package scoring

import (
	"testing"

	"github.com/yungbote/veracity-backend/internal/types"
)

func TestTierForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  types.ReputationTier
	}{
		{0, types.TierNovice},
		{99, types.TierNovice},
		{100, types.TierContributor},
		{499, types.TierContributor},
		{500, types.TierTrusted},
		{1999, types.TierTrusted},
		{2000, types.TierExpert},
		{9999, types.TierExpert},
		{10000, types.TierAuthority},
		{1e9, types.TierAuthority},
	}

	for _, tc := range cases {
		if got := TierForScore(tc.score); got != tc.want {
			t.Fatalf("TierForScore(%v)=%v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestVoteWeight(t *testing.T) {
	cases := []struct {
		tier types.ReputationTier
		want float64
	}{
		{types.TierNovice, 1.0},
		{types.TierContributor, 1.5},
		{types.TierTrusted, 2.0},
		{types.TierExpert, 3.0},
		{types.TierAuthority, 5.0},
		{"unknown", 1.0},
	}

	for _, tc := range cases {
		if got := VoteWeight(tc.tier); got != tc.want {
			t.Fatalf("VoteWeight(%v)=%v, want %v", tc.tier, got, tc.want)
		}
	}
}
