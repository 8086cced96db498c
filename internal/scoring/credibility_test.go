package scoring

import (
	"math"
	"testing"
)

func TestCredibility(t *testing.T) {
	cases := []struct {
		name string
		in   CredibilityInputs
		want float64
	}{
		{
			name: "empty_source_gets_floor",
			in:   CredibilityInputs{ConsensusAlignment: NeutralConsensusAlignment},
			// 0.4*0.2 + 0.3*1 + 0.3*0.5
			want: 0.53,
		},
		{
			name: "all_verified_none_challenged",
			in: CredibilityInputs{
				TotalEvidence: 10, VerifiedEvidence: 10,
				ConsensusAlignment: NeutralConsensusAlignment,
			},
			// 0.4*1 + 0.3*1 + 0.3*0.5
			want: 0.85,
		},
		{
			name: "half_verified_half_challenged",
			in: CredibilityInputs{
				TotalEvidence: 10, VerifiedEvidence: 5, ChallengedEvidence: 5,
				ConsensusAlignment: NeutralConsensusAlignment,
			},
			// 0.4*0.5 + 0.3*0.5 + 0.3*0.5
			want: 0.5,
		},
		{
			name: "fully_challenged_nothing_verified",
			in: CredibilityInputs{
				TotalEvidence: 4, ChallengedEvidence: 4,
				ConsensusAlignment: NeutralConsensusAlignment,
			},
			// 0.4*0 + 0.3*0 + 0.3*0.5
			want: 0.15,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Credibility(tc.in)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Credibility=%v, want %v", got, tc.want)
			}
			if got < 0 || got > 1 {
				t.Fatalf("Credibility=%v out of [0,1]", got)
			}
		})
	}
}
