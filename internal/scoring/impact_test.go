package scoring

import (
	"math"
	"testing"
)

func TestChallengeImpact(t *testing.T) {
	cases := []struct {
		name string
		open int
		want float64
	}{
		{name: "none", open: 0, want: 0},
		{name: "negative_count_treated_as_none", open: -3, want: 0},
		{name: "one", open: 1, want: -0.05},
		{name: "two", open: 2, want: -0.10},
		{name: "at_cap", open: 10, want: -0.5},
		{name: "saturates_past_cap", open: 1000, want: -0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ChallengeImpact(tc.open)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ChallengeImpact(%d)=%v, want %v", tc.open, got, tc.want)
			}
			if got > 0 || got < -MaxChallengePenalty {
				t.Fatalf("ChallengeImpact(%d)=%v out of [-0.5,0]", tc.open, got)
			}
		})
	}

	// Monotonic non-increasing in the open count.
	prev := 0.0
	for n := 0; n <= 20; n++ {
		v := ChallengeImpact(n)
		if v > prev {
			t.Fatalf("ChallengeImpact not monotonic at %d: %v > %v", n, v, prev)
		}
		prev = v
	}
}

func TestCombinedChallengeImpact(t *testing.T) {
	cases := []struct {
		name        string
		open        int
		resolvedSum float64
		want        float64
	}{
		{name: "open_only", open: 2, resolvedSum: 0, want: -0.10},
		{name: "resolved_only", open: 0, resolvedSum: -0.195, want: -0.195},
		{name: "both", open: 1, resolvedSum: -0.3, want: -0.35},
		{name: "positive_sum_ignored", open: 1, resolvedSum: 0.4, want: -0.05},
		{name: "floored_at_minus_one", open: 10, resolvedSum: -3, want: -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CombinedChallengeImpact(tc.open, tc.resolvedSum)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("CombinedChallengeImpact=%v, want %v", got, tc.want)
			}
			if got > 0 || got < -1 {
				t.Fatalf("CombinedChallengeImpact=%v out of [-1,0]", got)
			}
		})
	}
}

func TestVeracity(t *testing.T) {
	cases := []struct {
		name      string
		consensus float64
		impact    float64
		want      float64
	}{
		{name: "spec_scenario_no_challenges", consensus: 1.4 / 1.8, impact: 0, want: 1.4 / 1.8},
		{name: "spec_scenario_two_open_challenges", consensus: 1.4 / 1.8, impact: -0.10, want: 1.4/1.8 - 0.10},
		{name: "clamped_low", consensus: 0.2, impact: -0.5, want: 0},
		{name: "neutral_no_evidence", consensus: 0.5, impact: 0, want: 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Veracity(tc.consensus, tc.impact)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Veracity=%v, want %v", got, tc.want)
			}
			if got < 0 || got > 1 {
				t.Fatalf("Veracity=%v out of [0,1]", got)
			}
		})
	}
}
