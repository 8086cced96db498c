package scoring

// CredibilityInputs are the counters a source's credibility derives from.
// They always describe the source's full current evidence set.
type CredibilityInputs struct {
	TotalEvidence      int
	VerifiedEvidence   int
	ChallengedEvidence int
	ConsensusAlignment float64
}

// Credibility scores a source from its track record:
//
//	0.4×verified_ratio + 0.3×(1 − challenge_ratio) + 0.3×consensus_alignment
//
// A source with no evidence gets the verified-ratio floor instead of zero,
// so brand-new sources start weak but not worthless.
func Credibility(in CredibilityInputs) float64 {
	verifiedRatio := EmptySourceVerifiedRatio
	challengeRatio := 0.0
	if in.TotalEvidence > 0 {
		verifiedRatio = float64(in.VerifiedEvidence) / float64(in.TotalEvidence)
		challengeRatio = float64(in.ChallengedEvidence) / float64(in.TotalEvidence)
	}
	score := WeightVerifiedRatio*verifiedRatio +
		WeightUnchallengedRatio*(1-Clamp01(challengeRatio)) +
		WeightConsensusAlignment*Clamp01(in.ConsensusAlignment)
	return Clamp01(score)
}
