package scoring

// ChallengeImpact models unresolved doubt: each open challenge subtracts a
// fixed penalty, saturating so the impact stays within [-MaxChallengePenalty, 0].
func ChallengeImpact(openChallenges int) float64 {
	if openChallenges <= 0 {
		return 0
	}
	impact := -OpenChallengePenalty * float64(openChallenges)
	if impact < -MaxChallengePenalty {
		return -MaxChallengePenalty
	}
	return impact
}

// CombinedChallengeImpact folds the open-challenge penalty together with the
// accumulated impact of resolved-against challenges, bounded to [-1, 0] so a
// target's total challenge burden can never flip the score's sign range.
func CombinedChallengeImpact(openChallenges int, resolvedImpactSum float64) float64 {
	impact := ChallengeImpact(openChallenges)
	if resolvedImpactSum < 0 {
		impact += resolvedImpactSum
	}
	if impact < -1 {
		return -1
	}
	if impact > 0 {
		return 0
	}
	return impact
}

// Veracity combines consensus and challenge impact into the final clamped
// score. Level-0 short-circuiting happens above this, in the service.
func Veracity(consensus, challengeImpact float64) float64 {
	return Clamp01(consensus + challengeImpact)
}
