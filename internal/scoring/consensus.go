package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/veracity-backend/internal/types"
)

// ConsensusResult carries the aggregated evidence weights for one target.
type ConsensusResult struct {
	Score            float64
	SupportingWeight float64
	RefutingWeight   float64
	EvidenceCount    int
}

// Consensus aggregates effective weights over a target's verified evidence.
// Neutral and clarifying evidence never moves the ratio; retracted evidence
// is skipped entirely. credibilityBySource maps source id to its current
// credibility score; sources without an entry count as neutral.
func Consensus(evidence []*types.Evidence, credibilityBySource map[uuid.UUID]float64, now time.Time) ConsensusResult {
	res := ConsensusResult{Score: NeutralScore}
	for _, ev := range evidence {
		if ev == nil || !ev.Verified || ev.Retracted {
			continue
		}
		cred, ok := credibilityBySource[ev.SourceID]
		if !ok {
			cred = NeutralScore
		}
		w := EffectiveWeight(ev, cred, now)
		switch ev.Type {
		case types.EvidenceSupporting:
			res.SupportingWeight += w
			res.EvidenceCount++
		case types.EvidenceRefuting:
			res.RefutingWeight += w
			res.EvidenceCount++
		case types.EvidenceNeutral, types.EvidenceClarifying:
			res.EvidenceCount++
		}
	}
	total := res.SupportingWeight + res.RefutingWeight
	if total <= 0 {
		// No weighted opinion either way.
		return res
	}
	res.Score = Clamp01(res.SupportingWeight / total)
	return res
}
