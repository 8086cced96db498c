package types

import (
	"time"

	"github.com/google/uuid"
)

// CalculationMethod tags how a cached score was produced.
type CalculationMethod string

const (
	CalcAxiomatic        CalculationMethod = "axiomatic"
	CalcWeightedEvidence CalculationMethod = "weighted_evidence"
)

type ChangeReason string

const (
	ReasonNewEvidence              ChangeReason = "new_evidence"
	ReasonEvidenceRemoved          ChangeReason = "evidence_removed"
	ReasonChallengeCreated         ChangeReason = "challenge_created"
	ReasonChallengeResolved        ChangeReason = "challenge_resolved"
	ReasonSourceCredibilityUpdated ChangeReason = "source_credibility_updated"
	ReasonTemporalDecay            ChangeReason = "temporal_decay"
	ReasonManualRecalculation      ChangeReason = "manual_recalculation"
	ReasonScheduledRecalculation   ChangeReason = "scheduled_recalculation"
)

// VeracityScore is the single live cached score per target. Only the
// veracity service writes it, always as a whole-row upsert.
type VeracityScore struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TargetKind          TargetKind        `gorm:"column:target_kind;not null;index:idx_veracity_target,unique" json:"target_kind"`
	TargetID            uuid.UUID         `gorm:"type:uuid;column:target_id;not null;index:idx_veracity_target,unique" json:"target_id"`
	Score               float64           `gorm:"column:score;not null;default:0.5" json:"score"`
	ConfidenceLow       *float64          `gorm:"column:confidence_low" json:"confidence_low,omitempty"`
	ConfidenceHigh      *float64          `gorm:"column:confidence_high" json:"confidence_high,omitempty"`
	ConsensusScore      float64           `gorm:"column:consensus_score;not null;default:0.5" json:"consensus_score"`
	EvidenceCount       int               `gorm:"column:evidence_count;not null;default:0" json:"evidence_count"`
	ChallengeCount      int               `gorm:"column:challenge_count;not null;default:0" json:"challenge_count"`
	OpenChallengeCount  int               `gorm:"column:open_challenge_count;not null;default:0" json:"open_challenge_count"`
	ChallengeImpact     float64           `gorm:"column:challenge_impact;not null;default:0" json:"challenge_impact"`
	TemporalDecayFactor float64           `gorm:"column:temporal_decay_factor;not null;default:1" json:"temporal_decay_factor"`
	CalculationMethod   CalculationMethod `gorm:"column:calculation_method;not null;default:weighted_evidence" json:"calculation_method"`
	CalculatedAt        time.Time         `gorm:"column:calculated_at;not null" json:"calculated_at"`
	CreatedAt           time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null" json:"updated_at"`
}

func (VeracityScore) TableName() string { return "veracity_score" }

func (v *VeracityScore) Target() TargetRef {
	return TargetRef{Kind: v.TargetKind, ID: v.TargetID}
}

// VeracityScoreHistory is append-only. Rows are written only for material
// changes (|delta| above the history threshold) and are never updated.
type VeracityScoreHistory struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TargetKind      TargetKind   `gorm:"column:target_kind;not null;index:idx_history_target" json:"target_kind"`
	TargetID        uuid.UUID    `gorm:"type:uuid;column:target_id;not null;index:idx_history_target" json:"target_id"`
	OldScore        float64      `gorm:"column:old_score;not null" json:"old_score"`
	NewScore        float64      `gorm:"column:new_score;not null" json:"new_score"`
	Delta           float64      `gorm:"column:delta;not null" json:"delta"`
	ChangeReason    ChangeReason `gorm:"column:change_reason;not null" json:"change_reason"`
	TriggeredByKind string       `gorm:"column:triggered_by_kind" json:"triggered_by_kind"`
	TriggeredByID   *uuid.UUID   `gorm:"type:uuid;column:triggered_by_id" json:"triggered_by_id,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;index" json:"created_at"`
}

func (VeracityScoreHistory) TableName() string { return "veracity_score_history" }
