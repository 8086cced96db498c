package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvidenceType string

const (
	EvidenceSupporting EvidenceType = "supporting"
	EvidenceRefuting   EvidenceType = "refuting"
	EvidenceNeutral    EvidenceType = "neutral"
	EvidenceClarifying EvidenceType = "clarifying"
)

type PeerReviewStatus string

const (
	PeerReviewPending  PeerReviewStatus = "pending"
	PeerReviewAccepted PeerReviewStatus = "accepted"
	PeerReviewDisputed PeerReviewStatus = "disputed"
	PeerReviewRejected PeerReviewStatus = "rejected"
)

type Evidence struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TargetKind       TargetKind       `gorm:"column:target_kind;not null;index:idx_evidence_target" json:"target_kind"`
	TargetID         uuid.UUID        `gorm:"type:uuid;column:target_id;not null;index:idx_evidence_target" json:"target_id"`
	SourceID         uuid.UUID        `gorm:"type:uuid;column:source_id;not null;index" json:"source_id"`
	Source           *Source          `gorm:"foreignKey:SourceID;references:ID" json:"source,omitempty"`
	SubmittedBy      uuid.UUID        `gorm:"type:uuid;column:submitted_by;not null;index" json:"submitted_by"`
	Type             EvidenceType     `gorm:"column:type;not null" json:"type"`
	Title            string           `gorm:"column:title;not null" json:"title"`
	Content          string           `gorm:"column:content" json:"content"`
	BaseWeight       float64          `gorm:"column:base_weight;not null;default:0.5" json:"base_weight"`
	Confidence       float64          `gorm:"column:confidence;not null;default:0.5" json:"confidence"`
	DecayRate        float64          `gorm:"column:decay_rate;not null;default:0" json:"decay_rate"`
	RelevantDate     *time.Time       `gorm:"column:relevant_date" json:"relevant_date,omitempty"`
	Verified         bool             `gorm:"column:verified;not null;default:false;index" json:"verified"`
	VerifiedBy       *uuid.UUID       `gorm:"type:uuid;column:verified_by" json:"verified_by,omitempty"`
	VerifiedAt       *time.Time       `gorm:"column:verified_at" json:"verified_at,omitempty"`
	PeerReviewStatus PeerReviewStatus `gorm:"column:peer_review_status;not null;default:pending" json:"peer_review_status"`
	Retracted        bool             `gorm:"column:retracted;not null;default:false" json:"retracted"`
	RetractedAt      *time.Time       `gorm:"column:retracted_at" json:"retracted_at,omitempty"`
	CreatedAt        time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (Evidence) TableName() string { return "evidence" }

func (e *Evidence) Target() TargetRef {
	return TargetRef{Kind: e.TargetKind, ID: e.TargetID}
}

func (t EvidenceType) Valid() bool {
	switch t {
	case EvidenceSupporting, EvidenceRefuting, EvidenceNeutral, EvidenceClarifying:
		return true
	}
	return false
}

func (s PeerReviewStatus) Valid() bool {
	switch s {
	case PeerReviewPending, PeerReviewAccepted, PeerReviewDisputed, PeerReviewRejected:
		return true
	}
	return false
}
