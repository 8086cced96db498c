package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChallengeStatus string

const (
	ChallengeOpen      ChallengeStatus = "open"
	ChallengeVoting    ChallengeStatus = "voting"
	ChallengeResolved  ChallengeStatus = "resolved"
	ChallengeWithdrawn ChallengeStatus = "withdrawn"
)

// Terminal reports whether no further lifecycle transitions are allowed.
func (s ChallengeStatus) Terminal() bool {
	return s == ChallengeResolved || s == ChallengeWithdrawn
}

type ResolutionType string

const (
	ResolutionAccepted          ResolutionType = "accepted"
	ResolutionPartiallyAccepted ResolutionType = "partially_accepted"
	ResolutionRejected          ResolutionType = "rejected"
)

type VoteChoice string

const (
	VoteSupport VoteChoice = "support"
	VoteReject  VoteChoice = "reject"
	VoteAbstain VoteChoice = "abstain"
)

func (c VoteChoice) Valid() bool {
	switch c {
	case VoteSupport, VoteReject, VoteAbstain:
		return true
	}
	return false
}

// ChallengeType is the adjudication config for one class of dispute.
type ChallengeType struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code                string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name                string         `gorm:"column:name;not null" json:"name"`
	Description         string         `gorm:"column:description" json:"description"`
	MinReputation       float64        `gorm:"column:min_reputation;not null;default:0" json:"min_reputation"`
	RequiresEvidence    bool           `gorm:"column:requires_evidence;not null;default:false" json:"requires_evidence"`
	MaxVeracityImpact   float64        `gorm:"column:max_veracity_impact;not null;default:0.3" json:"max_veracity_impact"`
	MinVotesRequired    int            `gorm:"column:min_votes_required;not null;default:3" json:"min_votes_required"`
	AcceptanceThreshold float64        `gorm:"column:acceptance_threshold;not null;default:0.6" json:"acceptance_threshold"`
	VotingDurationHours int            `gorm:"column:voting_duration_hours;not null;default:72" json:"voting_duration_hours"`
	Active              bool           `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChallengeType) TableName() string { return "challenge_type" }

type Challenge struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TargetKind        TargetKind      `gorm:"column:target_kind;not null;index:idx_challenge_target" json:"target_kind"`
	TargetID          uuid.UUID       `gorm:"type:uuid;column:target_id;not null;index:idx_challenge_target" json:"target_id"`
	ChallengeTypeID   uuid.UUID       `gorm:"type:uuid;column:challenge_type_id;not null;index" json:"challenge_type_id"`
	ChallengeType     *ChallengeType  `gorm:"foreignKey:ChallengeTypeID;references:ID" json:"challenge_type,omitempty"`
	ChallengerID      uuid.UUID       `gorm:"type:uuid;column:challenger_id;not null;index" json:"challenger_id"`
	Status            ChallengeStatus `gorm:"column:status;not null;default:open;index" json:"status"`
	Claim             string          `gorm:"column:claim;not null" json:"claim"`
	EvidenceID        *uuid.UUID      `gorm:"type:uuid;column:evidence_id" json:"evidence_id,omitempty"`
	VotingStartsAt    time.Time       `gorm:"column:voting_starts_at;not null" json:"voting_starts_at"`
	VotingEndsAt      time.Time       `gorm:"column:voting_ends_at;not null;index" json:"voting_ends_at"`
	SupportVotes      int             `gorm:"column:support_votes;not null;default:0" json:"support_votes"`
	RejectVotes       int             `gorm:"column:reject_votes;not null;default:0" json:"reject_votes"`
	AbstainVotes      int             `gorm:"column:abstain_votes;not null;default:0" json:"abstain_votes"`
	SupportWeight     float64         `gorm:"column:support_weight;not null;default:0" json:"support_weight"`
	RejectWeight      float64         `gorm:"column:reject_weight;not null;default:0" json:"reject_weight"`
	SupportPercentage float64         `gorm:"column:support_percentage;not null;default:0" json:"support_percentage"`
	ResolvedAt        *time.Time      `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (Challenge) TableName() string { return "challenge" }

func (c *Challenge) Target() TargetRef {
	return TargetRef{Kind: c.TargetKind, ID: c.TargetID}
}

// ChallengeVote is one user's vote on one challenge. The composite unique
// index makes "one vote per user per challenge" a storage invariant; a
// repeated cast updates the row in place.
type ChallengeVote struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID uuid.UUID      `gorm:"type:uuid;column:challenge_id;not null;index:idx_vote_challenge_voter,unique" json:"challenge_id"`
	VoterID     uuid.UUID      `gorm:"type:uuid;column:voter_id;not null;index:idx_vote_challenge_voter,unique" json:"voter_id"`
	Choice      VoteChoice     `gorm:"column:choice;not null" json:"choice"`
	Weight      float64        `gorm:"column:weight;not null;default:1" json:"weight"`
	Confidence  *float64       `gorm:"column:confidence" json:"confidence,omitempty"`
	Rationale   string         `gorm:"column:rationale" json:"rationale"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChallengeVote) TableName() string { return "challenge_vote" }

type ChallengeResolution struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID    uuid.UUID      `gorm:"type:uuid;column:challenge_id;not null;uniqueIndex" json:"challenge_id"`
	ResolutionType ResolutionType `gorm:"column:resolution_type;not null" json:"resolution_type"`
	VeracityImpact float64        `gorm:"column:veracity_impact;not null;default:0" json:"veracity_impact"`
	VoteBreakdown  datatypes.JSON `gorm:"type:jsonb;column:vote_breakdown" json:"vote_breakdown"`
	ResolvedBy     uuid.UUID      `gorm:"type:uuid;column:resolved_by;not null" json:"resolved_by"`
	Notes          string         `gorm:"column:notes" json:"notes"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (ChallengeResolution) TableName() string { return "challenge_resolution" }

// VoteBreakdown is the audit payload stored on a resolution.
type VoteBreakdown struct {
	SupportVotes      int     `json:"support_votes"`
	RejectVotes       int     `json:"reject_votes"`
	AbstainVotes      int     `json:"abstain_votes"`
	SupportWeight     float64 `json:"support_weight"`
	RejectWeight      float64 `json:"reject_weight"`
	SupportPercentage float64 `json:"support_percentage"`
}
