package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SourceKind string

const (
	SourceDocument SourceKind = "document"
	SourcePerson   SourceKind = "person"
	SourceDataset  SourceKind = "dataset"
	SourceURL      SourceKind = "url"
)

type Source struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Kind      SourceKind     `gorm:"column:kind;not null;default:document" json:"kind"`
	Reference string         `gorm:"column:reference" json:"reference"`
	CreatedBy uuid.UUID      `gorm:"type:uuid;column:created_by;not null" json:"created_by"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Source) TableName() string { return "source" }

// SourceCredibility is the derived cache for one source. It is always
// recomputed wholesale from the source's current evidence set, never
// patched incrementally.
type SourceCredibility struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID           uuid.UUID `gorm:"type:uuid;column:source_id;not null;uniqueIndex" json:"source_id"`
	CredibilityScore   float64   `gorm:"column:credibility_score;not null;default:0.5" json:"credibility_score"`
	TotalEvidence      int       `gorm:"column:total_evidence;not null;default:0" json:"total_evidence"`
	VerifiedEvidence   int       `gorm:"column:verified_evidence;not null;default:0" json:"verified_evidence"`
	ChallengedEvidence int       `gorm:"column:challenged_evidence;not null;default:0" json:"challenged_evidence"`
	ConsensusAlignment float64   `gorm:"column:consensus_alignment;not null;default:0.5" json:"consensus_alignment"`
	LastCalculatedAt   time.Time `gorm:"column:last_calculated_at;not null" json:"last_calculated_at"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

func (SourceCredibility) TableName() string { return "source_credibility" }
