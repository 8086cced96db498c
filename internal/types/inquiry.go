package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InquiryStatus string

const (
	InquiryDraft    InquiryStatus = "draft"
	InquiryActive   InquiryStatus = "active"
	InquiryResolved InquiryStatus = "resolved"
)

// FormalInquiry is a composite question built on a set of related nodes.
// Its confidence can never exceed the weakest of those nodes.
type FormalInquiry struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Question        string         `gorm:"column:question" json:"question"`
	Status          InquiryStatus  `gorm:"column:status;not null;default:draft" json:"status"`
	RelatedNodeIDs  datatypes.JSON `gorm:"type:jsonb;column:related_node_ids" json:"related_node_ids"`
	ConfidenceScore float64        `gorm:"column:confidence_score;not null;default:0" json:"confidence_score"`
	MaxAllowedScore float64        `gorm:"column:max_allowed_score;not null;default:1" json:"max_allowed_score"`
	OpenedBy        uuid.UUID      `gorm:"type:uuid;column:opened_by;not null" json:"opened_by"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (FormalInquiry) TableName() string { return "formal_inquiry" }

func (f *FormalInquiry) RelatedNodes() ([]uuid.UUID, error) {
	if len(f.RelatedNodeIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(f.RelatedNodeIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (f *FormalInquiry) SetRelatedNodes(ids []uuid.UUID) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	f.RelatedNodeIDs = datatypes.JSON(raw)
	return nil
}
