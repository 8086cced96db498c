package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReputationTier string

const (
	TierNovice      ReputationTier = "novice"
	TierContributor ReputationTier = "contributor"
	TierTrusted     ReputationTier = "trusted"
	TierExpert      ReputationTier = "expert"
	TierAuthority   ReputationTier = "authority"
)

type UserReputation struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID      `gorm:"type:uuid;column:user_id;not null;uniqueIndex" json:"user_id"`
	Score               float64        `gorm:"column:score;not null;default:0" json:"score"`
	Tier                ReputationTier `gorm:"column:tier;not null;default:novice" json:"tier"`
	ChallengesSubmitted int            `gorm:"column:challenges_submitted;not null;default:0" json:"challenges_submitted"`
	ChallengesAccepted  int            `gorm:"column:challenges_accepted;not null;default:0" json:"challenges_accepted"`
	ChallengesRejected  int            `gorm:"column:challenges_rejected;not null;default:0" json:"challenges_rejected"`
	AccuracyRate        float64        `gorm:"column:accuracy_rate;not null;default:0" json:"accuracy_rate"`
	VotesCast           int            `gorm:"column:votes_cast;not null;default:0" json:"votes_cast"`
	ChallengesToday     int            `gorm:"column:challenges_today;not null;default:0" json:"challenges_today"`
	ChallengesTodayDate *time.Time     `gorm:"column:challenges_today_date" json:"challenges_today_date,omitempty"`
	Banned              bool           `gorm:"column:banned;not null;default:false" json:"banned"`
	BanReason           string         `gorm:"column:ban_reason" json:"ban_reason"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserReputation) TableName() string { return "user_reputation" }
