package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

type ChallengeVoteRepo interface {
	// Upsert writes a voter's vote, replacing any earlier one for the same
	// challenge. One row per (challenge, voter), always.
	Upsert(ctx context.Context, tx *gorm.DB, vote *types.ChallengeVote) error
	GetByChallengeVoter(ctx context.Context, tx *gorm.DB, challengeID, voterID uuid.UUID) (*types.ChallengeVote, error)
	ListByChallenge(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID) ([]*types.ChallengeVote, error)
}

type challengeVoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeVoteRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeVoteRepo {
	return &challengeVoteRepo{db: db, log: baseLog.With("repo", "ChallengeVoteRepo")}
}

func (r *challengeVoteRepo) Upsert(ctx context.Context, tx *gorm.DB, vote *types.ChallengeVote) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "challenge_id"}, {Name: "voter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"choice",
				"weight",
				"confidence",
				"rationale",
				"updated_at",
			}),
		}).
		Create(vote).Error
}

func (r *challengeVoteRepo) GetByChallengeVoter(ctx context.Context, tx *gorm.DB, challengeID, voterID uuid.UUID) (*types.ChallengeVote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var vote types.ChallengeVote
	err := transaction.WithContext(ctx).
		Where("challenge_id = ? AND voter_id = ?", challengeID, voterID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *challengeVoteRepo) ListByChallenge(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID) ([]*types.ChallengeVote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ChallengeVote
	if err := transaction.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
