package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

type ChallengeResolutionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, resolution *types.ChallengeResolution) error
	GetByChallengeID(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID) (*types.ChallengeResolution, error)
	// SumImpactByTarget totals the recorded veracity impact of every
	// resolved challenge against a target. Always non-positive.
	SumImpactByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) (float64, error)
}

type challengeResolutionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeResolutionRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeResolutionRepo {
	return &challengeResolutionRepo{db: db, log: baseLog.With("repo", "ChallengeResolutionRepo")}
}

func (r *challengeResolutionRepo) Create(ctx context.Context, tx *gorm.DB, resolution *types.ChallengeResolution) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(resolution).Error
}

func (r *challengeResolutionRepo) GetByChallengeID(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID) (*types.ChallengeResolution, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var res types.ChallengeResolution
	err := transaction.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *challengeResolutionRepo) SumImpactByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var sum *float64
	err := transaction.WithContext(ctx).
		Model(&types.ChallengeResolution{}).
		Joins("JOIN challenge ON challenge.id = challenge_resolution.challenge_id").
		Where("challenge.target_kind = ? AND challenge.target_id = ?", ref.Kind, ref.ID).
		Select("SUM(challenge_resolution.veracity_impact)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
