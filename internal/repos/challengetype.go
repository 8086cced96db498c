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

type ChallengeTypeRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChallengeType, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.ChallengeType, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.ChallengeType, error)
	UpsertByCode(ctx context.Context, tx *gorm.DB, ct *types.ChallengeType) error
}

type challengeTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeTypeRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeTypeRepo {
	return &challengeTypeRepo{db: db, log: baseLog.With("repo", "ChallengeTypeRepo")}
}

func (r *challengeTypeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChallengeType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ct types.ChallengeType
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&ct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *challengeTypeRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.ChallengeType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ct types.ChallengeType
	err := transaction.WithContext(ctx).
		Where("code = ?", code).
		First(&ct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *challengeTypeRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.ChallengeType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ChallengeType
	if err := transaction.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertByCode seeds or refreshes one catalog entry, keyed by code.
func (r *challengeTypeRepo) UpsertByCode(ctx context.Context, tx *gorm.DB, ct *types.ChallengeType) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name",
				"description",
				"min_reputation",
				"requires_evidence",
				"max_veracity_impact",
				"min_votes_required",
				"acceptance_threshold",
				"voting_duration_hours",
				"active",
				"updated_at",
			}),
		}).
		Create(ct).Error
}
