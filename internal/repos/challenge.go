package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

type ChallengeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, challenges []*types.Challenge) ([]*types.Challenge, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Challenge, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Challenge, error)
	ListOpenByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) ([]*types.Challenge, error)
	CountByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) (total int, open int, err error)
	ListExpired(ctx context.Context, tx *gorm.DB, asOf time.Time, limit int) ([]*types.Challenge, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type challengeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeRepo {
	return &challengeRepo{db: db, log: baseLog.With("repo", "ChallengeRepo")}
}

func (r *challengeRepo) Create(ctx context.Context, tx *gorm.DB, challenges []*types.Challenge) ([]*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(challenges) == 0 {
		return []*types.Challenge{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *challengeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ch types.Challenge
	err := transaction.WithContext(ctx).
		Preload("ChallengeType").
		Where("id = ?", id).
		First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// GetByIDForUpdate locks the challenge row for the duration of the caller's
// transaction so concurrent resolutions serialize on it.
func (r *challengeRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ch types.Challenge
	err := lockForUpdate(transaction.WithContext(ctx), "").
		Where("id = ?", id).
		First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *challengeRepo) ListOpenByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) ([]*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Challenge
	if err := transaction.WithContext(ctx).
		Where("target_kind = ? AND target_id = ? AND status IN ?",
			ref.Kind, ref.ID, []types.ChallengeStatus{types.ChallengeOpen, types.ChallengeVoting}).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *challengeRepo) CountByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) (int, int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var total, open int64
	base := transaction.WithContext(ctx).
		Model(&types.Challenge{}).
		Where("target_kind = ? AND target_id = ?", ref.Kind, ref.ID)
	if err := base.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Challenge{}).
		Where("target_kind = ? AND target_id = ? AND status IN ?",
			ref.Kind, ref.ID, []types.ChallengeStatus{types.ChallengeOpen, types.ChallengeVoting}).
		Count(&open).Error; err != nil {
		return 0, 0, err
	}
	return int(total), int(open), nil
}

// ListExpired returns still-active challenges whose voting window has ended,
// claiming them with SKIP LOCKED so concurrent sweeps never double-resolve.
func (r *challengeRepo) ListExpired(ctx context.Context, tx *gorm.DB, asOf time.Time, limit int) ([]*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.Challenge
	if err := lockForUpdate(transaction.WithContext(ctx), "SKIP LOCKED").
		Where("status IN ? AND voting_ends_at < ?",
			[]types.ChallengeStatus{types.ChallengeOpen, types.ChallengeVoting}, asOf).
		Order("voting_ends_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *challengeRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Challenge{}).
		Where("id = ?", id).
		Updates(updates).Error
}
