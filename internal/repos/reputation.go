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

type UserReputationRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserReputation, error)
	// GetOrCreateForUpdate returns the user's reputation row locked for the
	// caller's transaction, creating a novice row on first touch.
	GetOrCreateForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserReputation, error)
	Save(ctx context.Context, tx *gorm.DB, rep *types.UserReputation) error
}

type userReputationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserReputationRepo(db *gorm.DB, baseLog *logger.Logger) UserReputationRepo {
	return &userReputationRepo{db: db, log: baseLog.With("repo", "UserReputationRepo")}
}

func (r *userReputationRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserReputation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rep types.UserReputation
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *userReputationRepo) GetOrCreateForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserReputation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	fresh := &types.UserReputation{UserID: userID, Tier: types.TierNovice}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}

	var rep types.UserReputation
	if err := lockForUpdate(transaction.WithContext(ctx), "").
		Where("user_id = ?", userID).
		First(&rep).Error; err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *userReputationRepo) Save(ctx context.Context, tx *gorm.DB, rep *types.UserReputation) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(rep).Error
}
