package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

type VeracityHistoryRepo interface {
	// Create appends audit entries. History rows are never updated or
	// deleted anywhere in the codebase.
	Create(ctx context.Context, tx *gorm.DB, entries []*types.VeracityScoreHistory) ([]*types.VeracityScoreHistory, error)
	ListByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef, limit int) ([]*types.VeracityScoreHistory, error)
}

type veracityHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVeracityHistoryRepo(db *gorm.DB, baseLog *logger.Logger) VeracityHistoryRepo {
	return &veracityHistoryRepo{db: db, log: baseLog.With("repo", "VeracityHistoryRepo")}
}

func (r *veracityHistoryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.VeracityScoreHistory) ([]*types.VeracityScoreHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.VeracityScoreHistory{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *veracityHistoryRepo) ListByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef, limit int) ([]*types.VeracityScoreHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []*types.VeracityScoreHistory
	if err := transaction.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", ref.Kind, ref.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
