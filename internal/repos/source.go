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

type SourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sources []*types.Source) ([]*types.Source, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Source, error)
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{db: db, log: baseLog.With("repo", "SourceRepo")}
}

func (r *sourceRepo) Create(ctx context.Context, tx *gorm.DB, sources []*types.Source) ([]*types.Source, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(sources) == 0 {
		return []*types.Source{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *sourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Source, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var src types.Source
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

type SourceCredibilityRepo interface {
	GetBySourceID(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) (*types.SourceCredibility, error)
	Upsert(ctx context.Context, tx *gorm.DB, cred *types.SourceCredibility) error
}

type sourceCredibilityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceCredibilityRepo(db *gorm.DB, baseLog *logger.Logger) SourceCredibilityRepo {
	return &sourceCredibilityRepo{db: db, log: baseLog.With("repo", "SourceCredibilityRepo")}
}

func (r *sourceCredibilityRepo) GetBySourceID(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) (*types.SourceCredibility, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var cred types.SourceCredibility
	err := transaction.WithContext(ctx).
		Where("source_id = ?", sourceID).
		First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// Upsert replaces the single live credibility row for a source wholesale.
func (r *sourceCredibilityRepo) Upsert(ctx context.Context, tx *gorm.DB, cred *types.SourceCredibility) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "source_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"credibility_score",
				"total_evidence",
				"verified_evidence",
				"challenged_evidence",
				"consensus_alignment",
				"last_calculated_at",
				"updated_at",
			}),
		}).
		Create(cred).Error
}
