package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

type VeracityScoreRepo interface {
	GetByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) (*types.VeracityScore, error)
	// Upsert replaces the single live score row for a target wholesale.
	// The compute-then-swap discipline lives in the service; the repo only
	// guarantees the swap is one statement.
	Upsert(ctx context.Context, tx *gorm.DB, score *types.VeracityScore) error
}

type veracityScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVeracityScoreRepo(db *gorm.DB, baseLog *logger.Logger) VeracityScoreRepo {
	return &veracityScoreRepo{db: db, log: baseLog.With("repo", "VeracityScoreRepo")}
}

func (r *veracityScoreRepo) GetByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) (*types.VeracityScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var score types.VeracityScore
	err := transaction.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", ref.Kind, ref.ID).
		First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *veracityScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, score *types.VeracityScore) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "target_kind"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score",
				"confidence_low",
				"confidence_high",
				"consensus_score",
				"evidence_count",
				"challenge_count",
				"open_challenge_count",
				"challenge_impact",
				"temporal_decay_factor",
				"calculation_method",
				"calculated_at",
				"updated_at",
			}),
		}).
		Create(score).Error
}
