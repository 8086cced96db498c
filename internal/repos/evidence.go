package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

type EvidenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, evidence []*types.Evidence) ([]*types.Evidence, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Evidence, error)
	GetByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) ([]*types.Evidence, error)
	GetBySource(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]*types.Evidence, error)
	ListTargetsBySource(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]types.TargetRef, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type evidenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvidenceRepo(db *gorm.DB, baseLog *logger.Logger) EvidenceRepo {
	return &evidenceRepo{db: db, log: baseLog.With("repo", "EvidenceRepo")}
}

func (r *evidenceRepo) Create(ctx context.Context, tx *gorm.DB, evidence []*types.Evidence) ([]*types.Evidence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(evidence) == 0 {
		return []*types.Evidence{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&evidence).Error; err != nil {
		return nil, err
	}
	return evidence, nil
}

func (r *evidenceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Evidence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ev types.Evidence
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evidenceRepo) GetByTarget(ctx context.Context, tx *gorm.DB, ref types.TargetRef) ([]*types.Evidence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Evidence
	if err := transaction.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", ref.Kind, ref.ID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *evidenceRepo) GetBySource(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]*types.Evidence, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Evidence
	if err := transaction.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *evidenceRepo) ListTargetsBySource(ctx context.Context, tx *gorm.DB, sourceID uuid.UUID) ([]types.TargetRef, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		TargetKind types.TargetKind
		TargetID   uuid.UUID
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Evidence{}).
		Distinct("target_kind", "target_id").
		Where("source_id = ?", sourceID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	refs := make([]types.TargetRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, types.TargetRef{Kind: row.TargetKind, ID: row.TargetID})
	}
	return refs, nil
}

func (r *evidenceRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Evidence{}).
		Where("id = ?", id).
		Updates(updates).Error
}
