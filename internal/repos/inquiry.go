package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/types"
)

type FormalInquiryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, inquiries []*types.FormalInquiry) ([]*types.FormalInquiry, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormalInquiry, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type formalInquiryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFormalInquiryRepo(db *gorm.DB, baseLog *logger.Logger) FormalInquiryRepo {
	return &formalInquiryRepo{db: db, log: baseLog.With("repo", "FormalInquiryRepo")}
}

func (r *formalInquiryRepo) Create(ctx context.Context, tx *gorm.DB, inquiries []*types.FormalInquiry) ([]*types.FormalInquiry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(inquiries) == 0 {
		return []*types.FormalInquiry{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&inquiries).Error; err != nil {
		return nil, err
	}
	return inquiries, nil
}

func (r *formalInquiryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormalInquiry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var inq types.FormalInquiry
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&inq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inq, nil
}

func (r *formalInquiryRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.FormalInquiry{}).
		Where("id = ?", id).
		Updates(updates).Error
}
