package repository

import (
	"context"
	"errors"

	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"gorm.io/gorm"
)

type FundRequestRepo interface {
	Create(ctx context.Context, req *fundraise.FundingRequest) error
	FindByID(ctx context.Context, id string) (*fundraise.FundingRequest, error)
	ListByUserID(ctx context.Context, userID string) ([]fundraise.FundingRequest, error)
	WithTx(tx *gorm.DB) FundRequestRepo
}

type DBFundRequestRepo struct {
	db *gorm.DB
}

func NewFundRequestRepo(db *gorm.DB) *DBFundRequestRepo {
	return &DBFundRequestRepo{
		db: db,
	}
}

func (r *DBFundRequestRepo) Create(ctx context.Context, req *fundraise.FundingRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *DBFundRequestRepo) FindByID(ctx context.Context, id string) (*fundraise.FundingRequest, error) {
	var req fundraise.FundingRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fundraise.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *DBFundRequestRepo) ListByUserID(ctx context.Context, userID string) ([]fundraise.FundingRequest, error) {
	var reqs []fundraise.FundingRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&reqs).Error
	return reqs, err
}

func (r *DBFundRequestRepo) WithTx(tx *gorm.DB) FundRequestRepo {
	if tx == nil {
		return r
	}
	return &DBFundRequestRepo{
		db: tx,
	}
}
