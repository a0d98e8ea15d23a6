package repository

import (
	"context"

	"github.com/linskybing/fundraise-go/internal/domain/user"
	"gorm.io/gorm"
)

type UserRepo interface {
	// GetProfile returns gorm.ErrRecordNotFound when the user has no profile.
	GetProfile(ctx context.Context, uid string) (*user.Profile, error)
	SaveProfile(ctx context.Context, p *user.Profile) error
	WithTx(tx *gorm.DB) UserRepo
}

type DBUserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *DBUserRepo {
	return &DBUserRepo{
		db: db,
	}
}

func (r *DBUserRepo) GetProfile(ctx context.Context, uid string) (*user.Profile, error) {
	var p user.Profile
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DBUserRepo) SaveProfile(ctx context.Context, p *user.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *DBUserRepo) WithTx(tx *gorm.DB) UserRepo {
	if tx == nil {
		return r
	}
	return &DBUserRepo{
		db: tx,
	}
}
