package repository

import (
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/repository_mock.go -package=mock github.com/linskybing/fundraise-go/internal/repository UserRepo,FundRequestRepo,AuditRepo

type Repos struct {
	User        UserRepo
	FundRequest FundRequestRepo
	Audit       AuditRepo

	db *gorm.DB
}

func NewRepositories(db *gorm.DB) *Repos {
	return &Repos{
		User:        NewUserRepo(db),
		FundRequest: NewFundRequestRepo(db),
		Audit:       NewAuditRepo(db),
		db:          db,
	}
}

func (r *Repos) WithTx(tx *gorm.DB) *Repos {
	return &Repos{
		User:        r.User.WithTx(tx),
		FundRequest: r.FundRequest.WithTx(tx),
		Audit:       r.Audit.WithTx(tx),
		db:          tx,
	}
}

func (r *Repos) ExecTx(fn func(*Repos) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepos := r.WithTx(tx)
		return fn(txRepos)
	})
}
