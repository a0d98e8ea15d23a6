package application

import (
	"time"

	"github.com/linskybing/fundraise-go/internal/media"
	"github.com/linskybing/fundraise-go/internal/repository"
)

type Services struct {
	Fundraise *FundraiseService
	Screens   *ScreenRegistry
}

type Options struct {
	KYCRoute   string
	IdleTTL    time.Duration
	DiscardImg func(uri string)
}

func New(repos *repository.Repos, uploader media.Uploader, opts Options) *Services {
	svc := NewFundraiseService(repos, uploader)
	return &Services{
		Fundraise: svc,
		Screens: NewScreenRegistry(ScreenDeps{
			Profiles: repos.User,
			Service:  svc,
			KYCRoute: opts.KYCRoute,
			Discard:  opts.DiscardImg,
		}, opts.IdleTTL),
	}
}
