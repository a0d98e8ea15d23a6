package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/linskybing/fundraise-go/internal/application"
	"github.com/linskybing/fundraise-go/internal/picker"
	"github.com/linskybing/fundraise-go/internal/session"
)

type Handlers struct {
	Fundraise *FundraiseHandler
	Router    *gin.Engine
}

func New(svc *application.Services, stage *picker.Stage, router *gin.Engine, allowedOrigins []string) *Handlers {
	return &Handlers{
		Fundraise: NewFundraiseHandler(svc.Fundraise, svc.Screens, stage, session.ContextResolver{}, allowedOrigins),
		Router:    router,
	}
}
