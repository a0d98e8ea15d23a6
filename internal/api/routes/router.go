package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fundraise-go/docs"
	"github.com/linskybing/fundraise-go/internal/api/handlers"
	"github.com/linskybing/fundraise-go/internal/api/middleware"
	"github.com/linskybing/fundraise-go/internal/metrics"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfo.InstanceName())))

	// The gate view is rendered for anonymous callers too.
	r.GET("/fundraise/screen", middleware.OptionalJWTMiddleware(), h.Fundraise.GetScreen)

	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware(), middleware.RequireSession())
	{
		auth.GET("/ws/fundraise/screen", h.Fundraise.StreamScreen)
		FundraiseRoutes(auth, h.Fundraise)
	}
}
