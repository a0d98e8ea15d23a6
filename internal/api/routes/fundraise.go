package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/linskybing/fundraise-go/internal/api/handlers"
)

// FundraiseRoutes registers the fundraising screen and request endpoints.
func FundraiseRoutes(rg *gin.RouterGroup, h *handlers.FundraiseHandler) {
	screen := rg.Group("/fundraise/screen")
	{
		screen.DELETE("", h.CloseScreen)
		screen.PUT("/form", h.UpdateForm)
		screen.POST("/image", h.PickImage)
		screen.POST("/submit", h.Submit)
	}
	requests := rg.Group("/fundraise/requests")
	{
		requests.GET("", h.ListMyRequests)
		requests.GET("/:id", h.GetRequest)
	}
}
