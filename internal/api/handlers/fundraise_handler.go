package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/linskybing/fundraise-go/internal/application"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"github.com/linskybing/fundraise-go/internal/picker"
	"github.com/linskybing/fundraise-go/internal/session"
	"github.com/linskybing/fundraise-go/pkg/logger"
	"github.com/linskybing/fundraise-go/pkg/response"
	"github.com/linskybing/fundraise-go/pkg/utils"
)

const (
	alertSuccess         = "Success"
	alertError           = "Error"
	submitSuccessMessage = "Fundraising request submitted successfully."
	submitFailedMessage  = "Failed to submit fund request"

	// PermissionHeader carries the media-library decision taken on the device.
	PermissionHeader = "X-Media-Permission"
)

type FundraiseHandler struct {
	svc      *application.FundraiseService
	screens  *application.ScreenRegistry
	stage    *picker.Stage
	sessions session.Resolver
	upgrader *websocket.Upgrader
}

// NewFundraiseHandler builds the handler; allowedOrigins gates websocket
// handshakes the same way CORS gates ordinary requests.
func NewFundraiseHandler(svc *application.FundraiseService, screens *application.ScreenRegistry, stage *picker.Stage, sessions session.Resolver, allowedOrigins []string) *FundraiseHandler {
	return &FundraiseHandler{
		svc:      svc,
		screens:  screens,
		stage:    stage,
		sessions: sessions,
		upgrader: newUpgrader(allowedOrigins),
	}
}

func (h *FundraiseHandler) screen(c *gin.Context) *application.Screen {
	sess, ok := h.sessions.CurrentUser(c.Request.Context())
	return h.screens.Open(c.Request.Context(), sess, ok)
}

// GetScreen godoc
// @Summary Mount the fundraising screen and return its gate view
// @Tags fundraise
// @Security BearerAuth
// @Produce json
// @Success 200 {object} application.View
// @Router /fundraise/screen [get]
func (h *FundraiseHandler) GetScreen(c *gin.Context) {
	c.JSON(http.StatusOK, h.screen(c).View())
}

// CloseScreen godoc
// @Summary Unmount the caller's fundraising screen
// @Description Drops form state and any staged image. The next GET fetches the profile again,
// @Description so a user approved for KYC after mounting can reopen the form.
// @Tags fundraise
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.MessageResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /fundraise/screen [delete]
func (h *FundraiseHandler) CloseScreen(c *gin.Context) {
	uid, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
		return
	}
	h.screens.Close(uid)
	c.JSON(http.StatusOK, response.MessageResponse{Message: "Screen closed"})
}

// UpdateForm godoc
// @Summary Edit fundraising form fields
// @Tags fundraise
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body fundraise.UpdateFormDTO true "Changed fields"
// @Success 200 {object} application.View
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.AlertResponse
// @Failure 409 {object} response.AlertResponse
// @Router /fundraise/screen/form [put]
func (h *FundraiseHandler) UpdateForm(c *gin.Context) {
	var input fundraise.UpdateFormDTO
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	view, err := h.screen(c).UpdateForm(input)
	if err != nil {
		writeAlert(c, err, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PickImage godoc
// @Summary Select the illustrative image
// @Description The device reports its media-library permission in X-Media-Permission.
// @Description A request without a file, or with canceled=true, is a cancellation.
// @Description Accepted formats are JPEG, PNG, GIF and WebP. HEIC and other formats get 415.
// @Tags fundraise
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param X-Media-Permission header string true "granted or denied"
// @Param file formData file false "Image"
// @Param canceled formData bool false "User cancelled the picker"
// @Param crop_x formData int false "Crop origin x"
// @Param crop_y formData int false "Crop origin y"
// @Param crop_w formData int false "Crop width"
// @Param crop_h formData int false "Crop height"
// @Param quality formData int false "JPEG quality 1-100"
// @Success 200 {object} application.View
// @Failure 403 {object} response.AlertResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Router /fundraise/screen/image [post]
func (h *FundraiseHandler) PickImage(c *gin.Context) {
	var input fundraise.PickImageDTO
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}

	var file io.Reader
	if !input.Canceled {
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "cannot read uploaded file"})
				return
			}
			defer f.Close()
			file = f
		}
	}

	opts := picker.DefaultOptions()
	if input.Quality > 0 {
		opts.Quality = float64(input.Quality) / 100
	}
	crop := picker.Crop{X: input.CropX, Y: input.CropY, W: input.CropW, H: input.CropH}
	perm := picker.StaticPermission(strings.ToLower(c.GetHeader(PermissionHeader)))
	selector := picker.NewSelector(perm, picker.NewUploadLibrary(h.stage, file, crop), opts)

	view, _, err := h.screen(c).PickImage(c.Request.Context(), selector)
	if err != nil {
		writeAlert(c, err, view)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit godoc
// @Summary Submit the fundraising request
// @Tags fundraise
// @Security BearerAuth
// @Produce json
// @Success 201 {object} response.AlertResponse
// @Failure 400 {object} response.AlertResponse "Validation failed"
// @Failure 409 {object} response.AlertResponse "Submission already in progress"
// @Failure 502 {object} response.AlertResponse "Image upload failed"
// @Failure 500 {object} response.AlertResponse "Write failed"
// @Router /fundraise/screen/submit [post]
func (h *FundraiseHandler) Submit(c *gin.Context) {
	sc := h.screen(c)
	res, err := sc.Submit(c.Request.Context())
	if err != nil {
		writeAlert(c, err, sc.View())
		return
	}
	c.JSON(http.StatusCreated, response.AlertResponse{
		Title:   alertSuccess,
		Message: submitSuccessMessage,
		Data:    res.Request,
	})
}

// ListMyRequests godoc
// @Summary List the caller's fund requests, newest first
// @Tags fundraise
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.SuccessResponse{data=[]fundraise.FundingRequest}
// @Failure 500 {object} response.ErrorResponse
// @Router /fundraise/requests [get]
func (h *FundraiseHandler) ListMyRequests(c *gin.Context) {
	uid, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
		return
	}
	list, err := h.svc.ListMyRequests(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: list})
}

// GetRequest godoc
// @Summary Get one of the caller's fund requests
// @Tags fundraise
// @Security BearerAuth
// @Produce json
// @Param id path string true "Fund request ID"
// @Success 200 {object} response.SuccessResponse{data=fundraise.FundingRequest}
// @Failure 404 {object} response.ErrorResponse
// @Router /fundraise/requests/{id} [get]
func (h *FundraiseHandler) GetRequest(c *gin.Context) {
	uid, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
		return
	}
	req, err := h.svc.GetRequest(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		if errors.Is(err, fundraise.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.SuccessResponse{Data: req})
}

// writeAlert maps screen and pipeline errors to a status and alert body.
func writeAlert(c *gin.Context, err error, view application.View) {
	status := http.StatusInternalServerError
	alert := response.AlertResponse{Title: alertError, Message: submitFailedMessage, Data: view}

	switch {
	case errors.Is(err, fundraise.ErrValidation):
		status = http.StatusBadRequest
		alert.Message = fundraise.ValidationMessage
	case errors.Is(err, fundraise.ErrSubmissionInFlight), errors.Is(err, fundraise.ErrFormLocked):
		status = http.StatusConflict
		alert.Message = err.Error()
	case errors.Is(err, fundraise.ErrNotEligible):
		status = http.StatusForbidden
		alert.Message = err.Error()
	case errors.Is(err, picker.ErrPermissionDenied):
		status = http.StatusForbidden
		alert.Message = picker.PermissionMessage
	case errors.Is(err, picker.ErrNotAnImage):
		status = http.StatusUnsupportedMediaType
		alert.Message = err.Error()
	case errors.Is(err, picker.ErrTooLarge):
		status = http.StatusRequestEntityTooLarge
		alert.Message = err.Error()
	case errors.Is(err, fundraise.ErrUploadFailed):
		status = http.StatusBadGateway
	case errors.Is(err, fundraise.ErrPersistFailed):
		status = http.StatusInternalServerError
	default:
		logger.WithError(err).Error("Unhandled fundraise error")
	}

	c.JSON(status, alert)
}
