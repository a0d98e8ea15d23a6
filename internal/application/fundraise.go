package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linskybing/fundraise-go/internal/domain/audit"
	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"github.com/linskybing/fundraise-go/internal/media"
	"github.com/linskybing/fundraise-go/internal/metrics"
	"github.com/linskybing/fundraise-go/internal/repository"
	"github.com/linskybing/fundraise-go/pkg/logger"
	"github.com/sirupsen/logrus"
)

// SubmissionState is one step of a single submission attempt.
type SubmissionState string

const (
	StateIdle             SubmissionState = "idle"
	StateValidating       SubmissionState = "validating"
	StateValidationFailed SubmissionState = "validation_failed"
	StateUploading        SubmissionState = "uploading"
	StateUploadFailed     SubmissionState = "upload_failed"
	StatePersisting       SubmissionState = "persisting"
	StatePersistFailed    SubmissionState = "persist_failed"
	StateDone             SubmissionState = "done"
)

// SubmitOptions tune one run of the submission pipeline.
type SubmitOptions struct {
	// UploadedURL skips the upload when the picked image already reached
	// the media host on an earlier attempt whose write failed.
	UploadedURL string
	// Progress observes every state transition.
	Progress func(SubmissionState)
}

// SubmitResult carries what the pipeline produced, including the image URL
// on a persist failure so the caller can retry without uploading again.
type SubmitResult struct {
	Request  *fundraise.FundingRequest
	ImageURL string
	Reused   bool
}

type FundraiseService struct {
	repos    *repository.Repos
	uploader media.Uploader
	now      func() time.Time
}

func NewFundraiseService(repos *repository.Repos, uploader media.Uploader) *FundraiseService {
	return &FundraiseService{
		repos:    repos,
		uploader: uploader,
		now:      time.Now,
	}
}

// Submit validates the form, uploads the picked image and writes a pending
// FundingRequest. The write never happens without an image URL.
func (s *FundraiseService) Submit(ctx context.Context, userID string, form fundraise.FormState, opts SubmitOptions) (SubmitResult, error) {
	progress := opts.Progress
	if progress == nil {
		progress = func(SubmissionState) {}
	}
	log := logger.WithFields(logrus.Fields{"user_id": userID})

	progress(StateValidating)
	draft, err := form.Validate()
	if err != nil {
		progress(StateValidationFailed)
		var verr *fundraise.ValidationError
		field := ""
		if errors.As(err, &verr) {
			field = verr.Field
		}
		s.finish(ctx, userID, audit.OutcomeValidationFailed, "", map[string]interface{}{"field": field}, err)
		return SubmitResult{}, err
	}

	result := SubmitResult{ImageURL: opts.UploadedURL, Reused: opts.UploadedURL != ""}
	var uploaded media.Result
	if !result.Reused {
		progress(StateUploading)
		uploaded, err = s.upload(ctx, draft.ImageURI)
		if err != nil {
			progress(StateUploadFailed)
			log.WithError(err).Error("Image upload failed")
			s.finish(ctx, userID, audit.OutcomeUploadFailed, "", map[string]interface{}{"image_uri": draft.ImageURI}, err)
			return SubmitResult{}, err
		}
		result.ImageURL = uploaded.URL
	}

	progress(StatePersisting)
	req := fundraise.NewPendingRequest(userID, draft, result.ImageURL, s.now())
	if err := s.repos.FundRequest.Create(ctx, req); err != nil {
		progress(StatePersistFailed)
		err = fmt.Errorf("%w: %w", fundraise.ErrPersistFailed, err)
		log.WithError(err).WithField("blog_img", result.ImageURL).Error("Failed to write fund request")
		s.finish(ctx, userID, audit.OutcomePersistFailed, "", map[string]interface{}{"blog_img": result.ImageURL}, err)
		return result, err
	}

	progress(StateDone)
	result.Request = req
	log.WithFields(logrus.Fields{"request_id": req.ID, "reused_upload": result.Reused}).Info("Fundraising request submitted")
	s.finish(ctx, userID, audit.OutcomeSuccess, req.ID, map[string]interface{}{
		"amount_requested": req.AmountRequested.String(),
		"blog_img":         req.BlogImg,
		"media":            uploaded,
	}, nil)
	return result, nil
}

func (s *FundraiseService) upload(ctx context.Context, uri string) (media.Result, error) {
	start := time.Now()
	res, err := s.uploader.Upload(ctx, uri)
	if err == nil && res.URL == "" {
		err = fmt.Errorf("%w: media host returned no url", fundraise.ErrUploadFailed)
	}
	if err != nil && !errors.Is(err, fundraise.ErrUploadFailed) {
		err = fmt.Errorf("%w: %w", fundraise.ErrUploadFailed, err)
	}
	metrics.ObserveUpload(err == nil, time.Since(start))
	return res, err
}

func (s *FundraiseService) finish(ctx context.Context, userID, outcome, resourceID string, details map[string]interface{}, cause error) {
	metrics.RecordSubmission(outcome)
	desc := "Fundraising request submitted successfully."
	if cause != nil {
		desc = cause.Error()
	}
	s.recordAudit(ctx, userID, audit.ActionSubmitFundRequest, outcome, resourceID, details, desc)
}

// RecordPermissionDenied notes a refused media-library permission.
func (s *FundraiseService) RecordPermissionDenied(ctx context.Context, userID string) {
	s.recordAudit(ctx, userID, audit.ActionPickImage, audit.OutcomePermissionDenied, "", nil, "media library permission denied")
}

func (s *FundraiseService) recordAudit(ctx context.Context, userID, action, outcome, resourceID string, details map[string]interface{}, desc string) {
	var raw []byte
	if details != nil {
		var err error
		raw, err = json.Marshal(details)
		if err != nil {
			logger.WithError(err).Warn("Audit marshal details error")
		}
	}
	entry := &audit.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: audit.ResourceFundRequest,
		ResourceID:   resourceID,
		Outcome:      outcome,
		Details:      raw,
		Description:  desc,
	}
	if err := s.repos.Audit.CreateAuditLog(ctx, entry); err != nil {
		logger.WithError(err).WithField("action", action).Warn("Failed to write audit log")
	}
}

func (s *FundraiseService) ListMyRequests(ctx context.Context, userID string) ([]fundraise.FundingRequest, error) {
	return s.repos.FundRequest.ListByUserID(ctx, userID)
}

// GetRequest returns a request owned by userID; other users' requests are
// reported as not found.
func (s *FundraiseService) GetRequest(ctx context.Context, userID, id string) (*fundraise.FundingRequest, error) {
	req, err := s.repos.FundRequest.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, fundraise.ErrNotFound
	}
	return req, nil
}

// CleanupOldAuditLogs enforces the audit retention window.
func (s *FundraiseService) CleanupOldAuditLogs(ctx context.Context, retentionDays int) (int64, error) {
	return s.repos.Audit.DeleteOldAuditLogs(ctx, retentionDays)
}
