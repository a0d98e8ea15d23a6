package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/linskybing/fundraise-go/internal/domain/fundraise"
	"github.com/linskybing/fundraise-go/internal/domain/user"
	"github.com/linskybing/fundraise-go/internal/picker"
	"github.com/linskybing/fundraise-go/internal/repository"
	"github.com/linskybing/fundraise-go/internal/session"
	"github.com/linskybing/fundraise-go/pkg/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ViewState string

const (
	ViewLoading         ViewState = "loading"
	ViewUnauthenticated ViewState = "unauthenticated"
	ViewKYCRequired     ViewState = "kyc_required"
	ViewForm            ViewState = "form"
)

const (
	unauthenticatedMessage = "Please login to continue."
	kycRequiredMessage     = "Please Verify KYC First"
	verifyActionLabel      = "Let's Verify"
)

// Action is the single outbound navigation offered by the gate.
type Action struct {
	Label string `json:"label"`
	Route string `json:"route"`
}

type View struct {
	State      ViewState            `json:"state"`
	Message    string               `json:"message,omitempty"`
	Action     *Action              `json:"action,omitempty"`
	Form       *fundraise.FormState `json:"form,omitempty"`
	Submitting bool                 `json:"submitting"`
	Submission SubmissionState      `json:"submission"`
}

// Event is pushed to subscribers on every view or submission change.
type Event struct {
	Submission SubmissionState `json:"submission"`
	View       View            `json:"view"`
	RequestID  string          `json:"request_id,omitempty"`
	At         time.Time       `json:"at"`
}

type uploadedImage struct {
	uri string
	url string
}

// Screen holds the state of one user's fundraising form. The profile is
// fetched once per mount; edits never trigger a refetch.
type Screen struct {
	mu sync.Mutex

	sess          session.Session
	authenticated bool
	profiles      repository.UserRepo
	svc           *FundraiseService
	kycRoute      string
	discard       func(uri string)

	mounted    bool
	mountDone  chan struct{}
	state      ViewState
	profile    *user.Profile
	form       fundraise.FormState
	submitting bool
	submission SubmissionState
	uploaded   *uploadedImage
	lastActive time.Time

	subs    map[int]chan Event
	nextSub int
}

// ScreenDeps are the collaborators shared by every screen.
type ScreenDeps struct {
	Profiles repository.UserRepo
	Service  *FundraiseService
	KYCRoute string
	// Discard removes a staged image that is no longer referenced.
	Discard func(uri string)
}

// NewScreen builds a screen for an explicit session. ok=false renders the
// unauthenticated view.
func NewScreen(sess session.Session, ok bool, deps ScreenDeps) *Screen {
	discard := deps.Discard
	if discard == nil {
		discard = func(string) {}
	}
	return &Screen{
		sess:          sess,
		authenticated: ok && sess.Valid(),
		profiles:      deps.Profiles,
		svc:           deps.Service,
		kycRoute:      deps.KYCRoute,
		discard:       discard,
		mountDone:     make(chan struct{}),
		state:         ViewLoading,
		submission:    StateIdle,
		lastActive:    time.Now(),
		subs:          make(map[int]chan Event),
	}
}

// Mount resolves the gate. Only the first call does any work; later calls
// wait for it to finish. A failed profile lookup renders kyc_required but
// leaves the screen unmounted so the next Mount fetches again.
func (s *Screen) Mount(ctx context.Context) View {
	s.mu.Lock()
	if s.mounted {
		done := s.mountDone
		s.mu.Unlock()
		<-done
		return s.View()
	}
	s.mounted = true
	if !s.authenticated {
		s.state = ViewUnauthenticated
		close(s.mountDone)
		s.mu.Unlock()
		return s.View()
	}
	s.mu.Unlock()

	profile, err := s.profiles.GetProfile(ctx, s.sess.UID)
	transient := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithError(err).WithField("user_id", s.sess.UID).Error("Failed to fetch profile")
			transient = true
		}
		profile = nil
	}

	s.mu.Lock()
	s.profile = profile
	if profile.KYCApproved() {
		s.state = ViewForm
	} else {
		s.state = ViewKYCRequired
	}
	v := s.viewLocked()
	close(s.mountDone)
	if transient {
		s.mounted = false
		s.mountDone = make(chan struct{})
	}
	s.broadcastLocked("")
	s.mu.Unlock()
	return v
}

func (s *Screen) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Screen) viewLocked() View {
	v := View{
		State:      s.state,
		Submitting: s.submitting,
		Submission: s.submission,
	}
	switch s.state {
	case ViewUnauthenticated:
		v.Message = unauthenticatedMessage
	case ViewKYCRequired:
		v.Message = kycRequiredMessage
		v.Action = &Action{Label: verifyActionLabel, Route: s.kycRoute}
	case ViewForm:
		form := s.form.Clone()
		v.Form = &form
	}
	return v
}

// Form returns a copy of the current form state.
func (s *Screen) Form() fundraise.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Clone()
}

func (s *Screen) editableLocked() error {
	if s.state != ViewForm {
		return fundraise.ErrNotEligible
	}
	if s.submitting {
		return fundraise.ErrFormLocked
	}
	return nil
}

func (s *Screen) UpdateForm(in fundraise.UpdateFormDTO) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	if err := s.editableLocked(); err != nil {
		return s.viewLocked(), err
	}
	if in.Title != nil {
		s.form.Title = *in.Title
	}
	if in.AmountRequested != nil {
		s.form.AmountRequested = *in.AmountRequested
	}
	if in.Description != nil {
		s.form.Description = *in.Description
	}
	s.broadcastLocked("")
	return s.viewLocked(), nil
}

// PickImage runs the selector and, on confirmation, replaces the picked
// image. Denial and cancellation leave the selection unchanged.
func (s *Screen) PickImage(ctx context.Context, selector *picker.Selector) (View, bool, error) {
	s.mu.Lock()
	s.lastActive = time.Now()
	if err := s.editableLocked(); err != nil {
		v := s.viewLocked()
		s.mu.Unlock()
		return v, false, err
	}
	s.mu.Unlock()

	ref, ok, err := selector.PickImage(ctx)
	if err != nil {
		if errors.Is(err, picker.ErrPermissionDenied) {
			s.svc.RecordPermissionDenied(ctx, s.sess.UID)
		}
		return s.View(), false, err
	}
	if !ok {
		return s.View(), false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		s.discard(ref.URI)
		return s.viewLocked(), false, err
	}

	if prev := s.form.PickedImage; prev != nil && prev.URI != ref.URI {
		s.discard(prev.URI)
	}
	s.form.PickedImage = &ref
	s.uploaded = nil
	logger.WithFields(logrus.Fields{"user_id": s.sess.UID, "uri": ref.URI}).Debug("Selected image")
	s.broadcastLocked("")
	return s.viewLocked(), true, nil
}

// Submit runs one submission attempt. Only one attempt may be in flight;
// the form is reset on success and kept intact on any failure.
func (s *Screen) Submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	s.lastActive = time.Now()
	if s.state != ViewForm {
		s.mu.Unlock()
		return SubmitResult{}, fundraise.ErrNotEligible
	}
	if s.submitting {
		s.mu.Unlock()
		return SubmitResult{}, fundraise.ErrSubmissionInFlight
	}
	s.submitting = true
	form := s.form.Clone()
	opts := SubmitOptions{Progress: s.setSubmission}
	if s.uploaded != nil && form.PickedImage != nil && s.uploaded.uri == form.PickedImage.URI {
		opts.UploadedURL = s.uploaded.url
	}
	s.mu.Unlock()

	// the attempt outlives the caller: an issued upload is not cancelled
	res, err := s.svc.Submit(context.WithoutCancel(ctx), s.sess.UID, form, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	s.submission = StateIdle
	s.lastActive = time.Now()

	switch {
	case err == nil:
		if form.PickedImage != nil {
			s.discard(form.PickedImage.URI)
		}
		s.form.Reset()
		s.uploaded = nil
		s.broadcastLocked(res.Request.ID)
	case errors.Is(err, fundraise.ErrPersistFailed) && form.PickedImage != nil && res.ImageURL != "":
		s.uploaded = &uploadedImage{uri: form.PickedImage.URI, url: res.ImageURL}
		s.broadcastLocked("")
	default:
		s.broadcastLocked("")
	}
	return res, err
}

func (s *Screen) setSubmission(state SubmissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submission = state
	s.broadcastLocked("")
}

// Subscribe streams events until cancel is called.
func (s *Screen) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 16)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
			s.lastActive = time.Now()
		}
	}
}

// broadcastLocked drops events for subscribers that are not keeping up.
func (s *Screen) broadcastLocked(requestID string) {
	if len(s.subs) == 0 {
		return
	}
	ev := Event{
		Submission: s.submission,
		View:       s.viewLocked(),
		RequestID:  requestID,
		At:         time.Now(),
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// idleSince reports the last activity and whether the screen is in use by a
// running submission or an open stream.
func (s *Screen) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.submitting || len(s.subs) > 0
}

// Unmount drops form state, closes subscriptions and discards the staged image.
func (s *Screen) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.PickedImage != nil {
		s.discard(s.form.PickedImage.URI)
	}
	s.form.Reset()
	s.uploaded = nil
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
