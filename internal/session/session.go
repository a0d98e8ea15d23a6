// Package session carries the authenticated caller explicitly instead of
// reading it from a process-wide auth singleton.
package session

import (
	"context"
	"time"
)

type Session struct {
	UID       string
	Username  string
	ExpiresAt time.Time
}

func (s Session) Valid() bool {
	return s.UID != ""
}

// Resolver returns the current user, or ok=false when nobody is signed in.
type Resolver interface {
	CurrentUser(ctx context.Context) (Session, bool)
}

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	if !ok || !s.Valid() {
		return Session{}, false
	}
	return s, true
}

// ContextResolver reads the session the auth middleware stored on the request context.
type ContextResolver struct{}

func (ContextResolver) CurrentUser(ctx context.Context) (Session, bool) {
	return FromContext(ctx)
}
