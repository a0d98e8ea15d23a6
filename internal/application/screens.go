package application

import (
	"context"
	"sync"
	"time"

	"github.com/linskybing/fundraise-go/internal/metrics"
	"github.com/linskybing/fundraise-go/internal/session"
	"github.com/linskybing/fundraise-go/pkg/logger"
)

// ScreenRegistry keeps one Screen per signed-in user.
type ScreenRegistry struct {
	mu      sync.Mutex
	screens map[string]*Screen
	deps    ScreenDeps
	idleTTL time.Duration
}

func NewScreenRegistry(deps ScreenDeps, idleTTL time.Duration) *ScreenRegistry {
	return &ScreenRegistry{
		screens: make(map[string]*Screen),
		deps:    deps,
		idleTTL: idleTTL,
	}
}

// Open returns the caller's mounted screen. Callers without a session get a
// throwaway screen showing the unauthenticated view.
func (r *ScreenRegistry) Open(ctx context.Context, sess session.Session, ok bool) *Screen {
	if !ok || !sess.Valid() {
		sc := NewScreen(session.Session{}, false, r.deps)
		sc.Mount(ctx)
		return sc
	}

	r.mu.Lock()
	sc, exists := r.screens[sess.UID]
	if !exists {
		sc = NewScreen(sess, true, r.deps)
		r.screens[sess.UID] = sc
		metrics.SetActiveScreens(len(r.screens))
	}
	r.mu.Unlock()

	sc.Mount(ctx)
	return sc
}

// Close unmounts the user's screen; the next Open fetches the profile again.
func (r *ScreenRegistry) Close(uid string) {
	r.mu.Lock()
	sc, ok := r.screens[uid]
	if ok {
		delete(r.screens, uid)
		metrics.SetActiveScreens(len(r.screens))
	}
	r.mu.Unlock()

	if ok {
		sc.Unmount()
	}
}

// EvictIdle unmounts screens untouched for longer than the idle TTL.
// Screens with a submission in flight or a live subscriber are kept.
func (r *ScreenRegistry) EvictIdle(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	var evicted []*Screen
	for uid, sc := range r.screens {
		last, busy := sc.idleSince()
		if busy || now.Sub(last) < r.idleTTL {
			continue
		}
		delete(r.screens, uid)
		evicted = append(evicted, sc)
	}
	metrics.SetActiveScreens(len(r.screens))
	r.mu.Unlock()

	for _, sc := range evicted {
		sc.Unmount()
	}
	if len(evicted) > 0 {
		logger.Log.WithField("count", len(evicted)).Info("Evicted idle fundraise screens")
	}
	return len(evicted)
}

func (r *ScreenRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}
