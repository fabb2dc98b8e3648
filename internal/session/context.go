// Package session keeps the signed-in identity and profile of one client,
// driven by the identity provider's auth-state notifications.
package session

import (
	"context"
	"errors"
	"sync"

	"giveup-backend/internal/models"

	"github.com/rs/zerolog/log"
)

var (
	// ErrAlreadyStarted is returned when Start is called more than once
	ErrAlreadyStarted = errors.New("session context already started")
	// ErrClosed is returned when Start is called after Close
	ErrClosed = errors.New("session context closed")
)

// Source is the auth-state notification stream
type Source interface {
	Subscribe() (<-chan *models.Identity, func())
}

// ProfileResolver resolves the profile for an identity, creating it if absent
type ProfileResolver interface {
	EnsureProfile(ctx context.Context, identity *models.Identity) (*models.UserProfile, error)
}

// Snapshot is a consistent view of the session state
type Snapshot struct {
	Loading bool                `json:"loading"`
	User    *models.Identity    `json:"user"`
	Profile *models.UserProfile `json:"profile"`
}

// Option configures a Context
type Option func(*Context)

// WithOnChange registers a callback invoked after every applied notification
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Context) {
		c.onChange = fn
	}
}

// Context caches at most one identity and its profile. Notifications from
// the source are the only writer of the current user.
type Context struct {
	mu          sync.RWMutex
	currentUser *models.Identity
	userProfile *models.UserProfile
	loading     bool

	profiles ProfileResolver
	onChange func(Snapshot)

	startOnce   sync.Once
	closeOnce   sync.Once
	started     bool
	closed      bool
	unsubscribe func()
	done        chan struct{}
	stopped     chan struct{}
}

// New creates a context in the loading state
func New(profiles ProfileResolver, opts ...Option) *Context {
	c := &Context{
		loading:  true,
		profiles: profiles,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to source and applies notifications until Close. The
// context holds exactly one subscription for its lifetime.
func (c *Context) Start(ctx context.Context, source Source) error {
	err := ErrAlreadyStarted
	c.startOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			err = ErrClosed
			return
		}
		err = nil
		ch, unsubscribe := source.Subscribe()
		c.started = true
		c.unsubscribe = unsubscribe

		go c.run(ctx, ch)
	})
	return err
}

func (c *Context) run(ctx context.Context, ch <-chan *models.Identity) {
	defer close(c.stopped)
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case identity := <-ch:
			c.apply(ctx, identity)
		}
	}
}

func (c *Context) apply(ctx context.Context, identity *models.Identity) {
	c.mu.Lock()
	previous := c.currentUser
	c.currentUser = identity
	if identity == nil || previous == nil || previous.UID != identity.UID {
		c.userProfile = nil
	}
	c.mu.Unlock()

	var profile *models.UserProfile
	if identity != nil {
		var err error
		profile, err = c.profiles.EnsureProfile(ctx, identity)
		if err != nil {
			log.Error().Err(err).Str("user_id", identity.UID).Msg("Failed to resolve user profile")
		}
	}

	c.mu.Lock()
	c.userProfile = profile
	c.loading = false
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(snapshot)
	}
}

// Snapshot returns the current state
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Context) snapshotLocked() Snapshot {
	return Snapshot{
		Loading: c.loading,
		User:    c.currentUser,
		Profile: c.userProfile,
	}
}

// CurrentUser returns the signed-in identity or nil
func (c *Context) CurrentUser() *models.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentUser
}

// Close releases the subscription and waits for the notification loop to stop
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		started := c.started
		unsubscribe := c.unsubscribe
		close(c.done)
		c.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		if started {
			<-c.stopped
		}
	})
}
