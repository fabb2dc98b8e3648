package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"giveup-backend/internal/auth"
	"giveup-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*models.UserProfile
	created  []string
	err      error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: make(map[string]*models.UserProfile)}
}

func (f *fakeProfiles) EnsureProfile(_ context.Context, identity *models.Identity) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if profile, ok := f.profiles[identity.UID]; ok {
		return profile, nil
	}
	profile := &models.UserProfile{UID: identity.UID, DisplayName: identity.DisplayName, Email: identity.Email}
	f.profiles[identity.UID] = profile
	f.created = append(f.created, identity.UID)
	return profile, nil
}

// recorder collects snapshots delivered through WithOnChange
type recorder struct {
	ch chan Snapshot
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Snapshot, 16)}
}

func (r *recorder) onChange(s Snapshot) {
	r.ch <- s
}

func (r *recorder) next(t *testing.T) Snapshot {
	t.Helper()
	select {
	case s := <-r.ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session change")
		return Snapshot{}
	}
}

func TestContextStartsLoading(t *testing.T) {
	c := New(newFakeProfiles())
	defer c.Close()

	snapshot := c.Snapshot()
	assert.True(t, snapshot.Loading)
	assert.Nil(t, snapshot.User)
	assert.Nil(t, snapshot.Profile)
}

func TestContextSignInCreatesProfileLazily(t *testing.T) {
	profiles := newFakeProfiles()
	rec := newRecorder()
	notifier := auth.NewNotifier()

	c := New(profiles, WithOnChange(rec.onChange))
	require.NoError(t, c.Start(context.Background(), notifier))
	defer c.Close()

	notifier.Publish(&models.Identity{UID: "uid-1", DisplayName: "Ana", Email: "ana@example.com"})

	snapshot := rec.next(t)
	assert.False(t, snapshot.Loading)
	require.NotNil(t, snapshot.User)
	assert.Equal(t, "uid-1", snapshot.User.UID)
	require.NotNil(t, snapshot.Profile)
	assert.Equal(t, "ana@example.com", snapshot.Profile.Email)
	assert.Equal(t, []string{"uid-1"}, profiles.created)
}

func TestContextSignOutClearsState(t *testing.T) {
	rec := newRecorder()
	notifier := auth.NewNotifier()

	c := New(newFakeProfiles(), WithOnChange(rec.onChange))
	require.NoError(t, c.Start(context.Background(), notifier))
	defer c.Close()

	notifier.Publish(&models.Identity{UID: "uid-1"})
	rec.next(t)

	notifier.Publish(nil)
	snapshot := rec.next(t)
	assert.False(t, snapshot.Loading)
	assert.Nil(t, snapshot.User)
	assert.Nil(t, snapshot.Profile)
	assert.Nil(t, c.CurrentUser())
}

func TestContextInitialSignedOutClearsLoading(t *testing.T) {
	rec := newRecorder()
	notifier := auth.NewNotifier()
	notifier.Publish(nil)

	c := New(newFakeProfiles(), WithOnChange(rec.onChange))
	require.NoError(t, c.Start(context.Background(), notifier))
	defer c.Close()

	snapshot := rec.next(t)
	assert.False(t, snapshot.Loading)
	assert.Nil(t, snapshot.User)
}

func TestContextProfileFailureKeepsUser(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.err = errors.New("database unavailable")
	rec := newRecorder()
	notifier := auth.NewNotifier()

	c := New(profiles, WithOnChange(rec.onChange))
	require.NoError(t, c.Start(context.Background(), notifier))
	defer c.Close()

	notifier.Publish(&models.Identity{UID: "uid-1"})
	snapshot := rec.next(t)
	assert.False(t, snapshot.Loading)
	require.NotNil(t, snapshot.User)
	assert.Nil(t, snapshot.Profile)
}

func TestContextHoldsExactlyOneSubscription(t *testing.T) {
	notifier := auth.NewNotifier()
	c := New(newFakeProfiles())

	require.NoError(t, c.Start(context.Background(), notifier))
	assert.ErrorIs(t, c.Start(context.Background(), notifier), ErrAlreadyStarted)
	assert.Equal(t, 1, notifier.Subscribers())

	c.Close()
	c.Close()
	assert.Equal(t, 0, notifier.Subscribers())
}

func TestContextStartAfterClose(t *testing.T) {
	c := New(newFakeProfiles())
	c.Close()
	assert.ErrorIs(t, c.Start(context.Background(), auth.NewNotifier()), ErrClosed)
}
