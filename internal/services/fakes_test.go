package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/models"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeItems struct {
	mu        sync.Mutex
	items     map[string]*models.Item
	createErr error
	creates   int
}

func newFakeItems(items ...*models.Item) *fakeItems {
	f := &fakeItems{items: make(map[string]*models.Item)}
	for _, item := range items {
		f.items[item.ID] = item
	}
	return f
}

func (f *fakeItems) Create(_ context.Context, item *models.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeItems) GetByID(_ context.Context, id string) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "item not found")
	}
	cp := *item
	return &cp, nil
}

func (f *fakeItems) ListAvailable(_ context.Context) ([]*models.Item, error) {
	return f.list(func(item *models.Item) bool { return item.IsAvailable }), nil
}

func (f *fakeItems) ListByUser(_ context.Context, userID string) ([]*models.Item, error) {
	return f.list(func(item *models.Item) bool { return item.UserID == userID }), nil
}

func (f *fakeItems) list(keep func(*models.Item) bool) []*models.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []*models.Item
	for _, item := range f.items {
		if keep(item) {
			cp := *item
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

func (f *fakeItems) SetAvailable(_ context.Context, id string, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}
	item.IsAvailable = available
	return nil
}

func (f *fakeItems) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}
	delete(f.items, id)
	return nil
}

type fakeUsers struct {
	mu       sync.Mutex
	users    map[string]*models.UserProfile
	getErr   error
	conflict bool
}

func newFakeUsers(users ...*models.UserProfile) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*models.UserProfile)}
	for _, user := range users {
		f.users[user.UID] = user
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflict {
		f.users[user.UID] = &models.UserProfile{UID: user.UID, DisplayName: "Raced", Email: user.Email}
		return apperr.New(apperr.CodeConflict, "user already exists")
	}
	if _, ok := f.users[user.UID]; ok {
		return apperr.New(apperr.CodeConflict, "user already exists")
	}
	cp := *user
	f.users[user.UID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, uid string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	user, ok := f.users[uid]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, uid, displayName string, phoneNumber *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[uid]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	user.DisplayName = displayName
	user.PhoneNumber = phoneNumber
	return nil
}

func (f *fakeUsers) UpdatePushToken(_ context.Context, uid string, pushToken *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[uid]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	user.PushToken = pushToken
	return nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	calls   atomic.Int32
	keys    []string
	failOn  string
	objects map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.calls.Add(1)
	if f.failOn != "" && strings.HasSuffix(key, f.failOn) {
		return "", errors.New("storage unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.objects[key] = data
	return key, nil
}

func (f *fakeBlobs) URL(ref string) string {
	return "https://cdn.example.com/" + ref
}

type fakePusher struct {
	mu     sync.Mutex
	err    error
	tokens []string
	titles []string
}

func (f *fakePusher) Push(_ context.Context, deviceToken, title, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tokens = append(f.tokens, deviceToken)
	f.titles = append(f.titles, title)
	return nil
}
