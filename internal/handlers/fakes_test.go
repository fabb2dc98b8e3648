package handlers

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/auth"
	"giveup-backend/internal/config"
	"giveup-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const providerSecret = "provider-secret"

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type memoryItems struct {
	mu    sync.Mutex
	items map[string]*models.Item
}

func newMemoryItems(items ...*models.Item) *memoryItems {
	m := &memoryItems{items: make(map[string]*models.Item)}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *memoryItems) Create(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memoryItems) GetByID(_ context.Context, id string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "item not found")
	}
	cp := *item
	return &cp, nil
}

func (m *memoryItems) ListAvailable(_ context.Context) ([]*models.Item, error) {
	return m.list(func(item *models.Item) bool { return item.IsAvailable }), nil
}

func (m *memoryItems) ListByUser(_ context.Context, userID string) ([]*models.Item, error) {
	return m.list(func(item *models.Item) bool { return item.UserID == userID }), nil
}

func (m *memoryItems) list(keep func(*models.Item) bool) []*models.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []*models.Item{}
	for _, item := range m.items {
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

func (m *memoryItems) SetAvailable(_ context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}
	item.IsAvailable = available
	return nil
}

func (m *memoryItems) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}
	delete(m.items, id)
	return nil
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.UserProfile
}

func newMemoryUsers(users ...*models.UserProfile) *memoryUsers {
	m := &memoryUsers{users: make(map[string]*models.UserProfile)}
	for _, user := range users {
		m.users[user.UID] = user
	}
	return m
}

func (m *memoryUsers) Create(_ context.Context, user *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UID]; ok {
		return apperr.New(apperr.CodeConflict, "user already exists")
	}
	cp := *user
	m.users[user.UID] = &cp
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, uid string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[uid]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	cp := *user
	return &cp, nil
}

func (m *memoryUsers) UpdateProfile(_ context.Context, uid, displayName string, phoneNumber *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[uid]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	user.DisplayName = displayName
	user.PhoneNumber = phoneNumber
	return nil
}

func (m *memoryUsers) UpdatePushToken(_ context.Context, uid string, pushToken *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[uid]
	if !ok {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	user.PushToken = pushToken
	return nil
}

type memoryBlobs struct {
	mu   sync.Mutex
	keys []string
}

func (m *memoryBlobs) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return key, nil
}

func (m *memoryBlobs) URL(ref string) string {
	return "https://cdn.example.com/" + ref
}

func newTestProvider(t *testing.T) *auth.Provider {
	t.Helper()
	verifier, err := auth.NewVerifier(config.AuthConfig{ProviderSecret: providerSecret})
	require.NoError(t, err)
	return auth.NewProvider(verifier, auth.NewSessionTokens("session-secret", time.Hour), auth.NewMemoryRevocations())
}

func providerToken(t *testing.T, uid, name, email string) string {
	t.Helper()
	claims := auth.ProviderClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(providerSecret))
	require.NoError(t, err)
	return signed
}

// sessionToken signs in uid and returns a session token
func sessionToken(t *testing.T, provider *auth.Provider, uid string) string {
	t.Helper()
	identity, err := provider.SignIn(context.Background(), providerToken(t, uid, "", uid+"@example.com"))
	require.NoError(t, err)
	token, err := provider.IssueSession(identity)
	require.NoError(t, err)
	return token
}
