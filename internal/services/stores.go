package services

import (
	"context"

	"giveup-backend/internal/models"
)

// ItemStore is the document store contract for the items collection
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id string) (*models.Item, error)
	ListAvailable(ctx context.Context) ([]*models.Item, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Item, error)
	SetAvailable(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
}

// ProfileStore is the document store contract for the users collection
type ProfileStore interface {
	Create(ctx context.Context, user *models.UserProfile) error
	GetByID(ctx context.Context, uid string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, uid, displayName string, phoneNumber *string) error
	UpdatePushToken(ctx context.Context, uid string, pushToken *string) error
}

// BlobStore uploads image bytes and resolves them to retrievable URLs
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	URL(ref string) string
}

// Pusher delivers a best-effort push notification to a device
type Pusher interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}
