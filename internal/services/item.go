package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/metrics"
	"giveup-backend/internal/models"
	"giveup-backend/internal/validation"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ItemService handles the item lifecycle: create, list, get, mark given, delete
type ItemService struct {
	items         ItemStore
	users         ProfileStore
	blobs         BlobStore
	metrics       *metrics.Metrics
	maxImageBytes int64
	now           func() time.Time
	newID         func() string
}

// NewItemService creates a new item service
func NewItemService(items ItemStore, users ProfileStore, blobs BlobStore, m *metrics.Metrics, maxImageBytes int64) *ItemService {
	return &ItemService{
		items:         items,
		users:         users,
		blobs:         blobs,
		metrics:       m,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
	}
}

// CreateItemRequest holds the descriptive fields of a new listing
type CreateItemRequest struct {
	Title       string           `json:"title" validate:"required,max=100"`
	Description string           `json:"description" validate:"required,max=500"`
	Category    models.Category  `json:"category" validate:"required,oneof=clothing toy accessory"`
	AgeGroup    models.AgeGroup  `json:"age_group" validate:"required,oneof=baby toddler preschooler child"`
	Gender      models.Gender    `json:"gender" validate:"required,oneof=boy girl neutral"`
	Size        string           `json:"size"`
	State       models.ItemState `json:"state" validate:"required,oneof=new like-new used"`
}

func (r *CreateItemRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Size = strings.TrimSpace(r.Size)
}

// ImageUpload is one selected image file
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ItemDetail is an item together with its owner's contact email
type ItemDetail struct {
	*models.Item
	OwnerEmail string `json:"owner_email,omitempty"`
}

// CreateItem validates the listing, uploads its images in parallel and
// stores it as available. Nothing is uploaded when validation fails.
func (s *ItemService) CreateItem(ctx context.Context, ownerID string, req CreateItemRequest, images []ImageUpload) (*models.Item, error) {
	req.normalize()
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	contentTypes, err := s.validateImages(images)
	if err != nil {
		return nil, err
	}

	// A create that has started is never aborted by the caller going away.
	ctx = context.WithoutCancel(ctx)

	urls, err := s.uploadImages(ctx, ownerID, images, contentTypes)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:          s.newID(),
		UserID:      ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		AgeGroup:    req.AgeGroup,
		Gender:      req.Gender,
		State:       req.State,
		ImageURLs:   urls,
		IsAvailable: true,
	}
	if req.Size != "" {
		size := req.Size
		item.Size = &size
	}

	if err := s.items.Create(ctx, item); err != nil {
		log.Warn().
			Str("user_id", ownerID).
			Int("orphaned", len(urls)).
			Msg("Item was not stored; uploaded images are left in storage")
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.metrics.ItemEvent(metrics.EventCreated)
	return item, nil
}

func (s *ItemService) validateImages(images []ImageUpload) ([]string, error) {
	if len(images) == 0 {
		return nil, validation.Field("images", "at least one image is required")
	}
	if len(images) > models.MaxImages {
		return nil, validation.Field("images", fmt.Sprintf("at most %d images are allowed", models.MaxImages))
	}

	contentTypes := make([]string, len(images))
	for i, image := range images {
		field := fmt.Sprintf("images[%d]", i)
		if len(image.Data) == 0 {
			return nil, validation.Field(field, "is empty")
		}
		if s.maxImageBytes > 0 && int64(len(image.Data)) > s.maxImageBytes {
			return nil, validation.Field(field, fmt.Sprintf("must be at most %d bytes", s.maxImageBytes))
		}
		mime := mimetype.Detect(image.Data)
		if !strings.HasPrefix(mime.String(), "image/") {
			return nil, validation.Field(field, "must be an image")
		}
		contentTypes[i] = mime.String()
	}
	return contentTypes, nil
}

// uploadImages uploads every image concurrently and returns their URLs in
// submission order. A failed upload does not stop the others; blobs that did
// upload are not removed.
func (s *ItemService) uploadImages(ctx context.Context, ownerID string, images []ImageUpload, contentTypes []string) ([]string, error) {
	stamp := s.now().UnixMilli()
	urls := make([]string, len(images))
	errs := make([]error, len(images))

	var g errgroup.Group
	for i, image := range images {
		i, image := i, image
		g.Go(func() error {
			key := imageKey(ownerID, stamp, i, image.Filename)
			ref, err := s.blobs.Upload(ctx, key, image.Data, contentTypes[i])
			if err != nil {
				errs[i] = fmt.Errorf("image %d (%s): %w", i, image.Filename, err)
				return errs[i]
			}
			urls[i] = s.blobs.URL(ref)
			return nil
		})
	}
	if g.Wait() == nil {
		return urls, nil
	}

	err := multierr.Combine(errs...)
	failed := len(multierr.Errors(err))
	s.metrics.UploadFailures(failed)
	log.Warn().
		Err(err).
		Str("user_id", ownerID).
		Int("failed", failed).
		Int("orphaned", len(images)-failed).
		Msg("Image upload failed; uploaded images are left in storage")

	return nil, apperr.Wrap(apperr.CodeUpload, err, "failed to upload images")
}

// imageKey builds items/<owner>/<millis>_<index>_<filename>
func imageKey(ownerID string, stamp int64, index int, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return fmt.Sprintf("items/%s/%d_%d_%s", ownerID, stamp, index, name)
}

// ListItems returns available items, newest first, narrowed by filter
func (s *ItemService) ListItems(ctx context.Context, filter ItemFilter) ([]*models.Item, error) {
	items, err := s.items.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return FilterItems(items, filter), nil
}

// ListUserItems returns every item owned by userID, given ones included
func (s *ItemService) ListUserItems(ctx context.Context, userID string) ([]*models.Item, error) {
	return s.items.ListByUser(ctx, userID)
}

// GetItem returns an item regardless of availability, with its owner's
// email. A missing owner profile leaves the email empty.
func (s *ItemService) GetItem(ctx context.Context, id string) (*ItemDetail, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ItemDetail{Item: item}
	owner, err := s.users.GetByID(ctx, item.UserID)
	switch {
	case err == nil:
		detail.OwnerEmail = owner.Email
	case apperr.Is(err, apperr.CodeNotFound):
	default:
		return nil, fmt.Errorf("failed to get item owner: %w", err)
	}
	return detail, nil
}

// MarkGiven makes an item unavailable. Only the owner may do this and there
// is no way back.
func (s *ItemService) MarkGiven(ctx context.Context, id, actingUserID string) (*models.Item, error) {
	item, err := s.ownedItem(ctx, id, actingUserID)
	if err != nil {
		return nil, err
	}

	if err := s.items.SetAvailable(ctx, id, false); err != nil {
		return nil, err
	}
	item.IsAvailable = false
	item.UpdatedAt = s.now()

	s.metrics.ItemEvent(metrics.EventGiven)
	return item, nil
}

// DeleteItem removes an item permanently. Only the owner may do this; its
// images stay in storage.
func (s *ItemService) DeleteItem(ctx context.Context, id, actingUserID string) error {
	if _, err := s.ownedItem(ctx, id, actingUserID); err != nil {
		return err
	}

	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}

	s.metrics.ItemEvent(metrics.EventDeleted)
	return nil
}

func (s *ItemService) ownedItem(ctx context.Context, id, actingUserID string) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.UserID != actingUserID {
		return nil, apperr.New(apperr.CodeForbidden, "only the owner can change this item")
	}
	return item, nil
}
