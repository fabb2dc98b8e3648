package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/middleware"
	"giveup-backend/internal/models"
	"giveup-backend/internal/services"
	"giveup-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	multipartMemory = 8 << 20
	formOverhead    = 1 << 20
)

// ItemHandler handles item-related HTTP requests
type ItemHandler struct {
	itemService    *services.ItemService
	requestService *services.RequestService
	maxImageBytes  int64
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *services.ItemService, requestService *services.RequestService, maxImageBytes int64) *ItemHandler {
	return &ItemHandler{
		itemService:    itemService,
		requestService: requestService,
		maxImageBytes:  maxImageBytes,
	}
}

// listQuery is the listing filter as given in the URL query
type listQuery struct {
	Category string `json:"category" validate:"omitempty,oneof=clothing toy accessory"`
	AgeGroup string `json:"age_group" validate:"omitempty,oneof=baby toddler preschooler child"`
	Gender   string `json:"gender" validate:"omitempty,oneof=boy girl neutral"`
	Search   string `json:"q" validate:"max=100"`
}

// ListItems handles GET /api/v1/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := listQuery{
		Category: query.Get("category"),
		AgeGroup: query.Get("age_group"),
		Gender:   query.Get("gender"),
		Search:   strings.TrimSpace(query.Get("q")),
	}
	if err := validation.Struct(&q); err != nil {
		respondError(w, err)
		return
	}

	items, err := h.itemService.ListItems(r.Context(), services.ItemFilter{
		Category: models.Category(q.Category),
		AgeGroup: models.AgeGroup(q.AgeGroup),
		Gender:   models.Gender(q.Gender),
		Search:   q.Search,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list items")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// GetItem handles GET /api/v1/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	detail, err := h.itemService.GetItem(r.Context(), itemID)
	if err != nil {
		if !apperr.Is(err, apperr.CodeNotFound) {
			log.Error().Err(err).Str("item_id", itemID).Msg("Failed to get item")
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// CreateItem handles POST /api/v1/items as multipart/form-data with the
// listing fields and one to five "images" files.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, int64(models.MaxImages)*h.maxImageBytes+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, validation.Field("images", "upload is too large"))
			return
		}
		respondError(w, apperr.Wrap(apperr.CodeValidation, err, "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := services.CreateItemRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    models.Category(r.FormValue("category")),
		AgeGroup:    models.AgeGroup(r.FormValue("age_group")),
		Gender:      models.Gender(r.FormValue("gender")),
		Size:        r.FormValue("size"),
		State:       models.ItemState(r.FormValue("state")),
	}

	images, err := h.readImages(r.MultipartForm.File["images"])
	if err != nil {
		respondError(w, err)
		return
	}

	item, err := h.itemService.CreateItem(r.Context(), userID, req, images)
	if err != nil {
		if !apperr.Is(err, apperr.CodeValidation) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to create item")
		}
		respondError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("item_id", item.ID).
		Int("images", len(item.ImageURLs)).
		Msg("Item created")

	respondJSON(w, http.StatusCreated, item)
}

// readImages reads each file up to one byte past the size limit so the
// service can reject oversized images.
func (h *ItemHandler) readImages(files []*multipart.FileHeader) ([]services.ImageUpload, error) {
	images := make([]services.ImageUpload, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, validation.Field(fmt.Sprintf("images[%d]", i), "could not be read")
		}
		data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, validation.Field(fmt.Sprintf("images[%d]", i), "could not be read")
		}
		images = append(images, services.ImageUpload{Filename: fh.Filename, Data: data})
	}
	return images, nil
}

// MarkGiven handles POST /api/v1/items/{id}/given
func (h *ItemHandler) MarkGiven(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	itemID := chi.URLParam(r, "id")

	item, err := h.itemService.MarkGiven(r.Context(), itemID, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("item_id", itemID).Msg("Failed to mark item as given")
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("item_id", itemID).Msg("Item marked as given")
	respondJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/v1/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	itemID := chi.URLParam(r, "id")

	if err := h.itemService.DeleteItem(r.Context(), itemID, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("item_id", itemID).Msg("Failed to delete item")
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("item_id", itemID).Msg("Item deleted")
	w.WriteHeader(http.StatusNoContent)
}

// RequestItem handles POST /api/v1/items/{id}/request; the body is optional
func (h *ItemHandler) RequestItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	itemID := chi.URLParam(r, "id")

	var input services.ItemRequestInput
	if r.ContentLength != 0 {
		if err := validation.DecodeJSONBody(r, &input); err != nil {
			respondError(w, err)
			return
		}
	}

	request, err := h.requestService.Compose(r.Context(), itemID, userID, input)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("item_id", itemID).Msg("Failed to compose item request")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// MyItems handles GET /api/v1/me/items
func (h *ItemHandler) MyItems(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	items, err := h.itemService.ListUserItems(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list user items")
		respondError(w, err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}

	respondJSON(w, http.StatusOK, items)
}
