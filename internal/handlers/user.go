package handlers

import (
	"net/http"

	"giveup-backend/internal/middleware"
	"giveup-backend/internal/services"
	"giveup-backend/internal/validation"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe handles GET /api/v1/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	profile, err := h.userService.EnsureProfile(r.Context(), claims.Identity())
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.Subject).Msg("Failed to get profile")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /api/v1/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req services.UpdateProfileRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("Profile updated")
	respondJSON(w, http.StatusOK, profile)
}

// PutPushToken handles PUT /api/v1/me/push-token
func (h *UserHandler) PutPushToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req services.PushTokenRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.userService.UpdatePushToken(r.Context(), userID, req); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
