package handlers

import (
	"net/http"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/auth"
	"giveup-backend/internal/middleware"
	"giveup-backend/internal/models"
	"giveup-backend/internal/services"
	"giveup-backend/internal/session"
	"giveup-backend/internal/validation"

	"github.com/rs/zerolog/log"
)

// SessionHandler handles sign-in and sign-out
type SessionHandler struct {
	provider    *auth.Provider
	userService *services.UserService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(provider *auth.Provider, userService *services.UserService) *SessionHandler {
	return &SessionHandler{
		provider:    provider,
		userService: userService,
	}
}

// SignInRequest carries the identity provider's ID token
type SignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// SignInResponse is a new session
type SignInResponse struct {
	Token   string              `json:"token"`
	User    *models.Identity    `json:"user"`
	Profile *models.UserProfile `json:"profile"`
}

// SignIn handles POST /api/v1/session
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	identity, err := h.provider.SignIn(r.Context(), req.IDToken)
	if err != nil {
		log.Warn().Err(err).Msg("Sign-in rejected")
		respondError(w, err)
		return
	}

	profile, err := h.userService.EnsureProfile(r.Context(), identity)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.UID).Msg("Failed to resolve profile on sign-in")
		respondError(w, err)
		return
	}

	token, err := h.provider.IssueSession(identity)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.UID).Msg("Failed to issue session")
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", identity.UID).Msg("User signed in")
	respondJSON(w, http.StatusOK, SignInResponse{
		Token:   token,
		User:    identity,
		Profile: profile,
	})
}

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetClaims(r.Context()).Identity()

	snapshot := session.Snapshot{User: identity}
	profile, err := h.userService.EnsureProfile(r.Context(), identity)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.UID).Msg("Failed to resolve session profile")
	} else {
		snapshot.Profile = profile
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// SignOut handles DELETE /api/v1/session
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		respondError(w, apperr.New(apperr.CodeUnauthorized, "token required"))
		return
	}

	if err := h.provider.SignOut(r.Context(), token); err != nil {
		log.Warn().Err(err).Msg("Sign-out failed")
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", middleware.GetUserID(r.Context())).Msg("User signed out")
	w.WriteHeader(http.StatusNoContent)
}
