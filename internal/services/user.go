package services

import (
	"context"
	"fmt"
	"strings"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/models"
	"giveup-backend/internal/validation"

	"github.com/rs/zerolog/log"
)

const defaultDisplayName = "User"

// UserService handles user profile business logic
type UserService struct {
	users ProfileStore
}

// NewUserService creates a new user service
func NewUserService(users ProfileStore) *UserService {
	return &UserService{users: users}
}

// UpdateProfileRequest holds the owner-editable profile fields
type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name" validate:"required,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=30"`
}

// PushTokenRequest registers or clears an APNs device token
type PushTokenRequest struct {
	PushToken string `json:"push_token" validate:"max=200"`
}

// EnsureProfile returns the profile for identity, creating it from the
// provider's claims on first sign-in.
func (s *UserService) EnsureProfile(ctx context.Context, identity *models.Identity) (*models.UserProfile, error) {
	profile, err := s.users.GetByID(ctx, identity.UID)
	if err == nil {
		return profile, nil
	}
	if !apperr.Is(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile = &models.UserProfile{
		UID:         identity.UID,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		PhotoURL:    identity.PhotoURL,
		PhoneNumber: identity.PhoneNumber,
	}
	if strings.TrimSpace(profile.DisplayName) == "" {
		profile.DisplayName = defaultDisplayName
	}

	if err := s.users.Create(ctx, profile); err != nil {
		if apperr.Is(err, apperr.CodeConflict) {
			// Another sign-in created it first.
			return s.users.GetByID(ctx, identity.UID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	log.Info().Str("user_id", profile.UID).Msg("User profile created")
	return profile, nil
}

// GetProfile returns the profile of uid
func (s *UserService) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	return s.users.GetByID(ctx, uid)
}

// UpdateProfile changes the display name and phone number; email is never
// editable.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*models.UserProfile, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		req.PhoneNumber = &phone
		if phone == "" {
			req.PhoneNumber = nil
		}
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	if err := s.users.UpdateProfile(ctx, uid, req.DisplayName, req.PhoneNumber); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, uid)
}

// UpdatePushToken stores the device token; an empty token clears it
func (s *UserService) UpdatePushToken(ctx context.Context, uid string, req PushTokenRequest) error {
	if err := validation.Struct(&req); err != nil {
		return err
	}

	var token *string
	if t := strings.TrimSpace(req.PushToken); t != "" {
		token = &t
	}
	return s.users.UpdatePushToken(ctx, uid, token)
}
