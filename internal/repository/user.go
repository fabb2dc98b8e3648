package repository

import (
	"context"
	"errors"
	"fmt"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for user profiles
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a profile. A concurrent first sign-in for the same uid
// keeps whichever row landed first.
func (r *UserRepository) Create(ctx context.Context, user *models.UserProfile) error {
	query := `
		INSERT INTO users (uid, display_name, email, photo_url, phone_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		user.UID, user.DisplayName, user.Email, user.PhotoURL, user.PhoneNumber,
	).Scan(&user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.Wrap(apperr.CodeConflict, err, "user already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by uid
func (r *UserRepository) GetByID(ctx context.Context, uid string) (*models.UserProfile, error) {
	query := `
		SELECT uid, display_name, email, photo_url, phone_number, push_token, created_at
		FROM users
		WHERE uid = $1
	`
	var user models.UserProfile
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&user.UID, &user.DisplayName, &user.Email, &user.PhotoURL,
		&user.PhoneNumber, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.CodeNotFound, err, "user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates the owner-editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, uid, displayName string, phoneNumber *string) error {
	query := `UPDATE users SET display_name = $1, phone_number = $2 WHERE uid = $3`
	result, err := r.db.Exec(ctx, query, displayName, phoneNumber, uid)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, uid string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE uid = $2`
	result, err := r.db.Exec(ctx, query, pushToken, uid)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, "user not found")
	}
	return nil
}
