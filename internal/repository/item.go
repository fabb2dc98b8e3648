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

const itemColumns = `id, user_id, title, description, category, age_group, gender, size, state,
		image_urls, is_available, created_at, updated_at`

// ItemRepository handles database operations for items
type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts an item; timestamps are assigned by the database
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, user_id, title, description, category, age_group, gender,
			size, state, image_urls, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		item.ID, item.UserID, item.Title, item.Description, item.Category, item.AgeGroup,
		item.Gender, item.Size, item.State, item.ImageURLs, item.IsAvailable,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetByID retrieves an item by ID regardless of availability
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Wrap(apperr.CodeNotFound, err, "item not found")
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListAvailable retrieves all available items, newest first
func (r *ItemRepository) ListAvailable(ctx context.Context) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE is_available = TRUE
		ORDER BY created_at DESC
	`
	return r.list(ctx, query)
}

// ListByUser retrieves all items owned by a user, newest first
func (r *ItemRepository) ListByUser(ctx context.Context, userID string) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

// SetAvailable updates the availability flag of an item
func (r *ItemRepository) SetAvailable(ctx context.Context, id string, available bool) error {
	query := `UPDATE items SET is_available = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.Exec(ctx, query, available, id)
	if err != nil {
		return fmt.Errorf("failed to update item availability: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}
	return nil
}

// Delete removes an item permanently
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM items WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, "item not found")
	}
	return nil
}

func (r *ItemRepository) list(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.UserID, &item.Title, &item.Description, &item.Category,
		&item.AgeGroup, &item.Gender, &item.Size, &item.State, &item.ImageURLs,
		&item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
