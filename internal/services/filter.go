package services

import (
	"strings"

	"giveup-backend/internal/models"
)

// ItemFilter is the set of listing filters. Empty fields are inactive.
type ItemFilter struct {
	Category models.Category
	AgeGroup models.AgeGroup
	Gender   models.Gender
	Search   string
}

// Matches reports whether item satisfies every active filter. Search matches
// case-insensitively against the title or the description.
func (f ItemFilter) Matches(item *models.Item) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.AgeGroup != "" && item.AgeGroup != f.AgeGroup {
		return false
	}
	if f.Gender != "" && item.Gender != f.Gender {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(item.Title), term) &&
			!strings.Contains(strings.ToLower(item.Description), term) {
			return false
		}
	}
	return true
}

// FilterItems returns the items matching f, preserving order
func FilterItems(items []*models.Item, f ItemFilter) []*models.Item {
	filtered := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
