package models

import "time"

// Category is the kind of children's item being given away
type Category string

const (
	CategoryClothing  Category = "clothing"
	CategoryToy       Category = "toy"
	CategoryAccessory Category = "accessory"
)

// AgeGroup is the age range an item is suited for
type AgeGroup string

const (
	AgeGroupBaby        AgeGroup = "baby"
	AgeGroupToddler     AgeGroup = "toddler"
	AgeGroupPreschooler AgeGroup = "preschooler"
	AgeGroupChild       AgeGroup = "child"
)

// Gender is the intended audience of an item
type Gender string

const (
	GenderBoy     Gender = "boy"
	GenderGirl    Gender = "girl"
	GenderNeutral Gender = "neutral"
)

// ItemState is the physical condition of an item
type ItemState string

const (
	ItemStateNew     ItemState = "new"
	ItemStateLikeNew ItemState = "like-new"
	ItemStateUsed    ItemState = "used"
)

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxImages            = 5
)

// Item represents a listing created by a user
type Item struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	AgeGroup    AgeGroup  `json:"age_group"`
	Gender      Gender    `json:"gender"`
	Size        *string   `json:"size,omitempty"`
	State       ItemState `json:"state"`
	ImageURLs   []string  `json:"image_urls"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserProfile represents the stored profile of a signed-in identity.
// UID equals the identity provider's subject id.
type UserProfile struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	PushToken   *string   `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identity is what the identity provider asserts about a signed-in user
type Identity struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}
