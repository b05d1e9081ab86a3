package product

import "time"

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Image       *string   `json:"image"`
	Category    string    `json:"category"`
	Featured    bool      `json:"featured"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter narrows the catalog listing.
type Filter struct {
	Category *string
	Featured *bool
	Search   *string
}

// UpdateInput carries the mutable fields; nil means "leave unchanged".
type UpdateInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Category    *string  `json:"category"`
	Featured    *bool    `json:"featured"`
	Stock       *int     `json:"stock"`
}
