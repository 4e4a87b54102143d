package model

import "time"

// Product represents an item in the store catalogue.
// Price is held in minor currency units (cents).
type Product struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	Price           int64     `json:"price" db:"price"`
	PictureURL      string    `json:"pictureUrl" db:"picture_url"`
	Type            string    `json:"type" db:"type"`
	Brand           string    `json:"brand" db:"brand"`
	QuantityInStock int       `json:"quantityInStock" db:"quantity_in_stock"`
	PublicID        *string   `json:"publicId,omitempty" db:"public_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductInput carries the admin-supplied fields for creating or updating a product.
type ProductInput struct {
	ID              int64  `validate:"omitempty,gt=0"`
	Name            string `validate:"required"`
	Description     string `validate:"required"`
	Price           int64  `validate:"gte=100"`
	Type            string `validate:"required"`
	Brand           string `validate:"required"`
	QuantityInStock int    `validate:"gte=0,lte=200"`
	PictureURL      string `validate:"omitempty,url"`
}

// ProductFilters lists the distinct brands and types present in the catalogue.
type ProductFilters struct {
	Brands []string `json:"brands"`
	Types  []string `json:"types"`
}

// SearchResult is a product ranked by semantic similarity to a query.
type SearchResult struct {
	Product Product `json:"product"`
	Score   float32 `json:"score"`
}
