package models

import "strings"

type CreateItemRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=200" jsonschema:"description=Item name"`
	Description *string  `json:"description,omitempty" jsonschema:"description=Optional free text description"`
	Price       *float64 `json:"price" validate:"required,gte=0" jsonschema:"description=Unit price; must not be negative"`
	IsAvailable *bool    `json:"is_available,omitempty" jsonschema:"description=Whether the item can be ordered (default true)"`
}

// Normalize trims text fields.
func (r *CreateItemRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// Available applies the default of true.
func (r *CreateItemRequest) Available() bool {
	return r.IsAvailable == nil || *r.IsAvailable
}

// UpdateItemRequest replaces only the fields that are set.
type UpdateItemRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	IsAvailable *bool    `json:"is_available,omitempty"`
}

func (r *UpdateItemRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
}

// SearchQuery filters items. Zero values disable a filter.
type SearchQuery struct {
	Name          string   `json:"name,omitempty" jsonschema:"description=Case-insensitive substring of the item name"`
	MinPrice      *float64 `json:"min_price,omitempty" validate:"omitempty,gte=0" jsonschema:"description=Lowest price to include"`
	MaxPrice      *float64 `json:"max_price,omitempty" validate:"omitempty,gte=0" jsonschema:"description=Highest price to include"`
	AvailableOnly bool     `json:"available_only,omitempty" jsonschema:"description=Only return available items"`
}
