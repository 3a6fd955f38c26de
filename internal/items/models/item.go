package models

import (
	"strings"
	"time"

	"intentions/internal/platform/entity"
)

// Item is a priced catalogue entry.
//
// Invariants:
//   - Name is non-empty after trimming
//   - Price is never negative
type Item struct {
	entity.Meta
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
}

// NewItem validates and constructs an unpersisted item.
func NewItem(name string, description *string, price float64, available bool, now time.Time) (*Item, error) {
	name, err := entity.Required("name", "Name", name)
	if err != nil {
		return nil, err
	}
	if err := entity.NonNegative("price", price); err != nil {
		return nil, err
	}
	return &Item{
		Meta:        entity.NewMeta(now),
		Name:        name,
		Description: entity.Optional(description),
		Price:       price,
		IsAvailable: available,
	}, nil
}

func (i *Item) Clone() *Item {
	out := *i
	out.Description = entity.CloneString(i.Description)
	return &out
}

// Apply returns the replacement for i with the supplied fields changed.
func (i *Item) Apply(req *UpdateItemRequest, now time.Time) (*Item, error) {
	name, description, price, available := i.Name, i.Description, i.Price, i.IsAvailable
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = req.Description
	}
	if req.Price != nil {
		price = *req.Price
	}
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return NewItem(name, description, price, available, now)
}

// Matches reports whether i satisfies every filter set in q.
func (i *Item) Matches(q SearchQuery) bool {
	if q.Name != "" && !strings.Contains(strings.ToLower(i.Name), strings.ToLower(q.Name)) {
		return false
	}
	if q.MinPrice != nil && i.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && i.Price > *q.MaxPrice {
		return false
	}
	if q.AvailableOnly && !i.IsAvailable {
		return false
	}
	return true
}
