package models

import (
	"time"

	"intentions/internal/platform/notify"
)

const (
	KindItemCreated = "item.created"
	KindItemUpdated = "item.updated"
	KindItemDeleted = "item.deleted"
)

var Kinds = []string{KindItemCreated, KindItemUpdated, KindItemDeleted}

type ItemChanged struct {
	notify.Event
	ItemID      int64   `json:"item_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
}

func NewItemCreated(i *Item, at time.Time) ItemChanged {
	return itemChanged(KindItemCreated, i, at)
}

func NewItemUpdated(i *Item, at time.Time) ItemChanged {
	return itemChanged(KindItemUpdated, i, at)
}

func itemChanged(kind string, i *Item, at time.Time) ItemChanged {
	return ItemChanged{
		Event:       notify.NewEvent(kind, at),
		ItemID:      i.ID,
		Name:        i.Name,
		Price:       i.Price,
		IsAvailable: i.IsAvailable,
	}
}

type ItemDeleted struct {
	notify.Event
	ItemID int64 `json:"item_id"`
}

func NewItemDeleted(id int64, at time.Time) ItemDeleted {
	return ItemDeleted{Event: notify.NewEvent(KindItemDeleted, at), ItemID: id}
}
