package models

import (
	"time"

	"intentions/internal/platform/notify"
)

const (
	KindIntentCreated = "intent.created"
	KindIntentUpdated = "intent.updated"
	KindIntentDeleted = "intent.deleted"
	KindFactAdded     = "fact.added"
	KindFactUpdated   = "fact.updated"
	KindFactRemoved   = "fact.removed"
)

var Kinds = []string{
	KindIntentCreated, KindIntentUpdated, KindIntentDeleted,
	KindFactAdded, KindFactUpdated, KindFactRemoved,
}

type IntentCreated struct {
	notify.Event
	IntentID     int64  `json:"intent_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	OutputFormat string `json:"output_format"`
}

func NewIntentCreated(i *Intent, at time.Time) IntentCreated {
	return IntentCreated{
		Event:        notify.NewEvent(KindIntentCreated, at),
		IntentID:     i.ID,
		Name:         i.Name,
		Description:  i.Description,
		OutputFormat: i.OutputFormat,
	}
}

type IntentUpdated struct {
	notify.Event
	IntentID     int64  `json:"intent_id"`
	FieldUpdated string `json:"field_updated"`
}

func NewIntentUpdated(id int64, field Field, at time.Time) IntentUpdated {
	return IntentUpdated{Event: notify.NewEvent(KindIntentUpdated, at), IntentID: id, FieldUpdated: field.Key()}
}

type IntentDeleted struct {
	notify.Event
	IntentID int64 `json:"intent_id"`
}

func NewIntentDeleted(id int64, at time.Time) IntentDeleted {
	return IntentDeleted{Event: notify.NewEvent(KindIntentDeleted, at), IntentID: id}
}

type FactAdded struct {
	notify.Event
	IntentID int64  `json:"intent_id"`
	FactID   int64  `json:"fact_id"`
	Value    string `json:"value"`
}

func NewFactAdded(f *Fact, at time.Time) FactAdded {
	return FactAdded{Event: notify.NewEvent(KindFactAdded, at), IntentID: f.IntentID, FactID: f.ID, Value: f.Value}
}

// FactChanged is published when a fact's value is replaced or the fact is removed.
type FactChanged struct {
	notify.Event
	IntentID int64 `json:"intent_id"`
	FactID   int64 `json:"fact_id"`
}

func NewFactUpdated(intentID, factID int64, at time.Time) FactChanged {
	return FactChanged{Event: notify.NewEvent(KindFactUpdated, at), IntentID: intentID, FactID: factID}
}

func NewFactRemoved(intentID, factID int64, at time.Time) FactChanged {
	return FactChanged{Event: notify.NewEvent(KindFactRemoved, at), IntentID: intentID, FactID: factID}
}
