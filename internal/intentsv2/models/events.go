package models

import (
	"time"

	"intentions/internal/platform/notify"
)

// Kinds are namespaced so V1 and V2 intents can share one bus.
const (
	KindIntentCreated       = "v2.intent.created"
	KindIntentUpdated       = "v2.intent.updated"
	KindIntentDeleted       = "v2.intent.deleted"
	KindArticulationUpdated = "v2.intent.articulation_updated"
	KindPromptCreated       = "v2.prompt.created"
	KindOutputCreated       = "v2.output.created"
	KindInsightCreated      = "v2.insight.created"
)

const (
	eventNamespace     = "v2."
	childAddedSuffix   = ".added"
	childRemovedSuffix = ".removed"
)

// Kinds lists every notification kind this package publishes.
var Kinds = func() []string {
	kinds := []string{
		KindIntentCreated, KindIntentUpdated, KindIntentDeleted, KindArticulationUpdated,
		KindPromptCreated, KindOutputCreated, KindInsightCreated,
	}
	for _, k := range ArticulationKinds {
		kinds = append(kinds, ChildAddedKind(k), ChildRemovedKind(k))
	}
	return kinds
}()

func ChildAddedKind(k Kind) string   { return eventNamespace + k.Singular() + childAddedSuffix }
func ChildRemovedKind(k Kind) string { return eventNamespace + k.Singular() + childRemovedSuffix }

type IntentCreated struct {
	notify.Event
	IntentID    int64  `json:"intent_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewIntentCreated(i *Intent, at time.Time) IntentCreated {
	return IntentCreated{
		Event:       notify.NewEvent(KindIntentCreated, at),
		IntentID:    i.ID,
		Name:        i.Name,
		Description: i.Description,
	}
}

type IntentUpdated struct {
	notify.Event
	IntentID     int64  `json:"intent_id"`
	FieldUpdated string `json:"field_updated"`
}

func NewNameUpdated(id int64, at time.Time) IntentUpdated {
	return IntentUpdated{Event: notify.NewEvent(KindIntentUpdated, at), IntentID: id, FieldUpdated: "name"}
}

func NewDescriptionUpdated(id int64, at time.Time) IntentUpdated {
	return IntentUpdated{Event: notify.NewEvent(KindIntentUpdated, at), IntentID: id, FieldUpdated: "description"}
}

// IntentRef is published for changes that carry nothing beyond the intent id.
type IntentRef struct {
	notify.Event
	IntentID int64 `json:"intent_id"`
}

func NewIntentDeleted(id int64, at time.Time) IntentRef {
	return IntentRef{Event: notify.NewEvent(KindIntentDeleted, at), IntentID: id}
}

func NewArticulationUpdated(id int64, at time.Time) IntentRef {
	return IntentRef{Event: notify.NewEvent(KindArticulationUpdated, at), IntentID: id}
}

// ChildChanged is published when an articulation record is added or removed.
type ChildChanged struct {
	notify.Event
	IntentID  int64  `json:"intent_id"`
	ChildKind string `json:"child_kind"`
	ChildID   int64  `json:"child_id"`
}

func NewChildAdded(k Kind, intentID, childID int64, at time.Time) ChildChanged {
	return ChildChanged{Event: notify.NewEvent(ChildAddedKind(k), at), IntentID: intentID, ChildKind: k.Singular(), ChildID: childID}
}

func NewChildRemoved(k Kind, intentID, childID int64, at time.Time) ChildChanged {
	return ChildChanged{Event: notify.NewEvent(ChildRemovedKind(k), at), IntentID: intentID, ChildKind: k.Singular(), ChildID: childID}
}

type PromptCreated struct {
	notify.Event
	IntentID int64 `json:"intent_id"`
	PromptID int64 `json:"prompt_id"`
	Version  int   `json:"version"`
}

func NewPromptCreated(p *Prompt, at time.Time) PromptCreated {
	return PromptCreated{Event: notify.NewEvent(KindPromptCreated, at), IntentID: p.IntentID, PromptID: p.ID, Version: p.Version}
}

type OutputCreated struct {
	notify.Event
	PromptID int64 `json:"prompt_id"`
	OutputID int64 `json:"output_id"`
}

func NewOutputCreated(o *Output, at time.Time) OutputCreated {
	return OutputCreated{Event: notify.NewEvent(KindOutputCreated, at), PromptID: o.PromptID, OutputID: o.ID}
}

type InsightCreated struct {
	notify.Event
	IntentID  int64 `json:"intent_id"`
	InsightID int64 `json:"insight_id"`
}

func NewInsightCreated(in *Insight, at time.Time) InsightCreated {
	return InsightCreated{Event: notify.NewEvent(KindInsightCreated, at), IntentID: in.IntentID, InsightID: in.ID}
}
