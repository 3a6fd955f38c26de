// Package models holds the articulated intent: an intent that owns aspects,
// inputs, choices, pitfalls, assumptions, qualities and examples, plus the
// prompts written for it, their outputs, and the insights fed back.
package models

import (
	"time"

	"intentions/internal/platform/entity"
)

// Intent is the root of the articulation. Child slices are populated on
// read and never nil.
type Intent struct {
	entity.Meta
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Aspects     []*Aspect     `json:"aspects"`
	Inputs      []*Input      `json:"inputs"`
	Choices     []*Choice     `json:"choices"`
	Pitfalls    []*Pitfall    `json:"pitfalls"`
	Assumptions []*Assumption `json:"assumptions"`
	Qualities   []*Quality    `json:"qualities"`
	Examples    []*Example    `json:"examples"`
	Prompts     []*Prompt     `json:"prompts"`
	Insights    []*Insight    `json:"insights"`
}

// NewIntent validates and constructs an unpersisted intent with no children.
func NewIntent(name, description string, now time.Time) (*Intent, error) {
	name, err := entity.Required("name", "Name", name)
	if err != nil {
		return nil, err
	}
	description, err = entity.Required("description", "Description", description)
	if err != nil {
		return nil, err
	}
	i := &Intent{Meta: entity.NewMeta(now), Name: name, Description: description}
	i.ensureSlices()
	return i, nil
}

func (i *Intent) ensureSlices() {
	if i.Aspects == nil {
		i.Aspects = []*Aspect{}
	}
	if i.Inputs == nil {
		i.Inputs = []*Input{}
	}
	if i.Choices == nil {
		i.Choices = []*Choice{}
	}
	if i.Pitfalls == nil {
		i.Pitfalls = []*Pitfall{}
	}
	if i.Assumptions == nil {
		i.Assumptions = []*Assumption{}
	}
	if i.Qualities == nil {
		i.Qualities = []*Quality{}
	}
	if i.Examples == nil {
		i.Examples = []*Example{}
	}
	if i.Prompts == nil {
		i.Prompts = []*Prompt{}
	}
	if i.Insights == nil {
		i.Insights = []*Insight{}
	}
}

// Clone copies the intent and every child it carries.
func (i *Intent) Clone() *Intent {
	out := *i
	out.Aspects = cloneAll(i.Aspects)
	out.Inputs = cloneAll(i.Inputs)
	out.Choices = cloneAll(i.Choices)
	out.Pitfalls = cloneAll(i.Pitfalls)
	out.Assumptions = cloneAll(i.Assumptions)
	out.Qualities = cloneAll(i.Qualities)
	out.Examples = cloneAll(i.Examples)
	out.Prompts = cloneAll(i.Prompts)
	out.Insights = cloneAll(i.Insights)
	return &out
}

// Bare returns a copy without children, as stored in the intents table.
func (i *Intent) Bare() *Intent {
	return &Intent{Meta: i.Meta, Name: i.Name, Description: i.Description}
}

// Rename returns a copy carrying a new name.
func (i *Intent) Rename(name string) (*Intent, error) {
	name, err := entity.Required("name", "Name", name)
	if err != nil {
		return nil, err
	}
	out := i.Bare()
	out.Name = name
	return out, nil
}

// Redescribe returns a copy carrying a new description.
func (i *Intent) Redescribe(description string) (*Intent, error) {
	description, err := entity.Required("description", "Description", description)
	if err != nil {
		return nil, err
	}
	out := i.Bare()
	out.Description = description
	return out, nil
}

// HasPrompt reports whether the intent owns the prompt.
func (i *Intent) HasPrompt(id int64) bool {
	for _, p := range i.Prompts {
		if p.ID == id {
			return true
		}
	}
	return false
}

// HasAspect reports whether the intent owns the aspect.
func (i *Intent) HasAspect(id int64) bool {
	for _, a := range i.Aspects {
		if a.ID == id {
			return true
		}
	}
	return false
}

// HasAssumption reports whether the intent owns the assumption.
func (i *Intent) HasAssumption(id int64) bool {
	for _, a := range i.Assumptions {
		if a.ID == id {
			return true
		}
	}
	return false
}

func cloneAll[T entity.Entity[T]](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for n, v := range in {
		out[n] = v.Clone()
	}
	return out
}
