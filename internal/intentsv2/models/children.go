package models

import (
	"time"

	"intentions/internal/platform/entity"
)

const (
	ConfidenceVerified  = "verified"
	ConfidenceLikely    = "likely"
	ConfidenceUncertain = "uncertain"

	PriorityMustHave   = "must_have"
	PriorityShouldHave = "should_have"
	PriorityNiceToHave = "nice_to_have"

	SourceUserProvided = "user_provided"
	SourceLLMGenerated = "llm_generated"
	SourceFromOutput   = "from_output"
)

// owned is embedded by every record an intent owns directly.
type owned struct {
	entity.Meta
	IntentID int64 `json:"intent_id"`
}

func (o *owned) OwnerID() int64      { return o.IntentID }
func (o *owned) SetOwnerID(id int64) { o.IntentID = id }

// Aspect is a facet of the intent other articulation records may point at.
type Aspect struct {
	owned
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func NewAspect(name string, description *string, now time.Time) (*Aspect, error) {
	name, err := entity.Required("name", "Name", name)
	if err != nil {
		return nil, err
	}
	return &Aspect{
		owned:       owned{Meta: entity.NewMeta(now)},
		Name:        name,
		Description: entity.Optional(description),
	}, nil
}

func (a *Aspect) Clone() *Aspect {
	out := *a
	out.Description = entity.CloneString(a.Description)
	return &out
}

type Input struct {
	owned
	AspectID    *int64  `json:"aspect_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Format      *string `json:"format"`
	Required    bool    `json:"required"`
}

func NewInput(name, description string, aspectID *int64, format *string, required bool, now time.Time) (*Input, error) {
	name, err := entity.Required("name", "Name", name)
	if err != nil {
		return nil, err
	}
	description, err = entity.Required("description", "Description", description)
	if err != nil {
		return nil, err
	}
	return &Input{
		owned:       owned{Meta: entity.NewMeta(now)},
		AspectID:    entity.CloneID(aspectID),
		Name:        name,
		Description: description,
		Format:      entity.Optional(format),
		Required:    required,
	}, nil
}

func (in *Input) Clone() *Input {
	out := *in
	out.AspectID = entity.CloneID(in.AspectID)
	out.Format = entity.CloneString(in.Format)
	return &out
}

type Choice struct {
	owned
	AspectID       *int64  `json:"aspect_id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Options        *string `json:"options"`
	SelectedOption *string `json:"selected_option"`
	Rationale      *string `json:"rationale"`
}

func NewChoice(name, description string, aspectID *int64, options, selected, rationale *string, now time.Time) (*Choice, error) {
	name, err := entity.Required("name", "Name", name)
	if err != nil {
		return nil, err
	}
	description, err = entity.Required("description", "Description", description)
	if err != nil {
		return nil, err
	}
	return &Choice{
		owned:          owned{Meta: entity.NewMeta(now)},
		AspectID:       entity.CloneID(aspectID),
		Name:           name,
		Description:    description,
		Options:        entity.Optional(options),
		SelectedOption: entity.Optional(selected),
		Rationale:      entity.Optional(rationale),
	}, nil
}

func (c *Choice) Clone() *Choice {
	out := *c
	out.AspectID = entity.CloneID(c.AspectID)
	out.Options = entity.CloneString(c.Options)
	out.SelectedOption = entity.CloneString(c.SelectedOption)
	out.Rationale = entity.CloneString(c.Rationale)
	return &out
}

type Pitfall struct {
	owned
	AspectID    *int64  `json:"aspect_id"`
	Description string  `json:"description"`
	Mitigation  *string `json:"mitigation"`
}

func NewPitfall(description string, aspectID *int64, mitigation *string, now time.Time) (*Pitfall, error) {
	description, err := entity.Required("description", "Description", description)
	if err != nil {
		return nil, err
	}
	return &Pitfall{
		owned:       owned{Meta: entity.NewMeta(now)},
		AspectID:    entity.CloneID(aspectID),
		Description: description,
		Mitigation:  entity.Optional(mitigation),
	}, nil
}

func (p *Pitfall) Clone() *Pitfall {
	out := *p
	out.AspectID = entity.CloneID(p.AspectID)
	out.Mitigation = entity.CloneString(p.Mitigation)
	return &out
}

// Assumption is something taken as true while articulating the intent.
// Confidence defaults to uncertain.
type Assumption struct {
	owned
	AspectID    *int64 `json:"aspect_id"`
	Description string `json:"description"`
	Confidence  string `json:"confidence"`
}

func NewAssumption(description string, aspectID *int64, confidence *string, now time.Time) (*Assumption, error) {
	description, err := entity.Required("description", "Description", description)
	if err != nil {
		return nil, err
	}
	c, err := enum("confidence", confidence, ConfidenceUncertain, ConfidenceVerified, ConfidenceLikely, ConfidenceUncertain)
	if err != nil {
		return nil, err
	}
	return &Assumption{
		owned:       owned{Meta: entity.NewMeta(now)},
		AspectID:    entity.CloneID(aspectID),
		Description: description,
		Confidence:  c,
	}, nil
}

func (a *Assumption) Clone() *Assumption {
	out := *a
	out.AspectID = entity.CloneID(a.AspectID)
	return &out
}

// Quality is a success criterion. Priority defaults to should_have.
type Quality struct {
	owned
	AspectID    *int64  `json:"aspect_id"`
	Criterion   string  `json:"criterion"`
	Measurement *string `json:"measurement"`
	Priority    string  `json:"priority"`
}

func NewQuality(criterion string, aspectID *int64, measurement, priority *string, now time.Time) (*Quality, error) {
	criterion, err := entity.Required("criterion", "Criterion", criterion)
	if err != nil {
		return nil, err
	}
	p, err := enum("priority", priority, PriorityShouldHave, PriorityMustHave, PriorityShouldHave, PriorityNiceToHave)
	if err != nil {
		return nil, err
	}
	return &Quality{
		owned:       owned{Meta: entity.NewMeta(now)},
		AspectID:    entity.CloneID(aspectID),
		Criterion:   criterion,
		Measurement: entity.Optional(measurement),
		Priority:    p,
	}, nil
}

func (q *Quality) Clone() *Quality {
	out := *q
	out.AspectID = entity.CloneID(q.AspectID)
	out.Measurement = entity.CloneString(q.Measurement)
	return &out
}

// Example is a sample of the desired output. Source defaults to user_provided.
type Example struct {
	owned
	AspectID    *int64  `json:"aspect_id"`
	Sample      string  `json:"sample"`
	Explanation *string `json:"explanation"`
	Source      string  `json:"source"`
}

func NewExample(sample string, aspectID *int64, explanation, source *string, now time.Time) (*Example, error) {
	sample, err := entity.Required("sample", "Sample", sample)
	if err != nil {
		return nil, err
	}
	src, err := enum("source", source, SourceUserProvided, SourceUserProvided, SourceLLMGenerated, SourceFromOutput)
	if err != nil {
		return nil, err
	}
	return &Example{
		owned:       owned{Meta: entity.NewMeta(now)},
		AspectID:    entity.CloneID(aspectID),
		Sample:      sample,
		Explanation: entity.Optional(explanation),
		Source:      src,
	}, nil
}

func (e *Example) Clone() *Example {
	out := *e
	out.AspectID = entity.CloneID(e.AspectID)
	out.Explanation = entity.CloneString(e.Explanation)
	return &out
}

// enum trims v, substitutes def when it is absent and checks membership.
func enum(field string, v *string, def string, allowed ...string) (string, error) {
	value := def
	if trimmed := entity.Optional(v); trimmed != nil {
		value = *trimmed
	}
	if err := entity.OneOf(field, value, allowed...); err != nil {
		return "", err
	}
	return value, nil
}
