package models

import (
	"time"

	"intentions/internal/platform/entity"
	dErrors "intentions/pkg/domain-errors"
)

// Intent describes a task to be performed and the shape of its output.
// Facts are owned: they are removed together with the intent.
//
// Invariants:
//   - Name, Description and OutputFormat are non-empty after trimming
//   - optional text fields are nil rather than blank
type Intent struct {
	entity.Meta
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	OutputFormat    string  `json:"output_format"`
	OutputStructure *string `json:"output_structure"`
	Context         *string `json:"context"`
	Constraints     *string `json:"constraints"`
	Facts           []*Fact `json:"facts"`
}

// NewIntent validates and constructs an unpersisted intent without facts.
func NewIntent(name, description, outputFormat string, outputStructure, context, constraints *string, now time.Time) (*Intent, error) {
	i := &Intent{
		Meta:            entity.NewMeta(now),
		Name:            name,
		Description:     description,
		OutputFormat:    outputFormat,
		OutputStructure: outputStructure,
		Context:         context,
		Constraints:     constraints,
		Facts:           []*Fact{},
	}
	if err := i.normalize(); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Intent) normalize() error {
	var err error
	if i.Name, err = entity.Required("name", "Name", i.Name); err != nil {
		return err
	}
	if i.Description, err = entity.Required("description", "Description", i.Description); err != nil {
		return err
	}
	if i.OutputFormat, err = entity.Required("output_format", "Output format", i.OutputFormat); err != nil {
		return err
	}
	i.OutputStructure = entity.Optional(i.OutputStructure)
	i.Context = entity.Optional(i.Context)
	i.Constraints = entity.Optional(i.Constraints)
	return nil
}

func (i *Intent) Clone() *Intent {
	out := *i
	out.OutputStructure = entity.CloneString(i.OutputStructure)
	out.Context = entity.CloneString(i.Context)
	out.Constraints = entity.CloneString(i.Constraints)
	out.Facts = make([]*Fact, len(i.Facts))
	for n, f := range i.Facts {
		out.Facts[n] = f.Clone()
	}
	return &out
}

// With returns a copy of i with field set to value. Required fields reject a
// nil or blank value; optional fields treat both as clearing.
func (i *Intent) With(field Field, value *string) (*Intent, error) {
	if field.Required() && value == nil {
		return nil, dErrors.Validation(field.Key(), field.Label()+" cannot be empty")
	}
	out := i.Clone()
	switch field {
	case FieldName:
		out.Name = *value
	case FieldDescription:
		out.Description = *value
	case FieldOutputFormat:
		out.OutputFormat = *value
	case FieldOutputStructure:
		out.OutputStructure = entity.CloneString(value)
	case FieldContext:
		out.Context = entity.CloneString(value)
	case FieldConstraints:
		out.Constraints = entity.CloneString(value)
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown intent field "+string(field))
	}
	if err := out.normalize(); err != nil {
		return nil, err
	}
	return out, nil
}

// Fact is a piece of knowledge attached to one intent.
type Fact struct {
	entity.Meta
	IntentID int64  `json:"intent_id"`
	Value    string `json:"value"`
}

// NewFact validates and constructs an unattached fact.
func NewFact(value string, now time.Time) (*Fact, error) {
	value, err := entity.Required("value", "Value", value)
	if err != nil {
		return nil, err
	}
	return &Fact{Meta: entity.NewMeta(now), Value: value}, nil
}

func (f *Fact) Clone() *Fact {
	out := *f
	return &out
}

func (f *Fact) OwnerID() int64      { return f.IntentID }
func (f *Fact) SetOwnerID(id int64) { f.IntentID = id }
