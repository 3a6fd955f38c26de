package models

import (
	"strings"
	"time"
)

type AspectRequest struct {
	Name        string  `json:"name" validate:"required,notblank" jsonschema:"description=Aspect name"`
	Description *string `json:"description,omitempty" jsonschema:"description=What the aspect covers"`
}

func (r AspectRequest) Build(now time.Time) (*Aspect, error) {
	return NewAspect(r.Name, r.Description, now)
}

type InputRequest struct {
	Name        string  `json:"name" validate:"required,notblank" jsonschema:"description=Input name"`
	Description string  `json:"description" validate:"required,notblank" jsonschema:"description=What the input carries"`
	AspectID    *int64  `json:"aspect_id,omitempty" jsonschema:"description=Aspect of this intent the input belongs to"`
	Format      *string `json:"format,omitempty" jsonschema:"description=Expected format of the input"`
	Required    *bool   `json:"required,omitempty" jsonschema:"description=Whether the input must be supplied (default true)"`
}

func (r InputRequest) Build(now time.Time) (*Input, error) {
	required := true
	if r.Required != nil {
		required = *r.Required
	}
	return NewInput(r.Name, r.Description, r.AspectID, r.Format, required, now)
}

type ChoiceRequest struct {
	Name           string  `json:"name" validate:"required,notblank" jsonschema:"description=Decision to be made"`
	Description    string  `json:"description" validate:"required,notblank" jsonschema:"description=Why the decision matters"`
	AspectID       *int64  `json:"aspect_id,omitempty" jsonschema:"description=Aspect of this intent the choice belongs to"`
	Options        *string `json:"options,omitempty" jsonschema:"description=Options under consideration"`
	SelectedOption *string `json:"selected_option,omitempty" jsonschema:"description=Option taken"`
	Rationale      *string `json:"rationale,omitempty" jsonschema:"description=Reason for the selected option"`
}

func (r ChoiceRequest) Build(now time.Time) (*Choice, error) {
	return NewChoice(r.Name, r.Description, r.AspectID, r.Options, r.SelectedOption, r.Rationale, now)
}

type PitfallRequest struct {
	Description string  `json:"description" validate:"required,notblank" jsonschema:"description=What can go wrong"`
	AspectID    *int64  `json:"aspect_id,omitempty" jsonschema:"description=Aspect of this intent the pitfall belongs to"`
	Mitigation  *string `json:"mitigation,omitempty" jsonschema:"description=How to avoid it"`
}

func (r PitfallRequest) Build(now time.Time) (*Pitfall, error) {
	return NewPitfall(r.Description, r.AspectID, r.Mitigation, now)
}

type AssumptionRequest struct {
	Description string  `json:"description" validate:"required,notblank" jsonschema:"description=What is assumed"`
	AspectID    *int64  `json:"aspect_id,omitempty" jsonschema:"description=Aspect of this intent the assumption belongs to"`
	Confidence  *string `json:"confidence,omitempty" validate:"omitempty,oneof=verified likely uncertain" jsonschema:"enum=verified,enum=likely,enum=uncertain,description=Confidence in the assumption (default uncertain)"`
}

func (r AssumptionRequest) Build(now time.Time) (*Assumption, error) {
	return NewAssumption(r.Description, r.AspectID, r.Confidence, now)
}

type QualityRequest struct {
	Criterion   string  `json:"criterion" validate:"required,notblank" jsonschema:"description=Success criterion"`
	AspectID    *int64  `json:"aspect_id,omitempty" jsonschema:"description=Aspect of this intent the criterion belongs to"`
	Measurement *string `json:"measurement,omitempty" jsonschema:"description=How the criterion is measured"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=must_have should_have nice_to_have" jsonschema:"enum=must_have,enum=should_have,enum=nice_to_have,description=Priority (default should_have)"`
}

func (r QualityRequest) Build(now time.Time) (*Quality, error) {
	return NewQuality(r.Criterion, r.AspectID, r.Measurement, r.Priority, now)
}

type ExampleRequest struct {
	Sample      string  `json:"sample" validate:"required,notblank" jsonschema:"description=Sample of the desired output"`
	AspectID    *int64  `json:"aspect_id,omitempty" jsonschema:"description=Aspect of this intent the example belongs to"`
	Explanation *string `json:"explanation,omitempty" jsonschema:"description=What the sample illustrates"`
	Source      *string `json:"source,omitempty" validate:"omitempty,oneof=user_provided llm_generated from_output" jsonschema:"enum=user_provided,enum=llm_generated,enum=from_output,description=Where the sample came from (default user_provided)"`
}

func (r ExampleRequest) Build(now time.Time) (*Example, error) {
	return NewExample(r.Sample, r.AspectID, r.Explanation, r.Source, now)
}

// ArticulationRequest carries replacement child lists. An absent list leaves
// that kind untouched; an empty list clears it.
type ArticulationRequest struct {
	Aspects     *[]AspectRequest     `json:"aspects,omitempty" validate:"omitempty,dive" jsonschema:"description=Replacement aspects"`
	Inputs      *[]InputRequest      `json:"inputs,omitempty" validate:"omitempty,dive" jsonschema:"description=Replacement inputs"`
	Choices     *[]ChoiceRequest     `json:"choices,omitempty" validate:"omitempty,dive" jsonschema:"description=Replacement choices"`
	Pitfalls    *[]PitfallRequest    `json:"pitfalls,omitempty" validate:"omitempty,dive" jsonschema:"description=Replacement pitfalls"`
	Assumptions *[]AssumptionRequest `json:"assumptions,omitempty" validate:"omitempty,dive" jsonschema:"description=Replacement assumptions"`
	Qualities   *[]QualityRequest    `json:"qualities,omitempty" validate:"omitempty,dive" jsonschema:"description=Replacement qualities"`
	Examples    *[]ExampleRequest    `json:"examples,omitempty" validate:"omitempty,dive" jsonschema:"description=Replacement examples"`
}

// Build turns the request into store drafts. Absent lists stay nil; supplied
// lists are non-nil even when empty.
func (r *ArticulationRequest) Build(now time.Time) (Articulation, error) {
	var (
		a   Articulation
		err error
	)
	if a.Aspects, err = buildAll[AspectRequest, *Aspect](r.Aspects, now); err != nil {
		return a, err
	}
	if a.Inputs, err = buildAll[InputRequest, *Input](r.Inputs, now); err != nil {
		return a, err
	}
	if a.Choices, err = buildAll[ChoiceRequest, *Choice](r.Choices, now); err != nil {
		return a, err
	}
	if a.Pitfalls, err = buildAll[PitfallRequest, *Pitfall](r.Pitfalls, now); err != nil {
		return a, err
	}
	if a.Assumptions, err = buildAll[AssumptionRequest, *Assumption](r.Assumptions, now); err != nil {
		return a, err
	}
	if a.Qualities, err = buildAll[QualityRequest, *Quality](r.Qualities, now); err != nil {
		return a, err
	}
	a.Examples, err = buildAll[ExampleRequest, *Example](r.Examples, now)
	return a, err
}

type builder[T any] interface {
	Build(now time.Time) (T, error)
}

func buildAll[R builder[T], T any](reqs *[]R, now time.Time) ([]T, error) {
	if reqs == nil {
		return nil, nil
	}
	out := make([]T, 0, len(*reqs))
	for _, r := range *reqs {
		v, err := r.Build(now)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CreateIntentRequest creates an intent, optionally with its first
// articulation.
type CreateIntentRequest struct {
	Name        string `json:"name" validate:"required,notblank" jsonschema:"description=Intent name"`
	Description string `json:"description" validate:"required,notblank" jsonschema:"description=What the intent should achieve"`

	Aspects     []AspectRequest     `json:"aspects,omitempty" validate:"dive" jsonschema:"description=Initial aspects"`
	Inputs      []InputRequest      `json:"inputs,omitempty" validate:"dive" jsonschema:"description=Initial inputs"`
	Choices     []ChoiceRequest     `json:"choices,omitempty" validate:"dive" jsonschema:"description=Initial choices"`
	Pitfalls    []PitfallRequest    `json:"pitfalls,omitempty" validate:"dive" jsonschema:"description=Initial pitfalls"`
	Assumptions []AssumptionRequest `json:"assumptions,omitempty" validate:"dive" jsonschema:"description=Initial assumptions"`
	Qualities   []QualityRequest    `json:"qualities,omitempty" validate:"dive" jsonschema:"description=Initial qualities"`
	Examples    []ExampleRequest    `json:"examples,omitempty" validate:"dive" jsonschema:"description=Initial examples"`
}

// Articulation returns the initial lists as an articulation write.
func (r *CreateIntentRequest) Articulation() *ArticulationRequest {
	return &ArticulationRequest{
		Aspects:     &r.Aspects,
		Inputs:      &r.Inputs,
		Choices:     &r.Choices,
		Pitfalls:    &r.Pitfalls,
		Assumptions: &r.Assumptions,
		Qualities:   &r.Qualities,
		Examples:    &r.Examples,
	}
}

func (r *CreateIntentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

// TextRequest carries a single replacement text: a name, a description, or
// prompt or output content.
type TextRequest struct {
	Value string `json:"value" validate:"required,notblank" jsonschema:"description=New value"`
}

type PromptRequest struct {
	Content string `json:"content" validate:"required,notblank" jsonschema:"description=Prompt text"`
}

type OutputRequest struct {
	Content string `json:"content" validate:"required,notblank" jsonschema:"description=Output produced by the prompt"`
}

type InsightRequest struct {
	Content            string  `json:"content" validate:"required,notblank" jsonschema:"description=What was learned"`
	SourceType         string  `json:"source_type" validate:"required,oneof=sharpening output prompt assumption" jsonschema:"enum=sharpening,enum=output,enum=prompt,enum=assumption,description=Where the insight came from"`
	SourceOutputID     *int64  `json:"source_output_id,omitempty" jsonschema:"description=Output the insight came from"`
	SourcePromptID     *int64  `json:"source_prompt_id,omitempty" jsonschema:"description=Prompt the insight came from"`
	SourceAssumptionID *int64  `json:"source_assumption_id,omitempty" jsonschema:"description=Assumption the insight came from"`
	Status             *string `json:"status,omitempty" validate:"omitempty,oneof=pending incorporated dismissed" jsonschema:"enum=pending,enum=incorporated,enum=dismissed,description=Review status (default pending)"`
}

func (r *InsightRequest) Build(now time.Time) (*Insight, error) {
	return NewInsight(r.Content, InsightSource{
		Type:         strings.TrimSpace(r.SourceType),
		OutputID:     r.SourceOutputID,
		PromptID:     r.SourcePromptID,
		AssumptionID: r.SourceAssumptionID,
	}, r.Status, now)
}
