package models

import "strings"

type CreateIntentRequest struct {
	Name            string  `json:"name" validate:"required,notblank" jsonschema:"description=Intent name"`
	Description     string  `json:"description" validate:"required,notblank" jsonschema:"description=What the intent should achieve"`
	OutputFormat    string  `json:"output_format" validate:"required,notblank" jsonschema:"description=Output format such as JSON or XML or plain text"`
	OutputStructure *string `json:"output_structure,omitempty" jsonschema:"description=Expected structure of the output"`
	Context         *string `json:"context,omitempty" jsonschema:"description=Background the intent operates in"`
	Constraints     *string `json:"constraints,omitempty" jsonschema:"description=Limits the output must respect"`
}

func (r *CreateIntentRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.OutputFormat = strings.TrimSpace(r.OutputFormat)
}

// FactRequest carries the value of a new or updated fact.
type FactRequest struct {
	Value string `json:"value" validate:"required,notblank" jsonschema:"description=Fact value"`
}

func (r *FactRequest) Normalize() {
	r.Value = strings.TrimSpace(r.Value)
}
