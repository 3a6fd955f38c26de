package models

import (
	"time"

	"intentions/internal/platform/entity"
)

const (
	SourceTypeSharpening = "sharpening"
	SourceTypeOutput     = "output"
	SourceTypePrompt     = "prompt"
	SourceTypeAssumption = "assumption"

	StatusPending      = "pending"
	StatusIncorporated = "incorporated"
	StatusDismissed    = "dismissed"
)

// Prompt is one numbered revision of the prompt written for an intent.
type Prompt struct {
	owned
	Content string `json:"content"`
	Version int    `json:"version"`
}

// NewPrompt builds an unversioned prompt; the store assigns the version.
func NewPrompt(content string, now time.Time) (*Prompt, error) {
	content, err := entity.Required("content", "Content", content)
	if err != nil {
		return nil, err
	}
	return &Prompt{owned: owned{Meta: entity.NewMeta(now)}, Content: content}, nil
}

func (p *Prompt) Clone() *Prompt {
	out := *p
	return &out
}

// Output is a result produced by running a prompt. It is owned by the
// prompt, not by the intent.
type Output struct {
	entity.Meta
	PromptID int64  `json:"prompt_id"`
	Content  string `json:"content"`
}

func NewOutput(content string, now time.Time) (*Output, error) {
	content, err := entity.Required("content", "Content", content)
	if err != nil {
		return nil, err
	}
	return &Output{Meta: entity.NewMeta(now), Content: content}, nil
}

func (o *Output) Clone() *Output {
	out := *o
	return &out
}

func (o *Output) OwnerID() int64      { return o.PromptID }
func (o *Output) SetOwnerID(id int64) { o.PromptID = id }

// Insight is a discovery fed back into the intent, optionally traced to the
// output, prompt or assumption it came from. Status defaults to pending.
type Insight struct {
	owned
	Content            string `json:"content"`
	SourceType         string `json:"source_type"`
	SourceOutputID     *int64 `json:"source_output_id"`
	SourcePromptID     *int64 `json:"source_prompt_id"`
	SourceAssumptionID *int64 `json:"source_assumption_id"`
	Status             string `json:"status"`
}

type InsightSource struct {
	Type         string
	OutputID     *int64
	PromptID     *int64
	AssumptionID *int64
}

func NewInsight(content string, src InsightSource, status *string, now time.Time) (*Insight, error) {
	content, err := entity.Required("content", "Content", content)
	if err != nil {
		return nil, err
	}
	sourceType, err := entity.Required("source_type", "Source type", src.Type)
	if err != nil {
		return nil, err
	}
	if err := entity.OneOf("source_type", sourceType,
		SourceTypeSharpening, SourceTypeOutput, SourceTypePrompt, SourceTypeAssumption); err != nil {
		return nil, err
	}
	st, err := enum("status", status, StatusPending, StatusPending, StatusIncorporated, StatusDismissed)
	if err != nil {
		return nil, err
	}
	return &Insight{
		owned:              owned{Meta: entity.NewMeta(now)},
		Content:            content,
		SourceType:         sourceType,
		SourceOutputID:     entity.CloneID(src.OutputID),
		SourcePromptID:     entity.CloneID(src.PromptID),
		SourceAssumptionID: entity.CloneID(src.AssumptionID),
		Status:             st,
	}, nil
}

func (in *Insight) Clone() *Insight {
	out := *in
	out.SourceOutputID = entity.CloneID(in.SourceOutputID)
	out.SourcePromptID = entity.CloneID(in.SourcePromptID)
	out.SourceAssumptionID = entity.CloneID(in.SourceAssumptionID)
	return &out
}
