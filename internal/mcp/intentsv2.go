package mcp

import (
	"context"

	"intentions/internal/intentsv2/models"
)

type IntentV2Service interface {
	CreateIntent(ctx context.Context, req *models.CreateIntentRequest) (*models.Intent, error)
	ListIntents(ctx context.Context) ([]*models.Intent, error)
	GetIntent(ctx context.Context, id int64) (*models.Intent, error)
	UpdateName(ctx context.Context, id int64, req *models.TextRequest) (*models.Intent, error)
	UpdateDescription(ctx context.Context, id int64, req *models.TextRequest) (*models.Intent, error)
	UpdateArticulation(ctx context.Context, id int64, req *models.ArticulationRequest) (*models.Intent, error)
	DeleteIntent(ctx context.Context, id int64) (bool, error)
	AddPrompt(ctx context.Context, intentID int64, req *models.PromptRequest) (*models.Prompt, error)
	ListOutputs(ctx context.Context, promptID int64) ([]*models.Output, error)
	AddOutput(ctx context.Context, promptID int64, req *models.OutputRequest) (*models.Output, error)
	AddInsight(ctx context.Context, intentID int64, req *models.InsightRequest) (*models.Insight, error)
}

type v2IntentRef struct {
	IntentID int64 `json:"intent_id" jsonschema:"description=ID of the intent"`
}

type v2Rename struct {
	IntentID int64  `json:"intent_id" jsonschema:"description=ID of the intent to update"`
	Name     string `json:"name" jsonschema:"description=New intent name"`
}

type v2Redescribe struct {
	IntentID    int64  `json:"intent_id" jsonschema:"description=ID of the intent to update"`
	Description string `json:"description" jsonschema:"description=New intent description"`
}

type v2Articulation struct {
	IntentID int64 `json:"intent_id" jsonschema:"description=ID of the intent to articulate"`
	models.ArticulationRequest
}

type v2PromptAdd struct {
	IntentID int64 `json:"intent_id" jsonschema:"description=ID of the intent the prompt is for"`
	models.PromptRequest
}

type v2PromptRef struct {
	PromptID int64 `json:"prompt_id" jsonschema:"description=ID of the prompt"`
}

type v2OutputAdd struct {
	PromptID int64 `json:"prompt_id" jsonschema:"description=ID of the prompt that produced the output"`
	models.OutputRequest
}

type v2InsightAdd struct {
	IntentID int64 `json:"intent_id" jsonschema:"description=ID of the intent the insight refines"`
	models.InsightRequest
}

// IntentV2Tools exposes the articulated intents family. Names carry a v2_
// prefix, mirroring the /v2 HTTP routes.
func IntentV2Tools(svc IntentV2Service) []Tool {
	return []Tool{
		newTool("v2_create_intent", "Create an articulated intent, optionally with its aspects, inputs, choices, pitfalls, assumptions, qualities and examples.",
			func(ctx context.Context, a *models.CreateIntentRequest) (*models.Intent, error) {
				return svc.CreateIntent(ctx, a)
			}, asJSON[*models.Intent]),
		newTool("v2_get_intent", "Get an articulated intent with all of its records by ID.",
			func(ctx context.Context, a *v2IntentRef) (*models.Intent, error) {
				return svc.GetIntent(ctx, a.IntentID)
			}, asJSON[*models.Intent]),
		newTool("v2_list_intents", "List all articulated intents in creation order.",
			func(ctx context.Context, _ *noArgs) ([]*models.Intent, error) {
				return svc.ListIntents(ctx)
			}, asJSON[[]*models.Intent]),
		newTool("v2_update_intent_name", "Rename an articulated intent.",
			func(ctx context.Context, a *v2Rename) (*models.Intent, error) {
				return svc.UpdateName(ctx, a.IntentID, &models.TextRequest{Value: a.Name})
			}, asJSON[*models.Intent]),
		newTool("v2_update_intent_description", "Replace the description of an articulated intent.",
			func(ctx context.Context, a *v2Redescribe) (*models.Intent, error) {
				return svc.UpdateDescription(ctx, a.IntentID, &models.TextRequest{Value: a.Description})
			}, asJSON[*models.Intent]),
		newTool("v2_update_articulation", "Replace the listed articulation records of an intent. Lists that are omitted are left untouched; an empty list clears that kind.",
			func(ctx context.Context, a *v2Articulation) (*models.Intent, error) {
				return svc.UpdateArticulation(ctx, a.IntentID, &a.ArticulationRequest)
			}, asJSON[*models.Intent]),
		newTool("v2_delete_intent", "Delete an articulated intent with its records, prompts, outputs and insights.",
			func(ctx context.Context, a *v2IntentRef) (string, error) {
				ok, err := svc.DeleteIntent(ctx, a.IntentID)
				return confirm(ok, err, "Intent", a.IntentID)
			}, asText),
		newTool("v2_add_prompt", "Store the next prompt version for an intent.",
			func(ctx context.Context, a *v2PromptAdd) (*models.Prompt, error) {
				return svc.AddPrompt(ctx, a.IntentID, &a.PromptRequest)
			}, asJSON[*models.Prompt]),
		newTool("v2_list_outputs", "List the outputs recorded for a prompt.",
			func(ctx context.Context, a *v2PromptRef) ([]*models.Output, error) {
				return svc.ListOutputs(ctx, a.PromptID)
			}, asJSON[[]*models.Output]),
		newTool("v2_add_output", "Record an output produced by a prompt.",
			func(ctx context.Context, a *v2OutputAdd) (*models.Output, error) {
				return svc.AddOutput(ctx, a.PromptID, &a.OutputRequest)
			}, asJSON[*models.Output]),
		newTool("v2_add_insight", "Record an insight about an intent and where it came from.",
			func(ctx context.Context, a *v2InsightAdd) (*models.Insight, error) {
				return svc.AddInsight(ctx, a.IntentID, &a.InsightRequest)
			}, asJSON[*models.Insight]),
	}
}
