package mcp

import (
	"context"
	"fmt"
	"strings"

	"intentions/internal/intents/models"
)

type IntentService interface {
	CreateIntent(ctx context.Context, req *models.CreateIntentRequest) (*models.Intent, error)
	ListIntents(ctx context.Context) ([]*models.Intent, error)
	GetIntent(ctx context.Context, id int64) (*models.Intent, error)
	UpdateField(ctx context.Context, id int64, field models.Field, value *string) (*models.Intent, error)
	DeleteIntent(ctx context.Context, id int64) (bool, error)
	AddFact(ctx context.Context, intentID int64, req *models.FactRequest) (*models.Fact, error)
	UpdateFactValue(ctx context.Context, intentID, factID int64, req *models.FactRequest) (*models.Fact, error)
	RemoveFact(ctx context.Context, intentID, factID int64) (bool, error)
}

type intentRef struct {
	IntentID int64 `json:"intent_id" jsonschema:"description=ID of the intent"`
}

type fieldUpdate struct {
	IntentID int64   `json:"intent_id" jsonschema:"description=ID of the intent to update"`
	Value    *string `json:"value" jsonschema:"description=New value; null clears an optional field"`
}

type factAdd struct {
	IntentID int64 `json:"intent_id" jsonschema:"description=ID of the intent owning the fact"`
	models.FactRequest
}

type factRef struct {
	IntentID int64 `json:"intent_id" jsonschema:"description=ID of the intent owning the fact"`
	FactID   int64 `json:"fact_id" jsonschema:"description=ID of the fact"`
}

type factUpdate struct {
	IntentID int64 `json:"intent_id" jsonschema:"description=ID of the intent owning the fact"`
	FactID   int64 `json:"fact_id" jsonschema:"description=ID of the fact to update"`
	models.FactRequest
}

// IntentTools exposes the intents family: one update tool per field plus the
// fact operations.
func IntentTools(svc IntentService) []Tool {
	tools := []Tool{
		newTool("create_intent", "Create an intent with a name, a description and an output format.",
			func(ctx context.Context, a *models.CreateIntentRequest) (*models.Intent, error) {
				return svc.CreateIntent(ctx, a)
			}, asJSON[*models.Intent]),
		newTool("get_intent", "Get an intent and its facts by ID.",
			func(ctx context.Context, a *intentRef) (*models.Intent, error) {
				return svc.GetIntent(ctx, a.IntentID)
			}, asJSON[*models.Intent]),
		newTool("list_intents", "List all intents in creation order.",
			func(ctx context.Context, _ *noArgs) ([]*models.Intent, error) {
				return svc.ListIntents(ctx)
			}, asJSON[[]*models.Intent]),
	}
	for _, field := range models.Fields {
		tools = append(tools, fieldTool(svc, field))
	}
	return append(tools,
		newTool("delete_intent", "Delete an intent and all of its facts.",
			func(ctx context.Context, a *intentRef) (string, error) {
				ok, err := svc.DeleteIntent(ctx, a.IntentID)
				return confirm(ok, err, "Intent", a.IntentID)
			}, asText),
		newTool("add_fact", "Add a fact to an intent.",
			func(ctx context.Context, a *factAdd) (*models.Fact, error) {
				return svc.AddFact(ctx, a.IntentID, &a.FactRequest)
			}, asJSON[*models.Fact]),
		newTool("update_fact", "Replace the value of a fact.",
			func(ctx context.Context, a *factUpdate) (*models.Fact, error) {
				return svc.UpdateFactValue(ctx, a.IntentID, a.FactID, &a.FactRequest)
			}, asJSON[*models.Fact]),
		newTool("remove_fact", "Remove a fact from an intent.",
			func(ctx context.Context, a *factRef) (string, error) {
				ok, err := svc.RemoveFact(ctx, a.IntentID, a.FactID)
				return confirm(ok, err, "Fact", a.FactID)
			}, asText),
	)
}

func fieldTool(svc IntentService, field models.Field) Tool {
	desc := fmt.Sprintf("Update the %s of an intent.", strings.ToLower(field.Label()))
	if !field.Required() {
		desc += " A null value clears it."
	}
	return newTool("update_intent_"+field.Key(), desc,
		func(ctx context.Context, a *fieldUpdate) (*models.Intent, error) {
			return svc.UpdateField(ctx, a.IntentID, field, a.Value)
		}, asJSON[*models.Intent])
}
