package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	intentsservice "intentions/internal/intents/service"
	intentsstore "intentions/internal/intents/store"
	v2service "intentions/internal/intentsv2/service"
	v2store "intentions/internal/intentsv2/store"
	itemsservice "intentions/internal/items/service"
	itemsstore "intentions/internal/items/store"
	"intentions/internal/platform/metrics"
	"intentions/internal/platform/notify"
	usermodels "intentions/internal/users/models"
	usersservice "intentions/internal/users/service"
	usersstore "intentions/internal/users/store"
)

type CatalogSuite struct {
	suite.Suite
	catalog *Catalog
	metrics *metrics.Metrics
	events  *notify.Recorder
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	bus := notify.NewBus()
	s.events = notify.NewRecorder().Attach(bus, usermodels.Kinds...)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.catalog = NewCatalog([][]Tool{
		UserTools(usersservice.New(usersstore.NewInMemory(), bus)),
		ItemTools(itemsservice.New(itemsstore.NewInMemory(), bus)),
		IntentTools(intentsservice.New(intentsstore.NewInMemory(), bus)),
		IntentV2Tools(v2service.New(v2store.NewInMemory(), bus)),
	}, WithMetrics(s.metrics))
}

// call invokes a tool with a fresh argument map.
func (s *CatalogSuite) call(name string, args map[string]any) *mcpgo.CallToolResult {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := s.catalog.Handler(name)(context.Background(), req)
	s.Require().NoError(err)
	return res
}

func resultText(r *mcpgo.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcpgo.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decode[T any](t *testing.T, r *mcpgo.CallToolResult) T {
	t.Helper()
	require.False(t, r.IsError, resultText(r))
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(r)), &v), resultText(r))
	return v
}

func (s *CatalogSuite) TestCatalogNamesAreUniqueAndComplete() {
	var names []string
	for _, t := range s.catalog.Tools() {
		names = append(names, t.Name)

		var schema map[string]any
		s.Require().NoError(json.Unmarshal(t.Schema, &schema), t.Name)
		s.Equal("object", schema["type"], t.Name)
		s.NotEmpty(t.Description, t.Name)
	}
	s.Subset(names, []string{
		"list_users", "get_user", "create_user", "update_user", "delete_user",
		"list_items", "search_items", "get_item", "create_item", "update_item", "delete_item",
		"create_intent", "get_intent", "list_intents", "delete_intent",
		"update_intent_name", "update_intent_description", "update_intent_output_format",
		"update_intent_output_structure", "update_intent_context", "update_intent_constraints",
		"add_fact", "update_fact", "remove_fact",
		"v2_create_intent", "v2_get_intent", "v2_list_intents", "v2_update_intent_name",
		"v2_update_intent_description", "v2_update_articulation", "v2_delete_intent",
		"v2_add_prompt", "v2_add_output", "v2_add_insight",
	})
}

func (s *CatalogSuite) TestSchemaInlinesRequestContract() {
	tool, ok := s.catalog.Lookup("update_user")
	s.Require().True(ok)

	var schema struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	s.Require().NoError(json.Unmarshal(tool.Schema, &schema))
	s.Contains(schema.Properties, "user_id")
	s.Contains(schema.Properties, "username")
	s.Contains(schema.Properties, "email")
	s.Equal([]string{"user_id"}, schema.Required)

	tool, _ = s.catalog.Lookup("v2_add_insight")
	s.Require().NoError(json.Unmarshal(tool.Schema, &schema))
	s.Contains(string(schema.Properties["source_type"]), "sharpening")
	s.ElementsMatch([]string{"intent_id", "content", "source_type"}, schema.Required)
}

func (s *CatalogSuite) TestUserLifecycle() {
	created := decode[usermodels.User](s.T(), s.call("create_user", map[string]any{
		"username": "  ada ",
		"email":    "ada@example.com",
	}))
	s.Equal("ada", created.Username)

	got := decode[usermodels.User](s.T(), s.call("get_user", map[string]any{"user_id": created.ID}))
	s.Equal(created.ID, got.ID)

	updated := decode[usermodels.User](s.T(), s.call("update_user", map[string]any{
		"user_id": created.ID,
		"email":   "lovelace@example.com",
	}))
	s.Equal("ada", updated.Username)
	s.Equal("lovelace@example.com", updated.Email)

	res := s.call("delete_user", map[string]any{"user_id": created.ID})
	s.False(res.IsError)
	s.Equal("User 1 deleted", resultText(res))

	res = s.call("delete_user", map[string]any{"user_id": created.ID})
	s.False(res.IsError)
	s.Equal("User not found", resultText(res))
	s.Equal([]string{usermodels.KindUserCreated, usermodels.KindUserUpdated, usermodels.KindUserDeleted}, s.events.Kinds())
}

func (s *CatalogSuite) TestNotFoundIsSentinelText() {
	cases := map[string]map[string]any{
		"get_user":        {"user_id": 9},
		"get_item":        {"item_id": 9},
		"get_intent":      {"intent_id": 9},
		"v2_get_intent":   {"intent_id": 9},
		"v2_add_prompt":   {"intent_id": 9, "content": "write it"},
		"v2_add_output":   {"prompt_id": 9, "content": "done"},
		"delete_item":     {"item_id": 9},
		"v2_list_outputs": {"prompt_id": 9},
	}
	want := map[string]string{
		"get_user":        "User not found",
		"get_item":        "Item not found",
		"get_intent":      "Intent not found",
		"v2_get_intent":   "Intent not found",
		"v2_add_prompt":   "Intent not found",
		"v2_add_output":   "Prompt not found",
		"delete_item":     "Item not found",
		"v2_list_outputs": "Prompt not found",
	}
	for name, args := range cases {
		res := s.call(name, args)
		s.False(res.IsError, name)
		s.Equal(want[name], resultText(res), name)
	}
	s.Equal(1.0, promtest.ToFloat64(s.metrics.ToolCalls.WithLabelValues("get_user", outcomeNotFound)))
}

func (s *CatalogSuite) TestValidationIsErrorResult() {
	res := s.call("create_user", map[string]any{"username": "ada", "email": "not-an-email"})
	s.True(res.IsError)
	s.Contains(resultText(res), "email must be a valid email address")

	res = s.call("create_item", map[string]any{"name": "   ", "price": 3})
	s.True(res.IsError)
	s.Contains(resultText(res), "name is required")

	res = s.call("search_items", map[string]any{"min_price": 10, "max_price": 1})
	s.True(res.IsError)
	s.Contains(resultText(res), "min_price must not exceed max_price")

	s.Equal(3.0,
		promtest.ToFloat64(s.metrics.ToolCalls.WithLabelValues("create_user", outcomeRejected))+
			promtest.ToFloat64(s.metrics.ToolCalls.WithLabelValues("create_item", outcomeRejected))+
			promtest.ToFloat64(s.metrics.ToolCalls.WithLabelValues("search_items", outcomeRejected)))
}

func (s *CatalogSuite) TestMalformedArguments() {
	res := s.call("get_user", map[string]any{"user_id": "one"})
	s.True(res.IsError)
	s.Contains(resultText(res), "invalid arguments")
}

func (s *CatalogSuite) TestUnknownTool() {
	res := s.catalog.Call(context.Background(), "drop_tables", nil)
	s.True(res.IsError)
	s.Equal("Unknown tool: drop_tables", resultText(res))
}

func (s *CatalogSuite) TestIntentFieldTools() {
	created := decode[map[string]any](s.T(), s.call("create_intent", map[string]any{
		"name":          "Summarize",
		"description":   "Short summary",
		"output_format": "plain text",
		"context":       "legal documents",
	}))
	id := created["id"]

	updated := decode[map[string]any](s.T(), s.call("update_intent_context", map[string]any{
		"intent_id": id,
		"value":     nil,
	}))
	s.Nil(updated["context"])

	res := s.call("update_intent_name", map[string]any{"intent_id": id, "value": "  "})
	s.True(res.IsError)
	s.Contains(resultText(res), "Name cannot be empty")

	fact := decode[map[string]any](s.T(), s.call("add_fact", map[string]any{"intent_id": id, "value": "uses plain words"}))
	factID := fact["id"]

	fact = decode[map[string]any](s.T(), s.call("update_fact", map[string]any{
		"intent_id": id, "fact_id": factID, "value": "uses short words",
	}))
	s.Equal("uses short words", fact["value"])

	s.Equal("Fact 1 deleted", resultText(s.call("remove_fact", map[string]any{"intent_id": id, "fact_id": factID})))
	s.Equal("Fact not found", resultText(s.call("remove_fact", map[string]any{"intent_id": id, "fact_id": factID})))

	s.Equal("Intent 1 deleted", resultText(s.call("delete_intent", map[string]any{"intent_id": id})))
}

func (s *CatalogSuite) TestArticulatedIntentFlow() {
	created := decode[map[string]any](s.T(), s.call("v2_create_intent", map[string]any{
		"name":        "Summarize",
		"description": "Short summary",
		"assumptions": []map[string]any{{"description": "readers are lawyers"}},
	}))
	id := created["id"]
	assumptions := created["assumptions"].([]any)
	s.Require().Len(assumptions, 1)
	s.Equal("uncertain", assumptions[0].(map[string]any)["confidence"])

	renamed := decode[map[string]any](s.T(), s.call("v2_update_intent_name", map[string]any{"intent_id": id, "name": "Digest"}))
	s.Equal("Digest", renamed["name"])

	res := s.call("v2_update_articulation", map[string]any{
		"intent_id":   id,
		"assumptions": []map[string]any{{"description": "x", "confidence": "maybe"}},
	})
	s.True(res.IsError)
	s.Contains(resultText(res), "confidence must be one of: verified, likely, uncertain")

	first := decode[map[string]any](s.T(), s.call("v2_add_prompt", map[string]any{"intent_id": id, "content": "v1"}))
	second := decode[map[string]any](s.T(), s.call("v2_add_prompt", map[string]any{"intent_id": id, "content": "v2"}))
	s.EqualValues(1, first["version"])
	s.EqualValues(2, second["version"])

	output := decode[map[string]any](s.T(), s.call("v2_add_output", map[string]any{"prompt_id": second["id"], "content": "A digest."}))

	insight := decode[map[string]any](s.T(), s.call("v2_add_insight", map[string]any{
		"intent_id":        id,
		"content":          "too terse",
		"source_type":      "output",
		"source_output_id": output["id"],
	}))
	s.Equal("pending", insight["status"])

	outputs := decode[[]map[string]any](s.T(), s.call("v2_list_outputs", map[string]any{"prompt_id": second["id"]}))
	s.Len(outputs, 1)

	s.Equal("Intent 1 deleted", resultText(s.call("v2_delete_intent", map[string]any{"intent_id": id})))
	s.Equal("Prompt not found", resultText(s.call("v2_list_outputs", map[string]any{"prompt_id": second["id"]})))
}

type brokenUsers struct{ UserService }

func (brokenUsers) GetUser(context.Context, int64) (*usermodels.User, error) {
	return nil, errors.New("connection refused")
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := NewCatalog([][]Tool{UserTools(brokenUsers{})}, WithMetrics(m))

	res := c.Call(context.Background(), "get_user", map[string]any{"user_id": 1})
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: internal error", resultText(res))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ToolCalls.WithLabelValues("get_user", outcomeError)))
}

func TestDuplicateToolPanics(t *testing.T) {
	users := UserTools(brokenUsers{})
	assert.Panics(t, func() { NewCatalog([][]Tool{users, users}) })
}
