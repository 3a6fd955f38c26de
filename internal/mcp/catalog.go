// Package mcp republishes the service operations of every entity family as
// tools over the Model Context Protocol.
//
// The Catalog is a lookup table from tool name to a Tool carrying its argument
// contract (a JSON Schema reflected from the argument struct), the service call
// it dispatches to, and how the result is rendered as text. Adding a tool is
// adding an entry; Call never switches on names.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"intentions/internal/platform/metrics"
	dErrors "intentions/pkg/domain-errors"
	"intentions/pkg/requestcontext"
)

const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeRejected = "rejected"
	outcomeError    = "error"
	outcomeUnknown  = "unknown_tool"
)

// Tool is one catalog entry.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage

	invoke func(ctx context.Context, args any) (string, error)
}

// Definition is the protocol description advertised by tools/list.
func (t Tool) Definition() mcpgo.Tool {
	return mcpgo.NewToolWithRawSchema(t.Name, t.Description, t.Schema)
}

var reflector = &jsonschema.Reflector{
	ExpandedStruct: true,
	DoNotReference: true,
}

// newTool binds a service call to a tool name. Arguments are decoded into a
// fresh A, the call's result is rendered by render.
func newTool[A, R any](name, description string, call func(ctx context.Context, args *A) (R, error), render func(R) (string, error)) Tool {
	schema := reflector.Reflect(new(A))
	schema.Version = ""
	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tool %s: reflect schema: %v", name, err))
	}
	return Tool{
		Name:        name,
		Description: description,
		Schema:      raw,
		invoke: func(ctx context.Context, in any) (string, error) {
			args := new(A)
			if err := bind(in, args); err != nil {
				return "", err
			}
			out, err := call(ctx, args)
			if err != nil {
				return "", err
			}
			return render(out)
		},
	}
}

func bind(in any, dst any) error {
	if in == nil {
		return nil
	}
	data, ok := in.(json.RawMessage)
	if !ok {
		var err error
		if data, err = json.Marshal(in); err != nil {
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "arguments are not valid JSON")
		}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid arguments: "+err.Error())
	}
	return nil
}

// asJSON renders a result as indented JSON.
func asJSON[R any](v R) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func asText(s string) (string, error) { return s, nil }

// Catalog holds the tools in registration order.
type Catalog struct {
	tools   map[string]Tool
	order   []string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(c *Catalog)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// NewCatalog builds a catalog from tool groups. A duplicate name panics.
func NewCatalog(groups [][]Tool, opts ...Option) *Catalog {
	c := &Catalog{tools: map[string]Tool{}, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	for _, group := range groups {
		for _, t := range group {
			if _, dup := c.tools[t.Name]; dup {
				panic("duplicate tool " + t.Name)
			}
			c.tools[t.Name] = t
			c.order = append(c.order, t.Name)
		}
	}
	return c
}

// Tools lists the catalog in registration order.
func (c *Catalog) Tools() []Tool {
	out := make([]Tool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// Lookup returns the tool registered under name.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Call dispatches a tool invocation.
//
// A successful call yields its rendered result. Not-found outcomes yield the
// family's sentinel text ("Intent not found") as a regular result. Validation
// and argument errors yield an error result carrying the message; any other
// failure yields a generic error result and is logged.
func (c *Catalog) Call(ctx context.Context, name string, args any) *mcpgo.CallToolResult {
	t, ok := c.tools[name]
	if !ok {
		c.metrics.IncToolCall(name, outcomeUnknown)
		return mcpgo.NewToolResultError("Unknown tool: " + name)
	}

	ctx = requestcontext.WithToolName(ctx, name)
	if requestcontext.RequestID(ctx) == "" {
		ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
	}
	if _, set := ctx.Value(requestcontext.ContextKeyRequestTime).(time.Time); !set {
		ctx = requestcontext.WithTime(ctx, time.Now())
	}

	text, err := t.invoke(ctx, args)
	if err == nil {
		c.metrics.IncToolCall(name, outcomeOK)
		return mcpgo.NewToolResultText(text)
	}

	de, _ := dErrors.As(err)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound:
		c.metrics.IncToolCall(name, outcomeNotFound)
		return mcpgo.NewToolResultText(de.Message)
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeConflict:
		c.metrics.IncToolCall(name, outcomeRejected)
		c.logger.InfoContext(ctx, "tool call rejected",
			"tool", name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return mcpgo.NewToolResultError(rejection(de))
	default:
		c.metrics.IncToolCall(name, outcomeError)
		c.logger.ErrorContext(ctx, "tool call failed",
			"tool", name,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return mcpgo.NewToolResultError("Error: internal error")
	}
}

func rejection(de *dErrors.Error) string {
	msg := "Error: " + de.Message
	for _, f := range de.Fields {
		if f.Message != de.Message {
			msg += fmt.Sprintf("\n- %s: %s", f.Field, f.Message)
		}
	}
	return msg
}

// Handler adapts the catalog entry to the protocol server's handler signature.
func (c *Catalog) Handler(name string) func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		return c.Call(ctx, name, req.GetRawArguments()), nil
	}
}
