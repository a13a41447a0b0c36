// Package tool exposes the five support capabilities the reasoning model may
// invoke. The catalog is a data structure: operation names map to declared
// parameter schemas plus handlers, and every handler resolves to plain text.
package tool

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	contractx "github.com/D-Harshith/ResolveAI/agent/contract"
)

const (
	ToolGenerateTicketID    = "generate_ticket_id"
	ToolGetCustomerHistory  = "get_customer_history"
	ToolGetPolicyInfo       = "get_policy_info"
	ToolTokenizePII         = "tokenize_pii"
	ToolSaveCustomerHistory = "save_customer_history"
)

// Param declares one named tool argument.
type Param struct {
	Name     string
	Type     string
	Desc     string
	Required bool
}

// Definition declares one callable operation: a stable name, a description
// for the model, and its parameter schema.
type Definition struct {
	Name   string
	Desc   string
	Params []Param
}

// Executor dispatches one tool invocation to its handler.
type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// Dependencies are the stateful collaborators the handlers need. Both are
// injected; the tool layer holds no state of its own between calls.
type Dependencies struct {
	History  contractx.HistoryStore
	Policies contractx.PolicySource
}

// Definitions returns the full catalog in the order it is advertised to the
// model: ticket first, save last, matching the recommended call order.
func Definitions() []Definition {
	return []Definition{
		{
			Name: ToolGenerateTicketID,
			Desc: "Generate a new, unique support ticket ID for the current issue.",
		},
		{
			Name: ToolGetCustomerHistory,
			Desc: "Retrieve the past support history for a customer by email.",
			Params: []Param{
				{Name: "email", Type: "string", Desc: "Customer email address", Required: true},
			},
		},
		{
			Name: ToolGetPolicyInfo,
			Desc: "Retrieve the support policy section relevant to a topic.",
			Params: []Param{
				{Name: "topic", Type: "string", Desc: "Topic phrase, e.g. returns or shipping", Required: true},
			},
		},
		{
			Name: ToolTokenizePII,
			Desc: "Replace emails and phone numbers in text with redaction tokens.",
			Params: []Param{
				{Name: "text_to_tokenize", Type: "string", Desc: "Text to redact", Required: true},
			},
		},
		{
			Name: ToolSaveCustomerHistory,
			Desc: "Save a redacted summary of the current issue to the customer's history.",
			Params: []Param{
				{Name: "email", Type: "string", Desc: "Customer email address", Required: true},
				{Name: "ticket_id", Type: "string", Desc: "Ticket ID for the current issue", Required: true},
				{Name: "summary", Type: "string", Desc: "PII-redacted issue summary", Required: true},
			},
		},
	}
}

// OpenAI converts the definition to an openai-go function declaration.
func (d Definition) OpenAI() openai.ChatCompletionToolParam {
	properties := make(map[string]any, len(d.Params))
	required := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		properties[p.Name] = map[string]string{
			"type":        p.Type,
			"description": p.Desc,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        d.Name,
			Description: openai.String(d.Desc),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}

// OpenAITools converts the whole catalog for binding to a chat request.
func OpenAITools() []openai.ChatCompletionToolParam {
	defs := Definitions()
	params := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		params = append(params, d.OpenAI())
	}
	return params
}

// NewExecutor wires the handlers to their dependencies.
func NewExecutor(deps Dependencies) (Executor, error) {
	if deps.History == nil {
		return nil, fmt.Errorf("%w: history store is required", contractx.ErrValidation)
	}
	if deps.Policies == nil {
		return nil, fmt.Errorf("%w: policy source is required", contractx.ErrValidation)
	}

	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		var output string
		switch tool {
		case ToolGenerateTicketID:
			output = GenerateTicketID()
		case ToolGetCustomerHistory:
			email, ok := stringArg(args, "email")
			if !ok {
				return missingArg(tool, "email"), nil
			}
			output = getCustomerHistory(ctx, deps.History, email)
		case ToolGetPolicyInfo:
			topic, ok := stringArg(args, "topic")
			if !ok {
				return missingArg(tool, "topic"), nil
			}
			output = getPolicyInfo(deps.Policies, topic)
		case ToolTokenizePII:
			text, ok := stringArg(args, "text_to_tokenize")
			if !ok {
				return missingArg(tool, "text_to_tokenize"), nil
			}
			output = Redact(text)
		case ToolSaveCustomerHistory:
			email, ok := stringArg(args, "email")
			if !ok {
				return missingArg(tool, "email"), nil
			}
			ticketID, _ := stringArg(args, "ticket_id")
			summary, _ := stringArg(args, "summary")
			output = saveCustomerHistory(ctx, deps.History, email, ticketID, summary)
		default:
			output = fmt.Sprintf("Error: tool '%s' is not available.", tool)
		}

		return contractx.ToolResult{Tool: tool, Output: output}, nil
	}, nil
}

func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func missingArg(tool, key string) contractx.ToolResult {
	return contractx.ToolResult{
		Tool:   tool,
		Output: fmt.Sprintf("Error: %s is required and must be a string.", key),
	}
}
