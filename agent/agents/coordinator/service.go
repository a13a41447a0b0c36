// Package coordinator runs one support turn against the reasoning model:
// it sends the prompt with the tool catalog bound, executes every tool call
// the model requests, and returns the model's final customer-facing reply.
package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"

	contractx "github.com/D-Harshith/ResolveAI/agent/contract"
	promptx "github.com/D-Harshith/ResolveAI/agent/prompt"
	toolx "github.com/D-Harshith/ResolveAI/agent/tool"
)

const (
	defaultMaxToolRounds = 8

	fallbackReply = "I'm sorry, I couldn't process your request. How can I assist you?"
)

type chatService interface {
	New(ctx context.Context, params openaisdk.ChatCompletionNewParams, opts ...option.RequestOption) (*openaisdk.ChatCompletion, error)
}

// TurnRequest is everything the coordinator knows about one turn. The model
// is stateless across turns; identity travels inside the prompt every time.
type TurnRequest struct {
	Name    string
	Email   string
	Message string
	First   bool
}

type Config struct {
	Model         string
	Temperature   float64
	MaxToolRounds int
}

type Coordinator struct {
	chat      chatService
	execute   toolx.Executor
	tools     []openaisdk.ChatCompletionToolParam
	system    string
	model     string
	temp      float64
	maxRounds int
}

func New(client *openaisdk.Client, cfg Config, executor toolx.Executor) (*Coordinator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: model client is required", contractx.ErrValidation)
	}
	return newWithChat(&client.Chat.Completions, cfg, executor)
}

func newWithChat(chat chatService, cfg Config, executor toolx.Executor) (*Coordinator, error) {
	if chat == nil {
		return nil, fmt.Errorf("%w: chat service is required", contractx.ErrValidation)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w: tool executor is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: model name is required", contractx.ErrValidation)
	}

	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}

	return &Coordinator{
		chat:      chat,
		execute:   executor,
		tools:     toolx.OpenAITools(),
		system:    promptx.Coordinator(),
		model:     cfg.Model,
		temp:      cfg.Temperature,
		maxRounds: maxRounds,
	}, nil
}

// HandleTurn processes one customer message end to end and returns the reply
// text. Tool failures never surface here; they flow back to the model as
// text and it decides how to respond.
func (c *Coordinator) HandleTurn(ctx context.Context, req TurnRequest) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.model),
		Temperature: openaisdk.Float(c.temp),
		Tools:       c.tools,
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(c.system),
			openaisdk.UserMessage(BuildTurnPrompt(req)),
		},
	}

	for round := 0; round < c.maxRounds; round++ {
		completion, err := c.chat.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("%w: completion has no choices", contractx.ErrModelInvoke)
		}

		msg := completion.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return finalizeReply(msg.Content), nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			result := c.executeCall(ctx, call)
			params.Messages = append(params.Messages, openaisdk.ToolMessage(result.Output, call.ID))
		}
	}

	return "", fmt.Errorf("%w: tool rounds exhausted after %d iterations", contractx.ErrModelInvoke, c.maxRounds)
}

func (c *Coordinator) executeCall(ctx context.Context, call openaisdk.ChatCompletionMessageToolCall) contractx.ToolResult {
	name := strings.TrimSpace(call.Function.Name)
	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return contractx.ToolResult{
				Tool:   name,
				Output: fmt.Sprintf("Error: arguments for tool '%s' are not valid JSON.", name),
			}
		}
	}

	log.Debug().Str("tool", name).Msg("executing tool call")
	result, err := c.execute(ctx, name, args)
	if err != nil {
		// The executor contract is text-only; a Go error here is a bug,
		// but the model still gets something it can work with.
		return contractx.ToolResult{
			Tool:   name,
			Output: fmt.Sprintf("Error: tool '%s' failed unexpectedly.", name),
		}
	}
	return result
}

// BuildTurnPrompt reconstructs per-turn context from caller-supplied fields.
// The name rides along only on the first turn; the email on every turn.
func BuildTurnPrompt(req TurnRequest) string {
	if req.First {
		return fmt.Sprintf("My name is %s and my email is %s. %s", req.Name, req.Email, req.Message)
	}
	return fmt.Sprintf("My email is %s. %s", req.Email, req.Message)
}

// finalizeReply trims the model output and strips one layer of wrapping
// quotes the model sometimes adds around its final answer.
func finalizeReply(content string) string {
	text := strings.TrimSpace(content)
	switch {
	case strings.HasPrefix(text, `"""`) && strings.HasSuffix(text, `"""`) && len(text) >= 6:
		text = strings.TrimSpace(text[3 : len(text)-3])
	case strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) && len(text) >= 2:
		text = strings.TrimSpace(text[1 : len(text)-1])
	case strings.HasPrefix(text, `'`) && strings.HasSuffix(text, `'`) && len(text) >= 2:
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	if text == "" {
		return fallbackReply
	}
	return text
}
