package coordinator

import (
	"context"
	"errors"
	"strings"
	"testing"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/D-Harshith/ResolveAI/agent/contract"
	knowledgex "github.com/D-Harshith/ResolveAI/agent/knowledge"
	toolx "github.com/D-Harshith/ResolveAI/agent/tool"
)

type fakeChat struct {
	responses []*openaisdk.ChatCompletion
	params    []openaisdk.ChatCompletionNewParams
	err       error
}

func (f *fakeChat) New(_ context.Context, params openaisdk.ChatCompletionNewParams, _ ...option.RequestOption) (*openaisdk.ChatCompletion, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, errors.New("fake chat exhausted")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

type memStore struct {
	rows map[string][]string
}

func (m *memStore) Init(context.Context) error { return nil }

func (m *memStore) Records(_ context.Context, email string) ([]string, error) {
	return m.rows[email], nil
}

func (m *memStore) Append(_ context.Context, email, record string) error {
	if m.rows == nil {
		m.rows = map[string][]string{}
	}
	m.rows[email] = append(m.rows[email], record)
	return nil
}

func (m *memStore) Close() error { return nil }

func textCompletion(text string) *openaisdk.ChatCompletion {
	return &openaisdk.ChatCompletion{
		Choices: []openaisdk.ChatCompletionChoice{
			{Message: openaisdk.ChatCompletionMessage{Content: text}},
		},
	}
}

func toolCallCompletion(id, name, args string) *openaisdk.ChatCompletion {
	return &openaisdk.ChatCompletion{
		Choices: []openaisdk.ChatCompletionChoice{
			{
				Message: openaisdk.ChatCompletionMessage{
					ToolCalls: []openaisdk.ChatCompletionMessageToolCall{
						{
							ID: id,
							Function: openaisdk.ChatCompletionMessageToolCallFunction{
								Name:      name,
								Arguments: args,
							},
						},
					},
				},
			},
		},
	}
}

func newTestCoordinator(t *testing.T, chat chatService) *Coordinator {
	t.Helper()

	executor, err := toolx.NewExecutor(toolx.Dependencies{
		History:  &memStore{},
		Policies: knowledgex.NewBase(),
	})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	coord, err := newWithChat(chat, Config{Model: "gemini-2.5-flash-lite"}, executor)
	if err != nil {
		t.Fatalf("newWithChat: %v", err)
	}
	return coord
}

func TestHandleTurnPlainReply(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []*openaisdk.ChatCompletion{
		textCompletion("Hello! How can I help you today?"),
	}}
	coord := newTestCoordinator(t, chat)

	reply, err := coord.HandleTurn(context.Background(), TurnRequest{
		Name: "Jane", Email: "jane@example.com", Message: "hi", First: true,
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if reply != "Hello! How can I help you today?" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if len(chat.params) != 1 {
		t.Fatalf("expected one model call, got %d", len(chat.params))
	}
	if len(chat.params[0].Tools) != 5 {
		t.Fatalf("expected the five tools bound, got %d", len(chat.params[0].Tools))
	}
}

func TestHandleTurnExecutesToolCallsAndFeedsResultsBack(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []*openaisdk.ChatCompletion{
		toolCallCompletion("call_1", toolx.ToolGetPolicyInfo, `{"topic":"refund"}`),
		textCompletion("You can return items within 60 days for a full refund."),
	}}
	coord := newTestCoordinator(t, chat)

	reply, err := coord.HandleTurn(context.Background(), TurnRequest{
		Name: "Jane", Email: "jane@example.com", Message: "I want a refund", First: true,
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !strings.Contains(reply, "60 days") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if len(chat.params) != 2 {
		t.Fatalf("expected two model calls, got %d", len(chat.params))
	}
	// Second call must carry the assistant tool-call message plus the tool
	// result appended after the original system+user pair.
	if got := len(chat.params[1].Messages); got != 4 {
		t.Fatalf("expected 4 messages on second call, got %d", got)
	}
}

func TestHandleTurnEmptyReplyFallsBack(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []*openaisdk.ChatCompletion{textCompletion("   ")}}
	coord := newTestCoordinator(t, chat)

	reply, err := coord.HandleTurn(context.Background(), TurnRequest{Email: "jane@example.com", Message: "hi"})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if reply != fallbackReply {
		t.Fatalf("expected fallback reply, got %q", reply)
	}
}

func TestHandleTurnModelFailure(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{err: errors.New("upstream exploded")}
	coord := newTestCoordinator(t, chat)

	if _, err := coord.HandleTurn(context.Background(), TurnRequest{Email: "jane@example.com", Message: "hi"}); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestHandleTurnBoundsToolRounds(t *testing.T) {
	t.Parallel()

	executor, err := toolx.NewExecutor(toolx.Dependencies{
		History:  &memStore{},
		Policies: knowledgex.NewBase(),
	})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	chat := &fakeChat{}
	for i := 0; i < 10; i++ {
		chat.responses = append(chat.responses, toolCallCompletion("call_x", toolx.ToolGenerateTicketID, ""))
	}

	coord, err := newWithChat(chat, Config{Model: "gemini-2.5-flash-lite", MaxToolRounds: 3}, executor)
	if err != nil {
		t.Fatalf("newWithChat: %v", err)
	}

	if _, err := coord.HandleTurn(context.Background(), TurnRequest{Email: "jane@example.com", Message: "hi"}); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke after exhausting rounds, got %v", err)
	}
	if len(chat.params) != 3 {
		t.Fatalf("expected 3 model calls, got %d", len(chat.params))
	}
}

func TestBuildTurnPrompt(t *testing.T) {
	t.Parallel()

	first := BuildTurnPrompt(TurnRequest{Name: "Jane", Email: "jane@example.com", Message: "hi", First: true})
	if first != "My name is Jane and my email is jane@example.com. hi" {
		t.Fatalf("unexpected first prompt: %q", first)
	}

	later := BuildTurnPrompt(TurnRequest{Name: "Jane", Email: "jane@example.com", Message: "thanks"})
	if later != "My email is jane@example.com. thanks" {
		t.Fatalf("unexpected later prompt: %q", later)
	}
}

func TestFinalizeReplyStripsWrappingQuotes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{`"""Wrapped in triple quotes."""`, "Wrapped in triple quotes."},
		{`"Wrapped in quotes."`, "Wrapped in quotes."},
		{`'Wrapped in single quotes.'`, "Wrapped in single quotes."},
		{"Plain reply.", "Plain reply."},
		{"", fallbackReply},
	}
	for _, tc := range cases {
		if got := finalizeReply(tc.in); got != tc.want {
			t.Fatalf("finalizeReply(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
