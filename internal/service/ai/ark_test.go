package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/lejockey/concierge/backend/internal/service/concierge"
)

type fakeChatModel struct {
	tools   []*schema.ToolInfo
	binds   int
	inputs  [][]*schema.Message
	options []*model.Options
	replies []*schema.Message
	errs    []error
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	idx := len(m.inputs)
	m.inputs = append(m.inputs, append([]*schema.Message(nil), input...))
	m.options = append(m.options, model.GetCommonOptions(nil, opts...))
	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	return m.replies[idx], nil
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not used")
}

func (m *fakeChatModel) BindTools(tools []*schema.ToolInfo) error {
	m.binds++
	m.tools = tools
	return nil
}

func testSessionConfig() concierge.SessionConfig {
	return concierge.SessionConfig{
		Model:           "doubao-pro",
		SystemPrompt:    "Tu es le barman.",
		Temperature:     0.9,
		MaxOutputTokens: 1000,
		Tools:           concierge.DefaultTools(),
	}
}

func TestArkSessionToolRoundTrip(t *testing.T) {
	fake := &fakeChatModel{replies: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{{
			ID:       "t1",
			Function: schema.FunctionCall{Name: concierge.ToolAddToOrder, Arguments: `{"itemName":"Negroni","quantity":2}`},
		}}),
		schema.AssistantMessage("Deux Negroni arrivent !", nil),
	}}
	provider := NewArkProvider(fake)

	session, err := provider.NewSession(context.Background(), testSessionConfig())
	if err != nil {
		t.Fatalf("NewSession err: %v", err)
	}
	if len(fake.tools) != 2 || fake.tools[0].Name != concierge.ToolAddToOrder {
		t.Fatalf("unexpected bound tools %+v", fake.tools)
	}

	resp, err := session.SendText(context.Background(), "Deux Negroni")
	if err != nil {
		t.Fatalf("SendText err: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected a tool call, got %+v", resp)
	}
	call := resp.ToolCalls[0]
	if call.ID != "t1" || call.Args["itemName"] != "Negroni" || call.Args["quantity"] != 2.0 {
		t.Fatalf("unexpected call %+v", call)
	}

	first := fake.inputs[0]
	if len(first) != 2 || first[0].Role != schema.System || first[1].Role != schema.User {
		t.Fatalf("unexpected first request %+v", first)
	}
	opts := fake.options[0]
	if opts.Temperature == nil || *opts.Temperature != 0.9 || opts.MaxTokens == nil || *opts.MaxTokens != 1000 {
		t.Fatalf("unexpected generation options %+v", opts)
	}

	resp, err = session.SendToolResults(context.Background(), []concierge.ToolResult{{
		CallID:  "t1",
		Name:    concierge.ToolAddToOrder,
		Payload: map[string]any{"result": "SUCCESS", "details": "Added", "price": "16,00$"},
	}})
	if err != nil {
		t.Fatalf("SendToolResults err: %v", err)
	}
	if resp.Text != "Deux Negroni arrivent !" || len(resp.ToolCalls) != 0 {
		t.Fatalf("unexpected final response %+v", resp)
	}

	second := fake.inputs[1]
	if len(second) != 4 {
		t.Fatalf("expected system, user, assistant, tool messages, got %d", len(second))
	}
	toolMsg := second[3]
	if toolMsg.Role != schema.Tool || toolMsg.ToolCallID != "t1" || !strings.Contains(toolMsg.Content, `"result":"SUCCESS"`) {
		t.Fatalf("unexpected tool message %+v", toolMsg)
	}
}

func TestArkSessionKeepsHistoryOnFailure(t *testing.T) {
	fake := &fakeChatModel{
		errs:    []error{errors.New("429 Too Many Requests"), nil},
		replies: []*schema.Message{nil, schema.AssistantMessage("Bonsoir", nil)},
	}
	session, err := NewArkProvider(fake).NewSession(context.Background(), testSessionConfig())
	if err != nil {
		t.Fatalf("NewSession err: %v", err)
	}

	_, err = session.SendText(context.Background(), "salut")
	if !concierge.IsQuotaError(err) {
		t.Fatalf("expected quota error to survive wrapping, got %v", err)
	}
	if _, err := session.SendText(context.Background(), "salut"); err != nil {
		t.Fatalf("SendText err: %v", err)
	}
	if len(fake.inputs[1]) != 2 {
		t.Fatalf("failed turn must not be committed to history, got %d messages", len(fake.inputs[1]))
	}
}

func TestArkBindsToolsOnce(t *testing.T) {
	fake := &fakeChatModel{}
	provider := NewArkProvider(fake)
	for i := 0; i < 3; i++ {
		if _, err := provider.NewSession(context.Background(), testSessionConfig()); err != nil {
			t.Fatalf("NewSession err: %v", err)
		}
	}
	if fake.binds != 1 {
		t.Fatalf("expected a single bind, got %d", fake.binds)
	}
	if _, err := provider.Transcribe(context.Background(), concierge.TranscriptionRequest{}); !errors.Is(err, ErrTranscriptionUnsupported) {
		t.Fatalf("expected unsupported transcription, got %v", err)
	}
}

func TestConvertArkMessageRejectsBadArguments(t *testing.T) {
	msg := schema.AssistantMessage("", []schema.ToolCall{{ID: "x", Function: schema.FunctionCall{Name: "addToOrder", Arguments: "{not json"}}})
	if _, err := convertArkMessage(msg); err == nil {
		t.Fatal("expected decode error")
	}
}
