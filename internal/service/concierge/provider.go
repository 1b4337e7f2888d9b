package concierge

import (
	"context"
	"errors"
)

// ErrProviderUnavailable is returned when no AI backend is configured.
var ErrProviderUnavailable = errors.New("ai provider unavailable")

// Provider 创建对话会话并执行一次性转写
type Provider interface {
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)
}

// Session 后端持有的多轮对话
type Session interface {
	SendText(ctx context.Context, text string) (*Response, error)
	SendToolResults(ctx context.Context, results []ToolResult) (*Response, error)
}

// SessionConfig 创建会话所需的配置
type SessionConfig struct {
	Model           string
	SystemPrompt    string
	Temperature     float32
	MaxOutputTokens int
	Tools           []ToolSpec
	MapsGrounding   bool
}

// Response 模型的一轮回复
type Response struct {
	Text      string
	ToolCalls []ToolCall
	Grounding []GroundingLink
}

// HasToolCalls 模型是否请求了本地动作
func (r *Response) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// ToolCall 模型发起的工具调用
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult answers exactly one ToolCall, correlated by CallID.
type ToolResult struct {
	CallID  string
	Name    string
	Payload map[string]any
}

// GroundingLink 地图检索附带的网页来源
type GroundingLink struct {
	Title string
	URI   string
}

// TranscriptionRequest 一次性转写的音频数据
type TranscriptionRequest struct {
	Model       string
	Audio       []byte
	MIMEType    string
	Instruction string
}
