package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/lejockey/concierge/backend/internal/service/concierge"
)

// ErrTranscriptionUnsupported 后端不支持音频输入。
// 它包装了 concierge.ErrProviderUnavailable，调用方按后端不可用处理
var ErrTranscriptionUnsupported = fmt.Errorf("transcription not supported by this provider: %w", concierge.ErrProviderUnavailable)

// ArkProvider 通过 eino 使用火山方舟模型。
// eino 的模型是无状态的，历史记录保存在本地
type ArkProvider struct {
	chatModel model.ChatModel

	mu    sync.Mutex
	bound bool
}

// NewArkProvider 包装 eino 模型
func NewArkProvider(chatModel model.ChatModel) *ArkProvider {
	return &ArkProvider{chatModel: chatModel}
}

// NewSession 绑定工具并以系统提示开始一段历史
func (p *ArkProvider) NewSession(_ context.Context, cfg concierge.SessionConfig) (concierge.Session, error) {
	p.mu.Lock()
	if !p.bound {
		if err := p.chatModel.BindTools(toolInfos(cfg.Tools)); err != nil {
			p.mu.Unlock()
			return nil, fmt.Errorf("failed to bind tools: %w", err)
		}
		p.bound = true
	}
	p.mu.Unlock()

	if cfg.MapsGrounding {
		log.Printf("[ai] ark provider has no maps grounding, continuing without it")
	}

	opts := []model.Option{model.WithTemperature(cfg.Temperature)}
	if cfg.MaxOutputTokens > 0 {
		opts = append(opts, model.WithMaxTokens(cfg.MaxOutputTokens))
	}

	return &arkSession{
		chatModel: p.chatModel,
		history:   []*schema.Message{schema.SystemMessage(cfg.SystemPrompt)},
		opts:      opts,
	}, nil
}

// Transcribe 方舟对话模型不支持转写
func (p *ArkProvider) Transcribe(context.Context, concierge.TranscriptionRequest) (string, error) {
	return "", ErrTranscriptionUnsupported
}

type arkSession struct {
	chatModel model.ChatModel
	history   []*schema.Message
	opts      []model.Option
}

func (s *arkSession) SendText(ctx context.Context, text string) (*concierge.Response, error) {
	return s.generate(ctx, schema.UserMessage(text))
}

func (s *arkSession) SendToolResults(ctx context.Context, results []concierge.ToolResult) (*concierge.Response, error) {
	messages := make([]*schema.Message, 0, len(results))
	for _, result := range results {
		payload, err := json.Marshal(result.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", result.Name, err)
		}
		messages = append(messages, schema.ToolMessage(string(payload), result.CallID))
	}
	return s.generate(ctx, messages...)
}

// generate 仅在调用成功时把输入和回复写入历史
func (s *arkSession) generate(ctx context.Context, inputs ...*schema.Message) (*concierge.Response, error) {
	pending := make([]*schema.Message, 0, len(s.history)+len(inputs)+1)
	pending = append(pending, s.history...)
	pending = append(pending, inputs...)

	reply, err := s.chatModel.Generate(ctx, pending, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("ark generate: %w", err)
	}
	if reply == nil {
		return nil, fmt.Errorf("ark generate: empty reply")
	}

	s.history = append(pending, reply)
	return convertArkMessage(reply)
}

func toolInfos(specs []concierge.ToolSpec) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(specs))
	for _, spec := range specs {
		params := make(map[string]*schema.ParameterInfo, len(spec.Params))
		for _, param := range spec.Params {
			params[param.Name] = &schema.ParameterInfo{
				Type:     arkType(param.Type),
				Desc:     param.Description,
				Required: param.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        spec.Name,
			Desc:        spec.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

func arkType(t concierge.ParamType) schema.DataType {
	switch t {
	case concierge.ParamInteger:
		return schema.Integer
	default:
		return schema.String
	}
}

func convertArkMessage(msg *schema.Message) (*concierge.Response, error) {
	out := &concierge.Response{Text: msg.Content}
	for _, call := range msg.ToolCalls {
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("decode %s arguments: %w", call.Function.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, concierge.ToolCall{
			ID:   call.ID,
			Name: call.Function.Name,
			Args: args,
		})
	}
	return out, nil
}
