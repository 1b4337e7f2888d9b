package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/lejockey/concierge/backend/internal/service/concierge"
)

// GeminiProvider 通过官方 genai SDK 调用 Gemini
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider 创建 Gemini 客户端
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// NewSession 创建声明了礼宾工具的有状态对话
func (p *GeminiProvider) NewSession(ctx context.Context, cfg concierge.SessionConfig) (concierge.Session, error) {
	chat, err := p.client.Chats.Create(ctx, cfg.Model, generateConfig(cfg), nil)
	if err != nil {
		return nil, wrapGeminiError(err)
	}
	return &geminiSession{chat: chat}, nil
}

// Transcribe 将音频与指令放在同一个请求中发送
func (p *GeminiProvider) Transcribe(ctx context.Context, req concierge.TranscriptionRequest) (string, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: req.MIMEType, Data: req.Audio}},
			{Text: req.Instruction},
		},
	}}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, nil)
	if err != nil {
		return "", wrapGeminiError(err)
	}
	return resp.Text(), nil
}

type geminiSession struct {
	chat *genai.Chat
}

func (s *geminiSession) SendText(ctx context.Context, text string) (*concierge.Response, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return nil, wrapGeminiError(err)
	}
	return convertGeminiResponse(resp), nil
}

func (s *geminiSession) SendToolResults(ctx context.Context, results []concierge.ToolResult) (*concierge.Response, error) {
	resp, err := s.chat.SendMessage(ctx, toolResultParts(results)...)
	if err != nil {
		return nil, wrapGeminiError(err)
	}
	return convertGeminiResponse(resp), nil
}

func generateConfig(cfg concierge.SessionConfig) *genai.GenerateContentConfig {
	tools := []*genai.Tool{{FunctionDeclarations: functionDeclarations(cfg.Tools)}}
	if cfg.MapsGrounding {
		tools = append(tools, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
	}

	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(cfg.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(cfg.Temperature),
		MaxOutputTokens:   int32(cfg.MaxOutputTokens),
		Tools:             tools,
	}
}

func functionDeclarations(specs []concierge.ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		properties := make(map[string]*genai.Schema, len(spec.Params))
		for _, param := range spec.Params {
			properties[param.Name] = &genai.Schema{
				Type:        geminiType(param.Type),
				Description: param.Description,
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   spec.RequiredParams(),
			},
		})
	}
	return decls
}

func geminiType(t concierge.ParamType) genai.Type {
	switch t {
	case concierge.ParamInteger:
		return genai.TypeInteger
	default:
		return genai.TypeString
	}
}

func toolResultParts(results []concierge.ToolResult) []genai.Part {
	parts := make([]genai.Part, 0, len(results))
	for _, result := range results {
		parts = append(parts, genai.Part{FunctionResponse: &genai.FunctionResponse{
			ID:       result.CallID,
			Name:     result.Name,
			Response: result.Payload,
		}})
	}
	return parts
}

func convertGeminiResponse(resp *genai.GenerateContentResponse) *concierge.Response {
	if resp == nil {
		return &concierge.Response{}
	}

	out := &concierge.Response{Text: resp.Text()}
	for _, call := range resp.FunctionCalls() {
		out.ToolCalls = append(out.ToolCalls, concierge.ToolCall{
			ID:   call.ID,
			Name: call.Name,
			Args: call.Args,
		})
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return out
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		switch {
		case chunk == nil:
		case chunk.Web != nil:
			out.Grounding = append(out.Grounding, concierge.GroundingLink{Title: chunk.Web.Title, URI: chunk.Web.URI})
		case chunk.Maps != nil:
			out.Grounding = append(out.Grounding, concierge.GroundingLink{Title: chunk.Maps.Title, URI: chunk.Maps.URI})
		}
	}
	return out
}

func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &concierge.ProviderError{Code: apiErr.Code, Status: apiErr.Status, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &concierge.ProviderError{Code: apiErrPtr.Code, Status: apiErrPtr.Status, Err: err}
	}
	return fmt.Errorf("gemini: %w", err)
}
