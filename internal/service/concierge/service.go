package concierge

import (
	"context"
	"sync"

	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/model/menu"
)

const (
	DefaultChatModel          = "gemini-2.5-flash"
	DefaultTranscriptionModel = "gemini-3-flash-preview"
	DefaultTemperature        = 0.9
	DefaultMaxOutputTokens    = 1000
	DefaultMaxTurns           = 5
	DefaultAudioMIMEType      = "audio/webm"
)

// Options 所有对话共用的生成参数
type Options struct {
	ChatModel          string
	TranscriptionModel string
	Temperature        float32
	MaxOutputTokens    int
	MapsGrounding      bool
	// MaxTurns 单条客人消息最多跟进的工具调用轮数
	MaxTurns int
	Retry    RetryPolicy
}

// DefaultOptions 默认生成参数
func DefaultOptions() Options {
	return Options{
		ChatModel:          DefaultChatModel,
		TranscriptionModel: DefaultTranscriptionModel,
		Temperature:        DefaultTemperature,
		MaxOutputTokens:    DefaultMaxOutputTokens,
		MapsGrounding:      true,
		MaxTurns:           DefaultMaxTurns,
		Retry:              DefaultRetryPolicy(),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ChatModel == "" {
		o.ChatModel = def.ChatModel
	}
	if o.TranscriptionModel == "" {
		o.TranscriptionModel = def.TranscriptionModel
	}
	if o.Temperature == 0 {
		o.Temperature = def.Temperature
	}
	if o.MaxOutputTokens <= 0 {
		o.MaxOutputTokens = def.MaxOutputTokens
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = def.MaxTurns
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if o.Retry.BaseDelay <= 0 {
		o.Retry.BaseDelay = def.Retry.BaseDelay
	}
	return o
}

// Service 为每个聊天会话维护一个 Conversation
type Service struct {
	provider Provider
	catalog  menu.Store
	opts     Options

	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// NewService wires the concierge. A nil provider is allowed: every exchange then
// answers with the localized "unavailable" text.
func NewService(provider Provider, catalog menu.Store, opts Options) *Service {
	return &Service{
		provider:      provider,
		catalog:       catalog,
		opts:          opts.withDefaults(),
		conversations: make(map[string]*Conversation),
	}
}

// Available 是否配置了 AI 后端
func (s *Service) Available() bool {
	return s.provider != nil
}

// Conversation 返回会话对应的对话，首次使用时创建
func (s *Service) Conversation(sessionID string) *Conversation {
	s.mu.RLock()
	conv, ok := s.conversations[sessionID]
	s.mu.RUnlock()
	if ok {
		return conv
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[sessionID]; ok {
		return conv
	}
	conv = newConversation(sessionID, s.provider, s.catalog, s.opts)
	s.conversations[sessionID] = conv
	return conv
}

// Send 将客人消息交给对应的对话
func (s *Service) Send(ctx context.Context, sessionID, text string, lang i18n.Language, h Handlers) string {
	return s.Conversation(sessionID).Send(ctx, text, lang, h)
}

// Drop 丢弃对话及其模型会话
func (s *Service) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.conversations, sessionID)
	s.mu.Unlock()
}
