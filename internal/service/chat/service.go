package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/model/chat"
	"github.com/lejockey/concierge/backend/internal/service/concierge"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message text is required")
)

// Service 管理会话状态
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// NewService 创建内存中的聊天服务
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

// CreateSession 创建匿名会话并写入本地化的欢迎语
func (s *Service) CreateSession(_ context.Context, lang i18n.Language) (chat.Session, chat.Message, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		Language:  lang,
		CreatedAt: time.Now().UTC(),
	}

	greeting := chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      chat.RoleModel,
		Text:      concierge.GreetingText(lang),
		CreatedAt: session.CreatedAt,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = append(make([]chat.Message, 0, 16), greeting)
	s.mu.Unlock()

	return session, greeting, nil
}

// SaveMessage 追加消息到会话历史并返回存储的副本
func (s *Service) SaveMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}
	if message.Role == chat.RoleUser && strings.TrimSpace(message.Text) == "" {
		return chat.Message{}, ErrMessageEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	message.Options = append([]string(nil), message.Options...)

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// GetSession 按id获取会话
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// SetLanguage 记录客人切换后的界面语言
func (s *Service) SetLanguage(_ context.Context, sessionID string, lang i18n.Language) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	session.Language = lang
	s.sessions[sessionID] = session
	return session, nil
}

// LoadTranscript 返回会话的消息记录。
// 只有最新一条模型消息保留选项按钮
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)

	latestModel := -1
	for idx := len(copied) - 1; idx >= 0; idx-- {
		if copied[idx].Role == chat.RoleModel {
			latestModel = idx
			break
		}
	}
	for idx := range copied {
		if idx != latestModel {
			copied[idx].Options = nil
		}
	}
	return copied, nil
}

// DeleteSession 删除会话及其消息
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	return nil
}
