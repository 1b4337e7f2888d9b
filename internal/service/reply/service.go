package reply

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lejockey/concierge/backend/internal/analysis/chips"
	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/model/chat"
	chatservice "github.com/lejockey/concierge/backend/internal/service/chat"
	"github.com/lejockey/concierge/backend/internal/service/concierge"
	"github.com/lejockey/concierge/backend/pkg/utils"
)

// 回复后前端需要执行的动作
const (
	ActionOpenCab     = "openCab"
	ActionPay         = "pay"
	ActionCartUpdated = "cartUpdated"
)

// Concierge 与模型交互的部分
type Concierge interface {
	Send(ctx context.Context, sessionID, text string, lang i18n.Language, h concierge.Handlers) string
}

// Transcript 保存对话双方的消息
type Transcript interface {
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	SetLanguage(ctx context.Context, sessionID string, lang i18n.Language) (chat.Session, error)
	SaveMessage(ctx context.Context, message chat.Message) (chat.Message, error)
}

// Carts 将 addToOrder 工具调用转换为购物车行
type Carts interface {
	ToolHandler(sessionID string, lang i18n.Language) func(ctx context.Context, itemName string, quantity int) concierge.OrderResult
}

// Reply 一条可直接展示的礼宾回复
type Reply struct {
	Message        chat.Message `json:"message"`
	Text           string       `json:"text"`
	Options        []string     `json:"options"`
	CompactOptions bool         `json:"compactOptions"`
	HTML           string       `json:"html"`
	Actions        []string     `json:"actions,omitempty"`
}

// Service 负责一次完整的对话往返：记录用户消息、调用礼宾模型、解析指令并保存回复。
type Service struct {
	concierge  Concierge
	transcript Transcript
	carts      Carts
}

// NewService 创建回复服务。carts 可以为 nil，此时不处理 addToOrder
func NewService(c Concierge, transcript Transcript, carts Carts) *Service {
	return &Service{concierge: c, transcript: transcript, carts: carts}
}

// Respond 记录客人消息并返回礼宾回复
func (s *Service) Respond(ctx context.Context, sessionID, text string, lang i18n.Language) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, chatservice.ErrMessageEmpty
	}

	session, err := s.transcript.GetSession(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}
	if lang == "" {
		lang = session.Language
	}
	if lang != session.Language {
		if _, err := s.transcript.SetLanguage(ctx, sessionID, lang); err != nil {
			return Reply{}, err
		}
	}

	if _, err := s.transcript.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Text:      text,
	}); err != nil {
		return Reply{}, fmt.Errorf("save guest message: %w", err)
	}

	var actions []string
	handlers := concierge.Handlers{
		OpenCab: func(context.Context) {
			actions = appendOnce(actions, ActionOpenCab)
		},
	}
	if s.carts != nil {
		addToOrder := s.carts.ToolHandler(sessionID, lang)
		handlers.AddToOrder = func(ctx context.Context, itemName string, quantity int) concierge.OrderResult {
			result := addToOrder(ctx, itemName, quantity)
			if result.Success {
				actions = appendOnce(actions, ActionCartUpdated)
			}
			return result
		}
	}

	raw := s.concierge.Send(ctx, sessionID, text, lang, handlers)
	directives := concierge.ParseDirectives(raw)
	if directives.PaymentRequested {
		actions = appendOnce(actions, ActionPay)
	}

	message, err := s.transcript.SaveMessage(ctx, chat.Message{
		SessionID:        sessionID,
		Role:             chat.RoleModel,
		Text:             directives.Text,
		Options:          directives.Options,
		IsPaymentRequest: directives.PaymentRequested,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("save concierge reply: %w", err)
	}

	options := directives.Options
	if options == nil {
		options = []string{}
	}

	log.Printf("[reply] session=%s options=%d actions=%v", sessionID, len(options), actions)
	return Reply{
		Message:        message,
		Text:           directives.Text,
		Options:        options,
		CompactOptions: chips.IsCompact(options),
		HTML:           utils.RenderMarkdown(directives.Text),
		Actions:        actions,
	}, nil
}

func appendOnce(actions []string, action string) []string {
	for _, existing := range actions {
		if existing == action {
			return actions
		}
	}
	return append(actions, action)
}
