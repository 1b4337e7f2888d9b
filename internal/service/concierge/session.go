package concierge

import (
	"context"
	"log"
	"sync"

	"github.com/lejockey/concierge/backend/internal/model/menu"
)

// Conversation 一个聊天会话对应的礼宾对话，各轮交互串行执行
type Conversation struct {
	id       string
	provider Provider
	catalog  menu.Store
	opts     Options

	mu      sync.Mutex
	session Session
}

func newConversation(id string, provider Provider, catalog menu.Store, opts Options) *Conversation {
	return &Conversation{
		id:       id,
		provider: provider,
		catalog:  catalog,
		opts:     opts,
	}
}

// ID 返回所属的聊天会话id
func (c *Conversation) ID() string {
	return c.id
}

// EnsureSession 尚无可用会话时创建模型会话。
// 失败只记录日志，下次调用时重试
func (c *Conversation) EnsureSession(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureSessionLocked(ctx)
}

func (c *Conversation) ensureSessionLocked(ctx context.Context) bool {
	if c.session != nil {
		return true
	}
	if c.provider == nil {
		log.Printf("[concierge] session=%s no AI provider configured", c.id)
		return false
	}

	var catalog menu.Catalog
	if c.catalog != nil {
		catalog = c.catalog.Catalog()
	}

	cfg := SessionConfig{
		Model:           c.opts.ChatModel,
		SystemPrompt:    BuildSystemPrompt(catalog),
		Temperature:     c.opts.Temperature,
		MaxOutputTokens: c.opts.MaxOutputTokens,
		Tools:           DefaultTools(),
		MapsGrounding:   c.opts.MapsGrounding,
	}

	session, err := c.provider.NewSession(ctx, cfg)
	if err != nil {
		log.Printf("[concierge] session=%s failed to initialize chat: %v", c.id, err)
		return false
	}
	if session == nil {
		log.Printf("[concierge] session=%s provider returned no session", c.id)
		return false
	}

	c.session = session
	log.Printf("[concierge] session=%s chat initialized model=%s items=%d", c.id, cfg.Model, len(catalog.Menu))
	return true
}
