package chat

import (
	"time"

	"github.com/lejockey/concierge/backend/internal/i18n"
)

// Session 表示一次页面加载打开的匿名会话
type Session struct {
	ID        string        `json:"id"`
	Language  i18n.Language `json:"language"`
	CreatedAt time.Time     `json:"createdAt"`
}
