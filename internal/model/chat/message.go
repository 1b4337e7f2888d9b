package chat

import "time"

// Role 消息作者角色
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message 对话中的单条消息
type Message struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"sessionId"`
	Role             Role      `json:"role"`
	Text             string    `json:"text"`
	Options          []string  `json:"options,omitempty"`
	IsPaymentRequest bool      `json:"isPaymentRequest,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
