package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/lejockey/concierge/backend/internal/i18n"
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentDebit PaymentMethod = "DEBIT"
	PaymentCash  PaymentMethod = "CASH"
)

// ParsePaymentMethod 解析支付方式，不区分大小写
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(raw))) {
	case PaymentDebit:
		return PaymentDebit, nil
	case PaymentCash:
		return PaymentCash, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", raw)
	}
}

// Status 订单状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Order 结账后提交给吧台的订单
type Order struct {
	ID            string        `json:"id"`
	SessionID     string        `json:"sessionId,omitempty"`
	CustomerName  string        `json:"customerName"`
	Items         []CartItem    `json:"items"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        Status        `json:"status"`
	Language      i18n.Language `json:"language"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// NewOrder 将购物车快照为待处理订单
func NewOrder(cart Cart, customer string, method PaymentMethod, lang i18n.Language) Order {
	return Order{
		SessionID:     cart.SessionID,
		CustomerName:  strings.TrimSpace(customer),
		Items:         append([]CartItem(nil), cart.Items...),
		Total:         cart.Total(),
		PaymentMethod: method,
		Status:        StatusPending,
		Language:      lang,
	}
}
