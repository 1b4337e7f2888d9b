package orders

import (
	"context"
	"errors"
	"log"

	"github.com/lejockey/concierge/backend/internal/config"
	"github.com/lejockey/concierge/backend/internal/model/order"
)

// ErrOrderNotFound 订单不存在
var ErrOrderNotFound = errors.New("order not found")

// Store 持久化已提交的订单。Submit 负责分配id和创建时间，并返回存储后的订单
type Store interface {
	Submit(ctx context.Context, o order.Order) (order.Order, error)
	Get(ctx context.Context, id string) (order.Order, error)
	Close() error
}

// New 根据配置依次选择 Redis、SQLite、模拟存储。
// 无法连接的后端只记录日志并跳过，保证结账可用
func New(ctx context.Context, cfg config.OrdersConfig) Store {
	if cfg.RedisURL != "" {
		store, err := NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err == nil {
			log.Printf("[orders] using redis store prefix=%s", cfg.RedisPrefix)
			return store
		}
		log.Printf("[orders] redis unavailable, falling back: %v", err)
	}

	if cfg.SQLitePath != "" {
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err == nil {
			log.Printf("[orders] using sqlite store path=%s", cfg.SQLitePath)
			return store
		}
		log.Printf("[orders] sqlite unavailable, falling back: %v", err)
	}

	log.Printf("[orders] no order backend configured, using simulated store")
	return NewSimulatedStore(cfg.SimulatedDelay)
}
