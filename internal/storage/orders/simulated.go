package orders

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lejockey/concierge/backend/internal/model/order"
)

// SimulatedStore 未配置数据库时使用：模拟远程写入的延迟，订单保存在内存中
type SimulatedStore struct {
	delay time.Duration

	mu     sync.RWMutex
	orders map[string]order.Order
}

// NewSimulatedStore 创建延迟 delay 后返回的模拟存储
func NewSimulatedStore(delay time.Duration) *SimulatedStore {
	return &SimulatedStore{delay: delay, orders: make(map[string]order.Order)}
}

// Submit 等待配置的延迟后记录订单
func (s *SimulatedStore) Submit(ctx context.Context, o order.Order) (order.Order, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return order.Order{}, ctx.Err()
		case <-timer.C:
		}
	}

	o.ID = "sim-" + uuid.NewString()
	o.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
	return o, nil
}

// Get 返回之前记录的订单
func (s *SimulatedStore) Get(_ context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// Close 无操作
func (s *SimulatedStore) Close() error {
	return nil
}
