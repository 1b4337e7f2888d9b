package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lejockey/concierge/backend/internal/model/order"
)

// RedisStore 将每个订单以JSON值的形式保存在Redis中
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore 连接 Redis 并检查连接
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(rdb, prefix), nil
}

// NewRedisStoreWithClient 使用已有客户端创建存储
func NewRedisStoreWithClient(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "orders"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) orderKey(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

// Submit 写入订单，id已存在时不覆盖
func (s *RedisStore) Submit(ctx context.Context, o order.Order) (order.Order, error) {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(o)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to marshal order: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, s.orderKey(o.ID), data, 0).Result()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to save order: %w", err)
	}
	if !ok {
		return order.Order{}, fmt.Errorf("order %s already exists", o.ID)
	}
	return o, nil
}

// Get 按id读取订单
func (s *RedisStore) Get(ctx context.Context, id string) (order.Order, error) {
	data, err := s.rdb.Get(ctx, s.orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return order.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to load order: %w", err)
	}

	var o order.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return order.Order{}, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return o, nil
}

// Close 释放连接池
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
