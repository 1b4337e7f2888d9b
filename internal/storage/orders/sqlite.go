package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/model/order"
)

// SQLiteStore 将订单保存在本地数据库文件中
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 打开（或创建）数据库
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		customer_name TEXT NOT NULL,
		items TEXT NOT NULL,
		total REAL NOT NULL,
		payment_method TEXT NOT NULL,
		status TEXT NOT NULL,
		language TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Submit 插入订单
func (s *SQLiteStore) Submit(ctx context.Context, o order.Order) (order.Order, error) {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()

	items, err := json.Marshal(o.Items)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to marshal items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, session_id, customer_name, items, total, payment_method, status, language, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.SessionID, o.CustomerName, string(items), o.Total,
		string(o.PaymentMethod), string(o.Status), string(o.Language), o.CreatedAt,
	)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	return o, nil
}

// Get 按id读取订单
func (s *SQLiteStore) Get(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, customer_name, items, total, payment_method, status, language, created_at
		FROM orders WHERE id = ?`, id)

	var (
		o                        order.Order
		items                    string
		method, status, language string
	)
	err := row.Scan(&o.ID, &o.SessionID, &o.CustomerName, &items, &o.Total, &method, &status, &language, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to load order: %w", err)
	}

	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("failed to unmarshal items: %w", err)
	}
	o.PaymentMethod = order.PaymentMethod(method)
	o.Status = order.Status(status)
	o.Language = i18n.Language(language)
	return o, nil
}

// Close 关闭数据库
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
