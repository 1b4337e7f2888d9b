package orders

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lejockey/concierge/backend/internal/config"
	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/model/order"
)

func sampleOrder() order.Order {
	var cart order.Cart
	cart.SessionID = "session-1"
	cart.Add(order.CartItem{Name: "Negroni", Price: "16,00$", Quantity: 2, Type: order.TypeMenu})
	cart.Add(order.CartItem{Name: "Habana Ruby", Price: "15,50$", Quantity: 1, Type: order.TypeMenu})
	cart.Add(order.CartItem{Name: "Casquette Jockey", Price: "20,00$", Quantity: 1, Type: order.TypeProduct})
	return order.NewOrder(cart, "Table 7", order.PaymentCash, i18n.French)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore err: %v", err)
	}
	defer store.Close()

	assertRoundTrip(t, store)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "jockey")
	defer store.Close()

	stored := assertRoundTrip(t, store)
	if !mr.Exists("jockey:" + stored.ID) {
		t.Fatalf("expected key jockey:%s in redis", stored.ID)
	}
}

func assertRoundTrip(t *testing.T, store Store) order.Order {
	t.Helper()
	ctx := context.Background()
	stored, err := store.Submit(ctx, sampleOrder())
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if stored.ID == "" || stored.CreatedAt.IsZero() {
		t.Fatalf("Submit should return the id and creation time, got %+v", stored)
	}

	got, err := store.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.ID != stored.ID || got.CustomerName != "Table 7" || got.Status != order.StatusPending {
		t.Fatalf("unexpected order %+v", got)
	}
	if got.PaymentMethod != order.PaymentCash || got.Language != i18n.French {
		t.Fatalf("unexpected metadata %+v", got)
	}
	if len(got.Items) != 3 || got.Items[0].Quantity != 2 || got.Total != 67.5 {
		t.Fatalf("unexpected items %+v total %v", got.Items, got.Total)
	}
	if got.Items[0].Type != order.TypeMenu || got.Items[2].Type != order.TypeProduct {
		t.Fatalf("line types not persisted: %+v", got.Items)
	}
	if diff := got.CreatedAt.Sub(stored.CreatedAt); diff > time.Second || diff < -time.Second {
		t.Fatalf("creation time mismatch: got %v want %v", got.CreatedAt, stored.CreatedAt)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	return stored
}

func TestSimulatedStore(t *testing.T) {
	store := NewSimulatedStore(10 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	stored, err := store.Submit(ctx, sampleOrder())
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatal("simulated store should wait before answering")
	}
	if !strings.HasPrefix(stored.ID, "sim-") {
		t.Fatalf("unexpected id %q", stored.ID)
	}
	if _, err := store.Get(ctx, stored.ID); err != nil {
		t.Fatalf("Get err: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := NewSimulatedStore(time.Hour).Submit(cancelled, sampleOrder()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestNewFallsBack(t *testing.T) {
	store := New(context.Background(), config.OrdersConfig{
		RedisURL:       "not a url",
		SimulatedDelay: time.Millisecond,
	})
	defer store.Close()

	if _, ok := store.(*SimulatedStore); !ok {
		t.Fatalf("expected simulated fallback, got %T", store)
	}

	store = New(context.Background(), config.OrdersConfig{SQLitePath: filepath.Join(t.TempDir(), "o.db")})
	defer store.Close()
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
}
