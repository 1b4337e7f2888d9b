package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/model/chat"
	"github.com/lejockey/concierge/backend/internal/model/menu"
	ordermodel "github.com/lejockey/concierge/backend/internal/model/order"
	order "github.com/lejockey/concierge/backend/internal/service/order"
	"github.com/lejockey/concierge/backend/internal/storage/orders"
)

type recordingLog struct {
	saved []chat.Message
}

func (l *recordingLog) SaveMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	l.saved = append(l.saved, m)
	return m, nil
}

type failingStore struct{ orders.Store }

func (failingStore) Submit(context.Context, ordermodel.Order) (ordermodel.Order, error) {
	return ordermodel.Order{}, errors.New("database offline")
}

func newService(store orders.Store, log order.MessageLog) *order.Service {
	return order.NewService(menu.NewMemoryStore(menu.Seed()), store, log)
}

func TestAddItemResolvesMenu(t *testing.T) {
	svc := newService(orders.NewSimulatedStore(0), nil)
	ctx := context.Background()

	if _, _, err := svc.AddItem(ctx, "s1", "negroni", 1); err != nil {
		t.Fatalf("AddItem err: %v", err)
	}
	if _, _, err := svc.AddItem(ctx, "s1", "Negroni", 2); err != nil {
		t.Fatalf("AddItem err: %v", err)
	}
	if _, _, err := svc.AddItem(ctx, "s1", "zzzzqqq", 1); !errors.Is(err, order.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	cart := svc.Cart("s1")
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 || cart.Items[0].ID != "Negroni-16,00$" {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if other := svc.Cart("s2"); len(other.Items) != 0 {
		t.Fatalf("carts must be per session, got %+v", other)
	}
}

func TestAddProductUsesSalePrice(t *testing.T) {
	svc := newService(orders.NewSimulatedStore(0), nil)
	ctx := context.Background()

	line, product, err := svc.AddProduct(ctx, "s1", "p2", 2)
	if err != nil {
		t.Fatalf("AddProduct err: %v", err)
	}
	if product.ID != "p2" || line.Price != "20,00$" || line.Type != ordermodel.TypeProduct {
		t.Fatalf("unexpected product line %+v", line)
	}
	drink, _, _ := svc.AddItem(ctx, "s1", "Negroni", 1)
	if drink.Type != ordermodel.TypeMenu {
		t.Fatalf("menu line should be typed menu, got %q", drink.Type)
	}
	if _, _, err := svc.AddProduct(ctx, "s1", "p9", 1); !errors.Is(err, order.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	cart := svc.Cart("s1")
	if len(cart.Items) != 2 || cart.Total() != 56 {
		t.Fatalf("unexpected cart %+v total %v", cart.Items, cart.Total())
	}
}

func TestDropClearsCart(t *testing.T) {
	svc := newService(orders.NewSimulatedStore(0), nil)
	svc.AddItem(context.Background(), "s1", "Negroni", 1)

	svc.Drop("s1")
	if len(svc.Cart("s1").Items) != 0 {
		t.Fatal("cart should be gone after Drop")
	}
}

func TestToolHandlerRejectsPartialName(t *testing.T) {
	svc := newService(orders.NewSimulatedStore(0), nil)
	result := svc.ToolHandler("s1", i18n.English)(context.Background(), "Gin", 1)

	if result.Success {
		t.Fatalf("a bare spirit name should not be ordered, got %+v", result)
	}
	if len(svc.Cart("s1").Items) != 0 {
		t.Fatal("nothing should reach the cart")
	}
}

func TestRemoveItem(t *testing.T) {
	svc := newService(orders.NewSimulatedStore(0), nil)
	ctx := context.Background()
	line, _, _ := svc.AddItem(ctx, "s1", "Negroni", 1)

	if err := svc.RemoveItem(ctx, "s1", line.ID); err != nil {
		t.Fatalf("RemoveItem err: %v", err)
	}
	if err := svc.RemoveItem(ctx, "s1", line.ID); !errors.Is(err, order.ErrItemNotInCart) {
		t.Fatalf("expected ErrItemNotInCart, got %v", err)
	}
}

func TestToolHandler(t *testing.T) {
	svc := newService(orders.NewSimulatedStore(0), nil)
	handler := svc.ToolHandler("s1", i18n.English)

	ok := handler(context.Background(), "Cucumber Gimlet", 2)
	if !ok.Success || ok.Price != "15,00$" || ok.Message != "Added 2x Cucumber Gimlet to the cart." {
		t.Fatalf("unexpected result %+v", ok)
	}

	missing := handler(context.Background(), "zzzzqqq", 1)
	if missing.Success || missing.Price != "" {
		t.Fatalf("unknown item should fail, got %+v", missing)
	}
	if payload := missing.Payload(); payload["result"] != "FAILURE" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestCheckout(t *testing.T) {
	log := &recordingLog{}
	store := orders.NewSimulatedStore(time.Millisecond)
	svc := newService(store, log)
	ctx := context.Background()

	req := order.CheckoutRequest{Customer: "Table 4", PaymentMethod: ordermodel.PaymentDebit, Language: i18n.French}
	if _, err := svc.Checkout(ctx, "s1", req); !errors.Is(err, order.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}

	svc.AddItem(ctx, "s1", "Negroni", 2)
	svc.AddItem(ctx, "s1", "Habana Ruby", 1)

	if _, err := svc.Checkout(ctx, "s1", order.CheckoutRequest{Customer: "  ", PaymentMethod: ordermodel.PaymentCash}); !errors.Is(err, order.ErrCustomerRequired) {
		t.Fatalf("expected ErrCustomerRequired, got %v", err)
	}

	result, err := svc.Checkout(ctx, "s1", req)
	if err != nil {
		t.Fatalf("Checkout err: %v", err)
	}
	if result.Order.ID == "" || result.Order.Status != ordermodel.StatusPending || result.Order.Total != 47.5 {
		t.Fatalf("unexpected order %+v", result.Order)
	}
	if result.Order.CreatedAt.IsZero() {
		t.Fatal("returned order should carry the stored creation time")
	}
	if result.Confirmation != "Merci ! Votre commande est en cuisine." {
		t.Fatalf("unexpected confirmation %q", result.Confirmation)
	}
	if len(svc.Cart("s1").Items) != 0 {
		t.Fatal("cart should be cleared after checkout")
	}
	if len(log.saved) != 1 || log.saved[0].Role != chat.RoleModel || log.saved[0].Text != result.Confirmation {
		t.Fatalf("confirmation not logged: %+v", log.saved)
	}
	stored, err := store.Get(ctx, result.Order.ID)
	if err != nil {
		t.Fatalf("order not stored: %v", err)
	}
	if !stored.CreatedAt.Equal(result.Order.CreatedAt) {
		t.Fatalf("creation time mismatch: stored %v returned %v", stored.CreatedAt, result.Order.CreatedAt)
	}
}

func TestCheckoutKeepsCartOnStoreFailure(t *testing.T) {
	svc := newService(failingStore{}, nil)
	ctx := context.Background()
	svc.AddItem(ctx, "s1", "Negroni", 1)

	_, err := svc.Checkout(ctx, "s1", order.CheckoutRequest{Customer: "Sam", PaymentMethod: ordermodel.PaymentCash, Language: i18n.English})
	if err == nil {
		t.Fatal("expected submit error")
	}
	if len(svc.Cart("s1").Items) != 1 {
		t.Fatal("cart must survive a failed submission")
	}
}
