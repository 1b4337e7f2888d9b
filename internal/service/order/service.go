package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/model/chat"
	"github.com/lejockey/concierge/backend/internal/model/menu"
	"github.com/lejockey/concierge/backend/internal/model/order"
	"github.com/lejockey/concierge/backend/internal/service/concierge"
	"github.com/lejockey/concierge/backend/internal/storage/orders"
)

var (
	ErrItemNotFound     = errors.New("menu item not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrItemNotInCart    = errors.New("item not in cart")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCustomerRequired = errors.New("customer name or table number is required")
)

// MessageLog 记录结账确认消息
type MessageLog interface {
	SaveMessage(ctx context.Context, message chat.Message) (chat.Message, error)
}

// Service 为每个会话维护购物车，并将结账提交到订单存储
type Service struct {
	catalog  menu.Store
	store    orders.Store
	messages MessageLog

	mu    sync.RWMutex
	carts map[string]*order.Cart
}

// NewService 创建购物车服务，messages 可以为 nil
func NewService(catalog menu.Store, store orders.Store, messages MessageLog) *Service {
	return &Service{
		catalog:  catalog,
		store:    store,
		messages: messages,
		carts:    make(map[string]*order.Cart),
	}
}

// Cart 返回会话购物车的快照
func (s *Service) Cart(sessionID string) order.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[sessionID]
	if !ok {
		return order.Cart{SessionID: sessionID, Items: []order.CartItem{}}
	}
	return order.Cart{SessionID: sessionID, Items: append([]order.CartItem{}, cart.Items...)}
}

// AddItem 在菜单中查找饮品并加入购物车
func (s *Service) AddItem(_ context.Context, sessionID, name string, quantity int) (order.CartItem, menu.Item, error) {
	item, ok := s.catalog.Resolve(name)
	if !ok {
		return order.CartItem{}, menu.Item{}, fmt.Errorf("%w: %q", ErrItemNotFound, name)
	}

	s.mu.Lock()
	cart, ok := s.carts[sessionID]
	if !ok {
		cart = &order.Cart{SessionID: sessionID}
		s.carts[sessionID] = cart
	}
	line := cart.Add(order.CartItem{
		Name:     item.Name,
		Price:    item.Price,
		Image:    item.Image,
		Quantity: quantity,
		Type:     order.TypeMenu,
	})
	s.mu.Unlock()

	log.Printf("[orders] session=%s cart add %dx %s", sessionID, quantity, item.Name)
	return line, item, nil
}

// AddProduct 按商品id加入购物车，有促销价时按促销价计
func (s *Service) AddProduct(_ context.Context, sessionID, productID string, quantity int) (order.CartItem, menu.Product, error) {
	product, ok := s.catalog.Product(productID)
	if !ok {
		return order.CartItem{}, menu.Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, productID)
	}

	s.mu.Lock()
	cart, ok := s.carts[sessionID]
	if !ok {
		cart = &order.Cart{SessionID: sessionID}
		s.carts[sessionID] = cart
	}
	line := cart.Add(order.CartItem{
		Name:     product.Name,
		Price:    product.EffectivePrice(),
		Image:    product.Image,
		Quantity: quantity,
		Type:     order.TypeProduct,
	})
	s.mu.Unlock()

	log.Printf("[orders] session=%s cart add %dx product %s", sessionID, quantity, product.ID)
	return line, product, nil
}

// RemoveItem 删除购物车中的一行
func (s *Service) RemoveItem(_ context.Context, sessionID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[sessionID]
	if !ok || !cart.Remove(itemID) {
		return ErrItemNotInCart
	}
	return nil
}

// Drop 丢弃会话的购物车
func (s *Service) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
}

// ToolHandler 将 AddItem 适配为 addToOrder 工具
func (s *Service) ToolHandler(sessionID string, lang i18n.Language) func(ctx context.Context, itemName string, quantity int) concierge.OrderResult {
	return func(ctx context.Context, itemName string, quantity int) concierge.OrderResult {
		_, item, err := s.AddItem(ctx, sessionID, itemName, quantity)
		if err != nil {
			return concierge.OrderResult{
				Success: false,
				Message: lang.T(
					fmt.Sprintf("Article introuvable au menu : %s", itemName),
					fmt.Sprintf("Item not found on the menu: %s", itemName),
				),
			}
		}
		name := item.DisplayName(lang)
		return concierge.OrderResult{
			Success: true,
			Message: lang.T(
				fmt.Sprintf("%dx %s ajouté au panier.", quantity, name),
				fmt.Sprintf("Added %dx %s to the cart.", quantity, name),
			),
			Price: item.Price,
		}
	}
}

// CheckoutRequest 结账请求
type CheckoutRequest struct {
	Customer      string
	PaymentMethod order.PaymentMethod
	Language      i18n.Language
}

// CheckoutResult 存储后的订单及给客人的确认消息
type CheckoutResult struct {
	Order        order.Order
	Confirmation string
}

// Checkout 提交购物车为待处理订单，随后清空购物车并记录确认消息
func (s *Service) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (CheckoutResult, error) {
	if strings.TrimSpace(req.Customer) == "" {
		return CheckoutResult{}, ErrCustomerRequired
	}

	cart := s.Cart(sessionID)
	if len(cart.Items) == 0 {
		return CheckoutResult{}, ErrCartEmpty
	}

	o, err := s.store.Submit(ctx, order.NewOrder(cart, req.Customer, req.PaymentMethod, req.Language))
	if err != nil {
		log.Printf("[orders] session=%s submit failed: %v", sessionID, err)
		return CheckoutResult{}, fmt.Errorf("submit order: %w", err)
	}

	s.Drop(sessionID)

	confirmation := concierge.OrderConfirmationText(req.Language)
	if s.messages != nil {
		if _, err := s.messages.SaveMessage(ctx, chat.Message{
			SessionID: sessionID,
			Role:      chat.RoleModel,
			Text:      confirmation,
		}); err != nil {
			log.Printf("[orders] session=%s confirmation not logged: %v", sessionID, err)
		}
	}

	log.Printf("[orders] session=%s order=%s items=%d total=%.2f", sessionID, o.ID, cart.Count(), o.Total)
	return CheckoutResult{Order: o, Confirmation: confirmation}, nil
}
