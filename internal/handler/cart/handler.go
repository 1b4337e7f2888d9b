package cart

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/lejockey/concierge/backend/internal/i18n"
	ordermodel "github.com/lejockey/concierge/backend/internal/model/order"
	orderService "github.com/lejockey/concierge/backend/internal/service/order"
	"github.com/lejockey/concierge/backend/pkg/utils"
)

// Handler 购物车与结账的HTTP处理器
type Handler struct {
	orders *orderService.Service
}

// New 创建购物车处理器
func New(orders *orderService.Service) *Handler {
	return &Handler{orders: orders}
}

// RegisterRoutes 注册购物车相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/{sessionID}", h.handleGetCart)
	r.Post("/{sessionID}/items", h.handleAddItem)
	r.Delete("/{sessionID}/items/{itemID}", h.handleRemoveItem)
	r.Post("/{sessionID}/checkout", h.handleCheckout)
}

type cartView struct {
	SessionID string                `json:"sessionId"`
	Items     []ordermodel.CartItem `json:"items"`
	Total     float64               `json:"total"`
	Count     int                   `json:"count"`
}

func (h *Handler) view(sessionID string) cartView {
	cart := h.orders.Cart(sessionID)
	return cartView{
		SessionID: sessionID,
		Items:     cart.Items,
		Total:     cart.Total(),
		Count:     cart.Count(),
	}
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.view(chi.URLParam(r, "sessionID")))
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      string `json:"name"`
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if (payload.Name == "") == (payload.ProductID == "") {
		utils.RespondError(w, http.StatusBadRequest, "exactly one of name or productId is required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	var err error
	if payload.ProductID != "" {
		_, _, err = h.orders.AddProduct(r.Context(), sessionID, payload.ProductID, payload.Quantity)
	} else {
		_, _, err = h.orders.AddItem(r.Context(), sessionID, payload.Name, payload.Quantity)
	}
	switch {
	case errors.Is(err, orderService.ErrItemNotFound), errors.Is(err, orderService.ErrProductNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.view(sessionID))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	itemID, err := url.PathUnescape(chi.URLParam(r, "itemID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.orders.RemoveItem(r.Context(), sessionID, itemID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.view(sessionID))
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CustomerName  string `json:"customerName"`
		PaymentMethod string `json:"paymentMethod"`
		Language      string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := ordermodel.ParsePaymentMethod(payload.PaymentMethod)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	result, err := h.orders.Checkout(r.Context(), sessionID, orderService.CheckoutRequest{
		Customer:      payload.CustomerName,
		PaymentMethod: method,
		Language:      i18n.Parse(payload.Language),
	})
	switch {
	case errors.Is(err, orderService.ErrCustomerRequired), errors.Is(err, orderService.ErrCartEmpty):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("[cart] session=%s checkout failed: %v", sessionID, err)
		utils.RespondError(w, http.StatusBadGateway, "order submission failed")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"order":   result.Order,
		"message": result.Confirmation,
	})
}
