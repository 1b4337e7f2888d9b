package menu

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lejockey/concierge/backend/internal/model/menu"
	"github.com/lejockey/concierge/backend/pkg/utils"
)

// Handler 菜单与活动的HTTP处理器
type Handler struct {
	catalog menu.Store
}

// New 创建菜单处理器
func New(catalog menu.Store) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes 注册菜单相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.handleCatalog)
	r.Get("/events", h.handleEvents)
}

func (h *Handler) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.catalog.Catalog())
}

func (h *Handler) handleEvents(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.catalog.Catalog().Events)
}
