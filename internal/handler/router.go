package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lejockey/concierge/backend/internal/handler/cart"
	"github.com/lejockey/concierge/backend/internal/handler/chat"
	"github.com/lejockey/concierge/backend/internal/handler/menu"
	"github.com/lejockey/concierge/backend/internal/handler/speech"
	"github.com/lejockey/concierge/backend/internal/handler/stream"
	middlewarePkg "github.com/lejockey/concierge/backend/internal/middleware"
	menuModel "github.com/lejockey/concierge/backend/internal/model/menu"
	chatService "github.com/lejockey/concierge/backend/internal/service/chat"
	conciergeService "github.com/lejockey/concierge/backend/internal/service/concierge"
	orderService "github.com/lejockey/concierge/backend/internal/service/order"
	"github.com/lejockey/concierge/backend/internal/service/reply"
	"github.com/lejockey/concierge/backend/pkg/utils"
)

// Dependencies HTTP 层依赖的服务
type Dependencies struct {
	Catalog        menuModel.Store
	Chats          *chatService.Service
	Concierge      *conciergeService.Service
	Orders         *orderService.Service
	AllowedOrigins []string
	MaxUploadBytes int64
	SpeechTimeout  time.Duration
}

// NewRouter 创建并配置路由
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	replies := reply.NewService(deps.Concierge, deps.Chats, deps.Orders)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":    "ok",
				"concierge": deps.Concierge.Available(),
			})
		})

		menu.New(deps.Catalog).RegisterRoutes(api)

		api.Route("/chat", func(chatRouter chi.Router) {
			chat.New(deps.Chats, replies, deps.Concierge, deps.Orders).RegisterRoutes(chatRouter)
			chat.NewWebSocketHandler(deps.Chats, replies, deps.Concierge).RegisterRoutes(chatRouter)
		})

		stream.New(deps.Chats, replies).RegisterRoutes(api)
		speech.New(deps.Concierge, deps.MaxUploadBytes, deps.SpeechTimeout).RegisterRoutes(api)

		api.Route("/cart", func(cartRouter chi.Router) {
			cart.New(deps.Orders).RegisterRoutes(cartRouter)
		})
	})

	return r
}
