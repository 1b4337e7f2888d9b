package stream

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lejockey/concierge/backend/internal/i18n"
	chatService "github.com/lejockey/concierge/backend/internal/service/chat"
	"github.com/lejockey/concierge/backend/internal/service/reply"
	"github.com/lejockey/concierge/backend/pkg/utils"
)

// Handler 通过SSE推送礼宾回复
type Handler struct {
	chatSvc *chatService.Service
	replies *reply.Service
}

// New 创建流式处理器
func New(chatSvc *chatService.Service, replies *reply.Service) *Handler {
	return &Handler{chatSvc: chatSvc, replies: replies}
}

// StreamEvent SSE事件数据
type StreamEvent struct {
	SessionID string       `json:"sessionId"`
	Reply     *reply.Reply `json:"reply,omitempty"`
	Finished  bool         `json:"finished,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	if _, err := h.chatSvc.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var lang i18n.Language
	if raw := r.URL.Query().Get("language"); raw != "" {
		lang = i18n.Parse(raw)
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	if err := utils.SendSSEEvent(w, flusher, "start", StreamEvent{SessionID: sessionID}); err != nil {
		log.Printf("[stream] session=%s: %v", sessionID, err)
		return
	}

	result, err := h.replies.Respond(ctx, sessionID, message, lang)
	if err != nil {
		log.Printf("[stream] session=%s reply failed: %v", sessionID, err)
		utils.SendSSEEvent(w, flusher, "error", StreamEvent{SessionID: sessionID, Error: err.Error()})
		return
	}

	if err := utils.SendSSEEvent(w, flusher, "message", StreamEvent{SessionID: sessionID, Reply: &result}); err != nil {
		log.Printf("[stream] session=%s: %v", sessionID, err)
		return
	}
	utils.SendSSEEvent(w, flusher, "end", StreamEvent{SessionID: sessionID, Finished: true})

	log.Printf("[stream] completed response for session=%s", sessionID)
}
