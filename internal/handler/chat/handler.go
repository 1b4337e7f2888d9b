package chat

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lejockey/concierge/backend/internal/i18n"
	chatService "github.com/lejockey/concierge/backend/internal/service/chat"
	"github.com/lejockey/concierge/backend/internal/service/reply"
	"github.com/lejockey/concierge/backend/pkg/utils"
)

// Dropper 释放与会话绑定的状态，例如模型对话和购物车
type Dropper interface {
	Drop(sessionID string)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc  *chatService.Service
	replies  *reply.Service
	droppers []Dropper
}

// New 创建聊天处理器，删除会话时依次调用droppers
func New(chatSvc *chatService.Service, replies *reply.Service, droppers ...Dropper) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		replies:  replies,
		droppers: droppers,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/{sessionID}/messages", h.handleListMessages)
	r.Post("/{sessionID}/messages", h.handleSendMessage)
	r.Delete("/{sessionID}", h.handleDeleteSession)
}

// handleCreateSession 创建会话并返回开场白
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Language string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, greeting, err := h.chatSvc.CreateSession(r.Context(), i18n.Parse(payload.Language))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[chat] session created id=%s language=%s", session.ID, session.Language)
	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"message": greeting,
	})
}

// handleListMessages 返回会话记录
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleSendMessage 发送用户消息并返回礼宾回复
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var lang i18n.Language
	if payload.Language != "" {
		lang = i18n.Parse(payload.Language)
	}

	result, err := h.replies.Respond(r.Context(), chi.URLParam(r, "sessionID"), payload.Text, lang)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chatSvc.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	for _, d := range h.droppers {
		d.Drop(sessionID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrMessageEmpty):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[chat] request failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
