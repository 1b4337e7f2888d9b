package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lejockey/concierge/backend/internal/i18n"
	chatService "github.com/lejockey/concierge/backend/internal/service/chat"
	"github.com/lejockey/concierge/backend/internal/service/reply"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second

	// 排队等待处理的消息上限，超出时直接回错误
	inboxSize = 8
)

// Transcriber 语音转文字
type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64, mimeType string, lang i18n.Language) (string, error)
}

// WebSocketHandler 实时对话处理器：文字、语音与语言切换共用一条连接
type WebSocketHandler struct {
	chatSvc     *chatService.Service
	replies     *reply.Service
	transcriber Transcriber
	upgrader    websocket.Upgrader

	readTimeout  time.Duration
	pingInterval time.Duration
}

// NewWebSocketHandler 创建WebSocket处理器. transcriber may be nil.
func NewWebSocketHandler(chatSvc *chatService.Service, replies *reply.Service, transcriber Transcriber) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc:     chatSvc,
		replies:     replies,
		transcriber: transcriber,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		readTimeout:  readTimeout,
		pingInterval: pingInterval,
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

// AudioMessage 语音消息，audio 为 base64 或 data URL
type AudioMessage struct {
	Audio    string `json:"audio"`
	MIMEType string `json:"mimeType"`
}

// ConfigMessage 配置消息
type ConfigMessage struct {
	Language string `json:"language"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type connection struct {
	conn      *websocket.Conn
	sessionID string
	language  i18n.Language

	writeMu sync.Mutex
}

func (c *connection) send(kind string, data interface{}) {
	msg := outgoingMessage{
		Type:      kind,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", kind, err)
	}
}

func (c *connection) sendError(message string) {
	c.send("error", map[string]string{"message": message})
}

func (c *connection) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := &connection{conn: ws, sessionID: sessionID, language: session.Language}

	ws.SetReadDeadline(time.Now().Add(h.readTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	conn.send("connected", map[string]any{
		"language":   conn.language,
		"voiceInput": h.transcriber != nil,
	})

	// 回复可能因重试退避耗时较长，交给worker按序处理，读循环保持运行以便处理pong
	inbox := make(chan inboundMessage, inboxSize)
	defer close(inbox)
	go h.worker(ctx, conn, inbox)

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		ws.SetReadDeadline(time.Now().Add(h.readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			conn.sendError("session mismatch")
			continue
		}

		select {
		case inbox <- msg:
		default:
			conn.sendError("too many pending messages")
		}
	}
}

// worker 依次处理收到的消息，保证同一会话的对话轮次串行
func (h *WebSocketHandler) worker(ctx context.Context, conn *connection, inbox <-chan inboundMessage) {
	for msg := range inbox {
		if ctx.Err() != nil {
			continue
		}
		h.handleMessage(ctx, conn, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *connection, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		var text TextMessage
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			conn.sendError("invalid text payload")
			return
		}
		h.respond(ctx, conn, text.Text)
	case "audio":
		h.handleAudioMessage(ctx, conn, msg.Data)
	case "config":
		h.handleConfigMessage(ctx, conn, msg.Data)
	default:
		conn.sendError("unsupported message type: " + msg.Type)
	}
}

func (h *WebSocketHandler) handleAudioMessage(ctx context.Context, conn *connection, raw json.RawMessage) {
	if h.transcriber == nil {
		conn.sendError("voice input unavailable")
		return
	}

	var audio AudioMessage
	if err := json.Unmarshal(raw, &audio); err != nil {
		conn.sendError("invalid audio payload")
		return
	}

	text, err := h.transcriber.Transcribe(ctx, audio.Audio, audio.MIMEType, conn.language)
	if err != nil {
		log.Printf("[websocket] session=%s transcription failed: %v", conn.sessionID, err)
		conn.sendError("transcription failed")
		return
	}

	conn.send("transcript", map[string]string{"text": text})
	if text == "" {
		return
	}
	h.respond(ctx, conn, text)
}

func (h *WebSocketHandler) handleConfigMessage(ctx context.Context, conn *connection, raw json.RawMessage) {
	var cfg ConfigMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		conn.sendError("invalid config payload")
		return
	}

	if cfg.Language != "" {
		lang := i18n.Parse(cfg.Language)
		if _, err := h.chatSvc.SetLanguage(ctx, conn.sessionID, lang); err != nil {
			conn.sendError(err.Error())
			return
		}
		conn.language = lang
	}

	log.Printf("[websocket] config applied session=%s language=%s", conn.sessionID, conn.language)
	conn.send("config", map[string]any{"language": conn.language})
}

func (h *WebSocketHandler) respond(ctx context.Context, conn *connection, text string) {
	result, err := h.replies.Respond(ctx, conn.sessionID, text, conn.language)
	if err != nil {
		conn.sendError(err.Error())
		return
	}
	conn.send("reply", result)
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
