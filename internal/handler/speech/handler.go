package speech

import (
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lejockey/concierge/backend/internal/i18n"
	"github.com/lejockey/concierge/backend/internal/service/concierge"
	"github.com/lejockey/concierge/backend/pkg/utils"
)

// Transcriber 抽象语音转写，便于测试与替换实现
type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64, mimeType string, lang i18n.Language) (string, error)
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string, lang i18n.Language) (string, error)
}

// Handler 语音服务的HTTP处理器
type Handler struct {
	transcriber    Transcriber
	maxUploadBytes int64
	timeout        time.Duration
}

// New 创建语音处理器. A zero timeout leaves the request context untouched.
func New(transcriber Transcriber, maxUploadBytes int64, timeout time.Duration) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		transcriber:    transcriber,
		maxUploadBytes: maxUploadBytes,
		timeout:        timeout,
	}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/transcribe", h.handleTranscribe)
		speechRouter.Get("/health", h.handleHealth)
	})
}

// handleTranscribe 接受 multipart 上传的 audio 文件，或 JSON {audio, mimeType, language}
func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if h.timeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		r = r.WithContext(ctx)
	}

	var (
		text string
		err  error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		text, err = h.transcribeMultipart(r)
	} else {
		text, err = h.transcribeJSON(r)
	}
	if err != nil {
		h.respondTranscribeError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *Handler) transcribeMultipart(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return "", badRequest(err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		return "", errAudioRequired
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return "", badRequest(err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = inferAudioMIME(header.Filename)
	}

	lang := i18n.Parse(r.FormValue("language"))
	log.Printf("[speech] transcribing upload name=%s mime=%s bytes=%d", header.Filename, mimeType, len(audio))
	return h.transcriber.TranscribeAudio(r.Context(), audio, mimeType, lang)
}

func (h *Handler) transcribeJSON(r *http.Request) (string, error) {
	var payload struct {
		Audio    string `json:"audio"`
		MIMEType string `json:"mimeType"`
		Language string `json:"language"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		return "", badRequest(err)
	}
	if strings.TrimSpace(payload.Audio) == "" {
		return "", errAudioRequired
	}
	return h.transcriber.Transcribe(r.Context(), payload.Audio, payload.MIMEType, i18n.Parse(payload.Language))
}

var errAudioRequired = errors.New("audio is required")

type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error { return requestError{err: err} }

func (h *Handler) respondTranscribeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	var reqErr requestError
	switch {
	case errors.As(err, &tooLarge):
		utils.RespondError(w, http.StatusRequestEntityTooLarge, "audio upload too large")
	case errors.Is(err, errAudioRequired), errors.Is(err, concierge.ErrEmptyAudio):
		utils.RespondError(w, http.StatusBadRequest, "audio is required")
	case errors.Is(err, concierge.ErrInvalidAudio):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &reqErr):
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, concierge.ErrProviderUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, "transcription unavailable")
	default:
		log.Printf("[speech] ASR error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "speech recognition failed")
	}
}

// handleHealth 健康检查端点
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "speech",
	})
}

// inferAudioMIME 从文件名推断音频类型
func inferAudioMIME(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	default:
		return concierge.DefaultAudioMIMEType
	}
}
