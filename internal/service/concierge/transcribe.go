package concierge

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/lejockey/concierge/backend/internal/i18n"
)

var (
	// ErrEmptyAudio 没有可转写的音频
	ErrEmptyAudio = errors.New("audio payload is empty")
	// ErrInvalidAudio base64 数据无法解码
	ErrInvalidAudio = errors.New("invalid audio payload")
)

// Transcribe 解码 base64 音频（纯数据或 data URL）并转写
func (s *Service) Transcribe(ctx context.Context, audioBase64, mimeType string, lang i18n.Language) (string, error) {
	payload := strings.TrimSpace(audioBase64)
	if strings.HasPrefix(payload, "data:") {
		header, data, ok := strings.Cut(payload, ",")
		if !ok {
			return "", fmt.Errorf("%w: malformed data url", ErrInvalidAudio)
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		payload = data
	}

	audio, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}
	return s.TranscribeAudio(ctx, audio, mimeType, lang)
}

// TranscribeAudio 在对话之外执行一次性转写
// Quota errors are retried; every other failure is returned to the caller.
func (s *Service) TranscribeAudio(ctx context.Context, audio []byte, mimeType string, lang i18n.Language) (string, error) {
	if s.provider == nil {
		return "", ErrProviderUnavailable
	}
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if mimeType == "" {
		mimeType = DefaultAudioMIMEType
	}

	req := TranscriptionRequest{
		Model:       s.opts.TranscriptionModel,
		Audio:       audio,
		MIMEType:    mimeType,
		Instruction: TranscriptionInstruction(lang),
	}

	text, err := Retry(ctx, s.opts.Retry, func(ctx context.Context) (string, error) {
		return s.provider.Transcribe(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return strings.TrimSpace(text), nil
}
