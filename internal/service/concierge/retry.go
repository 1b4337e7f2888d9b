package concierge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ProviderError 包装后端错误及其返回的状态
type ProviderError struct {
	Code   int
	Status string
	Err    error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Status != "" && e.Err != nil:
		return fmt.Sprintf("provider error %d %s: %v", e.Code, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("provider error %d: %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("provider error %d %s", e.Code, e.Status)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsQuotaError reports whether err means the backend is throttling us.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		if providerErr.Code == 429 || strings.EqualFold(providerErr.Status, "RESOURCE_EXHAUSTED") {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}

// RetryPolicy 限流时的重试策略
type RetryPolicy struct {
	// MaxAttempts 包含第一次调用
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep 两次尝试之间的等待，为 nil 时使用可取消的计时器
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy 最多三次，间隔 2s、4s
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// Retry runs op, retrying with exponential backoff only while it fails with a quota error.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		if !IsQuotaError(err) || attempt+1 >= attempts {
			return zero, err
		}

		delay := policy.BaseDelay * time.Duration(1<<attempt)
		log.Printf("[concierge] rate limited, retrying in %s (attempt %d/%d)", delay, attempt+1, attempts)
		if err := sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry aborted: %w", err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
