package llm

import (
	"context"
	"math"
	"time"

	"github.com/easyops/kgpath/pkg/core/errors"
)

const maxBackoff = 30 * time.Second

// Retrier 带指数退避的重试器
type Retrier struct {
	MaxRetries int
	BaseDelay  time.Duration
	OnRetry    func(attempt int, err error)
}

// Do 执行 fn，仅在错误可重试时重试
func (r Retrier) Do(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return errors.ErrContextCanceled
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.IsRetryable(err) || attempt == r.MaxRetries {
			break
		}
		if r.OnRetry != nil {
			r.OnRetry(attempt+1, err)
		}

		select {
		case <-ctx.Done():
			return errors.ErrContextCanceled
		case <-time.After(backoff(attempt, r.BaseDelay)):
		}
	}

	return lastErr
}

// backoff 计算 baseDelay * 2^attempt，加 10% 抖动，上限 30 秒
func backoff(attempt int, baseDelay time.Duration) time.Duration {
	delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt)))
	delay += delay / 10
	if delay > maxBackoff || delay < 0 {
		delay = maxBackoff
	}
	return delay
}
