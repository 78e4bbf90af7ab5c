package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
)

func TestRetrier_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := Retrier{MaxRetries: 3, BaseDelay: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetrier_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := Retrier{MaxRetries: 2, BaseDelay: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return kgerrors.ErrRateLimited
	})
	if !errors.Is(err, kgerrors.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetrier_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retrier{MaxRetries: 2}.Do(ctx, func() error {
		t.Fatal("fn must not run on a canceled context")
		return nil
	})
	if !errors.Is(err, kgerrors.ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		base    time.Duration
		want    time.Duration
	}{
		{0, 100 * time.Millisecond, 110 * time.Millisecond},
		{1, 100 * time.Millisecond, 220 * time.Millisecond},
		{3, 100 * time.Millisecond, 880 * time.Millisecond},
		{20, time.Second, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := backoff(tt.attempt, tt.base); got != tt.want {
			t.Fatalf("backoff(%d, %v) = %v, want %v", tt.attempt, tt.base, got, tt.want)
		}
	}
}
