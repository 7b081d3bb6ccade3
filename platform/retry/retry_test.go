package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"lead_portal_backend/platform/logger"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.New("test"), "op", 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDoWrapsLastError(t *testing.T) {
	boom := errors.New("boom")
	err := Do(context.Background(), logger.New("test"), "op", 2, time.Millisecond, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, logger.New("test"), "op", 5, time.Millisecond, func() error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Fatalf("expected immediate cancel, got %v after %d calls", err, calls)
	}
}

func TestDoRejectsZeroAttempts(t *testing.T) {
	if err := Do(context.Background(), logger.New("test"), "op", 0, time.Millisecond, func() error { return nil }); err == nil {
		t.Fatalf("expected error")
	}
}
