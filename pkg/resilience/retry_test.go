package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fast = Backoff{Attempts: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "connect", fast, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("refused")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	boom := errors.New("refused")
	calls := 0
	err := Retry(context.Background(), "connect", fast, func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 3 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := Backoff{Attempts: 5, Initial: time.Hour}
	calls := 0
	err := Retry(ctx, "connect", b, func(context.Context) error {
		calls++
		cancel()
		return errors.New("refused")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Errorf("err = %v, calls = %d", err, calls)
	}
}

func TestDelayCapped(t *testing.T) {
	b := Backoff{Initial: time.Second, Max: 3 * time.Second}
	if d := b.delay(10); d != 3*time.Second {
		t.Errorf("delay = %v, want cap", d)
	}
	if d := b.delay(1); d != time.Second {
		t.Errorf("delay = %v, want initial", d)
	}
}
