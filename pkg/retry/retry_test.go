package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 5*time.Second {
		t.Errorf("MaxDelay = %v, want 5s", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", cfg.Multiplier)
	}
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("warehouse not ready")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2

	persistent := errors.New("mart unreachable")
	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return persistent
	})

	if err != persistent {
		t.Errorf("Do() error = %v, want %v", err, persistent)
	}
	// 1 initial attempt + MaxRetries retries.
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxRetries:   5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	calls := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Do(ctx, cfg, func() error {
		calls++
		return errors.New("still down")
	})

	if err != context.Canceled {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("cancellation took %v, want prompt return", elapsed)
	}
}

func TestDo_BackoffDoublesAndCaps(t *testing.T) {
	cfg := &Config{
		MaxRetries:   3,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     120 * time.Millisecond,
		Multiplier:   2.0,
	}

	var callTimes []time.Time
	_ = Do(context.Background(), cfg, func() error {
		callTimes = append(callTimes, time.Now())
		return errors.New("still down")
	})

	if len(callTimes) != 4 {
		t.Fatalf("calls = %d, want 4", len(callTimes))
	}

	first := callTimes[1].Sub(callTimes[0])
	if first < 45*time.Millisecond || first > 80*time.Millisecond {
		t.Errorf("first backoff = %v, want ~50ms", first)
	}
	second := callTimes[2].Sub(callTimes[1])
	if second < 90*time.Millisecond || second > 140*time.Millisecond {
		t.Errorf("second backoff = %v, want ~100ms", second)
	}
	// The third delay would be 200ms unclamped; MaxDelay holds it at 120ms.
	third := callTimes[3].Sub(callTimes[2])
	if third > 170*time.Millisecond {
		t.Errorf("third backoff = %v, want capped near 120ms", third)
	}
}

func TestDo_NilConfigUsesDefaults(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Errorf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoWithResult_ReturnsValue(t *testing.T) {
	calls := 0
	result, err := DoWithResult(context.Background(), fastConfig(), func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("warehouse not ready")
		}
		return 42, nil
	})

	if err != nil {
		t.Errorf("DoWithResult() error = %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoWithResult_KeepsLastResultOnFailure(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 1

	persistent := errors.New("login failed for user")
	result, err := DoWithResult(context.Background(), cfg, func() (string, error) {
		return "partial", persistent
	})

	if err != persistent {
		t.Errorf("DoWithResult() error = %v, want %v", err, persistent)
	}
	if result != "partial" {
		t.Errorf("result = %q, want last attempt's value", result)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"mixed case", errors.New("Connection Refused"), true},
		{"connection reset", errors.New("connection reset by peer"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"no such host", errors.New("no such host"), true},
		{"deadline exceeded", errors.New("context deadline exceeded: timeout"), true},
		{"i/o timeout", errors.New("i/o timeout"), true},
		{"network unreachable", errors.New("network is unreachable"), true},
		{"too many connections", errors.New("too many connections"), true},
		{"bad password", errors.New("authentication failed"), false},
		{"permission denied", errors.New("permission denied"), false},
		{"bad sql", errors.New("syntax error at position 10"), false},
		{"missing table", errors.New("table not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestDoIfRetryable_RetriesTransportErrors(t *testing.T) {
	calls := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection timeout")
		}
		return nil
	})

	if err != nil {
		t.Errorf("DoIfRetryable() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoIfRetryable_FailsFastOnAuthErrors(t *testing.T) {
	badAuth := errors.New("authentication failed")
	calls := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		calls++
		return badAuth
	})

	if err != badAuth {
		t.Errorf("DoIfRetryable() error = %v, want %v", err, badAuth)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1; bad credentials must not be retried", calls)
	}
}

func TestDoIfRetryable_ExhaustsRetryableErrors(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2

	down := errors.New("connection refused")
	calls := 0
	err := DoIfRetryable(context.Background(), cfg, func() error {
		calls++
		return down
	})

	if err != down {
		t.Errorf("DoIfRetryable() error = %v, want %v", err, down)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
