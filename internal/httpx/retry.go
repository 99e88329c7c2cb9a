package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"syscall"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// RetryPolicy retries transient failures with exponential backoff.
// The delay before attempt n+1 is BaseDelay * 2^(n-1): 1s, 2s, ...
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep waits between attempts; nil means a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// IsTransient decides whether an error is worth another attempt;
	// nil means IsTransient.
	IsTransient func(err error) bool
}

// DefaultRetryPolicy returns 3 attempts with 1s and 2s backoff
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
	}
}

// Run calls fn until it succeeds, fails with a non-transient error, or
// the attempt budget is spent. The last underlying error is returned
// unchanged.
func (p RetryPolicy) Run(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil || !p.transient(err) {
			return err
		}

		if attempt == attempts-1 {
			slog.Error("request failed after retries",
				slog.Int("attempts", attempts),
				slog.String("error", err.Error()))
			return err
		}

		delay := p.delay(attempt)
		slog.Warn("transient request failure, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}

	return err
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	return base * time.Duration(1<<attempt)
}

func (p RetryPolicy) transient(err error) bool {
	if p.IsTransient != nil {
		return p.IsTransient(err)
	}
	return IsTransient(err)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTransient reports whether err is a network failure worth retrying:
// refused or reset connections, abrupt disconnects and timeouts.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// An unknown host stays unknown
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "read" || opErr.Op == "write"
	}
	return false
}
