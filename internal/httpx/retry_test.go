package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestRetryPolicy_SucceedsOnThirdAttempt(t *testing.T) {
	rec := &sleepRecorder{}
	policy := DefaultRetryPolicy()
	policy.Sleep = rec.sleep

	calls := 0
	err := policy.Run(context.Background(), func(attempt int) error {
		calls++
		if attempt < 2 {
			return syscall.ECONNREFUSED
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestRetryPolicy_AlwaysFailing(t *testing.T) {
	rec := &sleepRecorder{}
	policy := DefaultRetryPolicy()
	policy.Sleep = rec.sleep

	underlying := fmt.Errorf("dial tcp: %w", syscall.ECONNRESET)
	calls := 0
	err := policy.Run(context.Background(), func(int) error {
		calls++
		return underlying
	})

	assert.Same(t, underlying, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, rec.delays, 2)
}

func TestRetryPolicy_NonTransientNotRetried(t *testing.T) {
	rec := &sleepRecorder{}
	policy := DefaultRetryPolicy()
	policy.Sleep = rec.sleep

	malformed := errors.New("malformed request")
	calls := 0
	err := policy.Run(context.Background(), func(int) error {
		calls++
		return malformed
	})

	assert.ErrorIs(t, err, malformed)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestRetryPolicy_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := DefaultRetryPolicy()
	policy.Sleep = func(context.Context, time.Duration) error {
		t.Fatal("sleep must not be called after cancellation")
		return nil
	}

	calls := 0
	err := policy.Run(ctx, func(int) error {
		calls++
		cancel()
		return io.EOF
	})

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_SleepInterruptedByContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}
	err := policy.sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryPolicy_UnknownHostFailsFast(t *testing.T) {
	rec := &sleepRecorder{}
	policy := DefaultRetryPolicy()
	policy.Sleep = rec.sleep

	underlying := &net.OpError{Op: "dial", Net: "tcp",
		Err: &net.DNSError{Err: "no such host", Name: "ankii.local", IsNotFound: true}}
	calls := 0
	err := policy.Run(context.Background(), func(int) error {
		calls++
		return underlying
	})

	assert.Same(t, underlying, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"plain error", errors.New("bad request"), false},
		{"eof", io.EOF, true},
		{"unexpected eof", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), true},
		{"refused", syscall.ECONNREFUSED, true},
		{"reset", syscall.ECONNRESET, true},
		{"deadline", context.DeadlineExceeded, true},
		{"unknown host", &net.OpError{Op: "dial", Net: "tcp",
			Err: &net.DNSError{Err: "no such host", Name: "ankii", IsNotFound: true}}, false},
		{"dns timeout", &net.DNSError{Err: "i/o timeout", Name: "localhost", IsTimeout: true}, true},
		{"temporary dns failure", &net.DNSError{Err: "server misbehaving", Name: "localhost", IsTemporary: true}, true},
		{"dial failure", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("network is unreachable")}, true},
		{"listen failure", &net.OpError{Op: "listen", Net: "tcp", Err: errors.New("address in use")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
