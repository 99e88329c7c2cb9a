package httpx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestSessionManager_Identity(t *testing.T) {
	m := NewSessionManager(Options{})
	ctx := context.Background()

	first, err := m.Acquire(ctx)
	require.NoError(t, err)
	second, err := m.Acquire(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.False(t, first.Closed())
}

func TestSessionManager_RenewAfterRelease(t *testing.T) {
	m := NewSessionManager(Options{})
	ctx := context.Background()

	first, err := m.Acquire(ctx)
	require.NoError(t, err)

	m.Release()
	assert.True(t, first.Closed())

	second, err := m.Acquire(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.False(t, second.Closed())
}

func TestSessionManager_ReleaseIsIdempotent(t *testing.T) {
	m := NewSessionManager(Options{})
	m.Release()

	_, err := m.Acquire(context.Background())
	require.NoError(t, err)

	m.Release()
	m.Release()
}

func TestSessionManager_RequiresActiveContext(t *testing.T) {
	m := NewSessionManager(Options{})

	//nolint:staticcheck // nil context is the case under test
	_, err := m.Acquire(nil)
	assert.ErrorIs(t, err, ErrNoActiveContext)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Acquire(ctx)
	assert.ErrorIs(t, err, ErrNoActiveContext)
}

func TestSession_DoAfterClose(t *testing.T) {
	m := NewSessionManager(Options{})
	s, err := m.Acquire(context.Background())
	require.NoError(t, err)
	s.Close()

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil)
	require.NoError(t, err)
	_, err = s.Do(req)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// hijackTwice drops the first two connections without a response
func hijackTwice(t *testing.T, mu *sync.Mutex, bodies *[]string) *httptest.Server {
	var hits atomic.Int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		*bodies = append(*bodies, string(body))
		mu.Unlock()

		if hits.Add(1) <= 2 {
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
}

func TestSession_RetriesAndReplaysBody(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	server := hijackTwice(t, &mu, &bodies)
	defer server.Close()

	var delays []time.Duration
	m := NewSessionManager(Options{
		Retry: RetryPolicy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Sleep: func(_ context.Context, d time.Duration) error {
				delays = append(delays, d)
				return nil
			},
		},
	})
	defer m.Release()

	s, err := m.Acquire(context.Background())
	require.NoError(t, err)

	resp, err := s.Post(context.Background(), server.URL, "application/json", []byte(`{"action":"version"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{`{"action":"version"}`, `{"action":"version"}`, `{"action":"version"}`}, bodies)
}

func TestSession_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	m := NewSessionManager(Options{
		Name:             "anki",
		Retry:            RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, Sleep: noSleep},
		BreakerThreshold: 2,
		BreakerCooldown:  time.Minute,
	})
	defer m.Release()

	s, err := m.Acquire(context.Background())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = s.Post(context.Background(), url, "application/json", []byte(`{}`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	_, err = s.Post(context.Background(), url, "application/json", []byte(`{}`))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "anki unavailable")
}
