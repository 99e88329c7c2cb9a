package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrNoActiveContext is returned when a session is requested without a live context
	ErrNoActiveContext = errors.New("httpx: session requires an active context")

	// ErrSessionClosed is returned when a released session is used
	ErrSessionClosed = errors.New("httpx: session is closed")
)

const (
	defaultTimeout          = 30 * time.Second
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
)

// Options configures sessions created by a SessionManager
type Options struct {
	Name      string            // Used in logs and breaker state changes
	Timeout   time.Duration     // Per-request timeout (default 30s)
	Transport http.RoundTripper // nil means a clone of http.DefaultTransport
	Retry     RetryPolicy

	BreakerThreshold uint32        // Consecutive failed requests before the breaker opens
	BreakerCooldown  time.Duration // How long the breaker stays open
}

// SessionManager hands out one shared session until it is released
type SessionManager struct {
	mu      sync.Mutex
	opts    Options
	session *Session
}

// NewSessionManager creates a manager; no connection is made until Acquire
func NewSessionManager(opts Options) *SessionManager {
	if opts.Name == "" {
		opts.Name = "http"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Retry.MaxAttempts == 0 && opts.Retry.BaseDelay == 0 {
		sleep, transient := opts.Retry.Sleep, opts.Retry.IsTransient
		opts.Retry = DefaultRetryPolicy()
		opts.Retry.Sleep = sleep
		opts.Retry.IsTransient = transient
	}
	if opts.BreakerThreshold == 0 {
		opts.BreakerThreshold = defaultBreakerThreshold
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = defaultBreakerCooldown
	}

	return &SessionManager{opts: opts}
}

// Acquire returns the current session, creating it on first use or after a release
func (m *SessionManager) Acquire(ctx context.Context) (*Session, error) {
	if ctx == nil {
		return nil, ErrNoActiveContext
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoActiveContext, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || m.session.Closed() {
		m.session = newSession(m.opts)
	}
	return m.session, nil
}

// Release closes the current session. Releasing twice, or before any
// Acquire, is a no-op.
func (m *SessionManager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
}

// Session is one pooled HTTP client with retry and circuit breaking
type Session struct {
	name    string
	client  *http.Client
	retry   RetryPolicy
	breaker *gobreaker.CircuitBreaker
	closed  atomic.Bool
}

func newSession(opts Options) *Session {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	threshold := opts.BreakerThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    opts.Name,
		Timeout: opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &Session{
		name: opts.Name,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		retry:   opts.Retry,
		breaker: breaker,
	}
}

// Closed reports whether the session has been released
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Close drops idle pooled connections and marks the session closed
func (s *Session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.client.CloseIdleConnections()
	}
}

// Do sends the request through the retry policy and the circuit breaker.
// Requests with a body must be replayable via req.GetBody.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}

	ctx := req.Context()
	result, err := s.breaker.Execute(func() (interface{}, error) {
		var resp *http.Response
		err := s.retry.Run(ctx, func(attempt int) error {
			attemptReq, err := rewind(req, attempt)
			if err != nil {
				return err
			}
			resp, err = s.client.Do(attemptReq)
			return err
		})
		return resp, err
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s unavailable: %w", s.name, err)
	}
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

// Post sends body with the given content type to url
func (s *Session) Post(ctx context.Context, url, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return s.Do(req)
}

// rewind returns a request whose body starts from the beginning again
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to replay request body: %w", err)
	}

	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}
