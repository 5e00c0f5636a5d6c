package clients

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-engine/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-engine/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "assistant",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()

	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

// serve starts handler and returns a client pointed at it. tweak may adjust
// the config before the client is built.
func serve(t *testing.T, handler http.HandlerFunc, tweak func(*Config)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	if tweak != nil {
		tweak(cfg)
	}

	client, err := New(cfg)
	require.NoError(t, err)

	return client
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")

	cfg := defaultConfig()
	cfg.ServiceName = ""

	_, err = New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")

	cfg = defaultConfig()
	cfg.BaseURL = "http://assistant:8000"

	client, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://assistant:8000", client.baseURL)
	assert.Equal(t, "assistant", client.ServiceName())
}

func TestClient_HeaderPropagation(t *testing.T) {
	var requestID, correlationID atomic.Value

	client := serve(t, func(w http.ResponseWriter, r *http.Request) {
		requestID.Store(r.Header.Get(middleware.HeaderRequestID))
		correlationID.Store(r.Header.Get(middleware.HeaderCorrelationID))
		w.WriteHeader(http.StatusOK)
	}, nil)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-456")

	resp, err := client.Get(ctx, "/api/quotation/q-1", nil)
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, "req-123", requestID.Load())
	assert.Equal(t, "corr-456", correlationID.Load())
}

func TestClient_Retry(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		wantStatus   int
		wantErr      error
		wantAttempts int32
	}{
		{
			name:         "server errors are retried until success",
			statuses:     []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusOK},
			wantStatus:   http.StatusOK,
			wantAttempts: 3,
		},
		{
			name:         "client errors are returned at once",
			statuses:     []int{http.StatusUnprocessableEntity},
			wantStatus:   http.StatusUnprocessableEntity,
			wantAttempts: 1,
		},
		{
			name:         "gives up after max attempts",
			statuses:     []int{http.StatusServiceUnavailable},
			wantErr:      ErrMaxRetriesExceeded,
			wantAttempts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32

			client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
				n := int(attempts.Add(1))
				w.WriteHeader(tt.statuses[min(n, len(tt.statuses))-1])
			}, nil)

			resp, err := client.Get(context.Background(), "/api/quotation/q-1", nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				closeBody(t, resp)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
			}

			assert.Equal(t, tt.wantAttempts, attempts.Load())
		})
	}
}

func TestClient_CircuitBreakerIntegration(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *Config) {
		cfg.Retry.MaxAttempts = 1
		cfg.Circuit.MaxFailures = 2
	})

	wantStates := []State{StateClosed, StateOpen}
	for _, want := range wantStates {
		_, err := client.Get(context.Background(), "/api/chat/", nil)
		require.Error(t, err)
		assert.Equal(t, want, client.CircuitState())
	}

	_, err := client.Get(context.Background(), "/api/chat/", nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
}

func TestClient_Timeout(t *testing.T) {
	client := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}, func(cfg *Config) {
		cfg.Timeout = 50 * time.Millisecond
		cfg.Retry.MaxAttempts = 1
	})

	_, err := client.Get(context.Background(), "/api/chat/", nil)
	require.Error(t, err)
}

func TestClient_BuildURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseURL = "https://api.example.com"

	client, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/users", client.buildURL("/users"))
	assert.Equal(t, "https://api.example.com/users", client.buildURL("users"))

	cfg.BaseURL = "https://api.example.com/"
	client, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users", client.buildURL("/users"))
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, "/test", nil)
	require.Error(t, err)
}

func TestCalculateBackoff(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retry.InitialInterval = 100 * time.Millisecond
	cfg.Retry.Multiplier = 2.0
	cfg.Retry.MaxInterval = 1 * time.Second

	client, err := New(cfg)
	require.NoError(t, err)

	backoff0 := client.calculateBackoff(0)
	backoff1 := client.calculateBackoff(1)
	backoff2 := client.calculateBackoff(2)

	assert.InDelta(t, 100*time.Millisecond, backoff0, float64(50*time.Millisecond))
	assert.InDelta(t, 200*time.Millisecond, backoff1, float64(100*time.Millisecond))
	assert.InDelta(t, 400*time.Millisecond, backoff2, float64(200*time.Millisecond))

	backoff10 := client.calculateBackoff(10)
	assert.LessOrEqual(t, backoff10, cfg.Retry.MaxInterval+cfg.Retry.MaxInterval/4)
}

// testNetError is a mock net.Error for testing.
type testNetError struct {
	timeout bool
}

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"net error with timeout", testNetError{timeout: true}, true},
		{"net error without timeout", testNetError{timeout: false}, false},
		{"net op error connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryableError(tt.err)
			assert.Equal(t, tt.retryable, result)
		})
	}
}

func TestClient_CircuitBreakerShortCircuitsWhenOpen(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2

	client, err := New(cfg)
	require.NoError(t, err)

	// Trigger failures to open the circuit
	_, _ = client.Get(context.Background(), "/test", nil)
	_, _ = client.Get(context.Background(), "/test", nil)
	assert.Equal(t, StateOpen, client.CircuitState())

	callsBefore := atomic.LoadInt32(&calls)

	// This request should be short-circuited without hitting the server
	_, err = client.Get(context.Background(), "/test", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, callsBefore, atomic.LoadInt32(&calls), "request should be short-circuited when circuit is open")
}

func TestClient_PostJSON(t *testing.T) {
	var (
		receivedBody        string
		receivedContentType string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.PostJSON(context.Background(), "/api/chat/", map[string]string{"message": "add logo"})
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", receivedContentType)
	assert.JSONEq(t, `{"message": "add logo"}`, receivedBody)
}

func TestClient_PostJSONReplaysBodyOnRetry(t *testing.T) {
	var (
		attempts int32
		bodies   = make(chan string, 3)
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- string(body)

		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.PostJSON(context.Background(), "/api/sync-quotation/", map[string]int{"qty": 2})
	require.NoError(t, err)
	defer closeBody(t, resp)

	require.Len(t, bodies, 3)
	for range 3 {
		assert.JSONEq(t, `{"qty": 2}`, <-bodies)
	}
}

func TestClient_GetQuery(t *testing.T) {
	var receivedQuery string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedQuery = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/api/quotation/", url.Values{"id": {"q 1"}})
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "q 1", receivedQuery)
}

func TestNew_Defaults(t *testing.T) {
	cfg := defaultConfig()
	cfg.Timeout = 0
	cfg.Retry.MaxAttempts = 0

	client, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, defaultTimeout, client.http.Timeout)
	assert.Equal(t, 1, client.retry.MaxAttempts)
	assert.Equal(t, "test-service", client.ServiceName())
}

func TestConfigFor(t *testing.T) {
	shared := &config.ClientConfig{
		Timeout: 5 * time.Second,
		Retry:   config.RetryConfig{MaxAttempts: 3},
	}

	t.Run("endpoint timeout wins", func(t *testing.T) {
		svc := &config.ServiceEndpointConfig{BaseURL: "http://assistant:8000", Name: "assistant", Timeout: time.Second}

		cfg := ConfigFor(shared, svc, nil)

		assert.Equal(t, "http://assistant:8000", cfg.BaseURL)
		assert.Equal(t, "assistant", cfg.ServiceName)
		assert.Equal(t, time.Second, cfg.Timeout)
		assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	})

	t.Run("falls back to shared timeout", func(t *testing.T) {
		svc := &config.ServiceEndpointConfig{Name: "backend"}

		assert.Equal(t, 5*time.Second, ConfigFor(shared, svc, nil).Timeout)
	})
}
