package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-engine/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// logLines decodes every JSON line written to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}

	return lines
}

func TestIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		middleware func() gin.HandlerFunc
		header     string
		fromGin    func(*gin.Context) string
		fromCtx    func(context.Context) string
		incoming   string
		wantReused bool
	}{
		{"request id generated", RequestID, HeaderRequestID, GetRequestID, RequestIDFromContext, "", false},
		{"request id reused", RequestID, HeaderRequestID, GetRequestID, RequestIDFromContext, "req-123", true},
		{"request id with spaces replaced", RequestID, HeaderRequestID, GetRequestID, RequestIDFromContext, "bad id", false},
		{"request id too long replaced", RequestID, HeaderRequestID, GetRequestID, RequestIDFromContext, strings.Repeat("a", maxIDLength+1), false},
		{"correlation id generated", CorrelationID, HeaderCorrelationID, GetCorrelationID, CorrelationIDFromContext, "", false},
		{"correlation id reused", CorrelationID, HeaderCorrelationID, GetCorrelationID, CorrelationIDFromContext, "session-42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var fromGin, fromCtx string

			router := gin.New()
			router.Use(tt.middleware())
			router.GET("/test", func(c *gin.Context) {
				fromGin = tt.fromGin(c)
				fromCtx = tt.fromCtx(c.Request.Context())
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(tt.header, tt.incoming)
			}

			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, fromGin)
			assert.Equal(t, fromGin, fromCtx)
			assert.Equal(t, fromGin, w.Header().Get(tt.header))

			if tt.wantReused {
				assert.Equal(t, tt.incoming, fromGin)
			} else {
				assert.NotEqual(t, tt.incoming, fromGin)
				assert.Len(t, fromGin, 36)
			}
		})
	}
}

func TestMustGetIDs(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Empty(t, GetRequestID(c))
	assert.Equal(t, "unknown", MustGetRequestID(c))
	assert.Equal(t, "unknown", MustGetCorrelationID(c))

	c.Set(ContextKeyRequestID, "req-1")
	c.Set(ContextKeyCorrelationID, 42)

	assert.Equal(t, "req-1", MustGetRequestID(c))
	assert.Empty(t, GetCorrelationID(c), "non-string values are ignored")
}

func TestContextIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(ctx))

	ctx = ContextWithRequestID(ctx, "request-123")
	ctx = ContextWithCorrelationID(ctx, "correlation-456")

	assert.Equal(t, "request-123", RequestIDFromContext(ctx))
	assert.Equal(t, "correlation-456", CorrelationIDFromContext(ctx))
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		skip      []string
		wantLevel string
	}{
		{"success at info", "/api/v1/sessions?wait=true", http.StatusOK, nil, "INFO"},
		{"client error at warn", "/api/v1/sessions", http.StatusBadRequest, nil, "WARN"},
		{"server error at error", "/api/v1/sessions", http.StatusInternalServerError, nil, "ERROR"},
		{"probe paths skipped", "/-/ready", http.StatusOK, nil, ""},
		{"explicit skip", "/api/v1/noisy", http.StatusOK, []string{"/api/v1/noisy"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			router := gin.New()
			router.Use(ContextLogger(logger), RequestID(), Logging(logger, tt.skip...))
			router.Any("/*path", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.status, w.Code)

			lines := logLines(t, &buf)
			if tt.wantLevel == "" {
				assert.Empty(t, lines)
				return
			}

			require.Len(t, lines, 1)
			entry := lines[0]
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.path, entry["path"])
			assert.InDelta(t, float64(tt.status), entry["status"], 0)
			assert.Equal(t, w.Header().Get(HeaderRequestID), entry["request_id"])
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(ContextLogger(logger), CorrelationID())
	router.GET("/test", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("handled")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderCorrelationID, "corr-9")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "corr-9", lines[0]["correlation_id"])
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("passes through", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(discardLogger()))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("panic becomes 500 envelope", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		router := gin.New()
		router.Use(Recovery(slog.New(slog.NewJSONHandler(&buf, nil))))
		router.GET("/test", func(*gin.Context) { panic("boom") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`, w.Body.String())

		lines := logLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "panic recovered", lines[0]["msg"])
		assert.Equal(t, "boom", lines[0]["error"])
		assert.Contains(t, lines[0]["stack"], "runtime/debug.Stack")
	})

	t.Run("panic after write keeps status", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(discardLogger()))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusAccepted, "partial")
			panic("late")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "partial", w.Body.String())
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("sets deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(5 * time.Second))
		router.GET("/test", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hasDeadline)
	})

	t.Run("skipped path has no deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(time.Second, "/stream"))
		router.GET("/stream", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, hasDeadline)
	})

	t.Run("expired deadline with nothing written", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/slow", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"TIMEOUT"`)
	})

	t.Run("handler response wins after deadline", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/slow", func(c *gin.Context) {
			<-c.Request.Context().Done()
			c.String(http.StatusGatewayTimeout, "gave up")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})
}
