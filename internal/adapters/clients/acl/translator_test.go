package acl

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-engine/internal/adapters/clients"
	"github.com/jsamuelsen/quote-engine/internal/domain"
	"github.com/jsamuelsen/quote-engine/internal/platform/config"
)

func testConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "test-service",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
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

func newTestClient(t *testing.T, handler http.HandlerFunc) *clients.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(testConfig(server.URL))
	require.NoError(t, err)

	return client
}

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestMapHTTPError_Status(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, ``, domain.IsNotFound},
		{"conflict", http.StatusConflict, `{"error":"already synced"}`, domain.IsConflict},
		{"legacy bad request", http.StatusBadRequest, `{"error":"Quotation data is required"}`, domain.IsValidation},
		{"unprocessable", http.StatusUnprocessableEntity, ``, domain.IsValidation},
		{"unauthorized", http.StatusUnauthorized, ``, domain.IsForbidden},
		{"forbidden", http.StatusForbidden, ``, domain.IsForbidden},
		{"rate limited", http.StatusTooManyRequests, ``, domain.IsUnavailable},
		{"server error", http.StatusInternalServerError, `{"error":"Server error: boom"}`, domain.IsUnavailable},
		{"unknown 4xx", http.StatusTeapot, ``, domain.IsValidation},
		{"external code wins over status", http.StatusBadRequest, `{"error":{"code":"NOT_FOUND","message":"gone"}}`, domain.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(response(tt.status, tt.body), nil, "backend", "load quotation", "q-1")

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}

func TestMapHTTPError_LegacyMessageIsKept(t *testing.T) {
	err := MapHTTPError(response(http.StatusBadRequest, `{"error":"Invalid quotation structure"}`),
		nil, "backend", "sync quotation", "")

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Invalid quotation structure", validationErr.Message)
}

func TestMapHTTPError_ValidationDetails(t *testing.T) {
	body := `{"error":{"code":"","message":"bad","details":{"quantity":"must be positive"}}}`

	err := MapHTTPError(response(http.StatusBadRequest, body), nil, "backend", "sync quotation", "")

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "quantity", validationErr.Field)
	assert.Equal(t, "must be positive", validationErr.Message)
}

func TestMapHTTPError_NotFoundCarriesEntityID(t *testing.T) {
	err := MapHTTPError(response(http.StatusNotFound, ``), nil, "backend", "load quotation", "q-42")

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "q-42", notFound.ID)
}

func TestMapHTTPError_ClientErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"circuit open", clients.ErrCircuitOpen, "circuit breaker open"},
		{"retries exhausted", clients.ErrMaxRetriesExceeded, "max retries exceeded"},
		{"other", errors.New("dial tcp: refused"), "refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(nil, tt.err, "assistant", "send message", "")

			assert.True(t, domain.IsUnavailable(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMapHTTPError_SuccessAndNil(t *testing.T) {
	assert.NoError(t, MapHTTPError(response(http.StatusOK, ``), nil, "backend", "op", ""))
	assert.True(t, domain.IsUnavailable(MapHTTPError(nil, nil, "backend", "op", "")))
}

func TestMapExternalCode(t *testing.T) {
	tests := []struct {
		code  string
		check func(error) bool
	}{
		{ExternalCodeNotFound, domain.IsNotFound},
		{ExternalCodeConflict, domain.IsConflict},
		{ExternalCodeValidation, domain.IsValidation},
		{ExternalCodeForbidden, domain.IsForbidden},
		{ExternalCodeUnauthorized, domain.IsForbidden},
		{"SOMETHING_ELSE", domain.IsUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.True(t, tt.check(MapExternalCode(tt.code, "msg", "backend", "op", "id")))
		})
	}
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		body        io.Reader
		wantNil     bool
		wantCode    string
		wantMessage string
	}{
		{"legacy string", strings.NewReader(`{"error":"Invalid JSON in request body"}`), false, "", "Invalid JSON in request body"},
		{"nested", strings.NewReader(`{"error":{"code":"CONFLICT","message":"stale"}}`), false, "CONFLICT", "stale"},
		{"flat", strings.NewReader(`{"code":"NOT_FOUND","message":"missing"}`), false, "NOT_FOUND", "missing"},
		{"invalid json", strings.NewReader(`not json`), true, "", ""},
		{"empty object", strings.NewReader(`{}`), true, "", ""},
		{"nil body", nil, true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseErrorResponse(tt.body)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestBaseAdapter_ServiceNameFallsBackToClient(t *testing.T) {
	client, err := clients.New(testConfig("http://localhost"))
	require.NoError(t, err)

	assert.Equal(t, "test-service", NewBaseAdapter(client, "").ServiceName())

	named := NewBaseAdapter(client, "assistant")
	assert.Equal(t, "assistant", named.ServiceName())
	assert.Same(t, client, named.Client())
}

func TestBaseAdapter_DecodeFailureIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"quotation":`))
	})

	adapter := NewBaseAdapter(client, "backend")

	var out quotationResponse
	err := adapter.GetJSON(context.Background(), "/api/quotation/", nil, "load quotation", "q-1", &out)

	assert.True(t, domain.IsUnavailable(err))
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("x", "message"))
	assert.True(t, domain.IsValidation(ValidateRequired("", "message")))
}
