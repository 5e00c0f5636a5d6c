package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-engine/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testTraceID = "0102030405060708090a0b0c0d0e0f10"

func newTestContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	return c, w
}

func withSpan(t *testing.T, c *gin.Context) {
	t.Helper()

	traceID, err := trace.TraceIDFromHex(testTraceID)
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})
	c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), sc))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeNoRoute, http.StatusNotFound},
		{ErrorCodeNoMethod, http.StatusMethodNotAllowed},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "not found",
			err:         domain.NewNotFoundError("session", "s-1"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: `session with id "s-1" not found`,
		},
		{
			name:        "validation with field",
			err:         domain.NewValidationError("text", "must not be empty"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "validation failed for text: must not be empty",
			wantDetails: map[string]string{"text": "must not be empty"},
		},
		{
			name:       "wrapped conflict",
			err:        fmt.Errorf("%w: quotation changed", domain.ErrConflict),
			wantStatus: http.StatusConflict,
			wantCode:   ErrorCodeConflict,
		},
		{
			name:       "forbidden",
			err:        fmt.Errorf("%w: read only", domain.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantCode:   ErrorCodeForbidden,
		},
		{
			name:        "unavailable",
			err:         domain.NewUnavailableError("assistant", "circuit open"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: `service "assistant" unavailable: circuit open`,
		},
		{
			name:        "unknown hides internals",
			err:         errors.New("pq: password authentication failed"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
		})
	}

	status, resp := MapDomainError(nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestGetTraceID(t *testing.T) {
	c, _ := newTestContext(t, http.MethodGet, "/", "")
	assert.Empty(t, GetTraceID(c))

	withSpan(t, c)
	assert.Equal(t, testTraceID, GetTraceID(c))

	bare, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetTraceID(bare))
}

func TestHandleError(t *testing.T) {
	c, w := newTestContext(t, http.MethodGet, "/", "")
	withSpan(t, c)

	HandleError(c, domain.NewNotFoundError("session", "s-9"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, ErrorCodeNotFound, resp.Error.Code)
	assert.Equal(t, testTraceID, resp.TraceID)
}

func TestAbortWithErrorCode(t *testing.T) {
	c, w := newTestContext(t, http.MethodGet, "/", "")

	AbortWithErrorCode(c, ErrorCodeNoRoute, "no such route")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no such route", decodeError(t, w).Error.Message)
}

func TestBindAndValidate_SubmitMessage(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     error
		wantCode    string
		wantDetails map[string]string
	}{
		{
			name: "valid",
			body: `{"text": "add logo design 2 @ 150"}`,
		},
		{
			name:        "missing text",
			body:        `{}`,
			wantErr:     ErrValidation,
			wantCode:    ErrorCodeValidation,
			wantDetails: map[string]string{"text": "this field is required"},
		},
		{
			name:        "blank text",
			body:        `{"text": "   "}`,
			wantErr:     ErrValidation,
			wantCode:    ErrorCodeValidation,
			wantDetails: map[string]string{"text": "must not be empty"},
		},
		{
			name:        "too long",
			body:        `{"text": "` + strings.Repeat("é", MaxMessageLength+1) + `"}`,
			wantErr:     ErrValidation,
			wantCode:    ErrorCodeValidation,
			wantDetails: map[string]string{"text": "must be at most 2000 characters"},
		},
		{
			name:     "malformed json",
			body:     `{"text": `,
			wantErr:  ErrBinding,
			wantCode: ErrorCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t, http.MethodPost, "/", tt.body)

			var req SubmitMessageRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "add logo design 2 @ 150", req.Text)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			HandleBindError(c, err)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
		})
	}
}

func TestBindAndValidate_OpenSession(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"empty id", `{}`, false},
		{"uuid", `{"quotation_id": "550e8400-e29b-41d4-a716-446655440000"}`, false},
		{"legacy numeric", `{"quotation_id": "1042"}`, false},
		{"path characters", `{"quotation_id": "../etc"}`, true},
		{"too long", `{"quotation_id": "` + strings.Repeat("a", 129) + `"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(t, http.MethodPost, "/", tt.body)

			var req OpenSessionRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				assert.Contains(t, ValidationErrors(err), "quotation_id")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBindQueryAndValidate(t *testing.T) {
	c, _ := newTestContext(t, http.MethodPost, "/?wait=true", "")

	var q SubmitMessageQuery
	require.NoError(t, BindQueryAndValidate(c, &q))
	assert.True(t, q.Wait)

	c, _ = newTestContext(t, http.MethodPost, "/?wait=maybe", "")
	assert.ErrorIs(t, BindQueryAndValidate(c, &q), ErrBinding)
}

func TestValidationMessage_MinMax(t *testing.T) {
	assert.Equal(t, "must be at least 3 characters", minMaxMessage("min", "3", reflect.String))
	assert.Equal(t, "must be at most 5", minMaxMessage("max", "5", reflect.Int))
}
