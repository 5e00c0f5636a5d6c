package acl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-engine/internal/adapters/clients"
	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrorResponse is an error body from a downstream. The legacy backend sends
// {"error": "message"}; newer services send {"error": {"code", "message",
// "details"}} or a flat {"code", "message"}. All three parse.
type ErrorResponse struct {
	Code    string
	Message string
	Details map[string]string
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// UnmarshalJSON accepts the string, nested and flat error shapes.
func (e *ErrorResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error   json.RawMessage `json:"error"`
		Code    string          `json:"code"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Code, e.Message = raw.Code, raw.Message

	nested := bytes.TrimSpace(raw.Error)
	if len(nested) == 0 || bytes.Equal(nested, []byte("null")) {
		return nil
	}

	if nested[0] == '"' {
		return json.Unmarshal(nested, &e.Message)
	}

	var detail errorDetail
	if err := json.Unmarshal(nested, &detail); err != nil {
		return err
	}

	if detail.Code != "" {
		e.Code = detail.Code
	}

	if detail.Message != "" {
		e.Message = detail.Message
	}

	e.Details = detail.Details

	return nil
}

// External error codes that map to specific domain errors.
const (
	ExternalCodeNotFound     = "NOT_FOUND"
	ExternalCodeConflict     = "CONFLICT"
	ExternalCodeValidation   = "VALIDATION_ERROR"
	ExternalCodeForbidden    = "FORBIDDEN"
	ExternalCodeUnauthorized = "UNAUTHORIZED"
)

// ParseErrorResponse decodes an error body. It returns nil when the body is
// empty, not JSON, or carries neither a code nor a message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.Code == "" && errResp.Message == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError turns a failed call into a domain error. Either clientErr is
// set (no usable response) or resp carries a non-2xx status. entityID names
// the subject of a 404.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entityID string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errResp *ErrorResponse
	if resp.Body != nil {
		errResp = ParseErrorResponse(resp.Body)
	}

	if errResp != nil && errResp.Code != "" {
		return MapExternalCode(errResp.Code, errResp.Message, serviceName, operation, entityID)
	}

	return mapStatusCode(resp.StatusCode, errResp, serviceName, operation, entityID)
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("circuit breaker open during %s", operation))
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("max retries exceeded during %s", operation))
	default:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func mapStatusCode(status int, errResp *ErrorResponse, serviceName, operation, entityID string) error {
	message := defaultMessageForStatus(status, operation)
	if errResp != nil && errResp.Message != "" {
		message = errResp.Message
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, entityID)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s: %s", domain.ErrConflict, serviceName, message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		if errResp != nil {
			for field, msg := range errResp.Details {
				return domain.NewValidationError(field, msg)
			}
		}

		return domain.NewValidationError("", message)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: authentication required", domain.ErrForbidden, operation)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: %s: %s", domain.ErrForbidden, operation, message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, message)
	default:
		return domain.NewValidationError("", message)
	}
}

func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "resource conflict"
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}

// MapExternalCode maps a downstream error code to a domain error. Unknown
// codes read as the downstream being unavailable.
func MapExternalCode(code, message, serviceName, operation, entityID string) error {
	switch code {
	case ExternalCodeNotFound:
		return domain.NewNotFoundError(serviceName, entityID)
	case ExternalCodeConflict:
		return fmt.Errorf("%w: %s: %s", domain.ErrConflict, serviceName, message)
	case ExternalCodeValidation:
		return domain.NewValidationError("", message)
	case ExternalCodeForbidden:
		return fmt.Errorf("%w: %s: %s", domain.ErrForbidden, operation, message)
	case ExternalCodeUnauthorized:
		return fmt.Errorf("%w: %s: authentication required", domain.ErrForbidden, operation)
	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}
