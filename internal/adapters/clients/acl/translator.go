package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/quote-engine/internal/adapters/clients"
	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// maxResponseBody bounds decoded success bodies.
const maxResponseBody = 4 << 20

// BaseAdapter carries the client and error mapping shared by the adapters.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a base adapter. An empty serviceName falls back to
// the client's.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	if serviceName == "" {
		serviceName = client.ServiceName()
	}

	return BaseAdapter{client: client, serviceName: serviceName}
}

// Client returns the underlying HTTP client.
func (a *BaseAdapter) Client() *clients.Client {
	return a.client
}

// ServiceName returns the downstream name used in errors.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// GetJSON performs a GET and decodes a 2xx body into out. Failures come back
// as domain errors.
func (a *BaseAdapter) GetJSON(ctx context.Context, path string, query url.Values, operation, entityID string, out any) error {
	resp, err := a.client.Get(ctx, path, query)

	return a.finish(resp, err, operation, entityID, out)
}

// PostJSON POSTs in as JSON and decodes a 2xx body into out, which may be nil.
func (a *BaseAdapter) PostJSON(ctx context.Context, path string, in any, operation string, out any) error {
	resp, err := a.client.PostJSON(ctx, path, in)

	return a.finish(resp, err, operation, "", out)
}

func (a *BaseAdapter) finish(resp *http.Response, err error, operation, entityID string, out any) error {
	if err != nil {
		return MapHTTPError(nil, err, a.serviceName, operation, entityID)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return MapHTTPError(resp, nil, a.serviceName, operation, entityID)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := decodeJSON(resp.Body, out); err != nil {
		return domain.NewUnavailableError(a.serviceName, fmt.Sprintf("%s: %v", operation, err))
	}

	return nil
}

func decodeJSON(body io.Reader, out any) error {
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// ValidateRequired reports an empty required value as a validation error.
func ValidateRequired(value, fieldName string) error {
	if value == "" {
		return domain.NewValidationError(fieldName, "is required")
	}

	return nil
}
