package acl

import (
	"context"
	"net/url"

	"github.com/jsamuelsen/quote-engine/internal/adapters/clients"
	"github.com/jsamuelsen/quote-engine/internal/adapters/wire"
	"github.com/jsamuelsen/quote-engine/internal/domain"
	"github.com/jsamuelsen/quote-engine/internal/ports"
)

const (
	syncPath      = "/api/sync-quotation/"
	quotationPath = "/api/quotation/"
)

var (
	_ ports.QuotationStore = (*StoreClient)(nil)
	_ ports.HealthChecker  = (*StoreClient)(nil)
)

type syncRequest struct {
	Quotation *wire.QuotationDoc `json:"quotation"`
}

type syncResponse struct {
	Success   bool               `json:"success"`
	Quotation *wire.QuotationDoc `json:"quotation"`
	Error     string             `json:"error,omitempty"`
}

type quotationResponse struct {
	Quotation *wire.QuotationDoc `json:"quotation"`
}

// StoreClient persists quotations through the legacy backend's HTTP API.
type StoreClient struct {
	BaseAdapter
}

// NewStoreClient wraps client. serviceName may be empty.
func NewStoreClient(client *clients.Client, serviceName string) *StoreClient {
	return &StoreClient{BaseAdapter: NewBaseAdapter(client, serviceName)}
}

// Name implements ports.QuotationStore.
func (s *StoreClient) Name() string {
	return s.ServiceName()
}

// Sync posts the whole document with every price alias populated.
func (s *StoreClient) Sync(ctx context.Context, q *domain.Quotation) error {
	if q == nil {
		return domain.NewValidationError("quotation", "is required")
	}

	var resp syncResponse
	if err := s.PostJSON(ctx, syncPath, syncRequest{Quotation: wire.FromDomain(q)}, "sync quotation", &resp); err != nil {
		return err
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "sync rejected"
		}

		return domain.NewValidationError("quotation", msg)
	}

	return nil
}

// Load fetches the stored document for id.
func (s *StoreClient) Load(ctx context.Context, id string) (*domain.Quotation, error) {
	var resp quotationResponse
	if err := s.GetJSON(ctx, quotationPath, url.Values{"id": {id}}, "load quotation", id, &resp); err != nil {
		return nil, err
	}

	if resp.Quotation == nil {
		return nil, domain.NewNotFoundError("quotation", id)
	}

	q := resp.Quotation.ToDomain()
	if q.ID == "" {
		q.ID = id
	}

	return q, nil
}

// Check probes the read endpoint unless the circuit is already open.
func (s *StoreClient) Check(ctx context.Context) error {
	if s.Client().CircuitState() == clients.StateOpen {
		return domain.NewUnavailableError(s.ServiceName(), "circuit breaker open")
	}

	var resp quotationResponse

	return s.GetJSON(ctx, quotationPath, nil, "health check", "", &resp)
}
