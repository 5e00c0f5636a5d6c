package acl

import (
	"context"
	"strings"

	"github.com/jsamuelsen/quote-engine/internal/adapters/clients"
	"github.com/jsamuelsen/quote-engine/internal/adapters/wire"
	"github.com/jsamuelsen/quote-engine/internal/domain"
	"github.com/jsamuelsen/quote-engine/internal/ports"
)

const chatPath = "/api/chat/"

var (
	_ ports.AssistantClient = (*AssistantClient)(nil)
	_ ports.HealthChecker   = (*AssistantClient)(nil)
	_ ports.Optional        = (*AssistantClient)(nil)
)

type chatRequest struct {
	Message     string `json:"message"`
	QuotationID string `json:"quotation_id,omitempty"`
}

type chatResponse struct {
	Response  string             `json:"response"`
	Quotation *wire.QuotationDoc `json:"quotation"`
}

// AssistantClient talks to the language-model assistant's chat endpoint.
type AssistantClient struct {
	BaseAdapter
}

// NewAssistantClient wraps client. serviceName may be empty.
func NewAssistantClient(client *clients.Client, serviceName string) *AssistantClient {
	return &AssistantClient{BaseAdapter: NewBaseAdapter(client, serviceName)}
}

// SendMessage posts one user turn. A reply without a quotation is valid and
// leaves the quotation nil.
func (a *AssistantClient) SendMessage(ctx context.Context, text, quotationID string) (*domain.AssistantReply, error) {
	text = strings.TrimSpace(text)
	if err := ValidateRequired(text, "message"); err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := a.PostJSON(ctx, chatPath, chatRequest{Message: text, QuotationID: quotationID}, "send message", &resp); err != nil {
		return nil, err
	}

	reply := &domain.AssistantReply{ResponseText: resp.Response}

	if resp.Quotation != nil {
		reply.Quotation = resp.Quotation.ToDomain()
		if reply.Quotation.ID == "" {
			reply.Quotation.ID = quotationID
		}
	}

	return reply, nil
}

// Name implements ports.HealthChecker.
func (a *AssistantClient) Name() string {
	return a.ServiceName()
}

// Check reports the assistant unhealthy while its circuit is open. It makes
// no network call; chat requests are too expensive to use as probes.
func (a *AssistantClient) Check(context.Context) error {
	if a.Client().CircuitState() == clients.StateOpen {
		return domain.NewUnavailableError(a.ServiceName(), "circuit breaker open")
	}

	return nil
}

// Optional marks the assistant as non-critical for readiness.
func (a *AssistantClient) Optional() bool { return true }
