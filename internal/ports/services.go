// Package ports defines the contracts between the quotation engine and the
// collaborators it calls.
//
// Methods take a context first, return domain types, and report failures as
// domain errors (ErrNotFound, ErrUnavailable, ...).
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// AssistantClient sends one user turn to the remote language-model assistant.
//
// The reply quotation, when present, is authoritative for the turn. Its
// response text is display-only. Transport failures are returned as
// domain.ErrUnavailable.
type AssistantClient interface {
	SendMessage(ctx context.Context, text, quotationID string) (*domain.AssistantReply, error)
}

// QuotationStore persists quotation documents.
type QuotationStore interface {
	// Name identifies the backend in logs and health checks.
	Name() string

	// Sync saves q, replacing any stored copy with the same ID. Callers treat
	// it as best-effort.
	Sync(ctx context.Context, q *domain.Quotation) error

	// Load returns the last stored copy, or domain.ErrNotFound.
	Load(ctx context.Context, id string) (*domain.Quotation, error)
}
