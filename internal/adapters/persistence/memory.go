package persistence

import (
	"context"
	"sync"

	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// Memory keeps deep copies of quotations in a map. Contents are lost on exit.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]*domain.Quotation
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]*domain.Quotation)}
}

// Name implements ports.QuotationStore.
func (m *Memory) Name() string { return "memory" }

// Sync stores a copy of q.
func (m *Memory) Sync(_ context.Context, q *domain.Quotation) error {
	if q == nil {
		return domain.NewValidationError("quotation", "is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[q.ID] = q.Clone()

	return nil
}

// Load returns a copy of the stored quotation.
func (m *Memory) Load(_ context.Context, id string) (*domain.Quotation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.docs[id]
	if !ok {
		return nil, domain.NewNotFoundError("quotation", id)
	}

	return q.Clone(), nil
}

// Check always succeeds.
func (m *Memory) Check(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Len reports how many quotations are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.docs)
}
