// Package domain contains the quotation aggregate and the rules shared by
// every engine component. Types here carry no knowledge of wire formats.
package domain

import (
	"slices"
	"strings"
)

// Quotation is the single mutable document edited during a session.
//
// Subtotal, GSTAmount and GrandTotal are always outputs of recalculation and
// must never be trusted as independently authored.
type Quotation struct {
	// ID identifies the quotation with the persistence service.
	ID string

	// Services are the line items in display order.
	Services []Service

	Subtotal      float64
	GSTPercentage float64
	GSTAmount     float64
	GrandTotal    float64

	// QuotationTo is a denormalized customer snapshot. The engine carries it
	// through untouched.
	QuotationTo *Counterpart
}

// Service is one line item of a quotation.
type Service struct {
	Name     string
	Quantity int

	// Price is the canonical unit price. Legacy aliases only exist at the
	// document boundary.
	Price float64

	// Amount is derived: Price × Quantity rounded to 2 decimals.
	Amount float64

	KeyFeatures []string
}

// Counterpart is the customer a quotation is addressed to.
type Counterpart struct {
	ID           int64
	CustomerName string
	CompanyName  string
	Email        string
	PhoneNumber  string
	Address      string
}

// AssistantReply is what the remote assistant returns for one user turn.
// ResponseText is display-only chat content.
type AssistantReply struct {
	ResponseText string
	Quotation    *Quotation
}

// NewQuotation returns an empty quotation with the given id.
func NewQuotation(id string) *Quotation {
	return &Quotation{ID: id, Services: []Service{}}
}

// Clone returns a deep copy. A nil receiver yields nil.
func (q *Quotation) Clone() *Quotation {
	if q == nil {
		return nil
	}

	out := *q
	out.Services = make([]Service, len(q.Services))

	for i, s := range q.Services {
		out.Services[i] = s.Clone()
	}

	if q.QuotationTo != nil {
		to := *q.QuotationTo
		out.QuotationTo = &to
	}

	return &out
}

// Equal reports whether two quotations hold the same document.
// Nil and empty slices compare equal.
func (q *Quotation) Equal(other *Quotation) bool {
	if q == nil || other == nil {
		return q == other
	}

	if q.ID != other.ID ||
		q.Subtotal != other.Subtotal ||
		q.GSTPercentage != other.GSTPercentage ||
		q.GSTAmount != other.GSTAmount ||
		q.GrandTotal != other.GrandTotal {
		return false
	}

	if (q.QuotationTo == nil) != (other.QuotationTo == nil) {
		return false
	}

	if q.QuotationTo != nil && *q.QuotationTo != *other.QuotationTo {
		return false
	}

	return slices.EqualFunc(q.Services, other.Services, func(a, b Service) bool {
		return a.Equal(b)
	})
}

// Last returns the index of the last service, or -1 when there are none.
func (q *Quotation) Last() int {
	return len(q.Services) - 1
}

// IndexExact returns the index of the service whose name equals name
// case-insensitively, or -1.
func (q *Quotation) IndexExact(name string) int {
	for i := range q.Services {
		if strings.EqualFold(strings.TrimSpace(q.Services[i].Name), strings.TrimSpace(name)) {
			return i
		}
	}

	return -1
}

// IndexMatching returns the first service that NamesMatch the candidate, or -1.
// Overlapping names resolve to the first in list order.
func (q *Quotation) IndexMatching(candidate string) int {
	for i := range q.Services {
		if NamesMatch(q.Services[i].Name, candidate) {
			return i
		}
	}

	return -1
}

// IndexByFirstWord returns the first service whose name contains the first
// word of candidate, or -1.
func (q *Quotation) IndexByFirstWord(candidate string) int {
	fields := strings.Fields(strings.ToLower(candidate))
	if len(fields) == 0 {
		return -1
	}

	for i := range q.Services {
		if strings.Contains(strings.ToLower(q.Services[i].Name), fields[0]) {
			return i
		}
	}

	return -1
}

// Clone returns a deep copy of the service.
func (s Service) Clone() Service {
	if s.KeyFeatures != nil {
		s.KeyFeatures = slices.Clone(s.KeyFeatures)
	}

	return s
}

// Equal compares two services field by field.
func (s Service) Equal(other Service) bool {
	return s.Name == other.Name &&
		s.Quantity == other.Quantity &&
		s.Price == other.Price &&
		s.Amount == other.Amount &&
		slices.Equal(s.KeyFeatures, other.KeyFeatures)
}

// NamesMatch reports whether a service name and a candidate refer to the same
// service: either contains the other, compared lower-cased. Empty strings
// never match.
func NamesMatch(name, candidate string) bool {
	a := strings.ToLower(strings.TrimSpace(name))
	b := strings.ToLower(strings.TrimSpace(candidate))

	if a == "" || b == "" {
		return false
	}

	return strings.Contains(a, b) || strings.Contains(b, a)
}
