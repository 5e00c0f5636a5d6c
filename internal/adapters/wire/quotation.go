// Package wire is the JSON shape of quotation documents exchanged with the
// assistant, the legacy backend and stored records.
//
// Older documents store a unit price under up to three keys (unit_price,
// price, unit_rate). This package is the only place those aliases exist:
// reads take the first non-zero alias, writes set all three.
package wire

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// Number decodes a JSON number, a numeric string, or null. Anything
// unparsable reads as zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0

		return nil
	}

	s := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*n = 0

			return nil //nolint:nilerr // malformed legacy values read as zero
		}

		s = strings.TrimSpace(str)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}

	*n = Number(v)

	return nil
}

// Count reads n as a quantity: clamped to [0, MaxInt32], then truncated
// toward zero, so 2.9 reads as 2.
func (n Number) Count() int {
	return int(math.Trunc(min(max(float64(n), 0), math.MaxInt32)))
}

// ServiceDoc is a service line as stored by legacy readers.
type ServiceDoc struct {
	ServiceName string   `json:"service_name"`
	Quantity    Number   `json:"quantity"`
	UnitPrice   Number   `json:"unit_price"`
	Price       Number   `json:"price"`
	UnitRate    Number   `json:"unit_rate"`
	Amount      Number   `json:"amount"`
	KeyFeatures []string `json:"key_features,omitempty"`
}

// CounterpartDoc is the quotation_to snapshot.
type CounterpartDoc struct {
	ID           int64  `json:"id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	Email        string `json:"email,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Address      string `json:"address,omitempty"`
}

// QuotationDoc is a whole quotation document.
type QuotationDoc struct {
	ID            string          `json:"id,omitempty"`
	Services      []ServiceDoc    `json:"services"`
	Subtotal      Number          `json:"subtotal"`
	GSTPercentage Number          `json:"gst_percentage"`
	GSTAmount     Number          `json:"gst_amount"`
	GrandTotal    Number          `json:"grand_total"`
	QuotationTo   *CounterpartDoc `json:"quotation_to,omitempty"`
}

// EffectivePrice returns the first non-zero alias in priority order.
func (s ServiceDoc) EffectivePrice() float64 {
	for _, v := range []Number{s.UnitPrice, s.Price, s.UnitRate} {
		if v != 0 {
			return float64(v)
		}
	}

	return 0
}

// ToDomain converts the document. Derived totals are copied as sent; callers
// recalculate before trusting them.
func (d *QuotationDoc) ToDomain() *domain.Quotation {
	if d == nil {
		return nil
	}

	q := &domain.Quotation{
		ID:            d.ID,
		Services:      make([]domain.Service, 0, len(d.Services)),
		Subtotal:      float64(d.Subtotal),
		GSTPercentage: float64(d.GSTPercentage),
		GSTAmount:     float64(d.GSTAmount),
		GrandTotal:    float64(d.GrandTotal),
	}

	for _, s := range d.Services {
		q.Services = append(q.Services, domain.Service{
			Name:        strings.TrimSpace(s.ServiceName),
			Quantity:    s.Quantity.Count(),
			Price:       s.EffectivePrice(),
			Amount:      float64(s.Amount),
			KeyFeatures: append([]string(nil), s.KeyFeatures...),
		})
	}

	if to := d.QuotationTo; to != nil {
		q.QuotationTo = &domain.Counterpart{
			ID:           to.ID,
			CustomerName: to.CustomerName,
			CompanyName:  to.CompanyName,
			Email:        to.Email,
			PhoneNumber:  to.PhoneNumber,
			Address:      to.Address,
		}
	}

	return q
}

// FromDomain builds a document with every price alias set.
func FromDomain(q *domain.Quotation) *QuotationDoc {
	if q == nil {
		return nil
	}

	d := &QuotationDoc{
		ID:            q.ID,
		Services:      make([]ServiceDoc, 0, len(q.Services)),
		Subtotal:      Number(q.Subtotal),
		GSTPercentage: Number(q.GSTPercentage),
		GSTAmount:     Number(q.GSTAmount),
		GrandTotal:    Number(q.GrandTotal),
	}

	for _, s := range q.Services {
		price := Number(s.Price)
		d.Services = append(d.Services, ServiceDoc{
			ServiceName: s.Name,
			Quantity:    Number(s.Quantity),
			UnitPrice:   price,
			Price:       price,
			UnitRate:    price,
			Amount:      Number(s.Amount),
			KeyFeatures: append([]string(nil), s.KeyFeatures...),
		})
	}

	if to := q.QuotationTo; to != nil {
		d.QuotationTo = &CounterpartDoc{
			ID:           to.ID,
			CustomerName: to.CustomerName,
			CompanyName:  to.CompanyName,
			Email:        to.Email,
			PhoneNumber:  to.PhoneNumber,
			Address:      to.Address,
		}
	}

	return d
}

// Marshal encodes q as a legacy document.
func Marshal(q *domain.Quotation) ([]byte, error) {
	return json.Marshal(FromDomain(q))
}

// Unmarshal decodes a legacy document.
func Unmarshal(data []byte) (*domain.Quotation, error) {
	var d QuotationDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}

	return d.ToDomain(), nil
}
