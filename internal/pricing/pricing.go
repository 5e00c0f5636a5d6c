// Package pricing computes line amounts and quotation totals.
//
// Rounding is binary-float half-up, round(x·100)/100 with halves going toward
// +∞. Results are compared against a remote authoritative total with a 0.01
// tolerance, so the arithmetic must not be swapped for decimal or banker's
// rounding.
package pricing

import (
	"math"

	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// Decimals is the precision of every monetary field.
const Decimals = 2

// Round rounds x half-up to the given number of decimals.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))

	return halfUp(x*p) / p
}

// halfUp returns the integer closest to x, ties toward +∞.
// x - floor(x) is exact for every float64 below 2^52, so the tie test is too.
func halfUp(x float64) float64 {
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}

	return f
}

// ComputeAmount returns price × quantity rounded to 2 decimals.
func ComputeAmount(s domain.Service) float64 {
	return Round(sanitize(s.Price)*float64(s.Quantity), Decimals)
}

// Recalculate returns a copy of q with every derived field recomputed.
// It never fails and is idempotent. A nil quotation yields an empty one.
func Recalculate(q *domain.Quotation) *domain.Quotation {
	out := q.Clone()
	if out == nil {
		out = domain.NewQuotation("")
	}

	out.GSTPercentage = sanitize(out.GSTPercentage)

	if len(out.Services) == 0 {
		out.Subtotal = 0
		out.GSTAmount = 0
		out.GrandTotal = 0

		return out
	}

	var sum float64

	for i := range out.Services {
		s := &out.Services[i]
		s.Price = sanitize(s.Price)
		s.Amount = ComputeAmount(*s)
		sum += s.Amount
	}

	out.Subtotal = Round(sum, Decimals)
	out.GSTAmount = 0

	if out.GSTPercentage > 0 {
		out.GSTAmount = Round(out.Subtotal*out.GSTPercentage/100, Decimals)
	}

	out.GrandTotal = Round(out.Subtotal+out.GSTAmount, Decimals)

	return out
}

// sanitize maps NaN and infinities to 0. Negative values pass through, so a
// discount line lowers the subtotal and a negative rate only zeroes gst_amount.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}
