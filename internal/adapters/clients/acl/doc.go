// Package acl is the anti-corruption layer between the engine and its HTTP
// collaborators: the language-model assistant and the legacy quotation
// backend.
//
// Downstream documents never leave this package. Replies are decoded into
// wire.QuotationDoc, which resolves the unit_price/price/unit_rate aliases,
// and converted to domain.Quotation before they are returned.
//
// Failures are translated to domain errors:
//   - 404 → [domain.ErrNotFound]
//   - 409 → [domain.ErrConflict]
//   - 400/422 → [domain.ErrValidation]
//   - 401/403 → [domain.ErrForbidden]
//   - 429, 5xx and transport failures → [domain.ErrUnavailable]
//
// [clients.ErrCircuitOpen] and [clients.ErrMaxRetriesExceeded] also become
// [domain.ErrUnavailable], which the session service treats as a failed
// assistant round trip.
package acl
