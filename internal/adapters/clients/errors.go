// Package clients provides the instrumented HTTP client used to reach the
// assistant and the legacy quotation backend.
package clients

import "errors"

// Transport-level failures. The acl package translates them into domain
// errors; nothing above the adapters should see them.
var (
	// ErrCircuitOpen is returned without a network call while the breaker
	// for a downstream is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's failure once every
	// attempt has been used.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
