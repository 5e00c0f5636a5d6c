// Package reconcile merges an optimistic local quotation with the
// authoritative quotation returned by the assistant for the same turn.
package reconcile

import (
	"regexp"
	"strings"

	"github.com/jsamuelsen/quote-engine/internal/domain"
	"github.com/jsamuelsen/quote-engine/internal/pricing"
)

// artifactPattern flags names that swallowed part of a numeric clause,
// e.g. "Logo quantity 2".
var artifactPattern = regexp.MustCompile(`\b(?:quantity|qty|price|rate)\s+\d+`)

// IsParseArtifact reports whether a service name is a mis-captured numeric
// clause rather than a real line item.
func IsParseArtifact(name string) bool {
	return artifactPattern.MatchString(strings.ToLower(name))
}

// Reconcile merges remote into local and returns a recalculated copy.
// Neither argument is mutated.
//
// Remote services missing locally are appended. A remote service that exists
// locally replaces the local one only when it is complete (quantity and
// price both positive). A non-zero remote GST percentage wins.
func Reconcile(local, remote *domain.Quotation) *domain.Quotation {
	if remote == nil {
		return pricing.Recalculate(local)
	}

	if local == nil {
		return Adopt(remote)
	}

	merged := local.Clone()
	merged.Services = clean(local.Services)

	seen := make(map[string]bool, len(merged.Services))
	for _, s := range merged.Services {
		seen[key(s.Name)] = true
	}

	for _, rs := range clean(remote.Services) {
		k := key(rs.Name)

		if !seen[k] {
			merged.Services = append(merged.Services, rs)
			seen[k] = true

			continue
		}

		if rs.Quantity <= 0 || rs.Price <= 0 {
			continue
		}

		for i := range merged.Services {
			if key(merged.Services[i].Name) == k {
				merged.Services[i] = rs

				break
			}
		}
	}

	if remote.GSTPercentage != 0 {
		merged.GSTPercentage = remote.GSTPercentage
	}

	if merged.ID == "" {
		merged.ID = remote.ID
	}

	if merged.QuotationTo == nil && remote.QuotationTo != nil {
		to := *remote.QuotationTo
		merged.QuotationTo = &to
	}

	return pricing.Recalculate(merged)
}

// Adopt takes the remote quotation as the new state when the turn was not
// applied locally. Parse artifacts are still dropped.
func Adopt(remote *domain.Quotation) *domain.Quotation {
	out := remote.Clone()
	if out == nil {
		return pricing.Recalculate(nil)
	}

	out.Services = clean(remote.Services)

	return pricing.Recalculate(out)
}

func clean(services []domain.Service) []domain.Service {
	out := make([]domain.Service, 0, len(services))

	for _, s := range services {
		if IsParseArtifact(s.Name) {
			continue
		}

		out = append(out, s.Clone())
	}

	return out
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
