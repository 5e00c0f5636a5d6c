// Package flags evaluates feature flags from the features section of the
// configuration. Values can be changed at runtime; there is no remote
// provider.
package flags

import (
	"context"
	"maps"
	"sync"
)

// Static is a FeatureFlags backed by an in-memory map.
type Static struct {
	mu     sync.RWMutex
	values map[string]bool
}

// NewStatic copies values into a new Static.
func NewStatic(values map[string]bool) *Static {
	s := &Static{values: make(map[string]bool, len(values))}
	maps.Copy(s.values, values)

	return s
}

// IsEnabled returns the flag's value, or defaultValue when it is unset.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[flag]; ok {
		return v
	}

	return defaultValue
}

// Set overrides a flag.
func (s *Static) Set(flag string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[flag] = enabled
}

// Snapshot returns a copy of every configured flag.
func (s *Static) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.values)
}
