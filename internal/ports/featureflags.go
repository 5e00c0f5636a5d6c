package ports

import (
	"context"
)

// Flags consulted by the session service.
const (
	// FlagInstantUpdates gates the local command interpreter. When off, every
	// turn waits for the assistant.
	FlagInstantUpdates = "instant-updates"

	// FlagAssistantReconcile gates the assistant round trip.
	FlagAssistantReconcile = "assistant-reconcile"
)

// FeatureFlags evaluates boolean flags. Implementations return defaultValue
// for unknown flags and never fail.
//
//	if flags.IsEnabled(ctx, ports.FlagInstantUpdates, true) {
//	    res = interp.Interpret(text, current)
//	}
type FeatureFlags interface {
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
}
