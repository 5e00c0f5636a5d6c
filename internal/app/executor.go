package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quote-engine/internal/platform/logging"
)

// Settlement of an assistant turn runs as a staged pipeline:
//
//	VALIDATE  the turn can be sent
//	PERFORM   the remote call
//	VERIFY    the reply is usable
//	ARCHIVE   merge into the session document and sync
//	RESPOND   build the value handed back to the caller
//
// A failed stage stops the pipeline, so nothing is merged or synced from a
// reply that was never verified.

// ExecutionStep names a pipeline stage.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the stage an operation stopped at.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func stepError(step ExecutionStep, message string, cause error) error {
	return &ExecutionError{Step: step, Message: message, Cause: cause}
}

// Executor runs operations and logs each stage.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger uses slog.Default.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation holds the stage functions. Only Perform is required; a missing
// Verify passes the performed value through when P and V are the same type,
// and yields the zero V otherwise.
type Operation[I, P, V, O any] struct {
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs op against input. Errors from Validate, Perform, Verify and
// Archive are wrapped in an ExecutionError; Respond errors are returned as is.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	if op.Perform == nil {
		return zero, stepError(StepPerform, "no perform function", nil)
	}

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			logger.WarnContext(ctx, "validation failed", slog.Any("error", err))

			return zero, stepError(StepValidate, "input validation failed", err)
		}
	}

	logger.DebugContext(ctx, "performing operation")

	performed, err := op.Perform(ctx, input)
	if err != nil {
		logger.ErrorContext(ctx, "perform failed", slog.Any("error", err))

		return zero, stepError(StepPerform, "operation failed", err)
	}

	var verified V

	switch {
	case op.Verify != nil:
		verified, err = op.Verify(ctx, input, performed)
		if err != nil {
			logger.ErrorContext(ctx, "verification failed", slog.Any("error", err))

			return zero, stepError(StepVerify, "verification failed", err)
		}
	default:
		if v, ok := any(performed).(V); ok {
			verified = v
		}
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, input, verified); err != nil {
			logger.ErrorContext(ctx, "archive failed", slog.Any("error", err))

			return zero, stepError(StepArchive, "state persistence failed", err)
		}
	}

	result := zero

	if op.Respond != nil {
		result, err = op.Respond(ctx, input, verified)
		if err != nil {
			logger.WarnContext(ctx, "respond failed", slog.Any("error", err))

			return zero, err
		}
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// GetExecutionStep extracts the failing stage from err.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
