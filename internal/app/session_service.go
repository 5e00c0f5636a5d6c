// Package app orchestrates quotation editing sessions. It sits between the
// UI-facing adapters and the engine packages: the interpreter applies instant
// updates, the assistant settles each turn in the background, and the store
// keeps the last settled document.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/quote-engine/internal/command"
	"github.com/jsamuelsen/quote-engine/internal/domain"
	"github.com/jsamuelsen/quote-engine/internal/history"
	"github.com/jsamuelsen/quote-engine/internal/platform/logging"
	"github.com/jsamuelsen/quote-engine/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-engine/internal/ports"
	"github.com/jsamuelsen/quote-engine/internal/pricing"
	"github.com/jsamuelsen/quote-engine/internal/reconcile"
	"github.com/jsamuelsen/quote-engine/internal/review"
)

const (
	// DefaultReconcileTimeout bounds one assistant round trip.
	DefaultReconcileTimeout = 30 * time.Second

	defaultFlushWorkers = 4
)

// History actions recorded by the service.
const (
	ActionAssistant = "assistant reply"
	ActionRevert    = "revert"
	ActionReset     = "reset"
)

// State is a read-only view of a session.
type State struct {
	SessionID          string
	Quotation          *domain.Quotation
	CanUndo            bool
	CanRedo            bool
	Pending            int
	AssistantAvailable bool
	History            []history.Entry
}

// Submission is returned by Submit once the instant path has run.
type Submission struct {
	State

	Applied bool
	Outcome command.Outcome
	Command command.Command

	// Settled delivers exactly one Settlement and is then closed. It is nil
	// when no assistant round trip was started.
	Settled <-chan Settlement
}

// Settlement is the result of the assistant round trip for one turn.
type Settlement struct {
	ResponseText string
	Quotation    *domain.Quotation
	Result       string
	Reverted     bool
	Err          error
}

// SessionServiceConfig wires the service. Store is required.
type SessionServiceConfig struct {
	// Assistant may be nil, in which case turns settle on the instant path
	// alone.
	Assistant   ports.AssistantClient
	Store       ports.QuotationStore
	Interpreter *command.Interpreter
	Flags       ports.FeatureFlags
	Executor    *Executor
	Logger      *slog.Logger

	HistoryCapacity  int
	ReconcileTimeout time.Duration
	FlushWorkers     int
}

// SessionService owns the open sessions.
type SessionService struct {
	assistant ports.AssistantClient
	store     ports.QuotationStore
	interp    *command.Interpreter
	flags     ports.FeatureFlags
	exec      *Executor
	logger    *slog.Logger

	capacity int
	timeout  time.Duration
	workers  int

	mu       sync.RWMutex
	sessions map[string]*session
	inflight sync.WaitGroup
}

type session struct {
	id string

	mu          sync.Mutex
	doc         *domain.Quotation
	history     *history.Stack
	pending     int
	assistantUp bool
}

// turn is the settlement input. It captures what the instant path did so the
// reply can be merged, or the turn reverted, later.
type turn struct {
	text        string
	quotationID string
	applied     bool
	before      *domain.Quotation
}

// NewSessionService creates the service. It panics when cfg.Store is nil.
func NewSessionService(cfg SessionServiceConfig) *SessionService {
	if cfg.Store == nil {
		panic("app: SessionServiceConfig.Store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.SessionService"))

	svc := &SessionService{
		assistant: cfg.Assistant,
		store:     cfg.Store,
		interp:    cfg.Interpreter,
		flags:     cfg.Flags,
		exec:      cfg.Executor,
		logger:    logger,
		capacity:  cfg.HistoryCapacity,
		timeout:   cfg.ReconcileTimeout,
		workers:   cfg.FlushWorkers,
		sessions:  make(map[string]*session),
	}

	if svc.interp == nil {
		svc.interp = command.New()
	}

	if svc.flags == nil {
		svc.flags = defaultFlags{}
	}

	if svc.exec == nil {
		svc.exec = NewExecutor(logger)
	}

	if svc.capacity <= 0 {
		svc.capacity = history.DefaultCapacity
	}

	if svc.timeout <= 0 {
		svc.timeout = DefaultReconcileTimeout
	}

	if svc.workers <= 0 {
		svc.workers = defaultFlushWorkers
	}

	return svc
}

// Open starts a session. A non-empty quotationID is loaded from the store;
// when nothing is stored under it the session starts empty with that ID. An
// empty quotationID starts an empty quotation with a fresh ID.
func (s *SessionService) Open(ctx context.Context, quotationID string) (*State, error) {
	logger := s.requestLogger(ctx).With(slog.String("quotation_id", quotationID))

	doc, assistantUp, err := Parallel2(ctx,
		func(ctx context.Context) (*domain.Quotation, error) {
			return s.loadInitial(ctx, quotationID)
		},
		func(ctx context.Context) (bool, error) {
			return s.probeAssistant(ctx), nil
		},
	)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open session", slog.Any("error", err))

		return nil, err
	}

	sess := &session{
		id:          uuid.NewString(),
		doc:         doc,
		assistantUp: assistantUp,
	}
	sess.history = history.New(s.capacity, doc, history.WithOnRestore(func(q *domain.Quotation) {
		sess.doc = q
	}))

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	sessionsOpen.Inc()

	logger.InfoContext(ctx, "session opened",
		slog.String("session_id", sess.id),
		slog.Int("services", len(doc.Services)),
		slog.Bool("assistant_available", assistantUp),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.stateLocked(), nil
}

// Get returns the current state of a session.
func (s *SessionService) Get(_ context.Context, sessionID string) (*State, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.stateLocked(), nil
}

// Submit is the single mutation entry point. The instant path runs before
// Submit returns; the assistant round trip, when enabled, settles later on
// Submission.Settled.
func (s *SessionService) Submit(ctx context.Context, sessionID, text string) (*Submission, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "must not be empty")
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(ctx).With(slog.String("session_id", sessionID))

	sess.mu.Lock()

	t := turn{text: text, quotationID: sess.doc.ID, before: sess.doc.Clone()}

	res := command.Result{Command: command.NoMatch{}, Outcome: command.OutcomeNoMatch, Quotation: sess.doc}
	if s.flags.IsEnabled(ctx, ports.FlagInstantUpdates, true) {
		res = s.interp.Interpret(text, sess.doc)
	}

	if res.Applied() {
		sess.doc = res.Quotation
		sess.history.Record(sess.doc, "instant: "+res.Command.Kind().String())
		t.applied = true
	}

	instantUpdates.WithLabelValues(res.Outcome.String()).Inc()

	var settled chan Settlement

	roundTrip := s.assistant != nil && s.flags.IsEnabled(ctx, ports.FlagAssistantReconcile, true)
	if roundTrip {
		sess.pending++
		settled = make(chan Settlement, 1)
	}

	sub := &Submission{
		State:   *sess.stateLocked(),
		Applied: res.Applied(),
		Outcome: res.Outcome,
		Command: res.Command,
	}

	sess.mu.Unlock()

	logger.DebugContext(ctx, "instant update",
		slog.String("command", res.Command.Kind().String()),
		slog.String("outcome", res.Outcome.String()),
	)

	switch {
	case roundTrip:
		sub.Settled = settled
		detached := context.WithoutCancel(ctx)

		s.inflight.Go(func() {
			s.settle(detached, sess, t, settled)
		})
	case t.applied:
		// No round trip, so the instant result is already the settled state.
		s.sync(ctx, sub.Quotation)
	}

	return sub, nil
}

func (s *SessionService) settle(ctx context.Context, sess *session, t turn, out chan<- Settlement) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := telemetry.Tracer("session").Start(ctx, "settle_turn")
	span.SetAttributes(
		attribute.String("session.id", sess.id),
		attribute.String("quotation.id", t.quotationID),
	)
	defer span.End()

	defer close(out)

	var archived Settlement

	op := Operation[turn, *domain.AssistantReply, *domain.AssistantReply, Settlement]{
		Name: "settle_turn",
		Validate: func(_ context.Context, t turn) error {
			if t.text == "" {
				return domain.NewValidationError("text", "must not be empty")
			}

			return nil
		},
		Perform: func(ctx context.Context, t turn) (*domain.AssistantReply, error) {
			return s.assistant.SendMessage(ctx, t.text, t.quotationID)
		},
		Verify: func(_ context.Context, _ turn, reply *domain.AssistantReply) (*domain.AssistantReply, error) {
			if reply == nil {
				return nil, errors.New("assistant returned no reply")
			}

			return reply, nil
		},
		Archive: func(ctx context.Context, t turn, reply *domain.AssistantReply) error {
			archived = s.merge(ctx, sess, t, reply)

			return nil
		},
		Respond: func(_ context.Context, _ turn, reply *domain.AssistantReply) (Settlement, error) {
			archived.ResponseText = reply.ResponseText

			return archived, nil
		},
	}

	result, err := Execute(ctx, s.exec, op, t)
	if err != nil {
		if step, _ := GetExecutionStep(err); step == StepPerform {
			result = s.revert(ctx, sess, t, err)
		} else {
			result = s.finish(sess, Settlement{Result: SettlementUnchanged, Err: err})
		}
	}

	settlements.WithLabelValues(result.Result).Inc()

	out <- result
}

// merge folds the reply into the session's current document, whatever it
// has become since the turn was submitted.
func (s *SessionService) merge(ctx context.Context, sess *session, t turn, reply *domain.AssistantReply) Settlement {
	sess.mu.Lock()

	current := sess.doc
	outcome := SettlementUnchanged

	switch {
	case reply.Quotation == nil:
	case t.applied:
		sess.doc = reconcile.Reconcile(current, reply.Quotation)
		outcome = SettlementMerged
	default:
		sess.doc = reconcile.Adopt(reply.Quotation)
		outcome = SettlementAdopted
	}

	if sess.doc.ID == "" {
		sess.doc.ID = current.ID
	}

	if outcome != SettlementUnchanged && sess.doc.Equal(current) {
		outcome = SettlementUnchanged
	}

	sess.history.Record(sess.doc, ActionAssistant)

	snapshot := sess.doc.Clone()

	sess.mu.Unlock()

	s.sync(ctx, snapshot)

	return s.finish(sess, Settlement{Quotation: snapshot, Result: outcome})
}

// revert undoes an optimistic turn whose round trip failed. The last
// persisted document wins; without one the pre-turn snapshot is restored.
func (s *SessionService) revert(ctx context.Context, sess *session, t turn, cause error) Settlement {
	logger := s.requestLogger(ctx).With(slog.String("session_id", sess.id))

	if !t.applied {
		logger.WarnContext(ctx, "assistant round trip failed", slog.Any("error", cause))

		return s.finish(sess, Settlement{Result: SettlementUnchanged, Err: cause})
	}

	restored, err := s.store.Load(ctx, t.quotationID)
	fromSnapshot := err != nil || restored == nil

	if fromSnapshot {
		logger.WarnContext(ctx, "reload after failed round trip did not succeed, restoring pre-turn state",
			slog.Any("error", err),
		)

		restored = t.before.Clone()
	} else {
		restored = pricing.Recalculate(restored)
		if restored.ID == "" {
			restored.ID = t.quotationID
		}
	}

	sess.mu.Lock()
	sess.doc = restored
	sess.history.Record(sess.doc, ActionRevert)
	snapshot := sess.doc.Clone()
	sess.mu.Unlock()

	// The store never saw the pre-turn state as settled.
	if fromSnapshot {
		s.sync(ctx, snapshot)
	}

	logger.WarnContext(ctx, "optimistic update reverted", slog.Any("error", cause))

	return s.finish(sess, Settlement{Quotation: snapshot, Result: SettlementReverted, Reverted: true, Err: cause})
}

func (s *SessionService) finish(sess *session, st Settlement) Settlement {
	sess.mu.Lock()
	sess.pending--
	sess.mu.Unlock()

	return st
}

// Undo restores the previous snapshot. Nothing happens when there is none.
func (s *SessionService) Undo(ctx context.Context, sessionID string) (*State, error) {
	return s.move(ctx, sessionID, (*history.Stack).Undo)
}

// Redo restores the next snapshot. Nothing happens when there is none.
func (s *SessionService) Redo(ctx context.Context, sessionID string) (*State, error) {
	return s.move(ctx, sessionID, (*history.Stack).Redo)
}

func (s *SessionService) move(
	ctx context.Context,
	sessionID string,
	step func(*history.Stack) (*domain.Quotation, bool),
) (*State, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	_, moved := step(sess.history)
	state := sess.stateLocked()
	sess.mu.Unlock()

	if moved {
		s.sync(ctx, state.Quotation)
	}

	return state, nil
}

// Reset replaces the document with an empty quotation under the same ID.
// Replies still in flight merge into the reset document.
func (s *SessionService) Reset(ctx context.Context, sessionID string) (*State, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.doc = domain.NewQuotation(sess.doc.ID)
	sess.history.Record(sess.doc, ActionReset)
	state := sess.stateLocked()
	sess.mu.Unlock()

	s.sync(ctx, state.Quotation)

	s.requestLogger(ctx).InfoContext(ctx, "session reset", slog.String("session_id", sessionID))

	return state, nil
}

// ClearHistory drops every snapshot and restarts history from the current
// document.
func (s *SessionService) ClearHistory(_ context.Context, sessionID string) (*State, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.history.Clear(sess.doc)

	return sess.stateLocked(), nil
}

// Review audits the current document.
func (s *SessionService) Review(_ context.Context, sessionID string) (*review.Result, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	doc := sess.doc.Clone()
	sess.mu.Unlock()

	result := review.Review(doc)

	return &result, nil
}

// Close syncs the session one last time and forgets it.
func (s *SessionService) Close(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return domain.NewNotFoundError("session", sessionID)
	}

	sessionsOpen.Dec()

	sess.mu.Lock()
	doc := sess.doc.Clone()
	sess.mu.Unlock()

	s.sync(ctx, doc)

	s.requestLogger(ctx).InfoContext(ctx, "session closed", slog.String("session_id", sessionID))

	return nil
}

// FlushAll syncs every open session. Every session is attempted; the
// failures are joined.
func (s *SessionService) FlushAll(ctx context.Context) error {
	s.mu.RLock()
	open := slices.Collect(maps.Values(s.sessions))
	s.mu.RUnlock()

	var (
		mu   sync.Mutex
		errs []error
	)

	err := FanOut(ctx, s.workers, open, func(ctx context.Context, sess *session) error {
		sess.mu.Lock()
		doc := sess.doc.Clone()
		sess.mu.Unlock()

		if err := s.store.Sync(ctx, doc); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("session %s: %w", sess.id, err))
			mu.Unlock()
		}

		return nil
	})
	if err != nil {
		return err
	}

	if len(errs) > 0 {
		s.logger.WarnContext(ctx, "flush incomplete", slog.Int("failed", len(errs)), slog.Int("sessions", len(open)))
	}

	return errors.Join(errs...)
}

// Shutdown waits for in-flight round trips, bounded by ctx, and then flushes
// every session.
func (s *SessionService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "shutdown with assistant replies still in flight")
	}

	return s.FlushAll(context.WithoutCancel(ctx))
}

func (s *SessionService) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.NewNotFoundError("session", sessionID)
	}

	return sess, nil
}

func (s *SessionService) loadInitial(ctx context.Context, quotationID string) (*domain.Quotation, error) {
	if quotationID == "" {
		return domain.NewQuotation(uuid.NewString()), nil
	}

	stored, err := s.store.Load(ctx, quotationID)
	if domain.IsNotFound(err) {
		return domain.NewQuotation(quotationID), nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading quotation %s: %w", quotationID, err)
	}

	doc := pricing.Recalculate(stored)
	if doc.ID == "" {
		doc.ID = quotationID
	}

	return doc, nil
}

func (s *SessionService) probeAssistant(ctx context.Context) bool {
	if s.assistant == nil {
		return false
	}

	checker, ok := s.assistant.(ports.HealthChecker)
	if !ok {
		return true
	}

	if err := checker.Check(ctx); err != nil {
		s.logger.WarnContext(ctx, "assistant unavailable, instant updates only", slog.Any("error", err))

		return false
	}

	return true
}

// sync is best effort: failures are logged and never reach the caller.
func (s *SessionService) sync(ctx context.Context, q *domain.Quotation) {
	if err := s.store.Sync(ctx, q); err != nil {
		s.requestLogger(ctx).WarnContext(ctx, "quotation sync failed",
			slog.String("store", s.store.Name()),
			slog.String("quotation_id", q.ID),
			slog.Any("error", err),
		)
	}
}

func (s *SessionService) requestLogger(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}

func (sess *session) stateLocked() *State {
	return &State{
		SessionID:          sess.id,
		Quotation:          sess.doc.Clone(),
		CanUndo:            sess.history.CanUndo(),
		CanRedo:            sess.history.CanRedo(),
		Pending:            sess.pending,
		AssistantAvailable: sess.assistantUp,
		History:            sess.history.Entries(),
	}
}

type defaultFlags struct{}

func (defaultFlags) IsEnabled(_ context.Context, _ string, defaultValue bool) bool {
	return defaultValue
}
