// Package orchestration drives block subsystem startup through an explicit
// state machine: load definitions from every source, resolve a dependency
// order, register blocks, then validate the palette. Failed attempts are
// retried with linear backoff inside a bounded time budget, progress is
// observable at any moment and every run emits a structured event stream.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/botcanvas/blockcore/internal/block"
	"github.com/botcanvas/blockcore/internal/cachemanager"
	"github.com/botcanvas/blockcore/internal/loader"
	"github.com/botcanvas/blockcore/internal/log"
	"github.com/botcanvas/blockcore/internal/pubsub"
	"github.com/botcanvas/blockcore/internal/registry"
	"github.com/botcanvas/blockcore/internal/resolver"
	"github.com/botcanvas/blockcore/internal/tracing"
)

// Defaults for Config fields left at zero. MaxRetries is the exception:
// zero is meaningful there and disables retries.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultPhaseFraction = 0.25
	DefaultMaxRetries    = 2
	DefaultRetryDelay    = 500 * time.Millisecond
)

// Config bounds and paces initialization runs.
type Config struct {
	// Timeout is the budget for a whole run, retries included.
	Timeout time.Duration

	// PhaseFraction is the share of Timeout a single phase may spend,
	// in (0, 1].
	PhaseFraction float64

	// MaxRetries is how many extra attempts a retryable failure earns.
	MaxRetries int

	// RetryDelay paces retries linearly: the wait before attempt n is
	// (n-1) times this value.
	RetryDelay time.Duration
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:       DefaultTimeout,
		PhaseFraction: DefaultPhaseFraction,
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PhaseFraction <= 0 || c.PhaseFraction > 1 {
		c.PhaseFraction = DefaultPhaseFraction
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// Deps are the collaborators a run drives. Nil members fall back to inert
// defaults, so tests can inject only what they exercise.
type Deps struct {
	Sources  []loader.Source
	Loader   *loader.Loader
	Resolver *resolver.Resolver
	Registry *registry.Registry
	Cache    *cachemanager.RegistrationCache
	Tracer   trace.Tracer
}

// Orchestrator runs initialization and answers questions about it.
type Orchestrator struct {
	cfg    Config
	deps   Deps
	tracer trace.Tracer
	broker *pubsub.Broker[Event]

	// epoch fences runs: transitions and commits from a run whose epoch
	// is no longer current are discarded.
	epoch atomic.Int64

	mu       sync.Mutex
	state    State
	progress Progress
	result   *Result
	pending  *pendingRun
}

// pendingRun hands one in-flight run's outcome to every waiter.
type pendingRun struct {
	done   chan struct{}
	result *Result
}

// errSuperseded marks work abandoned because a reset or a newer run took
// ownership of the machine. It never surfaces in results.
var errSuperseded = &InitError{Class: ClassUnknown, Message: "run superseded"}

// New builds an orchestrator. See Deps for the defaulting rules.
func New(cfg Config, deps Deps) *Orchestrator {
	cfg = cfg.withDefaults()
	if deps.Loader == nil {
		deps.Loader = loader.New(loader.Config{})
	}
	if deps.Resolver == nil {
		deps.Resolver = resolver.New()
	}
	if deps.Cache == nil {
		deps.Cache = cachemanager.New(cachemanager.Config{})
	}
	if deps.Registry == nil {
		deps.Registry = registry.New(nil, deps.Cache)
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return &Orchestrator{
		cfg:      cfg,
		deps:     deps,
		tracer:   tracer,
		broker:   pubsub.NewBrokerWithBuffer[Event](256),
		state:    StateIdle,
		progress: Progress{State: StateIdle},
	}
}

// Initialize runs the state machine to completion and returns the outcome.
// It is idempotent: after a terminal run the stored result is returned
// without starting over, and concurrent callers during a run share the
// single in-flight outcome. The error return concerns the caller's wait
// only; a failed run reports through Result.Success and Result.Errors.
func (o *Orchestrator) Initialize(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.result != nil && o.state.Terminal() {
		res := o.result
		o.mu.Unlock()
		return res, nil
	}
	if o.pending != nil {
		run := o.pending
		o.mu.Unlock()
		return awaitRun(ctx, run)
	}

	run := &pendingRun{done: make(chan struct{})}
	o.pending = run
	runID := uuid.NewString()
	epoch := o.epoch.Add(1)
	started := time.Now()
	o.progress = Progress{
		State:            o.state,
		StartedAt:        started,
		RunID:            runID,
		Attempt:          1,
		CurrentOperation: "starting",
	}
	o.mu.Unlock()

	go o.run(run, epoch, runID, started)

	return awaitRun(ctx, run)
}

func awaitRun(ctx context.Context, run *pendingRun) (*Result, error) {
	select {
	case <-run.done:
		return run.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run owns one initialization from first attempt to terminal state. It
// executes on its own goroutine so a caller timeout never kills the run
// for the other waiters.
func (o *Orchestrator) run(pending *pendingRun, epoch int64, runID string, started time.Time) {
	runCtx, cancel := context.WithTimeout(context.Background(), o.cfg.Timeout)
	defer cancel()

	ctx, span := o.tracer.Start(runCtx, tracing.SpanInitRun,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String(tracing.AttrRunID, runID)),
	)
	defer span.End()

	maxAttempts := o.cfg.MaxRetries + 1
	attempts := 0
	var carried []string
	var out attemptOutcome

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if initErr := o.backoff(runCtx, epoch, attempt); initErr != nil {
				if initErr == errSuperseded {
					out.stale = true
				} else {
					out.fatal = initErr
					o.publishError(runID, attempts, initErr)
				}
				break
			}
			// Each attempt starts from a clean registry and a fresh
			// epoch; the cache deliberately survives so repeated
			// validation work is not repeated.
			o.deps.Registry.Reset()
			epoch = o.epoch.Add(1)
			o.noteProgress(epoch, func(p *Progress) {
				p.Attempt = attempt
				p.Completed = 0
				p.Total = 0
			})
		}
		attempts = attempt
		out = o.attempt(ctx, epoch, runID, attempt)
		if out.stale || out.fatal == nil {
			break
		}
		o.publishError(runID, attempt, out.fatal)
		if !out.fatal.Retryable || attempt == maxAttempts {
			break
		}
		carried = append(carried, fmt.Sprintf("attempt %d failed: %s", attempt, out.fatal.Error()))
	}

	result := &Result{RunID: runID, Attempts: attempts}
	result.Errors = append(result.Errors, out.errors...)
	if out.fatal != nil {
		result.Errors = append(result.Errors, out.fatal)
	}
	result.Warnings = append(result.Warnings, carried...)
	result.Warnings = append(result.Warnings, out.warnings...)
	result.BlocksLoaded = out.registered
	result.TotalTime = time.Since(started)
	result.CacheStats = o.deps.Cache.Stats()
	result.Success = out.fatal == nil && !out.stale

	if out.stale || o.epoch.Load() != epoch {
		// A reset took the machine away mid-run. Waiters still get an
		// honest outcome; shared state belongs to the new owner.
		result.Success = false
		result.Warnings = append(result.Warnings, "initialization superseded by a reset")
		span.SetStatus(codes.Error, "superseded")
		o.mu.Lock()
		if o.pending == pending {
			o.pending = nil
		}
		o.mu.Unlock()
		pending.result = result
		close(pending.done)
		return
	}

	if result.Success {
		o.transition(epoch, StateReady, "ready")
		span.SetAttributes(
			attribute.Int(tracing.AttrBlocksLoaded, result.BlocksLoaded),
			attribute.Int(tracing.AttrAttempt, result.Attempts),
			attribute.Int64(tracing.AttrCacheHits, int64(result.CacheStats.Hits)),
			attribute.Int64(tracing.AttrCacheMisses, int64(result.CacheStats.Misses)),
		)
		span.SetStatus(codes.Ok, "")
	} else {
		o.transition(epoch, StateError, "initialization failed")
		span.RecordError(out.fatal)
		span.SetStatus(codes.Error, out.fatal.Message)
	}

	o.mu.Lock()
	current := o.epoch.Load() == epoch
	if current {
		o.result = result
		o.progress.Errors = append([]*InitError(nil), result.Errors...)
		o.progress.Warnings = append([]string(nil), result.Warnings...)
	}
	if o.pending == pending {
		o.pending = nil
	}
	o.mu.Unlock()

	pending.result = result
	close(pending.done)

	if !current {
		return
	}
	o.publish(Event{Kind: EventInitCompleted, RunID: runID, Attempt: attempts, Result: result})
	if result.Success {
		log.Info(log.CatOrch, "initialization complete",
			"run_id", runID, "blocks", result.BlocksLoaded,
			"attempts", attempts, "elapsed", result.TotalTime.String())
	} else {
		log.Error(log.CatOrch, "initialization failed",
			"run_id", runID, "attempts", attempts, "errors", len(result.Errors))
	}
}

// attemptOutcome carries one attempt's accumulated findings.
type attemptOutcome struct {
	errors     []*InitError
	warnings   []string
	registered int
	total      int
	fatal      *InitError
	stale      bool
}

// failed folds a phase failure into the outcome, distinguishing
// supersession from real errors.
func (a attemptOutcome) failed(initErr *InitError) attemptOutcome {
	if initErr == errSuperseded {
		a.stale = true
		return a
	}
	a.fatal = initErr
	return a
}

// attempt runs the four phases once. Non-fatal findings accumulate in the
// outcome; a fatal finding stops the attempt where it happened.
func (o *Orchestrator) attempt(ctx context.Context, epoch int64, runID string, attempt int) attemptOutcome {
	var out attemptOutcome

	// Loading: fan out over every configured source.
	var batch *loader.Batch
	initErr := o.phase(ctx, epoch, StateLoading, "loading block definitions", func(pctx context.Context) *InitError {
		batch = o.deps.Loader.Load(pctx, o.deps.Sources)
		return nil
	})
	if initErr != nil {
		return out.failed(initErr)
	}
	for _, rec := range batch.Errors {
		loadErr := NewLoadError(rec.Error(), rec)
		out.errors = append(out.errors, loadErr)
		o.publishError(runID, attempt, loadErr)
	}
	out.warnings = append(out.warnings, batch.Warnings...)
	if len(batch.Definitions) == 0 {
		out.fatal = NewLoadError("no source produced any block definitions", loader.ErrNoSources)
		return out
	}
	o.syncProgress(epoch, &out)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int(tracing.AttrSources, batch.Sources),
		attribute.Int(tracing.AttrSourcesFail, batch.Failed),
		attribute.Int(tracing.AttrBlocksTotal, len(batch.Definitions)),
	)
	log.Info(log.CatOrch, "definitions loaded",
		"run_id", runID, "count", len(batch.Definitions),
		"sources", batch.Sources, "failed", batch.Failed)

	// Resolving: topological order with cycle rejection.
	var res *resolver.Result
	initErr = o.phase(ctx, epoch, StateResolving, "resolving dependencies", func(_ context.Context) *InitError {
		r, err := o.deps.Resolver.Resolve(batch.Definitions)
		if err != nil {
			var cycle *resolver.CycleError
			if errors.As(err, &cycle) {
				return NewResolutionError(cycle.BlockID, "dependency cycle detected", err)
			}
			return NewResolutionError("", "dependency resolution failed", err)
		}
		res = r
		return nil
	})
	if initErr != nil {
		return out.failed(initErr)
	}
	out.warnings = append(out.warnings, res.Warnings...)
	for _, ext := range res.External {
		out.warnings = append(out.warnings,
			fmt.Sprintf("block %s requires %s which is not part of this batch", ext.BlockID, ext.DependencyID))
	}
	out.total = len(res.Order)
	o.noteProgress(epoch, func(p *Progress) { p.Total = out.total })
	o.syncProgress(epoch, &out)
	o.publish(Event{Kind: EventDepsResolved, RunID: runID, Attempt: attempt, Count: out.total})

	// Registering: walk the resolved order. The epoch re-check per block
	// stops a superseded attempt from writing into a registry a newer run
	// now owns.
	var reg struct {
		errors   []*InitError
		warnings []string
		count    int
	}
	initErr = o.phase(ctx, epoch, StateRegistering, "registering blocks", func(pctx context.Context) *InitError {
		for i, def := range res.Order {
			if o.epoch.Load() != epoch {
				return errSuperseded
			}
			if err := pctx.Err(); err != nil {
				return NewTimeoutError(
					fmt.Sprintf("registration stopped after %d of %d blocks", i, len(res.Order)), err)
			}
			if err := o.deps.Registry.Register(def); err != nil {
				if def.Optional {
					reg.warnings = append(reg.warnings,
						fmt.Sprintf("optional block %s skipped: %v", def.ID, err))
					continue
				}
				reg.errors = append(reg.errors, NewRegistrationError(def.ID, err))
				continue
			}
			reg.count++
			done := reg.count
			o.publish(Event{Kind: EventBlockLoaded, RunID: runID, Attempt: attempt, BlockID: def.ID})
			o.noteProgress(epoch, func(p *Progress) {
				p.Completed = done
				if p.Total > 0 {
					floor := percentForState[StateRegistering]
					ceil := percentForState[StateValidating]
					p.Percentage = floor + (ceil-floor)*float64(done)/float64(p.Total)
				}
			})
		}
		return nil
	})
	if initErr != nil {
		return out.failed(initErr)
	}
	out.registered = reg.count
	out.warnings = append(out.warnings, reg.warnings...)
	for _, regErr := range reg.errors {
		out.errors = append(out.errors, regErr)
		o.publishError(runID, attempt, regErr)
	}
	o.syncProgress(epoch, &out)
	if reg.count == 0 {
		out.fatal = NewValidationError("every block registration failed")
		return out
	}

	// Validating: the palette must be usable before ready is announced.
	var paletteWarnings []string
	initErr = o.phase(ctx, epoch, StateValidating, "validating palette", func(_ context.Context) *InitError {
		if o.deps.Registry.Len() == 0 {
			return NewValidationError("registry is empty after registration")
		}
		stats := o.deps.Registry.Stats()
		for _, cat := range block.RequiredCategories() {
			if stats.ByCategory[cat] == 0 {
				paletteWarnings = append(paletteWarnings, fmt.Sprintf("no %s blocks registered", cat))
			}
		}
		for _, def := range o.deps.Registry.All() {
			if !def.Complete() {
				paletteWarnings = append(paletteWarnings,
					fmt.Sprintf("block %s is missing display metadata", def.ID))
			}
		}
		return nil
	})
	if initErr != nil {
		return out.failed(initErr)
	}
	out.warnings = append(out.warnings, paletteWarnings...)
	o.syncProgress(epoch, &out)
	return out
}

// phase moves into state, then runs fn with the per-phase deadline on a
// separate goroutine. A phase that overruns is abandoned rather than
// interrupted; the cancelled phase context and the epoch fence keep
// stragglers from doing further harm.
func (o *Orchestrator) phase(ctx context.Context, epoch int64, state State, op string, fn func(context.Context) *InitError) *InitError {
	if !o.transition(epoch, state, op) {
		return errSuperseded
	}

	budget := o.phaseBudget()
	phaseCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	pctx, span := o.tracer.Start(phaseCtx, tracing.SpanPrefixPhase+string(state),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String(tracing.AttrPhase, string(state))),
	)
	defer span.End()

	done := make(chan *InitError, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &InitError{
					Class:   ClassUnknown,
					Message: fmt.Sprintf("panic during %s: %v", op, r),
					Err:     fmt.Errorf("panic: %v", r),
				}
			}
		}()
		done <- fn(pctx)
	}()

	select {
	case initErr := <-done:
		if initErr != nil && initErr != errSuperseded {
			span.RecordError(initErr)
			span.SetStatus(codes.Error, initErr.Message)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return initErr
	case <-phaseCtx.Done():
		msg := fmt.Sprintf("%s did not finish within %s", op, budget)
		if ctx.Err() != nil {
			msg = fmt.Sprintf("initialization budget exhausted during %s", op)
		}
		initErr := NewTimeoutError(msg, phaseCtx.Err())
		span.RecordError(initErr)
		span.SetStatus(codes.Error, "deadline exceeded")
		return initErr
	}
}

// backoff pauses before the next attempt. The wait grows linearly with the
// number of failures so transient source outages get breathing room.
func (o *Orchestrator) backoff(ctx context.Context, epoch int64, attempt int) *InitError {
	if !o.transition(epoch, StateRetrying, fmt.Sprintf("waiting to retry (attempt %d)", attempt)) {
		return errSuperseded
	}
	delay := time.Duration(attempt-1) * o.cfg.RetryDelay
	log.Warn(log.CatOrch, "retrying initialization", "attempt", attempt, "delay", delay.String())
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return NewTimeoutError("initialization budget exhausted while waiting to retry", ctx.Err())
	}
}

func (o *Orchestrator) phaseBudget() time.Duration {
	return time.Duration(float64(o.cfg.Timeout) * o.cfg.PhaseFraction)
}

// transition moves the state machine when epoch still owns it. Stale moves
// are dropped silently; invalid moves are refused and logged.
func (o *Orchestrator) transition(epoch int64, to State, op string) bool {
	o.mu.Lock()
	if o.epoch.Load() != epoch {
		o.mu.Unlock()
		return false
	}
	from := o.state
	if !IsValidTransition(from, to) {
		o.mu.Unlock()
		log.Error(log.CatOrch, "refusing invalid state transition",
			"from", string(from), "to", string(to))
		return false
	}
	o.state = to
	o.progress.State = to
	o.progress.CurrentOperation = op
	if pct, ok := percentForState[to]; ok {
		o.progress.Percentage = pct
	}
	if !o.progress.StartedAt.IsZero() {
		o.progress.Elapsed = time.Since(o.progress.StartedAt)
		o.progress.EstimatedRemaining = estimateRemaining(o.progress.Elapsed, o.progress.Percentage)
	}
	snapshot := o.progress.clone()
	o.mu.Unlock()

	log.Debug(log.CatOrch, "state transition",
		"from", string(from), "to", string(to), "run_id", snapshot.RunID)
	o.publish(Event{Kind: EventStateChanged, RunID: snapshot.RunID, Attempt: snapshot.Attempt, State: to})
	o.publish(Event{Kind: EventProgressUpdated, RunID: snapshot.RunID, Attempt: snapshot.Attempt, Progress: &snapshot})
	return true
}

// noteProgress mutates the live snapshot when the run still owns it, then
// publishes the updated copy.
func (o *Orchestrator) noteProgress(epoch int64, mutate func(*Progress)) {
	o.mu.Lock()
	if o.epoch.Load() != epoch {
		o.mu.Unlock()
		return
	}
	mutate(&o.progress)
	if !o.progress.StartedAt.IsZero() {
		o.progress.Elapsed = time.Since(o.progress.StartedAt)
		o.progress.EstimatedRemaining = estimateRemaining(o.progress.Elapsed, o.progress.Percentage)
	}
	snapshot := o.progress.clone()
	o.mu.Unlock()
	o.publish(Event{Kind: EventProgressUpdated, RunID: snapshot.RunID, Attempt: snapshot.Attempt, Progress: &snapshot})
}

// syncProgress mirrors accumulated errors and warnings into the live
// progress snapshot.
func (o *Orchestrator) syncProgress(epoch int64, out *attemptOutcome) {
	errs := append([]*InitError(nil), out.errors...)
	warns := append([]string(nil), out.warnings...)
	o.noteProgress(epoch, func(p *Progress) {
		p.Errors = errs
		p.Warnings = warns
	})
}

func (o *Orchestrator) publish(ev Event) {
	typ := pubsub.EmittedEvent
	switch ev.Kind {
	case EventErrorOccurred:
		typ = pubsub.FailedEvent
	case EventStateChanged:
		typ = pubsub.ChangedEvent
	}
	o.broker.Publish(typ, ev)
}

func (o *Orchestrator) publishError(runID string, attempt int, initErr *InitError) {
	log.ErrorErr(log.CatOrch, "initialization error", initErr,
		"class", string(initErr.Class), "block", initErr.BlockID, "retryable", initErr.Retryable)
	o.publish(Event{Kind: EventErrorOccurred, RunID: runID, Attempt: attempt, Err: initErr})
}

// State returns the current state machine position.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Ready reports whether the subsystem finished initialization successfully.
func (o *Orchestrator) Ready() bool {
	return o.State() == StateReady
}

// GetProgress returns a snapshot of the current run. Elapsed time keeps
// counting while a run is live.
func (o *Orchestrator) GetProgress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.progress.clone()
	if !p.StartedAt.IsZero() && !o.state.Terminal() {
		p.Elapsed = time.Since(p.StartedAt)
		p.EstimatedRemaining = estimateRemaining(p.Elapsed, p.Percentage)
	}
	return p
}

// LastResult returns the outcome of the most recent terminal run.
func (o *Orchestrator) LastResult() (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result == nil || !o.state.Terminal() {
		return nil, ErrNotReady
	}
	return o.result, nil
}

// WaitForReady blocks until initialization reaches a terminal state and
// returns its result. It never starts a run itself.
func (o *Orchestrator) WaitForReady(ctx context.Context) (*Result, error) {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		o.mu.Lock()
		if o.result != nil && o.state.Terminal() {
			res := o.result
			o.mu.Unlock()
			return res, nil
		}
		run := o.pending
		o.mu.Unlock()

		if run != nil {
			select {
			case <-run.done:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Events exposes the orchestration event stream.
func (o *Orchestrator) Events(ctx context.Context) <-chan pubsub.Event[Event] {
	return o.broker.Subscribe(ctx)
}

// Reset tears the subsystem down to idle: registry emptied, cache flushed,
// progress cleared. An in-flight run is fenced off by the epoch bump and
// finishes as superseded.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.epoch.Add(1)
	from := o.state
	o.state = StateIdle
	o.progress = Progress{State: StateIdle}
	o.result = nil
	o.pending = nil
	o.mu.Unlock()

	o.deps.Registry.Reset()
	o.deps.Cache.Flush()
	log.Info(log.CatOrch, "orchestrator reset", "from", string(from))
	o.publish(Event{Kind: EventStateChanged, State: StateIdle})
}

// Reinitialize discards all state and runs initialization again from
// scratch. Unlike Initialize it never reuses a previous outcome.
func (o *Orchestrator) Reinitialize(ctx context.Context) (*Result, error) {
	o.Reset()
	return o.Initialize(ctx)
}

// Close releases the event broker. The orchestrator is unusable after.
func (o *Orchestrator) Close() {
	o.broker.Close()
}
