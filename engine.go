package lateral

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zero-day-ai/lateral/chain"
	"github.com/zero-day-ai/lateral/scenario"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine runs chain searches and validations against scenarios, resolving
// systems by name and reporting through slog and OpenTelemetry.
//
// An Engine holds no per-search state and is safe for concurrent use; each
// call builds its own search state.
type Engine struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *engineMetrics
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	metrics, err := newEngineMetrics(cfg.meterProvider)
	if err != nil {
		return nil, NewConfigurationError("New", err)
	}

	return &Engine{
		logger:  cfg.logger,
		tracer:  cfg.tracer,
		metrics: metrics,
	}, nil
}

// FindChains returns every valid chain from start to target within maxHops,
// in canonical order.
func (e *Engine) FindChains(ctx context.Context, sc *scenario.Scenario, start, target string, maxHops int) ([]chain.Chain, error) {
	res, err := e.search(ctx, "Engine.FindChains", sc, start, target, maxHops)
	if err != nil {
		return nil, err
	}
	return res.Chains, nil
}

// Search is FindChains with search statistics.
func (e *Engine) Search(ctx context.Context, sc *scenario.Scenario, start, target string, maxHops int) (*chain.Result, error) {
	return e.search(ctx, "Engine.Search", sc, start, target, maxHops)
}

func (e *Engine) search(ctx context.Context, op string, sc *scenario.Scenario, start, target string, maxHops int) (*chain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewCanceledError(op, err)
	}
	if maxHops < 0 {
		return nil, NewValidationError(op, fmt.Errorf("%w: %w", ErrInvalidInput, chain.ErrNegativeMaxHops)).
			WithContext(map[string]any{"max_hops": maxHops})
	}
	from, to, err := resolve(op, sc, start, target)
	if err != nil {
		return nil, err
	}

	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "lateral.find_chains", trace.WithAttributes(
			attribute.String("lateral.scenario", sc.Name()),
			attribute.String("lateral.start", start),
			attribute.String("lateral.target", target),
			attribute.Int("lateral.max_hops", maxHops),
		))
		defer span.End()
	}

	e.logger.DebugContext(ctx, "starting chain search",
		"scenario", sc.Name(),
		"start", start,
		"target", target,
		"max_hops", maxHops)

	began := time.Now()
	res, err := chain.Search(sc, from, to, maxHops)
	elapsed := time.Since(began)
	if err != nil {
		// resolve already checked everything Search rejects.
		ierr := NewInternalError(op, err)
		if span != nil {
			span.RecordError(ierr)
			span.SetStatus(codes.Error, ierr.Error())
		}
		return nil, ierr
	}

	if span != nil {
		span.SetAttributes(
			attribute.Int("lateral.chains", len(res.Chains)),
			attribute.Int("lateral.nodes", res.Stats.Nodes),
			attribute.Int("lateral.rejected", res.Stats.Rejected),
		)
		span.SetStatus(codes.Ok, "")
	}
	e.metrics.recordSearch(ctx, sc.Name(), elapsed, len(res.Chains), res.Stats.Nodes)

	e.logger.InfoContext(ctx, "chain search complete",
		"scenario", sc.Name(),
		"start", start,
		"target", target,
		"max_hops", maxHops,
		"chains", len(res.Chains),
		"nodes", res.Stats.Nodes,
		"duration", elapsed)

	return res, nil
}

// Validate replays c from start and returns the first violation, or nil if
// the chain is valid. The error result is reserved for requests that cannot
// be replayed at all, such as unknown start or target names.
func (e *Engine) Validate(ctx context.Context, sc *scenario.Scenario, start, target string, c chain.Chain) (*chain.ValidationError, error) {
	const op = "Engine.Validate"

	if err := ctx.Err(); err != nil {
		return nil, NewCanceledError(op, err)
	}
	from, to, err := resolve(op, sc, start, target)
	if err != nil {
		return nil, err
	}

	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "lateral.validate", trace.WithAttributes(
			attribute.String("lateral.scenario", sc.Name()),
			attribute.String("lateral.start", start),
			attribute.String("lateral.target", target),
			attribute.Int("lateral.hops", len(c)),
		))
		defer span.End()
	}

	verr := chain.Validate(sc, from, to, c)
	violation, isViolation := chain.AsValidationError(verr)
	if verr != nil && !isViolation {
		ierr := NewInternalError(op, verr)
		if span != nil {
			span.RecordError(ierr)
			span.SetStatus(codes.Error, ierr.Error())
		}
		return nil, ierr
	}

	valid := violation == nil
	if span != nil {
		span.SetAttributes(attribute.Bool("lateral.valid", valid))
		if !valid {
			span.SetAttributes(
				attribute.Int("lateral.violation.hop", violation.Hop),
				attribute.String("lateral.violation.rule", string(violation.Rule)),
			)
		}
		span.SetStatus(codes.Ok, "")
	}
	e.metrics.recordValidate(ctx, sc.Name(), valid)

	if valid {
		e.logger.DebugContext(ctx, "chain valid", "scenario", sc.Name(), "hops", len(c))
	} else {
		e.logger.DebugContext(ctx, "chain rejected",
			"scenario", sc.Name(),
			"hop", violation.Hop,
			"rule", violation.Rule,
			"reason", violation.Error())
	}
	return violation, nil
}

func resolve(op string, sc *scenario.Scenario, start, target string) (*scenario.System, *scenario.System, error) {
	if sc == nil {
		return nil, nil, NewValidationError(op, fmt.Errorf("%w: %w", ErrInvalidInput, chain.ErrNilScenario))
	}
	from := sc.System(start)
	if from == nil {
		return nil, nil, NewNotFoundError(op, fmt.Errorf("%w: start %q", ErrSystemNotFound, start)).
			WithContext(map[string]any{"scenario": sc.Name()})
	}
	to := sc.System(target)
	if to == nil {
		return nil, nil, NewNotFoundError(op, fmt.Errorf("%w: target %q", ErrSystemNotFound, target)).
			WithContext(map[string]any{"scenario": sc.Name()})
	}
	return from, to, nil
}

// LoadScenario resolves ref as a built-in scenario name first and otherwise
// as the path of a YAML or JSON scenario document.
func LoadScenario(ref string) (*scenario.Scenario, error) {
	const op = "LoadScenario"

	if sc, ok := scenario.Lookup(ref); ok {
		return sc, nil
	}

	if _, err := os.Stat(ref); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewNotFoundError(op, fmt.Errorf("%w: %q is neither a built-in scenario %v nor a file", ErrScenarioNotFound, ref, scenario.CatalogNames()))
		}
		return nil, NewConfigurationError(op, fmt.Errorf("%w: %w", ErrScenarioLoad, err))
	}

	sc, err := scenario.Load(ref)
	if err != nil {
		return nil, NewConfigurationError(op, fmt.Errorf("%w: %w", ErrScenarioLoad, err)).
			WithContext(map[string]any{"path": ref})
	}
	return sc, nil
}
