package lateral

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/zero-day-ai/lateral"

// engineMetrics holds the metric instruments created once per Engine.
type engineMetrics struct {
	// searchDuration records search wall time in milliseconds
	searchDuration metric.Float64Histogram

	searchChains metric.Int64Counter

	// searchNodes counts search states visited
	searchNodes metric.Int64Counter

	validateCount metric.Int64Counter
}

func newEngineMetrics(mp metric.MeterProvider) (*engineMetrics, error) {
	if mp == nil {
		return nil, nil
	}
	meter := mp.Meter(instrumentationName)

	m := &engineMetrics{}
	var err error

	m.searchDuration, err = meter.Float64Histogram(
		"lateral.search.duration",
		metric.WithDescription("Chain search duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create search duration histogram: %w", err)
	}

	m.searchChains, err = meter.Int64Counter(
		"lateral.search.chains",
		metric.WithDescription("Number of attack chains found"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create search chains counter: %w", err)
	}

	m.searchNodes, err = meter.Int64Counter(
		"lateral.search.nodes",
		metric.WithDescription("Number of search states visited"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create search nodes counter: %w", err)
	}

	m.validateCount, err = meter.Int64Counter(
		"lateral.validate.count",
		metric.WithDescription("Number of chains replayed by the validator"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create validate counter: %w", err)
	}

	return m, nil
}

func (m *engineMetrics) recordSearch(ctx context.Context, scenario string, elapsed time.Duration, chains, nodes int) {
	if m == nil {
		return
	}
	opts := metric.WithAttributes(attribute.String("scenario", scenario))
	m.searchDuration.Record(ctx, float64(elapsed.Microseconds())/1000, opts)
	m.searchChains.Add(ctx, int64(chains), opts)
	m.searchNodes.Add(ctx, int64(nodes), opts)
}

func (m *engineMetrics) recordValidate(ctx context.Context, scenario string, valid bool) {
	if m == nil {
		return
	}
	m.validateCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scenario", scenario),
		attribute.Bool("valid", valid),
	))
}
