package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"procurekpi/internal/infrastructure"
	"procurekpi/pkg/contracts/domain"
)

// Pipeline runs every stage over one procurement log and assembles the report
type Pipeline struct {
	logger  *slog.Logger
	opts    Options
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	clock   clockwork.Clock
}

// NewPipeline creates a pipeline. providers may be nil, in which case no
// spans or metrics are recorded.
func NewPipeline(logger *slog.Logger, opts Options, providers *infrastructure.OTelProviders) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		logger: infrastructure.WithComponent(logger, "pipeline"),
		opts:   opts,
		tracer: tracenoop.NewTracerProvider().Tracer(infrastructure.TracerName),
		clock:  clockwork.NewRealClock(),
	}

	if providers != nil {
		p.tracer = providers.Tracer
		metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
		}
		p.metrics = metrics
	}

	return p, nil
}

// WithClock replaces the clock used for timestamps and durations
func (p *Pipeline) WithClock(clock clockwork.Clock) *Pipeline {
	p.clock = clock
	return p
}

// Run loads the file at path and processes it
func (p *Pipeline) Run(ctx context.Context, path string) (*domain.Report, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	start := p.clock.Now()

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("source", path),
		attribute.String("run_id", infrastructure.GetRunID(ctx)),
	))
	defer span.End()

	var table *domain.Table
	err := p.stage(ctx, "load", func(ctx context.Context) (int, error) {
		var err error
		table, err = LoadFile(ctx, path, p.opts.Load)
		return table.Len(), err
	})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	report, err := p.process(ctx, table, start)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	return report, nil
}

// Process runs every stage after loading over an in-memory table
func (p *Pipeline) Process(ctx context.Context, table *domain.Table) (*domain.Report, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	start := p.clock.Now()

	ctx, span := p.tracer.Start(ctx, "pipeline.process", trace.WithAttributes(
		attribute.String("source", table.Source),
		attribute.String("run_id", infrastructure.GetRunID(ctx)),
	))
	defer span.End()

	report, err := p.process(ctx, table, start)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	return report, nil
}

func (p *Pipeline) process(ctx context.Context, loaded *domain.Table, start time.Time) (*domain.Report, error) {
	report := &domain.Report{
		RunID:  infrastructure.GetRunID(ctx),
		Source: loaded.Source,
	}
	report.Stats.RowsLoaded = loaded.Len()
	report.Stats.FillStrategy = p.opts.Clean.FillStrategy
	report.Profile.MissingBefore = MissingCounts(loaded)

	var (
		table   *domain.Table
		medians CategoryMedians
	)

	steps := []struct {
		name string
		run  func(ctx context.Context) (int, error)
	}{
		{"clean", func(ctx context.Context) (int, error) {
			var stats CleanStats
			table, stats = Clean(loaded, p.opts.Clean)
			report.Stats.UnparsedOrderDates = stats.UnparsedOrderDates
			report.Stats.UnparsedDeliveries = stats.UnparsedDeliveries
			report.Stats.ForwardFilled = stats.ForwardFilled
			report.Stats.DefaultedDefects = stats.DefaultedDefects
			p.recordCleanStats(ctx, stats)
			return table.Len(), nil
		}},
		{"impute", func(ctx context.Context) (int, error) {
			var stats ImputeStats
			medians = ComputeCategoryMedians(table)
			table, stats = Impute(table, medians, p.opts.FallbackLeadDays)
			report.Stats.Imputed = stats.Imputed
			if p.metrics != nil && stats.Imputed > 0 {
				p.metrics.DeliveriesFill.Add(ctx, int64(stats.Imputed),
					metric.WithAttributes(attribute.String("method", "median")))
			}
			if stats.FallbackApplied > 0 {
				p.logger.WarnContext(ctx, "Category without lead-time median, fallback applied",
					slog.Int("rows", stats.FallbackApplied),
					slog.Int("fallback_days", p.opts.FallbackLeadDays))
			}
			return table.Len(), nil
		}},
		{"metrics", func(ctx context.Context) (int, error) {
			var undefined int
			table, undefined = ApplyMetrics(table, p.opts.Metrics)
			report.Stats.UndefinedDefectRate = undefined
			return table.Len(), nil
		}},
		{"aggregate", func(ctx context.Context) (int, error) {
			report.Risk = AggregateRisk(table)
			report.Savings = AggregateSavings(table)
			report.TopSavings = TopSavings(report.Savings, p.opts.TopN)
			report.TopSavingsPct = TopSavingsPct(report.Savings, p.opts.TopN)
			report.Trends = AggregateMonthlyTrends(table)
			return len(report.Savings), nil
		}},
		{"profile", func(ctx context.Context) (int, error) {
			report.Profile.Rows = table.Len()
			report.Profile.MissingAfter = MissingCounts(table)
			report.Profile.Columns = Describe(table)
			return len(report.Profile.Columns), nil
		}},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.stage(ctx, step.name, step.run); err != nil {
			return nil, fmt.Errorf("%s stage: %w", step.name, err)
		}
	}

	report.Table = table
	report.Medians = medians
	report.GeneratedAt = p.clock.Now().UTC()
	report.Stats.Duration = p.clock.Since(start)

	if p.metrics != nil {
		p.metrics.RunDuration.Record(ctx, report.Stats.Duration.Seconds())
	}

	p.logger.InfoContext(ctx, "Pipeline completed",
		slog.String("source", report.Source),
		slog.Int("rows", report.Stats.RowsLoaded),
		slog.Int("suppliers", len(report.Savings)),
		slog.Int("imputed", report.Stats.Imputed),
		slog.Int("forward_filled", report.Stats.ForwardFilled),
		slog.Int("unparsed_dates", report.Stats.UnparsedOrderDates+report.Stats.UnparsedDeliveries),
		slog.Duration("duration", report.Stats.Duration))

	return report, nil
}

// stage runs fn inside its own span and records its duration and row count
func (p *Pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) (int, error)) error {
	ctx, span := p.tracer.Start(ctx, "stage."+name)
	defer span.End()

	started := p.clock.Now()
	rows, err := fn(ctx)
	elapsed := p.clock.Since(started)

	span.SetAttributes(attribute.Int("rows", rows))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}

	p.metrics.RecordStage(ctx, name, rows, elapsed)
	p.logger.DebugContext(ctx, "Stage completed",
		slog.String("stage", name),
		slog.Int("rows", rows),
		slog.Duration("duration", elapsed))

	return nil
}

func (p *Pipeline) recordCleanStats(ctx context.Context, stats CleanStats) {
	if stats.UnparsedOrderDates+stats.UnparsedDeliveries > 0 {
		p.logger.WarnContext(ctx, "Unparseable dates set to unknown",
			slog.Int("order_date", stats.UnparsedOrderDates),
			slog.Int("delivery_date", stats.UnparsedDeliveries))
	}
	if p.metrics == nil {
		return
	}
	p.metrics.DatesUnparsed.Add(ctx, int64(stats.UnparsedOrderDates),
		metric.WithAttributes(attribute.String("column", domain.ColumnOrderDate)))
	p.metrics.DatesUnparsed.Add(ctx, int64(stats.UnparsedDeliveries),
		metric.WithAttributes(attribute.String("column", domain.ColumnDeliveryDate)))
	if stats.ForwardFilled > 0 {
		p.metrics.DeliveriesFill.Add(ctx, int64(stats.ForwardFilled),
			metric.WithAttributes(attribute.String("method", "ffill")))
	}
}
