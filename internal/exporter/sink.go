package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"procurekpi/internal/config"
	apperrors "procurekpi/internal/errors"
	"procurekpi/internal/infrastructure"
	"procurekpi/internal/storage"
	"procurekpi/pkg/contracts/domain"
)

// Sink renders or stores a finished report
type Sink interface {
	Name() string
	Write(ctx context.Context, report *domain.Report) error
}

// MultiSink writes a report to several sinks concurrently
type MultiSink struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewMultiSink creates a fan-out over sinks
func NewMultiSink(logger *slog.Logger, sinks ...Sink) *MultiSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSink{sinks: sinks, logger: infrastructure.WithComponent(logger, "exporter")}
}

// WithMetrics records one sink_writes sample per sink
func (m *MultiSink) WithMetrics(metrics *infrastructure.PipelineMetrics) *MultiSink {
	m.metrics = metrics
	return m
}

// Names lists the sink names in configuration order
func (m *MultiSink) Names() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return names
}

// Write sends report to every sink. All sinks run even if one fails; the
// returned error joins every failure.
func (m *MultiSink) Write(ctx context.Context, report *domain.Report) error {
	tracer := otel.Tracer(infrastructure.TracerName)

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	for _, sink := range m.sinks {
		g.Go(func() error {
			ctx, span := tracer.Start(ctx, "sink."+sink.Name(),
				trace.WithAttributes(attribute.String("sink", sink.Name())))
			defer span.End()

			start := time.Now()
			err := sink.Write(ctx, report)
			m.metrics.RecordSinkWrite(ctx, sink.Name(), err)

			if err != nil {
				infrastructure.RecordError(ctx, err)
				m.logger.ErrorContext(ctx, "Sink failed",
					slog.String("sink", sink.Name()),
					slog.String("error", err.Error()))

				mu.Lock()
				errs = append(errs, apperrors.NewExportError(sink.Name(), err))
				mu.Unlock()
				return nil
			}

			m.logger.DebugContext(ctx, "Sink written",
				slog.String("sink", sink.Name()),
				slog.Duration("duration", time.Since(start)))
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(errs...)
}

// Close closes every sink that holds resources
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// SinkDeps are what NewSinks needs to build the configured sinks
type SinkDeps struct {
	Config  *config.Config
	Paths   *config.Paths
	Console io.Writer
	Logger  *slog.Logger
}

// NewSinks builds the sinks named in cfg.Output.Sinks, in that order
func NewSinks(ctx context.Context, deps SinkDeps) (*MultiSink, error) {
	cfg := deps.Config
	var sinks []Sink

	closeAll := func() {
		NewMultiSink(deps.Logger, sinks...).Close()
	}

	for _, name := range cfg.Output.Sinks {
		switch name {
		case "console":
			sinks = append(sinks, NewConsoleSink(deps.Console, cfg.Output.HeadRows))
		case "csv":
			sinks = append(sinks, NewCSVSink(deps.Paths, cfg.Output.BOMPrefix))
		case "json":
			sinks = append(sinks, NewJSONSink(deps.Paths.ReportJSON))
		case "xlsx":
			sinks = append(sinks, NewXLSXSink(deps.Paths.ReportXLSX))
		case "sql":
			store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, deps.Logger)
			if err != nil {
				closeAll()
				return nil, err
			}
			sinks = append(sinks, storage.NewSink(store))
		default:
			closeAll()
			return nil, apperrors.NewConfigError(fmt.Sprintf("unknown sink %q", name), nil)
		}
	}

	return NewMultiSink(deps.Logger, sinks...), nil
}
