package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurekpi/internal/config"
)

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		ServiceName: "svc",
		Environment: "test",
		TraceFile:   "trace.json",
	})

	assert.Equal(t, "svc", cfg.ServiceName)
	assert.Equal(t, config.AppVersion, cfg.ServiceVersion)
	assert.True(t, cfg.EnableTracing)
	assert.False(t, cfg.EnableMetrics)
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(nil, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	// metrics off: writing is a no-op and creates nothing
	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, providers.WriteMetrics(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// instruments on the no-op meter are still usable
	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordStage(context.Background(), "load", 10, time.Millisecond)
}

func TestInitializeOTel_Tracing(t *testing.T) {
	var buf bytes.Buffer
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "procurekpi-test",
		ServiceVersion: "test",
		Environment:    "test",
		EnableTracing:  true,
		TraceWriter:    &buf,
	}, nil)
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "stage.clean")
	assert.True(t, span.IsRecording())
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "stage.clean")
	assert.Contains(t, out, "boom")
}

func TestInitializeOTel_TraceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "run.json")
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   "procurekpi-test",
		EnableTracing: true,
		TraceFile:     path,
	}, nil)
	require.NoError(t, err)

	_, span := providers.Tracer.Start(context.Background(), "stage.load")
	span.End()
	require.NoError(t, providers.Shutdown(context.Background()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "stage.load")
}

func TestPipelineMetrics_WriteTextfile(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   "procurekpi-test",
		EnableMetrics: true,
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordStage(ctx, "clean", 42, 5*time.Millisecond)
	metrics.RecordSinkWrite(ctx, "csv", nil)
	metrics.RecordSinkWrite(ctx, "xlsx", errors.New("disk full"))

	path := filepath.Join(t.TempDir(), "procurekpi.prom")
	require.NoError(t, providers.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(content)
	assert.Contains(t, out, "procurekpi_rows_processed")
	assert.Contains(t, out, "procurekpi_stage_duration")
	assert.Contains(t, out, `stage="clean"`)
	assert.Contains(t, out, `status="error"`)
}

func TestRecordError_NoSpan(t *testing.T) {
	// must not panic without an active span
	RecordError(context.Background(), errors.New("ignored"))

	var nilMetrics *PipelineMetrics
	nilMetrics.RecordStage(context.Background(), "x", 1, time.Second)
	nilMetrics.RecordSinkWrite(context.Background(), "x", nil)
}
