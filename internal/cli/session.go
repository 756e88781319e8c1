package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"procurekpi/internal/config"
	"procurekpi/internal/dataprocessing"
	"procurekpi/internal/infrastructure"
	"procurekpi/internal/validation"
)

// shutdownTimeout bounds how long telemetry flushing may take on exit
const shutdownTimeout = 5 * time.Second

// session is the wiring shared by every pipeline command
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	pipeline  *dataprocessing.Pipeline
}

// loadConfig reads the layered configuration and lets apply override it
// with command flags before validation.
func loadConfig(cmd *cobra.Command, apply func(cfg *config.Config) error) (*config.Config, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if apply != nil {
		if err := apply(cfg); err != nil {
			return nil, err
		}
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession sets up logging and telemetry, validates the input file and
// builds the pipeline.
func openSession(cfg *config.Config) (*session, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputFile(cfg.Input.Path); err != nil {
		return nil, err
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, err
	}

	pipeline, err := dataprocessing.NewPipeline(logger, dataprocessing.OptionsFromConfig(cfg), providers)
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, err
	}

	return &session{
		cfg:       cfg,
		logger:    logger,
		providers: providers,
		pipeline:  pipeline,
	}, nil
}

// close flushes metrics to the configured textfile and stops telemetry
func (s *session) close() error {
	metricsErr := s.providers.WriteMetrics(s.cfg.Telemetry.MetricsFile)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.providers.Shutdown(ctx); err != nil {
		s.logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		s.logger.Warn("Failed to close log file", slog.String("error", err.Error()))
	}

	return metricsErr
}
