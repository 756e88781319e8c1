package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"procurekpi/internal/config"
	"procurekpi/internal/exporter"
	"procurekpi/internal/infrastructure"
	"procurekpi/internal/validation"
)

type ReportCmd struct{}

func NewReportCmd() *ReportCmd {
	return &ReportCmd{}
}

func (c *ReportCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full pipeline and write reports to every configured sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, func(cfg *config.Config) error {
				return applyReportFlags(cmd, cfg)
			})
			if err != nil {
				return err
			}

			s, err := openSession(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := s.close(); err != nil {
					s.logger.Error("Failed to write metrics", slog.String("error", err.Error()))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = infrastructure.WithRunID(ctx, infrastructure.GenerateRunID())

			return runReport(ctx, cmd, s)
		},
	}

	cmd.Flags().String("input", "", "procurement log to read (.csv, .tsv, .txt, .xlsx)")
	cmd.Flags().String("out", config.DefaultOutputDir, "directory for report files")
	cmd.Flags().StringSlice("sinks", []string{"console", "csv"}, "report sinks (console, csv, json, xlsx, sql)")
	cmd.Flags().String("fill-strategy", config.FillStrategyMedian, "missing delivery policy (median, ffill)")
	cmd.Flags().Int("top", config.DefaultTopN, "number of suppliers in the top savings tables")
	cmd.Flags().Int("head", config.DefaultHeadRows, "rows of each table printed to the console")
	cmd.Flags().String("db-driver", "sqlite", "SQL sink driver (sqlite, postgres)")
	cmd.Flags().String("db-dsn", "", "SQL sink data source name")
	cmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().String("trace-file", "", "write trace spans as JSON lines to this file")

	return cmd
}

// applyReportFlags overrides cfg with the flags that were set explicitly
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if err := applyInputFlag(cmd, cfg); err != nil {
		return err
	}
	if flags.Changed("out") {
		v, err := flags.GetString("out")
		if err != nil {
			return fmt.Errorf("failed to get out flag: %w", err)
		}
		cfg.Output.Dir = v
	}
	if flags.Changed("sinks") {
		v, err := flags.GetStringSlice("sinks")
		if err != nil {
			return fmt.Errorf("failed to get sinks flag: %w", err)
		}
		cfg.Output.Sinks = v
	}
	if flags.Changed("fill-strategy") {
		v, err := flags.GetString("fill-strategy")
		if err != nil {
			return fmt.Errorf("failed to get fill-strategy flag: %w", err)
		}
		cfg.Pipeline.FillStrategy = v
	}
	if flags.Changed("top") {
		v, err := flags.GetInt("top")
		if err != nil {
			return fmt.Errorf("failed to get top flag: %w", err)
		}
		cfg.Output.TopN = v
	}
	if err := applyHeadFlag(cmd, cfg); err != nil {
		return err
	}
	if flags.Changed("db-driver") {
		v, err := flags.GetString("db-driver")
		if err != nil {
			return fmt.Errorf("failed to get db-driver flag: %w", err)
		}
		cfg.Storage.Driver = v
	}
	if flags.Changed("db-dsn") {
		v, err := flags.GetString("db-dsn")
		if err != nil {
			return fmt.Errorf("failed to get db-dsn flag: %w", err)
		}
		cfg.Storage.DSN = v
	}
	if flags.Changed("metrics-file") {
		v, err := flags.GetString("metrics-file")
		if err != nil {
			return fmt.Errorf("failed to get metrics-file flag: %w", err)
		}
		cfg.Telemetry.MetricsFile = v
	}
	if flags.Changed("trace-file") {
		v, err := flags.GetString("trace-file")
		if err != nil {
			return fmt.Errorf("failed to get trace-file flag: %w", err)
		}
		cfg.Telemetry.TraceFile = v
	}

	return nil
}

func applyInputFlag(cmd *cobra.Command, cfg *config.Config) error {
	if !cmd.Flags().Changed("input") {
		return nil
	}
	v, err := cmd.Flags().GetString("input")
	if err != nil {
		return fmt.Errorf("failed to get input flag: %w", err)
	}
	cfg.Input.Path = v
	return nil
}

func applyHeadFlag(cmd *cobra.Command, cfg *config.Config) error {
	if !cmd.Flags().Changed("head") {
		return nil
	}
	v, err := cmd.Flags().GetInt("head")
	if err != nil {
		return fmt.Errorf("failed to get head flag: %w", err)
	}
	cfg.Output.HeadRows = v
	return nil
}

// runReport processes the input and fans the report out to the sinks
func runReport(ctx context.Context, cmd *cobra.Command, s *session) error {
	cfg := s.cfg

	if err := validation.NewFileValidator(s.logger).ValidateOutputDirectory(cfg.Output.Dir); err != nil {
		return err
	}
	paths, err := config.NewPaths(cfg.Output.Dir)
	if err != nil {
		return err
	}
	paths.LogPathResolution(s.logger)

	report, err := s.pipeline.Run(ctx, cfg.Input.Path)
	if err != nil {
		s.logger.ErrorContext(ctx, "Pipeline failed", slog.String("error", err.Error()))
		return err
	}

	sinks, err := exporter.NewSinks(ctx, exporter.SinkDeps{
		Config:  cfg,
		Paths:   paths,
		Console: cmd.OutOrStdout(),
		Logger:  s.logger,
	})
	if err != nil {
		return err
	}
	defer sinks.Close()

	metrics, err := infrastructure.CreatePipelineMetrics(s.providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create sink metrics: %w", err)
	}

	if err := sinks.WithMetrics(metrics).Write(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "Report export failed", slog.String("error", err.Error()))
		return err
	}

	s.logger.InfoContext(ctx, "Report complete",
		slog.String("source", report.Source),
		slog.Int("rows", report.Stats.RowsLoaded),
		slog.Any("sinks", sinks.Names()),
		slog.String("output_dir", paths.OutputDir))

	return nil
}
