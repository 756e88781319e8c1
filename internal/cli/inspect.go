package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"procurekpi/internal/config"
	"procurekpi/internal/exporter"
	"procurekpi/internal/infrastructure"
)

type InspectCmd struct{}

func NewInspectCmd() *InspectCmd {
	return &InspectCmd{}
}

// Command prints the profile of a cleaned log without writing any files
func (c *InspectCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the head, missing value counts and summary statistics of a log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, func(cfg *config.Config) error {
				if err := applyInputFlag(cmd, cfg); err != nil {
					return err
				}
				return applyHeadFlag(cmd, cfg)
			})
			if err != nil {
				return err
			}

			s, err := openSession(cfg)
			if err != nil {
				return err
			}
			defer s.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = infrastructure.WithRunID(ctx, infrastructure.GenerateRunID())

			report, err := s.pipeline.Run(ctx, cfg.Input.Path)
			if err != nil {
				return err
			}

			return exporter.PrintProfile(cmd.OutOrStdout(), report, cfg.Output.HeadRows)
		},
	}

	cmd.Flags().String("input", "", "procurement log to read (.csv, .tsv, .txt, .xlsx)")
	cmd.Flags().Int("head", config.DefaultHeadRows, "rows of the cleaned table to print")

	return cmd
}
