package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finance-tracker/ledger/config"
	"github.com/finance-tracker/ledger/internal/application/usecase/recurrence"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
	"github.com/finance-tracker/ledger/internal/infra/db"
	"github.com/finance-tracker/ledger/internal/infra/dependency"
	"github.com/finance-tracker/ledger/internal/infra/logging"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "processor",
		Short: "Generate due recurring transactions",
		Long: `Generate due recurring transactions outside the API server.

Examples:
  processor run                                  # Process everything due today
  processor run --now 2024-03-31                 # Process as of an earlier day
  processor run --dashboard <uuid>               # Restrict to one dashboard
  processor schedule --frequency monthly --start 2024-01-31 --count 4
`,
		SilenceUsage: true,
	}

	cmd.AddCommand(runCmd())
	cmd.AddCommand(scheduleCmd())

	return cmd
}

func runCmd() *cobra.Command {
	var (
		now        string
		dashboard  string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Perform one processing pass and print the outcome as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := recurrence.ProcessDueInput{}
			if now != "" {
				day, err := valueobject.ParseDate(now)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				input.Now = &day
			}
			if dashboard != "" {
				id, err := uuid.Parse(dashboard)
				if err != nil {
					return fmt.Errorf("invalid --dashboard: %w", err)
				}
				input.DashboardID = &id
			}

			if configFile == "" {
				configFile = os.Getenv("CONFIG_FILE")
			}
			cfg, err := config.LoadFile(configFile)
			if err != nil {
				return err
			}
			// The one-shot run never starts the background scheduler.
			cfg.Processor.Enabled = false

			logging.Setup(cfg.Log.Level, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cfg.Processor.RunTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Processor.RunTimeout)
				defer cancel()
			}

			return runOnce(ctx, cmd, cfg, input)
		},
	}

	cmd.Flags().StringVar(&now, "now", "", "Processing day (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&dashboard, "dashboard", "", "Only process definitions of this dashboard")
	cmd.Flags().StringVar(&configFile, "config", "", "YAML configuration file (defaults to $CONFIG_FILE)")

	return cmd
}

func runOnce(ctx context.Context, cmd *cobra.Command, cfg *config.Config, input recurrence.ProcessDueInput) error {
	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.AutoMigrate(model.All()...); err != nil {
		return err
	}

	injector, err := dependency.NewInjector(ctx, cfg, database.DB(), dependency.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if err := injector.Close(); err != nil {
			slog.Error("Failed to close redis connection", "error", err)
		}
	}()

	output, runErr := injector.Processor.Execute(ctx, input)
	if output != nil {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(dto.ToProcessRecurrencesResponse(output)); err != nil {
			return fmt.Errorf("failed to write run summary: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if output.Failed > 0 {
		return fmt.Errorf("%d definition(s) failed", output.Failed)
	}
	return nil
}

func scheduleCmd() *cobra.Command {
	var (
		frequency string
		interval  int
		start     string
		count     int
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the upcoming occurrence dates of a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			freq, err := valueobject.ParseFrequency(frequency)
			if err != nil {
				return err
			}
			anchor, err := valueobject.ParseDate(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}

			dates, err := valueobject.Schedule(valueobject.Step{Frequency: freq, Interval: interval}, anchor, count)
			if err != nil {
				return err
			}

			for i, date := range dates {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s  %s\n", i+1, date.Format(valueobject.DateLayout), date.Weekday().String()[:3])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&frequency, "frequency", string(valueobject.FrequencyMonthly), "Period name such as weekly, monthly or yearly")
	cmd.Flags().IntVar(&interval, "interval", 1, "Periods between occurrences")
	cmd.Flags().StringVar(&start, "start", valueobject.Today(time.Now()).Format(valueobject.DateLayout), "First occurrence (YYYY-MM-DD)")
	cmd.Flags().IntVar(&count, "count", 12, "Number of occurrences to print")

	return cmd
}
