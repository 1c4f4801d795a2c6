// Command journey is the guest journey email automation CLI, intended to be
// run from cron once daily.
//
// Usage:
//
//	journey pre-arrival [--club streamsong] [--dry-run] [--date 2026-04-10]
//	journey post-play [--club streamsong] [--dry-run]
//	journey both [--dry-run]
//	journey preview pre-arrival
//	journey fix-tee-times [--dry-run]
//
// Exit status is non-zero when any email failed, so the scheduler alerts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jimbobirecode/streamsong-dashboard/internal/config"
	"github.com/jimbobirecode/streamsong-dashboard/internal/db"
	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
	"github.com/jimbobirecode/streamsong-dashboard/internal/mailer"
	"github.com/jimbobirecode/streamsong-dashboard/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "journey",
		Short:         "Streamsong guest journey email automation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(campaignCmd("pre-arrival", "Send pre-arrival welcome emails", journey.PreArrival))
	root.AddCommand(campaignCmd("post-play", "Send post-play thank you emails", journey.PostPlay))
	root.AddCommand(bothCmd())
	root.AddCommand(previewCmd())
	root.AddCommand(fixTeeTimesCmd())

	if err := root.Execute(); err != nil {
		logger.Error("journey failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// campaign commands
// --------------------------------------------------------------------------

type batchFlags struct {
	club   string
	dryRun bool
	date   string
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.club, "club", "", "Restrict to one club")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report what would be sent without sending")
	cmd.Flags().StringVar(&f.date, "date", "", "Evaluation date (YYYY-MM-DD), default today")
}

func (f *batchFlags) asOf() (time.Time, error) {
	if f.date == "" {
		return time.Now(), nil
	}
	return time.Parse(time.DateOnly, f.date)
}

func campaignCmd(use, short string, kind journey.Kind) *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatches(flags, kind)
		},
	}
	flags.register(cmd)
	return cmd
}

func bothCmd() *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "both",
		Short: "Run pre-arrival and post-play campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatches(flags, journey.PreArrival, journey.PostPlay)
		},
	}
	flags.register(cmd)
	return cmd
}

func runBatches(flags batchFlags, kinds ...journey.Kind) error {
	asOf, err := flags.asOf()
	if err != nil {
		return fmt.Errorf("parse --date: %w", err)
	}

	return withDeps(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
		// Configuration problems are fatal before any batch starts.
		if !flags.dryRun {
			if err := cfg.ValidateMail(kinds...); err != nil {
				return err
			}
		}

		engine := newEngine(cfg, pool)
		failed := 0
		for _, kind := range kinds {
			report, err := engine.ProcessBatch(ctx, kind, asOf, flags.club, flags.dryRun)
			if err != nil {
				return err
			}
			logger.Info("journey finished", "summary", report.Summary())
			for _, r := range report.Results {
				if r.Outcome == journey.OutcomeFailed {
					logger.Error("record failed", "booking_id", r.BookingID, "email", r.Email, "detail", r.Detail)
				}
			}
			failed += report.Failed
		}
		if failed > 0 {
			return fmt.Errorf("%d emails failed", failed)
		}
		return nil
	})
}

// --------------------------------------------------------------------------
// preview command
// --------------------------------------------------------------------------

func previewCmd() *cobra.Command {
	var flags batchFlags
	cmd := &cobra.Command{
		Use:   "preview <pre-arrival|post-play>",
		Short: "Print the template fields that would be sent, as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := journey.ParseKind(args[0])
			if err != nil {
				return err
			}
			asOf, err := flags.asOf()
			if err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
			return withDeps(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				engine := newEngine(cfg, pool)
				report, err := engine.ProcessBatch(ctx, kind, asOf, flags.club, true)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// --------------------------------------------------------------------------
// fix-tee-times command
// --------------------------------------------------------------------------

func fixTeeTimesCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "fix-tee-times",
		Short: "Backfill missing tee_time columns from note text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				bookings := store.New(pool.Pool, logger)
				start := time.Now()
				report, err := bookings.BackfillTeeTimes(ctx, dryRun)
				if err != nil {
					return err
				}
				logger.Info("tee time backfill finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", report.Summary())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract without writing")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func newEngine(cfg *config.Config, pool *db.Pool) *journey.Engine {
	sender := mailer.New(cfg.SendGridAPIKey, cfg.FromEmail, cfg.FromName, logger)
	bookings := store.New(pool.Pool, logger)
	return journey.NewEngine(bookings, sender, cfg.Campaigns(), logger)
}

// withDeps handles config loading, DB connection, and context cancellation.
func withDeps(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
