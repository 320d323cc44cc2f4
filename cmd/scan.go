package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/config"
	"github.com/xkilldash9x/mediagrab-cli/internal/dom"
	"github.com/xkilldash9x/mediagrab-cli/internal/engine"
	"github.com/xkilldash9x/mediagrab-cli/internal/observability"
	"github.com/xkilldash9x/mediagrab-cli/internal/probe"
	"github.com/xkilldash9x/mediagrab-cli/internal/store"
)

// newScanCmd creates and configures the `scan` command.
func newScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan <url|file>",
		Short: "Scans a page for media resources and emits a deduplicated snapshot",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to viper keys so they override config file and env
			// values with the right precedence.
			if err := viper.BindPFlag("probe.enabled", cmd.Flags().Lookup("probe-sizes")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := appCfg

			// Re-apply flag overrides bound in PreRunE.
			cfg.SetProbeEnabled(viper.GetBool("probe.enabled"))
			cfg.SetBrowserHeadless(viper.GetBool("browser.headless"))

			fromFile, _ := cmd.Flags().GetBool("from-file")
			asJSON, _ := cmd.Flags().GetBool("json")
			persist, _ := cmd.Flags().GetBool("persist")
			watch, _ := cmd.Flags().GetBool("watch")
			interval, _ := cmd.Flags().GetDuration("interval")

			querier, target, err := buildQuerier(cfg, logger, args[0], fromFile)
			if err != nil {
				return err
			}

			consumer, cleanup, err := buildConsumer(ctx, cfg, logger, asJSON, persist)
			if err != nil {
				return err
			}
			defer cleanup()

			eng, err := engine.New(engine.Options{
				Config:   cfg,
				Logger:   logger,
				Querier:  querier,
				Consumer: consumer,
				Prober:   probe.New(cfg, logger),
			})
			if err != nil {
				return err
			}
			defer eng.Close()

			if watch {
				return watchLoop(ctx, eng, logger, target, interval)
			}

			snap, err := eng.RunOnce(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return fmt.Errorf("scan aborted by user signal")
				}
				return err
			}
			logger.Info("scan complete",
				zap.String("target", target),
				zap.Int("candidates", len(snap.Records)))
			return nil
		},
	}

	scanCmd.Flags().Bool("from-file", false, "Treat the target as a local HTML file and scan it statically.")
	scanCmd.Flags().Bool("json", false, "Emit snapshots as JSON instead of a table.")
	scanCmd.Flags().Bool("probe-sizes", true, "Resolve candidate file sizes with header-only requests.")
	scanCmd.Flags().Bool("headless", true, "Run the browser headless. (Live scans only)")
	scanCmd.Flags().Bool("persist", false, "Persist emitted snapshots to PostgreSQL (MEDIAGRAB_DATABASE_URL).")
	scanCmd.Flags().BoolP("watch", "w", false, "Keep scanning, re-checking the page on an interval.")
	scanCmd.Flags().Duration("interval", 10*time.Second, "Re-check interval in watch mode.")

	return scanCmd
}

// buildQuerier picks the DOM provider: a static parse for local files, a
// headless browser for everything else.
func buildQuerier(cfg *config.Config, logger *zap.Logger, target string, fromFile bool) (schemas.DOMQuerier, string, error) {
	if fromFile {
		f, err := os.Open(target)
		if err != nil {
			return nil, "", fmt.Errorf("open document: %w", err)
		}
		defer f.Close()
		q, err := dom.NewStaticQuerier(logger, f)
		if err != nil {
			return nil, "", err
		}
		return q, target, nil
	}

	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}
	return dom.NewLiveQuerier(cfg, logger, target), target, nil
}

// buildConsumer assembles the snapshot sinks: always a printer, plus the
// database when requested.
func buildConsumer(ctx context.Context, cfg *config.Config, logger *zap.Logger, asJSON, persist bool) (schemas.SnapshotConsumer, func(), error) {
	printer := newPrinter(os.Stdout, asJSON)
	if !persist {
		return printer, func() {}, nil
	}

	dbURL := cfg.Database().URL
	if dbURL == "" {
		return nil, nil, fmt.Errorf("database URL is not configured (MEDIAGRAB_DATABASE_URL)")
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sink, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return newFanout(printer, sink), pool.Close, nil
}

// watchLoop keeps feeding mutation signals to the engine until the context
// ends. The gate decides which of them become real scans.
func watchLoop(ctx context.Context, eng *engine.Engine, logger *zap.Logger, target string, interval time.Duration) error {
	logger.Info("watching target",
		zap.String("target", target),
		zap.Duration("interval", interval))

	if err := eng.Scan(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case <-ticker.C:
			if err := eng.HandleMutation(ctx); err != nil {
				logger.Warn("scan pass failed", zap.Error(err))
			}
		}
	}
}
