package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/poller"
	"github.com/amishk599/jobradar/internal/scheduler"
	"github.com/amishk599/jobradar/internal/store"
)

var (
	watchOnce   bool
	watchDryRun bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run saved searches on an interval and notify on new postings",
	Long:  "Starts the scheduler over watch.searches; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "poll every saved search once and exit")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "do not read or write the seen store")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Watch.Searches) == 0 {
		return fmt.Errorf("no saved searches configured under watch.searches")
	}

	logger.Info("config loaded",
		"interval", cfg.Watch.Interval.String(),
		"searches", len(cfg.Watch.Searches),
		"providers", len(cfg.Search.Providers),
		"notifier", cfg.Notification.Type,
	)

	var seen model.SeenStore
	var recorder poller.RunRecorder
	if watchDryRun {
		nop := store.NewNopStore()
		seen, recorder = nop, nop
	} else {
		sqlStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		seen, recorder = sqlStore, sqlStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := newHTTPClient()
	p, err := buildPipeline(ctx, cfg, httpClient, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	n := setupNotifier(cfg, httpClient, logger)
	pollers := make([]*poller.SearchPoller, 0, len(cfg.Watch.Searches))
	for _, ws := range cfg.Watch.Searches {
		pollers = append(pollers, poller.NewSearchPoller(
			ws.Name, ws.Request, p.searcher, seen, n, logger,
			poller.WithRecorder(recorder),
			poller.WithMinScore(ws.MinScore),
		))
	}

	if watchOnce {
		var failed int
		for _, pl := range pollers {
			if err := pl.Poll(ctx); err != nil {
				logger.Error("poll failed", "search", pl.Name, "error", err)
				failed++
			}
		}
		if failed == len(pollers) {
			return fmt.Errorf("all %d saved searches failed", failed)
		}
		return nil
	}

	sched := scheduler.NewScheduler(pollers, cfg.Watch.Interval, cfg.Watch.MinDelay, seen, logger)
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	logger.Info("goodbye")
	return nil
}
