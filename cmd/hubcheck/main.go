// Package main provides hubcheck, which loads a knowledge hub snapshot, reports
// records that break the catalog rules and optionally replays classification
// payloads through the ingest pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/aiknowledgehub/hub-server/internal/bus"
	"github.com/aiknowledgehub/hub-server/internal/config"
	"github.com/aiknowledgehub/hub-server/internal/di"
	"github.com/aiknowledgehub/hub-server/internal/di/providers"
	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/logger"
	"github.com/aiknowledgehub/hub-server/internal/snapshot"
	"github.com/aiknowledgehub/hub-server/internal/watcher"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// shutdown stops every service in the container. The report is returned as
// the error only when some service failed to stop.
func shutdown(injector *do.RootScope) error {
	report := injector.Shutdown()
	if report == nil || len(report.Errors) == 0 {
		return nil
	}
	return report
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitUsage
	}

	injector := di.NewContainer(cfg)
	defer func() {
		if err := shutdown(injector); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		return exitUsage
	}

	log := do.MustInvoke[*logger.Logger](injector)

	if cfg.Snapshot.Path == "" && cfg.Ingest.Path == "" {
		log.Error("Nothing to check: set -snapshot or -ingest")
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &checker{
		cfg:    cfg,
		log:    log,
		loader: do.MustInvoke[*snapshot.Loader](injector),
		bus:    do.MustInvoke[*providers.BusHandle](injector).Bus,
	}

	valid := c.check(ctx)
	if !cfg.Snapshot.Watch {
		if !valid {
			return exitInvalid
		}
		return exitOK
	}

	w, err := do.Invoke[*providers.SnapshotWatcherHandle](injector)
	if err != nil {
		log.Error("Failed to watch snapshot", "error", err)
		return exitUsage
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopped watching snapshot")
			return exitOK
		case ev := <-w.Events():
			if ev.Type == watcher.EventRemoved {
				log.Warn("Snapshot removed, waiting for it to come back", "path", ev.Path)
				continue
			}
			log.Info("Snapshot changed", "path", ev.Path, "size", ev.Size, "mod_time", ev.ModTime)
			c.check(ctx)
		}
	}
}

type checker struct {
	cfg    *config.Config
	log    *logger.Logger
	loader *snapshot.Loader
	bus    *bus.Bus
}

// check loads the snapshot and replays payloads, logging every problem.
// It reports whether everything passed.
func (c *checker) check(ctx context.Context) bool {
	valid := true

	if c.cfg.Snapshot.Path != "" {
		res, err := c.loader.LoadFile(ctx, c.cfg.Snapshot.Path, snapshot.Options{DryRun: c.cfg.Snapshot.DryRun})
		if err != nil {
			c.log.Error("Failed to load snapshot", "path", c.cfg.Snapshot.Path, "error", err)
			return false
		}
		c.reportProblems(res.Problems)
		c.log.Info("Snapshot checked",
			"path", c.cfg.Snapshot.Path,
			"valid", res.Valid(),
			"checked_tools", res.Checked.Tools,
			"checked_playlists", res.Checked.Playlists,
			"checked_users", res.Checked.Users,
			"checked_youtube_content", res.Checked.YouTubeContent,
			"problems", len(res.Problems),
			"duration", res.Duration,
		)
		valid = res.Valid()
	}

	if c.cfg.Ingest.Path != "" {
		ok, err := c.replay(ctx)
		if err != nil {
			c.log.Error("Failed to replay payloads", "path", c.cfg.Ingest.Path, "error", err)
			return false
		}
		valid = valid && ok
	}

	return valid
}

func (c *checker) replay(ctx context.Context) (bool, error) {
	payloads, err := snapshot.ReadPayloads(c.cfg.Ingest.Path)
	if err != nil {
		return false, err
	}

	sub := c.bus.Subscribe(len(payloads)+1, bus.Names(domain.EventYouTubeContentAnalyzed))
	defer sub.Close()

	res, err := c.loader.Replay(ctx, payloads)
	if err != nil {
		return false, err
	}
	c.reportProblems(res.Problems)

	analyzed := 0
	highConfidence := 0
drain:
	for {
		select {
		case ev := <-sub.Events:
			analyzed++
			if a, ok := ev.(domain.YouTubeContentAnalyzed); ok && a.HasHighConfidence() {
				highConfidence++
			}
		default:
			break drain
		}
	}

	c.log.Info("Payloads replayed",
		"path", c.cfg.Ingest.Path,
		"created", res.Created,
		"reclassified", res.Reclassified,
		"rejected", len(res.Problems),
		"analyzed_events", analyzed,
		"high_confidence", highConfidence,
	)
	return len(res.Problems) == 0, nil
}

func (c *checker) reportProblems(problems []snapshot.Problem) {
	for _, p := range problems {
		c.log.Error("Invalid record",
			"entity_type", p.EntityType,
			"entity_id", p.EntityID,
			"index", p.Index,
			"kind", p.Kind,
			"error", p.Error,
		)
	}
}
