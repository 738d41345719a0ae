package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/skywatchd/skywatch/api"
	"github.com/skywatchd/skywatch/config"
	"github.com/skywatchd/skywatch/di"
	"github.com/skywatchd/skywatch/directory"
	"github.com/skywatchd/skywatch/filter"
	"github.com/skywatchd/skywatch/metrics"
	"github.com/skywatchd/skywatch/pkg/log"
	"github.com/skywatchd/skywatch/sink"
	"github.com/skywatchd/skywatch/source"
	"github.com/skywatchd/skywatch/store"
	"github.com/skywatchd/skywatch/watcher"
)

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Run the skywatch watcher",
	Action: func(ctx context.Context, c *cli.Command) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		cfg, err := do.Invoke[*config.Config](di.SetupContainer(c.String("config")))
		if err != nil {
			return err
		}
		log.SetLevelFromString(cfg.LogLevel)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		registry, err := cfg.Registry()
		if err != nil {
			return err
		}

		initRegistry(ctx, cfg, registry)

		cursorStore, err := setupStore(ctx, cfg)
		if err != nil {
			return err
		}

		src, err := setupSource(cfg)
		if err != nil {
			return err
		}

		s, err := setupSink(ctx, cfg)
		if err != nil {
			return err
		}

		options := []watcher.Option{
			watcher.WithBatchSize(cfg.Watcher.BatchSize),
			watcher.WithFlushInterval(cfg.Watcher.FlushInterval.Std()),
			watcher.WithCheckpointInterval(cfg.Watcher.CheckpointInterval.Std()),
		}
		if cursorStore != nil {
			options = append(options, watcher.WithStore(cursorStore))
		}

		w := watcher.New(src, registry, []sink.Sink{s}, options...)

		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		log.Infof("watcher started with %d filters", registry.Len())

		servers := startServers(cfg, w)

		sig := <-sigChan
		log.Infof("received signal: %s", sig.String())

		if err := w.Stop(); err != nil {
			log.Errorf("failed to stop watcher: %v", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Errorf("failed to shut down %s: %v", srv.Addr, err)
			}
		}

		log.Infof("watcher stopped")
		return nil
	},
}

// initRegistry resolves configured handles to DIDs. Individual failures
// are logged and skipped, never fatal.
func initRegistry(ctx context.Context, cfg *config.Config, registry *filter.Registry) {
	var options []directory.HTTPResolverOption
	if cfg.Directory.BaseURL != "" {
		options = append(options, directory.WithBaseURL(cfg.Directory.BaseURL))
	}
	if cfg.Directory.Timeout > 0 {
		options = append(options, directory.WithTimeout(cfg.Directory.Timeout.Std()))
	}

	for _, failure := range registry.Init(ctx, directory.NewHTTPResolver(options...)) {
		log.Warnf("handle not resolved: %v", failure)
	}
}

func setupStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.CursorFile == "" {
		return nil, nil
	}

	st, err := store.NewFileStore(cfg.CursorFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open cursor store: %w", err)
	}

	if cfg.Source.Cursor == 0 {
		cursor, err := watcher.LoadCursor(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("failed to load cursor: %w", err)
		}
		if cursor > 0 {
			log.Infof("resuming from cursor %d", cursor)
			cfg.Source.Cursor = cursor
		}
	}
	return st, nil
}

func setupSource(cfg *config.Config) (source.Source, error) {
	log.Infof("setup source")
	return source.NewJetstreamSource(cfg.Source, log.NewLogger("source", os.Stdout)), nil
}

func setupSink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	log.Infof("setup sink: %s", cfg.Sink.Type)

	switch cfg.Sink.Type {
	case "console":
		return sink.NewConsoleSink(sink.WithColorOutput(!cfg.Sink.NoColor)), nil
	case "stdout":
		return sink.NewStdoutSink(cfg.Sink.PrettyPrint), nil
	case "postgres":
		return sink.NewPostgresSink(ctx, cfg.Sink.DSN)
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", cfg.Sink.Type)
	}
}

func startServers(cfg *config.Config, w *watcher.Watcher) []*http.Server {
	var servers []*http.Server

	if cfg.AdminAddress != "" {
		srv := &http.Server{
			Addr:    cfg.AdminAddress,
			Handler: api.NewServer(w).Router(),
		}
		servers = append(servers, srv)
		go func() {
			log.Infof("admin API listening on %s", cfg.AdminAddress)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("admin API server failed: %v", err)
			}
		}()
	}

	if cfg.MetricsAddress != "" {
		srv := &http.Server{
			Addr:    cfg.MetricsAddress,
			Handler: metrics.Handler(),
		}
		servers = append(servers, srv)
		go func() {
			log.Infof("metrics listening on %s", cfg.MetricsAddress)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server failed: %v", err)
			}
		}()
	}

	return servers
}
