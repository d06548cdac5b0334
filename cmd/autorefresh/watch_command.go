package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"autorefresh/internal/api"
	"autorefresh/internal/config"
	"autorefresh/internal/console"
	"autorefresh/internal/event"
	"autorefresh/internal/logging"
	"autorefresh/internal/metrics"
	"autorefresh/internal/process"
	"autorefresh/internal/resource"
	"autorefresh/internal/version"
	"autorefresh/internal/watcher"
)

const (
	shutdownTimeout      = 5 * time.Second
	documentDebounce     = 200 * time.Millisecond
	eventHistorySize     = 64
	eventSubscriberLimit = 32
)

// watchApp is everything runWatch wires together for one session.
type watchApp struct {
	cfg      Config
	logger   *logging.Logger
	metrics  *metrics.Registry
	bus      *event.Bus[event.WatchEvent]
	catalog  *resource.Catalog
	loop     *watcher.EventLoop
	interval *config.Interval
	session  *watcher.Session
	guard    *watcher.LifecycleGuard
	launcher *process.Launcher
	document *watcher.DocumentWatcher
	server   *http.Server
	listener net.Listener
}

func runWatch(args []string, in io.Reader, out, errOut io.Writer) int {
	cfg, err := loadConfig(args, "autorefresh")
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(errOut, err)
		return 1
	}
	if cfg.ShowVersion {
		fmt.Fprintln(out, version.GetVersionInfo().Line("autorefresh"))
		return 0
	}

	logger := logging.NewLoggerWithOutput(logging.NewLogBuffer(logging.DefaultBufferSize), logLevelFor(cfg), errOut)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopSignals := make(chan os.Signal, 1)
	signal.Notify(stopSignals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stopSignals)
	stopWatching := watchShutdownSignals(logger, cancel, stopSignals)
	defer stopWatching()

	app, err := buildWatchApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", map[string]string{logging.FieldError: err.Error()})
		return 1
	}
	coordinator := app.shutdownCoordinator()

	if err := app.start(ctx); err != nil {
		logger.Error("startup failed", map[string]string{logging.FieldError: err.Error()})
		_ = coordinator.Run(context.Background())
		return 1
	}

	repl, err := console.New(console.Options{
		Session:       app.session,
		Runner:        app.loop,
		Guard:         app.guard,
		Catalog:       app.catalog,
		Editor:        app.launcher,
		EditorCommand: cfg.Settings.Editor.Command,
		Interval:      app.interval,
		Metrics:       app.metrics,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("console unavailable", map[string]string{logging.FieldError: err.Error()})
		_ = coordinator.Run(context.Background())
		return 1
	}

	consoleErr := make(chan error, 1)
	go func() {
		consoleErr <- repl.Run(ctx, in, out)
		cancel()
	}()

	<-ctx.Done()
	exitCode := 0
	select {
	case err := <-consoleErr:
		if err != nil {
			logger.Warn("console stopped", map[string]string{logging.FieldError: err.Error()})
			exitCode = 1
		}
	default:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := coordinator.Run(shutdownCtx); err != nil {
		exitCode = 1
	}
	return exitCode
}

func buildWatchApp(ctx context.Context, cfg Config, logger *logging.Logger) (*watchApp, error) {
	registry := &metrics.Registry{}
	bus := event.NewBus[event.WatchEvent](ctx, event.BusOptions{
		Name:           "watch_events",
		HistorySize:    eventHistorySize,
		MaxSubscribers: eventSubscriberLimit,
		Registry:       registry,
	})

	catalog := resource.NewCatalog(resource.CatalogOptions{
		Logger:  logger,
		Metrics: registry,
		Events:  bus,
	})
	manifestPath := cfg.Settings.Project.Manifest
	manifestLoaded := false
	if err := catalog.LoadManifest(manifestPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			bus.Close()
			return nil, err
		}
		logger.Warn("manifest not found; no resources to watch", map[string]string{logging.FieldPath: manifestPath})
	} else {
		manifestLoaded = true
		logger.Info("manifest loaded", map[string]string{
			logging.FieldPath: catalog.ManifestPath(),
			"resources":       strconv.Itoa(len(catalog.Resources())),
		})
	}

	loop := watcher.NewEventLoop(logger)
	interval := config.NewInterval(cfg.Settings.Monitor.RefreshInterval)
	session, err := watcher.NewSession(watcher.SessionOptions{
		Enumerator: catalog,
		Sink:       catalog,
		Interval:   interval,
		Dispatcher: loop,
		Logger:     logger,
		Metrics:    registry,
		Events:     bus,
	})
	if err != nil {
		loop.Close()
		bus.Close()
		return nil, err
	}

	app := &watchApp{
		cfg:      cfg,
		logger:   logger,
		metrics:  registry,
		bus:      bus,
		catalog:  catalog,
		loop:     loop,
		interval: interval,
		session:  session,
		guard:    watcher.NewLifecycleGuard(session, logger),
		launcher: process.NewLauncher(process.LauncherOptions{Logger: logger, Metrics: registry, Events: bus}),
	}
	if manifestLoaded && cfg.Settings.Project.WatchDocument {
		app.document, err = watcher.WatchDocument(catalog.ManifestPath(), documentDebounce, func() {
			loop.Post(app.guard.DocumentLoaded)
		}, logger)
		if err != nil {
			logger.Warn("document watch unavailable", map[string]string{
				logging.FieldPath:  filepath.Clean(catalog.ManifestPath()),
				logging.FieldError: err.Error(),
			})
		}
	}
	return app, nil
}

func (app *watchApp) start(ctx context.Context) error {
	if addr := app.cfg.Settings.Events.Addr; addr != "" {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		app.listener = listener
		app.server = &http.Server{
			Handler: api.NewHandler(api.RouteOptions{
				Bus:       app.bus,
				Resources: app.catalog,
				Metrics:   app.metrics,
				Logger:    app.logger,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := app.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.logger.Error("events server stopped", map[string]string{logging.FieldError: err.Error()})
			}
		}()
		app.logger.Info("events server listening", map[string]string{"addr": listener.Addr().String()})
	}

	if app.cfg.Settings.Monitor.AutoEnable {
		var enableErr error
		if err := app.loop.Do(func() { enableErr = app.session.Enable() }); err != nil {
			return err
		}
		if enableErr != nil {
			app.logger.Warn("auto-enable failed", map[string]string{logging.FieldError: enableErr.Error()})
		}
	}
	return nil
}

func (app *watchApp) shutdownCoordinator() *shutdownCoordinator {
	coordinator := newShutdownCoordinator(app.logger)
	coordinator.Add("events server", func(ctx context.Context) error {
		if app.server == nil {
			return nil
		}
		return app.server.Shutdown(ctx)
	})
	coordinator.Add("document watcher", func(context.Context) error {
		if app.document == nil {
			return nil
		}
		return app.document.Close()
	})
	coordinator.Add("session", func(context.Context) error {
		err := app.loop.Do(app.session.Close)
		if errors.Is(err, watcher.ErrLoopClosed) {
			return nil
		}
		return err
	})
	coordinator.Add("event loop", func(context.Context) error {
		app.loop.Close()
		return nil
	})
	coordinator.Add("event bus", func(context.Context) error {
		app.bus.Close()
		return nil
	})
	return coordinator
}
