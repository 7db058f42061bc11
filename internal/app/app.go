package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	storedb "github.com/yungbote/menusync-backend/internal/data/db"
	"github.com/yungbote/menusync-backend/internal/feed"
	"github.com/yungbote/menusync-backend/internal/http"
	httpH "github.com/yungbote/menusync-backend/internal/http/handlers"
	"github.com/yungbote/menusync-backend/internal/jobs/reconcile"
	"github.com/yungbote/menusync-backend/internal/observability"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
	"github.com/yungbote/menusync-backend/internal/services"
	"github.com/yungbote/menusync-backend/internal/temporalx"
	"github.com/yungbote/menusync-backend/internal/temporalx/reconcilewf"
	"github.com/yungbote/menusync-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Store    *storedb.Service
	Clients  Clients
	Tree     *treecache.Tree
	Repos    Repos
	Services Services
	// Runner is nil when no feed is configured.
	Runner   *reconcile.Runner
	Temporal *temporalworker.Runner
	Server   *http.Server

	temporalCfg  temporalx.Config
	shutdownOTel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Configuration loaded",
		"db_driver", cfg.DBDriver,
		"cache_driver", cfg.CacheDriver,
		"reconcile_driver", cfg.ReconcileDriver,
		"feed", cfg.FeedURL,
	)

	a := &App{Log: log, Cfg: cfg, temporalCfg: temporalx.LoadConfig()}
	a.shutdownOTel = observability.InitOTel(ctx, log,
		observability.OtelConfigFromEnv(cfg.ServiceName, cfg.Environment, cfg.Version))

	store, err := storedb.NewService(storedb.Config{Driver: cfg.DBDriver, DSN: cfg.DSN}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init entity store: %w", err)
	}
	a.Store = store
	if err := storedb.AutoMigrateAll(store.DB()); err != nil {
		a.Close()
		return nil, fmt.Errorf("entity store automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg, a.temporalCfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients
	a.Tree = treecache.NewTree(clients.treeDocument(cfg, log), log)

	a.Repos = wireRepos(store.DB(), log)
	a.Services = wireServices(store.DB(), log, cfg, a.Repos, clients, a.Tree)

	var runner httpH.ReconcileRunner
	if cfg.FeedEnabled() {
		a.Runner = reconcile.NewRunner(reconcile.Config{
			Interval:     cfg.ReconcileInterval,
			RetryDelay:   cfg.ReconcileRetryDelay,
			InitialDelay: cfg.ReconcileInitialDelay,
		}, a.Services.Reconcile, log)
		runner = a.Runner
	}

	if clients.Temporal != nil {
		tw, err := temporalworker.NewRunner(log, a.temporalCfg, clients.Temporal, runOnce{a.Runner}, reconcilewf.Input{
			Interval:         cfg.ReconcileInterval,
			RetryDelay:       cfg.ReconcileRetryDelay,
			RunsPerExecution: cfg.ReconcileRunsPerExec,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Temporal = tw
	}

	a.Server = wireServer(log, cfg, wireHandlers(log, a.Services, runner))
	return a, nil
}

// runOnce routes workflow activities through the in-process runner so they
// never overlap admin-triggered runs and show up in its status.
type runOnce struct{ r *reconcile.Runner }

func (o runOnce) Run(ctx context.Context) (*services.ReconcileReport, error) {
	return o.r.RunOnce(ctx)
}

// Bootstrap makes sure the cache document exists and matches the store.
func (a *App) Bootstrap(ctx context.Context) error {
	res, err := a.Services.Catalog.Bootstrap(ctx)
	if err != nil {
		return err
	}
	a.Log.Info("Tree cache seeded", "menus", res.Menus, "submenus", res.Submenus, "dishes", res.Dishes)
	return nil
}

// Start launches the reconciliation driver selected by RECONCILE_DRIVER and
// the optional feed file watcher. Everything stops when ctx is done.
func (a *App) Start(ctx context.Context) error {
	if a.Runner == nil {
		a.Log.Info("No feed configured; reconciliation disabled")
		return nil
	}

	trigger := func() { a.Runner.Trigger() }
	switch a.Cfg.ReconcileDriver {
	case ReconcileTicker:
		a.Runner.Start(ctx)
	case ReconcileTemporal:
		if err := a.Temporal.Start(ctx); err != nil {
			return fmt.Errorf("start temporal worker: %w", err)
		}
		trigger = func() {
			if err := a.Temporal.Trigger(ctx); err != nil {
				a.Log.Warn("Signal reconciliation workflow failed", "error", err)
			}
		}
	case ReconcileOff:
		a.Log.Info("Scheduled reconciliation is off; admin runs only")
		return nil
	}

	if !a.Cfg.FeedWatch {
		return nil
	}
	path := feed.LocalSource(a.Cfg.FeedURL)
	if path == "" {
		a.Log.Warn("FEED_WATCH ignored for a remote feed", "feed", a.Cfg.FeedURL)
		return nil
	}
	w, err := reconcile.NewWatcher(path, reconcile.DefaultDebounce, trigger, a.Log)
	if err != nil {
		return fmt.Errorf("watch feed: %w", err)
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Log.Error("Feed watcher stopped", "error", err)
		}
	}()
	return nil
}

// Serve seeds the cache, starts background work and serves HTTP until ctx
// is done.
func (a *App) Serve(ctx context.Context) error {
	if err := a.Bootstrap(ctx); err != nil {
		a.Log.Warn("Startup reseed failed; cache stays stale until the next reseed", "error", err)
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.Log.Info("Server listening", "address", a.Cfg.Address())
	return a.Server.Run(ctx, a.Cfg.Address(), a.Cfg.ShutdownTimeout)
}

// ReconcileOnce runs a single reconciliation pass in the foreground.
func (a *App) ReconcileOnce(ctx context.Context) (*services.ReconcileReport, error) {
	if a.Runner == nil {
		return nil, fmt.Errorf("FEED_URL is not configured")
	}
	if err := a.Tree.Init(ctx); err != nil {
		return nil, fmt.Errorf("init tree cache: %w", err)
	}
	return a.Runner.RunOnce(ctx)
}

func (a *App) Reseed(ctx context.Context) (services.ReseedResult, error) {
	if err := a.Tree.Init(ctx); err != nil {
		return services.ReseedResult{}, fmt.Errorf("init tree cache: %w", err)
	}
	return a.Services.Catalog.Reseed(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("Close entity store", "error", err)
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(context.Background()); err != nil {
			a.Log.Warn("Shutdown tracing", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
