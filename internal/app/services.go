package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/feed"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
	"github.com/yungbote/menusync-backend/internal/services"
)

type Services struct {
	Counters  services.CounterPropagator
	Builder   services.TreeBuilder
	Catalog   services.CatalogService
	Menu      services.MenuSyncService
	Submenu   services.SubmenuSyncService
	Dish      services.DishSyncService
	Reconcile services.ReconcileService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients, tree *treecache.Tree) Services {
	log.Info("Wiring services...")
	tx := aggregates.NewGormTxRunner(db)

	counters := services.NewCounterPropagator(r.Counters, tree, log)
	builder := services.NewTreeBuilder(r.Tree, log)
	catalogSvc := services.NewCatalogService(log, builder, tree)

	var fetcher feed.Fetcher
	if cfg.FeedEnabled() {
		fetcher = feed.NewFetcher(feed.Config{
			Location:  cfg.FeedURL,
			LocalPath: cfg.FeedLocalPath,
			Timeout:   cfg.FeedTimeout,
		}, clients.Bucket, log)
	}

	return Services{
		Counters:  counters,
		Builder:   builder,
		Catalog:   catalogSvc,
		Menu:      services.NewMenuSyncService(log, tx, r.Menu, tree, counters),
		Submenu:   services.NewSubmenuSyncService(log, tx, r.Menu, r.Submenu, tree, counters),
		Dish:      services.NewDishSyncService(log, tx, r.Submenu, r.Dish, tree, counters),
		Reconcile: services.NewReconcileService(log, tx, r.Menu, r.Submenu, r.Dish, catalogSvc, fetcher),
	}
}
