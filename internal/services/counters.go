package services

import (
	"fmt"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/data/repos"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// CounterPropagator derives counters from the entity store and pushes them
// into the tree cache. Counts are never read back from the cache.
type CounterPropagator interface {
	MenuCounters(dbc dbctx.Context, menuID string) (catalog.MenuCounters, error)
	SubmenuCounters(dbc dbctx.Context, submenuID string) (catalog.SubmenuCounters, error)
	RefreshMenu(dbc dbctx.Context, menuID string) error
	RefreshSubmenu(dbc dbctx.Context, menuID, submenuID string) error
}

type counterPropagator struct {
	counters repos.CounterRepo
	tree     *treecache.Tree
	log      *logger.Logger
}

func NewCounterPropagator(counters repos.CounterRepo, tree *treecache.Tree, baseLog *logger.Logger) CounterPropagator {
	return &counterPropagator{
		counters: counters,
		tree:     tree,
		log:      baseLog.With("service", "CounterPropagator"),
	}
}

func (p *counterPropagator) MenuCounters(dbc dbctx.Context, menuID string) (catalog.MenuCounters, error) {
	out := catalog.MenuCounters{MenuID: menuID}
	subs, err := p.counters.SubmenuCountByMenu(dbc, menuID)
	if err != nil {
		return out, aggregates.MapError("counters.menu", err)
	}
	dishes, err := p.counters.DishCountByMenu(dbc, menuID)
	if err != nil {
		return out, aggregates.MapError("counters.menu", err)
	}
	out.SubmenusCount = nonNegative(subs)
	out.DishesCount = nonNegative(dishes)
	return out, nil
}

func (p *counterPropagator) SubmenuCounters(dbc dbctx.Context, submenuID string) (catalog.SubmenuCounters, error) {
	out := catalog.SubmenuCounters{SubmenuID: submenuID}
	dishes, err := p.counters.DishCountBySubmenu(dbc, submenuID)
	if err != nil {
		return out, aggregates.MapError("counters.submenu", err)
	}
	out.DishesCount = nonNegative(dishes)
	return out, nil
}

func (p *counterPropagator) RefreshMenu(dbc dbctx.Context, menuID string) error {
	c, err := p.MenuCounters(dbc, menuID)
	if err != nil {
		return err
	}
	n, err := p.tree.SetMenuCounters(dbc.Ctx, c)
	if err != nil {
		return fmt.Errorf("write menu counters: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("menu %s not in tree cache", menuID)
	}
	return nil
}

func (p *counterPropagator) RefreshSubmenu(dbc dbctx.Context, menuID, submenuID string) error {
	c, err := p.SubmenuCounters(dbc, submenuID)
	if err != nil {
		return err
	}
	n, err := p.tree.SetSubmenuCounters(dbc.Ctx, menuID, c)
	if err != nil {
		return fmt.Errorf("write submenu counters: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("submenu %s/%s not in tree cache", menuID, submenuID)
	}
	return nil
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
