package services

import (
	"context"
	"encoding/json"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/data/repos"
	"github.com/yungbote/menusync-backend/internal/data/repos/testutil"
	"github.com/yungbote/menusync-backend/internal/feed"
)

// harness wires the services over a fresh store and an in-process tree.
type harness struct {
	db   *gorm.DB
	doc  *faultyDocument
	tree *treecache.Tree

	menuRepo    repos.MenuRepo
	submenuRepo repos.SubmenuRepo
	dishRepo    repos.DishRepo

	counters CounterPropagator
	menus    MenuSyncService
	submenus SubmenuSyncService
	dishes   DishSyncService
	catalog  CatalogService
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithRunner(t, nil)
}

// newHarnessWithRunner wraps the real transaction runner when wrap is set.
func newHarnessWithRunner(t *testing.T, wrap func(aggregates.TxRunner) aggregates.TxRunner) *harness {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)

	h := &harness{
		db:          db,
		doc:         &faultyDocument{Document: treecache.NewMemoryDocument()},
		menuRepo:    repos.NewMenuRepo(db, log),
		submenuRepo: repos.NewSubmenuRepo(db, log),
		dishRepo:    repos.NewDishRepo(db, log),
	}
	h.tree = treecache.NewTree(h.doc, log)
	if err := h.tree.Init(context.Background()); err != nil {
		t.Fatalf("init tree: %v", err)
	}

	var tx aggregates.TxRunner = aggregates.NewGormTxRunner(db)
	if wrap != nil {
		tx = wrap(tx)
	}
	counterRepo := repos.NewCounterRepo(db, log)
	h.counters = NewCounterPropagator(counterRepo, h.tree, log)
	h.menus = NewMenuSyncService(log, tx, h.menuRepo, h.tree, h.counters)
	h.submenus = NewSubmenuSyncService(log, tx, h.menuRepo, h.submenuRepo, h.tree, h.counters)
	h.dishes = NewDishSyncService(log, tx, h.submenuRepo, h.dishRepo, h.tree, h.counters)
	h.catalog = NewCatalogService(log, NewTreeBuilder(repos.NewTreeRepo(db, log), log), h.tree)
	return h
}

func (h *harness) reconciler(t *testing.T, fetcher feed.Fetcher) ReconcileService {
	t.Helper()
	log := testutil.Logger(t)
	return NewReconcileService(log, aggregates.NewGormTxRunner(h.db), h.menuRepo, h.submenuRepo, h.dishRepo, h.catalog, fetcher)
}

// requireCacheMatchesStore fails unless the cached document equals a fresh
// reconstruction from the store.
func (h *harness) requireCacheMatchesStore(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	fromStore, err := h.catalog.GetEverything(ctx)
	if err != nil {
		t.Fatalf("GetEverything: %v", err)
	}
	cached, err := h.catalog.CachedTree(ctx)
	if err != nil {
		t.Fatalf("CachedTree: %v", err)
	}
	want, _ := json.Marshal(fromStore)
	got, _ := json.Marshal(cached)
	if string(want) != string(got) {
		t.Fatalf("tree cache diverged from store\nstore: %s\ncache: %s", want, got)
	}
}

// faultyDocument fails the selected operations and delegates the rest.
type faultyDocument struct {
	treecache.Document

	FailAppend  error
	FailSet     error
	FailDelete  error
	FailReplace error
}

func (d *faultyDocument) Append(ctx context.Context, parent treecache.Path, node any) (int, error) {
	if d.FailAppend != nil {
		return 0, d.FailAppend
	}
	return d.Document.Append(ctx, parent, node)
}

func (d *faultyDocument) Set(ctx context.Context, p treecache.Path, fields map[string]any) (int, error) {
	if d.FailSet != nil {
		return 0, d.FailSet
	}
	return d.Document.Set(ctx, p, fields)
}

func (d *faultyDocument) Delete(ctx context.Context, p treecache.Path) (int, error) {
	if d.FailDelete != nil {
		return 0, d.FailDelete
	}
	return d.Document.Delete(ctx, p)
}

func (d *faultyDocument) Replace(ctx context.Context, doc json.RawMessage) error {
	if d.FailReplace != nil {
		return d.FailReplace
	}
	return d.Document.Replace(ctx, doc)
}
