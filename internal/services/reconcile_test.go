package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/menusync-backend/internal/data/repos"
	"github.com/yungbote/menusync-backend/internal/data/repos/testutil"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/feed"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
)

func baseSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Menus: []*catalog.Menu{
			{ID: "m1", Title: "Lunch"},
			{ID: "m2", Title: "Dinner"},
		},
		Submenus: []*catalog.Submenu{
			{ID: "s1", Title: "Mains", MenuID: "m1"},
			{ID: "s2", Title: "Drinks", MenuID: "m1"},
		},
		Dishes: []*catalog.Dish{
			{ID: "d1", Title: "Burger", Price: "9.99", SubmenuID: "s1"},
			{ID: "d2", Title: "Cola", Price: "2.00", SubmenuID: "s2"},
		},
	}
}

func TestReconcile_CreatesThenIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := h.reconciler(t, nil)

	report, err := svc.Apply(ctx, baseSnapshot())
	require.NoError(t, err)
	assert.Equal(t, LevelReport{Created: 2}, report.Menus)
	assert.Equal(t, LevelReport{Created: 2}, report.Submenus)
	assert.Equal(t, LevelReport{Created: 2}, report.Dishes)
	assert.Equal(t, ReseedResult{Menus: 2, Submenus: 2, Dishes: 2}, report.Tree)
	h.requireCacheMatchesStore(t)

	first, err := h.catalog.CachedTree(ctx)
	require.NoError(t, err)

	report, err = svc.Apply(ctx, baseSnapshot())
	require.NoError(t, err)
	assert.Equal(t, LevelReport{Updated: 2}, report.Menus)
	assert.Equal(t, LevelReport{Updated: 2}, report.Submenus)
	assert.Equal(t, LevelReport{Updated: 2}, report.Dishes)

	second, err := h.catalog.CachedTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReconcile_DeletesUpdatesAndReparents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := h.reconciler(t, nil)

	_, err := svc.Apply(ctx, baseSnapshot())
	require.NoError(t, err)

	// An API write the feed does not know about must be removed.
	_, err = h.menus.Create(ctx, catalog.MenuInput{ID: "m-api", Title: "Ad hoc"})
	require.NoError(t, err)

	next := catalog.Snapshot{
		Menus: []*catalog.Menu{
			{ID: "m2", Title: "Dinner", Description: "Evening"},
			{ID: "m3", Title: "Brunch"},
		},
		Submenus: []*catalog.Submenu{
			// s1 leaves m1, which is dropped, for m2
			{ID: "s1", Title: "Mains", MenuID: "m2"},
			{ID: "s3", Title: "Eggs", MenuID: "m3"},
		},
		Dishes: []*catalog.Dish{
			{ID: "d1", Title: "Burger", Price: "10.49", SubmenuID: "s1"},
			{ID: "d2", Title: "Cola", Price: "2.00", SubmenuID: "s3"},
		},
	}
	report, err := svc.Apply(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, LevelReport{Created: 1, Updated: 1, Deleted: 2}, report.Menus)
	assert.Equal(t, LevelReport{Created: 1, Reparented: 1, Deleted: 1}, report.Submenus)
	assert.Equal(t, LevelReport{Updated: 1, Reparented: 1}, report.Dishes)

	dbc := dbctx.Context{Ctx: ctx}
	ids, err := h.menuRepo.IDs(dbc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"m2", "m3"}, ids)

	moved, err := h.submenuRepo.GetScoped(dbc, "m2", "s1")
	require.NoError(t, err)
	require.NotNil(t, moved)
	burger, err := h.dishRepo.GetScoped(dbc, "m2", "s1", "d1")
	require.NoError(t, err)
	require.NotNil(t, burger, "dish must survive its submenu moving")
	assert.Equal(t, "10.49", burger.Price)

	m2, err := h.menus.Get(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, "Evening", m2.Description)
	assert.Equal(t, int64(1), m2.SubmenusCount)
	assert.Equal(t, int64(1), m2.DishesCount)
	h.requireCacheMatchesStore(t)
}

func TestReconcile_SkipsRowsWithoutParentInFeed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := h.reconciler(t, nil)

	snap := baseSnapshot()
	snap.Submenus = append(snap.Submenus, &catalog.Submenu{ID: "s-orphan", MenuID: "nowhere"})
	snap.Dishes = append(snap.Dishes,
		&catalog.Dish{ID: "d-orphan", SubmenuID: "s-orphan", Price: "1.00"},
		&catalog.Dish{ID: "d1", SubmenuID: "s1", Price: "1.00"},
	)

	report, err := svc.Apply(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, ReseedResult{Menus: 2, Submenus: 2, Dishes: 2}, report.Tree)
}

func TestReconcile_EmptyFeedEmptiesCatalog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := h.reconciler(t, nil)

	_, err := svc.Apply(ctx, baseSnapshot())
	require.NoError(t, err)
	report, err := svc.Apply(ctx, catalog.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Menus.Deleted)
	assert.Equal(t, ReseedResult{}, report.Tree)

	cached, err := h.catalog.CachedTree(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

// gatedBuilder holds its first build after the store read until released.
type gatedBuilder struct {
	TreeBuilder
	calls   atomic.Int32
	reached chan struct{}
	release chan struct{}
}

func (b *gatedBuilder) Build(ctx context.Context) ([]catalog.MenuNode, error) {
	menus, err := b.TreeBuilder.Build(ctx)
	if b.calls.Add(1) == 1 {
		close(b.reached)
		<-b.release
	}
	return menus, err
}

func TestReconcile_DoesNotJoinRebuildStartedBeforeCommit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	gate := &gatedBuilder{
		TreeBuilder: NewTreeBuilder(repos.NewTreeRepo(h.db, log), log),
		reached:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	h.catalog = NewCatalogService(log, gate, h.tree)
	svc := h.reconciler(t, nil)

	// a rebuild of the still empty store is in flight
	early := make(chan error, 1)
	go func() {
		_, err := h.catalog.Reseed(ctx)
		early <- err
	}()
	<-gate.reached

	report, err := svc.Apply(ctx, baseSnapshot())
	require.NoError(t, err)
	assert.Equal(t, ReseedResult{Menus: 2, Submenus: 2, Dishes: 2}, report.Tree)
	cached, err := h.catalog.CachedTree(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	close(gate.release)
	require.NoError(t, <-early)

	// the held rebuild finishes last but must not overwrite the newer tree
	cached, err = h.catalog.CachedTree(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	h.requireCacheMatchesStore(t)
}

func TestReconcile_SwapFailureReportsCommittedSyncError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	svc := h.reconciler(t, nil)

	h.doc.FailReplace = errors.New("redis unavailable")
	report, err := svc.Apply(ctx, baseSnapshot())
	var catErr *catalog.Error
	require.True(t, errors.As(err, &catErr), "got %v", err)
	assert.Equal(t, catalog.CodeSyncError, catErr.Code)
	assert.True(t, catErr.Committed)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Menus.Created)

	ids, err := h.menuRepo.IDs(dbctx.Context{Ctx: ctx})
	require.NoError(t, err)
	assert.Len(t, ids, 2, "store stays committed")
}

func TestReconcile_RunFromLocalFeed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "upstream.csv")
	body := "m1,Lunch,Midday\n" +
		",s1,Mains,Hot food\n" +
		",,d1,Burger,Beef,9.99\n" +
		",,d2,Fries,,3.50,10\n" +
		",s2,Drinks,\n" +
		",,bad,Row,,not-a-price\n" +
		"m2,Dinner,\n"
	require.NoError(t, os.WriteFile(src, []byte(body), 0o644))

	fetcher := feed.NewFetcher(feed.Config{Location: src, LocalPath: filepath.Join(dir, "sheet.csv")}, nil, testutil.Logger(t))
	report, err := h.reconciler(t, fetcher).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, src, report.Source)
	assert.Len(t, report.Checksum, 16)
	assert.Equal(t, 7, report.Rows)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, ReseedResult{Menus: 2, Submenus: 2, Dishes: 2}, report.Tree)

	fries, err := h.dishes.Get(ctx, "m1", "s1", "d2")
	require.NoError(t, err)
	assert.Equal(t, "3.15", fries.Price)

	lunch, err := h.menus.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), lunch.SubmenusCount)
	assert.Equal(t, int64(2), lunch.DishesCount)
	h.requireCacheMatchesStore(t)
}

func TestReconcile_FetchFailureLeavesStoreUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.menus.Create(ctx, catalog.MenuInput{ID: "m-keep", Title: "Keep"})
	require.NoError(t, err)

	dir := t.TempDir()
	fetcher := feed.NewFetcher(feed.Config{
		Location:  filepath.Join(dir, "missing.csv"),
		LocalPath: filepath.Join(dir, "sheet.csv"),
	}, nil, testutil.Logger(t))

	_, err = h.reconciler(t, fetcher).Run(ctx)
	require.Error(t, err)

	ids, err := h.menuRepo.IDs(dbctx.Context{Ctx: ctx})
	require.NoError(t, err)
	assert.Equal(t, []string{"m-keep"}, ids)
}
