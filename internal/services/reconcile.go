package services

import (
	"context"
	"fmt"
	"os"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/data/repos"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/feed"
	"github.com/yungbote/menusync-backend/internal/platform/ctxutil"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// LevelReport counts what a reconciliation did to one level.
type LevelReport struct {
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Reparented int `json:"reparented"`
	Deleted    int `json:"deleted"`
}

type ReconcileReport struct {
	Source   string        `json:"source,omitempty"`
	Checksum string        `json:"checksum,omitempty"`
	Rows     int           `json:"rows"`
	Skipped  int           `json:"skipped"`
	Menus    LevelReport   `json:"menus"`
	Submenus LevelReport   `json:"submenus"`
	Dishes   LevelReport   `json:"dishes"`
	Tree     ReseedResult  `json:"tree"`
	Duration time.Duration `json:"duration"`
}

type ReconcileService interface {
	// Run fetches and parses the feed, then applies it. A fetch or read
	// failure aborts before the store is touched.
	Run(ctx context.Context) (*ReconcileReport, error)
	// Apply makes the store hold exactly snap, then reseeds the cache.
	Apply(ctx context.Context, snap catalog.Snapshot) (*ReconcileReport, error)
}

type reconcileService struct {
	log      *logger.Logger
	tx       aggregates.TxRunner
	menus    repos.MenuRepo
	submenus repos.SubmenuRepo
	dishes   repos.DishRepo
	catalog  CatalogService
	fetcher  feed.Fetcher
}

func NewReconcileService(
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	menus repos.MenuRepo,
	submenus repos.SubmenuRepo,
	dishes repos.DishRepo,
	catalogSvc CatalogService,
	fetcher feed.Fetcher,
) ReconcileService {
	return &reconcileService{
		log:      baseLog.With("service", "ReconcileService"),
		tx:       tx,
		menus:    menus,
		submenus: submenus,
		dishes:   dishes,
		catalog:  catalogSvc,
		fetcher:  fetcher,
	}
}

func (s *reconcileService) Run(ctx context.Context) (*ReconcileReport, error) {
	const op = "reconcile.run"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if s.fetcher == nil {
		return nil, catalog.NewError(catalog.CodeInternal, op, "feed fetcher not configured", nil)
	}
	fetched, err := s.fetcher.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, catalog.Wrap(catalog.CodeInternal, op, err)
	}

	file, err := os.Open(fetched.Path)
	if err != nil {
		return nil, catalog.Wrap(catalog.CodeInternal, op, err)
	}
	parsed, err := feed.Parse(file)
	_ = file.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, catalog.Wrap(catalog.CodeInternal, op, err)
	}
	for _, skipped := range parsedErrors(parsed) {
		s.log.Warn("feed row skipped", append(ctxutil.LogFields(ctx), "error", skipped)...)
	}

	report, err := s.Apply(ctx, parsed.Snapshot)
	if report != nil {
		report.Source = fetched.Source
		report.Checksum = fmt.Sprintf("%016x", fetched.Checksum)
		report.Rows = parsed.Rows
		report.Skipped += parsed.SkippedCount()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(catalog.CodeOf(err)))
		return report, err
	}
	span.SetAttributes(attribute.String("feed.checksum", report.Checksum), attribute.Int("feed.rows", report.Rows))
	return report, nil
}

func parsedErrors(r *feed.Result) []error {
	if r == nil || r.Skipped == nil {
		return nil
	}
	return r.Skipped.Errors
}

func (s *reconcileService) Apply(ctx context.Context, snap catalog.Snapshot) (*ReconcileReport, error) {
	const op = "reconcile.apply"
	started := time.Now()
	report := &ReconcileReport{}

	menus, submenus, dishes, dropped := consistentSnapshot(snap)
	report.Skipped = dropped
	if dropped > 0 {
		s.log.Warn("feed rows without a parent in the feed were skipped", append(ctxutil.LogFields(ctx), "count", dropped)...)
	}

	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		currentMenus, err := s.menus.IDs(dbc)
		if err != nil {
			return err
		}
		submenuParents, err := s.submenus.ParentIndex(dbc)
		if err != nil {
			return err
		}
		dishParents, err := s.dishes.ParentIndex(dbc)
		if err != nil {
			return err
		}

		// Upserts run top-down so every new parent exists before its
		// children are written; stale rows are then removed bottom-up so a
		// child moved away from a stale parent is not cascaded.
		existingMenus := mapset.NewThreadUnsafeSet(currentMenus...)
		feedMenus := mapset.NewThreadUnsafeSet[string]()
		for _, m := range menus {
			feedMenus.Add(m.ID)
			if existingMenus.Contains(m.ID) {
				report.Menus.Updated++
			} else {
				report.Menus.Created++
			}
		}
		if err := s.menus.Upsert(dbc, menus); err != nil {
			return err
		}

		feedSubmenus := mapset.NewThreadUnsafeSet[string]()
		for _, sm := range submenus {
			feedSubmenus.Add(sm.ID)
			classify(&report.Submenus, submenuParents, sm.ID, sm.MenuID)
		}
		if err := s.submenus.Upsert(dbc, submenus); err != nil {
			return err
		}

		feedDishes := mapset.NewThreadUnsafeSet[string]()
		for _, d := range dishes {
			feedDishes.Add(d.ID)
			classify(&report.Dishes, dishParents, d.ID, d.SubmenuID)
		}
		if err := s.dishes.Upsert(dbc, dishes); err != nil {
			return err
		}

		staleDishes := mapset.NewThreadUnsafeSet(keys(dishParents)...).Difference(feedDishes)
		n, err := s.dishes.DeleteByIDs(dbc, staleDishes.ToSlice())
		if err != nil {
			return err
		}
		report.Dishes.Deleted = int(n)

		staleSubmenus := mapset.NewThreadUnsafeSet(keys(submenuParents)...).Difference(feedSubmenus)
		n, err = s.submenus.DeleteByIDs(dbc, staleSubmenus.ToSlice())
		if err != nil {
			return err
		}
		report.Submenus.Deleted = int(n)

		staleMenus := existingMenus.Difference(feedMenus)
		n, err = s.menus.DeleteByIDs(dbc, staleMenus.ToSlice())
		if err != nil {
			return err
		}
		report.Menus.Deleted = int(n)
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	s.log.Info("catalog reconciled", append(ctxutil.LogFields(ctx),
		"menus", report.Menus, "submenus", report.Submenus, "dishes", report.Dishes)...)

	// The store is committed from here on; a failed swap leaves the cache
	// stale until the next reseed.
	tree, err := s.catalog.Reseed(ctx)
	if err != nil {
		if !catalog.IsCode(err, catalog.CodeSyncError) {
			err = catalog.SyncError(op, true, err)
		}
		report.Duration = time.Since(started)
		return report, err
	}
	report.Tree = tree
	report.Duration = time.Since(started)
	return report, nil
}

func classify(r *LevelReport, parents map[string]string, id, parent string) {
	prev, ok := parents[id]
	switch {
	case !ok:
		r.Created++
	case prev != parent:
		r.Reparented++
	default:
		r.Updated++
	}
}

// consistentSnapshot drops submenus whose menu is not in the snapshot and
// dishes whose submenu is not, and returns how many rows it dropped.
func consistentSnapshot(snap catalog.Snapshot) ([]*catalog.Menu, []*catalog.Submenu, []*catalog.Dish, int) {
	dropped := 0
	menuIDs := mapset.NewThreadUnsafeSet[string]()
	menus := make([]*catalog.Menu, 0, len(snap.Menus))
	for _, m := range snap.Menus {
		if m == nil || m.ID == "" || !menuIDs.Add(m.ID) {
			dropped++
			continue
		}
		menus = append(menus, m)
	}

	subIDs := mapset.NewThreadUnsafeSet[string]()
	submenus := make([]*catalog.Submenu, 0, len(snap.Submenus))
	for _, sm := range snap.Submenus {
		if sm == nil || sm.ID == "" || !menuIDs.Contains(sm.MenuID) || !subIDs.Add(sm.ID) {
			dropped++
			continue
		}
		submenus = append(submenus, sm)
	}

	dishIDs := mapset.NewThreadUnsafeSet[string]()
	dishes := make([]*catalog.Dish, 0, len(snap.Dishes))
	for _, d := range snap.Dishes {
		if d == nil || d.ID == "" || !subIDs.Contains(d.SubmenuID) || !dishIDs.Add(d.ID) {
			dropped++
			continue
		}
		dishes = append(dishes, d)
	}
	return menus, submenus, dishes, dropped
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
