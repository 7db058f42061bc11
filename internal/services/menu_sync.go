package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/data/repos"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

const msgMenuNotFound = "menu not found"

// MenuSyncService keeps menus consistent between the entity store and the
// tree cache. Reads are served from the cache only.
type MenuSyncService interface {
	Create(ctx context.Context, in catalog.MenuInput) (*catalog.MenuView, error)
	Get(ctx context.Context, menuID string) (*catalog.MenuView, error)
	List(ctx context.Context) ([]catalog.MenuView, error)
	Update(ctx context.Context, menuID string, in catalog.MenuInput) (*catalog.MenuView, error)
	Delete(ctx context.Context, menuID string) error
}

type menuSyncService struct {
	syncer
	menus repos.MenuRepo
}

func NewMenuSyncService(
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	menus repos.MenuRepo,
	tree *treecache.Tree,
	counters CounterPropagator,
) MenuSyncService {
	return &menuSyncService{
		syncer: syncer{
			tx:       tx,
			tree:     tree,
			counters: counters,
			log:      baseLog.With("service", "MenuSyncService"),
		},
		menus: menus,
	}
}

func (s *menuSyncService) Create(ctx context.Context, in catalog.MenuInput) (*catalog.MenuView, error) {
	const op = "menu.create"
	row := &catalog.Menu{
		ID:          strings.TrimSpace(in.ID),
		Title:       in.Title,
		Description: in.Description,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	err := s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		if _, err := s.menus.Create(dbc, row); err != nil {
			return aggregates.MapError(op, err)
		}
		n, err := s.tree.AppendMenu(dbc.Ctx, catalog.NewMenuNode(row))
		if err := cacheWriteErr(op, n, err, "document root"); err != nil {
			return err
		}
		undo.push(func(ctx context.Context) error {
			_, err := s.tree.DeleteMenu(ctx, row.ID)
			return err
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &catalog.MenuView{ID: row.ID, Title: row.Title, Description: row.Description}, nil
}

func (s *menuSyncService) Get(ctx context.Context, menuID string) (*catalog.MenuView, error) {
	const op = "menu.get"
	m, err := s.tree.Menu(ctx, menuID)
	if err != nil {
		return nil, cacheReadErr(op, err)
	}
	if m == nil {
		return nil, catalog.NotFound(op, msgMenuNotFound)
	}
	return m, nil
}

func (s *menuSyncService) List(ctx context.Context) ([]catalog.MenuView, error) {
	out, err := s.tree.Menus(ctx)
	if err != nil {
		return nil, cacheReadErr("menu.list", err)
	}
	return out, nil
}

func (s *menuSyncService) Update(ctx context.Context, menuID string, in catalog.MenuInput) (*catalog.MenuView, error) {
	const op = "menu.update"
	var out *catalog.MenuView

	err := s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		prev, err := s.menus.GetByID(dbc, menuID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if prev == nil {
			return catalog.NotFound(op, msgMenuNotFound)
		}
		if _, err := s.menus.Update(dbc, menuID, in); err != nil {
			return aggregates.MapError(op, err)
		}
		row, err := s.menus.GetByID(dbc, menuID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if row == nil {
			return catalog.NotFound(op, msgMenuNotFound)
		}

		n, err := s.tree.SetMenuFields(dbc.Ctx, row)
		if err := cacheWriteErr(op, n, err, "menu "+menuID); err != nil {
			return err
		}
		undo.push(func(ctx context.Context) error {
			_, err := s.tree.SetMenuFields(ctx, prev)
			return err
		})

		c, err := s.counters.MenuCounters(dbc, menuID)
		if err != nil {
			return err
		}
		out = &catalog.MenuView{
			ID:            row.ID,
			Title:         row.Title,
			Description:   row.Description,
			SubmenusCount: c.SubmenusCount,
			DishesCount:   c.DishesCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *menuSyncService) Delete(ctx context.Context, menuID string) error {
	const op = "menu.delete"

	snapshot, err := s.tree.MenuNode(ctx, menuID)
	if err != nil {
		return cacheReadErr(op, err)
	}

	return s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		n, err := s.menus.Delete(dbc, menuID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if n == 0 {
			return catalog.NotFound(op, msgMenuNotFound)
		}

		removed, err := s.tree.DeleteMenu(dbc.Ctx, menuID)
		if err != nil {
			return catalog.SyncError(op, false, err)
		}
		if removed == 0 {
			s.log.Warn("deleted menu was missing from tree cache", "menu_id", menuID)
			return nil
		}
		if snapshot != nil {
			undo.push(func(ctx context.Context) error {
				_, err := s.tree.AppendMenu(ctx, *snapshot)
				return err
			})
		}
		return nil
	})
}
