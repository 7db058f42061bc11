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

const msgSubmenuNotFound = "submenu not found"

type SubmenuSyncService interface {
	Create(ctx context.Context, menuID string, in catalog.SubmenuInput) (*catalog.SubmenuView, error)
	Get(ctx context.Context, menuID, submenuID string) (*catalog.SubmenuView, error)
	List(ctx context.Context, menuID string) ([]catalog.SubmenuView, error)
	Update(ctx context.Context, menuID, submenuID string, in catalog.SubmenuInput) (*catalog.SubmenuView, error)
	Delete(ctx context.Context, menuID, submenuID string) error
}

type submenuSyncService struct {
	syncer
	menus    repos.MenuRepo
	submenus repos.SubmenuRepo
}

func NewSubmenuSyncService(
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	menus repos.MenuRepo,
	submenus repos.SubmenuRepo,
	tree *treecache.Tree,
	counters CounterPropagator,
) SubmenuSyncService {
	return &submenuSyncService{
		syncer: syncer{
			tx:       tx,
			tree:     tree,
			counters: counters,
			log:      baseLog.With("service", "SubmenuSyncService"),
		},
		menus:    menus,
		submenus: submenus,
	}
}

func (s *submenuSyncService) Create(ctx context.Context, menuID string, in catalog.SubmenuInput) (*catalog.SubmenuView, error) {
	const op = "submenu.create"
	row := &catalog.Submenu{
		ID:          strings.TrimSpace(in.ID),
		Title:       in.Title,
		Description: in.Description,
		MenuID:      menuID,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	err := s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		parent, err := s.menus.GetByID(dbc, menuID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if parent == nil {
			return catalog.NotFound(op, msgMenuNotFound)
		}
		if _, err := s.submenus.Create(dbc, row); err != nil {
			return aggregates.MapError(op, err)
		}

		n, err := s.tree.AppendSubmenu(dbc.Ctx, menuID, catalog.NewSubmenuNode(row))
		if err := cacheWriteErr(op, n, err, "menu "+menuID); err != nil {
			return err
		}
		undo.push(func(ctx context.Context) error {
			if _, err := s.tree.DeleteSubmenu(ctx, menuID, row.ID); err != nil {
				return err
			}
			return s.restoreCounters(ctx, menuID, "")
		})

		s.refreshAncestors(dbc, op, menuID, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &catalog.SubmenuView{ID: row.ID, Title: row.Title, Description: row.Description, MenuID: menuID}, nil
}

func (s *submenuSyncService) Get(ctx context.Context, menuID, submenuID string) (*catalog.SubmenuView, error) {
	const op = "submenu.get"
	v, err := s.tree.Submenu(ctx, menuID, submenuID)
	if err != nil {
		return nil, cacheReadErr(op, err)
	}
	if v == nil {
		return nil, catalog.NotFound(op, msgSubmenuNotFound)
	}
	return v, nil
}

func (s *submenuSyncService) List(ctx context.Context, menuID string) ([]catalog.SubmenuView, error) {
	out, err := s.tree.Submenus(ctx, menuID)
	if err != nil {
		return nil, cacheReadErr("submenu.list", err)
	}
	return out, nil
}

func (s *submenuSyncService) Update(ctx context.Context, menuID, submenuID string, in catalog.SubmenuInput) (*catalog.SubmenuView, error) {
	const op = "submenu.update"
	var out *catalog.SubmenuView

	err := s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		prev, err := s.submenus.GetScoped(dbc, menuID, submenuID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if prev == nil {
			return catalog.NotFound(op, msgSubmenuNotFound)
		}
		if _, err := s.submenus.Update(dbc, menuID, submenuID, in); err != nil {
			return aggregates.MapError(op, err)
		}
		row, err := s.submenus.GetScoped(dbc, menuID, submenuID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if row == nil {
			return catalog.NotFound(op, msgSubmenuNotFound)
		}

		n, err := s.tree.SetSubmenuFields(dbc.Ctx, row)
		if err := cacheWriteErr(op, n, err, "submenu "+submenuID); err != nil {
			return err
		}
		undo.push(func(ctx context.Context) error {
			_, err := s.tree.SetSubmenuFields(ctx, prev)
			return err
		})

		c, err := s.counters.SubmenuCounters(dbc, submenuID)
		if err != nil {
			return err
		}
		out = &catalog.SubmenuView{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			DishesCount: c.DishesCount,
			MenuID:      row.MenuID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *submenuSyncService) Delete(ctx context.Context, menuID, submenuID string) error {
	const op = "submenu.delete"

	snapshot, err := s.tree.SubmenuNode(ctx, menuID, submenuID)
	if err != nil {
		return cacheReadErr(op, err)
	}

	return s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		n, err := s.submenus.Delete(dbc, menuID, submenuID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if n == 0 {
			return catalog.NotFound(op, msgSubmenuNotFound)
		}

		removed, err := s.tree.DeleteSubmenu(dbc.Ctx, menuID, submenuID)
		if err != nil {
			return catalog.SyncError(op, false, err)
		}
		if removed == 0 {
			s.log.Warn("deleted submenu was missing from tree cache", "menu_id", menuID, "submenu_id", submenuID)
		} else if snapshot != nil {
			undo.push(func(ctx context.Context) error {
				if _, err := s.tree.AppendSubmenu(ctx, menuID, *snapshot); err != nil {
					return err
				}
				return s.restoreCounters(ctx, menuID, "")
			})
		}

		s.refreshAncestors(dbc, op, menuID, "")
		return nil
	})
}
