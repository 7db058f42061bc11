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

const msgDishNotFound = "dish not found"

type DishSyncService interface {
	Create(ctx context.Context, menuID, submenuID string, in catalog.DishInput) (*catalog.DishView, error)
	Get(ctx context.Context, menuID, submenuID, dishID string) (*catalog.DishView, error)
	List(ctx context.Context, menuID, submenuID string) ([]catalog.DishView, error)
	Update(ctx context.Context, menuID, submenuID, dishID string, in catalog.DishInput) (*catalog.DishView, error)
	Delete(ctx context.Context, menuID, submenuID, dishID string) error
}

type dishSyncService struct {
	syncer
	submenus repos.SubmenuRepo
	dishes   repos.DishRepo
}

func NewDishSyncService(
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	submenus repos.SubmenuRepo,
	dishes repos.DishRepo,
	tree *treecache.Tree,
	counters CounterPropagator,
) DishSyncService {
	return &dishSyncService{
		syncer: syncer{
			tx:       tx,
			tree:     tree,
			counters: counters,
			log:      baseLog.With("service", "DishSyncService"),
		},
		submenus: submenus,
		dishes:   dishes,
	}
}

func (s *dishSyncService) Create(ctx context.Context, menuID, submenuID string, in catalog.DishInput) (*catalog.DishView, error) {
	const op = "dish.create"
	row := &catalog.Dish{
		ID:          strings.TrimSpace(in.ID),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		SubmenuID:   submenuID,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	err := s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		parent, err := s.submenus.GetScoped(dbc, menuID, submenuID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if parent == nil {
			return catalog.NotFound(op, msgSubmenuNotFound)
		}
		if _, err := s.dishes.Create(dbc, row); err != nil {
			return aggregates.MapError(op, err)
		}

		n, err := s.tree.AppendDish(dbc.Ctx, menuID, submenuID, catalog.NewDishNode(row))
		if err := cacheWriteErr(op, n, err, "submenu "+submenuID); err != nil {
			return err
		}
		undo.push(func(ctx context.Context) error {
			if _, err := s.tree.DeleteDish(ctx, menuID, submenuID, row.ID); err != nil {
				return err
			}
			return s.restoreCounters(ctx, menuID, submenuID)
		})

		s.refreshAncestors(dbc, op, menuID, submenuID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := catalog.NewDishNode(row).DishView
	return &v, nil
}

func (s *dishSyncService) Get(ctx context.Context, menuID, submenuID, dishID string) (*catalog.DishView, error) {
	const op = "dish.get"
	v, err := s.tree.Dish(ctx, menuID, submenuID, dishID)
	if err != nil {
		return nil, cacheReadErr(op, err)
	}
	if v == nil {
		return nil, catalog.NotFound(op, msgDishNotFound)
	}
	return v, nil
}

func (s *dishSyncService) List(ctx context.Context, menuID, submenuID string) ([]catalog.DishView, error) {
	out, err := s.tree.Dishes(ctx, menuID, submenuID)
	if err != nil {
		return nil, cacheReadErr("dish.list", err)
	}
	return out, nil
}

func (s *dishSyncService) Update(ctx context.Context, menuID, submenuID, dishID string, in catalog.DishInput) (*catalog.DishView, error) {
	const op = "dish.update"
	var out *catalog.DishView

	err := s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		prev, err := s.dishes.GetScoped(dbc, menuID, submenuID, dishID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if prev == nil {
			return catalog.NotFound(op, msgDishNotFound)
		}
		if _, err := s.dishes.Update(dbc, menuID, submenuID, dishID, in); err != nil {
			return aggregates.MapError(op, err)
		}
		row, err := s.dishes.GetScoped(dbc, menuID, submenuID, dishID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if row == nil {
			return catalog.NotFound(op, msgDishNotFound)
		}

		n, err := s.tree.SetDishFields(dbc.Ctx, menuID, row)
		if err := cacheWriteErr(op, n, err, "dish "+dishID); err != nil {
			return err
		}
		undo.push(func(ctx context.Context) error {
			_, err := s.tree.SetDishFields(ctx, menuID, prev)
			return err
		})

		v := catalog.NewDishNode(row).DishView
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dishSyncService) Delete(ctx context.Context, menuID, submenuID, dishID string) error {
	const op = "dish.delete"

	var snapshot *catalog.DishNode
	if v, err := s.tree.Dish(ctx, menuID, submenuID, dishID); err != nil {
		return cacheReadErr(op, err)
	} else if v != nil {
		snapshot = &catalog.DishNode{DishView: *v}
	}

	return s.write(ctx, op, func(dbc dbctx.Context, undo *cacheUndo) error {
		n, err := s.dishes.Delete(dbc, menuID, submenuID, dishID)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if n == 0 {
			return catalog.NotFound(op, msgDishNotFound)
		}

		removed, err := s.tree.DeleteDish(dbc.Ctx, menuID, submenuID, dishID)
		if err != nil {
			return catalog.SyncError(op, false, err)
		}
		if removed == 0 {
			s.log.Warn("deleted dish was missing from tree cache", "menu_id", menuID, "submenu_id", submenuID, "dish_id", dishID)
		} else if snapshot != nil {
			undo.push(func(ctx context.Context) error {
				if _, err := s.tree.AppendDish(ctx, menuID, submenuID, *snapshot); err != nil {
					return err
				}
				return s.restoreCounters(ctx, menuID, submenuID)
			})
		}

		s.refreshAncestors(dbc, op, menuID, submenuID)
		return nil
	})
}
