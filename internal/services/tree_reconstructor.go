package services

import (
	"context"

	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/data/repos"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// Reconstruct nests flattened menu/submenu/dish join rows. Rows are grouped
// by primary id through index maps, so repeated parent columns from the
// join fan-out collapse into one node each. First-seen order is kept.
// Null submenu or dish columns yield empty arrays, never missing ones.
func Reconstruct(rows []catalog.FlatRow) []catalog.MenuNode {
	menus := make([]catalog.MenuNode, 0)
	menuIdx := make(map[string]int)
	// submenu id -> (menu index, submenu index)
	subIdx := make(map[string][2]int)
	seenDish := make(map[string]struct{})

	for _, r := range rows {
		mi, ok := menuIdx[r.MenuID]
		if !ok {
			mi = len(menus)
			menuIdx[r.MenuID] = mi
			menus = append(menus, catalog.MenuNode{
				MenuView: catalog.MenuView{ID: r.MenuID, Title: r.MenuTitle, Description: r.MenuDescription},
				Submenus: []catalog.SubmenuNode{},
			})
		}
		if r.SubmenuID == nil {
			continue
		}

		pos, ok := subIdx[*r.SubmenuID]
		if !ok {
			owner := r.MenuID
			if r.SubmenuMenuID != nil {
				owner = *r.SubmenuMenuID
			}
			oi, found := menuIdx[owner]
			if !found {
				oi = mi
			}
			pos = [2]int{oi, len(menus[oi].Submenus)}
			subIdx[*r.SubmenuID] = pos
			menus[oi].Submenus = append(menus[oi].Submenus, catalog.SubmenuNode{
				SubmenuView: catalog.SubmenuView{
					ID:          *r.SubmenuID,
					Title:       deref(r.SubmenuTitle),
					Description: deref(r.SubmenuDescription),
					MenuID:      owner,
				},
				Dishes: []catalog.DishNode{},
			})
		}
		if r.DishID == nil {
			continue
		}
		if _, dup := seenDish[*r.DishID]; dup {
			continue
		}
		seenDish[*r.DishID] = struct{}{}

		sub := &menus[pos[0]].Submenus[pos[1]]
		sub.Dishes = append(sub.Dishes, catalog.DishNode{DishView: catalog.DishView{
			ID:          *r.DishID,
			Title:       deref(r.DishTitle),
			Description: deref(r.DishDescription),
			Price:       deref(r.DishPrice),
			SubmenuID:   sub.ID,
		}})
	}
	return menus
}

// DeriveCounters sets every counter from the node arrays of the tree itself,
// so counters and arrays always come from the same read.
func DeriveCounters(menus []catalog.MenuNode) {
	for i := range menus {
		var dishes int64
		for j := range menus[i].Submenus {
			n := int64(len(menus[i].Submenus[j].Dishes))
			menus[i].Submenus[j].DishesCount = n
			dishes += n
		}
		menus[i].SubmenusCount = int64(len(menus[i].Submenus))
		menus[i].DishesCount = dishes
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// TreeBuilder rebuilds the full catalog tree from the entity store.
type TreeBuilder interface {
	Build(ctx context.Context) ([]catalog.MenuNode, error)
}

type treeBuilder struct {
	trees repos.TreeRepo
	log   *logger.Logger
}

func NewTreeBuilder(trees repos.TreeRepo, baseLog *logger.Logger) TreeBuilder {
	return &treeBuilder{
		trees: trees,
		log:   baseLog.With("service", "TreeBuilder"),
	}
}

func (b *treeBuilder) Build(ctx context.Context) ([]catalog.MenuNode, error) {
	rows, err := b.trees.FlatRows(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, aggregates.MapError("tree.build", err)
	}

	menus := Reconstruct(rows)
	DeriveCounters(menus)
	m, s, d := catalog.Counts(menus)
	b.log.Debug("tree rebuilt", "menus", m, "submenus", s, "dishes", d)
	return menus, nil
}
