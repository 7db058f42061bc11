package treecache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// Tree is the typed view over a Document.
type Tree struct {
	doc Document
	log *logger.Logger
}

func NewTree(doc Document, log *logger.Logger) *Tree {
	return &Tree{doc: doc, log: log.With("service", "TreeCache")}
}

func (t *Tree) Document() Document { return t.doc }

func (t *Tree) Init(ctx context.Context) error { return t.doc.Init(ctx) }

// All returns the whole catalog as stored.
func (t *Tree) All(ctx context.Context) ([]catalog.MenuNode, error) {
	raw, err := t.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	var out []catalog.MenuNode
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if out == nil {
		out = []catalog.MenuNode{}
	}
	return out, nil
}

// Swap replaces the whole document in one write.
func (t *Tree) Swap(ctx context.Context, menus []catalog.MenuNode) error {
	if menus == nil {
		menus = []catalog.MenuNode{}
	}
	b, err := json.Marshal(menus)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return t.doc.Replace(ctx, b)
}

func (t *Tree) Menu(ctx context.Context, menuID string) (*catalog.MenuView, error) {
	var v catalog.MenuView
	ok, err := t.one(ctx, MenuPath(menuID), &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// MenuNode returns the menu with its whole subtree.
func (t *Tree) MenuNode(ctx context.Context, menuID string) (*catalog.MenuNode, error) {
	var v catalog.MenuNode
	ok, err := t.one(ctx, MenuPath(menuID), &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func (t *Tree) Menus(ctx context.Context) ([]catalog.MenuView, error) {
	out := []catalog.MenuView{}
	if err := t.children(ctx, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) Submenu(ctx context.Context, menuID, submenuID string) (*catalog.SubmenuView, error) {
	var v catalog.SubmenuView
	ok, err := t.one(ctx, SubmenuPath(menuID, submenuID), &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func (t *Tree) SubmenuNode(ctx context.Context, menuID, submenuID string) (*catalog.SubmenuNode, error) {
	var v catalog.SubmenuNode
	ok, err := t.one(ctx, SubmenuPath(menuID, submenuID), &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func (t *Tree) Submenus(ctx context.Context, menuID string) ([]catalog.SubmenuView, error) {
	out := []catalog.SubmenuView{}
	if err := t.children(ctx, MenuPath(menuID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) Dish(ctx context.Context, menuID, submenuID, dishID string) (*catalog.DishView, error) {
	var v catalog.DishView
	ok, err := t.one(ctx, DishPath(menuID, submenuID, dishID), &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func (t *Tree) Dishes(ctx context.Context, menuID, submenuID string) ([]catalog.DishView, error) {
	out := []catalog.DishView{}
	if err := t.children(ctx, SubmenuPath(menuID, submenuID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) AppendMenu(ctx context.Context, node catalog.MenuNode) (int, error) {
	return t.doc.Append(ctx, nil, node)
}

func (t *Tree) AppendSubmenu(ctx context.Context, menuID string, node catalog.SubmenuNode) (int, error) {
	return t.doc.Append(ctx, MenuPath(menuID), node)
}

func (t *Tree) AppendDish(ctx context.Context, menuID, submenuID string, node catalog.DishNode) (int, error) {
	return t.doc.Append(ctx, SubmenuPath(menuID, submenuID), node)
}

func (t *Tree) SetMenuFields(ctx context.Context, m *catalog.Menu) (int, error) {
	return t.doc.Set(ctx, MenuPath(m.ID), map[string]any{
		"title":       m.Title,
		"description": m.Description,
	})
}

func (t *Tree) SetSubmenuFields(ctx context.Context, s *catalog.Submenu) (int, error) {
	return t.doc.Set(ctx, SubmenuPath(s.MenuID, s.ID), map[string]any{
		"title":       s.Title,
		"description": s.Description,
	})
}

func (t *Tree) SetDishFields(ctx context.Context, menuID string, d *catalog.Dish) (int, error) {
	return t.doc.Set(ctx, DishPath(menuID, d.SubmenuID, d.ID), map[string]any{
		"title":       d.Title,
		"description": d.Description,
		"price":       d.Price,
	})
}

func (t *Tree) SetMenuCounters(ctx context.Context, c catalog.MenuCounters) (int, error) {
	return t.doc.Set(ctx, MenuPath(c.MenuID), map[string]any{
		"submenus_count": c.SubmenusCount,
		"dishes_count":   c.DishesCount,
	})
}

func (t *Tree) SetSubmenuCounters(ctx context.Context, menuID string, c catalog.SubmenuCounters) (int, error) {
	return t.doc.Set(ctx, SubmenuPath(menuID, c.SubmenuID), map[string]any{
		"dishes_count": c.DishesCount,
	})
}

func (t *Tree) DeleteMenu(ctx context.Context, menuID string) (int, error) {
	return t.doc.Delete(ctx, MenuPath(menuID))
}

func (t *Tree) DeleteSubmenu(ctx context.Context, menuID, submenuID string) (int, error) {
	return t.doc.Delete(ctx, SubmenuPath(menuID, submenuID))
}

func (t *Tree) DeleteDish(ctx context.Context, menuID, submenuID, dishID string) (int, error) {
	return t.doc.Delete(ctx, DishPath(menuID, submenuID, dishID))
}

func (t *Tree) one(ctx context.Context, p Path, dst any) (bool, error) {
	matches, err := t.doc.Get(ctx, p)
	if err != nil {
		return false, err
	}
	if len(matches) == 0 {
		return false, nil
	}
	if len(matches) > 1 {
		t.log.Warn("tree path matched more than one node", "path", p.String(), "matches", len(matches))
	}
	if err := json.Unmarshal(matches[0], dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", p, err)
	}
	return true, nil
}

func (t *Tree) children(ctx context.Context, p Path, dst any) error {
	items, err := t.doc.Children(ctx, p)
	if err != nil {
		return err
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode children of %s: %w", p, err)
	}
	return nil
}
