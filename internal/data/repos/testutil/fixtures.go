package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/menusync-backend/internal/domain/catalog"
)

func SeedMenu(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Menu {
	tb.Helper()
	m := &types.Menu{
		ID:          uuid.NewString(),
		Title:       title,
		Description: title + " description",
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed menu: %v", err)
	}
	return m
}

func SeedSubmenu(tb testing.TB, ctx context.Context, tx *gorm.DB, menuID, title string) *types.Submenu {
	tb.Helper()
	s := &types.Submenu{
		ID:          uuid.NewString(),
		Title:       title,
		Description: title + " description",
		MenuID:      menuID,
	}
	if err := tx.WithContext(ctx).Omit("Menu").Create(s).Error; err != nil {
		tb.Fatalf("seed submenu: %v", err)
	}
	return s
}

func SeedDish(tb testing.TB, ctx context.Context, tx *gorm.DB, submenuID, title, price string) *types.Dish {
	tb.Helper()
	d := &types.Dish{
		ID:          uuid.NewString(),
		Title:       title,
		Description: title + " description",
		Price:       price,
		SubmenuID:   submenuID,
	}
	if err := tx.WithContext(ctx).Omit("Submenu").Create(d).Error; err != nil {
		tb.Fatalf("seed dish: %v", err)
	}
	return d
}
