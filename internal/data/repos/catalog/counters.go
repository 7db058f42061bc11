package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// CounterRepo runs the aggregate count queries behind the derived counters.
type CounterRepo interface {
	SubmenuCountByMenu(dbc dbctx.Context, menuID string) (int64, error)
	DishCountByMenu(dbc dbctx.Context, menuID string) (int64, error)
	DishCountBySubmenu(dbc dbctx.Context, submenuID string) (int64, error)
}

type counterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCounterRepo(db *gorm.DB, baseLog *logger.Logger) CounterRepo {
	return &counterRepo{
		db:  db,
		log: baseLog.With("repo", "CounterRepo"),
	}
}

func (r *counterRepo) SubmenuCountByMenu(dbc dbctx.Context, menuID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Submenu{}).
		Where("menu_id = ?", menuID).
		Count(&n).Error
	return n, err
}

func (r *counterRepo) DishCountByMenu(dbc dbctx.Context, menuID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Dish{}).
		Joins("JOIN submenu ON submenu.id = dish.submenu_id").
		Where("submenu.menu_id = ?", menuID).
		Count(&n).Error
	return n, err
}

func (r *counterRepo) DishCountBySubmenu(dbc dbctx.Context, submenuID string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Dish{}).
		Where("submenu_id = ?", submenuID).
		Count(&n).Error
	return n, err
}
