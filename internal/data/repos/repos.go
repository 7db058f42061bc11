package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/menusync-backend/internal/data/repos/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

type MenuRepo = catalog.MenuRepo
type SubmenuRepo = catalog.SubmenuRepo
type DishRepo = catalog.DishRepo
type CounterRepo = catalog.CounterRepo
type TreeRepo = catalog.TreeRepo

func NewMenuRepo(db *gorm.DB, baseLog *logger.Logger) MenuRepo {
	return catalog.NewMenuRepo(db, baseLog)
}
func NewSubmenuRepo(db *gorm.DB, baseLog *logger.Logger) SubmenuRepo {
	return catalog.NewSubmenuRepo(db, baseLog)
}
func NewDishRepo(db *gorm.DB, baseLog *logger.Logger) DishRepo {
	return catalog.NewDishRepo(db, baseLog)
}
func NewCounterRepo(db *gorm.DB, baseLog *logger.Logger) CounterRepo {
	return catalog.NewCounterRepo(db, baseLog)
}
func NewTreeRepo(db *gorm.DB, baseLog *logger.Logger) TreeRepo {
	return catalog.NewTreeRepo(db, baseLog)
}
