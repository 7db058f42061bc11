package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/menusync-backend/internal/data/repos"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

type Repos struct {
	Menu     repos.MenuRepo
	Submenu  repos.SubmenuRepo
	Dish     repos.DishRepo
	Counters repos.CounterRepo
	Tree     repos.TreeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Menu:     repos.NewMenuRepo(db, log),
		Submenu:  repos.NewSubmenuRepo(db, log),
		Dish:     repos.NewDishRepo(db, log),
		Counters: repos.NewCounterRepo(db, log),
		Tree:     repos.NewTreeRepo(db, log),
	}
}
