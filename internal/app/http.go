package app

import (
	"github.com/yungbote/menusync-backend/internal/http"
	httpH "github.com/yungbote/menusync-backend/internal/http/handlers"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Menu    *httpH.MenuHandler
	Submenu *httpH.SubmenuHandler
	Dish    *httpH.DishHandler
	Catalog *httpH.CatalogHandler
	Admin   *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, s Services, runner httpH.ReconcileRunner) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(),
		Menu:    httpH.NewMenuHandler(s.Menu),
		Submenu: httpH.NewSubmenuHandler(s.Submenu),
		Dish:    httpH.NewDishHandler(s.Dish),
		Catalog: httpH.NewCatalogHandler(s.Catalog),
		Admin:   httpH.NewAdminHandler(s.Catalog, runner),
	}
}

func wireServer(log *logger.Logger, cfg Config, h Handlers) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		CORSOrigins:    cfg.CORSOrigins,
		MenuHandler:    h.Menu,
		SubmenuHandler: h.Submenu,
		DishHandler:    h.Dish,
		CatalogHandler: h.Catalog,
		AdminHandler:   h.Admin,
		HealthHandler:  h.Health,
	})
}
