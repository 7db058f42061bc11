package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/menusync-backend/internal/http/handlers"
	httpMW "github.com/yungbote/menusync-backend/internal/http/middleware"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	MenuHandler    *httpH.MenuHandler
	SubmenuHandler *httpH.SubmenuHandler
	DishHandler    *httpH.DishHandler
	CatalogHandler *httpH.CatalogHandler
	AdminHandler   *httpH.AdminHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		if cfg.CatalogHandler != nil {
			api.GET("/all", cfg.CatalogHandler.All)
			api.GET("/tree", cfg.CatalogHandler.Tree)
		}

		// Menus
		if cfg.MenuHandler != nil {
			api.GET("/menus", cfg.MenuHandler.List)
			api.POST("/menus", cfg.MenuHandler.Create)
			api.GET("/menus/:menu_id", cfg.MenuHandler.Get)
			api.PATCH("/menus/:menu_id", cfg.MenuHandler.Update)
			api.DELETE("/menus/:menu_id", cfg.MenuHandler.Delete)
		}

		// Submenus
		if cfg.SubmenuHandler != nil {
			api.GET("/menus/:menu_id/submenus", cfg.SubmenuHandler.List)
			api.POST("/menus/:menu_id/submenus", cfg.SubmenuHandler.Create)
			api.GET("/menus/:menu_id/submenus/:submenu_id", cfg.SubmenuHandler.Get)
			api.PATCH("/menus/:menu_id/submenus/:submenu_id", cfg.SubmenuHandler.Update)
			api.DELETE("/menus/:menu_id/submenus/:submenu_id", cfg.SubmenuHandler.Delete)
		}

		// Dishes
		if cfg.DishHandler != nil {
			dishes := "/menus/:menu_id/submenus/:submenu_id/dishes"
			api.GET(dishes, cfg.DishHandler.List)
			api.POST(dishes, cfg.DishHandler.Create)
			api.GET(dishes+"/:dish_id", cfg.DishHandler.Get)
			api.PATCH(dishes+"/:dish_id", cfg.DishHandler.Update)
			api.DELETE(dishes+"/:dish_id", cfg.DishHandler.Delete)
		}

		// Admin
		if cfg.AdminHandler != nil {
			api.POST("/admin/reseed", cfg.AdminHandler.Reseed)
			api.POST("/admin/reconcile", cfg.AdminHandler.Reconcile)
			api.GET("/admin/reconcile", cfg.AdminHandler.ReconcileStatus)
		}
	}

	return r
}
