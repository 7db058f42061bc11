package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/menusync-backend/internal/http/response"
	"github.com/yungbote/menusync-backend/internal/services"
)

type DishHandler struct {
	dishes services.DishSyncService
}

func NewDishHandler(dishes services.DishSyncService) *DishHandler {
	return &DishHandler{dishes: dishes}
}

// GET /api/v1/menus/:menu_id/submenus/:submenu_id/dishes
func (h *DishHandler) List(c *gin.Context) {
	out, err := h.dishes.List(c.Request.Context(), c.Param("menu_id"), c.Param("submenu_id"))
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/v1/menus/:menu_id/submenus/:submenu_id/dishes
func (h *DishHandler) Create(c *gin.Context) {
	var req dishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in, err := req.input()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_price", err)
		return
	}
	out, err := h.dishes.Create(c.Request.Context(), c.Param("menu_id"), c.Param("submenu_id"), in)
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/v1/menus/:menu_id/submenus/:submenu_id/dishes/:dish_id
func (h *DishHandler) Get(c *gin.Context) {
	out, err := h.dishes.Get(c.Request.Context(), c.Param("menu_id"), c.Param("submenu_id"), c.Param("dish_id"))
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PATCH /api/v1/menus/:menu_id/submenus/:submenu_id/dishes/:dish_id
func (h *DishHandler) Update(c *gin.Context) {
	var req dishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in, err := req.input()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_price", err)
		return
	}
	out, err := h.dishes.Update(c.Request.Context(), c.Param("menu_id"), c.Param("submenu_id"), c.Param("dish_id"), in)
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/v1/menus/:menu_id/submenus/:submenu_id/dishes/:dish_id
func (h *DishHandler) Delete(c *gin.Context) {
	if err := h.dishes.Delete(c.Request.Context(), c.Param("menu_id"), c.Param("submenu_id"), c.Param("dish_id")); err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": true, "message": "The dish has been deleted"})
}
