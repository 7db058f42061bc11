package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/menusync-backend/internal/http/response"
	"github.com/yungbote/menusync-backend/internal/services"
)

type SubmenuHandler struct {
	submenus services.SubmenuSyncService
}

func NewSubmenuHandler(submenus services.SubmenuSyncService) *SubmenuHandler {
	return &SubmenuHandler{submenus: submenus}
}

// GET /api/v1/menus/:menu_id/submenus
func (h *SubmenuHandler) List(c *gin.Context) {
	out, err := h.submenus.List(c.Request.Context(), c.Param("menu_id"))
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/v1/menus/:menu_id/submenus
func (h *SubmenuHandler) Create(c *gin.Context) {
	var req submenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.submenus.Create(c.Request.Context(), c.Param("menu_id"), req.input())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/v1/menus/:menu_id/submenus/:submenu_id
func (h *SubmenuHandler) Get(c *gin.Context) {
	out, err := h.submenus.Get(c.Request.Context(), c.Param("menu_id"), c.Param("submenu_id"))
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PATCH /api/v1/menus/:menu_id/submenus/:submenu_id
func (h *SubmenuHandler) Update(c *gin.Context) {
	var req submenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.submenus.Update(c.Request.Context(), c.Param("menu_id"), c.Param("submenu_id"), req.input())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/v1/menus/:menu_id/submenus/:submenu_id
func (h *SubmenuHandler) Delete(c *gin.Context) {
	if err := h.submenus.Delete(c.Request.Context(), c.Param("menu_id"), c.Param("submenu_id")); err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": true, "message": "The submenu has been deleted"})
}
