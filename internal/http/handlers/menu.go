package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/menusync-backend/internal/http/response"
	"github.com/yungbote/menusync-backend/internal/services"
)

type MenuHandler struct {
	menus services.MenuSyncService
}

func NewMenuHandler(menus services.MenuSyncService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

// GET /api/v1/menus
func (h *MenuHandler) List(c *gin.Context) {
	out, err := h.menus.List(c.Request.Context())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/v1/menus
func (h *MenuHandler) Create(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.menus.Create(c.Request.Context(), req.input())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/v1/menus/:menu_id
func (h *MenuHandler) Get(c *gin.Context) {
	out, err := h.menus.Get(c.Request.Context(), c.Param("menu_id"))
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// PATCH /api/v1/menus/:menu_id
func (h *MenuHandler) Update(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.menus.Update(c.Request.Context(), c.Param("menu_id"), req.input())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/v1/menus/:menu_id
func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.menus.Delete(c.Request.Context(), c.Param("menu_id")); err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": true, "message": "The menu has been deleted"})
}
