package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/menusync-backend/internal/http/response"
	"github.com/yungbote/menusync-backend/internal/jobs/reconcile"
	"github.com/yungbote/menusync-backend/internal/services"
)

var errReconcileDisabled = errors.New("feed reconciliation is not configured")

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/v1/all
// Read straight from the entity store.
func (h *CatalogHandler) All(c *gin.Context) {
	out, err := h.catalog.GetEverything(c.Request.Context())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/v1/tree
func (h *CatalogHandler) Tree(c *gin.Context) {
	out, err := h.catalog.CachedTree(c.Request.Context())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// ReconcileRunner runs reconciliation on demand and reports the last run.
type ReconcileRunner interface {
	RunOnce(ctx context.Context) (*services.ReconcileReport, error)
	Last() *reconcile.Status
}

type AdminHandler struct {
	catalog services.CatalogService
	runner  ReconcileRunner
}

func NewAdminHandler(catalog services.CatalogService, runner ReconcileRunner) *AdminHandler {
	return &AdminHandler{catalog: catalog, runner: runner}
}

// POST /api/v1/admin/reseed
func (h *AdminHandler) Reseed(c *gin.Context) {
	out, err := h.catalog.Reseed(c.Request.Context())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tree": out})
}

// POST /api/v1/admin/reconcile
func (h *AdminHandler) Reconcile(c *gin.Context) {
	if h.runner == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "reconcile_disabled", errReconcileDisabled)
		return
	}
	report, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		response.RespondCatalogError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

// GET /api/v1/admin/reconcile
func (h *AdminHandler) ReconcileStatus(c *gin.Context) {
	if h.runner == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "reconcile_disabled", errReconcileDisabled)
		return
	}
	response.RespondOK(c, gin.H{"last": h.runner.Last()})
}
