package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/data/repos"
	"github.com/yungbote/menusync-backend/internal/data/repos/testutil"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	httpH "github.com/yungbote/menusync-backend/internal/http/handlers"
	"github.com/yungbote/menusync-backend/internal/http/response"
	"github.com/yungbote/menusync-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)

	tree := treecache.NewTree(treecache.NewMemoryDocument(), log)
	require.NoError(t, tree.Init(context.Background()))
	tx := aggregates.NewGormTxRunner(db)
	menus := repos.NewMenuRepo(db, log)
	submenus := repos.NewSubmenuRepo(db, log)
	dishes := repos.NewDishRepo(db, log)
	counterRepo := repos.NewCounterRepo(db, log)
	counters := services.NewCounterPropagator(counterRepo, tree, log)
	catalogSvc := services.NewCatalogService(log, services.NewTreeBuilder(repos.NewTreeRepo(db, log), log), tree)

	return NewRouter(RouterConfig{
		Log:            log,
		MenuHandler:    httpH.NewMenuHandler(services.NewMenuSyncService(log, tx, menus, tree, counters)),
		SubmenuHandler: httpH.NewSubmenuHandler(services.NewSubmenuSyncService(log, tx, menus, submenus, tree, counters)),
		DishHandler:    httpH.NewDishHandler(services.NewDishSyncService(log, tx, submenus, dishes, tree, counters)),
		CatalogHandler: httpH.NewCatalogHandler(catalogSvc),
		AdminHandler:   httpH.NewAdminHandler(catalogSvc, nil),
		HealthHandler:  httpH.NewHealthHandler(),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouter_CatalogLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/menus", map[string]string{"title": "Lunch", "description": "Midday"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	menu := decode[catalog.MenuView](t, rec)
	require.NotEmpty(t, menu.ID)

	rec = do(t, r, http.MethodPost, "/api/v1/menus/"+menu.ID+"/submenus", map[string]string{"title": "L1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[catalog.SubmenuView](t, rec)

	dishPath := "/api/v1/menus/" + menu.ID + "/submenus/" + sub.ID + "/dishes"
	rec = do(t, r, http.MethodPost, dishPath, map[string]string{"title": "Soup", "price": "4.50"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dish := decode[catalog.DishView](t, rec)
	assert.Equal(t, "4.50", dish.Price)

	rec = do(t, r, http.MethodGet, "/api/v1/menus/"+menu.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[catalog.MenuView](t, rec)
	assert.Equal(t, int64(1), got.SubmenusCount)
	assert.Equal(t, int64(1), got.DishesCount)

	rec = do(t, r, http.MethodPatch, dishPath+"/"+dish.ID, map[string]string{"title": "Soup", "price": "5.00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "5.00", decode[catalog.DishView](t, rec).Price)

	rec = do(t, r, http.MethodGet, "/api/v1/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]catalog.MenuNode](t, rec)
	require.Len(t, all, 1)
	require.Len(t, all[0].Submenus, 1)
	assert.Len(t, all[0].Submenus[0].Dishes, 1)

	rec = do(t, r, http.MethodDelete, "/api/v1/menus/"+menu.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, dishPath+"/"+dish.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decode[response.ErrorEnvelope](t, rec)
	assert.Equal(t, "dish not found", env.Error.Message)
	assert.Equal(t, "not_found", env.Error.Code)

	rec = do(t, r, http.MethodGet, "/api/v1/menus", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRouter_ErrorMapping(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/v1/menus/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "menu not found", decode[response.ErrorEnvelope](t, rec).Error.Message)

	rec = do(t, r, http.MethodGet, "/api/v1/menus/nope/submenus/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "submenu not found", decode[response.ErrorEnvelope](t, rec).Error.Message)

	rec = do(t, r, http.MethodPost, "/api/v1/menus", map[string]string{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/menus", map[string]string{"id": "m1", "title": "A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, r, http.MethodPost, "/api/v1/menus", map[string]string{"id": "m1", "title": "B"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/menus/m1/submenus", map[string]string{"id": "s1", "title": "S"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, r, http.MethodPost, "/api/v1/menus/m1/submenus/s1/dishes", map[string]string{"title": "x", "price": "cheap"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/admin/reconcile", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/v1/admin/reseed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tree":{"menus":1,"submenus":1,"dishes":0}}`, rec.Body.String())
}

func TestRouter_Healthcheck(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestStatusFor(t *testing.T) {
	cases := map[catalog.ErrorCode]int{
		catalog.CodeNotFound:            http.StatusNotFound,
		catalog.CodeConstraintViolation: http.StatusConflict,
		catalog.CodeSyncError:           http.StatusServiceUnavailable,
		catalog.CodeInternal:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := response.StatusFor(catalog.NewError(code, "op", "msg", nil)); got != want {
			t.Fatalf("%s: got %d want %d", code, got, want)
		}
	}
}
