package catalog

import (
	"context"
	"testing"

	"github.com/yungbote/menusync-backend/internal/data/repos/testutil"
	types "github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
)

func TestSubmenuRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSubmenuRepo(db, testutil.Logger(t))

	m1 := testutil.SeedMenu(t, ctx, tx, "Lunch")
	m2 := testutil.SeedMenu(t, ctx, tx, "Dinner")

	s := &types.Submenu{ID: "s-1", Title: "Mains", MenuID: m1.ID}
	if _, err := repo.Create(dbc, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetScoped(dbc, m1.ID, "s-1"); err != nil || got == nil {
		t.Fatalf("GetScoped: err=%v got=%+v", err, got)
	}
	if got, err := repo.GetScoped(dbc, m2.ID, "s-1"); err != nil || got != nil {
		t.Fatalf("GetScoped under wrong menu: err=%v got=%+v", err, got)
	}

	if n, err := repo.Update(dbc, m2.ID, "s-1", types.SubmenuInput{Title: "x"}); err != nil || n != 0 {
		t.Fatalf("Update under wrong menu: err=%v rows=%d", err, n)
	}
	if n, err := repo.Update(dbc, m1.ID, "s-1", types.SubmenuInput{Title: "Sides", Description: "small"}); err != nil || n != 1 {
		t.Fatalf("Update: err=%v rows=%d", err, n)
	}

	rows, err := repo.ListByMenu(dbc, m1.ID)
	if err != nil || len(rows) != 1 || rows[0].Title != "Sides" {
		t.Fatalf("ListByMenu: err=%v rows=%+v", err, rows)
	}
	if rows, err := repo.ListByMenu(dbc, m2.ID); err != nil || len(rows) != 0 {
		t.Fatalf("ListByMenu(empty): err=%v len=%d", err, len(rows))
	}

	// Upsert moves s-1 to m2 and adds s-2.
	if err := repo.Upsert(dbc, []*types.Submenu{
		{ID: "s-1", Title: "Sides", MenuID: m2.ID},
		{ID: "s-2", Title: "Drinks", MenuID: m1.ID},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	idx, err := repo.ParentIndex(dbc)
	if err != nil {
		t.Fatalf("ParentIndex: %v", err)
	}
	if idx["s-1"] != m2.ID || idx["s-2"] != m1.ID {
		t.Fatalf("ParentIndex: %v", idx)
	}

	if n, err := repo.Delete(dbc, m1.ID, "s-1"); err != nil || n != 0 {
		t.Fatalf("Delete under wrong menu: err=%v rows=%d", err, n)
	}
	if n, err := repo.Delete(dbc, m2.ID, "s-1"); err != nil || n != 1 {
		t.Fatalf("Delete: err=%v rows=%d", err, n)
	}
	if n, err := repo.DeleteByIDs(dbc, []string{"s-2", "missing"}); err != nil || n != 1 {
		t.Fatalf("DeleteByIDs: err=%v rows=%d", err, n)
	}
	if all, err := repo.ListAll(dbc); err != nil || len(all) != 0 {
		t.Fatalf("ListAll: err=%v len=%d", err, len(all))
	}
}

func TestSubmenuRepo_MissingMenuViolatesForeignKey(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewSubmenuRepo(db, testutil.Logger(t))

	if _, err := repo.Create(dbc, &types.Submenu{ID: "s-x", Title: "orphan", MenuID: "ghost"}); err == nil {
		t.Fatalf("expected foreign key violation")
	}
}
