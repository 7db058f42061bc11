package treecache

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// Runs against a Redis Stack instance when TEST_REDIS_ADDR is set.
func TestRedisDocument(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run RedisJSON tests")
	}
	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, Protocol: 2})
	t.Cleanup(func() { _ = rdb.Close() })

	key := "menus-test-" + t.Name()
	_ = rdb.Del(ctx, key).Err()
	t.Cleanup(func() { _ = rdb.Del(context.Background(), key).Err() })

	tree := NewTree(NewRedisDocument(rdb, key, logger.Nop()), logger.Nop())
	if err := tree.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	seedTree(t, tree)

	d, err := tree.Dish(ctx, "m1", "s1", "d1")
	if err != nil || d == nil || d.Price != "9.99" {
		t.Fatalf("Dish: err=%v d=%+v", err, d)
	}
	if n, err := tree.SetMenuCounters(ctx, catalog.MenuCounters{MenuID: "m1", SubmenusCount: 1, DishesCount: 1}); err != nil || n != 1 {
		t.Fatalf("SetMenuCounters: n=%d err=%v", n, err)
	}
	if n, err := tree.SetMenuCounters(ctx, catalog.MenuCounters{MenuID: "ghost"}); err != nil || n != 0 {
		t.Fatalf("SetMenuCounters(ghost): n=%d err=%v", n, err)
	}
	m, err := tree.Menu(ctx, "m1")
	if err != nil || m.DishesCount != 1 {
		t.Fatalf("Menu: err=%v m=%+v", err, m)
	}
	if n, err := tree.DeleteMenu(ctx, "m1"); err != nil || n != 1 {
		t.Fatalf("DeleteMenu: n=%d err=%v", n, err)
	}
	if subs, err := tree.Submenus(ctx, "m1"); err != nil || len(subs) != 0 {
		t.Fatalf("Submenus after delete: err=%v len=%d", err, len(subs))
	}
}
