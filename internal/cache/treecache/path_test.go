package treecache

import "testing"

func TestPathJSONPath(t *testing.T) {
	cases := []struct {
		path     Path
		node     string
		children string
	}{
		{nil, "$", "$"},
		{MenuPath("m"), `$[?(@.id=="m")]`, `$[?(@.id=="m")].submenus`},
		{SubmenuPath("m", "s"), `$[?(@.id=="m")].submenus[?(@.id=="s")]`, `$[?(@.id=="m")].submenus[?(@.id=="s")].dishes`},
		{DishPath("m", "s", "d"), `$[?(@.id=="m")].submenus[?(@.id=="s")].dishes[?(@.id=="d")]`, ""},
	}
	for _, tc := range cases {
		if got := tc.path.JSONPath(); got != tc.node {
			t.Fatalf("JSONPath(%v): got %s want %s", tc.path, got, tc.node)
		}
		if tc.children == "" {
			continue
		}
		if got := tc.path.ChildrenJSONPath(); got != tc.children {
			t.Fatalf("ChildrenJSONPath(%v): got %s want %s", tc.path, got, tc.children)
		}
	}
}

func TestPathQuotesIDs(t *testing.T) {
	got := MenuPath(`a"b`).JSONPath()
	if got != `$[?(@.id=="a\"b")]` {
		t.Fatalf("ids must be quoted, got %s", got)
	}
	if DishPath("m", "s", "d").Parent().String() != "/m/s" {
		t.Fatalf("Parent: %s", DishPath("m", "s", "d").Parent())
	}
}
