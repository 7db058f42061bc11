package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/menusync-backend/internal/domain/catalog"
)

func TestClassify_ThreeRowScenario(t *testing.T) {
	rows := [][]string{
		{"id-1", "Lunch", "Lunch desc"},
		{"", "id-2", "Mains", "Mains desc"},
		{"", "", "id-3", "Burger", "A burger", "9.99"},
	}
	assert.Equal(t, KindMenu, Classify(rows[0]))
	assert.Equal(t, KindSubmenu, Classify(rows[1]))
	assert.Equal(t, KindDish, Classify(rows[2]))

	assert.Equal(t, KindNone, Classify([]string{"", "", "id-4", "Soup", "Hot", "not-a-price"}))
	assert.Equal(t, KindNone, Classify([]string{"id-5", "short"}))
}

func TestParse_InheritsParents(t *testing.T) {
	in := strings.Join([]string{
		"id-1,Lunch,Lunch desc",
		",id-2,Mains,Mains desc",
		",,id-3,Burger,A burger,9.99",
		",,id-4,Fries,Salty,3.50",
		",id-5,Drinks,Cold",
		",,id-6,Cola,Fizzy,2.00",
		"id-7,Dinner,Evening",
	}, "\n")

	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 0, res.SkippedCount())
	require.Len(t, res.Snapshot.Menus, 2)
	require.Len(t, res.Snapshot.Submenus, 2)
	require.Len(t, res.Snapshot.Dishes, 3)

	assert.Equal(t, "id-1", res.Snapshot.Submenus[0].MenuID)
	assert.Equal(t, "id-1", res.Snapshot.Submenus[1].MenuID)
	assert.Equal(t, "id-2", res.Snapshot.Dishes[0].SubmenuID)
	assert.Equal(t, "id-2", res.Snapshot.Dishes[1].SubmenuID)
	assert.Equal(t, "id-5", res.Snapshot.Dishes[2].SubmenuID)
	assert.Equal(t, "9.99", res.Snapshot.Dishes[0].Price)
	assert.Equal(t, "Lunch desc", res.Snapshot.Menus[0].Description)
}

func TestParse_SkipsBadRows(t *testing.T) {
	in := strings.Join([]string{
		",orphan-sub,No menu,yet",
		",,orphan-dish,No submenu,yet,1.00",
		"id-1,Lunch,Lunch desc",
		",,early-dish,Before submenu,x,1.00",
		",id-2,Mains,Mains desc",
		",,id-3,Burger,A burger,abc",
		",,id-4,Fries,Salty,3.50",
		",,id-4,Fries again,Salty,3.50",
		",,,",
	}, "\n")

	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Snapshot.Menus, 1)
	require.Len(t, res.Snapshot.Submenus, 1)
	require.Len(t, res.Snapshot.Dishes, 1)
	assert.Equal(t, "id-4", res.Snapshot.Dishes[0].ID)

	// orphan-sub, orphan-dish, early-dish, bad price, duplicate id-4.
	require.Equal(t, 5, res.SkippedCount())
	for _, e := range res.Skipped.Errors {
		assert.True(t, catalog.IsCode(e, catalog.CodeParseError), "unexpected error kind: %v", e)
	}
}

func TestParse_DropsHeaderRow(t *testing.T) {
	in := strings.Join([]string{
		"id,title,description",
		"id-1,Lunch,Lunch desc",
		",id-2,Mains,Mains desc",
		",,id-3,Burger,A burger,9.99",
		"menu_id,title,description",
	}, "\n")

	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Snapshot.Menus, 1)
	assert.Equal(t, "id-1", res.Snapshot.Menus[0].ID)
	assert.Equal(t, 3, res.Rows)

	// only the header past the first row is reported
	require.Equal(t, 1, res.SkippedCount())
	assert.Contains(t, res.Skipped.Errors[0].Error(), "line 5")

	assert.True(t, isHeader([]string{"", "Submenu_ID", "title"}))
	assert.False(t, isHeader([]string{"id-1", "Lunch", "Lunch desc"}))
	assert.False(t, isHeader([]string{"", "", ""}))
}

func TestParse_AppliesDiscount(t *testing.T) {
	in := strings.Join([]string{
		"m,Lunch,",
		",s,Mains,",
		",,d1,Burger,,10.00,15",
		",,d2,Steak,,19.99,bogus",
		",,d3,Soup,,5.5",
	}, "\n")
	res, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, res.Snapshot.Dishes, 3)
	assert.Equal(t, "8.50", res.Snapshot.Dishes[0].Price)
	assert.Equal(t, "19.99", res.Snapshot.Dishes[1].Price)
	assert.Equal(t, "5.5", res.Snapshot.Dishes[2].Price)
}

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		price, pct, want string
		applied          bool
	}{
		{"10.00", "10", "9.00", true},
		{"9.99", "33", "6.69", true},
		{"0.05", "50", "0.03", true},
		{"12.50", "10%", "11.25", true},
		{"10.00", "", "10.00", false},
		{"10.00", "0", "10.00", false},
		{"10.00", "150", "10.00", false},
		{"10.00", "-5", "10.00", false},
	}
	for _, tc := range cases {
		got, ok := ApplyDiscount(tc.price, tc.pct)
		assert.Equal(t, tc.want, got, "price=%s pct=%s", tc.price, tc.pct)
		assert.Equal(t, tc.applied, ok, "price=%s pct=%s", tc.price, tc.pct)
	}
}
