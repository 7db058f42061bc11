package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/yungbote/menusync-backend/internal/domain/catalog"
)

// Kind is the classification of one feed row.
type Kind string

const (
	KindMenu    Kind = "menu"
	KindSubmenu Kind = "submenu"
	KindDish    Kind = "dish"
	KindNone    Kind = ""
)

// Feed rows are indented by level: a menu starts in column 0, a submenu in
// column 1 and a dish in column 2. A dish carries its price in column 5 and
// may carry a discount percentage in column 6.
const (
	menuCol      = 0
	submenuCol   = 1
	dishCol      = 2
	priceCol     = 5
	discountCol  = 6
	menuWidth    = 3
	submenuWidth = 4
	dishWidth    = 6
)

// Result is a parsed feed.
type Result struct {
	Snapshot catalog.Snapshot
	Rows     int
	// Skipped holds one parse_error per ignored row; it never fails a run.
	Skipped *multierror.Error
}

func (r *Result) SkippedCount() int {
	if r.Skipped == nil {
		return 0
	}
	return len(r.Skipped.Errors)
}

// Classify tries the menu, submenu and dish shapes in that order against
// their column slices and returns the first that fits.
func Classify(row []string) Kind {
	switch {
	case fitsMenu(row):
		return KindMenu
	case fitsSubmenu(row):
		return KindSubmenu
	case fitsDish(row):
		return KindDish
	default:
		return KindNone
	}
}

func fitsMenu(row []string) bool {
	return len(row) >= menuWidth && cell(row, menuCol) != ""
}

func fitsSubmenu(row []string) bool {
	return len(row) >= submenuWidth && cell(row, menuCol) == "" && cell(row, submenuCol) != ""
}

func fitsDish(row []string) bool {
	return len(row) >= dishWidth &&
		cell(row, menuCol) == "" &&
		cell(row, submenuCol) == "" &&
		cell(row, dishCol) != "" &&
		ValidPrice(cell(row, priceCol))
}

// headerLabels are the leading cell values of a column header row. No menu,
// submenu or dish id takes these values.
var headerLabels = map[string]struct{}{
	"id":         {},
	"menu":       {},
	"menu_id":    {},
	"menu id":    {},
	"submenu":    {},
	"submenu_id": {},
	"dish":       {},
	"dish_id":    {},
}

// isHeader reports whether the first non-empty cell of row is a header label.
func isHeader(row []string) bool {
	for i := range row {
		if c := cell(row, i); c != "" {
			_, ok := headerLabels[strings.ToLower(c)]
			return ok
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Parse reads a CSV feed. Submenu rows attach to the last menu seen and dish
// rows to the last submenu seen. A column header as the first non-blank row
// is dropped. Rows that fit no shape, lack a parent or repeat an id are
// skipped and recorded in Result.Skipped, as is a header row further down.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	res := &Result{}
	seen := map[Kind]map[string]struct{}{
		KindMenu:    {},
		KindSubmenu: {},
		KindDish:    {},
	}
	var curMenu, curSubmenu string
	first := true
	skip := func(line int, msg string) {
		res.Skipped = multierror.Append(res.Skipped,
			catalog.ParseError("feed.parse", fmt.Sprintf("line %d: %s", line, msg)))
	}

	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skip(line, perr.Error())
				continue
			}
			return nil, fmt.Errorf("read feed: %w", err)
		}
		if isHeader(row) {
			if !first {
				skip(line, "header row inside the feed")
			}
			first = false
			continue
		}
		if !blank(row) {
			first = false
		}
		res.Rows++

		kind := Classify(row)
		var id string
		switch kind {
		case KindMenu:
			id = cell(row, menuCol)
		case KindSubmenu:
			id = cell(row, submenuCol)
		case KindDish:
			id = cell(row, dishCol)
		default:
			if !blank(row) {
				skip(line, "row matches no menu, submenu or dish shape")
			}
			continue
		}
		if _, dup := seen[kind][id]; dup {
			skip(line, fmt.Sprintf("duplicate %s id %q", kind, id))
			continue
		}

		switch kind {
		case KindMenu:
			res.Snapshot.Menus = append(res.Snapshot.Menus, &catalog.Menu{
				ID:          id,
				Title:       cell(row, menuCol+1),
				Description: cell(row, menuCol+2),
			})
			curMenu, curSubmenu = id, ""
		case KindSubmenu:
			if curMenu == "" {
				skip(line, fmt.Sprintf("submenu %q has no preceding menu", id))
				continue
			}
			res.Snapshot.Submenus = append(res.Snapshot.Submenus, &catalog.Submenu{
				ID:          id,
				Title:       cell(row, submenuCol+1),
				Description: cell(row, submenuCol+2),
				MenuID:      curMenu,
			})
			curSubmenu = id
		case KindDish:
			if curSubmenu == "" {
				skip(line, fmt.Sprintf("dish %q has no preceding submenu", id))
				continue
			}
			price := cell(row, priceCol)
			if discounted, ok := ApplyDiscount(price, cell(row, discountCol)); ok {
				price = discounted
			}
			res.Snapshot.Dishes = append(res.Snapshot.Dishes, &catalog.Dish{
				ID:          id,
				Title:       cell(row, dishCol+1),
				Description: cell(row, dishCol+2),
				Price:       price,
				SubmenuID:   curSubmenu,
			})
		}
		seen[kind][id] = struct{}{}
	}
	return res, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
