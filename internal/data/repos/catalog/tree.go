package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// TreeRepo produces the flattened outer join the tree is rebuilt from.
type TreeRepo interface {
	FlatRows(dbc dbctx.Context) ([]types.FlatRow, error)
}

type treeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTreeRepo(db *gorm.DB, baseLog *logger.Logger) TreeRepo {
	return &treeRepo{
		db:  db,
		log: baseLog.With("repo", "TreeRepo"),
	}
}

const flatRowsSQL = `
	SELECT menu.id              AS menu_id,
	       menu.title           AS menu_title,
	       menu.description     AS menu_description,
	       submenu.id           AS submenu_id,
	       submenu.title        AS submenu_title,
	       submenu.description  AS submenu_description,
	       submenu.menu_id      AS submenu_menu_id,
	       dish.id              AS dish_id,
	       dish.title           AS dish_title,
	       dish.description     AS dish_description,
	       dish.price           AS dish_price,
	       dish.submenu_id      AS dish_submenu_id
	FROM menu
	LEFT JOIN submenu ON submenu.menu_id = menu.id
	LEFT JOIN dish ON dish.submenu_id = submenu.id
	ORDER BY menu.id, submenu.id, dish.id
`

func (r *treeRepo) FlatRows(dbc dbctx.Context) ([]types.FlatRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []types.FlatRow
	if err := transaction.WithContext(dbc.Ctx).Raw(flatRowsSQL).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
