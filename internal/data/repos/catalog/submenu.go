package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

type SubmenuRepo interface {
	Create(dbc dbctx.Context, submenu *types.Submenu) (*types.Submenu, error)
	GetScoped(dbc dbctx.Context, menuID, id string) (*types.Submenu, error)
	ListByMenu(dbc dbctx.Context, menuID string) ([]*types.Submenu, error)
	ListAll(dbc dbctx.Context) ([]*types.Submenu, error)
	Update(dbc dbctx.Context, menuID, id string, in types.SubmenuInput) (int64, error)
	Delete(dbc dbctx.Context, menuID, id string) (int64, error)
	ParentIndex(dbc dbctx.Context) (map[string]string, error)
	DeleteByIDs(dbc dbctx.Context, ids []string) (int64, error)
	Upsert(dbc dbctx.Context, submenus []*types.Submenu) error
}

type submenuRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmenuRepo(db *gorm.DB, baseLog *logger.Logger) SubmenuRepo {
	return &submenuRepo{
		db:  db,
		log: baseLog.With("repo", "SubmenuRepo"),
	}
}

func (r *submenuRepo) Create(dbc dbctx.Context, submenu *types.Submenu) (*types.Submenu, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Omit(clause.Associations).Create(submenu).Error; err != nil {
		return nil, err
	}
	return submenu, nil
}

// GetScoped returns nil, nil unless a submenu with this id exists under menuID.
func (r *submenuRepo) GetScoped(dbc dbctx.Context, menuID, id string) (*types.Submenu, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Submenu
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND menu_id = ?", id, menuID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *submenuRepo) ListByMenu(dbc dbctx.Context, menuID string) ([]*types.Submenu, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Submenu
	if err := transaction.WithContext(dbc.Ctx).
		Where("menu_id = ?", menuID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *submenuRepo) ListAll(dbc dbctx.Context) ([]*types.Submenu, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Submenu
	if err := transaction.WithContext(dbc.Ctx).
		Order("menu_id ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update touches title and description only; menu_id is immutable here.
func (r *submenuRepo) Update(dbc dbctx.Context, menuID, id string, in types.SubmenuInput) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Submenu{}).
		Where("id = ? AND menu_id = ?", id, menuID).
		Updates(map[string]interface{}{
			"title":       in.Title,
			"description": in.Description,
		})
	return res.RowsAffected, res.Error
}

func (r *submenuRepo) Delete(dbc dbctx.Context, menuID, id string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND menu_id = ?", id, menuID).
		Delete(&types.Submenu{})
	return res.RowsAffected, res.Error
}

// ParentIndex maps every submenu id to its menu id.
func (r *submenuRepo) ParentIndex(dbc dbctx.Context) (map[string]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		ID     string
		MenuID string
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Submenu{}).
		Select("id, menu_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.MenuID
	}
	return out, nil
}

func (r *submenuRepo) DeleteByIDs(dbc dbctx.Context, ids []string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Submenu{})
	return res.RowsAffected, res.Error
}

// Upsert inserts or overwrites by id. The menu_id column is included in the
// update set so a feed can move a submenu between menus.
func (r *submenuRepo) Upsert(dbc dbctx.Context, submenus []*types.Submenu) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(submenus) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "menu_id"}),
		}).
		CreateInBatches(submenus, upsertBatchSize).Error
}
