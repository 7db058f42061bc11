package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

const upsertBatchSize = 200

type MenuRepo interface {
	Create(dbc dbctx.Context, menu *types.Menu) (*types.Menu, error)
	GetByID(dbc dbctx.Context, id string) (*types.Menu, error)
	ListAll(dbc dbctx.Context) ([]*types.Menu, error)
	Update(dbc dbctx.Context, id string, in types.MenuInput) (int64, error)
	Delete(dbc dbctx.Context, id string) (int64, error)
	IDs(dbc dbctx.Context) ([]string, error)
	DeleteByIDs(dbc dbctx.Context, ids []string) (int64, error)
	Upsert(dbc dbctx.Context, menus []*types.Menu) error
}

type menuRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMenuRepo(db *gorm.DB, baseLog *logger.Logger) MenuRepo {
	return &menuRepo{
		db:  db,
		log: baseLog.With("repo", "MenuRepo"),
	}
}

func (r *menuRepo) Create(dbc dbctx.Context, menu *types.Menu) (*types.Menu, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(menu).Error; err != nil {
		return nil, err
	}
	return menu, nil
}

// GetByID returns nil, nil when the menu does not exist.
func (r *menuRepo) GetByID(dbc dbctx.Context, id string) (*types.Menu, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Menu
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *menuRepo) ListAll(dbc dbctx.Context) ([]*types.Menu, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Menu
	if err := transaction.WithContext(dbc.Ctx).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *menuRepo) Update(dbc dbctx.Context, id string, in types.MenuInput) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Menu{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       in.Title,
			"description": in.Description,
		})
	return res.RowsAffected, res.Error
}

// Delete removes the menu; submenus and dishes go with it through the
// cascading foreign keys.
func (r *menuRepo) Delete(dbc dbctx.Context, id string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Menu{})
	return res.RowsAffected, res.Error
}

func (r *menuRepo) IDs(dbc dbctx.Context) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []string
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Menu{}).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *menuRepo) DeleteByIDs(dbc dbctx.Context, ids []string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Menu{})
	return res.RowsAffected, res.Error
}

func (r *menuRepo) Upsert(dbc dbctx.Context, menus []*types.Menu) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(menus) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).
		CreateInBatches(menus, upsertBatchSize).Error
}
