package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

type DishRepo interface {
	Create(dbc dbctx.Context, dish *types.Dish) (*types.Dish, error)
	GetScoped(dbc dbctx.Context, menuID, submenuID, id string) (*types.Dish, error)
	ListBySubmenu(dbc dbctx.Context, submenuID string) ([]*types.Dish, error)
	ListAll(dbc dbctx.Context) ([]*types.Dish, error)
	Update(dbc dbctx.Context, menuID, submenuID, id string, in types.DishInput) (int64, error)
	Delete(dbc dbctx.Context, menuID, submenuID, id string) (int64, error)
	ParentIndex(dbc dbctx.Context) (map[string]string, error)
	DeleteByIDs(dbc dbctx.Context, ids []string) (int64, error)
	Upsert(dbc dbctx.Context, dishes []*types.Dish) error
}

type dishRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDishRepo(db *gorm.DB, baseLog *logger.Logger) DishRepo {
	return &dishRepo{
		db:  db,
		log: baseLog.With("repo", "DishRepo"),
	}
}

func (r *dishRepo) Create(dbc dbctx.Context, dish *types.Dish) (*types.Dish, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Omit(clause.Associations).Create(dish).Error; err != nil {
		return nil, err
	}
	return dish, nil
}

// scope restricts a dish query to submenuID, itself under menuID.
func (r *dishRepo) scope(tx *gorm.DB, menuID, submenuID string) *gorm.DB {
	owned := tx.Session(&gorm.Session{NewDB: true}).
		Model(&types.Submenu{}).
		Select("id").
		Where("id = ? AND menu_id = ?", submenuID, menuID)
	return tx.Where("submenu_id IN (?)", owned)
}

// GetScoped returns nil, nil unless the dish exists at menuID/submenuID.
func (r *dishRepo) GetScoped(dbc dbctx.Context, menuID, submenuID, id string) (*types.Dish, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Dish
	q := transaction.WithContext(dbc.Ctx).Where("id = ?", id)
	if err := r.scope(q, menuID, submenuID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *dishRepo) ListBySubmenu(dbc dbctx.Context, submenuID string) ([]*types.Dish, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Dish
	if err := transaction.WithContext(dbc.Ctx).
		Where("submenu_id = ?", submenuID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dishRepo) ListAll(dbc dbctx.Context) ([]*types.Dish, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Dish
	if err := transaction.WithContext(dbc.Ctx).
		Order("submenu_id ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update touches title, description and price; submenu_id is immutable here.
func (r *dishRepo) Update(dbc dbctx.Context, menuID, submenuID, id string, in types.DishInput) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Dish{}).Where("id = ?", id)
	res := r.scope(q, menuID, submenuID).
		Updates(map[string]interface{}{
			"title":       in.Title,
			"description": in.Description,
			"price":       in.Price,
		})
	return res.RowsAffected, res.Error
}

func (r *dishRepo) Delete(dbc dbctx.Context, menuID, submenuID, id string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Where("id = ?", id)
	res := r.scope(q, menuID, submenuID).Delete(&types.Dish{})
	return res.RowsAffected, res.Error
}

// ParentIndex maps every dish id to its submenu id.
func (r *dishRepo) ParentIndex(dbc dbctx.Context) (map[string]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		ID        string
		SubmenuID string
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Dish{}).
		Select("id, submenu_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.SubmenuID
	}
	return out, nil
}

func (r *dishRepo) DeleteByIDs(dbc dbctx.Context, ids []string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Dish{})
	return res.RowsAffected, res.Error
}

func (r *dishRepo) Upsert(dbc dbctx.Context, dishes []*types.Dish) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(dishes) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "price", "submenu_id"}),
		}).
		CreateInBatches(dishes, upsertBatchSize).Error
}
