package db

import (
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// AutoMigrateAll creates the three catalog tables. Order matters: parents
// first so the cascading foreign keys can be attached.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Menu{},
		&catalog.Submenu{},
		&catalog.Dish{},
	)
}
