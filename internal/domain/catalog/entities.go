package catalog

// Menu is the persisted top-level row.
type Menu struct {
	ID          string `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title       string `gorm:"column:title;not null;default:''" json:"title"`
	Description string `gorm:"column:description;not null;default:''" json:"description"`
}

func (Menu) TableName() string { return "menu" }

// Submenu is the persisted second-level row. MenuID is fixed at creation
// for API writes; only reconciliation may move it.
type Submenu struct {
	ID          string `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title       string `gorm:"column:title;not null;default:''" json:"title"`
	Description string `gorm:"column:description;not null;default:''" json:"description"`
	MenuID      string `gorm:"column:menu_id;type:varchar(64);not null;index" json:"menu_id"`

	Menu *Menu `gorm:"foreignKey:MenuID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Submenu) TableName() string { return "submenu" }

// Dish is the persisted leaf row. Price is kept as text so the caller's
// precision survives round trips.
type Dish struct {
	ID          string `gorm:"type:varchar(64);primaryKey" json:"id"`
	Title       string `gorm:"column:title;not null;default:''" json:"title"`
	Description string `gorm:"column:description;not null;default:''" json:"description"`
	Price       string `gorm:"column:price;not null;default:''" json:"price"`
	SubmenuID   string `gorm:"column:submenu_id;type:varchar(64);not null;index" json:"submenu_id"`

	Submenu *Submenu `gorm:"foreignKey:SubmenuID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Dish) TableName() string { return "dish" }

// MenuInput is the writable payload of a menu. ID is honoured on create
// only; an empty ID gets a generated UUID.
type MenuInput struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SubmenuInput is the writable payload of a submenu.
type SubmenuInput struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DishInput is the writable payload of a dish.
type DishInput struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// MenuCounters holds the derived counts of one menu.
type MenuCounters struct {
	MenuID        string `gorm:"column:menu_id"`
	SubmenusCount int64  `gorm:"column:submenus_count"`
	DishesCount   int64  `gorm:"column:dishes_count"`
}

// SubmenuCounters holds the derived count of one submenu.
type SubmenuCounters struct {
	SubmenuID   string `gorm:"column:submenu_id"`
	DishesCount int64  `gorm:"column:dishes_count"`
}

// FlatRow is one row of menu LEFT JOIN submenu LEFT JOIN dish. Submenu and
// dish columns are nil when the outer join produced no match.
type FlatRow struct {
	MenuID          string
	MenuTitle       string
	MenuDescription string

	SubmenuID          *string
	SubmenuTitle       *string
	SubmenuDescription *string
	SubmenuMenuID      *string

	DishID          *string
	DishTitle       *string
	DishDescription *string
	DishPrice       *string
	DishSubmenuID   *string
}

// Snapshot is a complete, externally sourced catalog.
type Snapshot struct {
	Menus    []*Menu
	Submenus []*Submenu
	Dishes   []*Dish
}
