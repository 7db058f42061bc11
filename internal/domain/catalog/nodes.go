package catalog

// MenuView is the outward representation of a menu.
type MenuView struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	SubmenusCount int64  `json:"submenus_count"`
	DishesCount   int64  `json:"dishes_count"`
}

// SubmenuView is the outward representation of a submenu.
type SubmenuView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DishesCount int64  `json:"dishes_count"`
	MenuID      string `json:"menu_id"`
}

// DishView is the outward representation of a dish.
type DishView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	SubmenuID   string `json:"submenu_id"`
}

// MenuNode is a menu as stored in the tree document.
type MenuNode struct {
	MenuView
	Submenus []SubmenuNode `json:"submenus"`
}

// SubmenuNode is a submenu as stored in the tree document.
type SubmenuNode struct {
	SubmenuView
	Dishes []DishNode `json:"dishes"`
}

// DishNode is a dish as stored in the tree document.
type DishNode struct {
	DishView
}

func NewMenuNode(m *Menu) MenuNode {
	return MenuNode{
		MenuView: MenuView{ID: m.ID, Title: m.Title, Description: m.Description},
		Submenus: []SubmenuNode{},
	}
}

func NewSubmenuNode(s *Submenu) SubmenuNode {
	return SubmenuNode{
		SubmenuView: SubmenuView{ID: s.ID, Title: s.Title, Description: s.Description, MenuID: s.MenuID},
		Dishes:      []DishNode{},
	}
}

func NewDishNode(d *Dish) DishNode {
	return DishNode{DishView: DishView{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		SubmenuID:   d.SubmenuID,
	}}
}

// Counts returns the number of menu, submenu and dish nodes in a tree.
func Counts(tree []MenuNode) (menus, submenus, dishes int) {
	menus = len(tree)
	for _, m := range tree {
		submenus += len(m.Submenus)
		for _, s := range m.Submenus {
			dishes += len(s.Dishes)
		}
	}
	return menus, submenus, dishes
}
