package treecache

import (
	"strconv"
	"strings"
)

// Path addresses a node by the ids of the node and its ancestors, menu
// first. The empty Path is the document root.
type Path []string

func MenuPath(menuID string) Path { return Path{menuID} }

func SubmenuPath(menuID, submenuID string) Path { return Path{menuID, submenuID} }

func DishPath(menuID, submenuID, dishID string) Path { return Path{menuID, submenuID, dishID} }

func (p Path) Depth() int { return len(p) }

func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// childKey names the array holding the children of a node at depth.
func childKey(depth int) string {
	switch depth {
	case 1:
		return "submenus"
	case 2:
		return "dishes"
	default:
		return ""
	}
}

// JSONPath renders p as a filter expression, one equality predicate per
// level: $[?(@.id=="m")].submenus[?(@.id=="s")].
func (p Path) JSONPath() string {
	var b strings.Builder
	b.WriteString("$")
	for i, id := range p {
		if i > 0 {
			b.WriteString(".")
			b.WriteString(childKey(i))
		}
		b.WriteString("[?(@.id==")
		b.WriteString(strconv.Quote(id))
		b.WriteString(")]")
	}
	return b.String()
}

// ChildrenJSONPath addresses the children array of the node at p.
func (p Path) ChildrenJSONPath() string {
	if len(p) == 0 {
		return "$"
	}
	return p.JSONPath() + "." + childKey(len(p))
}

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}
