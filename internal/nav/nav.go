// Package nav reduces the static navigation tree to what a user may see.
package nav

import (
	"github.com/charmbracelet/lipgloss/tree"
)

// Item is one navigation entry. An item without RequiredGroups is public.
type Item struct {
	Name           string   `json:"name" yaml:"name"`
	Href           string   `json:"href,omitempty" yaml:"href,omitempty"`
	Icon           string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	HasSubmenu     bool     `json:"has_submenu,omitempty" yaml:"has_submenu,omitempty"`
	Submenu        []Item   `json:"submenu,omitempty" yaml:"submenu,omitempty"`
	RequiredGroups []string `json:"required_groups,omitempty" yaml:"required_groups,omitempty"`
	Disabled       bool     `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Visible reports whether a caller holding groups may see item. Submenus are
// not consulted.
func Visible(item Item, groups []string) bool {
	if len(item.RequiredGroups) == 0 {
		return true
	}
	for _, required := range item.RequiredGroups {
		for _, g := range groups {
			if g == required {
				return true
			}
		}
	}
	return false
}

// Filter returns the items visible to groups, applying the same rule to each
// submenu. Order is preserved and the input is not modified. A parent may
// survive with an empty submenu.
func Filter(items []Item, groups []string) []Item {
	return filter(items, func(item Item) bool { return Visible(item, groups) })
}

// Policy is the single place the admin bypass is decided.
type Policy struct {
	// AdminGroup names the group that may bypass RequiredGroups.
	AdminGroup string
	// AdminOverride lets AdminGroup members see every item.
	AdminOverride bool
}

// IsAdmin reports whether groups contains the admin group.
func (p Policy) IsAdmin(groups []string) bool {
	if p.AdminGroup == "" {
		return false
	}
	for _, g := range groups {
		if g == p.AdminGroup {
			return true
		}
	}
	return false
}

// Allows reports whether item is visible under the policy.
func (p Policy) Allows(item Item, groups []string) bool {
	if p.AdminOverride && p.IsAdmin(groups) {
		return true
	}
	return Visible(item, groups)
}

// Filter is Filter with the policy's admin bypass applied.
func (p Policy) Filter(items []Item, groups []string) []Item {
	return filter(items, func(item Item) bool { return p.Allows(item, groups) })
}

func filter(items []Item, keep func(Item) bool) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !keep(item) {
			continue
		}
		copied := item
		copied.RequiredGroups = append([]string(nil), item.RequiredGroups...)
		if item.Submenu != nil {
			copied.Submenu = filter(item.Submenu, keep)
		}
		out = append(out, copied)
	}
	return out
}

// Render draws items as a tree under a "Navigation" root.
func Render(items []Item) string {
	root := tree.Root("Navigation")
	for _, item := range items {
		root.Child(node(item))
	}
	return root.String()
}

func node(item Item) any {
	label := item.Name
	if item.Href != "" {
		label += "  " + item.Href
	}
	if item.Disabled {
		label += "  (disabled)"
	}
	if len(item.Submenu) == 0 && !item.HasSubmenu {
		return label
	}

	t := tree.Root(label)
	for _, child := range item.Submenu {
		t.Child(node(child))
	}
	return t
}
