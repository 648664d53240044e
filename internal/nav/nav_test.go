package nav

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestVisible(t *testing.T) {
	finance := Item{Name: "Finance", RequiredGroups: []string{"Finance Managers", "Finance Viewers", "Admin"}}
	team := Item{Name: "Team"}

	assert.True(t, Visible(finance, []string{"Finance Viewers"}))
	assert.False(t, Visible(finance, []string{"Team Leads"}))
	assert.False(t, Visible(finance, nil))
	assert.True(t, Visible(team, nil))
	assert.True(t, Visible(team, []string{"anything"}))
}

func TestFilterDefaultTree(t *testing.T) {
	tests := []struct {
		name   string
		groups []string
		top    []string
		sub    []string
	}{
		{
			name:   "no groups",
			groups: nil,
			top:    []string{"Dashboard", "Projects", "Team"},
		},
		{
			name:   "finance viewer",
			groups: []string{"Finance Viewers"},
			top:    []string{"Dashboard", "Projects", "Finance", "Team"},
			sub:    []string{"Wallets", "Transactions", "Subscriptions"},
		},
		{
			name:   "finance manager",
			groups: []string{"Finance Managers"},
			top:    []string{"Dashboard", "Projects", "Finance", "Team"},
			sub:    []string{"Wallets", "Transactions", "Budgets", "Subscriptions", "Savings Goals"},
		},
		{
			name:   "admin listed explicitly",
			groups: []string{"Admin"},
			top:    []string{"Dashboard", "Projects", "Portfolio", "Finance", "Team", "Admin"},
			sub:    []string{"Wallets", "Transactions", "Budgets", "Subscriptions", "Savings Goals"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(DefaultTree(), tt.groups)
			assert.Equal(t, tt.top, names(got))
			for _, item := range got {
				if item.Name == "Finance" {
					assert.Equal(t, tt.sub, names(item.Submenu))
				}
			}
		})
	}
}

func TestFilterKeepsParentWithNoVisibleChildren(t *testing.T) {
	items := []Item{{
		Name:    "Reports",
		Submenu: []Item{{Name: "Secret", RequiredGroups: []string{"Auditors"}}},
	}}

	got := Filter(items, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Reports", got[0].Name)
	assert.Empty(t, got[0].Submenu)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	tree := DefaultTree()
	before := DefaultTree()

	got := Filter(tree, []string{"Finance Viewers"})
	got[0].Name = "changed"
	for i := range got {
		if got[i].Submenu != nil {
			got[i].Submenu[0].Name = "changed"
		}
	}

	assert.Equal(t, before, tree)
}

func TestFilterIsDeterministic(t *testing.T) {
	groups := []string{"Finance Viewers", "Portfolio Editors"}
	first := Filter(DefaultTree(), groups)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Filter(DefaultTree(), groups))
	}
}

// TestFilterMatchesDefinition checks random trees against a direct restatement
// of the rule: keep exactly the items whose required groups are empty or
// intersect the caller's groups, recursively, in order.
func TestFilterMatchesDefinition(t *testing.T) {
	universe := []string{"A", "B", "C", "D"}
	rng := rand.New(rand.NewSource(7))

	randomGroups := func() []string {
		var out []string
		for _, g := range universe {
			if rng.Intn(2) == 0 {
				out = append(out, g)
			}
		}
		return out
	}

	var randomItems func(depth int) []Item
	randomItems = func(depth int) []Item {
		n := rng.Intn(5)
		items := make([]Item, 0, n)
		for i := 0; i < n; i++ {
			item := Item{Name: string(rune('a' + i))}
			if rng.Intn(3) > 0 {
				item.RequiredGroups = randomGroups()
			}
			if depth < 2 && rng.Intn(2) == 0 {
				item.Submenu = randomItems(depth + 1)
			}
			items = append(items, item)
		}
		return items
	}

	var check func(t *testing.T, in, out []Item, groups []string)
	check = func(t *testing.T, in, out []Item, groups []string) {
		j := 0
		for _, item := range in {
			keep := len(item.RequiredGroups) == 0
			for _, r := range item.RequiredGroups {
				for _, g := range groups {
					keep = keep || r == g
				}
			}
			if !keep {
				continue
			}
			require.Less(t, j, len(out))
			assert.Equal(t, item.Name, out[j].Name)
			check(t, item.Submenu, out[j].Submenu, groups)
			j++
		}
		assert.Equal(t, j, len(out))
	}

	for i := 0; i < 200; i++ {
		items := randomItems(0)
		groups := randomGroups()
		check(t, items, Filter(items, groups), groups)
	}
}

func TestPolicyAdminOverride(t *testing.T) {
	items := []Item{
		{Name: "Public"},
		{Name: "Audit", RequiredGroups: []string{"Auditors"}},
	}
	admin := []string{"Admin"}

	assert.Equal(t, []string{"Public"}, names(Filter(items, admin)), "plain filter has no bypass")

	on := Policy{AdminGroup: "Admin", AdminOverride: true}
	assert.Equal(t, []string{"Public", "Audit"}, names(on.Filter(items, admin)))
	assert.Equal(t, []string{"Public"}, names(on.Filter(items, []string{"Team"})))

	off := Policy{AdminGroup: "Admin"}
	assert.Equal(t, []string{"Public"}, names(off.Filter(items, admin)))
	assert.True(t, off.IsAdmin(admin))
	assert.False(t, Policy{}.IsAdmin(admin))
}

func TestRender(t *testing.T) {
	out := Render(Filter(DefaultTree(), []string{"Finance Viewers"}))

	assert.True(t, strings.HasPrefix(out, "Navigation"))
	for _, want := range []string{"Dashboard  /dashboard", "Finance", "Wallets  /wallet/wallets", "Team"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Admin")
	assert.NotContains(t, out, "Budgets")
}
