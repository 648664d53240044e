package nav

// Group names used by the default tree.
const (
	GroupAdmin           = "Admin"
	GroupFinanceManagers = "Finance Managers"
	GroupFinanceViewers  = "Finance Viewers"
	GroupProjectManagers = "Project Managers"
	GroupPortfolioEditor = "Portfolio Editors"
)

var financeGroups = []string{GroupFinanceManagers, GroupFinanceViewers, GroupAdmin}

// DefaultTree returns a fresh copy of the application navigation.
func DefaultTree() []Item {
	return []Item{
		{Name: "Dashboard", Href: "/dashboard", Icon: "home"},
		{Name: "Projects", Href: "/projects", Icon: "folder"},
		{
			Name:           "Portfolio",
			Href:           "/portfolio",
			Icon:           "briefcase",
			RequiredGroups: []string{GroupPortfolioEditor, GroupAdmin},
		},
		{
			Name:           "Finance",
			Icon:           "wallet",
			HasSubmenu:     true,
			RequiredGroups: append([]string(nil), financeGroups...),
			Submenu: []Item{
				{Name: "Wallets", Href: "/wallet/wallets", Icon: "credit-card"},
				{Name: "Transactions", Href: "/wallet/transactions", Icon: "list"},
				{Name: "Budgets", Href: "/wallet/budgets", Icon: "pie-chart", RequiredGroups: []string{GroupFinanceManagers, GroupAdmin}},
				{Name: "Subscriptions", Href: "/wallet/subscriptions", Icon: "repeat"},
				{Name: "Savings Goals", Href: "/wallet/savings-goals", Icon: "target", RequiredGroups: []string{GroupFinanceManagers, GroupAdmin}},
			},
		},
		{Name: "Team", Href: "/team", Icon: "users"},
		{
			Name:           "Admin",
			Href:           "/admin",
			Icon:           "shield",
			RequiredGroups: []string{GroupAdmin},
		},
	}
}
