package wallet

import "github.com/felixgeelhaar/nvms/internal/api"

// Kind is the direction of a transaction.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is income, expense, or empty (both).
func (k Kind) Valid() bool {
	return k == "" || k == KindIncome || k == KindExpense
}

// Wallet is an account holding money in one currency.
type Wallet struct {
	ID          api.ID      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Currency    *api.ID     `json:"currency" yaml:"currency"`
	Balance     api.Decimal `json:"balance" yaml:"balance"`
	IsActive    bool        `json:"is_active" yaml:"is_active"`
}

// Field returns a field by its API name.
func (w Wallet) Field(name string) any {
	switch name {
	case "id":
		return w.ID
	case "name":
		return w.Name
	case "currency":
		return w.Currency
	case "balance":
		return w.Balance
	case "is_active":
		return w.IsActive
	}
	return nil
}

// Option returns the wallet as a select option.
func (w Wallet) Option() api.Option { return api.Option{ID: w.ID.String(), Label: w.Name} }

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          api.ID      `json:"id" yaml:"id"`
	Wallet      api.ID      `json:"wallet" yaml:"wallet"`
	Type        Kind        `json:"type" yaml:"type"`
	Amount      api.Decimal `json:"amount" yaml:"amount"`
	Category    *api.ID     `json:"category" yaml:"category"`
	Tags        []api.ID    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Date        *string     `json:"date" yaml:"date"`
}

// Field returns a field by its API name.
func (t Transaction) Field(name string) any {
	switch name {
	case "id":
		return t.ID
	case "wallet":
		return t.Wallet
	case "type":
		return string(t.Type)
	case "amount":
		return t.Amount
	case "category":
		return t.Category
	case "description":
		return t.Description
	case "date":
		return t.Date
	}
	return nil
}

// Option returns the transaction as a select option.
func (t Transaction) Option() api.Option {
	label := t.Description
	if label == "" {
		label = string(t.Type) + " " + t.Amount.String()
	}
	return api.Option{ID: t.ID.String(), Label: label}
}

// Budget caps spending in a category over a period.
type Budget struct {
	ID        api.ID      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Category  *api.ID     `json:"category" yaml:"category"`
	Amount    api.Decimal `json:"amount" yaml:"amount"`
	Spent     api.Decimal `json:"spent" yaml:"spent"`
	Period    string      `json:"period" yaml:"period"`
	StartDate *string     `json:"start_date" yaml:"start_date"`
	EndDate   *string     `json:"end_date" yaml:"end_date"`
}

// Field returns a field by its API name.
func (b Budget) Field(name string) any {
	switch name {
	case "id":
		return b.ID
	case "name":
		return b.Name
	case "category":
		return b.Category
	case "amount":
		return b.Amount
	case "spent":
		return b.Spent
	case "period":
		return b.Period
	case "start_date":
		return b.StartDate
	case "end_date":
		return b.EndDate
	}
	return nil
}

// Option returns the budget as a select option.
func (b Budget) Option() api.Option { return api.Option{ID: b.ID.String(), Label: b.Name} }

// Subscription is a recurring payment.
type Subscription struct {
	ID              api.ID      `json:"id" yaml:"id"`
	Name            string      `json:"name" yaml:"name"`
	Amount          api.Decimal `json:"amount" yaml:"amount"`
	BillingCycle    string      `json:"billing_cycle" yaml:"billing_cycle"`
	NextPaymentDate *string     `json:"next_payment_date" yaml:"next_payment_date"`
	Wallet          *api.ID     `json:"wallet" yaml:"wallet"`
	IsActive        bool        `json:"is_active" yaml:"is_active"`
}

// Field returns a field by its API name.
func (s Subscription) Field(name string) any {
	switch name {
	case "id":
		return s.ID
	case "name":
		return s.Name
	case "amount":
		return s.Amount
	case "billing_cycle":
		return s.BillingCycle
	case "next_payment_date":
		return s.NextPaymentDate
	case "is_active":
		return s.IsActive
	}
	return nil
}

// Option returns the subscription as a select option.
func (s Subscription) Option() api.Option { return api.Option{ID: s.ID.String(), Label: s.Name} }

// SavingsGoal tracks progress toward a target amount.
type SavingsGoal struct {
	ID            api.ID      `json:"id" yaml:"id"`
	Name          string      `json:"name" yaml:"name"`
	TargetAmount  api.Decimal `json:"target_amount" yaml:"target_amount"`
	CurrentAmount api.Decimal `json:"current_amount" yaml:"current_amount"`
	Deadline      *string     `json:"deadline" yaml:"deadline"`
	Wallet        *api.ID     `json:"wallet" yaml:"wallet"`
}

// Progress returns the saved fraction of the target, 0 when there is no target.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return float64(g.CurrentAmount / g.TargetAmount)
}

// Field returns a field by its API name.
func (g SavingsGoal) Field(name string) any {
	switch name {
	case "id":
		return g.ID
	case "name":
		return g.Name
	case "target_amount":
		return g.TargetAmount
	case "current_amount":
		return g.CurrentAmount
	case "deadline":
		return g.Deadline
	case "progress":
		return g.Progress()
	}
	return nil
}

// Option returns the goal as a select option.
func (g SavingsGoal) Option() api.Option { return api.Option{ID: g.ID.String(), Label: g.Name} }

// Category classifies transactions.
type Category struct {
	ID   api.ID `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type Kind   `json:"type,omitempty" yaml:"type,omitempty"`
}

// Option returns the category as a select option.
func (c Category) Option() api.Option { return api.Option{ID: c.ID.String(), Label: c.Name} }

// Tag labels transactions.
type Tag struct {
	ID    api.ID `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Option returns the tag as a select option.
func (t Tag) Option() api.Option { return api.Option{ID: t.ID.String(), Label: t.Name} }

// Currency is an ISO currency known to the backend.
type Currency struct {
	ID     api.ID `json:"id" yaml:"id"`
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

// Option returns the currency as a select option labeled by code.
func (c Currency) Option() api.Option { return api.Option{ID: c.ID.String(), Label: c.Code} }

// Optioner is implemented by every record usable in a select.
type Optioner interface {
	Option() api.Option
}

// Options converts records to select options.
func Options[T Optioner](records []T) []api.Option {
	out := make([]api.Option, 0, len(records))
	for _, r := range records {
		out = append(out, r.Option())
	}
	return out
}
