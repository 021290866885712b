package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// DefaultNormalBalance returns the side on which an account of this type grows.
func (t AccountType) DefaultNormalBalance() NormalBalance {
	switch t {
	case Asset, Expense:
		return NormalDebit
	default:
		return NormalCredit
	}
}

// NormalBalance is the side (debit or credit) that increases an account.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "DEBIT"
	NormalCredit NormalBalance = "CREDIT"
)

// IsValid reports whether b is DEBIT or CREDIT.
func (b NormalBalance) IsValid() bool {
	return b == NormalDebit || b == NormalCredit
}

// Account represents a ledger account in the chart of accounts.
// Once referenced by a posted entry only Name, Description and IsActive may change.
type Account struct {
	AccountID       string        `json:"accountID"`
	AccountNumber   string        `json:"accountNumber"` // unique, human-assigned
	Name            string        `json:"name"`
	AccountType     AccountType   `json:"accountType"`
	NormalBalance   NormalBalance `json:"normalBalance"`
	ParentAccountID *string       `json:"parentAccountID,omitempty"`
	Description     string        `json:"description"`
	IsActive        bool          `json:"isActive"`
	AuditFields
}

// AccountNode is one node of the chart-of-accounts tree.
type AccountNode struct {
	Account  Account        `json:"account"`
	Children []*AccountNode `json:"children"`
}

// StandardAccounts holds the account numbers the settlement postings resolve against.
type StandardAccounts struct {
	Cash               string
	AccountsReceivable string
	Inventory          string
	AccountsPayable    string
	Revenue            string
	SalesReturns       string
	COGS               string
	BadDebt            string
}

// DefaultStandardAccounts returns the stock numbering of the chart of accounts.
func DefaultStandardAccounts() StandardAccounts {
	return StandardAccounts{
		Cash:               "1000",
		AccountsReceivable: "1200",
		Inventory:          "1300",
		AccountsPayable:    "2000",
		Revenue:            "4000",
		SalesReturns:       "4100",
		COGS:               "5000",
		BadDebt:            "5100",
	}
}
