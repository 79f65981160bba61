// Package api defines the request and response messages of the SplitMe
// Connect services. Messages travel as JSON; token amounts are decimal
// strings so no precision is lost in the browser.
package api

// Group is a named set of member addresses that share expenses.
type Group struct {
	Id          string     `json:"id"`
	ChainId     uint64     `json:"chainId,omitempty"`
	Name        string     `json:"name"`
	Creator     string     `json:"creator"`
	Members     []string   `json:"members"`
	Category    string     `json:"category"`
	TotalAmount string     `json:"totalAmount"`
	TxHash      string     `json:"txHash,omitempty"`
	CreatedAt   *Timestamp `json:"createdAt,omitempty"`
}

// Expense is a payment made by one member on behalf of participants.
type Expense struct {
	Id           string     `json:"id"`
	ChainId      uint64     `json:"chainId,omitempty"`
	GroupId      string     `json:"groupId"`
	Description  string     `json:"description"`
	Amount       string     `json:"amount"`
	Payer        string     `json:"payer"`
	Participants []string   `json:"participants"`
	Settled      bool       `json:"settled"`
	TxHash       string     `json:"txHash,omitempty"`
	CreatedAt    *Timestamp `json:"createdAt,omitempty"`
}

// Share is one participant's portion of an expense.
type Share struct {
	Participant string     `json:"participant"`
	Amount      string     `json:"amount"`
	Paid        string     `json:"paid"`
	Settled     bool       `json:"settled"`
	SettledAt   *Timestamp `json:"settledAt,omitempty"`
}

// Balance is a member's signed position within a group. A positive net
// balance means the member is owed money.
type Balance struct {
	Member     string `json:"member"`
	NetBalance string `json:"netBalance"`
	TotalPaid  string `json:"totalPaid"`
	TotalOwed  string `json:"totalOwed"`
}

// Debt is a suggested payment that moves a group toward zero balances.
type Debt struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Settlement is a recorded token payment between two members.
type Settlement struct {
	Id        string     `json:"id"`
	GroupId   string     `json:"groupId"`
	ExpenseId string     `json:"expenseId,omitempty"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Amount    string     `json:"amount"`
	TxHash    string     `json:"txHash,omitempty"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
}

// AddressEntry labels a wallet address with a human-readable owner.
type AddressEntry struct {
	Address   string     `json:"address"`
	OwnerName string     `json:"ownerName"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
}

// User is a signed-in wallet.
type User struct {
	Address     string `json:"address"`
	DisplayName string `json:"displayName,omitempty"`
}
