package api

// CreateExpenseRequest records an expense paid by the caller.
type CreateExpenseRequest struct {
	GroupId      string   `json:"groupId"`
	Description  string   `json:"description"`
	Amount       string   `json:"amount"`
	Participants []string `json:"participants"`
	TxHash       string   `json:"txHash,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
	Shares  []*Share `json:"shares"`
}

type GetExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
	Shares  []*Share `json:"shares"`
}

// ListExpensesRequest lists a group's expenses, or the caller's history
// across every group when GroupId is empty.
type ListExpensesRequest struct {
	GroupId string `json:"groupId,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// SettleExpenseRequest pays toward the caller's share. An empty Amount
// pays the whole outstanding share.
type SettleExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
	Amount    string `json:"amount,omitempty"`
	TxHash    string `json:"txHash,omitempty"`
}

type SettleExpenseResponse struct {
	Settlement *Settlement `json:"settlement"`
	Expense    *Expense    `json:"expense"`
}

type SettleAllDebtsRequest struct {
	GroupId string `json:"groupId"`
	TxHash  string `json:"txHash,omitempty"`
}

type SettleAllDebtsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type ListSettlementsRequest struct {
	GroupId string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
