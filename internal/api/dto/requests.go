package dto

// ExpenseInput is one expense the bulk allocation endpoint should match
// against a project's line items. Amount is a decimal string.
type ExpenseInput struct {
	Line      int    `json:"line,omitempty"`
	ID        string `json:"id,omitempty"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	PayeeName string `json:"payee_name,omitempty"`
}

// AllocationSuggestionsRequest is the body of the bulk allocation endpoint.
// AutoAcceptFloor overrides the configured floor when set.
type AllocationSuggestionsRequest struct {
	Expenses        []ExpenseInput `json:"expenses"`
	AutoAcceptFloor *float64       `json:"auto_accept_floor,omitempty"`
}
