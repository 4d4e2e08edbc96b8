package handler

import "time"

// --- Request types ---

type createTransactionRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Amount      float64 `json:"amount"      validate:"required,gt=0"`
	Category    string  `json:"category"    validate:"required"`
	Description string  `json:"description" validate:"required"`
	Date        string  `json:"date"        validate:"required"`
}

// updateTransactionRequest carries a partial update. Absent fields stay nil
// and keep the stored value.
type updateTransactionRequest struct {
	Title       *string  `json:"title"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

// --- Response types ---

type transactionResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type paginationResponse struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	PageSize    int   `json:"pageSize"`
}

// listTransactionsResponse serves both kinds: incomes carry totalIncome,
// expenses carry totalExpense plus expensePercentage. The unpaged variant
// omits pagination.
type listTransactionsResponse struct {
	Data              []transactionResponse `json:"data"`
	Pagination        *paginationResponse   `json:"pagination,omitempty"`
	TotalIncome       *float64              `json:"totalIncome,omitempty"`
	TotalExpense      *float64              `json:"totalExpense,omitempty"`
	ExpensePercentage *float64              `json:"expensePercentage,omitempty"`
}
