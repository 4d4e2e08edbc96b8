package handler

import (
	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

// --- Request → Service input ---

func toAddInput(kind domain.TransactionKind, userID string, req createTransactionRequest) ports.AddTransactionInput {
	return ports.AddTransactionInput{
		Kind:        kind,
		UserID:      userID,
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}
}

func toUpdateInput(kind domain.TransactionKind, id, userID string, req updateTransactionRequest) ports.UpdateTransactionInput {
	return ports.UpdateTransactionInput{
		Kind:        kind,
		ID:          id,
		UserID:      userID,
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	}
}

// --- Service result → HTTP response ---

func toTransactionResponse(t *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Title:       t.Title,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func toTransactionResponses(items []*domain.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(items))
	for i, t := range items {
		out[i] = toTransactionResponse(t)
	}
	return out
}

func toListResponse(kind domain.TransactionKind, page *ports.TransactionPage) listTransactionsResponse {
	resp := listTransactionsResponse{
		Data: toTransactionResponses(page.Items),
		Pagination: &paginationResponse{
			CurrentPage: page.Page,
			TotalPages:  page.TotalPages,
			TotalCount:  page.TotalCount,
			PageSize:    page.PageSize,
		},
	}
	attachTotals(&resp, kind, page.Total, page.ExpensePercentage)
	return resp
}

func toListAllResponse(kind domain.TransactionKind, list *ports.TransactionList) listTransactionsResponse {
	resp := listTransactionsResponse{Data: toTransactionResponses(list.Items)}
	attachTotals(&resp, kind, list.Total, list.ExpensePercentage)
	return resp
}

func attachTotals(resp *listTransactionsResponse, kind domain.TransactionKind, total, pct float64) {
	if kind == domain.KindIncome {
		resp.TotalIncome = &total
		return
	}
	resp.TotalExpense = &total
	resp.ExpensePercentage = &pct
}
