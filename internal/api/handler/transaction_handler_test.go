package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

type stubTransactionService struct {
	addFn     func(ctx context.Context, in ports.AddTransactionInput) (*domain.Transaction, error)
	updateFn  func(ctx context.Context, in ports.UpdateTransactionInput) (*domain.Transaction, error)
	deleteFn  func(ctx context.Context, kind domain.TransactionKind, id, userID string) error
	listFn    func(ctx context.Context, in ports.ListTransactionsInput) (*ports.TransactionPage, error)
	listAllFn func(ctx context.Context, kind domain.TransactionKind, userID string) (*ports.TransactionList, error)
}

func (s *stubTransactionService) Add(ctx context.Context, in ports.AddTransactionInput) (*domain.Transaction, error) {
	return s.addFn(ctx, in)
}

func (s *stubTransactionService) Update(ctx context.Context, in ports.UpdateTransactionInput) (*domain.Transaction, error) {
	return s.updateFn(ctx, in)
}

func (s *stubTransactionService) Delete(ctx context.Context, kind domain.TransactionKind, id, userID string) error {
	return s.deleteFn(ctx, kind, id, userID)
}

func (s *stubTransactionService) List(ctx context.Context, in ports.ListTransactionsInput) (*ports.TransactionPage, error) {
	return s.listFn(ctx, in)
}

func (s *stubTransactionService) ListAll(ctx context.Context, kind domain.TransactionKind, userID string) (*ports.TransactionList, error) {
	return s.listAllFn(ctx, kind, userID)
}

func newTransactionContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user_1")
	return c, rec
}

func TestTransactionHandler_Create(t *testing.T) {
	stub := &stubTransactionService{
		addFn: func(_ context.Context, in ports.AddTransactionInput) (*domain.Transaction, error) {
			if in.Kind != domain.KindIncome {
				t.Fatalf("expected income kind, got %s", in.Kind)
			}
			if in.UserID != "user_1" {
				t.Fatalf("expected context user, got %q", in.UserID)
			}
			return &domain.Transaction{
				ID:          "tx_1",
				UserID:      in.UserID,
				Kind:        in.Kind,
				Title:       in.Title,
				Amount:      in.Amount,
				Category:    in.Category,
				Description: in.Description,
				Date:        in.Date,
			}, nil
		},
	}
	h := NewIncomeHandler(stub)

	c, rec := newTransactionContext(t, http.MethodPost, "/api/v1/incomes",
		`{"title":"May salary","amount":1000,"category":"salary","description":"monthly payout","date":"2024-05-01"}`)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "tx_1" || resp["title"] != "May salary" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTransactionHandler_Create_MissingRequired(t *testing.T) {
	stub := &stubTransactionService{
		addFn: func(_ context.Context, _ ports.AddTransactionInput) (*domain.Transaction, error) {
			t.Fatalf("service must not be called on invalid payload")
			return nil, nil
		},
	}
	h := NewIncomeHandler(stub)

	c, _ := newTransactionContext(t, http.MethodPost, "/api/v1/incomes", `{"title":"May salary"}`)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestTransactionHandler_Create_Unauthenticated(t *testing.T) {
	h := NewIncomeHandler(&stubTransactionService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/incomes", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestTransactionHandler_List_IncomeEnvelope(t *testing.T) {
	stub := &stubTransactionService{
		listFn: func(_ context.Context, in ports.ListTransactionsInput) (*ports.TransactionPage, error) {
			if in.Page != 2 || in.PageSize != 10 {
				t.Fatalf("unexpected pagination: %+v", in)
			}
			return &ports.TransactionPage{
				Items:      []*domain.Transaction{{ID: "tx_1", Title: "May salary", Amount: 1000}},
				Page:       2,
				PageSize:   10,
				TotalCount: 25,
				TotalPages: 3,
				Total:      2500,
			}, nil
		},
	}
	h := NewIncomeHandler(stub)

	c, rec := newTransactionContext(t, http.MethodGet, "/api/v1/incomes?page=2&pageSize=10", "")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	pagination, ok := resp["pagination"].(map[string]any)
	if !ok {
		t.Fatalf("expected pagination in envelope: %+v", resp)
	}
	if pagination["currentPage"] != float64(2) || pagination["totalPages"] != float64(3) ||
		pagination["totalCount"] != float64(25) || pagination["pageSize"] != float64(10) {
		t.Fatalf("unexpected pagination payload: %+v", pagination)
	}
	if resp["totalIncome"] != float64(2500) {
		t.Fatalf("expected totalIncome 2500, got %v", resp["totalIncome"])
	}
	if _, present := resp["totalExpense"]; present {
		t.Fatalf("income envelope must not carry totalExpense")
	}
	if _, present := resp["expensePercentage"]; present {
		t.Fatalf("income envelope must not carry expensePercentage")
	}
}

func TestTransactionHandler_List_ExpenseEnvelope(t *testing.T) {
	stub := &stubTransactionService{
		listFn: func(_ context.Context, in ports.ListTransactionsInput) (*ports.TransactionPage, error) {
			if in.Kind != domain.KindExpense {
				t.Fatalf("expected expense kind, got %s", in.Kind)
			}
			return &ports.TransactionPage{
				Items:             []*domain.Transaction{{ID: "tx_9", Amount: 250}},
				Page:              1,
				PageSize:          10,
				TotalCount:        1,
				TotalPages:        1,
				Total:             250,
				ExpensePercentage: 25,
			}, nil
		},
	}
	h := NewExpenseHandler(stub)

	c, rec := newTransactionContext(t, http.MethodGet, "/api/v1/expenses", "")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["totalExpense"] != float64(250) {
		t.Fatalf("expected totalExpense 250, got %v", resp["totalExpense"])
	}
	if resp["expensePercentage"] != float64(25) {
		t.Fatalf("expected expensePercentage 25, got %v", resp["expensePercentage"])
	}
	if _, present := resp["totalIncome"]; present {
		t.Fatalf("expense envelope must not carry totalIncome")
	}
}

func TestTransactionHandler_List_Empty(t *testing.T) {
	stub := &stubTransactionService{
		listFn: func(_ context.Context, _ ports.ListTransactionsInput) (*ports.TransactionPage, error) {
			return nil, domain.ErrNoTransactions
		},
	}
	h := NewIncomeHandler(stub)

	c, rec := newTransactionContext(t, http.MethodGet, "/api/v1/incomes", "")

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "no incomes found" {
		t.Fatalf(`expected {"message":"no incomes found"}, got %+v`, resp)
	}
	if _, present := resp["error"]; present {
		t.Fatalf("empty listing is a message, not an error: %+v", resp)
	}
}

func TestTransactionHandler_List_BadPageParam(t *testing.T) {
	h := NewIncomeHandler(&stubTransactionService{})

	c, _ := newTransactionContext(t, http.MethodGet, "/api/v1/incomes?page=abc", "")

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestTransactionHandler_Update(t *testing.T) {
	stub := &stubTransactionService{
		updateFn: func(_ context.Context, in ports.UpdateTransactionInput) (*domain.Transaction, error) {
			if in.ID != "tx_7" || in.UserID != "user_1" {
				t.Fatalf("unexpected update target: %+v", in)
			}
			if in.Title == nil || *in.Title != "New title" {
				t.Fatalf("expected title update, got %+v", in.Title)
			}
			if in.Amount != nil {
				t.Fatalf("amount must stay nil when absent")
			}
			return &domain.Transaction{ID: in.ID, Title: *in.Title}, nil
		},
	}
	h := NewExpenseHandler(stub)

	c, rec := newTransactionContext(t, http.MethodPut, "/api/v1/expenses/tx_7", `{"title":"New title"}`)
	c.SetParamNames("id")
	c.SetParamValues("tx_7")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTransactionHandler_Delete(t *testing.T) {
	stub := &stubTransactionService{
		deleteFn: func(_ context.Context, kind domain.TransactionKind, id, userID string) error {
			if kind != domain.KindExpense || id != "tx_7" || userID != "user_1" {
				t.Fatalf("unexpected delete args: %s %s %s", kind, id, userID)
			}
			return nil
		},
	}
	h := NewExpenseHandler(stub)

	c, rec := newTransactionContext(t, http.MethodDelete, "/api/v1/expenses/tx_7", "")
	c.SetParamNames("id")
	c.SetParamValues("tx_7")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "expense deleted successfully" {
		t.Fatalf("unexpected message: %+v", resp)
	}
}

func TestTransactionHandler_Delete_NotFoundPassesThrough(t *testing.T) {
	stub := &stubTransactionService{
		deleteFn: func(_ context.Context, _ domain.TransactionKind, _, _ string) error {
			return domain.ErrTransactionNotFound
		},
	}
	h := NewExpenseHandler(stub)

	c, _ := newTransactionContext(t, http.MethodDelete, "/api/v1/expenses/tx_7", "")
	c.SetParamNames("id")
	c.SetParamValues("tx_7")

	if err := h.Delete(c); err != domain.ErrTransactionNotFound {
		t.Fatalf("expected domain error passed to the error handler, got %v", err)
	}
}
