package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// TransactionHandler serves the five transaction routes for one kind. The
// incomes and expenses route groups each get their own instance; everything
// else is shared.
type TransactionHandler struct {
	kind    domain.TransactionKind
	service ports.TransactionService
}

func NewIncomeHandler(service ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{kind: domain.KindIncome, service: service}
}

func NewExpenseHandler(service ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{kind: domain.KindExpense, service: service}
}

// Create records a new transaction.
//
// @Summary      Add a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        body  body      createTransactionRequest  true  "Transaction details"
// @Success      201   {object}  transactionResponse
// @Failure      400   {object}  map[string]string
// @Router       /incomes [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Add(c.Request().Context(), toAddInput(h.kind, userID, req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(created))
}

// List returns one page plus collection-wide totals.
//
// @Summary      List transactions (paginated)
// @Tags         transactions
// @Produce      json
// @Param        page      query     int  false  "Page number (1-based)"
// @Param        pageSize  query     int  false  "Items per page"
// @Success      200       {object}  listTransactionsResponse
// @Failure      404       {object}  messageResponse
// @Router       /incomes [get]
func (h *TransactionHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	page, err := queryInt(c, "page", defaultPage)
	if err != nil {
		return err
	}
	pageSize, err := queryInt(c, "pageSize", defaultPageSize)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), ports.ListTransactionsInput{
		Kind:     h.kind,
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoTransactions) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: h.emptyMessage()})
		}
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(h.kind, result))
}

// ListAll returns every transaction of the kind, unpaged.
//
// @Summary      List all transactions
// @Tags         transactions
// @Produce      json
// @Success      200  {object}  listTransactionsResponse
// @Failure      404  {object}  messageResponse
// @Router       /incomes/all [get]
func (h *TransactionHandler) ListAll(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListAll(c.Request().Context(), h.kind, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoTransactions) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: h.emptyMessage()})
		}
		return err
	}
	return c.JSON(http.StatusOK, toListAllResponse(h.kind, result))
}

// Update applies a partial update to an owned transaction.
//
// @Summary      Update a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Transaction id"
// @Param        body  body      updateTransactionRequest  true  "Fields to update"
// @Success      200   {object}  transactionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /incomes/{id} [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.Update(c.Request().Context(), toUpdateInput(h.kind, c.Param("id"), userID, req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransactionResponse(updated))
}

// Delete removes an owned transaction.
//
// @Summary      Delete a transaction
// @Tags         transactions
// @Produce      json
// @Param        id   path      string  true  "Transaction id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /incomes/{id} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), h.kind, c.Param("id"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: string(h.kind) + " deleted successfully"})
}

func (h *TransactionHandler) emptyMessage() string {
	if h.kind == domain.KindIncome {
		return "no incomes found"
	}
	return "no expenses found"
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}
