package service

import (
	"context"
	"fmt"
	"time"

	"github.com/davinci-it/expense-tracker/internal/core/domain"
	"github.com/davinci-it/expense-tracker/internal/core/ports"
)

// --- Transaction repository stub ---

type stubTransactionRepo struct {
	items  map[domain.TransactionKind][]*domain.Transaction
	nextID int
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{items: make(map[domain.TransactionKind][]*domain.Transaction)}
}

func cloneTransaction(t *domain.Transaction) *domain.Transaction {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func (r *stubTransactionRepo) Create(_ context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	r.nextID++
	stored := cloneTransaction(t)
	stored.ID = fmt.Sprintf("tx_%d", r.nextID)
	r.items[t.Kind] = append(r.items[t.Kind], stored)
	return cloneTransaction(stored), nil
}

func (r *stubTransactionRepo) FindOwned(_ context.Context, kind domain.TransactionKind, id, userID string) (*domain.Transaction, error) {
	for _, t := range r.items[kind] {
		if t.ID == id && t.UserID == userID {
			return cloneTransaction(t), nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *stubTransactionRepo) Update(_ context.Context, t *domain.Transaction) error {
	for i, stored := range r.items[t.Kind] {
		if stored.ID == t.ID && stored.UserID == t.UserID {
			r.items[t.Kind][i] = cloneTransaction(t)
			return nil
		}
	}
	return domain.ErrTransactionNotFound
}

func (r *stubTransactionRepo) DeleteOwned(_ context.Context, kind domain.TransactionKind, id, userID string) error {
	for i, t := range r.items[kind] {
		if t.ID == id && t.UserID == userID {
			r.items[kind] = append(r.items[kind][:i], r.items[kind][i+1:]...)
			return nil
		}
	}
	return domain.ErrTransactionNotFound
}

func (r *stubTransactionRepo) List(_ context.Context, kind domain.TransactionKind, userID string, page ports.ListPage) ([]*domain.Transaction, int64, error) {
	var owned []*domain.Transaction
	for _, t := range r.items[kind] {
		if t.UserID == userID {
			owned = append(owned, cloneTransaction(t))
		}
	}

	start := (page.Page - 1) * page.PageSize
	if start > len(owned) {
		start = len(owned)
	}
	end := start + page.PageSize
	if end > len(owned) {
		end = len(owned)
	}
	return owned[start:end], int64(len(owned)), nil
}

func (r *stubTransactionRepo) ListAll(_ context.Context, kind domain.TransactionKind, userID string) ([]*domain.Transaction, error) {
	var owned []*domain.Transaction
	for _, t := range r.items[kind] {
		if t.UserID == userID {
			owned = append(owned, cloneTransaction(t))
		}
	}
	return owned, nil
}

func (r *stubTransactionRepo) SumAmounts(_ context.Context, kind domain.TransactionKind, userID string) (float64, error) {
	var total float64
	for _, t := range r.items[kind] {
		if t.UserID == userID {
			total += t.Amount
		}
	}
	return total, nil
}

// --- User repository stub ---

type stubUserRepo struct {
	users       map[string]*domain.User
	nextID      int
	updateCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user_%d", r.nextID)
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.updateCalls++
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) SetVerified(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified = true
	return nil
}

func (r *stubUserRepo) SetPasswordHash(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// --- OTP repository stub ---

type stubOTPRepo struct {
	otps map[string][]*domain.OTP
}

func newStubOTPRepo() *stubOTPRepo {
	return &stubOTPRepo{otps: make(map[string][]*domain.OTP)}
}

func (r *stubOTPRepo) Create(_ context.Context, otp *domain.OTP) error {
	clone := *otp
	r.otps[otp.UserID] = append(r.otps[otp.UserID], &clone)
	return nil
}

func (r *stubOTPRepo) FindLatestByUser(_ context.Context, userID string) (*domain.OTP, error) {
	records := r.otps[userID]
	if len(records) == 0 {
		return nil, domain.ErrOTPNotFound
	}
	clone := *records[len(records)-1]
	return &clone, nil
}

func (r *stubOTPRepo) DeleteByUser(_ context.Context, userID string) error {
	delete(r.otps, userID)
	return nil
}

// --- Resend limiter stub ---

type stubLimiter struct {
	allowed bool
	calls   int
}

func (l *stubLimiter) Allow(_ context.Context, _ string, _ time.Duration) (bool, error) {
	l.calls++
	return l.allowed, nil
}

// --- Mailer stub ---

type sentMail struct {
	to      string
	subject string
	body    string
}

type stubMailer struct {
	sent []sentMail
	fail bool
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// --- Alert evaluator spy ---

type spyAlerts struct {
	calls int
}

func (a *spyAlerts) Evaluate(_ context.Context, _ *domain.User) error {
	a.calls++
	return nil
}
