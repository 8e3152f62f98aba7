package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ppob-backend/internal/data/entity"
)

// memStore backs every in-memory repository. One mutex guards all tables so
// cross-table checks (foreign keys, joins) see a consistent view.
type memStore struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]*entity.User
	tokens       []*entity.RefreshToken
	products     map[uuid.UUID]*entity.Product
	branches     map[uuid.UUID]*entity.Branch
	nasabah      map[uuid.UUID]*entity.Nasabah
	transactions map[uuid.UUID]*entity.Transaction
	now          func() time.Time
}

// NewMemoryRepository returns repositories that keep everything in process
// memory. Used with STORAGE=memory and in tests.
func NewMemoryRepository() *Repository {
	s := &memStore{
		users:        make(map[uuid.UUID]*entity.User),
		products:     make(map[uuid.UUID]*entity.Product),
		branches:     make(map[uuid.UUID]*entity.Branch),
		nasabah:      make(map[uuid.UUID]*entity.Nasabah),
		transactions: make(map[uuid.UUID]*entity.Transaction),
		now:          time.Now,
	}
	return &Repository{
		User:         &memUsers{s},
		RefreshToken: &memTokens{s},
		Product:      &memProducts{s},
		Branch:       &memBranches{s},
		Nasabah:      &memNasabah{s},
		Transaction:  &memTransactions{s},
		Report:       &memReports{s},
	}
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// ==================== USERS ====================

type memUsers struct{ s *memStore }

func (m *memUsers) Create(_ context.Context, user *entity.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("create user %s: %w", user.Email, ErrDuplicate)
		}
	}
	m.s.users[user.ID] = clone(user)
	return nil
}

func (m *memUsers) find(match func(*entity.User) bool) *entity.User {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, u := range m.s.users {
		if u.DeletedAt == nil && match(u) {
			return clone(u)
		}
	}
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.ID == id }), nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Email == email }), nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.find(func(u *entity.User) bool { return u.Username == username }), nil
}

func (m *memUsers) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*entity.User
	for _, u := range m.s.users {
		if u.DeletedAt == nil {
			out = append(out, clone(u))
		}
	}
	slices.SortFunc(out, func(a, b *entity.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(out, limit, offset), nil
}

func (m *memUsers) CountAll(_ context.Context) (int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var n int64
	for _, u := range m.s.users {
		if u.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) UpdateStatus(_ context.Context, id uuid.UUID, status entity.UserStatus) (*entity.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	u.Status = status
	u.UpdatedAt = m.s.now()
	return clone(u), nil
}

// ==================== REFRESH TOKENS ====================

type memTokens struct{ s *memStore }

func (m *memTokens) Create(_ context.Context, token *entity.RefreshToken) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.tokens = append(m.s.tokens, clone(token))
	return nil
}

func (m *memTokens) FindByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for i := len(m.s.tokens) - 1; i >= 0; i-- {
		if m.s.tokens[i].Token == token {
			return clone(m.s.tokens[i]), nil
		}
	}
	return nil, nil
}

func (m *memTokens) Revoke(_ context.Context, token string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, t := range m.s.tokens {
		if t.Token == token && !t.Revoked {
			t.Revoked = true
			n++
		}
	}
	return n, nil
}

func (m *memTokens) DeleteExpired(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cutoff := m.s.now().Add(-7 * 24 * time.Hour)
	before := len(m.s.tokens)
	m.s.tokens = slices.DeleteFunc(m.s.tokens, func(t *entity.RefreshToken) bool {
		return t.ExpiresAt.Before(cutoff)
	})
	return int64(before - len(m.s.tokens)), nil
}

// ==================== PRODUCTS ====================

type memProducts struct{ s *memStore }

// codeTaken must be called with the lock held.
func (m *memProducts) codeTaken(code string, except uuid.UUID) bool {
	for _, p := range m.s.products {
		if p.IDProvider == code && p.ID != except {
			return true
		}
	}
	return false
}

func (m *memProducts) Create(_ context.Context, product *entity.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.codeTaken(product.IDProvider, product.ID) {
		return fmt.Errorf("product %s: %w", product.IDProvider, ErrDuplicate)
	}
	m.s.products[product.ID] = clone(product)
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if p, ok := m.s.products[id]; ok {
		return clone(p), nil
	}
	return nil, nil
}

func (m *memProducts) FindByProviderCode(_ context.Context, code string) (*entity.Product, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, p := range m.s.products {
		if p.IDProvider == code {
			return clone(p), nil
		}
	}
	return nil, nil
}

func (m *memProducts) filtered(category *string) []*entity.Product {
	var out []*entity.Product
	for _, p := range m.s.products {
		if category == nil || *category == "" || p.Category == *category {
			out = append(out, clone(p))
		}
	}
	slices.SortFunc(out, func(a, b *entity.Product) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Name, b.Name))
	})
	return out
}

func (m *memProducts) FindAll(_ context.Context, offset, limit int, category *string) ([]*entity.Product, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return page(m.filtered(category), limit, offset), nil
}

func (m *memProducts) CountAll(_ context.Context, category *string) (int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return int64(len(m.filtered(category))), nil
}

func (m *memProducts) Update(_ context.Context, product *entity.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[product.ID]; !ok {
		return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
	}
	if m.codeTaken(product.IDProvider, product.ID) {
		return fmt.Errorf("product %s: %w", product.IDProvider, ErrDuplicate)
	}
	m.s.products[product.ID] = clone(product)
	return nil
}

func (m *memProducts) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	for _, t := range m.s.transactions {
		if t.ProductID == id {
			return fmt.Errorf("product %s: %w", id, ErrInUse)
		}
	}
	delete(m.s.products, id)
	return nil
}

// ==================== BRANCHES ====================

type memBranches struct{ s *memStore }

func (m *memBranches) Create(_ context.Context, branch *entity.Branch) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.branches[branch.ID] = clone(branch)
	return nil
}

func (m *memBranches) FindByID(_ context.Context, id uuid.UUID) (*entity.Branch, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if b, ok := m.s.branches[id]; ok {
		return clone(b), nil
	}
	return nil, nil
}

func (m *memBranches) FindAll(_ context.Context) ([]*entity.Branch, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*entity.Branch
	for _, b := range m.s.branches {
		out = append(out, clone(b))
	}
	slices.SortFunc(out, func(a, b *entity.Branch) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *memBranches) Update(_ context.Context, branch *entity.Branch) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.branches[branch.ID]; !ok {
		return fmt.Errorf("branch %s: %w", branch.ID, ErrNotFound)
	}
	m.s.branches[branch.ID] = clone(branch)
	return nil
}

func (m *memBranches) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.branches[id]; !ok {
		return fmt.Errorf("branch %s: %w", id, ErrNotFound)
	}
	for _, n := range m.s.nasabah {
		if n.BranchID == id {
			return fmt.Errorf("branch %s: %w", id, ErrInUse)
		}
	}
	delete(m.s.branches, id)
	return nil
}

// ==================== NASABAH ====================

type memNasabah struct{ s *memStore }

func (m *memNasabah) Create(_ context.Context, n *entity.Nasabah) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.branches[n.BranchID]; !ok {
		return fmt.Errorf("branch %s: %w", n.BranchID, ErrNotFound)
	}
	m.s.nasabah[n.ID] = clone(n)
	return nil
}

func (m *memNasabah) FindByID(_ context.Context, id uuid.UUID) (*entity.Nasabah, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if n, ok := m.s.nasabah[id]; ok {
		return clone(n), nil
	}
	return nil, nil
}

func (m *memNasabah) list(match func(*entity.Nasabah) bool) []*entity.Nasabah {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*entity.Nasabah
	for _, n := range m.s.nasabah {
		if match(n) {
			out = append(out, clone(n))
		}
	}
	slices.SortFunc(out, func(a, b *entity.Nasabah) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (m *memNasabah) FindAll(_ context.Context) ([]*entity.Nasabah, error) {
	return m.list(func(*entity.Nasabah) bool { return true }), nil
}

func (m *memNasabah) FindByBranch(_ context.Context, branchID uuid.UUID) ([]*entity.Nasabah, error) {
	return m.list(func(n *entity.Nasabah) bool { return n.BranchID == branchID }), nil
}

func (m *memNasabah) Update(_ context.Context, n *entity.Nasabah) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.nasabah[n.ID]; !ok {
		return fmt.Errorf("nasabah %s: %w", n.ID, ErrNotFound)
	}
	if _, ok := m.s.branches[n.BranchID]; !ok {
		return fmt.Errorf("branch %s: %w", n.BranchID, ErrNotFound)
	}
	m.s.nasabah[n.ID] = clone(n)
	return nil
}

func (m *memNasabah) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.nasabah[id]; !ok {
		return fmt.Errorf("nasabah %s: %w", id, ErrNotFound)
	}
	delete(m.s.nasabah, id)
	return nil
}

// ==================== TRANSACTIONS ====================

type memTransactions struct{ s *memStore }

func (m *memTransactions) Create(_ context.Context, trx *entity.Transaction) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, t := range m.s.transactions {
		if t.RefID == trx.RefID {
			return fmt.Errorf("create transaction %s: %w", trx.RefID, ErrDuplicate)
		}
	}
	m.s.transactions[trx.ID] = clone(trx)
	return nil
}

// detail must be called with the lock held.
func (m *memTransactions) detail(t *entity.Transaction) *entity.TransactionDetail {
	d := &entity.TransactionDetail{Transaction: *t}
	if p, ok := m.s.products[t.ProductID]; ok {
		d.ProductName = p.Name
	}
	if u, ok := m.s.users[t.UserID]; ok {
		d.Username = u.Username
	}
	return d
}

func (m *memTransactions) FindByID(_ context.Context, id uuid.UUID) (*entity.TransactionDetail, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if t, ok := m.s.transactions[id]; ok {
		return m.detail(t), nil
	}
	return nil, nil
}

func (m *memTransactions) FindByRefID(_ context.Context, refID string) (*entity.Transaction, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, t := range m.s.transactions {
		if t.RefID == refID {
			return clone(t), nil
		}
	}
	return nil, nil
}

func (m *memTransactions) filtered(filter TransactionFilter) []*entity.Transaction {
	var out []*entity.Transaction
	for _, t := range m.s.transactions {
		if filter.UserID != nil && t.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *entity.Transaction) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (m *memTransactions) FindAll(_ context.Context, filter TransactionFilter, limit, offset int) ([]*entity.TransactionDetail, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []*entity.TransactionDetail
	for _, t := range page(m.filtered(filter), limit, offset) {
		out = append(out, m.detail(t))
	}
	return out, nil
}

func (m *memTransactions) Count(_ context.Context, filter TransactionFilter) (int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return int64(len(m.filtered(filter))), nil
}

func (m *memTransactions) UpdateProviderResult(_ context.Context, id uuid.UUID, res ProviderResult) (*entity.Transaction, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.transactions[id]
	if !ok {
		return nil, false, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if entity.IsFinalStatus(t.Status) && !entity.IsFinalStatus(res.Status) {
		return clone(t), false, nil
	}
	t.Status = res.Status
	if res.SN != "" {
		t.SN = res.SN
	}
	if res.Message != "" {
		t.Message = res.Message
	}
	t.RawResponse = res.Raw
	t.UpdatedAt = m.s.now()
	return clone(t), true, nil
}

func (m *memTransactions) MarkFailed(_ context.Context, id uuid.UUID, message string) (*entity.Transaction, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.transactions[id]
	if !ok {
		return nil, false, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if t.Status != entity.TransactionStatusPending {
		return clone(t), false, nil
	}
	t.Status = entity.TransactionStatusFailed
	t.Message = message
	t.UpdatedAt = m.s.now()
	return clone(t), true, nil
}

func (m *memTransactions) ApplyWebhook(_ context.Context, refID string, res ProviderResult) (*entity.Transaction, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, t := range m.s.transactions {
		if t.RefID != refID {
			continue
		}
		if entity.IsFinalStatus(t.Status) && !entity.IsFinalStatus(res.Status) {
			return nil, false, nil
		}
		t.Status = res.Status
		if res.SN != "" {
			t.SN = res.SN
		}
		if res.Message != "" {
			t.Message = res.Message
		}
		t.RawResponse = res.Raw
		t.UpdatedAt = m.s.now()
		return clone(t), true, nil
	}
	return nil, false, nil
}

func (m *memTransactions) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*entity.Transaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.transactions[id]
	if !ok {
		return nil, nil
	}
	t.Status = status
	t.UpdatedAt = m.s.now()
	return clone(t), nil
}

func (m *memTransactions) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.transactions[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	delete(m.s.transactions, id)
	return nil
}

// ==================== REPORTS ====================

type memReports struct{ s *memStore }

// successful must be called with the lock held.
func (m *memReports) successful(period Period) []*entity.Transaction {
	var out []*entity.Transaction
	for _, t := range m.s.transactions {
		if !slices.Contains(entity.SuccessStatuses, t.Status) {
			continue
		}
		if period.From != nil && t.CreatedAt.Before(*period.From) {
			continue
		}
		if period.To != nil && t.CreatedAt.After(*period.To) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (m *memReports) TopProducts(_ context.Context, period Period, limit int) ([]ProductSales, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	counts := map[uuid.UUID]int64{}
	for _, t := range m.successful(period) {
		counts[t.ProductID]++
	}

	out := make([]ProductSales, 0, len(counts))
	for id, n := range counts {
		name := "Produk tidak diketahui"
		if p, ok := m.s.products[id]; ok {
			name = p.Name
		}
		out = append(out, ProductSales{ProductID: id, Name: name, TotalSold: n})
	}
	slices.SortFunc(out, func(a, b ProductSales) int {
		return cmp.Or(cmp.Compare(b.TotalSold, a.TotalSold), cmp.Compare(a.Name, b.Name))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memReports) Revenue(_ context.Context, period Period) (*RevenueSummary, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	s := &RevenueSummary{TotalRevenue: decimal.Zero, TotalProfit: decimal.Zero}
	for _, t := range m.successful(period) {
		p, ok := m.s.products[t.ProductID]
		if !ok {
			continue
		}
		s.TotalRevenue = s.TotalRevenue.Add(p.SellingPrice)
		s.TotalProfit = s.TotalProfit.Add(p.SellingPrice.Sub(p.BasePrice))
		s.TotalTransactions++
	}
	return s, nil
}

func (m *memReports) DailyRevenue(_ context.Context, period Period) ([]DailyRevenue, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	byDay := map[string]decimal.Decimal{}
	for _, t := range m.successful(period) {
		p, ok := m.s.products[t.ProductID]
		if !ok {
			continue
		}
		day := t.CreatedAt.UTC().Format(time.DateOnly)
		byDay[day] = byDay[day].Add(p.SellingPrice)
	}

	out := make([]DailyRevenue, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, DailyRevenue{Date: day, TotalRevenue: total})
	}
	slices.SortFunc(out, func(a, b DailyRevenue) int { return cmp.Compare(a.Date, b.Date) })
	return out, nil
}
