package finance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arledger/backend/internal/domain/finance"
	"github.com/arledger/backend/internal/domain/partner"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/arledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// mockTransactionLog is an in-memory finance.TransactionLog for testing
type mockTransactionLog struct {
	entries   []*finance.LedgerTransaction
	appendErr error
}

func newMockTransactionLog() *mockTransactionLog {
	return &mockTransactionLog{}
}

func (m *mockTransactionLog) Append(ctx context.Context, tx *finance.LedgerTransaction) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, tx)
	return nil
}

func (m *mockTransactionLog) FindByID(ctx context.Context, id uuid.UUID) (*finance.LedgerTransaction, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockTransactionLog) FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter finance.TransactionFilter) ([]*finance.LedgerTransaction, int64, error) {
	var out []*finance.LedgerTransaction
	for _, e := range m.entries {
		if e.CustomerID != customerID {
			continue
		}
		if filter.Type != nil && e.Type != *filter.Type {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (m *mockTransactionLog) FindByReference(ctx context.Context, referenceID uuid.UUID) ([]*finance.LedgerTransaction, error) {
	var out []*finance.LedgerTransaction
	for _, e := range m.entries {
		if e.ReferenceID != nil && *e.ReferenceID == referenceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockTransactionLog) SumByCustomerID(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.CustomerID == customerID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// mockBalanceStore is an in-memory finance.BalanceStore for testing
type mockBalanceStore struct {
	balances  map[uuid.UUID]*finance.CustomerBalance
	upsertErr error
	saveErr   error
}

func newMockBalanceStore() *mockBalanceStore {
	return &mockBalanceStore{balances: make(map[uuid.UUID]*finance.CustomerBalance)}
}

func (m *mockBalanceStore) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*finance.CustomerBalance, error) {
	return m.balances[customerID], nil
}

func (m *mockBalanceStore) Upsert(ctx context.Context, customerID uuid.UUID, delta decimal.Decimal, currency string) (*finance.CustomerBalance, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	balance, ok := m.balances[customerID]
	if !ok {
		created, err := finance.NewCustomerBalance(customerID, delta, currency)
		if err != nil {
			return nil, err
		}
		m.balances[customerID] = created
		return created, nil
	}
	if err := balance.Apply(delta, currency); err != nil {
		return nil, err
	}
	return balance, nil
}

func (m *mockBalanceStore) Save(ctx context.Context, balance *finance.CustomerBalance) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.balances[balance.CustomerID] = balance
	return nil
}

// mockInvoiceRepository is an in-memory finance.InvoiceRepository for testing
type mockInvoiceRepository struct {
	invoices map[uuid.UUID]*finance.Invoice
	saveErr  error
}

func newMockInvoiceRepository() *mockInvoiceRepository {
	return &mockInvoiceRepository{invoices: make(map[uuid.UUID]*finance.Invoice)}
}

func (m *mockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	return m.invoices[id], nil
}

func (m *mockInvoiceRepository) Create(ctx context.Context, invoice *finance.Invoice) error {
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *mockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.invoices[invoice.ID] = invoice
	return nil
}

// mockPaymentRepository is an in-memory finance.PaymentRepository for testing
type mockPaymentRepository struct {
	payments map[uuid.UUID]*finance.Payment
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{payments: make(map[uuid.UUID]*finance.Payment)}
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	return m.payments[id], nil
}

func (m *mockPaymentRepository) ExistsByNumber(ctx context.Context, paymentNumber string) (bool, error) {
	for _, p := range m.payments {
		if p.PaymentNumber == paymentNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	m.payments[payment.ID] = payment
	return nil
}

func (m *mockPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	m.payments[payment.ID] = payment
	return nil
}

func (m *mockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.payments, id)
	return nil
}

func (m *mockPaymentRepository) FindByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]*finance.Payment, error) {
	var out []*finance.Payment
	for _, p := range m.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

// mockUnitOfWork binds the in-memory repositories into one scope. Commit
// and rollback only record that they happened; the stores apply writes
// directly, which is enough because the services validate before writing.
type mockUnitOfWork struct {
	log       *mockTransactionLog
	balances  *mockBalanceStore
	invoices  *mockInvoiceRepository
	payments  *mockPaymentRepository
	commitErr error

	committed  bool
	rolledBack bool
}

func (m *mockUnitOfWork) Transactions() finance.TransactionLog { return m.log }
func (m *mockUnitOfWork) Balances() finance.BalanceStore       { return m.balances }
func (m *mockUnitOfWork) Invoices() finance.InvoiceRepository  { return m.invoices }
func (m *mockUnitOfWork) Payments() finance.PaymentRepository  { return m.payments }

func (m *mockUnitOfWork) Commit() error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

func (m *mockUnitOfWork) Rollback() error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

type mockUOWFactory struct {
	uow      *mockUnitOfWork
	beginErr error
	begun    int
}

func (f *mockUOWFactory) Begin(ctx context.Context) (finance.UnitOfWork, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.begun++
	f.uow.committed = false
	f.uow.rolledBack = false
	return f.uow, nil
}

// mockDirectory is an in-memory partner.Directory for testing
type mockDirectory struct {
	customers map[uuid.UUID]*partner.Customer
	findErr   error
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{customers: make(map[uuid.UUID]*partner.Customer)}
}

func (m *mockDirectory) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.customers[id], nil
}

// mockAuthorizer grants or denies balance adjustments wholesale
type mockAuthorizer struct {
	allowed bool
	err     error
}

func (m *mockAuthorizer) CanAdjustBalance(ctx context.Context, operatorID uuid.UUID) (bool, error) {
	return m.allowed, m.err
}

// mockPublisher records every published event
type mockPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *mockPublisher) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.EventType()
	}
	return types
}

// mockIdempotencyStore is an in-memory shared.IdempotencyStore for testing
type mockIdempotencyStore struct {
	keys map[string]bool
}

func newMockIdempotencyStore() *mockIdempotencyStore {
	return &mockIdempotencyStore{keys: make(map[string]bool)}
}

func (m *mockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	return m.keys[key], nil
}

func (m *mockIdempotencyStore) Close() error { return nil }

// testEnv wires both services over one set of in-memory stores
type testEnv struct {
	log         *mockTransactionLog
	balances    *mockBalanceStore
	invoices    *mockInvoiceRepository
	payments    *mockPaymentRepository
	customers   *mockDirectory
	authorizer  *mockAuthorizer
	publisher   *mockPublisher
	idempotency *mockIdempotencyStore
	uow         *mockUnitOfWork

	ledger         *LedgerService
	paymentService *PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		log:         newMockTransactionLog(),
		balances:    newMockBalanceStore(),
		invoices:    newMockInvoiceRepository(),
		payments:    newMockPaymentRepository(),
		customers:   newMockDirectory(),
		authorizer:  &mockAuthorizer{allowed: true},
		publisher:   &mockPublisher{},
		idempotency: newMockIdempotencyStore(),
	}
	env.uow = &mockUnitOfWork{
		log:      env.log,
		balances: env.balances,
		invoices: env.invoices,
		payments: env.payments,
	}
	factory := &mockUOWFactory{uow: env.uow}
	logger := zap.NewNop()

	env.ledger = NewLedgerService(
		factory, env.log, env.balances, env.customers, env.authorizer, env.publisher, logger)
	env.paymentService = NewPaymentService(
		factory, env.payments, env.invoices, env.customers, env.idempotency, env.publisher, logger)

	return env
}

func (env *testEnv) addActiveCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer("CUST-001", "Acme Corp")
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	env.customers.customers[c.ID] = c
	return c
}

func (env *testEnv) addIssuedInvoice(t *testing.T, customerID uuid.UUID, netAmount string) *finance.Invoice {
	t.Helper()
	total, err := valueobjectMoney(netAmount)
	if err != nil {
		t.Fatalf("bad amount: %v", err)
	}
	zero, _ := valueobjectMoney("0")
	inv, err := finance.NewInvoice("INV-2026-001", customerID, total, zero, zero)
	if err != nil {
		t.Fatalf("failed to create invoice: %v", err)
	}
	if err := inv.Issue(nil); err != nil {
		t.Fatalf("failed to issue invoice: %v", err)
	}
	inv.ClearDomainEvents()
	env.invoices.invoices[inv.ID] = inv
	return inv
}

func valueobjectMoney(amount string) (valueobject.Money, error) {
	return valueobject.NewMoneyFromString(amount, "USD")
}
