package partner

import (
	"context"
	"strings"
	"testing"

	"github.com/arledger/backend/internal/domain/partner"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockCustomerRepository is an in-memory partner.CustomerRepository for testing
type mockCustomerRepository struct {
	customers map[uuid.UUID]*partner.Customer
	saveErr   error
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[uuid.UUID]*partner.Customer)}
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (m *mockCustomerRepository) FindByCode(ctx context.Context, code string) (*partner.Customer, error) {
	for _, c := range m.customers {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.customers[customer.ID] = customer
	return nil
}

func (m *mockCustomerRepository) List(ctx context.Context, filter shared.Filter) ([]partner.Customer, int64, error) {
	var out []partner.Customer
	for _, c := range m.customers {
		if status, ok := filter.Filters["status"]; ok && string(c.Status) != status {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

// mockPublisher records every published event
type mockPublisher struct {
	events []shared.DomainEvent
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.events = append(m.events, events...)
	return nil
}

func newCustomerTestService() (*CustomerService, *mockCustomerRepository, *mockPublisher) {
	repo := newMockCustomerRepository()
	publisher := &mockPublisher{}
	svc := NewCustomerService(repo, publisher, zap.NewNop())
	return svc, repo, publisher
}

func TestCustomerServiceCreateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("registers an active customer", func(t *testing.T) {
		svc, repo, publisher := newCustomerTestService()

		resp, err := svc.CreateCustomer(ctx, CreateCustomerRequest{
			Code:        "acme-01",
			Name:        "Acme Corp",
			ContactName: "Jo Field",
			Email:       "ar@acme.example",
		})

		require.NoError(t, err)
		assert.Equal(t, "ACME-01", resp.Code)
		assert.Equal(t, string(partner.CustomerStatusActive), resp.Status)
		assert.Len(t, repo.customers, 1)
		assert.NotEmpty(t, publisher.events)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		svc, _, _ := newCustomerTestService()

		_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Code: "ACME-01", Name: "Acme Corp"})
		require.NoError(t, err)

		_, err = svc.CreateCustomer(ctx, CreateCustomerRequest{Code: "acme-01", Name: "Acme Again"})
		require.Error(t, err)
		assert.Equal(t, shared.ErrAlreadyExists.Code, shared.CodeOf(err))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc, _, _ := newCustomerTestService()

		_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Code: "C-1", Name: ""})
		require.Error(t, err)
	})

	t.Run("trims and uppercases the code", func(t *testing.T) {
		svc, _, _ := newCustomerTestService()

		resp, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Code: "  north-7  ", Name: "North Seven"})
		require.NoError(t, err)
		assert.Equal(t, "NORTH-7", resp.Code)
		assert.False(t, strings.ContainsAny(resp.Code, " "))
	})
}

func TestCustomerServiceGetCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCustomerTestService()

	created, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Code: "C-1", Name: "One"})
	require.NoError(t, err)

	t.Run("returns an existing customer", func(t *testing.T) {
		resp, err := svc.GetCustomer(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, resp.ID)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		_, err := svc.GetCustomer(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestCustomerServiceListCustomers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCustomerTestService()

	for _, code := range []string{"C-1", "C-2", "C-3"} {
		_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Code: code, Name: "Customer " + code})
		require.NoError(t, err)
	}

	t.Run("returns all customers", func(t *testing.T) {
		page, err := svc.ListCustomers(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 3)
	})

	t.Run("applies status filter", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = string(partner.CustomerStatusInactive)

		page, err := svc.ListCustomers(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
	})

	t.Run("defaults invalid pagination", func(t *testing.T) {
		page, err := svc.ListCustomers(ctx, shared.Filter{Page: 0, PageSize: -1})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 20, page.PageSize)
	})
}

func TestCustomerServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCustomerTestService()

	created, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Code: "C-1", Name: "One"})
	require.NoError(t, err)

	t.Run("deactivates an active customer", func(t *testing.T) {
		resp, err := svc.DeactivateCustomer(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, string(partner.CustomerStatusInactive), resp.Status)
	})

	t.Run("deactivating twice fails", func(t *testing.T) {
		_, err := svc.DeactivateCustomer(ctx, created.ID)
		require.Error(t, err)
	})

	t.Run("reactivates", func(t *testing.T) {
		resp, err := svc.ActivateCustomer(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, string(partner.CustomerStatusActive), resp.Status)
	})

	t.Run("unknown customer fails", func(t *testing.T) {
		_, err := svc.DeactivateCustomer(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}
