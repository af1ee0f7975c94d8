package partner

import (
	"context"
	"strings"

	"github.com/arledger/backend/internal/domain/partner"
	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer registration and lifecycle
type CustomerService struct {
	customers partner.CustomerRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customers partner.CustomerRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customers: customers,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateCustomer registers a new active customer
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	if _, err := s.customers.FindByCode(ctx, code); err == nil {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code,
			"A customer with this code already exists")
	} else if !shared.IsNotFound(err) {
		return nil, err
	}

	customer, err := partner.NewCustomer(code, req.Name)
	if err != nil {
		return nil, err
	}
	customer.SetContact(req.ContactName, req.Phone, req.Email)
	customer.Notes = req.Notes

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("code", customer.Code))

	s.publishAll(ctx, customer.GetDomainEvents())
	customer.ClearDomainEvents()

	return newCustomerResponse(customer), nil
}

// GetCustomer returns one customer
func (s *CustomerService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return newCustomerResponse(customer), nil
}

// ListCustomers returns a page of customers
func (s *CustomerService) ListCustomers(ctx context.Context, filter shared.Filter) (*shared.Paginated[CustomerResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	customers, total, err := s.customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = *newCustomerResponse(&customers[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// DeactivateCustomer blocks a customer from new ledger activity.
// Existing invoices, payments and history are untouched.
func (s *CustomerService) DeactivateCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.mutate(ctx, customerID, func(c *partner.Customer) error {
		return c.Deactivate()
	})
}

// ActivateCustomer re-enables a deactivated customer
func (s *CustomerService) ActivateCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.mutate(ctx, customerID, func(c *partner.Customer) error {
		return c.Activate()
	})
}

func (s *CustomerService) mutate(ctx context.Context, customerID uuid.UUID, fn func(*partner.Customer) error) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := fn(customer); err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.publishAll(ctx, customer.GetDomainEvents())
	customer.ClearDomainEvents()

	return newCustomerResponse(customer), nil
}

func (s *CustomerService) publishAll(ctx context.Context, events []shared.DomainEvent) {
	for _, event := range events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}
