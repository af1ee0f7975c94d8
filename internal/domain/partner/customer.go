package partner

import (
	"time"

	"github.com/arledger/backend/internal/domain/shared"
)

// CustomerStatus represents the lifecycle status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "ACTIVE"
	CustomerStatusInactive CustomerStatus = "INACTIVE"
	CustomerStatusBlocked  CustomerStatus = "BLOCKED" // Blocked for new business, history retained
)

// IsValid checks if the status is a valid CustomerStatus
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusInactive, CustomerStatusBlocked:
		return true
	}
	return false
}

// String returns the string representation of CustomerStatus
func (s CustomerStatus) String() string {
	return string(s)
}

// Customer represents a customer aggregate root.
// The ledger core only consumes the narrow Directory capability; the full
// aggregate exists so customer lifecycle changes stay in one place.
type Customer struct {
	shared.BaseAggregateRoot
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Status      CustomerStatus `json:"status"`
	ContactName string         `json:"contact_name"`
	Phone       string         `json:"phone"`
	Email       string         `json:"email"`
	Notes       string         `json:"notes"`
}

// NewCustomer creates a new active customer
func NewCustomer(code, name string) (*Customer, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_CODE", "Customer code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Status:            CustomerStatusActive,
	}

	c.AddDomainEvent(NewCustomerCreatedEvent(c))

	return c, nil
}

// IsActive returns true if the customer can participate in new transactions
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// Deactivate marks the customer inactive
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Customer is already inactive")
	}
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerDeactivatedEvent(c))

	return nil
}

// Activate marks the customer active again
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Customer is already active")
	}
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Block blocks the customer from new business
func (c *Customer) Block(reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Block reason is required")
	}
	c.Status = CustomerStatusBlocked
	c.Notes = reason
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetContact updates contact details
func (c *Customer) SetContact(contactName, phone, email string) {
	c.ContactName = contactName
	c.Phone = phone
	c.Email = email
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
