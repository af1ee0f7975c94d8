package partner

import (
	"context"

	"github.com/arledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the persistence contract for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByCode(ctx context.Context, code string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
	List(ctx context.Context, filter shared.Filter) ([]Customer, int64, error)
}

// Directory is the narrow read capability the ledger core consumes to
// resolve a customer ID. Returns shared.ErrNotFound for unknown customers.
type Directory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
}
