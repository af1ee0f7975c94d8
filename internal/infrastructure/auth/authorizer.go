package auth

import (
	"context"

	"github.com/google/uuid"
)

// StaticBalanceAuthorizer permits manual balance adjustments for a fixed
// set of operator IDs loaded from configuration. An empty set denies all
// adjustments, which is the safe default for a fresh deployment.
type StaticBalanceAuthorizer struct {
	allowed map[uuid.UUID]struct{}
}

// NewStaticBalanceAuthorizer creates an authorizer from a list of operator
// ID strings. Entries that do not parse as UUIDs are ignored.
func NewStaticBalanceAuthorizer(operatorIDs []string) *StaticBalanceAuthorizer {
	allowed := make(map[uuid.UUID]struct{}, len(operatorIDs))
	for _, raw := range operatorIDs {
		if id, err := uuid.Parse(raw); err == nil {
			allowed[id] = struct{}{}
		}
	}
	return &StaticBalanceAuthorizer{allowed: allowed}
}

// CanAdjustBalance reports whether the operator may post manual adjustments
func (a *StaticBalanceAuthorizer) CanAdjustBalance(_ context.Context, operatorID uuid.UUID) (bool, error) {
	_, ok := a.allowed[operatorID]
	return ok, nil
}
