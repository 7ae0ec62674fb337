package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOrderNotFound signals an optional order lookup that found nothing.
// It is the only "absent" state reported as a sentinel rather than a
// NotFoundError, so callers can branch without unpacking.
var ErrOrderNotFound = errors.New("order not found")

// NotFoundError reports every missing or soft-deleted id of one resource
// kind in a single error, so a caller never needs N round trips to
// discover N bad references.
type NotFoundError struct {
	Resource string
	IDs      []int64
}

func (e *NotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%ss with IDs %s not found or deleted", e.Resource, strings.Join(ids, ", "))
}

// ConflictError reports every (product, agent group) pair that already
// has an override row, or a stale order version.
type ConflictError struct {
	Reason string
	Pairs  []PricingPair
}

func (e *ConflictError) Error() string {
	if len(e.Pairs) == 0 {
		return e.Reason
	}
	pairs := make([]string, len(e.Pairs))
	for i, p := range e.Pairs {
		pairs[i] = fmt.Sprintf("productId: %d, agentGroupId: %d", p.ProductID, p.AgentGroupID)
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(pairs, "; "))
}

// ValidationError aggregates every validation failure found before any
// write is attempted.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}

// NewValidationError builds a ValidationError from one or more reasons
func NewValidationError(reasons ...string) *ValidationError {
	return &ValidationError{Reasons: reasons}
}

// UnknownProductError is returned by price resolution when no base price
// exists for the requested product. Missing overrides and tiers are
// expected states, not errors.
type UnknownProductError struct {
	ProductID int64
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("no base price available for product %d", e.ProductID)
}
