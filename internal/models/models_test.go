package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusApproved, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusReturned,
	} {
		assert.True(t, s.Valid(), "%s should be valid", s)
	}

	assert.False(t, OrderStatus("draft").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusApproved, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusApproved, OrderStatusShipped, true},
		{OrderStatusApproved, OrderStatusCancelled, true},
		{OrderStatusApproved, OrderStatusCompleted, false},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusReturned, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusCompleted, OrderStatusReturned, true},
		{OrderStatusCompleted, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusReturned, OrderStatusShipped, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPromotionTierMatches(t *testing.T) {
	tier := PromotionTier{MinQty: 10, MaxQty: 50}

	assert.True(t, tier.Matches(10))
	assert.True(t, tier.Matches(30))
	assert.True(t, tier.Matches(50))
	assert.False(t, tier.Matches(9))
	assert.False(t, tier.Matches(51))
}

func TestPromotionActiveAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	promo := Promotion{Status: StatusActive, StartDate: start, EndDate: end}

	assert.True(t, promo.ActiveAt(start))
	assert.True(t, promo.ActiveAt(end))
	assert.True(t, promo.ActiveAt(start.AddDate(0, 0, 15)))
	assert.False(t, promo.ActiveAt(start.Add(-time.Second)))
	assert.False(t, promo.ActiveAt(end.Add(time.Second)))

	promo.Status = StatusInactive
	assert.False(t, promo.ActiveAt(start.AddDate(0, 0, 15)))
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{Resource: "product", IDs: []int64{3, 7}}
	assert.Equal(t, "products with IDs 3, 7 not found or deleted", err.Error())
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{
		Reason: "pricing entries already exist",
		Pairs: []PricingPair{
			{ProductID: 1, AgentGroupID: 2},
			{ProductID: 3, AgentGroupID: 4},
		},
	}
	assert.Equal(t,
		"pricing entries already exist: productId: 1, agentGroupId: 2; productId: 3, agentGroupId: 4",
		err.Error())

	stale := &ConflictError{Reason: "stale order version 2, current is 3"}
	assert.Equal(t, "stale order version 2, current is 3", stale.Error())
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("first reason", "second reason")
	assert.Equal(t, "validation failed: first reason; second reason", err.Error())
}
