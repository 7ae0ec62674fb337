package service

import (
	"errors"
	"testing"

	"agent-order-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTotalsAccepts(t *testing.T) {
	req := &CreateOrderRequest{
		Subtotal:      dec("250"),
		Tax:           dec("25"),
		ShippingPrice: dec("10"),
		Total:         dec("285"),
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 2, UnitPrice: dec("100"), LineTotal: dec("200")},
			{ProductID: 2, Quantity: 1, UnitPrice: dec("50"), LineTotal: dec("50")},
		},
	}

	assert.NoError(t, verifyTotals(req))
}

func TestVerifyTotalsRejectsBadLineTotal(t *testing.T) {
	req := &CreateOrderRequest{
		Subtotal:      dec("200"),
		Tax:           dec("0"),
		ShippingPrice: dec("0"),
		Total:         dec("200"),
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 2, UnitPrice: dec("100"), LineTotal: dec("150")},
		},
	}

	err := verifyTotals(req)
	require.Error(t, err)

	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	// line total mismatch also throws off the subtotal check
	assert.Len(t, validation.Reasons, 2)
	assert.Contains(t, validation.Reasons[0], "item 0")
}

func TestVerifyTotalsRejectsBadSubtotalAndTotal(t *testing.T) {
	req := &CreateOrderRequest{
		Subtotal:      dec("999"),
		Tax:           dec("0"),
		ShippingPrice: dec("0"),
		Total:         dec("111"),
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 1, UnitPrice: dec("100"), LineTotal: dec("100")},
		},
	}

	err := verifyTotals(req)
	require.Error(t, err)

	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Len(t, validation.Reasons, 2)
}

func TestVerifyTotalsAggregatesEveryBadLine(t *testing.T) {
	req := &CreateOrderRequest{
		Subtotal:      dec("300"),
		Tax:           dec("0"),
		ShippingPrice: dec("0"),
		Total:         dec("300"),
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 2, UnitPrice: dec("100"), LineTotal: dec("150")},
			{ProductID: 2, Quantity: 1, UnitPrice: dec("100"), LineTotal: dec("150")},
		},
	}

	err := verifyTotals(req)
	require.Error(t, err)

	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Reasons[0], "item 0")
	assert.Contains(t, validation.Reasons[1], "item 1")
}

func TestVerifyTotalsRoundsLineAtStorageScale(t *testing.T) {
	// 3 x 9.3335 = 28.0005, half up at 3dp -> 28.001
	req := &CreateOrderRequest{
		Subtotal:      dec("28.001"),
		Tax:           dec("0"),
		ShippingPrice: dec("0"),
		Total:         dec("28.001"),
		Items: []OrderItemRequest{
			{ProductID: 1, Quantity: 3, UnitPrice: dec("9.3335"), LineTotal: dec("28.001")},
		},
	}

	assert.NoError(t, verifyTotals(req))
}

func TestInvalidProductsErrorIsValidation(t *testing.T) {
	err := invalidProductsError([]int64{3, 7})

	// bad product references in an order body reject as 400, never 404
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	var notFound *models.NotFoundError
	assert.False(t, errors.As(err, &notFound))

	assert.Equal(t, "validation failed: invalid product ids: 3, 7", err.Error())
}

func TestDistinctProductIDs(t *testing.T) {
	items := []OrderItemRequest{
		{ProductID: 3},
		{ProductID: 1},
		{ProductID: 3},
		{ProductID: 2},
		{ProductID: 1},
	}

	assert.Equal(t, []int64{3, 1, 2}, distinctProductIDs(items))
}

func TestBuildOrderCarriesStatus(t *testing.T) {
	req := &CreateOrderRequest{
		OrderNumber: "ORD-100",
		Address:     "1 Main St",
		Subtotal:    dec("100"),
		Total:       dec("100"),
	}

	order := buildOrder(req, models.OrderStatusPending)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "ORD-100", order.OrderNumber)
	assert.Zero(t, order.ID)
}

func TestToEventItems(t *testing.T) {
	items := []models.OrderItem{
		{ID: 10, OrderID: 5, ProductID: 1, Quantity: 2, UnitPrice: dec("100"), LineTotal: dec("200")},
	}

	eventItems := toEventItems(items)
	require.Len(t, eventItems, 1)
	assert.Equal(t, int64(1), eventItems[0].ProductID)
	assert.Equal(t, 2, eventItems[0].Quantity)
	assert.True(t, eventItems[0].LineTotal.Equal(dec("200")))
}
