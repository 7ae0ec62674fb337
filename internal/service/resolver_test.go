package service

import (
	"testing"

	"agent-order-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolvePriceBasePriceFallback(t *testing.T) {
	base := dec("100")

	price, err := ResolvePrice(1, 2, 5, &base, nil, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("100")), "got %s", price)
}

func TestResolvePriceUnknownProduct(t *testing.T) {
	_, err := ResolvePrice(42, 2, 5, nil, nil, nil)
	require.Error(t, err)

	var unknown *models.UnknownProductError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, int64(42), unknown.ProductID)
}

func TestResolvePriceOverrideReplacesBase(t *testing.T) {
	base := dec("100")
	overrides := map[models.PricingPair]decimal.Decimal{
		{ProductID: 1, AgentGroupID: 2}: dec("85"),
	}

	price, err := ResolvePrice(1, 2, 5, &base, overrides, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("85")), "got %s", price)
}

func TestResolvePriceOverrideForOtherPairIgnored(t *testing.T) {
	base := dec("100")
	overrides := map[models.PricingPair]decimal.Decimal{
		{ProductID: 1, AgentGroupID: 3}: dec("85"),
	}

	price, err := ResolvePrice(1, 2, 5, &base, overrides, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("100")), "got %s", price)
}

func TestResolvePriceFixedTierInsideBand(t *testing.T) {
	base := dec("100")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 10, MaxQty: 50, Operation: models.TierOperationFixed, Value: dec("20")},
	}

	price, err := ResolvePrice(1, 2, 20, &base, nil, tiers)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("80")), "got %s", price)
}

func TestResolvePriceFixedTierOutsideBand(t *testing.T) {
	base := dec("100")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 10, MaxQty: 50, Operation: models.TierOperationFixed, Value: dec("20")},
	}

	price, err := ResolvePrice(1, 2, 5, &base, nil, tiers)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("100")), "got %s", price)
}

func TestResolvePriceBandBoundariesInclusive(t *testing.T) {
	base := dec("100")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 10, MaxQty: 50, Operation: models.TierOperationFixed, Value: dec("20")},
	}

	for _, qty := range []int{10, 50} {
		price, err := ResolvePrice(1, 2, qty, &base, nil, tiers)
		require.NoError(t, err)
		assert.True(t, price.Equal(dec("80")), "qty %d got %s", qty, price)
	}
	for _, qty := range []int{9, 51} {
		price, err := ResolvePrice(1, 2, qty, &base, nil, tiers)
		require.NoError(t, err)
		assert.True(t, price.Equal(dec("100")), "qty %d got %s", qty, price)
	}
}

func TestResolvePricePercentageTier(t *testing.T) {
	base := dec("100")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 100, Operation: models.TierOperationPercentage, Value: dec("25")},
	}

	price, err := ResolvePrice(1, 2, 10, &base, nil, tiers)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("75")), "got %s", price)
}

func TestResolvePriceFixedDiscountFloorsAtZero(t *testing.T) {
	base := dec("15")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 100, Operation: models.TierOperationFixed, Value: dec("20")},
	}

	price, err := ResolvePrice(1, 2, 10, &base, nil, tiers)
	require.NoError(t, err)
	assert.True(t, price.IsZero(), "got %s", price)
}

func TestResolvePriceTierAppliesOnTopOfOverride(t *testing.T) {
	base := dec("100")
	overrides := map[models.PricingPair]decimal.Decimal{
		{ProductID: 1, AgentGroupID: 2}: dec("80"),
	}
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 100, Operation: models.TierOperationPercentage, Value: dec("10")},
	}

	price, err := ResolvePrice(1, 2, 10, &base, overrides, tiers)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("72")), "got %s", price)
}

func TestResolvePriceFirstMatchingTierWins(t *testing.T) {
	base := dec("100")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 50, Operation: models.TierOperationFixed, Value: dec("10")},
		{ID: 2, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 50, Operation: models.TierOperationPercentage, Value: dec("50")},
	}

	price, err := ResolvePrice(1, 2, 10, &base, nil, tiers)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("90")), "got %s", price)
}

func TestResolvePriceSkipsDeletedAndForeignTiers(t *testing.T) {
	base := dec("100")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 50, Operation: models.TierOperationFixed, Value: dec("50"), IsDeleted: true},
		{ID: 2, ProductID: 9, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 50, Operation: models.TierOperationFixed, Value: dec("50")},
		{ID: 3, ProductID: 1, PromotionID: 7, AgentGroupID: 9,
			MinQty: 1, MaxQty: 50, Operation: models.TierOperationFixed, Value: dec("50")},
		{ID: 4, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 50, Operation: models.TierOperationFixed, Value: dec("10")},
	}

	price, err := ResolvePrice(1, 2, 10, &base, nil, tiers)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("90")), "got %s", price)
}

func TestResolvePriceRoundsHalfUpAtStorageScale(t *testing.T) {
	base := dec("10.0075")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 100, Operation: models.TierOperationPercentage, Value: dec("50")},
	}

	price, err := ResolvePrice(1, 2, 10, &base, nil, tiers)
	require.NoError(t, err)
	// 10.0075 * 0.5 = 5.00375, half up at 3dp -> 5.004
	assert.Equal(t, "5.004", price.StringFixed(3))
}

func TestResolvePriceDoesNotMutateBasePrice(t *testing.T) {
	base := dec("100")
	tiers := []models.PromotionTier{
		{ID: 1, ProductID: 1, PromotionID: 7, AgentGroupID: 2,
			MinQty: 1, MaxQty: 100, Operation: models.TierOperationFixed, Value: dec("20")},
	}

	_, err := ResolvePrice(1, 2, 10, &base, nil, tiers)
	require.NoError(t, err)
	assert.True(t, base.Equal(dec("100")))
}
