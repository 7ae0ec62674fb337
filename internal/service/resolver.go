package service

import (
	"agent-order-service/internal/models"

	"github.com/shopspring/decimal"
)

// priceScale is the fixed-point scale of every stored money column
const priceScale = 3

var oneHundred = decimal.NewFromInt(100)

// ResolvePrice computes the effective unit price for one product /
// agent group / quantity combination.
//
// The working price starts at the product's base price. An override for
// the pair replaces it outright; there is no blended state. A promotion
// tier whose quantity band contains qty then adjusts the working price:
// fixed tiers subtract a currency amount (floored at zero), percentage
// tiers multiply by (1 - value/100). When bands overlap, the first tier
// in stored order wins. Rounding happens once, at the end, half up to
// the storage scale.
//
// A nil basePrice means the product is unknown and resolution fails.
// A missing override or tier is an expected no-customization state.
func ResolvePrice(
	productID, agentGroupID int64,
	qty int,
	basePrice *decimal.Decimal,
	overrides map[models.PricingPair]decimal.Decimal,
	tiers []models.PromotionTier,
) (decimal.Decimal, error) {
	if basePrice == nil {
		return decimal.Zero, &models.UnknownProductError{ProductID: productID}
	}

	price := *basePrice
	if override, ok := overrides[models.PricingPair{ProductID: productID, AgentGroupID: agentGroupID}]; ok {
		price = override
	}

	for i := range tiers {
		tier := &tiers[i]
		if tier.IsDeleted || tier.ProductID != productID || tier.AgentGroupID != agentGroupID {
			continue
		}
		if !tier.Matches(qty) {
			continue
		}

		switch tier.Operation {
		case models.TierOperationFixed:
			price = price.Sub(tier.Value)
			if price.IsNegative() {
				price = decimal.Zero
			}
		case models.TierOperationPercentage:
			price = price.Mul(oneHundred.Sub(tier.Value)).Div(oneHundred)
		}
		break
	}

	// Round half up, once, at the storage scale
	return price.Round(priceScale), nil
}
