package store

import (
	"context"
	"database/sql"

	"agent-order-service/internal/models"
)

// GetPromotion retrieves a promotion by id, or nil when absent
func (s *Store) GetPromotion(ctx context.Context, id int64) (*models.Promotion, error) {
	var promo models.Promotion
	err := s.db.GetContext(ctx, &promo, "SELECT * FROM promotions WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// GetPromotionTiers retrieves the non-deleted tiers for one
// (product, promotion, agent group) scope in insertion order. The order
// matters: when quantity bands overlap, the first stored match wins.
func (s *Store) GetPromotionTiers(ctx context.Context, productID, promotionID, agentGroupID int64) ([]models.PromotionTier, error) {
	var tiers []models.PromotionTier
	err := s.db.SelectContext(ctx, &tiers, `
		SELECT * FROM promotion_agent_groups
		WHERE product_id = $1 AND promotion_id = $2 AND agent_group_id = $3 AND `+notDeleted+`
		ORDER BY id`,
		productID, promotionID, agentGroupID)
	return tiers, err
}

// CreatePromotionTier inserts one quantity-banded discount rule
func (s *Store) CreatePromotionTier(ctx context.Context, tier *models.PromotionTier) error {
	return s.db.GetContext(ctx, tier, `
		INSERT INTO promotion_agent_groups
			(product_id, promotion_id, agent_group_id, min_qty, max_qty, operation, value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`,
		tier.ProductID, tier.PromotionID, tier.AgentGroupID,
		tier.MinQty, tier.MaxQty, tier.Operation, tier.Value)
}
