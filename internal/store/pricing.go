package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agent-order-service/internal/models"

	"github.com/lib/pq"
)

// GetAllOverrides retrieves the full override table, ordered by product
// id then agent group id for a deterministic matrix layout
func (s *Store) GetAllOverrides(ctx context.Context) ([]models.PricingOverride, error) {
	var overrides []models.PricingOverride
	err := s.db.SelectContext(ctx, &overrides,
		"SELECT * FROM product_agent_pricings ORDER BY product_id, agent_group_id")
	return overrides, err
}

// GetOverridesByPairs retrieves override rows matching exactly the given
// (product, agent group) pairs
func (s *Store) GetOverridesByPairs(ctx context.Context, pairs []models.PricingPair) ([]models.PricingOverride, error) {
	if len(pairs) == 0 {
		return []models.PricingOverride{}, nil
	}

	placeholders := make([]string, len(pairs))
	args := make([]interface{}, 0, len(pairs)*2)
	for i, p := range pairs {
		placeholders[i] = fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
		args = append(args, p.ProductID, p.AgentGroupID)
	}

	query := fmt.Sprintf(
		"SELECT * FROM product_agent_pricings WHERE (product_id, agent_group_id) IN (%s) ORDER BY product_id, agent_group_id",
		strings.Join(placeholders, ", "))

	var overrides []models.PricingOverride
	err := s.db.SelectContext(ctx, &overrides, query, args...)
	return overrides, err
}

// GetOverride retrieves the override for one pair, or nil when the pair
// has no custom price
func (s *Store) GetOverride(ctx context.Context, productID, agentGroupID int64) (*models.PricingOverride, error) {
	overrides, err := s.GetOverridesByPairs(ctx, []models.PricingPair{{ProductID: productID, AgentGroupID: agentGroupID}})
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return nil, nil
	}
	return &overrides[0], nil
}

// CreateOverrides inserts all rows inside one transaction. The caller is
// expected to have checked for duplicates; a pair that slips through
// concurrently trips the unique constraint, aborts the whole batch and
// surfaces as a ConflictError naming that pair.
func (s *Store) CreateOverrides(ctx context.Context, overrides []models.PricingOverride) ([]models.PricingOverride, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	created := make([]models.PricingOverride, 0, len(overrides))
	for _, o := range overrides {
		var row models.PricingOverride
		err := tx.GetContext(ctx, &row, `
			INSERT INTO product_agent_pricings (product_id, agent_group_id, price)
			VALUES ($1, $2, $3)
			RETURNING *`,
			o.ProductID, o.AgentGroupID, o.Price)
		if isUniqueViolation(err) {
			return nil, &models.ConflictError{
				Reason: "pricing entries already exist",
				Pairs:  []models.PricingPair{{ProductID: o.ProductID, AgentGroupID: o.AgentGroupID}},
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create pricing override (%d, %d): %w",
				o.ProductID, o.AgentGroupID, err)
		}
		created = append(created, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// UpsertOverrides inserts or replaces all rows inside one transaction and
// returns the persisted state of every affected pair
func (s *Store) UpsertOverrides(ctx context.Context, overrides []models.PricingOverride) ([]models.PricingOverride, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	upserted := make([]models.PricingOverride, 0, len(overrides))
	for _, o := range overrides {
		var row models.PricingOverride
		err := tx.GetContext(ctx, &row, `
			INSERT INTO product_agent_pricings (product_id, agent_group_id, price)
			VALUES ($1, $2, $3)
			ON CONFLICT (product_id, agent_group_id)
			DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()
			RETURNING *`,
			o.ProductID, o.AgentGroupID, o.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert pricing override (%d, %d): %w",
				o.ProductID, o.AgentGroupID, err)
		}
		upserted = append(upserted, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return upserted, nil
}
