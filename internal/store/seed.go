package store

import (
	"context"
	"fmt"

	"agent-order-service/internal/models"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name       string
	code       string
	categoryID int64
	status     string
	stockQty   int
	basePrice  string
	uom        string
}

var seedProducts = []seedProduct{
	{"Laptop Pro X", "PROD001", 1, models.StatusActive, 50, "999.990", "unit"},
	{"Wireless Mouse", "PROD002", 1, models.StatusActive, 200, "29.990", "unit"},
	{"Office Chair", "PROD003", 2, models.StatusInactive, 30, "149.990", "unit"},
	{"Smartphone Z", "PROD004", 1, models.StatusActive, 100, "699.990", "unit"},
	{"Desk Lamp", "PROD005", 2, models.StatusActive, 75, "39.990", "unit"},
	{"Bluetooth Speaker", "PROD006", 1, models.StatusActive, 150, "59.990", "unit"},
	{"Bookshelf", "PROD007", 2, models.StatusInactive, 20, "199.990", "unit"},
	{"USB-C Cable", "PROD008", 1, models.StatusActive, 300, "9.990", "unit"},
}

var seedAgentGroups = []string{"Distributor", "Wholesaler", "Retailer"}

// EnsureSeedData inserts the default catalog when the tables are empty.
// Each table is guarded by its own count check, so re-running at every
// process start is safe.
func (s *Store) EnsureSeedData(ctx context.Context) error {
	var productCount int
	if err := s.db.GetContext(ctx, &productCount, "SELECT COUNT(*) FROM products"); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	if productCount == 0 {
		for _, p := range seedProducts {
			price, err := decimal.NewFromString(p.basePrice)
			if err != nil {
				return fmt.Errorf("invalid seed price %q: %w", p.basePrice, err)
			}
			_, err = s.db.ExecContext(ctx, `
				INSERT INTO products (name, code, category_id, status, stock_qty, base_price, uom)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				p.name, p.code, p.categoryID, p.status, p.stockQty, price, p.uom)
			if err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.code, err)
			}
		}
	}

	var groupCount int
	if err := s.db.GetContext(ctx, &groupCount, "SELECT COUNT(*) FROM agent_groups"); err != nil {
		return fmt.Errorf("failed to count agent groups: %w", err)
	}

	if groupCount == 0 {
		for _, name := range seedAgentGroups {
			_, err := s.db.ExecContext(ctx,
				"INSERT INTO agent_groups (name, status) VALUES ($1, $2)",
				name, models.StatusActive)
			if err != nil {
				return fmt.Errorf("failed to seed agent group %s: %w", name, err)
			}
		}
	}

	return nil
}
