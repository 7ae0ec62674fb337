package store

import (
	"context"
	"database/sql"
	"fmt"

	"agent-order-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const orderInsertColumns = `order_number, agent_id, promotion_id, address, address_city,
	address_state, address_postal_code, status, remark, subtotal, tax, total,
	shipping_price, credit_term, credit_limit`

// CreateOrder persists the header and all items as one transaction. The
// header insert runs first because items need the generated order id; a
// failure at any point rolls back everything.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (`+orderInsertColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, version, created_at, updated_at`,
		order.OrderNumber, order.AgentID, order.PromotionID, order.Address,
		order.AddressCity, order.AddressState, order.AddressPostalCode,
		order.Status, order.Remark, order.Subtotal, order.Tax, order.Total,
		order.ShippingPrice, order.CreditTerm, order.CreditLimit)
	if err != nil {
		return fmt.Errorf("failed to insert order header: %w", err)
	}

	if err := insertOrderItems(ctx, tx, order.ID, items); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceOrder updates the header and swaps the entire item set inside
// one transaction. The version predicate makes concurrent edits lose
// with a stale-version signal instead of silently overwriting; sql.ErrNoRows
// surfaces when the supplied version no longer matches.
func (s *Store) ReplaceOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, order, `
		UPDATE orders SET
			order_number = $1, agent_id = $2, promotion_id = $3, address = $4,
			address_city = $5, address_state = $6, address_postal_code = $7,
			status = $8, remark = $9, subtotal = $10, tax = $11, total = $12,
			shipping_price = $13, credit_term = $14, credit_limit = $15,
			version = version + 1, updated_at = NOW()
		WHERE id = $16 AND version = $17
		RETURNING id, version, created_at, updated_at`,
		order.OrderNumber, order.AgentID, order.PromotionID, order.Address,
		order.AddressCity, order.AddressState, order.AddressPostalCode,
		order.Status, order.Remark, order.Subtotal, order.Tax, order.Total,
		order.ShippingPrice, order.CreditTerm, order.CreditLimit,
		order.ID, order.Version)
	if err == sql.ErrNoRows {
		// id/version predicate matched nothing: stale version
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update order header: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM order_items WHERE order_id = $1", order.ID); err != nil {
		return fmt.Errorf("failed to delete previous order items: %w", err)
	}

	if err := insertOrderItems(ctx, tx, order.ID, items); err != nil {
		return err
	}

	return tx.Commit()
}

// insertOrderItems inserts the item set pointing at orderID within tx
func insertOrderItems(ctx context.Context, tx *sqlx.Tx, orderID int64, items []models.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
		err := tx.GetContext(ctx, &items[i], `
			INSERT INTO order_items
				(order_id, product_id, product_code, description, quantity, uom,
				 unit_price, line_total, is_return)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at`,
			items[i].OrderID, items[i].ProductID, items[i].ProductCode,
			items[i].Description, items[i].Quantity, items[i].UOM,
			items[i].UnitPrice, items[i].LineTotal, items[i].IsReturn)
		if err != nil {
			return fmt.Errorf("failed to insert order item for product %d: %w",
				items[i].ProductID, err)
		}
	}
	return nil
}

// GetOrderByID retrieves an order with its items eagerly attached, or
// nil when absent
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 AND "+notDeleted, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := s.getOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// ListOrders retrieves all orders with items attached
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE "+notDeleted+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := make([]int64, len(orders))
	for i := range orders {
		orderIDs[i] = orders[i].ID
	}

	query, args, err := sqlx.In(
		"SELECT * FROM order_items WHERE order_id IN (?) ORDER BY order_id, id", orderIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}

	byOrder := make(map[int64][]models.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

// CountOrders returns the number of non-deleted orders
func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM orders WHERE "+notDeleted)
	return count, err
}

// getOrderItems retrieves all items for an order
func (s *Store) getOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}
