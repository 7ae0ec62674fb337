package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"agent-order-service/internal/broker"
	"agent-order-service/internal/models"
	"agent-order-service/internal/store"
	"agent-order-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService composes and persists order aggregates
type OrderService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// OrderItemRequest represents one line of an order request
type OrderItemRequest struct {
	ProductID   int64           `json:"product_id" binding:"required"`
	ProductCode string          `json:"product_code" binding:"required,min=3"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UOM         string          `json:"uom" binding:"required,oneof=pc kg box unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	IsReturn    bool            `json:"is_return"`
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	OrderNumber       string             `json:"order_number" binding:"required,min=3"`
	AgentID           string             `json:"agent_id"`
	PromotionID       *int64             `json:"promotion_id"`
	Address           string             `json:"address" binding:"required"`
	AddressCity       string             `json:"address_city"`
	AddressState      string             `json:"address_state"`
	AddressPostalCode string             `json:"address_postal_code"`
	Status            models.OrderStatus `json:"status"`
	Remark            string             `json:"remark"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	Tax               decimal.Decimal    `json:"tax"`
	Total             decimal.Decimal    `json:"total"`
	ShippingPrice     decimal.Decimal    `json:"shipping_price"`
	CreditTerm        string             `json:"credit_term"`
	CreditLimit       string             `json:"credit_limit"`
	Items             []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest replaces an order's header and full item set. The
// caller must echo back the version it read; a stale version is a
// conflict.
type UpdateOrderRequest struct {
	CreateOrderRequest
	Version int64 `json:"version"`
}

// CreateOrder validates the aggregate, then persists the header and all
// items atomically and returns the read-back persisted order
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if len(req.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_items").Inc()
		return nil, models.NewValidationError("order must include at least one item")
	}

	if err := s.validateProducts(ctx, req.Items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	if err := verifyTotals(req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("totals_mismatch").Inc()
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	if !status.Valid() {
		util.OrdersFailedTotal.WithLabelValues("invalid_status").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("unknown order status %q", req.Status))
	}

	order := buildOrder(req, status)
	items := buildItems(req.Items)

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	util.OrderItemsPerOrder.Observe(float64(len(items)))
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(items)))

	persisted, err := s.store.GetOrderByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back order: %w", err)
	}

	s.publishOrderCreated(ctx, persisted)
	return persisted, nil
}

// GetOrder retrieves an order with items, or nil when absent
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

// ListOrders retrieves all orders with items attached
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.ListOrders(ctx)
}

// ReplaceOrder atomically updates the header and swaps the entire item
// set. The prior items are deleted, never diffed; a failure mid-way
// leaves the previous aggregate fully intact.
func (s *OrderService) ReplaceOrder(ctx context.Context, orderID int64, req *UpdateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ReplaceOrder")
	defer span.End()

	existing, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if existing == nil {
		return nil, models.ErrOrderNotFound
	}

	if len(req.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_items").Inc()
		return nil, models.NewValidationError("order must include at least one item")
	}

	if err := s.validateProducts(ctx, req.Items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	if err := verifyTotals(&req.CreateOrderRequest); err != nil {
		util.OrdersFailedTotal.WithLabelValues("totals_mismatch").Inc()
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = existing.Status
	}
	if !status.Valid() {
		util.OrdersFailedTotal.WithLabelValues("invalid_status").Inc()
		return nil, models.NewValidationError(fmt.Sprintf("unknown order status %q", req.Status))
	}
	if status != existing.Status && !existing.Status.CanTransitionTo(status) {
		util.OrdersFailedTotal.WithLabelValues("illegal_transition").Inc()
		return nil, models.NewValidationError(
			fmt.Sprintf("illegal status transition %s -> %s", existing.Status, status))
	}

	if req.Version != existing.Version {
		util.OrdersFailedTotal.WithLabelValues("stale_version").Inc()
		return nil, &models.ConflictError{
			Reason: fmt.Sprintf("stale order version %d, current is %d", req.Version, existing.Version),
		}
	}

	order := buildOrder(&req.CreateOrderRequest, status)
	order.ID = orderID
	order.Version = req.Version
	items := buildItems(req.Items)

	if err := s.store.ReplaceOrder(ctx, order, items); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Another edit committed between our read and this write
			util.OrdersFailedTotal.WithLabelValues("stale_version").Inc()
			return nil, &models.ConflictError{
				Reason: fmt.Sprintf("stale order version %d", req.Version),
			}
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to replace order: %w", err)
	}

	util.OrdersReplacedTotal.Inc()
	util.OrderItemsPerOrder.Observe(float64(len(items)))
	s.logger.Info("Order replaced",
		zap.Int64("order_id", orderID),
		zap.Int64("version", order.Version),
		zap.Int("items", len(items)))

	persisted, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back order: %w", err)
	}

	s.publishOrderReplaced(ctx, persisted)
	return persisted, nil
}

// validateProducts checks the distinct product id set of the items in
// one batch lookup and aggregates every unknown id. Bad references in an
// order body are a request-shape problem, reported as a validation
// failure rather than a missing-resource lookup.
func (s *OrderService) validateProducts(ctx context.Context, items []OrderItemRequest) error {
	productIDs := distinctProductIDs(items)

	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	if len(products) < len(productIDs) {
		found := make([]int64, len(products))
		for i, p := range products {
			found[i] = p.ID
		}
		return invalidProductsError(missingIDs(productIDs, found))
	}
	return nil
}

// invalidProductsError reports every unknown or soft-deleted product id
// referenced by an order in a single validation failure
func invalidProductsError(ids []int64) *models.ValidationError {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = fmt.Sprintf("%d", id)
	}
	return models.NewValidationError("invalid product ids: " + strings.Join(strs, ", "))
}

// verifyTotals recomputes every money field from unit price and quantity
// and rejects the request when the supplied values disagree. Client
// totals are not trusted.
func verifyTotals(req *CreateOrderRequest) error {
	var reasons []string
	subtotal := decimal.Zero

	for i, item := range req.Items {
		expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(priceScale)
		if !expected.Equal(item.LineTotal) {
			reasons = append(reasons, fmt.Sprintf(
				"item %d: line total %s does not equal unit price %s x qty %d (%s)",
				i, item.LineTotal, item.UnitPrice, item.Quantity, expected))
		}
		subtotal = subtotal.Add(expected)
	}

	if !subtotal.Equal(req.Subtotal) {
		reasons = append(reasons, fmt.Sprintf(
			"subtotal %s does not equal sum of line totals %s", req.Subtotal, subtotal))
	}

	expectedTotal := subtotal.Add(req.Tax).Add(req.ShippingPrice).Round(priceScale)
	if !expectedTotal.Equal(req.Total) {
		reasons = append(reasons, fmt.Sprintf(
			"total %s does not equal subtotal + tax + shipping (%s)", req.Total, expectedTotal))
	}

	if len(reasons) > 0 {
		return &models.ValidationError{Reasons: reasons}
	}
	return nil
}

// distinctProductIDs extracts the deduplicated product id set in
// first-seen order
func distinctProductIDs(items []OrderItemRequest) []int64 {
	seen := make(map[int64]bool, len(items))
	var ids []int64
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

func buildOrder(req *CreateOrderRequest, status models.OrderStatus) *models.Order {
	return &models.Order{
		OrderNumber:       req.OrderNumber,
		AgentID:           req.AgentID,
		PromotionID:       req.PromotionID,
		Address:           req.Address,
		AddressCity:       req.AddressCity,
		AddressState:      req.AddressState,
		AddressPostalCode: req.AddressPostalCode,
		Status:            status,
		Remark:            req.Remark,
		Subtotal:          req.Subtotal,
		Tax:               req.Tax,
		Total:             req.Total,
		ShippingPrice:     req.ShippingPrice,
		CreditTerm:        req.CreditTerm,
		CreditLimit:       req.CreditLimit,
	}
}

func buildItems(reqs []OrderItemRequest) []models.OrderItem {
	items := make([]models.OrderItem, len(reqs))
	for i, r := range reqs {
		items[i] = models.OrderItem{
			ProductID:   r.ProductID,
			ProductCode: r.ProductCode,
			Description: r.Description,
			Quantity:    r.Quantity,
			UOM:         r.UOM,
			UnitPrice:   r.UnitPrice,
			LineTotal:   r.LineTotal,
			IsReturn:    r.IsReturn,
		}
	}
	return items
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order) {
	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		AgentID:     order.AgentID,
		Status:      order.Status,
		Total:       order.Total,
		Items:       toEventItems(order.Items),
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}
}

func (s *OrderService) publishOrderReplaced(ctx context.Context, order *models.Order) {
	event := &models.OrderReplacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderReplaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Version:     order.Version,
		Total:       order.Total,
		Items:       toEventItems(order.Items),
	}
	if err := s.eventPublisher.PublishOrderReplaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderReplaced event", zap.Error(err))
	}
}

func toEventItems(items []models.OrderItem) []models.OrderEventItem {
	eventItems := make([]models.OrderEventItem, len(items))
	for i, item := range items {
		eventItems[i] = models.OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}
	return eventItems
}
