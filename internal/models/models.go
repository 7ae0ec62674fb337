package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Products are administered
// externally; this service only reads them.
type Product struct {
	ID         int64           `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	Code       string          `db:"code" json:"code"`
	CategoryID int64           `db:"category_id" json:"category_id"`
	Status     string          `db:"status" json:"status"`
	StockQty   int             `db:"stock_qty" json:"stock_qty"`
	BasePrice  decimal.Decimal `db:"base_price" json:"base_price"`
	UOM        string          `db:"uom" json:"uom"`
	IsDeleted  bool            `db:"is_deleted" json:"-"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// AgentGroup is a pricing tier of sales agents
type AgentGroup struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Status    string    `db:"status" json:"status"`
	IsDeleted bool      `db:"is_deleted" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Product / agent group / promotion statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// PricingOverride is a custom price for one (product, agent group) pair.
// At most one row exists per pair.
type PricingOverride struct {
	ProductID    int64           `db:"product_id" json:"product_id"`
	AgentGroupID int64           `db:"agent_group_id" json:"agent_group_id"`
	Price        decimal.Decimal `db:"price" json:"price"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// PricingPair identifies one (product, agent group) override slot
type PricingPair struct {
	ProductID    int64 `json:"product_id"`
	AgentGroupID int64 `json:"agent_group_id"`
}

// Tier operations
const (
	TierOperationFixed      = "fixed"
	TierOperationPercentage = "percentage"
)

// PromotionTier is a quantity-banded discount rule scoped to a product,
// promotion and agent group. The [MinQty, MaxQty] band is inclusive.
type PromotionTier struct {
	ID           int64           `db:"id" json:"id"`
	ProductID    int64           `db:"product_id" json:"product_id"`
	PromotionID  int64           `db:"promotion_id" json:"promotion_id"`
	AgentGroupID int64           `db:"agent_group_id" json:"agent_group_id"`
	MinQty       int             `db:"min_qty" json:"min_qty"`
	MaxQty       int             `db:"max_qty" json:"max_qty"`
	Operation    string          `db:"operation" json:"operation"`
	Value        decimal.Decimal `db:"value" json:"value"`
	IsDeleted    bool            `db:"is_deleted" json:"-"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Matches reports whether the tier's quantity band contains qty
func (t *PromotionTier) Matches(qty int) bool {
	return qty >= t.MinQty && qty <= t.MaxQty
}

// Promotion metadata is administered externally; this service only reads
// it to decide whether a promotion is currently active.
type Promotion struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Status    string    `db:"status" json:"status"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ActiveAt reports whether the promotion applies at the given instant
func (p *Promotion) ActiveAt(now time.Time) bool {
	return p.Status == StatusActive && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// OrderStatus is the closed set of order lifecycle states
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

// orderTransitions is the legal transition table:
// pending -> approved -> shipped -> completed, with cancelled reachable
// from pending/approved and returned from shipped/completed.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusApproved, OrderStatusCancelled},
	OrderStatusApproved:  {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusCompleted, OrderStatusReturned},
	OrderStatusCompleted: {OrderStatusReturned},
	OrderStatusCancelled: {},
	OrderStatusReturned:  {},
}

// Valid reports whether s names a known status
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is a legal successor of s
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is the aggregate header. Items are always created and replaced
// together with the header in one transaction.
type Order struct {
	ID                int64           `db:"id" json:"id"`
	OrderNumber       string          `db:"order_number" json:"order_number"`
	AgentID           string          `db:"agent_id" json:"agent_id,omitempty"`
	PromotionID       *int64          `db:"promotion_id" json:"promotion_id,omitempty"`
	Address           string          `db:"address" json:"address"`
	AddressCity       string          `db:"address_city" json:"address_city,omitempty"`
	AddressState      string          `db:"address_state" json:"address_state,omitempty"`
	AddressPostalCode string          `db:"address_postal_code" json:"address_postal_code,omitempty"`
	Status            OrderStatus     `db:"status" json:"status"`
	Remark            string          `db:"remark" json:"remark,omitempty"`
	Subtotal          decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax               decimal.Decimal `db:"tax" json:"tax"`
	Total             decimal.Decimal `db:"total" json:"total"`
	ShippingPrice     decimal.Decimal `db:"shipping_price" json:"shipping_price"`
	CreditTerm        string          `db:"credit_term" json:"credit_term"`
	CreditLimit       string          `db:"credit_limit" json:"credit_limit"`
	Version           int64           `db:"version" json:"version"`
	IsDeleted         bool            `db:"is_deleted" json:"-"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem is one line of an order. ProductCode and Description are
// denormalized snapshots taken at order time.
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductCode string          `db:"product_code" json:"product_code"`
	Description string          `db:"description" json:"description,omitempty"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UOM         string          `db:"uom" json:"uom"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	LineTotal   decimal.Decimal `db:"line_total" json:"line_total"`
	IsDeleted   bool            `db:"is_deleted" json:"-"`
	IsReturn    bool            `db:"is_return" json:"is_return"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// AgentPrice is one cell of the pricing matrix: the effective price a
// given agent group pays for a product.
type AgentPrice struct {
	AgentGroupName string          `json:"agent_group_name"`
	Price          decimal.Decimal `json:"price"`
}

// ProductPricing is one pricing-matrix row: a product with its effective
// price per agent group (override when present, base price otherwise).
type ProductPricing struct {
	ProductID   int64                `json:"product_id"`
	Name        string               `json:"name"`
	BasePrice   decimal.Decimal      `json:"base_price"`
	AgentPrices map[int64]AgentPrice `json:"agent_prices"`
}

// AgentGroupSummary is the id/name projection returned with the matrix
type AgentGroupSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PricingMatrix is the full GET /pricing payload
type PricingMatrix struct {
	Products    []ProductPricing    `json:"products"`
	AgentGroups []AgentGroupSummary `json:"agent_groups"`
}
