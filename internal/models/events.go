package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypePricingCreated = "PRICING_CREATED"
	EventTypePricingUpdated = "PRICING_UPDATED"
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderReplaced  = "ORDER_REPLACED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PricingChangedEvent is published after a bulk create or bulk upsert
// commits. Consumers use it to drop cached pricing.
type PricingChangedEvent struct {
	BaseEvent
	Pairs []PricingPair `json:"pairs"`
}

// OrderEventItem represents item data in order events
type OrderEventItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderCreatedEvent published when an order aggregate is persisted
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64            `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	AgentID     string           `json:"agent_id,omitempty"`
	Status      OrderStatus      `json:"status"`
	Total       decimal.Decimal  `json:"total"`
	Items       []OrderEventItem `json:"items"`
}

// OrderReplacedEvent published when an order's header and item set are
// atomically replaced
type OrderReplacedEvent struct {
	BaseEvent
	OrderID     int64            `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	Status      OrderStatus      `json:"status"`
	Version     int64            `json:"version"`
	Total       decimal.Decimal  `json:"total"`
	Items       []OrderEventItem `json:"items"`
}
