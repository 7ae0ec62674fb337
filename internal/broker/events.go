package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"agent-order-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishPricingChanged publishes a PricingCreated or PricingUpdated
// event after a bulk pricing write commits
func (ep *EventPublisher) PublishPricingChanged(ctx context.Context, event *models.PricingChangedEvent) error {
	return ep.producer.PublishEvent(ctx, "pricing", event)
}

// PublishOrderCreated publishes an OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderReplaced publishes an OrderReplaced event
func (ep *EventPublisher) PublishOrderReplaced(ctx context.Context, event *models.OrderReplacedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onPricingChanged func(context.Context, *models.PricingChangedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPricingChanged registers a handler for pricing change events
func (eh *EventHandler) OnPricingChanged(handler func(context.Context, *models.PricingChangedEvent) error) {
	eh.onPricingChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypePricingCreated, models.EventTypePricingUpdated:
		if eh.onPricingChanged != nil {
			var event models.PricingChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal pricing change event: %w", err)
			}
			return eh.onPricingChanged(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
