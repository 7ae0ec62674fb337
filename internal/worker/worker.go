package worker

import (
	"context"
	"log"

	"agent-order-service/internal/broker"
	"agent-order-service/internal/models"
	"agent-order-service/internal/service"
)

// PricingCacheWorker listens for pricing change events and rebuilds the
// cached pricing matrix, so instances other than the one that took the
// write serve fresh prices without waiting for TTL expiry.
type PricingCacheWorker struct {
	consumer       *broker.Consumer
	eventHandler   *broker.EventHandler
	pricingService *service.PricingService
}

// NewPricingCacheWorker creates a new pricing cache worker
func NewPricingCacheWorker(
	consumer *broker.Consumer,
	pricingService *service.PricingService,
) *PricingCacheWorker {
	w := &PricingCacheWorker{
		consumer:       consumer,
		pricingService: pricingService,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnPricingChanged(w.handlePricingChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *PricingCacheWorker) Start(ctx context.Context) error {
	log.Println("Starting pricing cache worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PricingCacheWorker) Stop() error {
	log.Println("Stopping pricing cache worker...")
	return w.consumer.Close()
}

// handlePricingChanged rebuilds the matrix cache after a pricing write.
// GetPricingMatrix repopulates Redis as a side effect of the read.
func (w *PricingCacheWorker) handlePricingChanged(ctx context.Context, event *models.PricingChangedEvent) error {
	log.Printf("Pricing changed (%s), refreshing cached matrix: %d pairs",
		event.EventType, len(event.Pairs))

	if _, err := w.pricingService.GetPricingMatrix(ctx); err != nil {
		log.Printf("Failed to refresh pricing matrix cache: %v", err)
		return err
	}
	return nil
}
