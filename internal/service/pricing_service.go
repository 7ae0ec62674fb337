package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agent-order-service/internal/broker"
	"agent-order-service/internal/models"
	"agent-order-service/internal/redisclient"
	"agent-order-service/internal/store"
	"agent-order-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PricingService owns the pricing matrix and price resolution
type PricingService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *PricingService {
	return &PricingService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// PricingEntryRequest is one (product, agent group, price) row of a bulk
// create or upsert request
type PricingEntryRequest struct {
	ProductID    int64           `json:"product_id" binding:"required"`
	AgentGroupID int64           `json:"agent_group_id" binding:"required"`
	Price        decimal.Decimal `json:"price" binding:"required"`
}

// BulkPricingRequest is the POST /pricing and PUT /pricing/update body
type BulkPricingRequest struct {
	Pricings []PricingEntryRequest `json:"pricings" binding:"required,min=1,dive"`
}

// GetPricingMatrix returns every active product joined against every
// active agent group, with the override price where one exists and the
// base price otherwise. Served from Redis when the cached copy is
// current.
func (s *PricingService) GetPricingMatrix(ctx context.Context) (*models.PricingMatrix, error) {
	ctx, span := util.StartSpan(ctx, "PricingService.GetPricingMatrix")
	defer span.End()

	if cached, err := s.redis.GetPricingMatrix(ctx); err == nil && cached != nil {
		util.PricingCacheEvents.WithLabelValues("hit").Inc()
		return cached, nil
	}
	util.PricingCacheEvents.WithLabelValues("miss").Inc()

	products, err := s.store.GetActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	groups, err := s.store.GetActiveAgentGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent groups: %w", err)
	}

	overrides, err := s.store.GetAllOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing overrides: %w", err)
	}

	overrideMap := make(map[models.PricingPair]decimal.Decimal, len(overrides))
	for _, o := range overrides {
		overrideMap[models.PricingPair{ProductID: o.ProductID, AgentGroupID: o.AgentGroupID}] = o.Price
	}

	matrix := &models.PricingMatrix{
		Products:    make([]models.ProductPricing, 0, len(products)),
		AgentGroups: make([]models.AgentGroupSummary, 0, len(groups)),
	}

	for _, g := range groups {
		matrix.AgentGroups = append(matrix.AgentGroups, models.AgentGroupSummary{ID: g.ID, Name: g.Name})
	}

	for _, p := range products {
		row := models.ProductPricing{
			ProductID:   p.ID,
			Name:        p.Name,
			BasePrice:   p.BasePrice,
			AgentPrices: make(map[int64]models.AgentPrice, len(groups)),
		}
		for _, g := range groups {
			price := p.BasePrice
			if override, ok := overrideMap[models.PricingPair{ProductID: p.ID, AgentGroupID: g.ID}]; ok {
				price = override
			}
			row.AgentPrices[g.ID] = models.AgentPrice{AgentGroupName: g.Name, Price: price}
		}
		matrix.Products = append(matrix.Products, row)
	}

	if err := s.redis.SetPricingMatrix(ctx, matrix); err != nil {
		s.logger.Warn("Failed to cache pricing matrix", zap.Error(err))
	}

	return matrix, nil
}

// BulkCreate validates product ids, agent group ids and pair uniqueness,
// then creates all override rows or none. Every offending id and every
// duplicate pair is reported, not just the first.
func (s *PricingService) BulkCreate(ctx context.Context, req *BulkPricingRequest) ([]models.PricingOverride, error) {
	ctx, span := util.StartSpan(ctx, "PricingService.BulkCreate")
	defer span.End()

	if err := s.validateReferences(ctx, req.Pricings); err != nil {
		util.PricingBulkOpsTotal.WithLabelValues("create", "rejected").Inc()
		return nil, err
	}

	pairs := requestPairs(req.Pricings)
	existing, err := s.store.GetOverridesByPairs(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing pricings: %w", err)
	}
	if len(existing) > 0 {
		duplicates := make([]models.PricingPair, len(existing))
		for i, o := range existing {
			duplicates[i] = models.PricingPair{ProductID: o.ProductID, AgentGroupID: o.AgentGroupID}
		}
		util.PricingBulkOpsTotal.WithLabelValues("create", "conflict").Inc()
		return nil, &models.ConflictError{Reason: "pricing entries already exist", Pairs: duplicates}
	}

	created, err := s.store.CreateOverrides(ctx, requestOverrides(req.Pricings))
	if err != nil {
		// a concurrent create can win the race for a pair after the
		// pre-check; the store reports that as a conflict, not a failure
		var conflict *models.ConflictError
		if errors.As(err, &conflict) {
			util.PricingBulkOpsTotal.WithLabelValues("create", "conflict").Inc()
		} else {
			util.PricingBulkOpsTotal.WithLabelValues("create", "error").Inc()
		}
		return nil, err
	}

	util.PricingBulkOpsTotal.WithLabelValues("create", "ok").Inc()
	s.logger.Info("Pricing overrides created", zap.Int("count", len(created)))
	s.afterPricingChange(ctx, models.EventTypePricingCreated, pairs)

	return created, nil
}

// BulkUpsert validates product and agent group ids, then inserts or
// replaces each pair's price and returns the persisted superset
func (s *PricingService) BulkUpsert(ctx context.Context, req *BulkPricingRequest) ([]models.PricingOverride, error) {
	ctx, span := util.StartSpan(ctx, "PricingService.BulkUpsert")
	defer span.End()

	if err := s.validateReferences(ctx, req.Pricings); err != nil {
		util.PricingBulkOpsTotal.WithLabelValues("upsert", "rejected").Inc()
		return nil, err
	}

	upserted, err := s.store.UpsertOverrides(ctx, requestOverrides(req.Pricings))
	if err != nil {
		util.PricingBulkOpsTotal.WithLabelValues("upsert", "error").Inc()
		return nil, err
	}

	util.PricingBulkOpsTotal.WithLabelValues("upsert", "ok").Inc()
	s.logger.Info("Pricing overrides upserted", zap.Int("count", len(upserted)))
	s.afterPricingChange(ctx, models.EventTypePricingUpdated, requestPairs(req.Pricings))

	return upserted, nil
}

// ResolveQuote resolves the effective unit price for one product, agent
// group and quantity, honoring the promotion only while it is active
func (s *PricingService) ResolveQuote(ctx context.Context, productID, agentGroupID int64, qty int, promotionID *int64) (decimal.Decimal, error) {
	ctx, span := util.StartSpan(ctx, "PricingService.ResolveQuote")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PriceResolveLatency.Observe(time.Since(start).Seconds())
	}()

	// Quote cache keys carry the pricing generation, so a bulk write
	// rolls every stale quote over without scanning keys.
	version, err := s.redis.PricingVersion(ctx)
	if err != nil {
		s.logger.Warn("Failed to read pricing cache version", zap.Error(err))
		version = -1
	}
	if version >= 0 {
		if cached, ok, err := s.redis.GetResolvedPrice(ctx, version, productID, agentGroupID, qty, promotionID); err == nil && ok {
			if price, perr := decimal.NewFromString(cached); perr == nil {
				util.PricingCacheEvents.WithLabelValues("hit").Inc()
				util.PriceResolutionsTotal.WithLabelValues("ok").Inc()
				return price, nil
			}
		}
	}

	products, err := s.store.GetProductsByIDs(ctx, []int64{productID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load product: %w", err)
	}

	var basePrice *decimal.Decimal
	if len(products) == 1 {
		basePrice = &products[0].BasePrice
	}

	overrides := make(map[models.PricingPair]decimal.Decimal)
	override, err := s.store.GetOverride(ctx, productID, agentGroupID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load pricing override: %w", err)
	}
	if override != nil {
		overrides[models.PricingPair{ProductID: productID, AgentGroupID: agentGroupID}] = override.Price
	}

	var tiers []models.PromotionTier
	if promotionID != nil {
		promo, err := s.store.GetPromotion(ctx, *promotionID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to load promotion: %w", err)
		}
		if promo != nil && promo.ActiveAt(time.Now()) {
			tiers, err = s.store.GetPromotionTiers(ctx, productID, *promotionID, agentGroupID)
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to load promotion tiers: %w", err)
			}
		}
	}

	price, err := ResolvePrice(productID, agentGroupID, qty, basePrice, overrides, tiers)
	if err != nil {
		util.PriceResolutionsTotal.WithLabelValues("unknown_product").Inc()
		return decimal.Zero, err
	}

	if version >= 0 {
		if err := s.redis.SetResolvedPrice(ctx, version, productID, agentGroupID, qty, promotionID, price.String()); err != nil {
			s.logger.Warn("Failed to cache resolved price", zap.Error(err))
		}
	}

	util.PriceResolutionsTotal.WithLabelValues("ok").Inc()
	return price, nil
}

// validateReferences checks that every referenced product and agent
// group exists and is not soft-deleted. Products are checked first, then
// agent groups; each failure aggregates all offending ids.
func (s *PricingService) validateReferences(ctx context.Context, entries []PricingEntryRequest) error {
	productIDs, groupIDs := distinctReferenceIDs(entries)

	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	foundProducts := make([]int64, len(products))
	for i, p := range products {
		foundProducts[i] = p.ID
	}
	if missing := missingIDs(productIDs, foundProducts); len(missing) > 0 {
		return &models.NotFoundError{Resource: "product", IDs: missing}
	}

	groups, err := s.store.GetAgentGroupsByIDs(ctx, groupIDs)
	if err != nil {
		return fmt.Errorf("failed to load agent groups: %w", err)
	}
	foundGroups := make([]int64, len(groups))
	for i, g := range groups {
		foundGroups[i] = g.ID
	}
	if missing := missingIDs(groupIDs, foundGroups); len(missing) > 0 {
		return &models.NotFoundError{Resource: "agent group", IDs: missing}
	}

	return nil
}

// afterPricingChange invalidates cached pricing and publishes the change
// event; both are best-effort once the rows are committed
func (s *PricingService) afterPricingChange(ctx context.Context, eventType string, pairs []models.PricingPair) {
	if err := s.redis.InvalidatePricing(ctx); err != nil {
		s.logger.Warn("Failed to invalidate pricing cache", zap.Error(err))
	}

	event := &models.PricingChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		Pairs: pairs,
	}
	if err := s.eventPublisher.PublishPricingChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish pricing change event", zap.Error(err))
	}
}

// distinctReferenceIDs extracts the deduplicated product and agent group
// id sets from a bulk request, preserving first-seen order
func distinctReferenceIDs(entries []PricingEntryRequest) (productIDs, groupIDs []int64) {
	seenProducts := make(map[int64]bool, len(entries))
	seenGroups := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if !seenProducts[e.ProductID] {
			seenProducts[e.ProductID] = true
			productIDs = append(productIDs, e.ProductID)
		}
		if !seenGroups[e.AgentGroupID] {
			seenGroups[e.AgentGroupID] = true
			groupIDs = append(groupIDs, e.AgentGroupID)
		}
	}
	return productIDs, groupIDs
}

// missingIDs returns every requested id absent from found, in request
// order
func missingIDs(requested, found []int64) []int64 {
	foundSet := make(map[int64]bool, len(found))
	for _, id := range found {
		foundSet[id] = true
	}
	var missing []int64
	for _, id := range requested {
		if !foundSet[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func requestPairs(entries []PricingEntryRequest) []models.PricingPair {
	pairs := make([]models.PricingPair, len(entries))
	for i, e := range entries {
		pairs[i] = models.PricingPair{ProductID: e.ProductID, AgentGroupID: e.AgentGroupID}
	}
	return pairs
}

func requestOverrides(entries []PricingEntryRequest) []models.PricingOverride {
	overrides := make([]models.PricingOverride, len(entries))
	for i, e := range entries {
		overrides[i] = models.PricingOverride{
			ProductID:    e.ProductID,
			AgentGroupID: e.AgentGroupID,
			Price:        e.Price,
		}
	}
	return overrides
}
