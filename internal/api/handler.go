package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"agent-order-service/internal/models"
	"agent-order-service/internal/service"
	"agent-order-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	pricingService *service.PricingService
	orderService   *service.OrderService
}

// NewHandler creates a new HTTP handler
func NewHandler(pricingService *service.PricingService, orderService *service.OrderService) *Handler {
	return &Handler{
		pricingService: pricingService,
		orderService:   orderService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/pricing", h.getPricingMatrix)
		v1.POST("/pricing", h.createPricing)
		v1.PUT("/pricing/update", h.updatePricing)
		v1.GET("/pricing/resolve", h.resolvePrice)

		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders", h.createOrder)
		v1.PUT("/orders/:id", h.replaceOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getPricingMatrix returns every active product priced for every active
// agent group
func (h *Handler) getPricingMatrix(c *gin.Context) {
	matrix, err := h.pricingService.GetPricingMatrix(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

// createPricing handles bulk override creation
func (h *Handler) createPricing(c *gin.Context) {
	var req service.BulkPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	created, err := h.pricingService.BulkCreate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":          "Pricing created successfully",
		"created_pricings": created,
	})
}

// updatePricing handles bulk override upsert
func (h *Handler) updatePricing(c *gin.Context) {
	var req service.BulkPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	upserted, err := h.pricingService.BulkUpsert(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Pricing updated successfully",
		"updated_pricings": upserted,
	})
}

// resolvePrice quotes the effective unit price for one product, agent
// group and quantity
func (h *Handler) resolvePrice(c *gin.Context) {
	productID, err1 := strconv.ParseInt(c.Query("product_id"), 10, 64)
	agentGroupID, err2 := strconv.ParseInt(c.Query("agent_group_id"), 10, 64)
	qty, err3 := strconv.Atoi(c.Query("qty"))
	if err1 != nil || err2 != nil || err3 != nil || qty < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "product_id, agent_group_id and qty are required positive integers",
		})
		return
	}

	var promotionID *int64
	if raw := c.Query("promotion_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid promotion_id"})
			return
		}
		promotionID = &id
	}

	price, err := h.pricingService.ResolveQuote(c.Request.Context(), productID, agentGroupID, qty, promotionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":     productID,
		"agent_group_id": agentGroupID,
		"qty":            qty,
		"unit_price":     price,
	})
}

// listOrders returns all orders with nested items
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// createOrder handles atomic order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// replaceOrder handles atomic header update plus full item replacement
func (h *Handler) replaceOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orderService.ReplaceOrder(c.Request.Context(), orderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func parseOrderID(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return orderID, true
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Storage errors fall through to 500; validation failures and conflicts
// carry their aggregated detail in the response body.
func respondError(c *gin.Context, err error) {
	var notFound *models.NotFoundError
	var conflict *models.ConflictError
	var validation *models.ValidationError
	var unknownProduct *models.UnknownProductError

	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &unknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": unknownProduct.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
