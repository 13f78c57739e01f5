package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ticketing-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orders  *service.OrderService
	coupons *service.CouponService
	tickets *service.TicketService
	catalog *service.CatalogService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orders *service.OrderService,
	coupons *service.CouponService,
	tickets *service.TicketService,
	catalog *service.CatalogService,
) *Handler {
	return &Handler{
		orders:  orders,
		coupons: coupons,
		tickets: tickets,
		catalog: catalog,
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
	v1.Use(claimsMiddleware())

	customer := v1.Group("", requireRole(RoleCustomer))
	{
		customer.POST("/orders", h.createOrder)
		customer.GET("/orders", h.listOrders)
		customer.GET("/orders/payment/:reference", h.getOrderByReference)
		customer.GET("/orders/:id", h.getOrder)
		customer.POST("/orders/:id/confirm", h.confirmPayment)
		customer.GET("/coupons/validate", h.validateCoupon)
		customer.GET("/tickets", h.listTickets)
		customer.GET("/tickets/:id", h.getTicket)
	}

	validator := v1.Group("", requireRole(RoleValidator, RoleAdmin))
	{
		validator.POST("/tickets/validate", h.validateTicket)
	}

	admin := v1.Group("/admin", requireRole(RoleAdmin))
	{
		admin.POST("/coupons", h.createCoupon)
		admin.PUT("/events/:id/capacity", h.updateEventCapacity)
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

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	claims := getClaims(c)

	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "invalid request body",
		})
		return
	}

	resp, err := h.orders.CreateOrder(c.Request.Context(), claims.TenantID, claims.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// listOrders handles the caller's order history
func (h *Handler) listOrders(c *gin.Context) {
	claims := getClaims(c)

	orders, err := h.orders.ListOrders(c.Request.Context(), claims.TenantID, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	claims := getClaims(c)

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "invalid order ID",
		})
		return
	}

	order, items, err := h.orders.GetOrder(c.Request.Context(), claims.TenantID, claims.UserID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}

// getOrderByReference resolves an order from its payment reference
func (h *Handler) getOrderByReference(c *gin.Context) {
	claims := getClaims(c)

	order, err := h.orders.GetOrderByPaymentReference(
		c.Request.Context(), claims.TenantID, claims.UserID, c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// confirmPayment handles payment confirmation for a pending order
func (h *Handler) confirmPayment(c *gin.Context) {
	claims := getClaims(c)

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "invalid order ID",
		})
		return
	}

	resp, err := h.orders.ConfirmPayment(c.Request.Context(), claims.TenantID, claims.UserID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// validateCoupon handles read-only coupon checks
func (h *Handler) validateCoupon(c *gin.Context) {
	claims := getClaims(c)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "coupon code is required",
		})
		return
	}

	result, err := h.coupons.Validate(c.Request.Context(), claims.TenantID, code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// createCoupon handles admin coupon creation
func (h *Handler) createCoupon(c *gin.Context) {
	claims := getClaims(c)

	var req service.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "invalid request body",
		})
		return
	}

	coupon, err := h.coupons.Create(c.Request.Context(), claims.TenantID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

// updateEventCapacity handles admin capacity edits
func (h *Handler) updateEventCapacity(c *gin.Context) {
	claims := getClaims(c)

	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "invalid event ID",
		})
		return
	}

	var req struct {
		MaxCapacity int `json:"max_capacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "invalid request body",
		})
		return
	}

	event, err := h.catalog.UpdateEventCapacity(
		c.Request.Context(), claims.TenantID, claims.UserID, eventID, req.MaxCapacity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// listTickets handles the caller's ticket listing
func (h *Handler) listTickets(c *gin.Context) {
	claims := getClaims(c)

	tickets, err := h.tickets.ListMyTickets(c.Request.Context(), claims.UserID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// getTicket handles get ticket by ID
func (h *Handler) getTicket(c *gin.Context) {
	claims := getClaims(c)

	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "invalid ticket ID",
		})
		return
	}

	ticket, err := h.tickets.GetMyTicket(c.Request.Context(), claims.UserID, ticketID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// validateTicket handles validator-facing ticket redemption
func (h *Handler) validateTicket(c *gin.Context) {
	claims := getClaims(c)

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": "ticket code is required",
		})
		return
	}

	result, err := h.tickets.Validate(c.Request.Context(), claims.TenantID, claims.UserID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondError maps the service error taxonomy onto HTTP statuses with
// machine-readable reason codes.
func respondError(c *gin.Context, err error) {
	var (
		validationErr   *service.ValidationError
		notFoundErr     *service.NotFoundError
		inventoryErr    *service.InsufficientInventoryError
		invalidStateErr *service.InvalidStateError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "VALIDATION_ERROR",
			"error": validationErr.Message,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"code":  "NOT_FOUND",
			"error": notFoundErr.Error(),
		})
	case errors.As(err, &inventoryErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "INSUFFICIENT_INVENTORY",
			"error": inventoryErr.Error(),
		})
	case errors.As(err, &invalidStateErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "INVALID_STATE",
			"error": invalidStateErr.Message,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  "INTERNAL",
			"error": "internal server error",
		})
	}
}
