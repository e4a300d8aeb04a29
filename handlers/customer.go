package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
	"food-delivery-backend/statemachine"
)

type PlaceOrderRequest struct {
	RestaurantID  uint                 `json:"restaurant_id" binding:"required"`
	AddressID     uint                 `json:"address_id"`
	Address       string               `json:"address"` // inline address, used when address_id is absent
	Notes         string               `json:"notes"`
	CouponCode    string               `json:"coupon_code"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	ScheduledFor  *time.Time           `json:"scheduled_for"` // nil: immediate order
	Items         []struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
		Quantity   int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

// PlaceOrder creates a new order (customer only). An order with
// scheduled_for in the future is parked as PENDING until the sweep
// promotes it; everything else starts life as PLACED.
func (h *Handler) PlaceOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate restaurant exists and is open
	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, req.RestaurantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if !restaurant.IsOpen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Restaurant is currently closed"})
		return
	}

	// Resolve the delivery address: saved address wins over inline text.
	// The chosen address is denormalized onto the order and never synced.
	deliveryAddress := req.Address
	if req.AddressID != 0 {
		var addr models.Address
		if err := h.DB.Where("id = ? AND user_id = ?", req.AddressID, customerID).First(&addr).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
			return
		}
		deliveryAddress = addr.Full()
	}
	if deliveryAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery address is required"})
		return
	}

	// Build order items from menu snapshots and calculate the total
	var orderItems []models.OrderItem
	var total float64

	for _, reqItem := range req.Items {
		var menuItem models.MenuItem
		if err := h.DB.First(&menuItem, reqItem.MenuItemID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Menu item not found"})
			return
		}
		if menuItem.RestaurantID != req.RestaurantID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Menu item does not belong to this restaurant"})
			return
		}
		if !menuItem.IsAvailable {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Menu item '" + menuItem.Name + "' is not available"})
			return
		}
		total += menuItem.Price * float64(reqItem.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID: menuItem.ID,
			Quantity:   reqItem.Quantity,
			Price:      menuItem.Price,
			Name:       menuItem.Name,
		})
	}

	// Coupon validation happens here at checkout; the cart-side coupon
	// math in the client is advisory only
	var discount float64
	if req.CouponCode != "" {
		var coupon models.Coupon
		if err := h.DB.Where("code = ? AND is_active = ?", req.CouponCode, true).First(&coupon).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coupon code"})
			return
		}
		discount = coupon.DiscountFor(total)
		if discount == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":        "Coupon requires a minimum purchase",
				"min_purchase": coupon.MinPurchase,
			})
			return
		}
	}

	finalAmount := total - discount
	if finalAmount < 0 {
		finalAmount = 0
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCOD
	}
	if paymentMethod != models.PaymentCOD && paymentMethod != models.PaymentOnline {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method. Must be COD or ONLINE"})
		return
	}

	order := models.Order{
		CustomerID:      customerID,
		RestaurantID:    req.RestaurantID,
		Status:          models.StatusPlaced,
		TotalAmount:     total,
		Discount:        discount,
		FinalAmount:     finalAmount,
		CouponCode:      req.CouponCode,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   models.PaymentPending,
		OrderType:       models.OrderImmediate,
		DeliveryAddress: deliveryAddress,
		Notes:           req.Notes,
		Items:           orderItems,
	}

	// A future scheduled_for parks the order until the sweep promotes it
	if req.ScheduledFor != nil && req.ScheduledFor.After(time.Now()) {
		order.Status = models.StatusPending
		order.OrderType = models.OrderScheduled
		order.IsScheduled = true
		order.ScheduledFor = req.ScheduledFor
	}

	if err := h.DB.Create(&order).Error; err != nil {
		h.Logger.Errorw("failed to create order", "customer_id", customerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	h.recordHistory(order.ID, "", order.Status, customerID, "Order placed by customer")

	// Fan-out and email only for live orders; a parked scheduled order is
	// invisible to the restaurant until promoted
	if order.Status == models.StatusPlaced {
		h.fanOutCreated(&order)
		h.notifyOrderPlaced(&order)
	}

	h.DB.Preload("Items.MenuItem").Preload("Restaurant").First(&order, order.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var orders []models.Order
	h.DB.Preload("Items.MenuItem").Preload("Restaurant").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var order models.Order
	if err := h.DB.
		Preload("Items.MenuItem").
		Preload("Restaurant").
		Preload("StatusHistory").
		Preload("DeliveryPartner").
		First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	elapsed := time.Since(order.CreatedAt).Minutes()
	c.JSON(http.StatusOK, gin.H{
		"order":           order,
		"minutes_elapsed": int(elapsed),
	})
}

// CancelOrder cancels an order while the customer window is still open
func (h *Handler) CancelOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var order models.Order
	if err := h.DB.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	// A parked scheduled order can always be cancelled before promotion
	if order.Status != models.StatusPending {
		if err := statemachine.CanTransition(order.Status, models.StatusCancelled, statemachine.ActorCustomer); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":         "Cannot cancel order",
				"reason":        err.Error(),
				"current_state": order.Status,
			})
			return
		}
	}

	prevStatus := order.Status
	if !h.applyTransition(&order, models.StatusCancelled, nil) {
		c.JSON(http.StatusConflict, gin.H{"error": "Order changed state, refresh and try again"})
		return
	}
	order.Status = models.StatusCancelled

	h.recordHistory(order.ID, prevStatus, models.StatusCancelled, customerID, "Order cancelled by customer")
	h.fanOutUpdate(&order, false)

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order_id": order.ID})
}
