package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
	"food-delivery-backend/statemachine"
)

// GetAvailableOrders shows claimable orders: no partner assigned yet and
// moving through the kitchen. This endpoint doubles as the consistency
// backstop for the real-time channel — the delivery dashboard re-fetches
// it on a timer so a missed pub/sub message only delays, never loses,
// an order.
func (h *Handler) GetAvailableOrders(c *gin.Context) {
	var orders []models.Order
	h.DB.Preload("Restaurant").Preload("Customer").
		Where("delivery_partner_id IS NULL AND status IN ?",
			[]models.OrderStatus{models.StatusAccepted, models.StatusPreparing, models.StatusReady}).
		Order("created_at asc").
		Find(&orders)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

// GetMyDeliveries returns all orders assigned to the logged-in partner
func (h *Handler) GetMyDeliveries(c *gin.Context) {
	partnerID := middleware.GetUserID(c)
	var orders []models.Order
	h.DB.Preload("Items.MenuItem").Preload("Restaurant").Preload("Customer").
		Where("delivery_partner_id = ?", partnerID).
		Order("updated_at desc").
		Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// UpdateDeliveryStatus handles the delivery partner's transitions:
// READY -> PICKED_UP (claiming the order if unassigned) and
// PICKED_UP -> DELIVERED (assigned partner only, settles COD payment).
func (h *Handler) UpdateDeliveryStatus(c *gin.Context) {
	partnerID := middleware.GetUserID(c)
	orderID := c.Param("id")

	var order models.Order
	if err := h.DB.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := statemachine.CanTransition(order.Status, req.Status, statemachine.ActorDelivery); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	switch req.Status {
	case models.StatusPickedUp:
		h.pickupOrder(c, &order, partnerID, req.Note)
	case models.StatusDelivered:
		h.deliverOrder(c, &order, partnerID, req.Note)
	default:
		// unreachable: the transition table only exposes the two above
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unsupported delivery transition"})
	}
}

// pickupOrder claims the order for the caller. First rider wins: the
// assignment and the status move land in one conditional update keyed on
// "still READY and still unassigned", so two concurrent claims can never
// both succeed — the loser sees zero rows affected.
func (h *Handler) pickupOrder(c *gin.Context, order *models.Order, partnerID uint, note string) {
	if order.DeliveryPartnerID != nil && *order.DeliveryPartnerID != partnerID {
		c.JSON(http.StatusConflict, gin.H{"error": "Order has already been claimed by another delivery partner"})
		return
	}

	res := h.DB.Model(&models.Order{}).
		Where("id = ? AND status = ? AND delivery_partner_id IS NULL", order.ID, models.StatusReady).
		Updates(map[string]interface{}{
			"status":              models.StatusPickedUp,
			"delivery_partner_id": partnerID,
		})
	if res.Error != nil {
		h.Logger.Errorw("failed to claim order", "order_id", order.ID, "partner_id", partnerID, "error", res.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Order has already been claimed by another delivery partner"})
		return
	}

	prevStatus := order.Status
	order.Status = models.StatusPickedUp
	order.DeliveryPartnerID = &partnerID

	if note == "" {
		note = "Delivery partner picked up the order"
	}
	h.recordHistory(order.ID, prevStatus, models.StatusPickedUp, partnerID, note)
	h.fanOutUpdate(order, true)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Order picked up successfully",
		"order_id": order.ID,
		"status":   models.StatusPickedUp,
	})
}

// deliverOrder completes the order. Delivery is the COD settlement
// point, so payment flips to paid alongside the final status.
func (h *Handler) deliverOrder(c *gin.Context, order *models.Order, partnerID uint, note string) {
	if order.DeliveryPartnerID == nil || *order.DeliveryPartnerID != partnerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not the assigned delivery partner for this order"})
		return
	}

	prevStatus := order.Status
	if !h.applyTransition(order, models.StatusDelivered, map[string]interface{}{
		"payment_status": models.PaymentPaid,
	}) {
		c.JSON(http.StatusConflict, gin.H{"error": "Order changed state, refresh and try again"})
		return
	}
	order.Status = models.StatusDelivered
	order.PaymentStatus = models.PaymentPaid

	if note == "" {
		note = "Order delivered to customer"
	}
	h.recordHistory(order.ID, prevStatus, models.StatusDelivered, partnerID, note)
	h.fanOutUpdate(order, false)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Order delivered successfully! 🎉",
		"order_id": order.ID,
		"status":   models.StatusDelivered,
	})
}
