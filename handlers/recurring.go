package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
)

type CreateRecurringRequest struct {
	RestaurantID  uint                      `json:"restaurant_id" binding:"required"`
	AddressID     uint                      `json:"address_id"`
	Address       string                    `json:"address"`
	Frequency     models.RecurringFrequency `json:"frequency" binding:"required"`
	FirstDelivery time.Time                 `json:"first_delivery" binding:"required"`
	EndDate       *time.Time                `json:"end_date"`
	PaymentMethod models.PaymentMethod      `json:"payment_method"`
	Items         []struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
		Quantity   int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

// CreateRecurringOrder sets up a template the sweep materializes on cadence
func (h *Handler) CreateRecurringOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid frequency. Must be: daily, weekly, biweekly, or monthly"})
		return
	}
	if !req.FirstDelivery.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "First delivery must be in the future"})
		return
	}

	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, req.RestaurantID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}

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

	// Snapshot menu items so later menu edits don't change the template
	var items []models.RecurringItem
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
		items = append(items, models.RecurringItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   reqItem.Quantity,
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recurring order"})
		return
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCOD
	}

	tmpl := models.RecurringOrder{
		CustomerID:      customerID,
		RestaurantID:    req.RestaurantID,
		ItemsJSON:       string(itemsJSON),
		Frequency:       req.Frequency,
		NextDelivery:    req.FirstDelivery,
		EndDate:         req.EndDate,
		Status:          models.RecurringActive,
		PaymentMethod:   paymentMethod,
		DeliveryAddress: deliveryAddress,
	}
	if err := h.DB.Create(&tmpl).Error; err != nil {
		h.Logger.Errorw("failed to create recurring order", "customer_id", customerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recurring order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Recurring order created", "recurring_order": tmpl})
}

// ListRecurringOrders returns the customer's recurring templates
func (h *Handler) ListRecurringOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	var templates []models.RecurringOrder
	h.DB.Preload("Restaurant").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&templates)
	c.JSON(http.StatusOK, gin.H{"count": len(templates), "recurring_orders": templates})
}

// setRecurringStatus is shared by pause/resume/cancel
func (h *Handler) setRecurringStatus(c *gin.Context, from []models.RecurringStatus, to models.RecurringStatus, verb string) {
	customerID := middleware.GetUserID(c)
	var tmpl models.RecurringOrder
	if err := h.DB.Where("id = ? AND customer_id = ?", c.Param("id"), customerID).First(&tmpl).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recurring order not found"})
		return
	}
	allowed := false
	for _, f := range from {
		if tmpl.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Cannot " + verb + " a " + string(tmpl.Status) + " recurring order",
			"current_status": tmpl.Status,
		})
		return
	}
	h.DB.Model(&tmpl).Update("status", to)
	c.JSON(http.StatusOK, gin.H{"message": "Recurring order " + string(to), "recurring_order_id": tmpl.ID})
}

// PauseRecurringOrder stops materialization until resumed
func (h *Handler) PauseRecurringOrder(c *gin.Context) {
	h.setRecurringStatus(c, []models.RecurringStatus{models.RecurringActive}, models.RecurringPaused, "pause")
}

// ResumeRecurringOrder reactivates a paused template
func (h *Handler) ResumeRecurringOrder(c *gin.Context) {
	h.setRecurringStatus(c, []models.RecurringStatus{models.RecurringPaused}, models.RecurringActive, "resume")
}

// CancelRecurringOrder permanently stops a template
func (h *Handler) CancelRecurringOrder(c *gin.Context) {
	h.setRecurringStatus(c,
		[]models.RecurringStatus{models.RecurringActive, models.RecurringPaused},
		models.RecurringCancelled, "cancel")
}
