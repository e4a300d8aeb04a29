package handlers

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
	"food-delivery-backend/notify"
	"food-delivery-backend/payment"
	"food-delivery-backend/realtime"
)

// Handler carries every injected collaborator; no package-level state.
// The realtime publisher and notifier may be nil (tests, degraded mode) —
// both are best-effort side channels, never part of the primary mutation.
type Handler struct {
	DB        *gorm.DB
	Logger    *zap.SugaredLogger
	Auth      *middleware.Auth
	Publisher *realtime.Publisher
	Notifier  notify.Sender
	Payments  *payment.Verifier
}

// recordHistory appends an audit row for a status change
func (h *Handler) recordHistory(orderID uint, from, to models.OrderStatus, changedBy uint, note string) {
	history := models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  changedBy,
		Note:       note,
	}
	if err := h.DB.Create(&history).Error; err != nil {
		h.Logger.Errorw("failed to record status history", "order_id", orderID, "error", err)
	}
}

// applyTransition writes the status change compare-and-set style: the
// update only lands if the row still holds the status we validated
// against, so two racing writers cannot interleave into an illegal edge.
// Returns false when somebody else moved the order first.
func (h *Handler) applyTransition(order *models.Order, to models.OrderStatus, extra map[string]interface{}) bool {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := h.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if res.Error != nil {
		h.Logger.Errorw("failed to update order status", "order_id", order.ID, "error", res.Error)
		return false
	}
	return res.RowsAffected == 1
}

// fanOutUpdate pushes the new order state to subscribers; best effort
func (h *Handler) fanOutUpdate(order *models.Order, claimed bool) {
	if h.Publisher == nil {
		return
	}
	h.Publisher.OrderUpdated(context.Background(), order, claimed)
}

// fanOutCreated announces a new order on the restaurant dashboard
func (h *Handler) fanOutCreated(order *models.Order) {
	if h.Publisher == nil {
		return
	}
	h.Publisher.OrderCreated(context.Background(), order)
}

// notifyOrderPlaced emails the customer and the restaurant owner in the
// background; failures are logged and swallowed
func (h *Handler) notifyOrderPlaced(order *models.Order) {
	if h.Notifier == nil {
		return
	}
	go func() {
		var customer models.User
		if err := h.DB.First(&customer, order.CustomerID).Error; err == nil && customer.Email != "" {
			if err := h.Notifier.OrderConfirmation(customer.Email, order); err != nil {
				h.Logger.Warnw("order confirmation email failed", "order_id", order.ID, "error", err)
			}
		}
		var restaurant models.Restaurant
		if err := h.DB.Preload("Owner").First(&restaurant, order.RestaurantID).Error; err == nil && restaurant.Owner.Email != "" {
			if err := h.Notifier.NewOrderAlert(restaurant.Owner.Email, order); err != nil {
				h.Logger.Warnw("new order alert email failed", "order_id", order.ID, "error", err)
			}
		}
	}()
}
