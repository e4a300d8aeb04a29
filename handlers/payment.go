package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
)

type VerifyPaymentRequest struct {
	OrderID   uint   `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// VerifyPayment checks the gateway callback signature and flips the
// order's payment status. Only the payment axis moves here; the
// lifecycle status is untouched.
func (h *Handler) VerifyPayment(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := h.DB.First(&order, req.OrderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CustomerID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	if order.PaymentMethod != models.PaymentOnline {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is not an online payment"})
		return
	}
	if order.PaymentStatus == models.PaymentPaid {
		c.JSON(http.StatusOK, gin.H{"message": "Payment already verified", "order_id": order.ID})
		return
	}

	if !h.Payments.Verify(order.ID, req.PaymentID, req.Signature) {
		h.DB.Model(&order).Update("payment_status", models.PaymentFailed)
		h.Logger.Warnw("payment signature verification failed", "order_id", order.ID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment signature verification failed"})
		return
	}

	h.DB.Model(&order).Update("payment_status", models.PaymentPaid)
	c.JSON(http.StatusOK, gin.H{
		"message":        "Payment verified",
		"order_id":       order.ID,
		"payment_status": models.PaymentPaid,
	})
}
