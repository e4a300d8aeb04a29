package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
)

type AddressRequest struct {
	Label     string `json:"label"`
	Line1     string `json:"line1" binding:"required"`
	Line2     string `json:"line2"`
	City      string `json:"city" binding:"required"`
	Pincode   string `json:"pincode" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

// AddAddress saves a new delivery address for the customer
func (h *Handler) AddAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addr := models.Address{
		UserID:    userID,
		Label:     req.Label,
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		Pincode:   req.Pincode,
		IsDefault: req.IsDefault,
	}
	if req.IsDefault {
		// only one default at a time
		h.DB.Model(&models.Address{}).Where("user_id = ?", userID).Update("is_default", false)
	}
	if err := h.DB.Create(&addr).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save address"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Address saved", "address": addr})
}

// ListAddresses returns the customer's address book
func (h *Handler) ListAddresses(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var addresses []models.Address
	h.DB.Where("user_id = ?", userID).Order("is_default desc, created_at desc").Find(&addresses)
	c.JSON(http.StatusOK, gin.H{"count": len(addresses), "addresses": addresses})
}

// UpdateAddress edits a saved address; past orders keep their snapshot
func (h *Handler) UpdateAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var addr models.Address
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&addr).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.IsDefault {
		h.DB.Model(&models.Address{}).Where("user_id = ?", userID).Update("is_default", false)
	}
	h.DB.Model(&addr).Updates(map[string]interface{}{
		"label": req.Label, "line1": req.Line1, "line2": req.Line2,
		"city": req.City, "pincode": req.Pincode, "is_default": req.IsDefault,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Address updated", "address": addr})
}

// DeleteAddress removes a saved address
func (h *Handler) DeleteAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var addr models.Address
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&addr).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}
	h.DB.Delete(&addr)
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}
