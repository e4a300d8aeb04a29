package models

import "time"

type Coupon struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Percent     float64   `json:"percent" gorm:"not null"`      // e.g. 50 for 50% off
	MaxDiscount float64   `json:"max_discount" gorm:"not null"` // cap on the discount amount
	MinPurchase float64   `json:"min_purchase" gorm:"not null"` // subtotal threshold
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DiscountFor returns the discount this coupon grants on a subtotal,
// or 0 if the subtotal is below the minimum purchase.
func (c Coupon) DiscountFor(subtotal float64) float64 {
	if !c.IsActive || subtotal < c.MinPurchase {
		return 0
	}
	d := subtotal * c.Percent / 100
	if d > c.MaxDiscount {
		d = c.MaxDiscount
	}
	return d
}
