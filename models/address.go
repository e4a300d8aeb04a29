package models

import "time"

// Address is a customer's saved delivery address. The chosen address is
// denormalized onto the order at creation time; later edits don't touch
// past orders.
type Address struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Label     string    `json:"label"` // e.g. "Home", "Work"
	Line1     string    `json:"line1" gorm:"not null"`
	Line2     string    `json:"line2"`
	City      string    `json:"city" gorm:"not null"`
	Pincode   string    `json:"pincode" gorm:"not null"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Full renders the address as a single deliverable line
func (a Address) Full() string {
	s := a.Line1
	if a.Line2 != "" {
		s += ", " + a.Line2
	}
	return s + ", " + a.City + " - " + a.Pincode
}
