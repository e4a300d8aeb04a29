package models

import "time"

// RecurringFrequency is the cadence at which a recurring order materializes
type RecurringFrequency string

const (
	FrequencyDaily    RecurringFrequency = "daily"
	FrequencyWeekly   RecurringFrequency = "weekly"
	FrequencyBiweekly RecurringFrequency = "biweekly"
	FrequencyMonthly  RecurringFrequency = "monthly"
)

type RecurringStatus string

const (
	RecurringActive    RecurringStatus = "active"
	RecurringPaused    RecurringStatus = "paused"
	RecurringCancelled RecurringStatus = "cancelled"
	RecurringCompleted RecurringStatus = "completed"
)

// RecurringOrder is a template that spawns real orders on a cadence.
// Items are snapshotted as JSON so menu edits after creation don't
// change what gets ordered.
type RecurringOrder struct {
	ID              uint               `json:"id" gorm:"primaryKey"`
	CustomerID      uint               `json:"customer_id" gorm:"not null"`
	Customer        User               `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID    uint               `json:"restaurant_id" gorm:"not null"`
	Restaurant      Restaurant         `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	ItemsJSON       string             `json:"-" gorm:"column:items_json;not null"`
	Frequency       RecurringFrequency `json:"frequency" gorm:"not null"`
	NextDelivery    time.Time          `json:"next_delivery" gorm:"index"`
	EndDate         *time.Time         `json:"end_date"`
	Status          RecurringStatus    `json:"status" gorm:"not null;default:'active';index"`
	TotalOrders     int                `json:"total_orders" gorm:"default:0"`
	CompletedOrders int                `json:"completed_orders" gorm:"default:0"`
	PaymentMethod   PaymentMethod      `json:"payment_method" gorm:"not null;default:'COD'"`
	DeliveryAddress string             `json:"delivery_address" gorm:"not null"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// RecurringItem is the snapshot unit stored inside ItemsJSON
type RecurringItem struct {
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// NextAfter returns the delivery time one cadence unit after t
func (f RecurringFrequency) NextAfter(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}
