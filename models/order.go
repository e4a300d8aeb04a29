package models

import "time"

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	// StatusPending is the parking state for scheduled orders: invisible to
	// restaurant and delivery flows until the scheduler promotes it.
	StatusPending   OrderStatus = "PENDING"
	StatusPlaced    OrderStatus = "PLACED"
	StatusAccepted  OrderStatus = "ACCEPTED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusPickedUp  OrderStatus = "PICKED_UP"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PaymentMethod and PaymentStatus form an axis independent of OrderStatus
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "ONLINE"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// OrderType distinguishes checkout orders from scheduler-spawned ones
type OrderType string

const (
	OrderImmediate OrderType = "immediate"
	OrderScheduled OrderType = "scheduled"
	OrderRecurring OrderType = "recurring"
)

type Order struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	CustomerID        uint          `json:"customer_id" gorm:"not null"`
	Customer          User          `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID      uint          `json:"restaurant_id" gorm:"not null"`
	Restaurant        Restaurant    `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	DeliveryPartnerID *uint         `json:"delivery_partner_id"`
	DeliveryPartner   *User         `json:"delivery_partner,omitempty" gorm:"foreignKey:DeliveryPartnerID"`
	Status            OrderStatus   `json:"status" gorm:"not null;default:'PLACED';index"`
	TotalAmount       float64       `json:"total_amount"`
	Discount          float64       `json:"discount"`
	FinalAmount       float64       `json:"final_amount"`
	CouponCode        string        `json:"coupon_code"`
	PaymentMethod     PaymentMethod `json:"payment_method" gorm:"not null;default:'COD'"`
	PaymentStatus     PaymentStatus `json:"payment_status" gorm:"not null;default:'pending'"`
	OrderType         OrderType     `json:"order_type" gorm:"not null;default:'immediate'"`
	ScheduledFor      *time.Time    `json:"scheduled_for"`
	IsScheduled       bool          `json:"is_scheduled" gorm:"default:false;index"`
	RecurringOrderID  *uint         `json:"recurring_order_id"`
	DeliveryAddress   string        `json:"delivery_address" gorm:"not null"`
	Notes             string        `json:"notes"`
	Items             []OrderItem   `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory     []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type OrderItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	OrderID    uint     `json:"order_id" gorm:"not null"`
	MenuItemID uint     `json:"menu_item_id" gorm:"not null"`
	MenuItem   MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int      `json:"quantity" gorm:"not null"`
	Price      float64  `json:"price" gorm:"not null"` // snapshot price at time of order
	Name       string   `json:"name"`                  // snapshot name
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
