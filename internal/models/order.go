package models

import "gorm.io/gorm"

// Order is created only when the caller confirms their order. Item data is
// copied out of the call session at that point; after creation only status
// and notification bookkeeping change.
type Order struct {
	gorm.Model
	OrderNumber    string `json:"order_number" gorm:"uniqueIndex"`
	RestaurantID   uint   `json:"restaurant_id" gorm:"index"`
	MenuCategoryID *uint  `json:"menu_category_id"`
	CustomerPhone  string `json:"customer_phone"`
	Notes          string `json:"notes"`
	Status         string `json:"status"`
	CustomerSMS    bool   `json:"customer_sms_sent"`
	RestaurantSMS  bool   `json:"restaurant_sms_sent"`
	EmailSent      bool   `json:"email_sent"`
}

// OrderItem is one line of an order. MenuItemID is nullable because legacy
// flow items are matched by name and the menu row may be edited or removed
// after the order is placed.
type OrderItem struct {
	gorm.Model
	OrderID             uint    `json:"order_id" gorm:"index"`
	MenuItemID          *uint   `json:"menu_item_id"`
	ItemName            string  `json:"item_name"`
	Quantity            int     `json:"quantity"`
	Price               float64 `json:"price"`
	SpecialInstructions string  `json:"special_instructions"`
}

// Order status constants
const (
	OrderStatusReceived  = "received"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)
