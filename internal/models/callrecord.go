package models

import "gorm.io/gorm"

// CallRecord tracks one phone call end to end for the dashboard.
type CallRecord struct {
	gorm.Model
	RestaurantID uint   `json:"restaurant_id" gorm:"index"`
	CallSID      string `json:"call_sid" gorm:"column:call_sid;uniqueIndex"`
	CallerNumber string `json:"caller_number"`
	CalleeNumber string `json:"callee_number"`
	Status       string `json:"status"`
}

// Call record status constants
const (
	CallStatusInProgress  = "in-progress"
	CallStatusCompleted   = "completed"
	CallStatusTransferred = "transferred"
	CallStatusFailed      = "failed"
)
