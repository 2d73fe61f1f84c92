package models

import "gorm.io/gorm"

// Reservation is created only when the caller confirms the booking.
// Date and time are kept exactly as the caller said them ("tomorrow",
// "7:30 PM") because the input is free-form speech; the restaurant reads
// them, the system never parses them into timestamps.
type Reservation struct {
	gorm.Model
	RestaurantID  uint   `json:"restaurant_id" gorm:"index"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	CustomerPhone string `json:"customer_phone"`
	Status        string `json:"status"`
}

// Reservation status constants
const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusSeated    = "seated"
)
