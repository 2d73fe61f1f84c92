package models

import "gorm.io/gorm"

// Restaurant is the account that owns a phone number, menu and hours.
// Inbound calls are matched to a restaurant by the number the caller dialed.
type Restaurant struct {
	gorm.Model
	RestaurantName string `json:"restaurant_name"`
	PhoneNumber    string `json:"phone_number" gorm:"uniqueIndex"`
	EmailAddress   string `json:"email_address"`
	Address        string `json:"address"`
	WebsiteURL     string `json:"website_url"`

	// IVRMode selects which dialogue flow answers this restaurant's calls:
	// "category" for the category/item flow, "legacy" for the keypad flow.
	IVRMode  string `json:"ivr_mode" gorm:"default:category"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// IVRMode constants
const (
	IVRModeCategory = "category"
	IVRModeLegacy   = "legacy"
)

// BusinessHour holds one weekday's opening hours for a restaurant.
// Times are kept as display strings since they are only ever spoken or
// printed, never computed with.
type BusinessHour struct {
	gorm.Model
	RestaurantID uint   `json:"restaurant_id" gorm:"index"`
	Day          string `json:"day"`
	OpeningTime  string `json:"opening_time"`
	ClosingTime  string `json:"closing_time"`
	ClosedAllDay bool   `json:"closed_all_day"`
}

// Display renders the hours line the way the IVR speaks it.
func (b *BusinessHour) Display() string {
	if b.ClosedAllDay {
		return b.Day + ": Closed"
	}
	if b.OpeningTime == "" || b.ClosingTime == "" {
		return ""
	}
	return b.Day + ": " + b.OpeningTime + " to " + b.ClosingTime
}
