package models

import "fmt"

// RestaurantSnapshot is the read-only view of a restaurant the dialogue
// engine works with. It is built fresh when a call session is created and
// then rides inside the session, so menu edits mid-call never shift the
// numbering the caller already heard. It is never persisted on its own.
type RestaurantSnapshot struct {
	RestaurantID uint   `json:"restaurant_id"`
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone_number"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	WebsiteURL   string `json:"website_url"`
	IVRMode      string `json:"ivr_mode"`

	Hours      []string           `json:"hours"`
	Categories []CategorySnapshot `json:"categories"`
	Specials   []ItemSnapshot     `json:"specials"`
	// Items is the flat non-special item list the legacy flow enumerates.
	Items []ItemSnapshot `json:"items"`
}

// CategorySnapshot is one menu category with its items, in display order.
type CategorySnapshot struct {
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
	Items []ItemSnapshot `json:"items"`
}

// ItemSnapshot is one menu item as captured at session creation.
type ItemSnapshot struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	HasPrice    bool    `json:"has_price"`
}

// PriceText renders the price for SMS and email bodies.
func (i ItemSnapshot) PriceText() string {
	if !i.HasPrice {
		return "price on request"
	}
	return fmt.Sprintf("$%.2f", i.Price)
}

// SpokenPrice renders the price for voice prompts.
func (i ItemSnapshot) SpokenPrice() string {
	if !i.HasPrice {
		return "price available on request"
	}
	if i.Price == float64(int(i.Price)) {
		return fmt.Sprintf("%d dollars", int(i.Price))
	}
	return fmt.Sprintf("%.2f dollars", i.Price)
}
