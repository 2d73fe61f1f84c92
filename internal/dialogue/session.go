// Package dialogue implements the call state machine that drives a phone
// conversation through menu browsing, reservations and ordering. Each
// webhook turn feeds the caller's input into the engine, which mutates the
// session and returns the next thing to say.
package dialogue

import (
	"time"

	"github.com/DineVoice/dinevoice-backend/internal/models"
)

// Step identifies where the category/item flow is in the conversation.
type Step string

// Category/item flow steps
const (
	StepWelcome           Step = "welcome"
	StepMenuSelection     Step = "menu_selection"
	StepItemSelection     Step = "item_selection"
	StepOrderConfirmation Step = "order_confirmation"
	StepComplete          Step = "complete"
)

// Legacy flow names, selected from the keypad main menu.
const (
	FlowReservation = "reservation"
	FlowOrder       = "order"
	FlowSpecials    = "specials"
	FlowHours       = "hours"
	FlowStaff       = "staff"
)

// Legacy order sub-states
const (
	OrderStateSelectingItem       = "selecting_item"
	OrderStateGettingQuantity     = "getting_quantity"
	OrderStateGettingInstructions = "getting_instructions"
	OrderStateConfirming          = "confirming"
)

// LineItem is one item the caller has picked, buffered in the session
// until the order is confirmed and copied into persisted rows.
type LineItem struct {
	ItemID       uint    `json:"item_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	HasPrice     bool    `json:"has_price"`
	Quantity     int     `json:"quantity"`
	Instructions string  `json:"instructions,omitempty"`
}

// ReservationDraft collects the reservation fields one prompt at a time.
// Date and time stay as spoken; only party size is parsed.
type ReservationDraft struct {
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	PartySize int    `json:"party_size,omitempty"`
}

// Session is the durable per-call state, keyed by the provider's call SID
// and persisted between webhook turns. It owns the in-flight item buffer
// until order creation.
type Session struct {
	CallSID      string `json:"call_sid"`
	CalleeNumber string `json:"callee_number"`
	CallerNumber string `json:"caller_number"`

	Restaurant *models.RestaurantSnapshot `json:"restaurant"`

	// Category/item flow
	Step             Step       `json:"step"`
	SelectedCategory *uint      `json:"selected_category,omitempty"`
	Items            []LineItem `json:"items,omitempty"`

	// Legacy keypad flow
	Flow        string           `json:"flow,omitempty"`
	Reservation ReservationDraft `json:"reservation"`
	OrderState  string           `json:"order_state,omitempty"`
	CurrentItem *LineItem        `json:"current_item,omitempty"`

	Customer  map[string]string `json:"customer,omitempty"`
	StepCount int               `json:"step_count"`
	Messages  []string          `json:"messages,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// NewSession creates the session for a call's first webhook.
func NewSession(callSID, callee, caller string, snapshot *models.RestaurantSnapshot) *Session {
	now := time.Now()
	s := &Session{
		CallSID:      callSID,
		CalleeNumber: callee,
		CallerNumber: caller,
		Restaurant:   snapshot,
		Step:         StepWelcome,
		Customer:     map[string]string{"phone": caller},
		CreatedAt:    now,
		LastActive:   now,
	}
	if snapshot != nil {
		s.Customer["restaurant"] = snapshot.Name
	}
	return s
}

// RestaurantName is safe against a missing snapshot.
func (s *Session) RestaurantName() string {
	if s.Restaurant == nil || s.Restaurant.Name == "" {
		return "our restaurant"
	}
	return s.Restaurant.Name
}

// CustomerPhone is the number confirmations are texted to.
func (s *Session) CustomerPhone() string {
	if s.CallerNumber != "" {
		return s.CallerNumber
	}
	return s.CalleeNumber
}

// category returns the currently selected category, if any.
func (s *Session) category() *models.CategorySnapshot {
	if s.Restaurant == nil || s.SelectedCategory == nil {
		return nil
	}
	for i := range s.Restaurant.Categories {
		if s.Restaurant.Categories[i].ID == *s.SelectedCategory {
			return &s.Restaurant.Categories[i]
		}
	}
	return nil
}

// remember keeps the last few prompts on the session for the debug view.
func (s *Session) remember(prompt string) {
	s.Messages = append(s.Messages, prompt)
	if len(s.Messages) > 6 {
		s.Messages = s.Messages[len(s.Messages)-6:]
	}
}

// Input is one webhook turn's worth of caller input. Either field may be
// empty; both empty means the gather timed out.
type Input struct {
	Digits string
	Speech string
}

// Text returns keypad digits when present, otherwise the transcript.
func (in Input) Text() string {
	if in.Digits != "" {
		return in.Digits
	}
	return in.Speech
}

// Empty reports whether the turn carried no usable input.
func (in Input) Empty() bool {
	return in.Digits == "" && in.Speech == ""
}

// Gather describes the input the provider should collect next.
type Gather struct {
	Input         string
	Timeout       int
	NumDigits     int
	SpeechTimeout string
}

// Reply is what one dialogue turn tells the provider to do. Say lines are
// spoken in order, then either input is gathered, a number dialed, or the
// call hung up.
type Reply struct {
	Say        []string
	Gather     *Gather
	DialNumber string
	Hangup     bool
}

func gatherDigits() *Gather {
	return &Gather{Input: "dtmf", Timeout: 10, NumDigits: 1}
}

func gatherSpeechAndDigits() *Gather {
	return &Gather{Input: "speech dtmf", Timeout: 10, SpeechTimeout: "auto"}
}

func gatherSpeechLong() *Gather {
	return &Gather{Input: "speech dtmf", Timeout: 15, SpeechTimeout: "auto"}
}
