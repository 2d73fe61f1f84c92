package dialogue

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DineVoice/dinevoice-backend/internal/models"
	"github.com/DineVoice/dinevoice-backend/internal/storage"
)

// Notifier dispatches the completion notifications. Implementations must
// treat every channel as best-effort: the caller has already been told
// their order went through.
type Notifier interface {
	OrderPlaced(snapshot *models.RestaurantSnapshot, order *models.Order, items []*models.OrderItem)
	ReservationBooked(snapshot *models.RestaurantSnapshot, reservation *models.Reservation)
}

// Engine is the dialogue state machine. Given a session and one turn of
// caller input it computes the next state and the prompt to speak. Every
// branch tolerates unparseable input by re-prompting; nothing the caller
// says can make a turn fail.
type Engine struct {
	store          storage.Store
	notifier       Notifier
	idempotencyTTL time.Duration
}

// NewEngine creates a dialogue engine
func NewEngine(store storage.Store, notifier Notifier) *Engine {
	return &Engine{
		store:          store,
		notifier:       notifier,
		idempotencyTTL: 24 * time.Hour,
	}
}

// Greeting produces the first prompt of a call, before any input exists.
func (e *Engine) Greeting(s *Session) Reply {
	if e.legacyMode(s) {
		return e.legacyMainMenu(s)
	}
	return e.welcomePrompt(s)
}

// HandleInput advances the session by one turn.
func (e *Engine) HandleInput(s *Session, in Input) Reply {
	s.StepCount++
	s.LastActive = time.Now()

	if e.legacyMode(s) {
		return e.handleLegacy(s, in)
	}

	switch s.Step {
	case StepWelcome, "":
		return e.handleWelcome(s, in)
	case StepMenuSelection:
		return e.handleMenuSelection(s, in)
	case StepItemSelection:
		return e.handleItemSelection(s, in)
	case StepOrderConfirmation:
		return e.handleOrderConfirmation(s, in)
	case StepComplete:
		// Provider retry after completion: acknowledge, change nothing.
		return e.reply(s, Reply{
			Say:    []string{fmt.Sprintf("Your order with %s has already been placed. Thank you for calling!", s.RestaurantName())},
			Hangup: true,
		})
	default:
		log.Printf("⚠️  Unknown step %q for call %s, resetting to welcome", s.Step, s.CallSID)
		s.Step = StepWelcome
		return e.welcomePrompt(s)
	}
}

func (e *Engine) legacyMode(s *Session) bool {
	return s.Restaurant != nil && s.Restaurant.IVRMode == models.IVRModeLegacy
}

// reply records the prompt on the session before returning it.
func (e *Engine) reply(s *Session, r Reply) Reply {
	if len(r.Say) > 0 {
		s.remember(r.Say[0])
	}
	return r
}

// Category/item flow

func (e *Engine) welcomePrompt(s *Session) Reply {
	say := fmt.Sprintf("Thank you for calling %s. ", s.RestaurantName())
	if hours := e.hoursLine(s); hours != "" {
		say += hours + " "
	}
	say += "To hear our menu and place an order, press 1 or say menu."
	return e.reply(s, Reply{Say: []string{say}, Gather: gatherSpeechAndDigits()})
}

func (e *Engine) handleWelcome(s *Session, in Input) Reply {
	if !isAffirmative(in) {
		// Anything unclear re-renders the welcome without advancing.
		return e.welcomePrompt(s)
	}

	if s.Restaurant == nil || len(s.Restaurant.Categories) == 0 {
		return e.reply(s, Reply{
			Say:    []string{fmt.Sprintf("Sorry, %s is not able to take orders over the phone right now. Please call back later.", s.RestaurantName())},
			Hangup: true,
		})
	}

	s.Step = StepMenuSelection
	return e.categoryPrompt(s, "")
}

func (e *Engine) categoryPrompt(s *Session, prefix string) Reply {
	categories := s.Restaurant.Categories
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("Our menu has the following categories. ")
	for i, c := range categories {
		fmt.Fprintf(&b, "Press %d for %s. ", i+1, c.Name)
	}
	b.WriteString("Say or enter the number of the category you would like.")
	return e.reply(s, Reply{Say: []string{b.String()}, Gather: gatherSpeechAndDigits()})
}

func (e *Engine) handleMenuSelection(s *Session, in Input) Reply {
	count := len(s.Restaurant.Categories)
	n, ok := parseIndex(in.Text())
	if !ok || n < 1 || n > count {
		return e.categoryPrompt(s, fmt.Sprintf("Sorry, please choose a number between 1 and %d. ", count))
	}

	category := s.Restaurant.Categories[n-1]
	s.SelectedCategory = &category.ID
	s.Step = StepItemSelection
	return e.itemPrompt(s, "")
}

func (e *Engine) itemPrompt(s *Session, prefix string) Reply {
	category := s.category()
	if category == nil || len(category.Items) == 0 {
		// Category emptied out from under us; back to the list.
		s.SelectedCategory = nil
		s.Step = StepMenuSelection
		return e.categoryPrompt(s, "Sorry, that category has no items right now. ")
	}

	var b strings.Builder
	b.WriteString(prefix)
	fmt.Fprintf(&b, "In %s: ", category.Name)
	for i, item := range category.Items {
		fmt.Fprintf(&b, "Press %d for %s, %s. ", i+1, item.Name, item.SpokenPrice())
	}
	b.WriteString("Or press 0 to go back to the categories.")
	return e.reply(s, Reply{Say: []string{b.String()}, Gather: gatherSpeechAndDigits()})
}

func (e *Engine) handleItemSelection(s *Session, in Input) Reply {
	category := s.category()
	if category == nil {
		s.Step = StepMenuSelection
		return e.categoryPrompt(s, "")
	}

	n, ok := parseIndex(in.Text())
	if !ok || n < 0 || n > len(category.Items) {
		return e.itemPrompt(s, fmt.Sprintf("Sorry, please choose a number between 1 and %d, or 0 to go back. ", len(category.Items)))
	}

	if n == 0 {
		s.SelectedCategory = nil
		s.Step = StepMenuSelection
		return e.categoryPrompt(s, "")
	}

	item := category.Items[n-1]
	s.Items = append(s.Items, LineItem{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		HasPrice: item.HasPrice,
		Quantity: 1,
	})
	s.Step = StepOrderConfirmation
	return e.confirmationPrompt(s)
}

func (e *Engine) confirmationPrompt(s *Session) Reply {
	parts := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		parts = append(parts, fmt.Sprintf("%d %s", item.Quantity, item.Name))
	}
	say := fmt.Sprintf("Your order has: %s. Press 1 or say yes to confirm, or press 2 or say no to cancel.",
		strings.Join(parts, ", "))
	return e.reply(s, Reply{Say: []string{say}, Gather: gatherSpeechAndDigits()})
}

func (e *Engine) handleOrderConfirmation(s *Session, in Input) Reply {
	text := strings.ToLower(strings.TrimSpace(in.Text()))
	switch {
	case in.Digits == "1" || text == "yes" || text == "confirm":
		return e.finalizeOrder(s)
	case in.Digits == "2" || text == "no" || text == "cancel":
		s.SelectedCategory = nil
		s.Items = nil
		s.Step = StepWelcome
		return e.welcomePrompt(s)
	default:
		return e.confirmationPrompt(s)
	}
}

// finalizeOrder creates the order exactly once per call. A webhook retry
// that lands here again finds the idempotency key and repeats the success
// message without touching the database.
func (e *Engine) finalizeOrder(s *Session) Reply {
	if key, err := e.store.GetIdempotencyKey(s.CallSID, models.IdempotencyKindOrder); err == nil {
		log.Printf("🔁 Duplicate order confirmation for call %s (order %d), skipping", s.CallSID, key.RefID)
		s.Step = StepComplete
		return e.orderPlacedReply(s)
	}

	order := &models.Order{
		RestaurantID:   s.Restaurant.RestaurantID,
		MenuCategoryID: s.SelectedCategory,
		CustomerPhone:  s.CustomerPhone(),
		Status:         models.OrderStatusReceived,
	}
	items := make([]*models.OrderItem, 0, len(s.Items))
	for _, line := range s.Items {
		var menuItemID *uint
		if line.ItemID != 0 {
			id := line.ItemID
			menuItemID = &id
		}
		items = append(items, &models.OrderItem{
			MenuItemID:          menuItemID,
			ItemName:            line.Name,
			Quantity:            line.Quantity,
			Price:               line.Price,
			SpecialInstructions: line.Instructions,
		})
	}

	order, err := e.store.CreateOrder(order, items)
	if err != nil {
		log.Printf("❌ Failed to create order for call %s: %v", s.CallSID, err)
		return e.reply(s, Reply{
			Say:    []string{"We couldn't process your order at this time. Please call back or contact the restaurant directly. Thank you for calling!"},
			Hangup: true,
		})
	}

	e.recordIdempotency(s, models.IdempotencyKindOrder, order.ID)
	e.notifier.OrderPlaced(s.Restaurant, order, items)
	e.completeCallRecord(s)

	s.Step = StepComplete
	log.Printf("✅ Order %s created for call %s (%d items)", order.OrderNumber, s.CallSID, len(items))
	return e.orderPlacedReply(s)
}

func (e *Engine) orderPlacedReply(s *Session) Reply {
	return e.reply(s, Reply{
		Say: []string{
			"Your order has been successfully placed! We'll send you a confirmation text message with the details. Thank you for your order, and we look forward to serving you!",
		},
		Hangup: true,
	})
}

func (e *Engine) recordIdempotency(s *Session, kind string, refID uint) {
	err := e.store.CreateIdempotencyKey(&models.IdempotencyKey{
		ID:        uuid.NewString(),
		CallSID:   s.CallSID,
		Kind:      kind,
		StepCount: s.StepCount,
		RefID:     refID,
		ExpiresAt: time.Now().Add(e.idempotencyTTL),
	})
	if err != nil {
		// The row exists from a concurrent retry; the unique index did its job.
		log.Printf("⚠️  Idempotency key for call %s (%s): %v", s.CallSID, kind, err)
	}
}

func (e *Engine) completeCallRecord(s *Session) {
	if err := e.store.UpdateCallRecordStatus(s.CallSID, models.CallStatusCompleted); err != nil {
		log.Printf("⚠️  Failed to update call record %s: %v", s.CallSID, err)
	}
}

func (e *Engine) hoursLine(s *Session) string {
	if s.Restaurant == nil || len(s.Restaurant.Hours) == 0 {
		return ""
	}
	return "We are open " + strings.Join(s.Restaurant.Hours, ". ") + "."
}
