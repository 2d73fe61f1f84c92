package dialogue

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/DineVoice/dinevoice-backend/internal/models"
)

// The legacy flow is the original keypad-first IVR: a numeric main menu
// dispatching into reservation and order sub-flows. Restaurants with
// IVRMode "legacy" keep this behavior unchanged.

func (e *Engine) handleLegacy(s *Session, in Input) Reply {
	if s.Step == StepComplete {
		return e.reply(s, Reply{
			Say:    []string{fmt.Sprintf("Your request with %s has already been placed. Thank you for calling!", s.RestaurantName())},
			Hangup: true,
		})
	}

	switch s.Flow {
	case FlowReservation:
		return e.handleReservation(s, in)
	case FlowOrder:
		return e.handleLegacyOrder(s, in)
	}
	return e.dispatchMainMenu(s, in)
}

func (e *Engine) legacyMainMenu(s *Session) Reply {
	say := fmt.Sprintf(
		"Thank you for calling %s. Press 1 to make a reservation, 2 to hear today's specials, 3 to place an order, 4 to speak with our staff, or 5 for our hours of operation.",
		s.RestaurantName())
	return e.reply(s, Reply{Say: []string{say}, Gather: gatherDigits()})
}

func (e *Engine) legacyMainMenuRetry(s *Session) Reply {
	say := fmt.Sprintf(
		"Sorry, I didn't catch that. For %s, press 1 for reservations, 2 for specials, 3 for orders, 4 for staff, or 5 for hours.",
		s.RestaurantName())
	return e.reply(s, Reply{Say: []string{say}, Gather: gatherDigits()})
}

func (e *Engine) dispatchMainMenu(s *Session, in Input) Reply {
	switch in.Digits {
	case "1":
		s.Flow = FlowReservation
		s.Reservation = ReservationDraft{}
		return e.reply(s, Reply{
			Say:    []string{"Let's make a reservation. Please say or enter the date for your reservation. For example, say 'today' or 'July 30th'."},
			Gather: gatherSpeechAndDigits(),
		})

	case "2":
		return e.speakSpecials(s)

	case "3":
		s.Flow = FlowOrder
		s.Items = nil
		s.CurrentItem = nil
		s.OrderState = OrderStateSelectingItem
		if len(e.legacyItems(s)) == 0 {
			s.Flow = ""
			s.OrderState = ""
			return e.reply(s, Reply{
				Say:    []string{fmt.Sprintf("Sorry, there are no menu items available at %s. Press 1 to make a reservation or stay on the line to return to the main menu.", s.RestaurantName())},
				Gather: gatherDigits(),
			})
		}
		return e.reply(s, Reply{
			Say:    []string{fmt.Sprintf("Here are our available menu items: %s. Please say the name of the item you want to order.", e.menuText(s))},
			Gather: gatherSpeechLong(),
		})

	case "4":
		s.Flow = FlowStaff
		if err := e.store.UpdateCallRecordStatus(s.CallSID, models.CallStatusTransferred); err != nil {
			log.Printf("⚠️  Failed to mark call %s transferred: %v", s.CallSID, err)
		}
		return e.reply(s, Reply{
			Say:        []string{fmt.Sprintf("Transferring you to the %s team. Please hold.", s.RestaurantName())},
			DialNumber: s.Restaurant.PhoneNumber,
		})

	case "5":
		return e.speakHours(s)

	default:
		return e.legacyMainMenuRetry(s)
	}
}

func (e *Engine) speakSpecials(s *Session) Reply {
	specials := s.Restaurant.Specials
	if len(specials) == 0 {
		return e.reply(s, Reply{
			Say:    []string{fmt.Sprintf("Sorry, there are no specials available today at %s. Press 1 to make a reservation, 3 to place an order, or stay on the line to return to the main menu.", s.RestaurantName())},
			Gather: gatherDigits(),
		})
	}

	parts := make([]string, 0, len(specials))
	for _, special := range specials {
		parts = append(parts, fmt.Sprintf("%s. %s", special.Name, special.Description))
	}
	say := fmt.Sprintf(
		"Today's specials at %s are: %s. Press 1 to make a reservation, 3 to place an order, or stay on the line to return to the main menu.",
		s.RestaurantName(), strings.Join(parts, ". "))
	return e.reply(s, Reply{Say: []string{say}, Gather: gatherDigits()})
}

func (e *Engine) speakHours(s *Session) Reply {
	hours := "Monday to Friday 7 AM to 8 PM, Saturday and Sunday 8 AM to 6 PM"
	if len(s.Restaurant.Hours) > 0 {
		hours = strings.Join(s.Restaurant.Hours, ". ")
	}
	say := fmt.Sprintf(
		"%s is open %s. Press 1 to make a reservation, 3 to place an order, or stay on the line to return to the main menu.",
		s.RestaurantName(), hours)
	return e.reply(s, Reply{Say: []string{say}, Gather: gatherDigits()})
}

// Reservation sub-flow: fill date, then time, then party size, then confirm.

func (e *Engine) handleReservation(s *Session, in Input) Reply {
	draft := &s.Reservation

	switch {
	case draft.Date == "":
		return e.reservationDate(s, in)
	case draft.Time == "":
		return e.reservationTime(s, in)
	case draft.PartySize == 0:
		return e.reservationPartySize(s, in)
	default:
		return e.reservationConfirm(s, in)
	}
}

func (e *Engine) reservationDate(s *Session, in Input) Reply {
	if in.Digits != "" {
		switch in.Digits {
		case "1":
			s.Reservation.Date = "today"
		case "2":
			s.Reservation.Date = "tomorrow"
		default:
			return e.reply(s, Reply{
				Say:    []string{"Sorry, I didn't understand that date. Please try again."},
				Gather: gatherSpeechAndDigits(),
			})
		}
	} else if in.Speech != "" {
		s.Reservation.Date = in.Speech
	} else {
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't catch the date. Please say or enter the date for your reservation."},
			Gather: gatherSpeechAndDigits(),
		})
	}

	return e.reply(s, Reply{
		Say: []string{fmt.Sprintf(
			"Got it. You want to reserve a table for %s. Now, please say or enter the time for your reservation. For example, say '7 PM' or enter '1900' for 7:00 PM.",
			s.Reservation.Date)},
		Gather: gatherSpeechAndDigits(),
	})
}

func (e *Engine) reservationTime(s *Session, in Input) Reply {
	if in.Digits != "" {
		formatted, ok := formatClockDigits(in.Digits)
		if !ok {
			return e.reply(s, Reply{
				Say:    []string{"Sorry, I didn't understand that time. Please try again."},
				Gather: gatherSpeechAndDigits(),
			})
		}
		s.Reservation.Time = formatted
	} else if in.Speech != "" {
		s.Reservation.Time = in.Speech
	} else {
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't catch the time. Please say or enter the time for your reservation."},
			Gather: gatherSpeechAndDigits(),
		})
	}

	return e.reply(s, Reply{
		Say: []string{fmt.Sprintf(
			"Got it. Your reservation is for %s. Now, please say or enter the number of people in your party.",
			s.Reservation.Time)},
		Gather: gatherSpeechAndDigits(),
	})
}

func (e *Engine) reservationPartySize(s *Session, in Input) Reply {
	var partySize int
	if in.Digits != "" {
		partySize, _ = strconv.Atoi(in.Digits)
	} else if in.Speech != "" {
		if m := digitRun.FindString(in.Speech); m != "" {
			partySize, _ = strconv.Atoi(m)
		}
	}

	if partySize < 1 {
		// Field stays unset so the same prompt repeats.
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't understand that. Please say or enter the number of people in your party."},
			Gather: gatherSpeechAndDigits(),
		})
	}

	s.Reservation.PartySize = partySize
	return e.reply(s, Reply{
		Say: []string{fmt.Sprintf(
			"Let me confirm your reservation: Table for %d on %s at %s. Press 1 to confirm, or 2 to start over.",
			s.Reservation.PartySize, s.Reservation.Date, s.Reservation.Time)},
		Gather: gatherDigits(),
	})
}

func (e *Engine) reservationConfirm(s *Session, in Input) Reply {
	switch in.Digits {
	case "1":
		return e.finalizeReservation(s)
	case "2":
		s.Reservation = ReservationDraft{}
		return e.reply(s, Reply{
			Say:    []string{"Let's start over. Please say or enter the date for your reservation. For example, say 'today' or 'July 30th'."},
			Gather: gatherSpeechAndDigits(),
		})
	default:
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't understand that. Press 1 to confirm your reservation, or 2 to start over."},
			Gather: gatherDigits(),
		})
	}
}

func (e *Engine) finalizeReservation(s *Session) Reply {
	if key, err := e.store.GetIdempotencyKey(s.CallSID, models.IdempotencyKindReservation); err == nil {
		log.Printf("🔁 Duplicate reservation confirmation for call %s (reservation %d), skipping", s.CallSID, key.RefID)
		s.Step = StepComplete
		return e.reservationBookedReply(s)
	}

	reservation, err := e.store.CreateReservation(&models.Reservation{
		RestaurantID:  s.Restaurant.RestaurantID,
		Date:          s.Reservation.Date,
		Time:          s.Reservation.Time,
		PartySize:     s.Reservation.PartySize,
		CustomerPhone: s.CustomerPhone(),
		Status:        models.ReservationStatusConfirmed,
	})
	if err != nil {
		log.Printf("❌ Failed to create reservation for call %s: %v", s.CallSID, err)
		return e.reply(s, Reply{
			Say:    []string{"We couldn't process your reservation at this time. Please call back or contact the restaurant directly. Thank you for calling!"},
			Hangup: true,
		})
	}

	e.recordIdempotency(s, models.IdempotencyKindReservation, reservation.ID)
	e.notifier.ReservationBooked(s.Restaurant, reservation)
	e.completeCallRecord(s)

	s.Step = StepComplete
	s.Flow = ""
	log.Printf("✅ Reservation %d created for call %s (party of %d)", reservation.ID, s.CallSID, reservation.PartySize)
	return e.reservationBookedReply(s)
}

func (e *Engine) reservationBookedReply(s *Session) Reply {
	return e.reply(s, Reply{
		Say:    []string{"Your reservation has been confirmed! We'll send you a confirmation text message. Thank you for calling, and we look forward to serving you!"},
		Hangup: true,
	})
}

// Order sub-flow: pick an item by keypad or fuzzy-matched speech, then
// quantity, then special instructions, then confirm or add more.

func (e *Engine) handleLegacyOrder(s *Session, in Input) Reply {
	switch s.OrderState {
	case OrderStateSelectingItem:
		return e.orderSelectItem(s, in)
	case OrderStateGettingQuantity:
		return e.orderQuantity(s, in)
	case OrderStateGettingInstructions:
		return e.orderInstructions(s, in)
	case OrderStateConfirming:
		return e.orderConfirm(s, in)
	default:
		log.Printf("⚠️  Unknown order state %q for call %s", s.OrderState, s.CallSID)
		s.OrderState = OrderStateSelectingItem
		return e.orderSelectItem(s, in)
	}
}

func (e *Engine) orderSelectItem(s *Session, in Input) Reply {
	items := e.legacyItems(s)
	text := in.Text()

	if text == "" {
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't catch the item you want to order. Please say the name of the item."},
			Gather: gatherSpeechLong(),
		})
	}

	// Keypad selection against the enumerated subset first.
	if n, err := strconv.Atoi(text); err == nil {
		limit := len(items)
		if limit > 9 {
			limit = 9
		}
		if n >= 1 && n <= limit {
			return e.orderPickItem(s, items[n-1], fmt.Sprintf("You selected %s. ", items[n-1].Name))
		}
	}

	// Fall back to fuzzy matching the utterance against every item name.
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	idx, score := BestMatch(text, names)
	if idx >= 0 && score > MatchThreshold {
		return e.orderPickItem(s, items[idx], fmt.Sprintf("I think you want %s. ", items[idx].Name))
	}

	// No acceptable match: enumerate the keypad list.
	var b strings.Builder
	b.WriteString("Please select an item using your keypad: ")
	for i, item := range items {
		if i >= 9 {
			break
		}
		fmt.Fprintf(&b, "Press %d for %s. ", i+1, item.Name)
	}
	b.WriteString("Or say the name of the item you want.")
	return e.reply(s, Reply{Say: []string{b.String()}, Gather: gatherSpeechLong()})
}

func (e *Engine) orderPickItem(s *Session, item models.ItemSnapshot, lead string) Reply {
	s.CurrentItem = &LineItem{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		HasPrice: item.HasPrice,
	}
	s.OrderState = OrderStateGettingQuantity
	return e.reply(s, Reply{
		Say:    []string{lead + "Please say or enter the quantity. For example, say 'two' or press 2 on your keypad."},
		Gather: gatherSpeechAndDigits(),
	})
}

func (e *Engine) orderQuantity(s *Session, in Input) Reply {
	if s.CurrentItem == nil {
		s.OrderState = OrderStateSelectingItem
		return e.orderSelectItem(s, in)
	}
	if in.Empty() {
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't catch the quantity. Please say how many you'd like to order."},
			Gather: gatherSpeechAndDigits(),
		})
	}

	var quantity int
	text := in.Text()
	if n, err := strconv.Atoi(text); err == nil {
		quantity = n
	} else {
		quantity = ExtractQuantity(text)
	}

	if quantity < 1 {
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't understand. Please enter the quantity using your keypad or say the number."},
			Gather: gatherSpeechAndDigits(),
		})
	}

	s.CurrentItem.Quantity = quantity
	s.OrderState = OrderStateGettingInstructions
	return e.reply(s, Reply{
		Say:    []string{fmt.Sprintf("Got %d %s. For special instructions, say them now or press 1 to skip.", quantity, s.CurrentItem.Name)},
		Gather: gatherSpeechAndDigits(),
	})
}

func (e *Engine) orderInstructions(s *Session, in Input) Reply {
	if s.CurrentItem == nil {
		s.OrderState = OrderStateSelectingItem
		return e.orderSelectItem(s, in)
	}
	if in.Empty() {
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't catch your instructions. Please say any special instructions or say 'no'."},
			Gather: gatherSpeechAndDigits(),
		})
	}

	if !isNoInstructions(in) {
		s.CurrentItem.Instructions = in.Speech
	}

	s.Items = append(s.Items, *s.CurrentItem)
	s.CurrentItem = nil
	s.OrderState = OrderStateConfirming

	var say string
	if len(s.Items) == 1 {
		say = "You have 1 item in your order. Press 1 to confirm, 2 to start over, or 3 to add another item."
	} else {
		parts := make([]string, 0, len(s.Items))
		for _, item := range s.Items {
			parts = append(parts, fmt.Sprintf("%d %s", item.Quantity, item.Name))
		}
		say = fmt.Sprintf("Your order has: %s. Press 1 to confirm, 2 to start over, or 3 to add another item.", strings.Join(parts, ", "))
	}
	return e.reply(s, Reply{Say: []string{say}, Gather: gatherDigits()})
}

func (e *Engine) orderConfirm(s *Session, in Input) Reply {
	switch in.Digits {
	case "1":
		return e.finalizeLegacyOrder(s)
	case "2":
		s.Items = nil
		s.CurrentItem = nil
		s.OrderState = OrderStateSelectingItem
		return e.reply(s, Reply{
			Say:    []string{fmt.Sprintf("Let's start over. Here are our available menu items: %s. Please say the name of the item you want to order.", e.menuText(s))},
			Gather: gatherSpeechLong(),
		})
	case "3":
		s.OrderState = OrderStateSelectingItem
		return e.reply(s, Reply{
			Say:    []string{fmt.Sprintf("Great! What else would you like to order? Here are our menu items: %s. Please say the name of the next item you want to order.", e.menuText(s))},
			Gather: gatherSpeechLong(),
		})
	default:
		return e.reply(s, Reply{
			Say:    []string{"Sorry, I didn't understand that. Press 1 to confirm your order, 2 to start over, or 3 to add another item."},
			Gather: gatherDigits(),
		})
	}
}

func (e *Engine) finalizeLegacyOrder(s *Session) Reply {
	if len(s.Items) == 0 {
		s.OrderState = OrderStateSelectingItem
		return e.reply(s, Reply{
			Say:    []string{fmt.Sprintf("Your order is empty. Here are our available menu items: %s. Please say the name of the item you want to order.", e.menuText(s))},
			Gather: gatherSpeechLong(),
		})
	}

	reply := e.finalizeOrder(s)
	if s.Step == StepComplete {
		s.Flow = ""
		s.OrderState = ""
	}
	return reply
}

// legacyItems returns the flat non-special item list the legacy flow
// enumerates and matches against.
func (e *Engine) legacyItems(s *Session) []models.ItemSnapshot {
	if s.Restaurant == nil {
		return nil
	}
	return s.Restaurant.Items
}

// menuText reads out the first few items so the prompt stays short.
func (e *Engine) menuText(s *Session) string {
	items := e.legacyItems(s)
	var parts []string
	for i, item := range items {
		if i >= 3 {
			break
		}
		if item.Description != "" {
			parts = append(parts, fmt.Sprintf("%s, %s", item.Name, item.Description))
		} else {
			parts = append(parts, item.Name)
		}
	}
	text := strings.Join(parts, ". ")
	if len(items) > 3 {
		text += fmt.Sprintf(", and %d more items", len(items)-3)
	}
	return text
}

// formatClockDigits converts keypad times like "1900" or "730" into a
// spoken clock time. Three digits get a leading zero first.
func formatClockDigits(digits string) (string, bool) {
	if len(digits) == 3 {
		digits = "0" + digits
	}
	if len(digits) != 4 {
		return "", false
	}

	hour, err := strconv.Atoi(digits[:2])
	if err != nil || hour > 23 {
		return "", false
	}
	if m, err := strconv.Atoi(digits[2:]); err != nil || m > 59 {
		return "", false
	}
	minute := digits[2:]

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	if hour > 12 {
		hour -= 12
	}
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%d:%s %s", hour, minute, period), true
}
