package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/DineVoice/dinevoice-backend/internal/email"
	"github.com/DineVoice/dinevoice-backend/internal/models"
	"github.com/DineVoice/dinevoice-backend/internal/storage"
)

// Dispatcher fans a completed order or reservation out to the customer
// and the restaurant. Every channel is best-effort: a failed text or
// email is logged and the rest still go out, because the caller was
// already told their request went through.
type Dispatcher struct {
	store  storage.Store
	twilio *TwilioService
	smtp   email.SMTPConfig
}

func NewDispatcher(store storage.Store, twilio *TwilioService, smtp email.SMTPConfig) *Dispatcher {
	return &Dispatcher{store: store, twilio: twilio, smtp: smtp}
}

func (d *Dispatcher) OrderPlaced(snapshot *models.RestaurantSnapshot, order *models.Order, items []*models.OrderItem) {
	go d.dispatchOrder(snapshot, order, items)
}

func (d *Dispatcher) ReservationBooked(snapshot *models.RestaurantSnapshot, reservation *models.Reservation) {
	go d.dispatchReservation(snapshot, reservation)
}

func (d *Dispatcher) dispatchOrder(snapshot *models.RestaurantSnapshot, order *models.Order, items []*models.OrderItem) {
	summary := orderSummary(items)
	total := orderTotal(items)

	if d.twilio != nil && order.CustomerPhone != "" {
		body := fmt.Sprintf("Thank you for your order at %s!\nOrder %s: %s.\nTotal: $%.2f.\nWe'll have it ready for you soon.",
			snapshot.Name, order.OrderNumber, summary, total)
		if err := d.twilio.SendSMS(order.CustomerPhone, body); err == nil {
			order.CustomerSMS = true
		}
	}

	if d.twilio != nil && snapshot.PhoneNumber != "" {
		body := fmt.Sprintf("New phone order %s from %s: %s. Total: $%.2f.",
			order.OrderNumber, order.CustomerPhone, summary, total)
		if err := d.twilio.SendSMS(snapshot.PhoneNumber, body); err == nil {
			order.RestaurantSMS = true
		}
	}

	if snapshot.Email != "" {
		subject := fmt.Sprintf("New phone order %s", order.OrderNumber)
		body := orderEmailBody(snapshot, order, items, total)
		if err := email.SendText(d.smtp, snapshot.Email, subject, body); err != nil {
			log.Printf("⚠️  Failed to email order %s to %s: %v", order.OrderNumber, snapshot.Email, err)
		} else {
			order.EmailSent = true
			log.Printf("✅ Order %s emailed to %s", order.OrderNumber, snapshot.Email)
		}
	}

	if err := d.store.UpdateOrder(order); err != nil {
		log.Printf("⚠️  Failed to record notification flags for order %s: %v", order.OrderNumber, err)
	}
}

func (d *Dispatcher) dispatchReservation(snapshot *models.RestaurantSnapshot, reservation *models.Reservation) {
	if d.twilio != nil && reservation.CustomerPhone != "" {
		body := fmt.Sprintf("Your reservation at %s is confirmed: table for %d on %s at %s. See you then!",
			snapshot.Name, reservation.PartySize, reservation.Date, reservation.Time)
		if err := d.twilio.SendSMS(reservation.CustomerPhone, body); err != nil {
			log.Printf("⚠️  Failed to text reservation %d confirmation: %v", reservation.ID, err)
		}
	}

	if d.twilio != nil && snapshot.PhoneNumber != "" {
		body := fmt.Sprintf("New reservation from %s: table for %d on %s at %s.",
			reservation.CustomerPhone, reservation.PartySize, reservation.Date, reservation.Time)
		if err := d.twilio.SendSMS(snapshot.PhoneNumber, body); err != nil {
			log.Printf("⚠️  Failed to text restaurant about reservation %d: %v", reservation.ID, err)
		}
	}

	if snapshot.Email != "" {
		subject := "New phone reservation"
		body := fmt.Sprintf("A reservation was booked over the phone at %s.\n\nDate: %s\nTime: %s\nParty size: %d\nCustomer phone: %s\n",
			snapshot.Name, reservation.Date, reservation.Time, reservation.PartySize, reservation.CustomerPhone)
		if err := email.SendText(d.smtp, snapshot.Email, subject, body); err != nil {
			log.Printf("⚠️  Failed to email reservation %d to %s: %v", reservation.ID, snapshot.Email, err)
		}
	}
}

func orderSummary(items []*models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		part := fmt.Sprintf("%dx %s", item.Quantity, item.ItemName)
		if item.SpecialInstructions != "" {
			part += fmt.Sprintf(" (%s)", item.SpecialInstructions)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func orderTotal(items []*models.OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func orderEmailBody(snapshot *models.RestaurantSnapshot, order *models.Order, items []*models.OrderItem, total float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new order was placed over the phone at %s.\n\n", snapshot.Name)
	fmt.Fprintf(&b, "Order number: %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Customer phone: %s\n\n", order.CustomerPhone)
	b.WriteString("Items:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  %dx %s ($%.2f each)\n", item.Quantity, item.ItemName, item.Price)
		if item.SpecialInstructions != "" {
			fmt.Fprintf(&b, "      Instructions: %s\n", item.SpecialInstructions)
		}
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n", total)
	return b.String()
}
