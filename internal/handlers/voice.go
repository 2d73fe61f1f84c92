package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DineVoice/dinevoice-backend/internal/dialogue"
	"github.com/DineVoice/dinevoice-backend/internal/models"
	"github.com/DineVoice/dinevoice-backend/internal/services"
	"github.com/DineVoice/dinevoice-backend/internal/storage"
)

// VoiceHandler answers the telephony provider's voice webhooks. Every
// response is a TwiML document with status 200; a caller should never
// hear a raw error.
type VoiceHandler struct {
	store    storage.Store
	sessions services.SessionStore
	resolver *services.Resolver
	engine   *dialogue.Engine
}

// NewVoiceHandler creates a new voice webhook handler
func NewVoiceHandler(store storage.Store, sessions services.SessionStore, resolver *services.Resolver, engine *dialogue.Engine) *VoiceHandler {
	return &VoiceHandler{
		store:    store,
		sessions: sessions,
		resolver: resolver,
		engine:   engine,
	}
}

// param reads a webhook parameter from the form body or the query
// string, whichever the provider used.
func param(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.FormValue(name)); v != "" && !strings.Contains(v, "{{") {
			return v
		}
		if v := strings.TrimSpace(c.Query(name)); v != "" && !strings.Contains(v, "{{") {
			return v
		}
	}
	return ""
}

// calleeNumber finds the number the caller dialed. Providers and
// gateway layers disagree on where it lives, so several spots are
// checked in order. Template placeholders like "{{to}}" are skipped.
func calleeNumber(c *fiber.Ctx) string {
	if v := param(c, "To", "Called"); v != "" {
		return v
	}
	for _, header := range []string{"X-Vapi-Call-Phone-Number-To", "X-Twilio-To", "To"} {
		if v := strings.TrimSpace(c.Get(header)); v != "" && !strings.Contains(v, "{{") {
			return v
		}
	}
	return ""
}

// HandleWebhook processes one turn of an inbound call.
func (h *VoiceHandler) HandleWebhook(c *fiber.Ctx) error {
	callSID := param(c, "CallSid")
	if callSID == "" {
		return h.apology(c, "Sorry, we couldn't process your call. Please try again later.")
	}

	callee := calleeNumber(c)
	caller := param(c, "From", "Caller")
	input := dialogue.Input{
		Digits: param(c, "Digits"),
		Speech: param(c, "SpeechResult"),
	}

	ctx := c.Context()
	session, err := h.sessions.Get(ctx, callSID)
	if err != nil {
		log.Printf("⚠️  Session lookup failed for call %s: %v", callSID, err)
	}

	var reply dialogue.Reply
	if session == nil {
		restaurant, err := h.resolver.Resolve(callee)
		if err != nil {
			var notFound *services.NotFoundError
			if errors.As(err, &notFound) {
				log.Printf("📵 %v", notFound)
				return h.apology(c, "Sorry, this number is not connected to a restaurant right now. Please check the number and try again. Goodbye!")
			}
			log.Printf("❌ Restaurant lookup failed for call %s: %v", callSID, err)
			return h.apology(c, "Sorry, we're having trouble right now. Please call back in a few minutes. Goodbye!")
		}

		if _, err := h.store.CreateCallRecord(&models.CallRecord{
			CallSID:      callSID,
			RestaurantID: restaurant.ID,
			CallerNumber: caller,
			CalleeNumber: callee,
			Status:       models.CallStatusInProgress,
		}); err != nil {
			log.Printf("⚠️  Failed to create call record %s: %v", callSID, err)
		}

		session = dialogue.NewSession(callSID, callee, caller, h.resolver.Snapshot(restaurant))
		log.Printf("📞 New call %s from %s to %s (%s)", callSID, caller, callee, restaurant.RestaurantName)

		if input.Empty() {
			reply = h.engine.Greeting(session)
		} else {
			reply = h.engine.HandleInput(session, input)
		}
	} else {
		reply = h.engine.HandleInput(session, input)
	}

	if err := h.sessions.Put(ctx, session); err != nil {
		log.Printf("⚠️  Failed to persist session %s: %v", callSID, err)
	}

	doc, err := services.RenderVoice(reply, c.Path())
	if err != nil {
		log.Printf("❌ Failed to render voice response for call %s: %v", callSID, err)
		return h.apology(c, "Sorry, something went wrong. Please call back. Goodbye!")
	}

	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(doc)
}

func (h *VoiceHandler) apology(c *fiber.Ctx, message string) error {
	doc, err := services.RenderApology(message)
	if err != nil {
		// Last resort: an empty TwiML document still hangs up cleanly.
		doc = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(doc)
}
