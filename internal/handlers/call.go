package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/DineVoice/dinevoice-backend/internal/services"
)

// CallHandler starts outbound calls through the telephony provider.
type CallHandler struct {
	twilio     *services.TwilioService
	webhookURL string
}

// NewCallHandler creates a new outbound call handler
func NewCallHandler(twilio *services.TwilioService, webhookURL string) *CallHandler {
	return &CallHandler{twilio: twilio, webhookURL: webhookURL}
}

type makeCallRequest struct {
	To         string `json:"to"`
	WebhookURL string `json:"webhook_url"`
}

// MakeCall places an outbound call that runs the voice webhook.
func (h *CallHandler) MakeCall(c *fiber.Ctx) error {
	if h.twilio == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "telephony not configured",
		})
	}

	var req makeCallRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.To == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing 'to' number",
		})
	}

	webhookURL := req.WebhookURL
	if webhookURL == "" {
		webhookURL = h.webhookURL
	}
	if webhookURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no webhook URL configured",
		})
	}

	sid, err := h.twilio.PlaceCall(req.To, webhookURL)
	if err != nil {
		log.Printf("❌ Outbound call to %s failed: %v", req.To, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "call failed",
		})
	}

	return c.JSON(fiber.Map{
		"status":   "started",
		"call_sid": sid,
	})
}
