package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DineVoice/dinevoice-backend/internal/services"
)

// MenuHandler serves the menu lookup API used by external voice agents
// that fetch the menu mid-call instead of navigating the IVR.
type MenuHandler struct {
	resolver *services.Resolver
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(resolver *services.Resolver) *MenuHandler {
	return &MenuHandler{resolver: resolver}
}

// bodyCalleeFields are the JSON keys assistant integrations have been
// seen carrying the dialed number under, tried in order.
var bodyCalleeFields = []string{"to", "phoneNumber", "restaurant_phone", "number", "from", "caller"}

func calleeFromBody(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, field := range bodyCalleeFields {
		v, ok := payload[field].(string)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v != "" && !strings.Contains(v, "{{") {
			return v
		}
	}
	return ""
}

// Lookup resolves the callee number to a restaurant and returns its
// menu snapshot as JSON. The number is taken from the JSON body, the
// query string, or the headers, whichever the integration used.
func (h *MenuHandler) Lookup(c *fiber.Ctx) error {
	callee := calleeFromBody(c)
	if callee == "" {
		callee = param(c, "callee", "phone", "To", "Called")
	}
	if callee == "" {
		callee = calleeNumber(c)
	}
	if callee == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing callee number",
		})
	}

	restaurant, err := h.resolver.Resolve(callee)
	if err != nil {
		var notFound *services.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":            "no restaurant found for this number",
				"callee":           callee,
				"tried_variations": notFound.Tried,
			})
		}
		log.Printf("❌ Menu lookup failed for %s: %v", callee, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "lookup failed",
		})
	}

	snapshot := h.resolver.Snapshot(restaurant)
	return c.JSON(fiber.Map{
		"restaurant": snapshot,
	})
}
