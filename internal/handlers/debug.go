package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DineVoice/dinevoice-backend/internal/services"
)

// DebugHandler exposes the live session store for development.
type DebugHandler struct {
	sessions services.SessionStore
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(sessions services.SessionStore) *DebugHandler {
	return &DebugHandler{sessions: sessions}
}

// Sessions dumps every active call session.
func (h *DebugHandler) Sessions(c *fiber.Ctx) error {
	sessions, err := h.sessions.All(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"count":    len(sessions),
		"sessions": sessions,
	})
}
