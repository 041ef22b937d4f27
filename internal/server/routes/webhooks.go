package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/hooksig/internal/webhooks/receiver"
)

// WebhookRoutes registers webhook endpoints.
type WebhookRoutes struct {
	receiver *receiver.Handler
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(handler *receiver.Handler) *WebhookRoutes {
	return &WebhookRoutes{receiver: handler}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/webhooks/:org", w.handleWebhook)
}

func (w *WebhookRoutes) handleWebhook(c echo.Context) error {
	return w.receiver.Handle(c.Response(), c.Request(), c.Param("org"))
}
