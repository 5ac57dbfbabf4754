package handlers

import (
	"github.com/lefthq/left-backend/internal/auth"
	"github.com/lefthq/left-backend/internal/feed"
	"github.com/lefthq/left-backend/internal/messaging"
	"github.com/lefthq/left-backend/internal/moderation"
	"github.com/lefthq/left-backend/internal/notifications"
	"github.com/lefthq/left-backend/internal/realtime"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth          *auth.Service
	feed          *feed.Service
	moderation    *moderation.Service
	messaging     *messaging.Service
	notifications *notifications.Service
	bus           realtime.Bus
}

// NewHandlers creates a new handlers instance
func NewHandlers(authSvc *auth.Service, feedSvc *feed.Service) *Handlers {
	return &Handlers{
		auth: authSvc,
		feed: feedSvc,
		bus:  realtime.NopBus{},
	}
}

// SetModerationService wires the admin console backend
func (h *Handlers) SetModerationService(svc *moderation.Service) {
	h.moderation = svc
}

// SetMessagingService wires direct messaging
func (h *Handlers) SetMessagingService(svc *messaging.Service) {
	h.messaging = svc
}

// SetNotificationService wires the activity bell
func (h *Handlers) SetNotificationService(svc *notifications.Service) {
	h.notifications = svc
}

// SetBus wires the realtime event bus
func (h *Handlers) SetBus(bus realtime.Bus) {
	h.bus = bus
}
