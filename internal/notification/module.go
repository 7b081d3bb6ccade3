// Package notification provides event handlers that react to lead domain
// events: sales alert emails and the live event stream.
package notification

import (
	"context"
	"strings"

	"lead_portal_backend/internal/email"
	"lead_portal_backend/internal/events"
	apphttp "lead_portal_backend/internal/http"
	"lead_portal_backend/internal/leads/scoring"
	"lead_portal_backend/internal/notification/sse"
	"lead_portal_backend/platform/config"
	"lead_portal_backend/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
	sse    *sse.Service
}

func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

func (m *Module) Name() string { return "notification" }

// SetSSE enables the live event stream.
func (m *Module) SetSSE(s *sse.Service) {
	m.sse = s
}

// RegisterRoutes mounts the event stream when SSE is enabled.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.sse == nil {
		return
	}
	notifications := ctx.Protected.Group("/notifications")
	notifications.GET("/stream", m.sse.Handler())
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadUpdated{}.EventName(), m)
	bus.Subscribe(events.LeadDeleted{}.EventName(), m)
	bus.Subscribe(events.LeadScored{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		m.stream(sse.Event{Type: sse.EventLeadCreated, LeadID: e.LeadID, Data: e})
		return nil
	case events.LeadUpdated:
		m.stream(sse.Event{Type: sse.EventLeadUpdated, LeadID: e.LeadID, Data: e})
		return nil
	case events.LeadDeleted:
		m.stream(sse.Event{Type: sse.EventLeadDeleted, LeadID: e.LeadID, Data: e})
		return nil
	case events.LeadScored:
		return m.handleLeadScored(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) stream(event sse.Event) {
	if m.sse == nil {
		return
	}
	m.sse.Broadcast(event)
}

func (m *Module) handleLeadScored(ctx context.Context, e events.LeadScored) error {
	m.stream(sse.Event{Type: sse.EventLeadScored, LeadID: e.LeadID, Data: e})

	if !e.EnteredTier(string(scoring.TierHot)) {
		return nil
	}

	recipient := strings.TrimSpace(m.cfg.GetSalesAlertEmail())
	if recipient == "" {
		return nil
	}

	alert := email.HotLeadAlert{
		LeadID:                 e.LeadID.String(),
		FullName:               strings.TrimSpace(e.FirstName + " " + e.LastName),
		CompanyName:            e.CompanyName,
		Score:                  e.Score,
		PreviousClassification: e.PreviousClassification,
		Classification:         e.Classification,
		Trigger:                e.Trigger,
	}
	if err := m.sender.SendHotLeadAlert(ctx, recipient, alert); err != nil {
		m.log.Error("failed to send hot lead alert", "lead_id", e.LeadID, "error", err)
		return err
	}

	m.log.Info("hot lead alert sent", "lead_id", e.LeadID, "score", e.Score, "trigger", e.Trigger)
	return nil
}
