package notification

import (
	"context"
	"errors"
	"testing"

	"lead_portal_backend/internal/email"
	"lead_portal_backend/internal/events"
	"lead_portal_backend/internal/notification/sse"
	"lead_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct{ recipient string }

func (c testNotificationConfig) GetSalesAlertEmail() string { return c.recipient }

type testSender struct {
	calls     int
	recipient string
	alert     email.HotLeadAlert
	err       error
}

func (s *testSender) SendHotLeadAlert(_ context.Context, toEmail string, alert email.HotLeadAlert) error {
	s.calls++
	s.recipient = toEmail
	s.alert = alert
	return s.err
}

func scored(previous, current string) events.LeadScored {
	return events.LeadScored{
		BaseEvent:              events.NewBaseEvent(),
		LeadID:                 uuid.New(),
		FirstName:              "Ada",
		LastName:               "Lovelace",
		CompanyName:            "Analytical Engines",
		PreviousScore:          55,
		Score:                  74,
		PreviousClassification: previous,
		Classification:         current,
		Trigger:                events.ScoreTriggerManual,
	}
}

func TestHandleLeadScoredAlertsOnHotEntry(t *testing.T) {
	tests := []struct {
		name      string
		previous  string
		current   string
		recipient string
		wantCalls int
	}{
		{name: "warm to hot", previous: "Warm", current: "Hot", recipient: "sales@example.com", wantCalls: 1},
		{name: "first score hot", previous: "", current: "Hot", recipient: "sales@example.com", wantCalls: 1},
		{name: "already hot", previous: "Hot", current: "Hot", recipient: "sales@example.com", wantCalls: 0},
		{name: "hot to warm", previous: "Hot", current: "Warm", recipient: "sales@example.com", wantCalls: 0},
		{name: "no recipient", previous: "Warm", current: "Hot", recipient: "  ", wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &testSender{}
			m := New(sender, testNotificationConfig{recipient: tt.recipient}, logger.New("test"))

			if err := m.Handle(context.Background(), scored(tt.previous, tt.current)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sender.calls != tt.wantCalls {
				t.Fatalf("expected %d alerts, got %d", tt.wantCalls, sender.calls)
			}
		})
	}
}

func TestHotLeadAlertContent(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testNotificationConfig{recipient: "sales@example.com"}, logger.New("test"))
	event := scored("Warm", "Hot")

	if err := m.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.recipient != "sales@example.com" {
		t.Fatalf("expected sales recipient, got %q", sender.recipient)
	}
	if sender.alert.FullName != "Ada Lovelace" || sender.alert.Score != 74 || sender.alert.LeadID != event.LeadID.String() {
		t.Fatalf("unexpected alert %+v", sender.alert)
	}
}

func TestHotLeadAlertErrorIsReturned(t *testing.T) {
	boom := errors.New("smtp down")
	m := New(&testSender{err: boom}, testNotificationConfig{recipient: "sales@example.com"}, logger.New("test"))

	if err := m.Handle(context.Background(), scored("Cold", "Hot")); !errors.Is(err, boom) {
		t.Fatalf("expected smtp error, got %v", err)
	}
}

func TestLeadEventsAreStreamed(t *testing.T) {
	m := New(nil, testNotificationConfig{}, logger.New("test"))
	stream := sse.New(logger.New("test"))
	m.SetSSE(stream)

	ch := make(chan sse.Event, 4)
	unsubscribe, ok := stream.Subscribe(ch)
	if !ok {
		t.Fatalf("expected subscription")
	}
	defer unsubscribe()

	id := uuid.New()
	_ = m.Handle(context.Background(), events.LeadDeleted{LeadID: id})

	select {
	case got := <-ch:
		if got.Type != sse.EventLeadDeleted || got.LeadID != id {
			t.Fatalf("unexpected event %+v", got)
		}
	default:
		t.Fatalf("expected streamed event")
	}
}
