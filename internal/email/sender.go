package email

import (
	"context"
	"fmt"

	"lead_portal_backend/platform/config"
)

// HotLeadAlert carries the details shown in a Hot lead alert email.
type HotLeadAlert struct {
	LeadID                 string
	FullName               string
	CompanyName            string
	Score                  int
	PreviousClassification string
	Classification         string
	Trigger                string
}

type Sender interface {
	SendHotLeadAlert(ctx context.Context, toEmail string, alert HotLeadAlert) error
}

type NoopSender struct{}

func (NoopSender) SendHotLeadAlert(context.Context, string, HotLeadAlert) error {
	return nil
}

// NewSender returns an SMTP sender, or a NoopSender when SMTP is not configured.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}, nil
	}
	if cfg.GetSMTPPort() <= 0 {
		return nil, fmt.Errorf("invalid SMTP port %d", cfg.GetSMTPPort())
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetSMTPFrom(),
		defaultFromName,
	), nil
}
