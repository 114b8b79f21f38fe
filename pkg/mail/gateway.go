package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Result describes the outcome of a single delivery attempt. Failure is
// reported as data rather than as an error so callers can treat delivery
// outcome as state to record.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Gateway sends one HTML message per call and never returns a Go error.
type Gateway interface {
	Send(ctx context.Context, to, subject, html string) Result
}

type smtpGateway struct {
	mailer Mailer
	domain string
}

// NewSMTPGateway wraps an SMTP mailer built from cfg into the Gateway
// contract. The configured host seeds generated Message-ID headers.
func NewSMTPGateway(cfg SMTPSettings) (Gateway, error) {
	mailer, err := NewSMTPMailer(cfg)
	if err != nil {
		return nil, err
	}

	domain := strings.TrimSpace(cfg.Host)
	if domain == "" {
		domain = "localhost"
	}

	return &smtpGateway{mailer: mailer, domain: domain}, nil
}

// NewGateway adapts an existing Mailer, primarily for tests.
func NewGateway(mailer Mailer, domain string) Gateway {
	if strings.TrimSpace(domain) == "" {
		domain = "localhost"
	}
	return &smtpGateway{mailer: mailer, domain: domain}
}

func (g *smtpGateway) Send(ctx context.Context, to, subject, html string) Result {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), g.domain)

	err := g.mailer.Send(ctx, Message{
		To:        []string{to},
		Subject:   subject,
		Body:      html,
		HTML:      true,
		MessageID: messageID,
	})
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	return Result{Success: true, MessageID: messageID}
}
