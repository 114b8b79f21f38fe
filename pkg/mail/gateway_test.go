package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingMailer struct {
	last Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.last = msg
	return m.err
}

func TestGatewaySendSuccess(t *testing.T) {
	mailer := &recordingMailer{}
	gateway := NewGateway(mailer, "library.example.com")

	result := gateway.Send(context.Background(), "user@example.com", "Reminder", "<p>Hi</p>")
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Error != "" {
		t.Fatalf("expected empty error, got %q", result.Error)
	}
	if !strings.HasSuffix(result.MessageID, "@library.example.com>") {
		t.Fatalf("expected domain-scoped message id, got %q", result.MessageID)
	}
	if result.MessageID != mailer.last.MessageID {
		t.Fatalf("expected message id to reach the mailer, got %q vs %q", result.MessageID, mailer.last.MessageID)
	}
	if !mailer.last.HTML {
		t.Fatal("expected html delivery")
	}
	if len(mailer.last.To) != 1 || mailer.last.To[0] != "user@example.com" {
		t.Fatalf("unexpected recipients: %v", mailer.last.To)
	}
}

func TestGatewaySendFailureIsData(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("connection refused")}
	gateway := NewGateway(mailer, "")

	result := gateway.Send(context.Background(), "user@example.com", "Reminder", "body")
	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result.Error != "connection refused" {
		t.Fatalf("expected mailer error string, got %q", result.Error)
	}
	if result.MessageID != "" {
		t.Fatalf("expected no message id on failure, got %q", result.MessageID)
	}
}

func TestGatewayDomainFallback(t *testing.T) {
	mailer := &recordingMailer{}
	gateway := NewGateway(mailer, "  ")

	result := gateway.Send(context.Background(), "user@example.com", "Reminder", "body")
	if !strings.HasSuffix(result.MessageID, "@localhost>") {
		t.Fatalf("expected localhost fallback, got %q", result.MessageID)
	}
}
