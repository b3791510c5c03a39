package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// EmailService delivers the weekly digest.
type EmailService interface {
	SendDigest(ctx context.Context, toEmail, displayName string, insights []string) error
}

// MailgunConfig carries the credentials for the Mailgun sender.
type MailgunConfig struct {
	Domain        string
	PrivateAPIKey string
	SenderEmail   string
	SenderName    string
}

// NewEmailService returns a Mailgun-backed sender when the config is
// complete, and the logging mock otherwise.
func NewEmailService(cfg MailgunConfig, log *slog.Logger) EmailService {
	if cfg.Domain == "" || cfg.PrivateAPIKey == "" || cfg.SenderEmail == "" {
		log.Warn("Mailgun configuration incomplete, falling back to mock email service")
		return &MockEmailService{log: log}
	}
	log.Info("Mailgun client initialized", "domain", cfg.Domain)
	return &MailgunEmailService{
		mg:          mailgun.NewMailgun(cfg.Domain, cfg.PrivateAPIKey),
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
		log:         log,
	}
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
	log         *slog.Logger
}

func (s *MailgunEmailService) SendDigest(ctx context.Context, toEmail, displayName string, insights []string) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := "Your weekly finance digest"

	body := fmt.Sprintf("Hi %s,\n\nHere is what we noticed in your finances this week:\n\n", displayName)
	for _, line := range insights {
		body += "  - " + line + "\n"
	}
	body += "\nSee the full breakdown on your dashboard.\n"

	message := s.mg.NewMessage(from, subject, body, toEmail)
	message.AddTag("weekly-digest")

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		s.log.Error("Failed to send digest via Mailgun", "error", err, "to", toEmail, "mailgunResp", resp)
		return fmt.Errorf("mailgun send failed: %w", err)
	}
	s.log.Info("Digest sent via Mailgun", "to", toEmail, "id", id)
	return nil
}

// MockEmailService logs instead of sending; used in development and tests.
type MockEmailService struct {
	log  *slog.Logger
	Sent []string // recipient emails, recorded for assertions
}

func (m *MockEmailService) SendDigest(ctx context.Context, toEmail, displayName string, insights []string) error {
	m.Sent = append(m.Sent, toEmail)
	if m.log != nil {
		m.log.Info("MockEmailService: would send weekly digest", "to", toEmail, "insightCount", len(insights))
	}
	return nil
}
