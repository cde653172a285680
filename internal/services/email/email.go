// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email sends transactional mail over SMTP.
package email

import (
	"context"
	"fmt"

	"github.com/walkthewalk/walkthewalk/internal/config"
	"github.com/wneessen/go-mail"
)

// Message is a single outbound email with both body variants.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Service sends email via SMTP using go-mail. It is constructed once at
// startup and injected into its consumers; there is no process-wide client.
type Service struct {
	cfg *config.SMTPConfig
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{cfg: cfg}, nil
}

// Send dispatches a message via SMTP.
func (s *Service) Send(ctx context.Context, message Message) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.TextBody)
	if message.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, message.HTMLBody)
	}

	// Build client options
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	// Add authentication if credentials are provided
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
