// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

// Package mail delivers transactional email over SMTP.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/trailhead-labs/trailhead/internal/auth"
)

// sendFunc matches smtp.SendMail so delivery can be faked in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Options configures an SMTPMailer.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// Send replaces smtp.SendMail when non-nil.
	Send sendFunc

	// RetryBase is the initial backoff between delivery attempts.
	// Defaults to 500ms.
	RetryBase time.Duration
}

// SMTPMailer implements auth.Mailer over SMTP. Transient delivery failures
// are retried with fibonacci backoff before giving up.
type SMTPMailer struct {
	addr      string
	auth      smtp.Auth
	from      string
	send      sendFunc
	retryBase time.Duration
	logger    *slog.Logger
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(opts Options, logger *slog.Logger) (*SMTPMailer, error) {
	if opts.Host == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("smtp host is required")
	}
	if opts.From == "" {
		return nil, oops.Code("CONFIG_INVALID").Errorf("smtp from address is required")
	}
	if opts.Port == 0 {
		opts.Port = 587
	}
	if opts.Send == nil {
		opts.Send = smtp.SendMail
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	var smtpAuth smtp.Auth
	if opts.Username != "" {
		smtpAuth = smtp.PlainAuth("", opts.Username, opts.Password, opts.Host)
	}

	return &SMTPMailer{
		addr:      fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		auth:      smtpAuth,
		from:      opts.From,
		send:      opts.Send,
		retryBase: opts.RetryBase,
		logger:    logger,
	}, nil
}

// Send delivers the message, retrying transient failures up to three times.
func (m *SMTPMailer) Send(ctx context.Context, msg auth.Message) error {
	if msg.To == "" {
		return oops.Code("EMAIL_DELIVERY_FAILED").Errorf("recipient is required")
	}

	payload := m.encode(msg)

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(m.retryBase))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		if sendErr := m.send(m.addr, m.auth, m.from, []string{msg.To}, payload); sendErr != nil {
			m.logger.Warn("smtp delivery attempt failed", "to", msg.To, "error", sendErr)
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		return oops.Code("EMAIL_DELIVERY_FAILED").
			With("operation", "send mail").
			With("to", msg.To).
			Wrap(err)
	}

	m.logger.Debug("mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// encode renders the RFC 5322 message bytes.
func (m *SMTPMailer) encode(msg auth.Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Compile-time interface check.
var _ auth.Mailer = (*SMTPMailer)(nil)
