// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package mail

import (
	"context"
	"log/slog"

	"github.com/trailhead-labs/trailhead/internal/auth"
)

// LogMailer writes messages to the log instead of delivering them. Used in
// development when no SMTP host is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message and reports success.
func (m *LogMailer) Send(_ context.Context, msg auth.Message) error {
	m.logger.Info("mail delivery skipped, no smtp host configured",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// Compile-time interface check.
var _ auth.Mailer = (*LogMailer)(nil)
