// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package auth

import "context"

// Message is an outbound email payload.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages to users. Transport and retry behavior belong to
// the implementation; the auth service only observes success or failure.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
