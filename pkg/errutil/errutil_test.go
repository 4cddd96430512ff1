// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trailhead Contributors

package errutil_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/trailhead-labs/trailhead/pkg/errutil"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "coded error",
			err:  oops.Code("AUTH_TOKEN_EXPIRED").Errorf("token has expired"),
			want: "AUTH_TOKEN_EXPIRED",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "",
		},
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "wrapped coded error",
			err:  oops.Code("USER_NOT_FOUND").Wrap(errors.New("no rows")),
			want: "USER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errutil.CodeOf(tt.err))
		})
	}
}

func TestLogError(t *testing.T) {
	t.Run("oops error includes code and context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		err := oops.Code("RESET_TOKEN_INVALID").With("operation", "Consume").Errorf("bad token")
		errutil.LogError(logger, "request failed", err)

		out := buf.String()
		assert.Contains(t, out, "request failed")
		assert.Contains(t, out, "RESET_TOKEN_INVALID")
		assert.Contains(t, out, "Consume")
	})

	t.Run("plain error logs message", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		errutil.LogError(logger, "request failed", errors.New("boom"))

		out := buf.String()
		assert.Contains(t, out, "request failed")
		assert.Contains(t, out, "boom")
	})
}
