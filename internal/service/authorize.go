// Package service holds the business rules of the reference API server.
// Every mutation is checked against the same policy the client applies.
package service

import (
	"context"
	"log/slog"
	"strings"

	"cookbook/internal/observability"
	"cookbook/internal/policy"
	"cookbook/internal/session"
)

func authorize(ctx context.Context, actor session.Session, action policy.Action, res policy.Resource) error {
	d := policy.Decide(actor, action, res)
	if d.Allowed {
		return nil
	}
	observability.PolicyDenials.WithLabelValues(string(action)).Inc()
	observability.Logger.InfoContext(ctx, "policy denied",
		slog.String("action", string(action)),
		slog.String("reason", d.Reason),
	)
	return d.Err()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
