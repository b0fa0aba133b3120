// Package auth holds the authenticated admin identity, its session tokens and
// password hashing.
package auth

import (
	"context"
	"slices"
)

// Principal is the admin behind a request
type Principal struct {
	AdminID     int64    `json:"admin_id"`
	Username    string   `json:"username"`
	IsSuper     bool     `json:"is_super"`
	Permissions []string `json:"permissions"`
}

// Can reports whether the principal holds permission. Super admins hold all.
func (p Principal) Can(permission string) bool {
	return p.IsSuper || slices.Contains(p.Permissions, permission)
}

type principalContextKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext returns the principal stored in context, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// Actor names who performed a write, for the audit log.
func Actor(ctx context.Context) string {
	if p, ok := FromContext(ctx); ok {
		return p.Username
	}
	return "system"
}
