package auth

import (
	"context"

	"github.com/cotafacil/cota-engine/pkg/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PrincipalKey is the context key for storing the resolved principal.
const PrincipalKey contextKey = "principal"

// GetPrincipal retrieves the resolved principal from the request context.
// Returns nil and false if not present.
func GetPrincipal(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*models.Principal)
	return p, ok
}

// SetPrincipal stores the resolved principal in the context.
func SetPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
