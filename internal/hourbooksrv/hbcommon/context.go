// Package hbcommon carries request identity through context.Context.
package hbcommon

import "context"

type ctxKeyType string

const ctxActorKey ctxKeyType = "HourbookActor"

// Actor is the authenticated member performing a request.
type Actor struct {
	Code    string
	Name    string
	Role    string
	IsAdmin bool
	// TokenID is the jti of the identity token; settings are keyed by it.
	TokenID string
}

// WithActor stores the actor in ctx. The persistence layer uses it as the
// security context for every statement.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey, a)
}

// GetActor returns the actor from ctx or nil.
func GetActor(ctx context.Context) *Actor {
	a, _ := ctx.Value(ctxActorKey).(*Actor)
	return a
}

// GetActorCode returns the acting member code or "".
func GetActorCode(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.Code
	}
	return ""
}
