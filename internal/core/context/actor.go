package context

import (
	"context"
)

// Actor identifies who performs an operation. It is threaded explicitly
// through every mutating service call so ledger entries and movement rows
// carry provenance.
type Actor struct {
	UserID string
	Name   string
	Role   string
}

type actorContextKey struct{}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns Actor from context, or nil when the request is anonymous.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorContextKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// ActorOrSystem returns the actor from context, falling back to a synthetic
// "system" actor for CLI utilities and repair jobs.
func ActorOrSystem(ctx context.Context) Actor {
	if a := GetActor(ctx); a != nil {
		return *a
	}
	return Actor{UserID: "system", Name: "system"}
}
