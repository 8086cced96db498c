// Package requestdata carries per-request actor identity through
// context.Context so services never touch HTTP types.
package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

type RequestData struct {
	ActorID uuid.UUID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, contextKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, _ := ctx.Value(contextKey{}).(*RequestData)
	return rd
}

// ActorID returns the authenticated actor, or uuid.Nil when the request
// is unauthenticated.
func ActorID(ctx context.Context) uuid.UUID {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.ActorID
	}
	return uuid.Nil
}
