package rest

import (
	"context"

	"github.com/google/uuid"
)

type ctxKeyUserID struct{}

type AuthContext struct {
	UserID uuid.UUID
}

func withAuth(ctx context.Context, a AuthContext) context.Context {
	return context.WithValue(ctx, ctxKeyUserID{}, a.UserID)
}

func GetAuth(ctx context.Context) (AuthContext, bool) {
	uid, ok := ctx.Value(ctxKeyUserID{}).(uuid.UUID)
	if !ok {
		return AuthContext{}, false
	}
	return AuthContext{UserID: uid}, true
}
