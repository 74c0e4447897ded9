package api

import (
	"context"
	"errors"

	"github.com/rpupo63/blogicum/models"
)

type keyType string

const (
	userKey keyType = "user"
)

// ctxWithUser adds the authenticated staff user to the context
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser retrieves the authenticated staff user from the context
func ctxGetUser(ctx context.Context) (*models.User, error) {
	if ctxValue := ctx.Value(userKey); ctxValue == nil {
		return nil, errors.New("key not found in context")
	} else if user, ok := ctxValue.(*models.User); !ok {
		return nil, errors.New("value is not of type `*models.User`")
	} else {
		return user, nil
	}
}

// actorName names the staff user behind a request for audit logs
func actorName(ctx context.Context) string {
	user, err := ctxGetUser(ctx)
	if err != nil {
		return "unknown"
	}
	return user.Username
}
