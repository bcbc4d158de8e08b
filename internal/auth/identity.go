package auth

import (
	"context"
	"errors"

	"github.com/d60-Lab/groupfeed/internal/model"
)

// Identity 由会话层提供的已认证身份
type Identity struct {
	ID       string
	Username string
	Role     model.Role
}

func (i Identity) IsAdmin() bool { return i.Role == model.RoleAdmin }

type contextKey string

const identityKey = contextKey("identity")

var ErrNoIdentity = errors.New("identity not found in context")

// WithIdentity 将身份写入 context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext 从 context 取出身份
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.ID == "" {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
