package usage

import (
	"context"

	"geoverify/domain/core"
)

type sessionKey struct{}

// WithSession attributes critic calls made under ctx to a critique session
func WithSession(ctx context.Context, id core.SessionID) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFrom returns the critique session ctx was attributed to
func SessionFrom(ctx context.Context) (core.SessionID, bool) {
	id, ok := ctx.Value(sessionKey{}).(core.SessionID)
	return id, ok && id != ""
}
