package session

import "context"

// Role identifies which dashboard the session belongs to.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Session carries the authenticated identity through a request. The
// coordinator and data layer receive it explicitly rather than re-deriving
// the current user from the auth backend on every call.
type Session struct {
	UserID string
	Role   Role
}

type ctxKey string

const sessionKey ctxKey = "carebridge.session"

// WithSession stores the session in context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext extracts the session if present.
func FromContext(ctx context.Context) (Session, bool) {
	val := ctx.Value(sessionKey)
	if val == nil {
		return Session{}, false
	}
	s, ok := val.(Session)
	return s, ok && s.UserID != ""
}
