package session

import "context"

type ctxKey string

const sessionKey ctxKey = "clinicport.session"

// WithSession stores the hydrated session in context.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext extracts the session placed by the access gate.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}
