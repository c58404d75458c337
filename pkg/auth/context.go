package auth

import "context"

type identityKey struct{}

// SetIdentity stores the authenticated identity in the context.
func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the authenticated identity.
// Returns nil if the request did not pass through the auth middleware.
func IdentityFromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}

// SubjectFromContext returns the caller subject or an empty string.
func SubjectFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.Subject
	}
	return ""
}
