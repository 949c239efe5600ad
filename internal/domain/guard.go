package domain

// AuthorizationGuard is the single place where principals are resolved and role
// and ownership checks are made.
type AuthorizationGuard interface {
	// Resolve maps an opaque bearer credential to a principal or fails with ErrUnauthenticated.
	Resolve(credential string) (Principal, error)
	// RequireRole fails with ErrUnauthenticated for an empty principal and ErrForbidden for a
	// principal with a different role.
	RequireRole(p Principal, role Role) error
	Owns(p Principal, e *Event) bool
}
