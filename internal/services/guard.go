package services

import (
	"errors"
	"fmt"
	"strings"

	"pinpoint/internal/domain"
)

type authorizationGuard struct {
	verifier domain.TokenVerifier
}

// NewAuthorizationGuard returns a guard that delegates credential checks to verifier.
func NewAuthorizationGuard(verifier domain.TokenVerifier) domain.AuthorizationGuard {
	return &authorizationGuard{verifier: verifier}
}

func (g *authorizationGuard) Resolve(credential string) (domain.Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing credential", domain.ErrUnauthenticated)
	}
	p, err := g.verifier.Verify(credential)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return domain.Principal{}, err
		}
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if p.ID == "" || !p.Role.Valid() {
		return domain.Principal{}, fmt.Errorf("%w: incomplete principal", domain.ErrUnauthenticated)
	}
	return p, nil
}

func (g *authorizationGuard) RequireRole(p domain.Principal, role domain.Role) error {
	if p.ID == "" {
		return domain.ErrUnauthenticated
	}
	if p.Role != role {
		return fmt.Errorf("%w: requires the %s role", domain.ErrForbidden, role)
	}
	return nil
}

func (g *authorizationGuard) Owns(p domain.Principal, e *domain.Event) bool {
	return e != nil && p.ID != "" && e.OrganizerID == p.ID
}
