package services

import (
	"errors"
	"fmt"

	"pinpoint/internal/domain"
)

var errorKinds = []error{
	domain.ErrValidation,
	domain.ErrUnauthenticated,
	domain.ErrForbidden,
	domain.ErrNotFound,
	domain.ErrConflict,
}

// wrap returns domain errors unchanged and prefixes anything else with op.
func wrap(op string, err error) error {
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
