package service

import (
	"errors"
	"fmt"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
)

var (
	// ErrValidation is returned when input is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrConfirmationRequired is returned by destructive operations called without confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrForbidden is returned when the acting user may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	ErrInvalidTransition = model.ErrInvalidTransition
	ErrNotFound          = repository.ErrNotFound
	ErrConflict          = repository.ErrConflict
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// uploadError maps storage errors onto the service sentinels.
func uploadError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, uploads.ErrInvalidDocument), errors.Is(err, uploads.ErrInvalidKey):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, uploads.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
