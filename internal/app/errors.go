package app

import (
	"errors"
	"fmt"
	"net/http"

	"ideaforge/api/internal/revision"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// mapRevisionError translates engine errors into the HTTP error taxonomy.
func mapRevisionError(err error) error {
	switch {
	case errors.Is(err, revision.ErrNotFound):
		return domainError(http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	case errors.Is(err, revision.ErrLastEdition):
		return domainError(http.StatusConflict, "LAST_EDITION", "A paragraph must keep at least one edition", nil)
	case errors.Is(err, revision.ErrGradeOutOfRange):
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			fmt.Sprintf("grade must be between %d and %d", revision.GradeMin, revision.GradeMax), nil)
	default:
		return err
	}
}
