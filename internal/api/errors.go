package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Category classifies a failed request for callers and for user-facing
// notifications.
type Category string

const (
	CategorySessionInvalid Category = "session-invalid"
	CategoryUnauthorized   Category = "unauthorized"
	CategoryNotFound       Category = "not-found"
	CategoryValidation     Category = "validation-error"
	CategoryNetwork        Category = "network-error"
	CategoryGeneric        Category = "generic-failure"
)

type Error struct {
	Category Category
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	return string(e.Category)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCategory reports whether err is an *Error of the given category.
func IsCategory(err error, c Category) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Category == c
}

func categoryForStatus(status int) Category {
	switch status {
	case http.StatusUnauthorized:
		return CategorySessionInvalid
	case http.StatusForbidden:
		return CategoryUnauthorized
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusUnprocessableEntity:
		return CategoryValidation
	default:
		return CategoryGeneric
	}
}
