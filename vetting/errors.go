package vetting

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned for empty or unparseable input
	ErrInvalidURL = errors.New("invalid url")

	// ErrNavigation matches any NavigationError
	ErrNavigation = errors.New("failed to load the url")

	// ErrModelOutput is returned when a completion cannot be turned into a verdict
	ErrModelOutput = errors.New("unusable model output")
)

// NavigationError reports that the target page could not be captured
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNavigation) match regardless of the cause
func (e *NavigationError) Is(target error) bool {
	return target == ErrNavigation
}
