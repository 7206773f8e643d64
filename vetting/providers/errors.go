package providers

import "errors"

var (
	// ErrNotConfigured is returned when a provider has no credentials
	ErrNotConfigured = errors.New("not configured")

	// ErrNoData is returned when the provider answered but had nothing usable
	ErrNoData = errors.New("no data")
)
