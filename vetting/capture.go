package vetting

import "context"

// Browser renders a page once and reports what it saw. Implementations must
// bound navigation time and return an error rather than hang.
type Browser interface {
	Capture(ctx context.Context, url string) (*CaptureEnvelope, error)
	PageOpener
}

// PageOpener hands out secondary browsing contexts
type PageOpener interface {
	NewPage(ctx context.Context) (Page, error)
}

// Page is a single secondary browsing context. Close must always be called.
type Page interface {
	Navigate(ctx context.Context, url string) error
	HTML(ctx context.Context) (string, error)
	Close() error
}
