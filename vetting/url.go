package vetting

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// leadingScheme matches an explicit scheme at the start of the input only, so
// URLs carried in a query string do not count
var leadingScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// NormalizeURL coerces user input into an absolute URL. A missing scheme
// defaults to https.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	if !leadingScheme.MatchString(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return u.String(), nil
}

// hostname returns the lower-cased host without port, or "" if raw does not parse
func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// origin returns scheme://host[:port] in lower case, without the scheme's
// default port
func origin(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case scheme == "https" && u.Port() == "443":
		host = strings.TrimSuffix(host, ":443")
	case scheme == "http" && u.Port() == "80":
		host = strings.TrimSuffix(host, ":80")
	}
	return scheme + "://" + host
}

// StripWWW removes a single leading "www." label
func StripWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// RegistrableDomain returns the eTLD+1 for host, falling back to host itself
// for IPs, single labels and unknown suffixes.
func RegistrableDomain(host string) string {
	host = StripWWW(host)
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}
