package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"

	"linkscout/vetting"
)

const whoisXMLBaseURL = "https://www.whoisxmlapi.com/whoisserver/WhoisService"

// Date layouts seen across registries and the WhoisXML API
var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// NewWhois picks a WHOIS source. "auto" prefers the WhoisXML API when a key
// is configured and falls back to querying registries directly.
func NewWhois(source, apiKey string, timeout time.Duration) (vetting.WhoisLookup, error) {
	switch strings.ToLower(source) {
	case "", "auto":
		if apiKey != "" {
			return NewWhoisXML(apiKey, timeout), nil
		}
		return NewRegistry(timeout), nil
	case "whoisxml":
		if apiKey == "" {
			return nil, fmt.Errorf("whoisxml source: %w", ErrNotConfigured)
		}
		return NewWhoisXML(apiKey, timeout), nil
	case "registry":
		return NewRegistry(timeout), nil
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown whois source %q", source)
}

// registration is the subset of a WHOIS answer the record is built from
type registration struct {
	domain       string
	registrar    string
	created      string
	updated      string
	organization string
	name         string
	email        string
}

func (r registration) record(now time.Time) *vetting.WhoisRecord {
	rec := &vetting.WhoisRecord{
		DomainName:          r.domain,
		Registrar:           r.registrar,
		TLD:                 tldOf(r.domain),
		PrivateRegistration: isPrivateRegistration(r.organization, r.name, r.email),
	}
	if rec.Registrar == "" {
		rec.Registrar = "Unknown"
	}

	if created, ok := parseWhoisDate(r.created); ok {
		days := math.Floor(now.Sub(created).Hours() / 24)
		years := math.Round(days/365.25*10) / 10
		rec.DomainAgeYears = &years
	}
	if updated, ok := parseWhoisDate(r.updated); ok {
		days := int(now.Sub(updated).Hours() / 24)
		rec.DaysSinceLastUpdate = &days
	}
	return rec
}

func parseWhoisDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range whoisDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isPrivateRegistration flags privacy and proxy services and redacted contacts
func isPrivateRegistration(fields ...string) bool {
	for _, f := range fields {
		f = strings.ToLower(f)
		for _, marker := range []string{"privacy", "proxy", "redacted"} {
			if strings.Contains(f, marker) {
				return true
			}
		}
	}
	return false
}

func tldOf(domain string) string {
	i := strings.LastIndex(domain, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(domain[i+1:])
}

// Registry queries WHOIS servers directly over port 43
type Registry struct {
	fetch func(domain string) (string, error)
	now   func() time.Time
}

// NewRegistry creates a direct WHOIS client
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := whois.NewClient().SetTimeout(timeout)
	return &Registry{
		fetch: func(domain string) (string, error) { return client.Whois(domain) },
		now:   time.Now,
	}
}

// LookupWhois does not observe ctx; callers bound it externally
func (r *Registry) LookupWhois(_ context.Context, domain string) (*vetting.WhoisRecord, error) {
	raw, err := r.fetch(domain)
	if err != nil {
		return nil, fmt.Errorf("whois %s: %w", domain, err)
	}

	info, err := parser.Parse(raw)
	if err != nil {
		if errors.Is(err, parser.ErrNotFoundDomain) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("parse whois %s: %w", domain, err)
	}
	if info.Domain == nil {
		return nil, ErrNoData
	}

	return registrationFromParsed(domain, info).record(r.now()), nil
}

func registrationFromParsed(domain string, info parser.WhoisInfo) registration {
	reg := registration{
		domain:  domain,
		created: info.Domain.CreatedDate,
		updated: info.Domain.UpdatedDate,
	}
	if info.Domain.Domain != "" {
		reg.domain = info.Domain.Domain
	}
	if info.Registrar != nil {
		reg.registrar = info.Registrar.Name
	}
	if info.Registrant != nil {
		reg.organization = info.Registrant.Organization
		reg.name = info.Registrant.Name
		reg.email = info.Registrant.Email
	}
	return reg
}

// WhoisXML uses the WhoisXML API JSON service
type WhoisXML struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewWhoisXML creates a WhoisXML API client
func NewWhoisXML(apiKey string, timeout time.Duration) *WhoisXML {
	return &WhoisXML{
		apiKey:  apiKey,
		baseURL: whoisXMLBaseURL,
		client:  newHTTPClient(timeout),
		now:     time.Now,
	}
}

type whoisXMLResponse struct {
	WhoisRecord *struct {
		DomainName    string `json:"domainName"`
		RegistrarName string `json:"registrarName"`
		CreatedDate   string `json:"createdDate"`
		UpdatedDate   string `json:"updatedDate"`
		ContactEmail  string `json:"contactEmail"`
		Registrant    struct {
			Organization string `json:"organization"`
			Name         string `json:"name"`
		} `json:"registrant"`
		RegistryData struct {
			CreatedDate string `json:"createdDate"`
			UpdatedDate string `json:"updatedDate"`
		} `json:"registryData"`
	} `json:"WhoisRecord"`
}

func (w *WhoisXML) LookupWhois(ctx context.Context, domain string) (*vetting.WhoisRecord, error) {
	if w.apiKey == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("apiKey", w.apiKey)
	q.Set("domainName", domain)
	q.Set("outputFormat", "JSON")

	req, err := http.NewRequest(http.MethodGet, w.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var data whoisXMLResponse
	if err := doJSON(ctx, w.client, req, &data); err != nil {
		return nil, fmt.Errorf("whoisxml %s: %w", domain, err)
	}
	rec := data.WhoisRecord
	if rec == nil {
		return nil, ErrNoData
	}

	reg := registration{
		domain:       rec.DomainName,
		registrar:    rec.RegistrarName,
		created:      firstNonEmpty(rec.CreatedDate, rec.RegistryData.CreatedDate),
		updated:      firstNonEmpty(rec.UpdatedDate, rec.RegistryData.UpdatedDate),
		organization: rec.Registrant.Organization,
		name:         rec.Registrant.Name,
		email:        rec.ContactEmail,
	}
	if reg.domain == "" {
		reg.domain = domain
	}
	return reg.record(w.now()), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
