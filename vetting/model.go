package vetting

import (
	"encoding/json"
	"strings"
)

// CaptureEnvelope is everything observed while rendering the target page once.
// Redirects lists every main-frame URL in navigation order, ending with the
// committed final document.
type CaptureEnvelope struct {
	FinalURL   string
	Redirects  []string
	HTML       string
	Scripts    []string
	Screenshot []byte
}

// PrivacyPolicy is the resolved privacy policy link and a bounded text snippet.
// A nil Link means no policy was found.
type PrivacyPolicy struct {
	Link    *string `json:"link"`
	Snippet *string `json:"snippet"`
}

// Found reports whether a policy link was resolved
func (p PrivacyPolicy) Found() bool {
	return p.Link != nil && *p.Link != ""
}

// WhoisRecord is the user-facing subset of a registration record
type WhoisRecord struct {
	DomainName          string   `json:"domainName"`
	Registrar           string   `json:"registrar"`
	DomainAgeYears      *float64 `json:"domainAgeYears"`
	DaysSinceLastUpdate *int     `json:"daysSinceLastUpdate"`
	TLD                 string   `json:"tld"`
	PrivateRegistration bool     `json:"privateRegistration"`
}

// PageRankRecord passes through the domain authority values unchanged
type PageRankRecord struct {
	PageRankDecimal *float64 `json:"pageRankDecimal"`
	PageRankInteger *int     `json:"pageRankInteger"`
	Rank            *string  `json:"rank"`
}

// SafeBrowsingRecord is the blocklist verdict for the final URL
type SafeBrowsingRecord struct {
	IsFlagged   bool     `json:"is_flagged"`
	ThreatTypes []string `json:"threat_types"`
}

// CleanSafeBrowsing is the record used when the blocklist has nothing to say
func CleanSafeBrowsing() SafeBrowsingRecord {
	return SafeBrowsingRecord{IsFlagged: false, ThreatTypes: []string{}}
}

// Lookup is the outcome of a single provider call: either a record or the
// reason it is unavailable. The zero value is unavailable with no reason.
type Lookup[T any] struct {
	Record *T
	Reason string
}

// Ok wraps a record returned by a provider
func Ok[T any](rec T) Lookup[T] {
	return Lookup[T]{Record: &rec}
}

// Unavailable marks a provider result as absent
func Unavailable[T any](reason string) Lookup[T] {
	return Lookup[T]{Reason: reason}
}

// Available reports whether the provider returned a record
func (l Lookup[T]) Available() bool {
	return l.Record != nil
}

// MarshalJSON renders the record, or null when unavailable
func (l Lookup[T]) MarshalJSON() ([]byte, error) {
	if l.Record == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.Record)
}

// EnrichmentSignals holds the independent provider results for one request
type EnrichmentSignals struct {
	Whois        Lookup[WhoisRecord]
	PageRank     Lookup[PageRankRecord]
	SafeBrowsing Lookup[SafeBrowsingRecord]
}

// Blocklist never returns absent data: an unavailable blocklist reads as not
// flagged.
func (s EnrichmentSignals) Blocklist() SafeBrowsingRecord {
	if s.SafeBrowsing.Record == nil {
		return CleanSafeBrowsing()
	}
	rec := *s.SafeBrowsing.Record
	if rec.ThreatTypes == nil {
		rec.ThreatTypes = []string{}
	}
	return rec
}

// PageSignals are the observable page facts shown to the user and the model
type PageSignals struct {
	Title                  string `json:"title"`
	SSL                    bool   `json:"ssl"`
	HasPrivacyLink         bool   `json:"hasPrivacyLink"`
	HasLoginForm           bool   `json:"hasLoginForm"`
	ThirdPartyScriptsCount int    `json:"thirdPartyScriptsCount"`
}

// Tier is a coarse bucketing of the risk score
type Tier string

const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

// ParseTier recognizes one of the three tiers, case-insensitively
func ParseTier(s string) (Tier, bool) {
	switch Tier(strings.ToUpper(strings.TrimSpace(s))) {
	case TierLow:
		return TierLow, true
	case TierMedium:
		return TierMedium, true
	case TierHigh:
		return TierHigh, true
	}
	return "", false
}

// HeuristicVerdict is the locally computed, always available verdict
type HeuristicVerdict struct {
	Score   int
	Tier    Tier
	Reasons []string
}

// ModelVerdict is the validated judgment of the generative model. Its fields
// are either all meaningful (Present) or the verdict is absent.
type ModelVerdict struct {
	Score     int
	Tier      Tier
	Reasoning string
	// TierRecomputed is set when the model's own tier was missing, unknown
	// or inconsistent with its score
	TierRecomputed bool
	present        bool
}

// Present reports whether the model produced a trustworthy verdict
func (m ModelVerdict) Present() bool {
	return m.present
}

// FinalVerdict is the externally visible risk result
type FinalVerdict struct {
	Score     int      `json:"score"`
	Tier      Tier     `json:"tier"`
	Reasons   []string `json:"reasons"`
	Reasoning *string  `json:"reasoning"`
}

// Report is the full user-facing analysis result
type Report struct {
	OK               bool                   `json:"ok"`
	RequestID        string                 `json:"requestId"`
	SubmittedURL     string                 `json:"submittedUrl"`
	FinalURL         string                 `json:"finalUrl"`
	RedirectCount    int                    `json:"redirectCount"`
	Redirects        []string               `json:"redirects"`
	ScreenshotBase64 string                 `json:"screenshotBase64"`
	Signals          PageSignals            `json:"signals"`
	Privacy          PrivacyPolicy          `json:"privacy"`
	Scripts          []string               `json:"scripts"`
	Risk             FinalVerdict           `json:"risk"`
	Whois            Lookup[WhoisRecord]    `json:"whois"`
	SafeBrowsing     SafeBrowsingRecord     `json:"safeBrowsing"`
	PageRank         Lookup[PageRankRecord] `json:"pageRank"`
}
