package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	parser "github.com/likexian/whois-parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRegistrationRecord(t *testing.T) {
	reg := registration{
		domain:       "example.com",
		registrar:    "Example Registrar, Inc.",
		created:      "2015-01-01T00:00:00Z",
		updated:      "2024-12-22",
		organization: "Domains By Proxy, LLC",
	}

	rec := reg.record(fixedNow)

	require.NotNil(t, rec.DomainAgeYears)
	assert.Equal(t, 10.0, *rec.DomainAgeYears)
	require.NotNil(t, rec.DaysSinceLastUpdate)
	assert.Equal(t, 10, *rec.DaysSinceLastUpdate)
	assert.Equal(t, "com", rec.TLD)
	assert.True(t, rec.PrivateRegistration)
}

func TestRegistrationRecordMissingFields(t *testing.T) {
	rec := registration{domain: "example.org", created: "sometime in 1999"}.record(fixedNow)

	assert.Nil(t, rec.DomainAgeYears)
	assert.Nil(t, rec.DaysSinceLastUpdate)
	assert.Equal(t, "Unknown", rec.Registrar)
	assert.False(t, rec.PrivateRegistration)
}

func TestDomainAgeRounding(t *testing.T) {
	// 200 days is 0.5476 years
	created := fixedNow.AddDate(0, 0, -200).Format("2006-01-02")
	rec := registration{domain: "new.test", created: created}.record(fixedNow)

	require.NotNil(t, rec.DomainAgeYears)
	assert.Equal(t, 0.5, *rec.DomainAgeYears)
}

func TestIsPrivateRegistration(t *testing.T) {
	assert.True(t, isPrivateRegistration("", "REDACTED FOR PRIVACY", ""))
	assert.True(t, isPrivateRegistration("", "", "abc@privacyguardian.org"))
	assert.True(t, isPrivateRegistration("WhoisProxy Ltd", "", ""))
	assert.False(t, isPrivateRegistration("Acme Corp", "Jane Doe", "jane@acme.test"))
}

func TestRegistryLookup(t *testing.T) {
	r := &Registry{
		fetch: func(string) (string, error) { return "", errors.New("connection refused") },
		now:   func() time.Time { return fixedNow },
	}
	_, err := r.LookupWhois(context.Background(), "example.com")
	assert.Error(t, err)
}

func TestRegistrationFromParsed(t *testing.T) {
	info := parser.WhoisInfo{
		Domain:     &parser.Domain{Domain: "example.net", CreatedDate: "2020-01-01", UpdatedDate: "2024-06-01"},
		Registrar:  &parser.Contact{Name: "NameCheap, Inc."},
		Registrant: &parser.Contact{Organization: "Privacy service provided by Withheld for Privacy ehf"},
	}

	rec := registrationFromParsed("www.example.net", info).record(fixedNow)

	assert.Equal(t, "example.net", rec.DomainName)
	assert.Equal(t, "NameCheap, Inc.", rec.Registrar)
	assert.Equal(t, "net", rec.TLD)
	assert.True(t, rec.PrivateRegistration)
	require.NotNil(t, rec.DomainAgeYears)
	assert.Equal(t, 5.0, *rec.DomainAgeYears)
}

func TestWhoisXMLLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "example.com", r.URL.Query().Get("domainName"))
		assert.Equal(t, "JSON", r.URL.Query().Get("outputFormat"))
		_, _ = w.Write([]byte(`{"WhoisRecord": {
			"domainName": "example.com",
			"registrarName": "RESERVED-Internet Assigned Numbers Authority",
			"registrant": {"organization": "Internet Assigned Numbers Authority"},
			"contactEmail": "",
			"registryData": {"createdDate": "1995-08-14T04:00:00Z", "updatedDate": "2024-08-14T07:01:34+0000"}
		}}`))
	}))
	defer srv.Close()

	w := NewWhoisXML("key-1", time.Second)
	w.baseURL = srv.URL
	w.now = func() time.Time { return fixedNow }

	rec, err := w.LookupWhois(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", rec.DomainName)
	require.NotNil(t, rec.DomainAgeYears)
	assert.Equal(t, 29.4, *rec.DomainAgeYears)
	require.NotNil(t, rec.DaysSinceLastUpdate)
	assert.Equal(t, 139, *rec.DaysSinceLastUpdate)
	assert.False(t, rec.PrivateRegistration)
}

func TestWhoisXMLFailures(t *testing.T) {
	_, err := NewWhoisXML("", time.Second).LookupWhois(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("domainName") {
		case "empty.test":
			_, _ = w.Write([]byte(`{"ErrorMessage": {"msg": "no record"}}`))
		case "broken.test":
			_, _ = w.Write([]byte(`{"WhoisRecord": `))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	w := NewWhoisXML("k", time.Second)
	w.baseURL = srv.URL

	_, err = w.LookupWhois(context.Background(), "empty.test")
	assert.ErrorIs(t, err, ErrNoData)
	_, err = w.LookupWhois(context.Background(), "broken.test")
	assert.Error(t, err)
	_, err = w.LookupWhois(context.Background(), "denied.test")
	assert.ErrorContains(t, err, "403")
}

func TestNewWhoisSource(t *testing.T) {
	l, err := NewWhois("auto", "", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &Registry{}, l)

	l, err = NewWhois("auto", "k", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &WhoisXML{}, l)

	_, err = NewWhois("whoisxml", "", time.Second)
	assert.ErrorIs(t, err, ErrNotConfigured)

	l, err = NewWhois("none", "", time.Second)
	require.NoError(t, err)
	assert.Nil(t, l)

	_, err = NewWhois("carrier-pigeon", "", time.Second)
	assert.Error(t, err)
}

func TestPageRankLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "opr-key", r.Header.Get("API-OPR"))
		switch r.URL.Query().Get("domains[]") {
		case "example.com":
			_, _ = w.Write([]byte(`{"status_code": 200, "response": [
				{"status_code": 200, "page_rank_integer": 7, "page_rank_decimal": 6.53, "rank": "1042", "domain": "example.com"}
			]}`))
		case "numeric.test":
			_, _ = w.Write([]byte(`{"response": [{"page_rank_integer": 0, "page_rank_decimal": 0, "rank": 99}]}`))
		default:
			_, _ = w.Write([]byte(`{"response": []}`))
		}
	}))
	defer srv.Close()

	p := NewPageRank("opr-key", time.Second)
	p.baseURL = srv.URL

	rec, err := p.LookupPageRank(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, 6.53, *rec.PageRankDecimal)
	assert.Equal(t, 7, *rec.PageRankInteger)
	assert.Equal(t, "1042", *rec.Rank)

	rec, err = p.LookupPageRank(context.Background(), "numeric.test")
	require.NoError(t, err)
	require.NotNil(t, rec.PageRankDecimal)
	assert.Equal(t, 0.0, *rec.PageRankDecimal)
	assert.Equal(t, "99", *rec.Rank)

	_, err = p.LookupPageRank(context.Background(), "unknown.test")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = NewPageRank("", time.Second).LookupPageRank(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSafeBrowsingLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "sb-key", r.URL.Query().Get("key"))

		var req safeBrowsingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "linkscout", req.Client.ClientID)
		assert.Len(t, req.ThreatInfo.ThreatTypes, 4)

		if req.ThreatInfo.ThreatEntries[0].URL == "https://bad.test/" {
			_, _ = w.Write([]byte(`{"matches": [
				{"threatType": "SOCIAL_ENGINEERING"},
				{"threatType": "MALWARE"},
				{"threatType": "SOCIAL_ENGINEERING"}
			]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := NewSafeBrowsing("sb-key", time.Second)
	s.baseURL = srv.URL

	rec, err := s.LookupSafeBrowsing(context.Background(), "https://bad.test/")
	require.NoError(t, err)
	assert.True(t, rec.IsFlagged)
	assert.Equal(t, []string{"MALWARE", "SOCIAL_ENGINEERING"}, rec.ThreatTypes)

	rec, err = s.LookupSafeBrowsing(context.Background(), "https://good.test/")
	require.NoError(t, err)
	assert.False(t, rec.IsFlagged)
	assert.NotNil(t, rec.ThreatTypes)
	assert.Empty(t, rec.ThreatTypes)
}

func TestSafeBrowsingServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewSafeBrowsing("k", time.Second)
	s.baseURL = srv.URL

	_, err := s.LookupSafeBrowsing(context.Background(), "https://x.test/")
	assert.Error(t, err)
}
