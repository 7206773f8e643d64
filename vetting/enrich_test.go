package vetting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubWhois struct {
	got string
	rec *WhoisRecord
	err error
}

func (s *stubWhois) LookupWhois(_ context.Context, domain string) (*WhoisRecord, error) {
	s.got = domain
	return s.rec, s.err
}

type stubPageRank struct {
	got string
	rec *PageRankRecord
}

func (s *stubPageRank) LookupPageRank(_ context.Context, domain string) (*PageRankRecord, error) {
	s.got = domain
	return s.rec, nil
}

type panickingSafeBrowsing struct{}

func (panickingSafeBrowsing) LookupSafeBrowsing(context.Context, string) (*SafeBrowsingRecord, error) {
	panic("connection reset")
}

type slowSafeBrowsing struct{}

func (slowSafeBrowsing) LookupSafeBrowsing(context.Context, string) (*SafeBrowsingRecord, error) {
	time.Sleep(2 * time.Second)
	return &SafeBrowsingRecord{IsFlagged: true}, nil
}

type flaggingSafeBrowsing struct{}

func (flaggingSafeBrowsing) LookupSafeBrowsing(context.Context, string) (*SafeBrowsingRecord, error) {
	return &SafeBrowsingRecord{IsFlagged: true, ThreatTypes: []string{"MALWARE"}}, nil
}

func TestEnrichBlocklistFailureIsIsolated(t *testing.T) {
	age := 12.5
	rank := 4.2
	w := &stubWhois{rec: &WhoisRecord{DomainName: "example.co.uk", DomainAgeYears: &age}}
	pr := &stubPageRank{rec: &PageRankRecord{PageRankDecimal: &rank}}

	core, logs := observer.New(zap.WarnLevel)
	e := NewEnricher(w, pr, panickingSafeBrowsing{}, time.Second, zap.New(core))

	got := e.Enrich(context.Background(), "www.shop.example.co.uk", "https://www.shop.example.co.uk/")

	require.True(t, got.Whois.Available())
	assert.Equal(t, "example.co.uk", got.Whois.Record.DomainName)
	assert.Equal(t, "example.co.uk", w.got)

	require.True(t, got.PageRank.Available())
	assert.Equal(t, "shop.example.co.uk", pr.got)

	assert.False(t, got.SafeBrowsing.Available())
	assert.Equal(t, CleanSafeBrowsing(), got.Blocklist())

	require.Equal(t, 1, logs.FilterField(zap.String("provider", "safebrowsing")).Len())
}

func TestEnrichTimeoutDoesNotDelayOthers(t *testing.T) {
	pr := &stubPageRank{rec: &PageRankRecord{}}
	e := NewEnricher(nil, pr, slowSafeBrowsing{}, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	got := e.Enrich(context.Background(), "example.com", "https://example.com/")

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "timeout", got.SafeBrowsing.Reason)
	assert.True(t, got.PageRank.Available())
	assert.Equal(t, "not configured", got.Whois.Reason)
}

func TestEnrichMapsErrorsAndEmptyResults(t *testing.T) {
	w := &stubWhois{err: errors.New("registry refused")}
	pr := &stubPageRank{}
	e := NewEnricher(w, pr, flaggingSafeBrowsing{}, time.Second, nil)

	got := e.Enrich(context.Background(), "example.com", "https://example.com/")

	assert.Equal(t, "registry refused", got.Whois.Reason)
	assert.Equal(t, "no data", got.PageRank.Reason)
	assert.Equal(t, SafeBrowsingRecord{IsFlagged: true, ThreatTypes: []string{"MALWARE"}}, got.Blocklist())
}

func TestEnrichUnavailableMarshalsAsNull(t *testing.T) {
	got := NewEnricher(nil, nil, nil, 0, nil).Enrich(context.Background(), "example.com", "https://example.com/")

	b, err := got.Whois.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
	assert.Equal(t, CleanSafeBrowsing(), got.Blocklist())
}
