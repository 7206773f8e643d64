package vetting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WhoisLookup fetches the registration record for a registrable domain
type WhoisLookup interface {
	LookupWhois(ctx context.Context, domain string) (*WhoisRecord, error)
}

// PageRankLookup fetches the authority rank for a domain
type PageRankLookup interface {
	LookupPageRank(ctx context.Context, domain string) (*PageRankRecord, error)
}

// SafeBrowsingLookup checks a URL against a malicious-URL blocklist
type SafeBrowsingLookup interface {
	LookupSafeBrowsing(ctx context.Context, url string) (*SafeBrowsingRecord, error)
}

// Enricher fans out to the independent providers. A nil provider is treated
// as not configured.
type Enricher struct {
	whois        WhoisLookup
	pageRank     PageRankLookup
	safeBrowsing SafeBrowsingLookup
	timeout      time.Duration
	logger       *zap.Logger
}

// NewEnricher creates an enricher that bounds every provider call by timeout
func NewEnricher(whois WhoisLookup, pageRank PageRankLookup, safeBrowsing SafeBrowsingLookup, timeout time.Duration, logger *zap.Logger) *Enricher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		whois:        whois,
		pageRank:     pageRank,
		safeBrowsing: safeBrowsing,
		timeout:      timeout,
		logger:       logger,
	}
}

// Enrich queries all providers concurrently. It never fails; each provider
// degrades to Unavailable on its own.
func (e *Enricher) Enrich(ctx context.Context, domain, finalURL string) EnrichmentSignals {
	var out EnrichmentSignals
	domain = StripWWW(domain)

	g, ctx := errgroup.WithContext(ctx)

	// WHOIS
	g.Go(func() error {
		if e.whois == nil {
			out.Whois = notConfigured[WhoisRecord](e, "whois")
			return nil
		}
		out.Whois = runLookup(ctx, e, "whois", func(ctx context.Context) (*WhoisRecord, error) {
			return e.whois.LookupWhois(ctx, RegistrableDomain(domain))
		})
		return nil
	})

	// PageRank
	g.Go(func() error {
		if e.pageRank == nil {
			out.PageRank = notConfigured[PageRankRecord](e, "pagerank")
			return nil
		}
		out.PageRank = runLookup(ctx, e, "pagerank", func(ctx context.Context) (*PageRankRecord, error) {
			return e.pageRank.LookupPageRank(ctx, domain)
		})
		return nil
	})

	// Safe Browsing
	g.Go(func() error {
		if e.safeBrowsing == nil {
			out.SafeBrowsing = notConfigured[SafeBrowsingRecord](e, "safebrowsing")
			return nil
		}
		out.SafeBrowsing = runLookup(ctx, e, "safebrowsing", func(ctx context.Context) (*SafeBrowsingRecord, error) {
			return e.safeBrowsing.LookupSafeBrowsing(ctx, finalURL)
		})
		return nil
	})

	_ = g.Wait()
	return out
}

const (
	reasonNotConfigured = "not configured"
	reasonTimeout       = "timeout"
	reasonNoData        = "no data"
)

func notConfigured[T any](e *Enricher, provider string) Lookup[T] {
	e.logUnavailable(provider, reasonNotConfigured, nil)
	return Unavailable[T](reasonNotConfigured)
}

func (e *Enricher) logUnavailable(provider, reason string, err error) {
	fields := []zap.Field{zap.String("provider", provider), zap.String("reason", reason)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if reason == reasonNotConfigured {
		e.logger.Debug("provider unavailable", fields...)
		return
	}
	e.logger.Warn("provider unavailable", fields...)
}

// runLookup bounds a single provider call and maps every failure to Unavailable
func runLookup[T any](ctx context.Context, e *Enricher, provider string, fn func(context.Context) (*T, error)) Lookup[T] {
	start := time.Now()
	rec, err := within(ctx, e.timeout, fn)

	switch {
	case err != nil:
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = reasonTimeout
		}
		e.logUnavailable(provider, reason, err)
		return Unavailable[T](reason)
	case rec == nil:
		e.logUnavailable(provider, reasonNoData, nil)
		return Unavailable[T](reasonNoData)
	}

	e.logger.Debug("provider lookup complete",
		zap.String("provider", provider),
		zap.Duration("elapsed", time.Since(start)))
	return Ok(*rec)
}

// within runs fn with a deadline and stops waiting once it passes, even if fn
// ignores its context. A panic in fn is returned as an error.
func within[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				ch <- result{val: zero, err: fmt.Errorf("panic: %v", r)}
			}
		}()
		val, err := fn(ctx)
		ch <- result{val: val, err: err}
	}()

	select {
	case res := <-ch:
		return res.val, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
