package vetting

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxReportedScripts = 20

// Analyzer runs the full pipeline for one URL
type Analyzer struct {
	browser  Browser
	resolver *PrivacyResolver
	enricher *Enricher
	assessor *Assessor
	logger   *zap.Logger
}

// NewAnalyzer wires the pipeline stages together
func NewAnalyzer(browser Browser, resolver *PrivacyResolver, enricher *Enricher, assessor *Assessor, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		browser:  browser,
		resolver: resolver,
		enricher: enricher,
		assessor: assessor,
		logger:   logger,
	}
}

// Analyze captures the page, enriches it and produces a report. Only invalid
// input and capture failure are returned as errors.
func (a *Analyzer) Analyze(ctx context.Context, raw string) (*Report, error) {
	requestID := uuid.NewString()
	logger := a.logger.With(zap.String("request_id", requestID))

	target, err := NormalizeURL(raw)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger.Info("analysis started", zap.String("url", target))

	env, err := a.browser.Capture(ctx, target)
	if err != nil {
		logger.Warn("capture failed", zap.String("url", target), zap.Error(err))
		return nil, &NavigationError{URL: target, Err: err}
	}
	if env.FinalURL == "" {
		env.FinalURL = target
	}

	// Policy resolution and enrichment are independent
	var (
		privacy    PrivacyPolicy
		enrichment EnrichmentSignals
	)
	domain := hostname(env.FinalURL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		privacy = a.resolver.Resolve(gctx, env.FinalURL, env.HTML)
		return nil
	})
	g.Go(func() error {
		enrichment = a.enricher.Enrich(gctx, domain, env.FinalURL)
		return nil
	})
	_ = g.Wait()

	signals := ExtractSignals(env, privacy)
	heuristic := Heuristic(NewScoreInput(target, env, signals))

	model := a.assessor.Assess(ctx, AssessmentInput{
		SubmittedURL: target,
		FinalURL:     env.FinalURL,
		Whois:        enrichment.Whois,
		SafeBrowsing: enrichment.Blocklist(),
		PageRank:     enrichment.PageRank,
		Signals:      signals,
	})

	risk := Merge(heuristic, model)

	logger.Info("analysis complete",
		zap.String("final_url", env.FinalURL),
		zap.Int("score", risk.Score),
		zap.String("tier", string(risk.Tier)),
		zap.Bool("model_verdict", model.Present()),
		zap.Duration("elapsed", time.Since(start)))

	return &Report{
		OK:               true,
		RequestID:        requestID,
		SubmittedURL:     target,
		FinalURL:         env.FinalURL,
		RedirectCount:    len(env.Redirects),
		Redirects:        nonNil(env.Redirects),
		ScreenshotBase64: base64.StdEncoding.EncodeToString(env.Screenshot),
		Signals:          signals,
		Privacy:          privacy,
		Scripts:          capScripts(env.Scripts),
		Risk:             risk,
		Whois:            enrichment.Whois,
		SafeBrowsing:     enrichment.Blocklist(),
		PageRank:         enrichment.PageRank,
	}, nil
}

func capScripts(scripts []string) []string {
	if len(scripts) > maxReportedScripts {
		scripts = scripts[:maxReportedScripts]
	}
	return nonNil(scripts)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
