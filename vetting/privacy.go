package vetting

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Legal phrases that identify the authoritative policy document
var exactPolicyPhrases = map[string]bool{
	"privacy policy":    true,
	"privacy notice":    true,
	"privacy statement": true,
	"legal notice":      true,
}

// Product and catalog pages that mention privacy in marketing copy
var productPathPattern = regexp.MustCompile(`(?i)/(product|products|item|items|dp|catalog)(/|$)`)

type candidateLink struct {
	href string
	text string
}

// PrivacyResolver locates a page's privacy policy and fetches a snippet of it
type PrivacyResolver struct {
	pages         PageOpener
	fetchTimeout  time.Duration
	snippetLength int
	maxTextLength int
	logger        *zap.Logger
}

// NewPrivacyResolver creates a resolver. pages may be nil, in which case
// links are resolved but never fetched.
func NewPrivacyResolver(pages PageOpener, fetchTimeout time.Duration, snippetLength, maxTextLength int, logger *zap.Logger) *PrivacyResolver {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	if snippetLength <= 0 {
		snippetLength = 500
	}
	if maxTextLength <= 0 {
		maxTextLength = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrivacyResolver{
		pages:         pages,
		fetchTimeout:  fetchTimeout,
		snippetLength: snippetLength,
		maxTextLength: maxTextLength,
		logger:        logger,
	}
}

// Resolve never fails: a page without a policy yields an empty result, and a
// policy that cannot be fetched yields a link without a snippet.
func (r *PrivacyResolver) Resolve(ctx context.Context, baseURL, markup string) PrivacyPolicy {
	candidate, ok := r.selectCandidate(markup)
	if !ok {
		r.logger.Debug("no privacy policy link found")
		return PrivacyPolicy{}
	}

	link := resolveHref(baseURL, candidate.href)
	result := PrivacyPolicy{Link: &link}

	text, err := r.fetchText(ctx, link)
	if err != nil {
		r.logger.Warn("privacy policy fetch failed", zap.String("link", link), zap.Error(err))
		return result
	}
	if text != "" {
		snippet := truncateRunes(text, r.snippetLength)
		result.Snippet = &snippet
	}
	return result
}

// selectCandidate applies the exact-then-partial ranking. An exact legal
// phrase wins immediately; otherwise the first partial match is kept.
func (r *PrivacyResolver) selectCandidate(markup string) (candidateLink, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return candidateLink{}, false
	}

	var partial *candidateLink
	var exact *candidateLink

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		c, ok := r.candidate(s)
		if !ok {
			return true
		}

		folded := foldText(c.text)
		if exactPolicyPhrases[folded] {
			exact = &c
			return false
		}
		if partial == nil && strings.Contains(folded, "privacy") && !strings.Contains(folded, "settings") {
			partial = &c
		}
		return true
	})

	switch {
	case exact != nil:
		return *exact, true
	case partial != nil:
		return *partial, true
	}
	return candidateLink{}, false
}

// candidate filters an anchor down to a policy candidate
func (r *PrivacyResolver) candidate(s *goquery.Selection) (candidateLink, bool) {
	href := strings.TrimSpace(s.AttrOr("href", ""))
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return candidateLink{}, false
	}

	text := collapseSpace(s.Text())
	if text == "" {
		return candidateLink{}, false
	}

	if productPathPattern.MatchString(href) || utf8.RuneCountInString(text) > r.maxTextLength {
		return candidateLink{}, false
	}

	return candidateLink{href: href, text: text}, true
}

// fetchText loads link in a fresh page and returns its main visible text
func (r *PrivacyResolver) fetchText(ctx context.Context, link string) (string, error) {
	if r.pages == nil {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	page, err := r.pages.NewPage(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			r.logger.Debug("closing policy page", zap.Error(cerr))
		}
	}()

	if err := page.Navigate(ctx, link); err != nil {
		return "", err
	}

	markup, err := page.HTML(ctx)
	if err != nil {
		return "", err
	}

	return mainText(markup), nil
}

// mainText prefers the main content region and falls back to the body
func mainText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template").Remove()

	region := doc.Find("main, article, [role=main]").First()
	if region.Length() == 0 {
		region = doc.Find("body")
	}
	return collapseSpace(region.Text())
}

func resolveHref(baseURL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func foldText(s string) string {
	return cases.Fold().String(s)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
