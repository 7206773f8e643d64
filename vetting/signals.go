package vetting

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const maxTitleLength = 200

// ExtractSignals derives the user-facing page facts from a capture
func ExtractSignals(env *CaptureEnvelope, privacy PrivacyPolicy) PageSignals {
	return PageSignals{
		Title:                  pageTitle(env.HTML),
		SSL:                    isSecure(env.FinalURL),
		HasPrivacyLink:         privacy.Found(),
		HasLoginForm:           hasLoginIndicator(env.HTML),
		ThirdPartyScriptsCount: countThirdPartyOrigins(env.FinalURL, env.Scripts),
	}
}

func isSecure(finalURL string) bool {
	u, err := url.Parse(finalURL)
	return err == nil && strings.EqualFold(u.Scheme, "https")
}

func pageTitle(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	return truncateRunes(collapseSpace(doc.Find("title").First().Text()), maxTitleLength)
}

// hasLoginIndicator looks for a password input, then for login wording
func hasLoginIndicator(markup string) bool {
	if hasPasswordInput(markup) {
		return true
	}
	lower := strings.ToLower(markup)
	return strings.Contains(lower, "login") || strings.Contains(lower, "sign in")
}

func hasPasswordInput(markup string) bool {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return false
	}

	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "input" && strings.EqualFold(getAttr(n, "type"), "password") {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(doc)
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// countThirdPartyOrigins counts distinct script origins other than the
// final page's. Relative sources resolve to the page origin.
func countThirdPartyOrigins(finalURL string, scripts []string) int {
	base, err := url.Parse(finalURL)
	if err != nil {
		return 0
	}
	own := origin(base)

	seen := make(map[string]struct{})
	for _, src := range scripts {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}
		u := base.ResolveReference(ref)
		if u.Host == "" {
			continue
		}
		if o := origin(u); o != own {
			seen[o] = struct{}{}
		}
	}
	return len(seen)
}
