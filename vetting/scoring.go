package vetting

import (
	"fmt"
	"strings"
)

// ScoreInput is everything the heuristic rules look at, derived once
type ScoreInput struct {
	SSL               bool
	LoginForm         bool
	ThirdPartyOrigins int
	RedirectHops      int
	PrivacyFound      bool
	FinalHost         string
	InputHost         string
}

// NewScoreInput assembles rule input from a capture and its page signals
func NewScoreInput(submittedURL string, env *CaptureEnvelope, signals PageSignals) ScoreInput {
	return ScoreInput{
		SSL:               signals.SSL,
		LoginForm:         signals.HasLoginForm,
		ThirdPartyOrigins: signals.ThirdPartyScriptsCount,
		RedirectHops:      redirectHops(env),
		PrivacyFound:      signals.HasPrivacyLink,
		FinalHost:         hostname(env.FinalURL),
		InputHost:         hostname(submittedURL),
	}
}

// redirectHops counts the navigations that led away from a document. The
// recorded chain ends with the committed final document, which is not a hop.
func redirectHops(env *CaptureEnvelope) int {
	if len(env.Redirects) == 0 {
		return 0
	}
	return len(env.Redirects) - 1
}

// Rule returns a penalty and its reason, or 0 and "" when not triggered
type Rule func(ScoreInput) (int, string)

// Rules in reporting order
var Rules = []Rule{
	RuleNoTLS,
	RuleLoginForm,
	RuleThirdPartyScripts,
	RuleRedirectChain,
	RuleNoPrivacyPolicy,
	RuleDeepSubdomain,
	RuleSuspiciousTLD,
	RuleDomainMismatch,
}

// Heuristic sums the rule penalties, capped at 100
func Heuristic(in ScoreInput) HeuristicVerdict {
	return HeuristicWith(in, Rules, DefaultScoringThresholds())
}

// HeuristicWith evaluates an explicit rule list against explicit thresholds
func HeuristicWith(in ScoreInput, rules []Rule, thresholds ScoringThresholds) HeuristicVerdict {
	score := 0
	reasons := []string{}

	for _, rule := range rules {
		penalty, reason := rule(in)
		if penalty <= 0 {
			continue
		}
		score += penalty
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	score = clampScore(score)
	return HeuristicVerdict{
		Score:   score,
		Tier:    thresholds.Tier(score),
		Reasons: reasons,
	}
}

func RuleNoTLS(in ScoreInput) (int, string) {
	if in.SSL {
		return 0, ""
	}
	return weightNoTLS, "No SSL/TLS encryption"
}

func RuleLoginForm(in ScoreInput) (int, string) {
	if !in.LoginForm {
		return 0, ""
	}
	return weightLoginForm, "Login form detected"
}

func RuleThirdPartyScripts(in ScoreInput) (int, string) {
	switch n := in.ThirdPartyOrigins; {
	case n > 10:
		return weightManyThirdParty, fmt.Sprintf("High number of third-party scripts (%d)", n)
	case n > 5:
		return weightSomeThirdParty, fmt.Sprintf("Moderate third-party scripts (%d)", n)
	}
	return 0, ""
}

func RuleRedirectChain(in ScoreInput) (int, string) {
	switch n := in.RedirectHops; {
	case n > 3:
		return weightLongRedirectChain, fmt.Sprintf("Long redirect chain (%d hops)", n)
	case n >= 2:
		return weightShortRedirectChain, fmt.Sprintf("Redirect chain (%d hops)", n)
	}
	return 0, ""
}

func RuleNoPrivacyPolicy(in ScoreInput) (int, string) {
	if in.PrivacyFound {
		return 0, ""
	}
	return weightNoPrivacyPolicy, "No privacy policy found"
}

func RuleDeepSubdomain(in ScoreInput) (int, string) {
	if in.FinalHost == "" || len(strings.Split(in.FinalHost, ".")) <= 3 {
		return 0, ""
	}
	return weightDeepSubdomain, "Deeply nested subdomain"
}

func RuleSuspiciousTLD(in ScoreInput) (int, string) {
	if !hasSuspiciousTLD(in.FinalHost) {
		return 0, ""
	}
	return weightSuspiciousTLD, "Suspicious top-level domain"
}

// RuleDomainMismatch ignores a www. difference
func RuleDomainMismatch(in ScoreInput) (int, string) {
	if in.FinalHost == "" || in.InputHost == "" || StripWWW(in.FinalHost) == StripWWW(in.InputHost) {
		return 0, ""
	}
	return weightDomainMismatch, fmt.Sprintf("Final domain (%s) differs from input (%s)", in.FinalHost, in.InputHost)
}
