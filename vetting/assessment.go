package vetting

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Completer turns a prompt into free text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AssessmentInput is what the model sees about a page
type AssessmentInput struct {
	SubmittedURL string
	FinalURL     string
	Whois        Lookup[WhoisRecord]
	SafeBrowsing SafeBrowsingRecord
	PageRank     Lookup[PageRankRecord]
	Signals      PageSignals
}

// Assessor asks a generative model for a risk verdict and validates it
type Assessor struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAssessor creates an assessor. A nil completer disables assessment.
func NewAssessor(completer Completer, timeout time.Duration, logger *zap.Logger) *Assessor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assessor{completer: completer, timeout: timeout, logger: logger}
}

// Assess returns an absent verdict on any failure
func (a *Assessor) Assess(ctx context.Context, in AssessmentInput) ModelVerdict {
	if a == nil || a.completer == nil {
		return ModelVerdict{}
	}

	prompt := BuildRiskPrompt(in, DefaultScoringThresholds())
	text, err := within(ctx, a.timeout, func(ctx context.Context) (string, error) {
		return a.completer.Complete(ctx, prompt)
	})
	if err != nil {
		a.logger.Warn("model assessment failed", zap.String("provider", "llm"), zap.Error(err))
		return ModelVerdict{}
	}
	a.logger.Debug("model raw response", zap.String("text", text))

	verdict, err := ParseModelVerdict(text)
	if err != nil {
		a.logger.Warn("model output rejected", zap.Error(err))
		return ModelVerdict{}
	}
	if verdict.TierRecomputed {
		a.logger.Debug("model tier recomputed from score",
			zap.Int("score", verdict.Score), zap.String("tier", string(verdict.Tier)))
	}
	return verdict
}

// BuildRiskPrompt renders the assessment prompt with the given tier bands
func BuildRiskPrompt(in AssessmentInput, t ScoringThresholds) string {
	threats := "None"
	if len(in.SafeBrowsing.ThreatTypes) > 0 {
		threats = strings.Join(in.SafeBrowsing.ThreatTypes, ", ")
	}

	return fmt.Sprintf(RiskAssessmentPrompt,
		in.SubmittedURL,
		in.FinalURL,
		indentedOrMissing(in.Whois),
		in.SafeBrowsing.IsFlagged,
		threats,
		indentedOrMissing(in.PageRank),
		in.Signals.SSL,
		in.Signals.HasLoginForm,
		in.Signals.ThirdPartyScriptsCount,
		in.Signals.HasPrivacyLink,
		t.MediumMin-1, t.MediumMin, t.HighMin-1, t.HighMin,
	)
}

func indentedOrMissing[T any](l Lookup[T]) string {
	if !l.Available() {
		return "Not available"
	}
	b, err := json.MarshalIndent(l.Record, "", "  ")
	if err != nil {
		return "Not available"
	}
	return string(b)
}

var (
	scoreObjectPattern = regexp.MustCompile(`(?s)\{[^{}]*"score"[^{}]*\}`)
	openFencePattern   = regexp.MustCompile("^```\\w*\\n?")
	closeFencePattern  = regexp.MustCompile("\\n?```$")
)

// ParseModelVerdict extracts and validates a verdict from a completion. The
// score must be an integer and is clamped to 0..100; the tier is kept only
// when it agrees with the clamped score.
func ParseModelVerdict(text string) (ModelVerdict, error) {
	payload := scoreObjectPattern.FindString(text)
	if payload == "" {
		payload = strings.TrimSpace(text)
		payload = openFencePattern.ReplaceAllString(payload, "")
		payload = closeFencePattern.ReplaceAllString(payload, "")
		payload = strings.TrimSpace(payload)
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return ModelVerdict{}, fmt.Errorf("%w: %v", ErrModelOutput, err)
	}

	score, err := parseScore(raw["score"])
	if err != nil {
		return ModelVerdict{}, err
	}
	score = clampScore(score)

	tier := TierForScore(score)
	stated, _ := raw["tier"].(string)
	parsed, ok := ParseTier(stated)
	recomputed := !ok || parsed != tier

	var reasoning string
	switch r := raw["reasoning"].(type) {
	case nil:
	case string:
		reasoning = strings.TrimSpace(r)
	default:
		reasoning = fmt.Sprint(r)
	}

	return ModelVerdict{
		Score:          score,
		Tier:           tier,
		Reasoning:      reasoning,
		TierRecomputed: recomputed,
		present:        true,
	}, nil
}

func parseScore(v any) (int, error) {
	switch s := v.(type) {
	case json.Number:
		if n, err := s.Int64(); err == nil {
			return int(n), nil
		}
		if f, err := s.Float64(); err == nil {
			return int(math.Max(-1, math.Min(f, maxScore+1))), nil
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	case nil:
		return 0, fmt.Errorf("%w: missing score", ErrModelOutput)
	}
	return 0, fmt.Errorf("%w: score %v is not an integer", ErrModelOutput, v)
}
