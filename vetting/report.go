package vetting

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/nao1215/markdown"
)

// WriteMarkdown renders a report as a Markdown document
func WriteMarkdown(w io.Writer, r *Report) error {
	md := markdown.NewMarkdown(w)

	md.H1("Link Safety Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Submitted URL", "`" + r.SubmittedURL + "`"},
			{"Final URL", "`" + r.FinalURL + "`"},
			{"Title", r.Signals.Title},
			{"Risk Score", strconv.Itoa(r.Risk.Score) + "/100"},
			{"Risk Tier", string(r.Risk.Tier)},
			{"Request ID", r.RequestID},
		},
	})
	md.PlainText("")

	switch r.Risk.Tier {
	case TierHigh:
		md.Cautionf("High risk: score %d/100. Avoid entering personal information on this site.", r.Risk.Score)
	case TierMedium:
		md.Warningf("Medium risk: score %d/100. Proceed with care.", r.Risk.Score)
	default:
		md.Tip("Low risk: no significant warning signs detected.")
	}
	md.PlainText("")

	md.H2("Reasons")
	md.PlainText("")
	if len(r.Risk.Reasons) == 0 {
		md.PlainText("No heuristic warnings.")
	} else {
		md.BulletList(r.Risk.Reasons...)
	}
	md.PlainText("")

	if r.Risk.Reasoning != nil && *r.Risk.Reasoning != "" {
		md.H2("Assessment")
		md.PlainText("")
		md.PlainText(*r.Risk.Reasoning)
		md.PlainText("")
	}

	md.H2("Signals")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Signal", "Value"},
		Rows: [][]string{
			{"SSL/TLS", yesNo(r.Signals.SSL)},
			{"Privacy policy", yesNo(r.Signals.HasPrivacyLink)},
			{"Login form", yesNo(r.Signals.HasLoginForm)},
			{"Third-party script origins", strconv.Itoa(r.Signals.ThirdPartyScriptsCount)},
			{"Redirects", strconv.Itoa(r.RedirectCount)},
			{"Safe Browsing", safeBrowsingText(r.SafeBrowsing)},
			{"Domain age", whoisAgeText(r.Whois)},
			{"PageRank", pageRankText(r.PageRank)},
		},
	})
	md.PlainText("")

	if len(r.Redirects) > 0 {
		md.H2("Redirect Chain")
		md.PlainText("")
		md.OrderedList(r.Redirects...)
		md.PlainText("")
	}

	if r.Privacy.Found() {
		md.H2("Privacy Policy")
		md.PlainText("")
		md.PlainText(*r.Privacy.Link)
		if r.Privacy.Snippet != nil {
			md.PlainText("")
			md.Blockquote(*r.Privacy.Snippet)
		}
		md.PlainText("")
	}

	return md.Build()
}

// WriteText renders a short terminal summary, tier colored unless disabled
func WriteText(w io.Writer, r *Report, noColor bool) error {
	tierColor := color.New(color.FgGreen, color.Bold)
	switch r.Risk.Tier {
	case TierHigh:
		tierColor = color.New(color.FgRed, color.Bold)
	case TierMedium:
		tierColor = color.New(color.FgYellow, color.Bold)
	}
	label := color.New(color.FgCyan)
	if noColor {
		tierColor.DisableColor()
		label.DisableColor()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", label.Sprint("URL:"), r.FinalURL)
	if r.FinalURL != r.SubmittedURL {
		fmt.Fprintf(&b, "%s %s\n", label.Sprint("Submitted:"), r.SubmittedURL)
	}
	fmt.Fprintf(&b, "%s %s\n", label.Sprint("Risk:"), tierColor.Sprintf("%s (%d/100)", r.Risk.Tier, r.Risk.Score))
	for _, reason := range r.Risk.Reasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}
	if r.Risk.Reasoning != nil && *r.Risk.Reasoning != "" {
		fmt.Fprintf(&b, "%s %s\n", label.Sprint("Assessment:"), *r.Risk.Reasoning)
	}
	fmt.Fprintf(&b, "%s %s\n", label.Sprint("Safe Browsing:"), safeBrowsingText(r.SafeBrowsing))
	fmt.Fprintf(&b, "%s %s\n", label.Sprint("Domain age:"), whoisAgeText(r.Whois))

	_, err := io.WriteString(w, b.String())
	return err
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func safeBrowsingText(s SafeBrowsingRecord) string {
	if !s.IsFlagged {
		return "not flagged"
	}
	return "flagged: " + strings.Join(s.ThreatTypes, ", ")
}

func whoisAgeText(l Lookup[WhoisRecord]) string {
	if !l.Available() || l.Record.DomainAgeYears == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*l.Record.DomainAgeYears, 'f', 1, 64) + " years"
}

func pageRankText(l Lookup[PageRankRecord]) string {
	if !l.Available() || l.Record.PageRankDecimal == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*l.Record.PageRankDecimal, 'f', 2, 64)
}
