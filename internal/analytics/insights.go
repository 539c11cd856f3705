package analytics

import (
	"net/url"
	"slices"
	"strings"

	"github.com/kalambet/semplan/internal/plan"
)

// MaxInsightTokens caps the number of tokens returned by Insights.
const MaxInsightTokens = 20

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true,
	"best": true, "near": true, "me": true, "vs": true,
	"how": true, "to": true, "in": true, "of": true,
}

var genericLabels = map[string]bool{"www": true, "com": true, "net": true, "org": true}

// TokenCount is one entry of the keyword token frequency table.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Insights counts lower-cased alphanumeric tokens across every keyword in
// groups, skipping stop words and labels of the brand and competitor
// hostnames. The result is ordered by descending count with ties kept in
// first-seen order, and capped at MaxInsightTokens.
func Insights(groups []plan.AdGroup, brandURL, competitorURL string) []TokenCount {
	excluded := hostLabels(brandURL, competitorURL)

	counts := make(map[string]int)
	var order []string
	for _, g := range groups {
		for _, k := range g.Keywords {
			for _, w := range tokenize(k.Keyword) {
				if stopWords[w] || excluded[w] {
					continue
				}
				if _, seen := counts[w]; !seen {
					order = append(order, w)
				}
				counts[w]++
			}
		}
	}

	out := make([]TokenCount, 0, len(order))
	for _, w := range order {
		out = append(out, TokenCount{Token: w, Count: counts[w]})
	}
	slices.SortStableFunc(out, func(a, b TokenCount) int {
		return b.Count - a.Count
	})
	if len(out) > MaxInsightTokens {
		out = out[:MaxInsightTokens]
	}
	return out
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func hostLabels(urls ...string) map[string]bool {
	labels := make(map[string]bool)
	for _, u := range urls {
		for p := range strings.SplitSeq(Hostname(u), ".") {
			if p != "" && !genericLabels[p] {
				labels[p] = true
			}
		}
	}
	return labels
}

// Hostname returns the lower-cased host of an absolute URL, or "" when raw
// is empty or has no scheme and host.
func Hostname(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Hosts returns the brand and competitor hostnames for display.
func Hosts(brandURL, competitorURL string) (brand, competitor string) {
	return Hostname(brandURL), Hostname(competitorURL)
}
