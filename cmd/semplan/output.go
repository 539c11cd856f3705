package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kalambet/semplan/internal/analytics"
	"github.com/kalambet/semplan/internal/api"
	"github.com/kalambet/semplan/internal/plan"
	"github.com/kalambet/semplan/internal/semapi"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, colorize(colorBold, title))
}

func money(f float64) string {
	return fmt.Sprintf("$%.2f", f)
}

// renderPlan writes a human-readable summary of s.
func renderPlan(w io.Writer, s plan.Session) {
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Status:"), s.Status)
	if s.Status != plan.StatusFinished {
		return
	}
	if s.Inputs.BrandURL != "" || s.Inputs.CompetitorURL != "" {
		fmt.Fprintf(w, "%s %s vs %s\n", colorize(colorBold, "Inputs:"), s.Inputs.BrandURL, s.Inputs.CompetitorURL)
	}
	if !s.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Generated:"), s.GeneratedAt.Format("2006-01-02 15:04:05"))
	}

	if a := s.Analytics; a != nil {
		fmt.Fprintln(w)
		heading(w, "Overview")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  Impressions\t%d\n", a.TotalImpressions)
		fmt.Fprintf(tw, "  Clicks\t%d\n", a.TotalClicks)
		fmt.Fprintf(tw, "  Conversions\t%.1f\n", a.TotalConversions)
		fmt.Fprintf(tw, "  Spend\t%s\n", money(a.TotalSpend))
		fmt.Fprintf(tw, "  CTR\t%.2f%%\n", a.AverageCTR*100)
		fmt.Fprintf(tw, "  CPC\t%s\n", money(a.AverageCPC))
		fmt.Fprintf(tw, "  CPA\t%s\n", money(a.AverageCPA))
		fmt.Fprintf(tw, "  ROAS\t%.2fx\n", a.ROAS)
		tw.Flush()
	}

	fmt.Fprintln(w)
	heading(w, fmt.Sprintf("Ad groups (%d)", len(s.AdGroups)))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tKEYWORDS\tCPC\tCLICKS\tCONV\tTARGET CPA")
	for _, g := range s.AdGroups {
		fmt.Fprintf(tw, "  %s\t%d\t%s-%s\t%d\t%.1f\t%s\n",
			g.Name, len(g.Keywords), money(g.CPCRange.Low), money(g.CPCRange.High),
			g.EstimatedClicks, g.EstimatedConversions, money(g.TargetCPA))
	}
	tw.Flush()

	if len(s.Themes) > 0 {
		fmt.Fprintln(w)
		heading(w, fmt.Sprintf("PMax themes (%d)", len(s.Themes)))
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  TITLE\tCATEGORY\tIMPRESSIONS\tCTR")
		for _, t := range s.Themes {
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%.2f%%\n", t.Title, t.Category, t.EstimatedImpressions, t.ExpectedCTR*100)
		}
		tw.Flush()
	}

	fmt.Fprintln(w)
	heading(w, fmt.Sprintf("Budget %s, ROAS %.2fx", money(s.Budget.TotalBudget), s.Budget.OverallROAS))
	if len(s.Budget.Breakdown) > 0 {
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  CAMPAIGN\tBUDGET\tCPC\tCLICKS\tCONV")
		for _, b := range s.Budget.Breakdown {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%.1f\n",
				b.CampaignType, money(b.Budget), money(b.ExpectedCPC), b.EstimatedClicks, b.EstimatedConversions)
		}
		tw.Flush()
	}
}

func renderInsights(w io.Writer, in api.InsightsResponse) {
	if in.BrandHost != "" || in.CompetitorHost != "" {
		fmt.Fprintf(w, "%s %s vs %s\n", colorize(colorBold, "Hosts:"), orDash(in.BrandHost), orDash(in.CompetitorHost))
	}
	if len(in.Tokens) == 0 {
		fmt.Fprintln(w, "No keyword tokens.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tCOUNT")
	for _, tc := range in.Tokens {
		fmt.Fprintf(tw, "%s\t%d\n", tc.Token, tc.Count)
	}
	tw.Flush()
}

func renderShopping(w io.Writer, groups []analytics.ShoppingGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No product-focused keywords.")
		return
	}
	for _, g := range groups {
		heading(w, fmt.Sprintf("%s (%d)", g.Title, len(g.Items)))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  KEYWORD\tIMPRESSIONS\tCPC")
		for _, it := range g.Items {
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", it.Keyword, it.EstimatedImpressions, money(it.SuggestedCPC))
		}
		tw.Flush()
	}
}

func renderTrends(w io.Writer, t semapi.Trends) {
	for _, tr := range t.Trends {
		fmt.Fprintf(w, "%s [%s]\n", colorize(colorBold, tr.Trend), tr.Impact)
		if tr.Description != "" {
			fmt.Fprintf(w, "  %s\n", tr.Description)
		}
		if tr.Recommendation != "" {
			fmt.Fprintf(w, "  → %s\n", tr.Recommendation)
		}
	}
	if len(t.BestPractices) > 0 {
		fmt.Fprintln(w)
		heading(w, "Best practices")
		for _, bp := range t.BestPractices {
			fmt.Fprintf(w, "  • %s\n", bp)
		}
	}
}

func renderOptimization(w io.Writer, o semapi.Optimization) {
	for _, opt := range o.Optimizations {
		fmt.Fprintf(w, "%s  bid strategy: %s\n", colorize(colorBold, opt.CampaignType), opt.BidStrategy)
		for _, rec := range opt.CreativeRecommendations {
			fmt.Fprintf(w, "  • %s\n", rec)
		}
	}
	printList(w, "Key insights", o.KeyInsights)
	printList(w, "Next steps", o.NextSteps)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	heading(w, title)
	for _, it := range items {
		fmt.Fprintf(w, "  • %s\n", it)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
