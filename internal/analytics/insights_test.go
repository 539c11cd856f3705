package analytics

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kalambet/semplan/internal/plan"
)

func groupOf(keywords ...string) plan.AdGroup {
	g := plan.AdGroup{Name: "g"}
	for _, k := range keywords {
		g.Keywords = append(g.Keywords, plan.KeywordItem{Keyword: k})
	}
	return g
}

func TestInsights_CountsAndOrder(t *testing.T) {
	groups := []plan.AdGroup{
		groupOf("Running Shoes", "trail-running shoes"),
		groupOf("best shoes for running near me", "waterproof jacket"),
	}

	got := Insights(groups, "", "")
	want := []TokenCount{
		{Token: "running", Count: 3},
		{Token: "shoes", Count: 3},
		{Token: "trail", Count: 1},
		{Token: "waterproof", Count: 1},
		{Token: "jacket", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Insights mismatch (-want +got):\n%s", diff)
	}
}

func TestInsights_ExcludesHostLabels(t *testing.T) {
	groups := []plan.AdGroup{groupOf("nike running shoes", "adidas shoes", "www shoes com")}

	got := Insights(groups, "https://www.nike.com", "https://shop.adidas.co.uk/path")
	for _, tc := range got {
		switch tc.Token {
		case "nike", "adidas":
			t.Errorf("token %q should be excluded as a host label", tc.Token)
		}
	}
	// www and com are generic labels, so they stay countable.
	found := map[string]bool{}
	for _, tc := range got {
		found[tc.Token] = true
	}
	if !found["www"] || !found["com"] {
		t.Errorf("generic labels missing from %v", got)
	}
}

func TestInsights_MixedCaseHost(t *testing.T) {
	got := Insights([]plan.AdGroup{groupOf("www com shoes", "nike shoes")}, "https://WWW.Nike.COM", "")
	want := []TokenCount{{"shoes", 2}, {"www", 1}, {"com", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Insights mismatch (-want +got):\n%s", diff)
	}
	if h := Hostname("https://WWW.Nike.COM/Path"); h != "www.nike.com" {
		t.Errorf("Hostname = %q, want www.nike.com", h)
	}
}

func TestInsights_SchemelessURLExcludesNothing(t *testing.T) {
	got := Insights([]plan.AdGroup{groupOf("nike shoes")}, "nike.com", "")
	if len(got) != 2 || got[0].Token != "nike" {
		t.Errorf("Insights = %v, want nike kept", got)
	}
}

func TestInsights_TopTwenty(t *testing.T) {
	var kws []string
	for i := range 30 {
		kws = append(kws, fmt.Sprintf("token%d", i))
	}
	kws = append(kws, "token29")

	got := Insights([]plan.AdGroup{groupOf(kws...)}, "", "")
	if len(got) != MaxInsightTokens {
		t.Fatalf("len = %d, want %d", len(got), MaxInsightTokens)
	}
	if got[0] != (TokenCount{Token: "token29", Count: 2}) {
		t.Errorf("first = %+v, want token29 x2", got[0])
	}
	if got[1].Token != "token0" || got[19].Token != "token18" {
		t.Errorf("tie order = %s..%s, want token0..token18", got[1].Token, got[19].Token)
	}
}

func TestInsights_Empty(t *testing.T) {
	got := Insights(nil, "https://brand.com", "https://rival.com")
	if got == nil || len(got) != 0 {
		t.Errorf("Insights(nil) = %#v, want empty slice", got)
	}
}

func TestHosts(t *testing.T) {
	brand, comp := Hosts("https://www.brand.com/about", "rival.com")
	if brand != "www.brand.com" {
		t.Errorf("brand = %q, want www.brand.com", brand)
	}
	if comp != "" {
		t.Errorf("competitor = %q, want empty for schemeless URL", comp)
	}
}
