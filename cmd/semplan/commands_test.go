package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kalambet/semplan/internal/api"
	"github.com/kalambet/semplan/internal/plan"
	"github.com/kalambet/semplan/internal/semapi"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
	status   map[string]int
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{status: map[string]int{}}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			if code, ok := ts.status[key]; ok {
				w.WriteHeader(code)
			}
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		httpClient: ts.server.Client(),
	}
}

// useServer points the CLI commands at ts for the rest of the test.
func useServer(t *testing.T, ts *testServer) {
	t.Helper()
	old := newAPIClient
	newAPIClient = func() (*apiClient, error) { return ts.client(), nil }
	t.Cleanup(func() { newAPIClient = old })
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--no-color"))
	defer rootCmd.SetArgs(nil)
	defer rootCmd.SetOut(nil)
	err := rootCmd.Execute()
	return out.String(), err
}

var ctx = context.Background()

const finishedSessionJSON = `{"id":"s-1","status":"finished","generation":1,
"adGroups":[{"name":"Running Shoes","theme":"shoes","keywords":[{"keyword":"buy running shoes","avg_monthly_searches":1000,"competition":"High","top_of_page_bid_low":1.2,"top_of_page_bid_high":3.4}],"cpc_range":{"low":1,"high":3},"estimated_clicks":200,"estimated_conversions":4,"target_cpa":50}],
"themes":[{"title":"Trail Running","category":"Footwear","estimated_impressions":5000,"expected_ctr":0.035}],
"budget":{"totalBudget":1000,"overallRoas":3,"conversionRate":0.02,"breakdown":[{"campaignType":"Running Shoes","budget":1000,"expectedCpc":1.5,"estimatedClicks":200,"estimatedConversions":4,"expectedRoas":3}]},
"inputs":{"brandUrl":"https://acme.com","competitorUrl":"https://rival.com"},
"analytics":{"totalImpressions":5000,"totalClicks":200,"totalConversions":4,"totalSpend":1000,"averageCtr":0.04,"averageCpc":5,"averageCpa":250,"roas":3}}`

func TestGenerateCommand_MissingArgs(t *testing.T) {
	_, err := runCLI(t, "generate", "--brand", "", "--competitor", "")
	if err == nil {
		t.Fatal("expected error for missing args")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestGenerateCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /v1/plans": finishedSessionJSON,
	})
	useServer(t, ts)

	out, err := runCLI(t, "generate",
		"--brand", "https://acme.com",
		"--competitor", "https://rival.com",
		"--seeds", "running shoes, trail shoes",
		"--search-budget", "500",
		"--json",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	var form plan.FormInput
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &form); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if form.BrandURL != "https://acme.com" {
		t.Errorf("brandUrl = %q", form.BrandURL)
	}
	if form.SeedKeywords != "running shoes, trail shoes" {
		t.Errorf("seedKeywords = %q", form.SeedKeywords)
	}
	if form.ConversionRate != plan.DefaultConversionRate {
		t.Errorf("conversionRate = %q, want default %q", form.ConversionRate, plan.DefaultConversionRate)
	}

	var s plan.Session
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if s.Status != plan.StatusFinished || len(s.AdGroups) != 1 {
		t.Errorf("session = %+v", s)
	}
}

func TestShowCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /v1/plan": finishedSessionJSON,
	})
	useServer(t, ts)

	out, err := runCLI(t, "show")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"finished", "Running Shoes", "Trail Running", "Budget $1000.00, ROAS 3.00x", "4.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSaveCommand_NotFinished(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /v1/plan/save": `{"error":{"message":"no finished plan to save","type":"conflict_error"}}`,
	})
	ts.status["POST /v1/plan/save"] = http.StatusConflict
	useServer(t, ts)

	_, err := runCLI(t, "save")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "409") || !strings.Contains(err.Error(), "no finished plan to save") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoadCommand_NoSnapshot(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	useServer(t, ts)

	_, err := runCLI(t, "load")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want 404", err.Error())
	}
}

func TestResetCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /v1/plan/reset": `{"status":"idle","generation":2,"adGroups":[],"themes":[],"budget":{"breakdown":[]}}`,
	})
	useServer(t, ts)

	if _, err := runCLI(t, "reset"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ts.requests) != 1 || ts.requests[0].Method != "POST" {
		t.Errorf("requests = %+v", ts.requests)
	}
}

func TestExportCommand(t *testing.T) {
	csv := "group,keyword,volume,competition,cpc_low,cpc_high\n\"Running Shoes\",\"buy running shoes\",\"1000\",\"High\",\"1.2\",\"3.4\""
	ts := newTestServer(t, map[string]string{
		"GET /v1/plan/export.csv": csv,
	})
	useServer(t, ts)

	dir := filepath.Join(t.TempDir(), "out")
	if _, err := runCLI(t, "export", "--format", "csv", "--dir", dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sem_plan_keywords.csv"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if string(data) != csv {
		t.Errorf("export = %q, want %q", data, csv)
	}
}

func TestExportTarget(t *testing.T) {
	tests := []struct {
		format   string
		wantPath string
		wantName string
		wantErr  bool
	}{
		{"csv", "/v1/plan/export.csv", "sem_plan_keywords.csv", false},
		{"json", "/v1/plan/export.json", "sem_plan.json", false},
		{"xml", "", "", true},
	}
	for _, tt := range tests {
		path, name, err := exportTarget(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("exportTarget(%q) err = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if path != tt.wantPath || name != tt.wantName {
			t.Errorf("exportTarget(%q) = %q, %q", tt.format, path, name)
		}
	}
}

func TestInsightsCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /v1/plan/insights": `{"tokens":[{"token":"running","count":2},{"token":"shoes","count":2}],"brandHost":"acme.com","competitorHost":"rival.com"}`,
	})
	useServer(t, ts)

	out, err := runCLI(t, "insights")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "acme.com vs rival.com") {
		t.Errorf("output missing hosts:\n%s", out)
	}
	if !strings.Contains(out, "running  2") {
		t.Errorf("output missing token row:\n%s", out)
	}
}

func TestTrendsCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /v1/trends": `{"trends":[{"trend":"AI Overviews","description":"d","impact":"High","recommendation":"r"}],"best_practices":["Use smart bidding"]}`,
	})
	useServer(t, ts)

	out, err := runCLI(t, "trends")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"AI Overviews [High]", "Use smart bidding"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOptimizeCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /v1/plan/optimize": `{"optimizations":[{"campaign_type":"Search","bid_strategy":"Target ROAS","creative_recommendations":["Test RSAs"]}],"key_insights":["k"],"next_steps":["n"]}`,
	})
	useServer(t, ts)

	out, err := runCLI(t, "optimize", "--target-roas", "4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body api.OptimizeRequest
	json.Unmarshal([]byte(ts.requests[0].Body), &body)
	if body.TargetROAS != 4 {
		t.Errorf("targetRoas = %v, want 4", body.TargetROAS)
	}
	if !strings.Contains(out, "bid strategy: Target ROAS") {
		t.Errorf("output:\n%s", out)
	}
}

func TestStatusCommand_Running(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /health": `{"status":"ok"}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status code = %d, want 200", resp.StatusCode)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := newTestServer(t, map[string]string{})

	resp, err := ts.client().get(ctx, "/nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var v any
	err = decodeJSON(resp, &v)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if err.Error() != "server returned 404: not found" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestErrorMessage_PlainBody(t *testing.T) {
	if got := errorMessage([]byte("  gateway timeout \n")); got != "gateway timeout" {
		t.Errorf("errorMessage = %q, want %q", got, "gateway timeout")
	}
}

func TestRenderPlan_Idle(t *testing.T) {
	old := noColor
	noColor = true
	defer func() { noColor = old }()

	var buf bytes.Buffer
	renderPlan(&buf, plan.NewSession())
	if buf.String() != "Status: idle\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderShopping_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderShopping(&buf, nil)
	if !strings.Contains(buf.String(), "No product-focused keywords") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderOptimization_SkipsEmptyLists(t *testing.T) {
	old := noColor
	noColor = true
	defer func() { noColor = old }()

	var buf bytes.Buffer
	renderOptimization(&buf, semapi.Optimization{KeyInsights: []string{"Shift budget to PMax"}})
	out := buf.String()
	if !strings.Contains(out, "Key insights") {
		t.Errorf("output missing key insights:\n%s", out)
	}
	if strings.Contains(out, "Next steps") {
		t.Errorf("output should omit empty next steps:\n%s", out)
	}
}
