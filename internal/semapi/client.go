package semapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kalambet/semplan/internal/plan"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second

	apiPrefix       = "/api/v1"
	maxErrorBodyLen = 4096
)

// Client talks to the keyword and campaign generation API. It is stateless
// and never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for baseURL. A zero timeout selects DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]any
	return c.do(ctx, "health", http.MethodGet, "/health", nil, &out)
}

// GenerateKeywords returns keyword ideas for the given seeds.
func (c *Client) GenerateKeywords(ctx context.Context, req KeywordRequest) ([]plan.KeywordItem, error) {
	if req.SeedKeywords == nil {
		req.SeedKeywords = []string{}
	}
	var out keywordsResponse
	if err := c.do(ctx, "generate_keywords", http.MethodPost, apiPrefix+"/generate_keywords", req, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Keywords), nil
}

// FilterKeywords applies volume and competition filters server-side.
func (c *Client) FilterKeywords(ctx context.Context, req FilterRequest) ([]plan.KeywordItem, error) {
	req.Keywords = nonNil(req.Keywords)
	var out keywordsResponse
	if err := c.do(ctx, "filter_keywords", http.MethodPost, apiPrefix+"/filter_keywords", req, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Keywords), nil
}

// GroupKeywords clusters keywords into ad groups.
func (c *Client) GroupKeywords(ctx context.Context, keywords []plan.KeywordItem) ([]plan.AdGroup, error) {
	var out groupsResponse
	req := FilterRequest{Keywords: nonNil(keywords)}
	if err := c.do(ctx, "group_keywords", http.MethodPost, apiPrefix+"/group_keywords", req, &out); err != nil {
		return nil, err
	}
	return nonNil(out.AdGroups), nil
}

// PMaxThemes builds Performance Max themes from keywords.
func (c *Client) PMaxThemes(ctx context.Context, keywords []plan.KeywordItem) ([]plan.PMaxTheme, error) {
	var out themesResponse
	req := FilterRequest{Keywords: nonNil(keywords)}
	if err := c.do(ctx, "pmax_themes", http.MethodPost, apiPrefix+"/pmax_themes", req, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Themes), nil
}

// CalculateBids returns bid recommendations for the ad groups.
func (c *Client) CalculateBids(ctx context.Context, req BudgetRequest) (BidResult, error) {
	req.AdGroups = nonNil(req.AdGroups)
	var out BidResult
	if err := c.do(ctx, "calculate_bids", http.MethodPost, apiPrefix+"/calculate_bids", req, &out); err != nil {
		return BidResult{}, err
	}
	out.BidRecommendations = nonNil(out.BidRecommendations)
	return out, nil
}

// OptimizeCampaigns returns campaign-type optimization suggestions.
func (c *Client) OptimizeCampaigns(ctx context.Context, req BudgetRequest) (Optimization, error) {
	req.AdGroups = nonNil(req.AdGroups)
	var out Optimization
	if err := c.do(ctx, "optimize_campaigns", http.MethodPost, apiPrefix+"/optimize_campaigns", req, &out); err != nil {
		return Optimization{}, err
	}
	out.Optimizations = nonNil(out.Optimizations)
	return out, nil
}

// Trends fetches current SEM trends.
func (c *Client) Trends(ctx context.Context) (Trends, error) {
	var out Trends
	if err := c.do(ctx, "trends", http.MethodGet, apiPrefix+"/trends", nil, &out); err != nil {
		return Trends{}, err
	}
	out.Trends = nonNil(out.Trends)
	out.BestPractices = nonNil(out.BestPractices)
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &Error{
			Op:      op,
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: errorMessage(respBody),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// errorMessage extracts the most specific message from an error body,
// preferring error, then message, then detail.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Error != "":
			return eb.Error
		case eb.Message != "":
			return eb.Message
		case eb.Detail != nil:
			if s, ok := eb.Detail.(string); ok {
				return s
			}
			if b, err := json.Marshal(eb.Detail); err == nil {
				return string(b)
			}
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "server error"
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
