// Package sanity is the content-store client: GROQ queries, document
// mutations, and asset uploads against the Sanity HTTP API.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/topicalmd/contentpipe/internal/model"
)

// queryCacheTTL keeps repeated gap/product lookups within one run cheap
const queryCacheTTL = 5 * time.Minute

// Mutation is one document operation, e.g. {"createOrReplace": doc}
type Mutation map[string]any

// MutateResult is the transaction result returned by the mutate endpoint
type MutateResult struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// Client talks to one Sanity project/dataset
type Client struct {
	baseURL    string
	dataset    string
	token      string
	httpClient *http.Client
	cache      *gocache.Cache
}

// NewClient creates a Sanity client for the configured dataset
func NewClient(cfg model.SanityConfig) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("https://%s.api.sanity.io/v%s", cfg.ProjectID, cfg.APIVersion),
		dataset:    cfg.Dataset,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      gocache.New(queryCacheTTL, 10*time.Minute),
	}
}

// newClientForTest points the client at a test server
func newClientForTest(baseURL, dataset string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		dataset:    dataset,
		token:      "test-token",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cache:      gocache.New(queryCacheTTL, 10*time.Minute),
	}
}

// Configured reports whether the client has a project and token to talk to
func (c *Client) Configured() bool {
	return c.token != "" && !strings.HasPrefix(c.baseURL, "https://.")
}

// Query runs a GROQ query and returns the raw result value. Results are
// cached briefly since gap detection repeats the same queries per run.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any) (json.RawMessage, error) {
	cacheKey := groq
	if params != nil {
		if pb, err := json.Marshal(params); err == nil {
			cacheKey += string(pb)
		}
	}
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(json.RawMessage), nil
	}

	values := url.Values{}
	values.Set("query", groq)
	for k, v := range params {
		// Sanity expects parameter values JSON-encoded
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode query param %s: %w", k, err)
		}
		values.Set("$"+k, string(encoded))
	}

	endpoint := fmt.Sprintf("%s/data/query/%s?%s", c.baseURL, c.dataset, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}

	c.cache.Set(cacheKey, envelope.Result, gocache.DefaultExpiration)
	return envelope.Result, nil
}

// QueryInto runs a GROQ query and unmarshals the result into out
func (c *Client) QueryInto(ctx context.Context, groq string, params map[string]any, out any) error {
	result, err := c.Query(ctx, groq, params)
	if err != nil {
		return err
	}
	if len(result) == 0 || string(result) == "null" {
		return nil
	}
	return json.Unmarshal(result, out)
}

// Mutate sends document mutations. With dryRun the store validates the
// transaction without committing it.
func (c *Client) Mutate(ctx context.Context, mutations []Mutation, dryRun bool) (*MutateResult, error) {
	endpoint := fmt.Sprintf("%s/data/mutate/%s", c.baseURL, c.dataset)
	if dryRun {
		endpoint += "?dryRun=true"
	}

	payload, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("encode mutations: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create mutate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("mutate: %w", err)
	}

	var result MutateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode mutate response: %w", err)
	}

	slog.Info("sanity mutate", "mutations", len(mutations), "dry_run", dryRun)
	return &result, nil
}

// UploadImage uploads image bytes to the assets API and returns the asset _id
func (c *Client) UploadImage(ctx context.Context, data []byte, filename string) (string, error) {
	endpoint := fmt.Sprintf("%s/assets/images/%s?filename=%s", c.baseURL, c.dataset, url.QueryEscape(filename))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Authorization", "Bearer "+c.token)

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("upload asset: %w", err)
	}

	var envelope struct {
		Document struct {
			ID string `json:"_id"`
		} `json:"document"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if envelope.Document.ID == "" {
		return "", fmt.Errorf("upload response has no asset id")
	}

	slog.Info("uploaded image asset", "asset_id", envelope.Document.ID)
	return envelope.Document.ID, nil
}

// do executes a request and returns the body, treating non-2xx as errors
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, truncateBody(body))
	}
	return body, nil
}

func truncateBody(body []byte) string {
	const limit = 300
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
