package sanity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQueryDecodesResultAndCaches(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if !strings.HasPrefix(r.URL.Path, "/data/query/production") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing auth header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": ["slug-one", "slug-two"]}`))
	}))
	defer server.Close()

	c := newClientForTest(server.URL, "production")

	var slugs []string
	if err := c.QueryInto(context.Background(), `*[_type == "review"].slug.current`, nil, &slugs); err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(slugs) != 2 || slugs[0] != "slug-one" {
		t.Errorf("decoded %v", slugs)
	}

	// Same query again should come from cache
	if err := c.QueryInto(context.Background(), `*[_type == "review"].slug.current`, nil, &slugs); err != nil {
		t.Fatalf("cached query: %v", err)
	}
	if hits != 1 {
		t.Errorf("expected 1 server hit, got %d", hits)
	}
}

func TestQueryEncodesParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Parameter values arrive JSON-encoded
		if got := r.URL.Query().Get("$name"); got != `"Biofreeze Gel"` {
			t.Errorf("param $name = %q", got)
		}
		_, _ = w.Write([]byte(`{"result": {"_id": "product-1"}}`))
	}))
	defer server.Close()

	c := newClientForTest(server.URL, "production")

	var result struct {
		ID string `json:"_id"`
	}
	err := c.QueryInto(context.Background(), ProductByName, map[string]any{"name": "Biofreeze Gel"}, &result)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.ID != "product-1" {
		t.Errorf("result: %+v", result)
	}
}

func TestMutateSendsTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method %s", r.Method)
		}
		if r.URL.Query().Get("dryRun") != "" {
			t.Error("dryRun set on a real mutate")
		}

		var payload struct {
			Mutations []map[string]any `json:"mutations"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(payload.Mutations) != 1 {
			t.Errorf("mutations: %v", payload.Mutations)
		}

		_, _ = w.Write([]byte(`{"transactionId": "tx-1", "results": [{"id": "review-x", "operation": "create"}]}`))
	}))
	defer server.Close()

	c := newClientForTest(server.URL, "production")

	result, err := c.Mutate(context.Background(), []Mutation{{"createOrReplace": map[string]any{"_id": "review-x"}}}, false)
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if result.TransactionID != "tx-1" || len(result.Results) != 1 {
		t.Errorf("result: %+v", result)
	}
}

func TestMutateDryRunFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dryRun") != "true" {
			t.Error("expected dryRun=true")
		}
		_, _ = w.Write([]byte(`{"transactionId": "tx-dry"}`))
	}))
	defer server.Close()

	c := newClientForTest(server.URL, "production")
	if _, err := c.Mutate(context.Background(), []Mutation{{"createOrReplace": map[string]any{}}}, true); err != nil {
		t.Fatalf("mutate: %v", err)
	}
}

func TestUploadImageReturnsAssetID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/assets/images/production") {
			t.Errorf("path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("filename"); got != "product-B001.jpg" {
			t.Errorf("filename: %q", got)
		}
		_, _ = w.Write([]byte(`{"document": {"_id": "image-abc123-1024x1024-jpg"}}`))
	}))
	defer server.Close()

	c := newClientForTest(server.URL, "production")

	assetID, err := c.UploadImage(context.Background(), []byte("fake-jpeg-bytes"), "product-B001.jpg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if assetID != "image-abc123-1024x1024-jpg" {
		t.Errorf("asset id: %q", assetID)
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid token"}`))
	}))
	defer server.Close()

	c := newClientForTest(server.URL, "production")

	_, err := c.Query(context.Background(), "*", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid token") {
		t.Errorf("error: %v", err)
	}
}

func TestConfigured(t *testing.T) {
	if !(newClientForTest("http://example.test", "production")).Configured() {
		t.Error("test client should report configured")
	}
}
