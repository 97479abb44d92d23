package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/topicalmd/contentpipe/internal/model"
)

func TestLoadAndResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	contents := `{
		"products": [
			{"product_name": "Biofreeze Gel", "brand": "Biofreeze", "category": "joint-pain", "asin": "B000A"},
			{"product_name": "Tiger Balm", "brand": "Tiger Balm", "category": "muscle-pain"}
		]
	}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("len: %d", c.Len())
	}

	matched, dropped := c.Resolve([]string{"Tiger Balm", "Biofreeze Gel", "Invented Cream"})
	if len(matched) != 2 {
		t.Errorf("matched: %+v", matched)
	}
	if dropped != 1 {
		t.Errorf("dropped: %d, want 1", dropped)
	}
	if matched[0].ProductName != "Tiger Balm" {
		t.Errorf("order not preserved: %+v", matched)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/products.json"); err == nil {
		t.Fatal("expected error")
	}
}

func TestResolveEmptyCatalog(t *testing.T) {
	c := New(nil)
	matched, dropped := c.Resolve([]string{"Anything"})
	if len(matched) != 0 || dropped != 1 {
		t.Errorf("matched=%v dropped=%d", matched, dropped)
	}
}

func TestNewIndexesByName(t *testing.T) {
	c := New([]model.Product{{ProductName: "Salonpas Patch", ASIN: "B0X"}})
	matched, _ := c.Resolve([]string{"Salonpas Patch"})
	if len(matched) != 1 || matched[0].ASIN != "B0X" {
		t.Errorf("resolve: %+v", matched)
	}
}
