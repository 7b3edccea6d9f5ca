// Package e2e runs against a live search service started with
//
//	go run ./cmd/indexer -config configs/development.yaml
//	go run ./cmd/searcher -config configs/development.yaml
//
// and skips when the service is not reachable. E2E_SEARCHER_URL overrides
// the default address.
package e2e

import (
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/oarkflow/json"
)

func searcherURL() string {
	if v := os.Getenv("E2E_SEARCHER_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func getJSON(t *testing.T, client *http.Client, url string, out any) int {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Skipf("search service unavailable: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	for _, path := range []string{"/health", "/health/live"} {
		t.Run(path, func(t *testing.T) {
			if code := getJSON(t, client, searcherURL()+path, nil); code != http.StatusOK {
				t.Errorf("%s: status %d", path, code)
			}
		})
	}
}

func TestSearchThenFetchDocument(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	base := searcherURL()

	var result struct {
		TotalHits int `json:"total_hits"`
		Results   []struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"results"`
	}
	if code := getJSON(t, client, base+"/api/v1/search?q=the&limit=3", &result); code != http.StatusOK {
		t.Fatalf("search status %d", code)
	}
	t.Logf("total_hits=%d returned=%d", result.TotalHits, len(result.Results))
	if len(result.Results) > 3 {
		t.Errorf("limit ignored: %d results", len(result.Results))
	}
	if len(result.Results) == 0 {
		t.Skip("index has no match for the probe query")
	}

	var doc struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	first := result.Results[0]
	url := base + "/api/v1/documents/" + strconv.Itoa(first.ID)
	if code := getJSON(t, client, url, &doc); code != http.StatusOK {
		t.Fatalf("document status %d", code)
	}
	if doc.ID != first.ID {
		t.Errorf("document id = %d, want %d", doc.ID, first.ID)
	}
}

func TestCacheStats(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	var stats map[string]any
	if code := getJSON(t, client, searcherURL()+"/api/v1/cache/stats", &stats); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if _, disabled := stats["status"]; !disabled {
		for _, field := range []string{"hits", "misses", "total", "hit_rate"} {
			if _, ok := stats[field]; !ok {
				t.Errorf("missing field %q in %v", field, stats)
			}
		}
	}
}
