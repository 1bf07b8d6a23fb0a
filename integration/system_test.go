//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8082")

type product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestSystem_E2E_Catalog(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var before []product
	doJSON(t, http.MethodGet, baseURL+"/products", nil, &before, http.StatusOK)
	if len(before) < 2 {
		t.Fatalf("expected seeded products, got %#v", before)
	}

	var guitars []product
	doJSON(t, http.MethodGet, baseURL+"/products?name=GUITAR", nil, &guitars, http.StatusOK)
	if len(guitars) != 1 || guitars[0].ID != 1 {
		t.Fatalf("filter by name: %#v", guitars)
	}

	name := fmt.Sprintf("Drum-%d", time.Now().UnixNano())
	var created struct {
		ID int64 `json:"id"`
	}
	resp := doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{"name": name}, &created, http.StatusCreated)
	if created.ID == 0 {
		t.Fatalf("created id missing")
	}
	if loc := resp.Header.Get("Location"); loc != fmt.Sprintf("/products/%d", created.ID) {
		t.Fatalf("location=%q", loc)
	}

	var got product
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/products/%d", baseURL, created.ID), nil, &got, http.StatusOK)
	if got.Name != name {
		t.Fatalf("name=%q want=%q", got.Name, name)
	}

	doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{"name": "Dr"}, nil, http.StatusBadRequest)
	doJSON(t, http.MethodGet, baseURL+"/products/999999", nil, nil, http.StatusNotFound)

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartContainer(t, ctx, getenv("E2E_CATALOG_SERVICE", "catalog"))
		waitReady(t, ctx, baseURL+"/readyz")

		// the collection lives only as long as the process
		doJSON(t, http.MethodGet, fmt.Sprintf("%s/products/%d", baseURL, created.ID), nil, nil, http.StatusNotFound)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == http.StatusOK {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
