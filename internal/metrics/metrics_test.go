package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestMetricsServer(t *testing.T) {
	srv := NewServer(8888)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			t.Errorf("metrics server failed: %v", err)
		}
	}()
	// Give it a tiny bit of time to start up
	time.Sleep(100 * time.Millisecond)

	defer srv.Stop(context.Background())

	RecordSearch("ddg", 7, nil)
	RecordSearch("ddg", 0, errors.New("boom"))
	RecordFetch("www.example.com", 200, "", 1*time.Second, 11)
	RecordFetch("www.example.com", 0, "", 20*time.Second, 0)
	RecordProduct("example", "json-ld")
	RecordFind("example", 3*time.Second)

	resp, err := http.Get("http://localhost:8888/metrics")
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	output := string(body)

	expected := []string{
		`shopscout_search_requests_total{provider="ddg",status="ok"} 1`,
		`shopscout_search_requests_total{provider="ddg",status="error"} 1`,
		`shopscout_search_results_total{provider="ddg"} 7`,
		`shopscout_page_fetches_total{detected="false",detection_src="",domain="www.example.com",status="error"} 1`,
		`shopscout_page_bytes_total{domain="www.example.com"} 11`,
		`shopscout_image_source_total{source="json-ld"} 1`,
		`shopscout_products_extracted_total{site="example"} 1`,
		`shopscout_page_fetch_duration_seconds_bucket`,
		`shopscout_find_duration_seconds_bucket`,
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("expected metrics output to contain %s", want)
		}
	}
}
