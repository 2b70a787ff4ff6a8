package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscout_search_requests_total",
			Help: "Total number of search provider requests",
		},
		[]string{"provider", "status"},
	)

	SearchResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscout_search_results_total",
			Help: "Total number of result entries returned by search providers",
		},
		[]string{"provider"},
	)

	PageFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscout_page_fetches_total",
			Help: "Total number of product page fetches",
		},
		[]string{"domain", "status", "detected", "detection_src"},
	)

	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopscout_page_fetch_duration_seconds",
			Help:    "Duration of product page fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"domain"},
	)

	PageBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscout_page_bytes_total",
			Help: "Total bytes downloaded across all page fetches",
		},
		[]string{"domain"},
	)

	ProductsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscout_products_extracted_total",
			Help: "Total number of product records extracted",
		},
		[]string{"site"},
	)

	ImageSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopscout_image_source_total",
			Help: "Product images by the extraction tier that found them",
		},
		[]string{"source"},
	)

	FindDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopscout_find_duration_seconds",
			Help:    "Duration of complete search-then-extract runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"site"},
	)
)

// RecordSearch counts one provider call and the entries it returned.
func RecordSearch(provider string, results int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SearchRequestsTotal.WithLabelValues(provider, status).Inc()
	SearchResultsTotal.WithLabelValues(provider).Add(float64(results))
}

// RecordFetch records one page fetch. A status of 0 means no response was
// received.
func RecordFetch(domain string, status int, detectionSrc string, duration time.Duration, bytes int) {
	statusStr := strconv.Itoa(status)
	if status == 0 {
		statusStr = "error"
	}
	detected := strconv.FormatBool(detectionSrc != "")

	PageFetchesTotal.WithLabelValues(domain, statusStr, detected, detectionSrc).Inc()
	PageFetchDuration.WithLabelValues(domain).Observe(duration.Seconds())
	PageBytesTotal.WithLabelValues(domain).Add(float64(bytes))
}

// RecordProduct counts an extracted product and the tier that found its image.
func RecordProduct(site, imageSource string) {
	ProductsTotal.WithLabelValues(site).Inc()
	ImageSourceTotal.WithLabelValues(imageSource).Inc()
}

// RecordFind observes the duration of a complete run.
func RecordFind(site string, d time.Duration) {
	FindDuration.WithLabelValues(site).Observe(d.Seconds())
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// NewServer builds a metrics server listening on port. Call ListenAndServe
// to start it.
func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{srv: &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// ListenAndServe blocks until the server stops. A graceful Stop is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics: listen: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
