package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/FranksOps/shopscout/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	servePort        int
	serveMetricsPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve product searches over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger, "")
		if err != nil {
			return err
		}
		defer a.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		metricsPort := serveMetricsPort
		if metricsPort == 0 {
			metricsPort = cfg.Server.MetricsPort
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(a),
			ReadHeaderTimeout: 10 * time.Second,
		}
		metricsSrv := metrics.NewServer(metricsPort)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("starting server", "port", port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server listen: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			logger.Info("starting metrics server", "port", metricsPort)
			return metricsSrv.ListenAndServe()
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Stop(shutdownCtx))
		})

		return g.Wait()
	},
}

type searchRequest struct {
	Query string `json:"query"`
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", func(w http.ResponseWriter, r *http.Request) {
			query := strings.TrimSpace(r.URL.Query().Get("q"))
			if query == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
				return
			}
			writeJSON(w, http.StatusOK, a.finder.Find(r.Context(), query))
		})

		r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
			var req searchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			req.Query = strings.TrimSpace(req.Query)
			if req.Query == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
				return
			}

			run := a.finder.Run(r.Context(), req.Query)
			if err := a.save(r.Context(), run); err != nil {
				a.logger.Warn("failed to persist products", "err", err)
			}

			writeJSON(w, http.StatusOK, map[string]any{
				"products": run.Records(),
				"stats":    run.Stats,
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().IntVar(&serveMetricsPort, "metrics-port", 0, "metrics port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
