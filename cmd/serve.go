package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/monitoring"
	"github.com/sells-group/exec-enrich/internal/store"
)

var servePort int

// maxBodyBytes caps an enrichment request body.
const maxBodyBytes = 1 << 20

// resultReader loads stored enrichment results.
type resultReader interface {
	GetResult(ctx context.Context, id string) (*model.CompanyEnrichmentResult, error)
}

// statsCollector produces health snapshots.
type statsCollector interface {
	Collect(ctx context.Context, lookbackHours int) (*monitoring.Snapshot, error)
}

// api holds the dependencies of the HTTP handlers.
type api struct {
	enricher enricher
	results  resultReader
	budget   monitoring.BudgetReporter
	stats    statsCollector
	metrics  http.Handler
	timeout  time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the enrichment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		handler := newRouter(api{
			enricher: env.Orchestrator,
			results:  env.Store,
			budget:   env.Tracker,
			stats:    monitoring.NewCollector(env.Store, env.Tracker),
			metrics:  env.Metrics.Handler(),
			timeout:  seconds(cfg.Server.EnrichTimeout),
		}, cfg.Server.AllowedOrigins)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("serve: shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("serve: shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("serve: listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	},
}

// newRouter builds the API routes.
func newRouter(a api, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/enrich", a.enrich)
		r.Get("/results/{id}", a.result)
		r.Get("/budget", a.budgetReport)
		r.Get("/stats", a.snapshot)
	})
	return r
}

func (a api) enrich(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var lead model.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	lead.CompanyName = strings.TrimSpace(lead.CompanyName)
	if lead.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "company_name is required")
		return
	}
	lead.PriorityTier = model.ParsePriorityTier(string(lead.PriorityTier))

	ctx := r.Context()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	result := a.enricher.Enrich(ctx, lead)
	zap.L().Info("serve: enrichment complete",
		zap.String("company", lead.CompanyName),
		zap.String("status", string(result.Status)),
		zap.Float64("cost", result.TotalCost),
	)
	writeJSON(w, http.StatusOK, result)
}

func (a api) result(w http.ResponseWriter, r *http.Request) {
	res, err := a.results.GetResult(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}
	if err != nil {
		zap.L().Error("serve: get result", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a api) budgetReport(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
	}
	rep, err := a.budget.Report(r.Context(), month)
	if err != nil {
		zap.L().Error("serve: budget report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a api) snapshot(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if s := r.URL.Query().Get("hours"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = n
	}
	snap, err := a.stats.Collect(r.Context(), hours)
	if err != nil {
		zap.L().Error("serve: collect stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
