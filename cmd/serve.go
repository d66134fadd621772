package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/homesignal/leadscore/internal/config"
	"github.com/homesignal/leadscore/internal/model"
	"github.com/homesignal/leadscore/internal/scoring"
	"github.com/homesignal/leadscore/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead scoring HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initScoring(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Pipeline, cfg.Server),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Bool("model_loaded", env.Pipeline.ModelReady()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP API over a scoring pipeline.
func newRouter(p *scoring.Pipeline, srvCfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	if srvCfg.RatePerSecond > 0 {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(srvCfg.RatePerSecond), srvCfg.RateBurst)))
	}

	h := &apiHandler{pipeline: p}

	r.Get("/health", h.health)
	r.Post("/score", h.score)
	r.Get("/leads", h.leads)
	r.Get("/stats", h.stats)
	r.Get("/sample-data", h.sampleData)

	return r
}

// rateLimit sheds load with 429 once the shared limiter is exhausted.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type apiHandler struct {
	pipeline *scoring.Pipeline
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *apiHandler) health(w http.ResponseWriter, r *http.Request) {
	scored, err := h.pipeline.Store().CountLeads(r.Context())
	if err != nil {
		zap.L().Error("health: count leads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"model_loaded":  h.pipeline.ModelReady(),
		"model_version": h.pipeline.ModelVersion(),
		"leads_scored":  scored,
	})
}

func (h *apiHandler) score(w http.ResponseWriter, r *http.Request) {
	var lead model.LeadInput
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.pipeline.Score(r.Context(), lead)
	if err != nil {
		var verr *model.ValidationError
		var perr *scoring.PersistenceError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Error())
		case eris.Is(err, scoring.ErrModelUnavailable):
			writeError(w, http.StatusServiceUnavailable, "model unavailable")
		case errors.As(err, &perr):
			// The score was computed; persistence is the only failed stage.
			zap.L().Error("serving unpersisted score", zap.Error(err))
			writeJSON(w, http.StatusOK, result)
		default:
			zap.L().Error("score request failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *apiHandler) leads(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeadFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.pipeline.Store().ListLeads(r.Context(), filter)
	if err != nil {
		zap.L().Error("list leads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if recs == nil {
		recs = []model.LeadRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"leads": recs,
		"count": len(recs),
	})
}

func parseLeadFilter(r *http.Request) (store.LeadFilter, error) {
	var filter store.LeadFilter
	q := r.URL.Query()

	if v := q.Get("intent_level"); v != "" {
		level := model.IntentLevel(v)
		if !level.Valid() {
			return filter, fmt.Errorf("unknown intent_level %q", v)
		}
		filter.IntentLevel = level
	}
	if v := q.Get("min_score"); v != "" {
		n, err := parseBoundedInt(v, 0, 100)
		if err != nil {
			return filter, fmt.Errorf("min_score: %w", err)
		}
		filter.MinScore = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := parseBoundedInt(v, 1, 1000)
		if err != nil {
			return filter, fmt.Errorf("limit: %w", err)
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := parseBoundedInt(v, 0, 1<<31-1)
		if err != nil {
			return filter, fmt.Errorf("offset: %w", err)
		}
		filter.Offset = n
	}
	return filter, nil
}

func parseBoundedInt(s string, min, max int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, min, max)
	}
	return n, nil
}

func (h *apiHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.pipeline.Stats(r.Context())
	if err != nil {
		zap.L().Error("stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *apiHandler) sampleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sampleLead())
}
