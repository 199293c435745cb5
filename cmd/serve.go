package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/analysis"
	"github.com/coolcity/heatscan/internal/config"
	"github.com/coolcity/heatscan/internal/model"
	"github.com/coolcity/heatscan/internal/render"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := newServer(ctx, cfg, newAnalysisService(cfg), analysis.NewRegistry(), newImagerySource(cfg))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.routes(),
		}

		// Drop finished tasks past the retention window.
		go srv.pruneLoop(ctx)

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(),
				time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type server struct {
	base   context.Context // cancelled on server shutdown
	cfg    *config.Config
	svc    *analysis.Service
	reg    *analysis.Registry
	source render.ImageSource // shared across renders for its cache

	mu       sync.Mutex
	requests map[string]analysis.Request // task ID → originating request
}

func newServer(base context.Context, cfg *config.Config, svc *analysis.Service, reg *analysis.Registry, source render.ImageSource) *server {
	return &server{
		base:     base,
		cfg:      cfg,
		svc:      svc,
		reg:      reg,
		source:   source,
		requests: make(map[string]analysis.Request),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/analyze", s.handleAnalyze)
	r.Get("/api/tasks", s.handleListTasks)
	r.Get("/api/tasks/{id}", s.handleGetTask)
	r.Get("/api/results/{id}", s.handleGetResult)
	r.Get("/api/render/{id}.png", s.handleRender)

	return r
}

type analyzeRequest struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Zoom         int     `json:"zoom"`
	LocalOnly    bool    `json:"local_only"`
	BaseImageRef string  `json:"base_image_ref"`
	HeatImageRef string  `json:"heat_image_ref"`
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Lat < -90 || body.Lat > 90 || body.Lng < -180 || body.Lng > 180 {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}
	if body.Zoom == 0 {
		body.Zoom = 15
	}

	req := analysis.Request{
		Viewport: model.Viewport{
			Center: model.GeoPoint{Lat: body.Lat, Lng: body.Lng},
			Zoom:   body.Zoom,
		},
		BaseImageRef: body.BaseImageRef,
		HeatImageRef: body.HeatImageRef,
		LocalOnly:    body.LocalOnly,
	}

	task := s.reg.Create()
	s.mu.Lock()
	s.requests[task.ID] = req
	s.mu.Unlock()

	// Analyses outlive the request; only server shutdown cancels them.
	go func() {
		result, _, err := s.svc.Analyze(s.base, req, func(pct int) {
			s.reg.SetProgress(task.ID, pct)
		})
		if err != nil {
			zap.L().Error("analysis failed", zap.String("task", task.ID), zap.Error(err))
			s.reg.Fail(task.ID, err)
			return
		}
		s.reg.Complete(task.ID, result)
		zap.L().Info("analysis complete",
			zap.String("task", task.ID),
			zap.Float64("intensity", result.Intensity),
		)
	}()

	writeJSON(w, http.StatusAccepted, task)
}

func (s *server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reg.List())
}

func (s *server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.reg.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	task, err := s.reg.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if task.Status != model.TaskCompleted {
		writeError(w, http.StatusConflict, fmt.Sprintf("task is %s", task.Status))
		return
	}
	writeJSON(w, http.StatusOK, task.Result)
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, err := s.reg.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if task.Status != model.TaskCompleted {
		writeError(w, http.StatusConflict, fmt.Sprintf("task is %s", task.Status))
		return
	}

	s.mu.Lock()
	req, ok := s.requests[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "render inputs no longer available")
		return
	}

	// Each render gets its own compositor so concurrent requests cannot
	// supersede each other; the imagery source underneath is shared.
	comp := render.NewCompositor(s.cfg.Surface.Width, s.cfg.Surface.Height, s.cfg.Render.HeatOpacity, s.source)
	surface, err := comp.Render(r.Context(), req.BaseImageRef, req.HeatImageRef)
	if err != nil {
		zap.L().Error("render failed", zap.String("task", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	placements := render.Positions(task.Result.Interventions, surface.Width(), surface.Height())
	render.DrawMarkers(surface, placements)

	w.Header().Set("Content-Type", "image/png")
	if err := surface.EncodePNG(w); err != nil {
		zap.L().Error("png encode failed", zap.String("task", id), zap.Error(err))
	}
}

func (s *server) pruneLoop(ctx context.Context) {
	retention := time.Duration(s.cfg.Server.TaskRetentionHours) * time.Hour
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.reg.Prune(retention)
			if removed > 0 {
				s.mu.Lock()
				for id := range s.requests {
					if _, err := s.reg.Get(id); err != nil {
						delete(s.requests, id)
					}
				}
				s.mu.Unlock()
				zap.L().Info("pruned tasks", zap.Int("removed", removed))
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
