// Package server exposes the placement engine over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/piwi3910/roomfit/internal/engine"
	"github.com/piwi3910/roomfit/internal/export"
	"github.com/piwi3910/roomfit/internal/importer"
	"github.com/piwi3910/roomfit/internal/model"
)

// MaxBodyBytes caps the size of a scenario upload.
const MaxBodyBytes = 4 << 20

const (
	endpointSolve   = "solve"
	endpointCompare = "compare"
)

// SolveResponse is the body of a successful POST /v1/solve.
type SolveResponse struct {
	RunID    string       `json:"runId"`
	Scenario string       `json:"scenario,omitempty"`
	Result   model.Result `json:"result"`
}

// VariantSummary is one row of a POST /v1/compare response.
type VariantSummary struct {
	Name        string  `json:"name"`
	Annotation  string  `json:"annotation,omitempty"`
	Feasible    bool    `json:"feasible"`
	Message     string  `json:"message,omitempty"`
	Placed      int     `json:"placed"`
	Unplaced    int     `json:"unplaced"`
	AreaPercent float64 `json:"areaPercent"`
}

// CompareResponse is the body of a successful POST /v1/compare.
type CompareResponse struct {
	RunID    string           `json:"runId"`
	Variants []VariantSummary `json:"variants"`
}

// Server serves solve requests with fixed engine settings.
type Server struct {
	settings model.Settings
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
	router   *gin.Engine
}

// New creates a server with its own metrics registry.
func New(settings model.Settings, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		settings: settings.Normalize(),
		logger:   logger,
		registry: reg,
		metrics:  NewMetrics(reg),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		Registry:      s.registry,
		ErrorHandling: promhttp.ContinueOnError,
	})))

	v1 := r.Group("/v1")
	v1.POST("/solve", s.handleSolve)
	v1.POST("/compare", s.handleCompare)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// decodeScenario reads the request body as a scenario. It writes the error
// response itself and reports false when the body is unusable.
func (s *Server) decodeScenario(c *gin.Context, endpoint string) (model.Scenario, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	sc, err := importer.DecodeScenario(body)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		} else if !errors.Is(err, importer.ErrInvalidScenario) {
			status = http.StatusInternalServerError
		}
		s.metrics.RecordSolve(endpoint, outcomeInvalid, 0)
		c.JSON(status, gin.H{"error": err.Error()})
		return model.Scenario{}, false
	}
	if name := c.Query("name"); name != "" {
		sc.Name = name
	}
	return sc, true
}

// solveFailed answers a solver error: 422 for a room too large to sample,
// 503 for an abandoned request.
func (s *Server) solveFailed(c *gin.Context, endpoint string, err error) {
	if errors.Is(err, engine.ErrRoomTooLarge) {
		s.metrics.RecordSolve(endpoint, outcomeInvalid, 0)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	s.metrics.RecordSolve(endpoint, outcomeCancelled, 0)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}

// handleSolve places the posted scenario. An infeasible scenario is still a
// 200; the result says which item could not be placed. With
// ?format=geojson the response is a GeoJSON feature collection.
func (s *Server) handleSolve(c *gin.Context) {
	sc, ok := s.decodeScenario(c, endpointSolve)
	if !ok {
		return
	}

	runID := model.NewRunID()
	log := s.logger.With("run", runID, "scenario", sc.Name)

	start := time.Now()
	result, err := engine.New(s.settings).WithLogger(log).Solve(c.Request.Context(), sc)
	if err != nil {
		log.Warn("Solve aborted", "error", err)
		s.solveFailed(c, endpointSolve, err)
		return
	}
	s.record(endpointSolve, sc, result, time.Since(start))

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, SolveResponse{RunID: runID, Scenario: sc.Name, Result: result})
	case export.FormatGeoJSON:
		fc, err := export.BuildFeatureCollection(sc, result, s.settings)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/geo+json", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or geojson"})
	}
}

// handleCompare solves the posted scenario under the default what-if
// variants built from the server settings.
func (s *Server) handleCompare(c *gin.Context) {
	sc, ok := s.decodeScenario(c, endpointCompare)
	if !ok {
		return
	}

	start := time.Now()
	results, err := engine.CompareScenarios(c.Request.Context(), engine.BuildDefaultScenarios(s.settings), sc)
	if err != nil {
		s.solveFailed(c, endpointCompare, err)
		return
	}

	resp := CompareResponse{RunID: model.NewRunID(), Variants: make([]VariantSummary, 0, len(results))}
	for _, r := range results {
		resp.Variants = append(resp.Variants, VariantSummary{
			Name:        r.Scenario.Name,
			Annotation:  r.Scenario.Annotation,
			Feasible:    r.Result.Feasible,
			Message:     r.Result.Message,
			Placed:      r.PlacedCount,
			Unplaced:    r.UnplacedCount,
			AreaPercent: r.AreaPercent,
		})
	}
	if len(results) > 0 {
		s.record(endpointCompare, sc, results[0].Result, time.Since(start))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) record(endpoint string, sc model.Scenario, result model.Result, d time.Duration) {
	outcome := outcomeFeasible
	if !result.Feasible {
		outcome = outcomeInfeasible
		if it, ok := sc.Item(result.FailedItem); ok {
			s.metrics.RecordUnplaceable(it.Category.String())
		}
	}
	s.metrics.RecordSolve(endpoint, outcome, d)
	s.metrics.RecordPlacements(len(result.Placements))
}
