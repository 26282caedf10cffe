package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/core/graph"
	"github.com/agenthands/stargraph/internal/dataset"
	"github.com/agenthands/stargraph/internal/driver"
	"github.com/agenthands/stargraph/internal/metrics"
)

type Server struct {
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	// Exporter is nil when no graph database is configured.
	Exporter *driver.Exporter
}

func NewServer(log *zap.Logger, exporter *driver.Exporter) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	return &Server{
		Log:      log,
		Metrics:  metrics.New(reg),
		Registry: reg,
		Exporter: exporter,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))

	graphs := r.Group("/graphs")
	graphs.POST("/generate", s.Generate)
	graphs.POST("/render", s.Render)
	graphs.POST("/latest", s.Latest)
	graphs.POST("/stats", s.Stats)
	graphs.POST("/export", s.Export)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type GenerateRequest struct {
	Entities  int     `json:"entities" binding:"required,gte=1,lte=10000"`
	Relations int     `json:"relations" binding:"required,gte=1,lte=10000"`
	StartYear int     `json:"start_year" binding:"required,gte=1,lte=9999"`
	EndYear   int     `json:"end_year" binding:"required,gte=1,lte=9999,gtfield=StartYear"`
	Seed      *uint64 `json:"seed"`
}

func (s *Server) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	graphs, err := dataset.Generate(dataset.GenerateOptions{
		Entities:  req.Entities,
		Relations: req.Relations,
		StartYear: req.StartYear,
		EndYear:   req.EndYear,
		NGraphs:   1,
	}, graph.NewRand(req.Seed), s.Log)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Metrics.GraphsGenerated.Inc()
	c.JSON(http.StatusOK, graphs[0].Record())
}

type GraphRequest struct {
	Graph graph.GraphRecord `json:"graph" binding:"required"`
}

type RenderRequest struct {
	Graph    graph.GraphRecord `json:"graph" binding:"required"`
	Strategy string            `json:"strategy"`
	Seed     *uint64           `json:"seed"`
}

type RenderResponse struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}

func (s *Server) Render(c *gin.Context) {
	var req RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Strategy == "" {
		req.Strategy = graph.AsIs.String()
	}
	strategy, err := graph.ParseStrategy(req.Strategy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, ok := s.bindGraph(c, req.Graph)
	if !ok {
		return
	}

	lines, err := g.Render(strategy, graph.NewRand(req.Seed))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if lines == nil {
		lines = []string{}
	}

	s.Metrics.Renders.WithLabelValues(strategy.String()).Inc()
	c.JSON(http.StatusOK, RenderResponse{Lines: lines, Text: strings.Join(lines, "\n")})
}

func (s *Server) Latest(c *gin.Context) {
	var req GraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, ok := s.bindGraph(c, req.Graph)
	if !ok {
		return
	}

	latest := make(map[string]string)
	for relType, rel := range g.AllLatest() {
		latest[relType] = rel.Name
	}
	c.JSON(http.StatusOK, gin.H{"latest": latest})
}

func (s *Server) Stats(c *gin.Context) {
	var req GraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, ok := s.bindGraph(c, req.Graph)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dataset.StatsOf(g))
}

type ExportRequest struct {
	GraphID int               `json:"graph_id" binding:"gte=0"`
	Graph   graph.GraphRecord `json:"graph" binding:"required"`
}

func (s *Server) Export(c *gin.Context) {
	if s.Exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no graph database configured"})
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, ok := s.bindGraph(c, req.Graph)
	if !ok {
		return
	}

	centerUUID, err := s.Exporter.Export(c.Request.Context(), req.GraphID, g)
	if err != nil {
		s.Log.Error("failed to export graph", zap.Int("graph_id", req.GraphID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export graph"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"center_uuid": centerUUID})
}

// bindGraph rebuilds a graph from its record, answering 400 when the
// record is corrupt.
func (s *Server) bindGraph(c *gin.Context, rec graph.GraphRecord) (*graph.StarGraph, bool) {
	g, err := graph.FromRecord(rec)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, graph.ErrCorruptGraph) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return g, true
}
