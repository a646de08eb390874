// Package httpapi implements the HTTP surface: one route per operation the
// CLI also exposes, all built on the same orchestrator/writer/similarity
// components so the two surfaces can never drift in behavior.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cheminee/search-engine/internal/cluster"
	"github.com/cheminee/search-engine/internal/indexmgr"
	"github.com/cheminee/search-engine/internal/infrastructure/messaging/kafka"
	"github.com/cheminee/search-engine/internal/infrastructure/search/opensearch"
	"github.com/cheminee/search-engine/internal/kernel"
	"github.com/cheminee/search-engine/internal/logging"
	"github.com/cheminee/search-engine/internal/molprep"
	"github.com/cheminee/search-engine/internal/scaffold"
	"github.com/cheminee/search-engine/internal/writer"
)

// Config holds the request-scoped defaults the handlers fall back to when a
// caller omits a tunable.
type Config struct {
	Writer          writer.Config
	SearchPercent   float64
	TanimotoMinimum float64
	ResultLimit     int
}

// Server bundles every component the HTTP routes dispatch into. It holds no
// per-request state, so one Server backs the whole process.
type Server struct {
	Engine    *kernel.Engine
	Preparer  *molprep.Preparer
	Scaffolds *scaffold.Registry
	Indexes   *indexmgr.Manager
	Searcher  *opensearch.Searcher
	Indexer   *opensearch.Indexer
	Producer  *kafka.Producer // nil disables bulk_index/bulk_delete change notifications
	Encoder   cluster.Encoder
	Cfg       Config
	Logger    logging.Logger
	metrics   *requestMetrics
}

// Router builds the complete route tree for the search engine's API,
// wrapped in an OpenTelemetry span per request so the query pipeline's
// internal spans (C8-C11) attach to a request-scoped trace.
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.loggingMiddleware())
	r.Use(s.metricsMiddleware())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(s.metricsHandler()))

	api := r.Group("/api/v1")
	{
		api.POST("/standardize", s.handleStandardize)
		api.POST("/convert/mol_block_to_smiles", s.handleMolBlockToSMILES)
		api.POST("/convert/smiles_to_mol_block", s.handleSMILESToMolBlock)
		api.GET("/schemas", s.handleListSchemas)

		api.GET("/indexes", s.handleListIndexes)
		ix := api.Group("/indexes/:name")
		{
			ix.GET("", s.handleGetIndex)
			ix.POST("", s.handleCreateIndex)
			ix.DELETE("", s.handleDeleteIndex)
			ix.POST("/merge", s.handleMergeIndex)
			ix.POST("/bulk_index", s.handleBulkIndex)
			ix.DELETE("/bulk_delete", s.handleBulkDelete)

			search := ix.Group("/search")
			{
				search.GET("/basic", s.handleBasicSearch)
				search.GET("/identity", s.handleIdentitySearch)
				search.GET("/substructure", s.handleSubstructureSearch)
				search.GET("/superstructure", s.handleSuperstructureSearch)
				search.GET("/similarity", s.handleSimilaritySearch)
			}
		}
	}

	return otelhttp.NewHandler(r, "cheminee.http")
}

// loggingMiddleware logs each request's method, path, status, and latency
// through the structured logger every other component uses, rather than
// gin's default Logger() writer.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if s.Logger == nil {
			return
		}
		s.Logger.Info("request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()))
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) newWriter(indexName string) *writer.Writer {
	return writer.New(indexName, s.Preparer, s.Scaffolds, s.Indexer, s.Producer, s.Cfg.Writer, s.Logger)
}
