package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cheminee/search-engine/internal/aggregate"
	"github.com/cheminee/search-engine/internal/orchestrator"
	"github.com/cheminee/search-engine/internal/search"
	"github.com/cheminee/search-engine/internal/similarity"
	"github.com/cheminee/search-engine/pkg/errors"
)

func (s *Server) handleBasicSearch(c *gin.Context) {
	name := c.Param("name")
	q := c.Query("query")
	if q == "" {
		writeError(c, errors.ValidationFailed("query parameter \"query\" is required"))
		return
	}
	limit := queryInt(c, "limit", s.defaultResultLimit())

	candidates, err := search.Basic(c.Request.Context(), s.Searcher, name, q, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func (s *Server) handleIdentitySearch(c *gin.Context) {
	s.handleStructureSearch(c, orchestrator.Identity)
}

func (s *Server) handleSubstructureSearch(c *gin.Context) {
	s.handleStructureSearch(c, orchestrator.Substructure)
}

func (s *Server) handleSuperstructureSearch(c *gin.Context) {
	s.handleStructureSearch(c, orchestrator.Superstructure)
}

func (s *Server) handleStructureSearch(c *gin.Context, qt orchestrator.QueryType) {
	name := c.Param("name")
	querySMILES := c.Query("smiles")
	if querySMILES == "" {
		writeError(c, errors.ValidationFailed("query parameter \"smiles\" is required"))
		return
	}

	opts := orchestrator.Options{
		ResultLimit:   queryInt(c, "result_limit", s.defaultResultLimit()),
		TautomerLimit: queryInt(c, "tautomer_limit", 0),
		UseScaffolds:  queryBool(c, "use_scaffolds", true),
		UseChirality:  queryBool(c, "use_chirality", false),
		ExtraQuery:    c.Query("extra_query"),
	}

	deps := orchestrator.Deps{
		Preparer:  s.Preparer,
		Scaffolds: s.Scaffolds,
		Searcher:  s.Searcher,
		Engine:    s.Engine,
	}

	result, err := orchestrator.Run(c.Request.Context(), deps, name, qt, querySMILES, opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, aggregate.FromStructureResult(result, querySMILES))
}

func (s *Server) handleSimilaritySearch(c *gin.Context) {
	name := c.Param("name")
	querySMILES := c.Query("smiles")
	if querySMILES == "" {
		writeError(c, errors.ValidationFailed("query parameter \"smiles\" is required"))
		return
	}

	prepped, err := s.Preparer.Process(querySMILES)
	if err != nil {
		writeError(c, err)
		return
	}

	opts := similarity.Options{
		TautomerLimit:   queryInt(c, "tautomer_limit", 0),
		SearchPercent:   queryFloat(c, "search_percent_limit", s.Cfg.SearchPercent),
		TanimotoMinimum: queryFloat(c, "tanimoto_minimum", s.Cfg.TanimotoMinimum),
		ResultLimit:     queryInt(c, "result_limit", s.defaultResultLimit()),
		ExtraQuery:      c.Query("extra_query"),
	}

	deps := similarity.Deps{
		Engine:   s.Engine,
		Searcher: s.Searcher,
		Encoder:  s.Encoder,
	}

	hits, err := similarity.Search(c.Request.Context(), deps, name, prepped.Mol, opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, aggregate.FromSimilarityHits(hits, querySMILES, opts.TautomerLimit > 0))
}

func (s *Server) defaultResultLimit() int {
	if s.Cfg.ResultLimit > 0 {
		return s.Cfg.ResultLimit
	}
	return 50
}
