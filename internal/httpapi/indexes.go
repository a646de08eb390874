package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cheminee/search-engine/internal/writer"
	"github.com/cheminee/search-engine/pkg/errors"
)

func (s *Server) handleListIndexes(c *gin.Context) {
	handles, err := s.Indexes.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, handles)
}

func (s *Server) handleGetIndex(c *gin.Context) {
	name := c.Param("name")
	handle, err := s.Indexes.Open(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, handle)
}

func (s *Server) handleCreateIndex(c *gin.Context) {
	name := c.Param("name")
	schemaName := c.Query("schema")
	if schemaName == "" {
		writeError(c, errors.ValidationFailed("query parameter \"schema\" is required"))
		return
	}
	sortBy := c.Query("sort_by")
	force := queryBool(c, "force", false)

	handle, err := s.Indexes.Create(c.Request.Context(), name, schemaName, force, sortBy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handle)
}

func (s *Server) handleDeleteIndex(c *gin.Context) {
	name := c.Param("name")
	if err := s.Indexes.Delete(c.Request.Context(), name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) handleMergeIndex(c *gin.Context) {
	name := c.Param("name")
	if err := s.Indexes.Merge(c.Request.Context(), name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "merged"})
}

type bulkIndexRecord struct {
	SMILES    string                 `json:"smiles"`
	ExtraData map[string]interface{} `json:"extra_data"`
}

type bulkIndexRequest struct {
	Records []bulkIndexRecord `json:"records"`
}

func (s *Server) handleBulkIndex(c *gin.Context) {
	name := c.Param("name")
	if _, err := s.Indexes.Open(c.Request.Context(), name); err != nil {
		writeError(c, err)
		return
	}

	var req bulkIndexRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	records := make([]writer.Record, len(req.Records))
	for i, rec := range req.Records {
		records[i] = writer.Record{SMILES: rec.SMILES, ExtraData: rec.ExtraData}
	}

	result, err := s.newWriter(name).AddRecords(c.Request.Context(), records)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type bulkDeleteRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleBulkDelete(c *gin.Context) {
	name := c.Param("name")
	if _, err := s.Indexes.Open(c.Request.Context(), name); err != nil {
		writeError(c, err)
		return
	}

	var req bulkDeleteRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	if req.Query == "" {
		writeError(c, errors.ValidationFailed("\"query\" must not be empty"))
		return
	}

	deleted, err := s.newWriter(name).DeleteByQueryString(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
