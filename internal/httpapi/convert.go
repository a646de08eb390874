package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cheminee/search-engine/internal/schema"
)

type standardizeRequest struct {
	SMILES     string `json:"smiles"`
	AttemptFix bool   `json:"attempt_fix"`
}

type standardizeResponse struct {
	SMILES string `json:"smiles"`
}

func (s *Server) handleStandardize(c *gin.Context) {
	var req standardizeRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	mol, err := s.Preparer.Standardize(req.SMILES, req.AttemptFix)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, standardizeResponse{SMILES: s.Engine.Canonicalize(mol)})
}

type molBlockRequest struct {
	MolBlock string `json:"mol_block"`
}

type smilesResponse struct {
	SMILES string `json:"smiles"`
}

func (s *Server) handleMolBlockToSMILES(c *gin.Context) {
	var req molBlockRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	mol, err := s.Engine.FromMolBlock(req.MolBlock)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, smilesResponse{SMILES: s.Engine.AsSMILES(mol)})
}

type smilesRequest struct {
	SMILES string `json:"smiles"`
}

type molBlockResponse struct {
	MolBlock string `json:"mol_block"`
}

func (s *Server) handleSMILESToMolBlock(c *gin.Context) {
	var req smilesRequest
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	mol, err := s.Engine.Parse(req.SMILES)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, molBlockResponse{MolBlock: s.Engine.ToMolBlock(mol)})
}

func (s *Server) handleListSchemas(c *gin.Context) {
	names := schema.List()
	defs := make([]schema.Definition, 0, len(names))
	for _, name := range names {
		def, _ := schema.Get(name)
		defs = append(defs, def)
	}
	c.JSON(http.StatusOK, defs)
}
