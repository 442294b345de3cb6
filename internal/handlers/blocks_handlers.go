package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freechain/poa-explorer/api"
	"github.com/freechain/poa-explorer/internal/common"
	"github.com/freechain/poa-explorer/internal/storage"
)

// GetBlocks lists blocks by descending number.
func (s *Server) GetBlocks(c *gin.Context) {
	queryParams, err := api.ParseQueryParams(c.Request)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	page, err := s.store.ListBlocks(c.Request.Context(), queryParams.PageParams())
	if err != nil {
		handleQueryError(c, err)
		return
	}

	entries := make([]common.BlockModel, len(page.Entries))
	for i, block := range page.Entries {
		entries[i] = block.Serialize()
	}
	c.JSON(http.StatusOK, api.PageResponse{Entries: entries, Meta: page.Meta})
}

// GetBlockByNumber returns a single block at the given height.
func (s *Server) GetBlockByNumber(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		api.BadRequestErrorHandler(c, &common.ValidationError{Field: "number", Reason: "block number must be an integer"})
		return
	}

	block, err := s.store.BlockByNumber(c.Request.Context(), number)
	if err != nil {
		handleQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, block.Serialize())
}

// GetBlockTransactions lists the transactions collated into a block.
func (s *Server) GetBlockTransactions(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		api.BadRequestErrorHandler(c, &common.ValidationError{Field: "number", Reason: "block number must be an integer"})
		return
	}

	queryParams, err := api.ParseQueryParams(c.Request)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	page, err := s.store.TransactionsByBlockNumber(c.Request.Context(), number, queryParams.PageParams(),
		storage.Preload{Relation: "block", Necessity: storage.Required},
		storage.Preload{Relation: "receipt", Necessity: storage.Optional})
	if err != nil {
		handleQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PageResponse{Entries: serializeTransactions(page.Entries), Meta: page.Meta})
}
