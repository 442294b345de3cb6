package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freechain/poa-explorer/api"
	"github.com/freechain/poa-explorer/internal/common"
	"github.com/freechain/poa-explorer/internal/storage"
)

// GetTransactions lists collated transactions, newest first. With
// ?pending=true it lists transactions not yet included in a block instead.
func (s *Server) GetTransactions(c *gin.Context) {
	queryParams, err := api.ParseQueryParams(c.Request)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	preloads := []storage.Preload{
		{Relation: "block", Necessity: storage.Optional},
		{Relation: "receipt", Necessity: storage.Optional},
	}

	var page *storage.TransactionPage
	if c.Query("pending") == "true" {
		page, err = s.store.PendingTransactions(c.Request.Context(), queryParams.PageParams(), preloads...)
	} else {
		page, err = s.store.ListTransactions(c.Request.Context(), queryParams.PageParams(), preloads...)
	}
	if err != nil {
		handleQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PageResponse{Entries: serializeTransactions(page.Entries), Meta: page.Meta})
}

// GetTransactionByHash returns one transaction with its receipt, block and
// internal transactions attached.
func (s *Server) GetTransactionByHash(c *gin.Context) {
	hash, err := common.ParseFullHash(c.Param("hash"))
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	transaction, err := s.store.TransactionByHash(c.Request.Context(), hash,
		storage.Preload{Relation: "block", Necessity: storage.Optional},
		storage.Preload{Relation: "receipt", Necessity: storage.Optional},
		storage.Preload{Relation: "internal_transactions", Necessity: storage.Optional},
		storage.Preload{Relation: "logs", Necessity: storage.Optional})
	if err != nil {
		handleQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, transaction.Serialize())
}

func serializeTransactions(txs []*common.Transaction) []common.TransactionModel {
	models := make([]common.TransactionModel, len(txs))
	for i, transaction := range txs {
		models[i] = transaction.Serialize()
	}
	return models
}
