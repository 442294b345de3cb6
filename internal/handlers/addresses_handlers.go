package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freechain/poa-explorer/api"
	"github.com/freechain/poa-explorer/internal/common"
	"github.com/freechain/poa-explorer/internal/storage"
)

// GetAddress returns an address with its synced balance.
func (s *Server) GetAddress(c *gin.Context) {
	hash, err := common.ParseAddressHash(c.Param("hash"))
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

	address, err := s.store.AddressByHash(c.Request.Context(), hash)
	if err != nil {
		handleQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, address.Serialize())
}

// GetAddressTransactions lists an address's history in one direction,
// ?direction=from for sent and ?direction=to for received (the default).
func (s *Server) GetAddressTransactions(c *gin.Context) {
	hash, err := common.ParseAddressHash(c.Param("hash"))
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return
	}

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
	switch c.DefaultQuery("direction", "to") {
	case "from":
		page, err = s.store.TransactionsFromAddress(c.Request.Context(), hash, queryParams.PageParams(), preloads...)
	case "to":
		page, err = s.store.TransactionsToAddress(c.Request.Context(), hash, queryParams.PageParams(), preloads...)
	default:
		api.BadRequestErrorHandler(c, &common.ValidationError{Field: "direction", Reason: `direction must be "from" or "to"`})
		return
	}
	if err != nil {
		handleQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PageResponse{Entries: serializeTransactions(page.Entries), Meta: page.Meta})
}
