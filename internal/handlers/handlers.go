package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/freechain/poa-explorer/api"
	"github.com/freechain/poa-explorer/internal/cache"
	"github.com/freechain/poa-explorer/internal/common"
	"github.com/freechain/poa-explorer/internal/storage"
)

// Server bundles the read-side dependencies of the HTTP endpoints.
type Server struct {
	store *storage.PostgresConnector
	stats *cache.StatsCache
}

func NewServer(store *storage.PostgresConnector, stats *cache.StatsCache) *Server {
	return &Server{store: store, stats: stats}
}

// handleQueryError maps the storage error taxonomy onto HTTP statuses:
// validation failures are the caller's fault, missing rows are a normal 404,
// everything else is a store failure worth logging.
func handleQueryError(c *gin.Context, err error) {
	var validation *common.ValidationError
	if errors.As(err, &validation) {
		api.BadRequestErrorHandler(c, validation)
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		api.NotFoundErrorHandler(c)
		return
	}
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Query failed")
	api.InternalErrorHandler(c)
}
