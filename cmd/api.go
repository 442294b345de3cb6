package cmd

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "github.com/freechain/poa-explorer/configs"
	"github.com/freechain/poa-explorer/internal/cache"
	"github.com/freechain/poa-explorer/internal/handlers"
	"github.com/freechain/poa-explorer/internal/middleware"
	"github.com/freechain/poa-explorer/internal/storage"
)

var (
	apiCmd = &cobra.Command{
		Use:   "api",
		Short: "Serve the explorer HTTP API",
		Long:  "Serve block, transaction, address and chain stats queries over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			RunApi(cmd, args)
		},
	}
)

func RunApi(cmd *cobra.Command, args []string) {
	store, err := storage.NewPostgresConnector(&config.Cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer store.Close()

	statsCache, err := cache.NewStatsCache(&config.Cfg.Redis, time.Duration(config.Cfg.Stats.CacheTTL)*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer statsCache.Close()

	server := handlers.NewServer(store, statsCache)

	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())

	r.GET("/blocks", server.GetBlocks)
	r.GET("/blocks/:number", server.GetBlockByNumber)
	r.GET("/blocks/:number/transactions", server.GetBlockTransactions)
	r.GET("/transactions", server.GetTransactions)
	r.GET("/transactions/:hash", server.GetTransactionByHash)
	r.GET("/addresses/:hash", server.GetAddress)
	r.GET("/addresses/:hash/transactions", server.GetAddressTransactions)
	r.GET("/stats", server.GetStats)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		if err := store.DB().PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.String(http.StatusOK, "ok")
	})

	apiHost := config.Cfg.API.Host
	if apiHost == "" {
		apiHost = ":3000"
	}
	log.Info().Msgf("Starting API server on %s", apiHost)
	if err := r.Run(apiHost); err != nil {
		log.Fatal().Err(err).Msg("API server stopped")
	}
}
