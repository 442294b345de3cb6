package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/freechain/poa-explorer/db"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  "Apply any pending Postgres schema migrations",
		Run: func(cmd *cobra.Command, args []string) {
			RunMigrate(cmd, args)
		},
	}
)

func RunMigrate(cmd *cobra.Command, args []string) {
	if err := db.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Migrations failed")
	}
}
