package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "github.com/freechain/poa-explorer/configs"
	customLogger "github.com/freechain/poa-explorer/internal/log"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "explorer",
		Short: "Chain explorer backend",
		Long:  "Ingests chain data into Postgres and serves the explorer API",
		Run: func(cmd *cobra.Command, args []string) {
			RunApi(cmd, args)
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level to use for the application")
	rootCmd.PersistentFlags().Bool("log-prettify", false, "Whether to prettify the log output")
	rootCmd.PersistentFlags().String("api-host", "", "Host and port the API listens on")
	rootCmd.PersistentFlags().String("postgres-host", "", "Postgres host")
	rootCmd.PersistentFlags().Int("postgres-port", 5432, "Postgres port")
	rootCmd.PersistentFlags().String("postgres-username", "", "Postgres username")
	rootCmd.PersistentFlags().String("postgres-password", "", "Postgres password")
	rootCmd.PersistentFlags().String("postgres-database", "", "Postgres database")
	rootCmd.PersistentFlags().String("postgres-sslMode", "", "Postgres SSL mode")
	rootCmd.PersistentFlags().Bool("redis-enabled", false, "Toggle the Redis stats cache")
	rootCmd.PersistentFlags().String("redis-addr", "", "Redis address for the stats cache")
	rootCmd.PersistentFlags().Int("stats-cacheTtl", 10, "Chain stats cache TTL in seconds")
	rootCmd.PersistentFlags().Bool("publisher-enabled", false, "Toggle the Kafka block announcements")
	rootCmd.PersistentFlags().String("publisher-brokers", "", "Kafka brokers for block announcements")
	rootCmd.PersistentFlags().String("publisher-topic", "", "Kafka topic for block announcements")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.prettify", rootCmd.PersistentFlags().Lookup("log-prettify"))
	viper.BindPFlag("api.host", rootCmd.PersistentFlags().Lookup("api-host"))
	viper.BindPFlag("postgres.host", rootCmd.PersistentFlags().Lookup("postgres-host"))
	viper.BindPFlag("postgres.port", rootCmd.PersistentFlags().Lookup("postgres-port"))
	viper.BindPFlag("postgres.username", rootCmd.PersistentFlags().Lookup("postgres-username"))
	viper.BindPFlag("postgres.password", rootCmd.PersistentFlags().Lookup("postgres-password"))
	viper.BindPFlag("postgres.database", rootCmd.PersistentFlags().Lookup("postgres-database"))
	viper.BindPFlag("postgres.sslMode", rootCmd.PersistentFlags().Lookup("postgres-sslMode"))
	viper.BindPFlag("redis.enabled", rootCmd.PersistentFlags().Lookup("redis-enabled"))
	viper.BindPFlag("redis.addr", rootCmd.PersistentFlags().Lookup("redis-addr"))
	viper.BindPFlag("stats.cacheTtl", rootCmd.PersistentFlags().Lookup("stats-cacheTtl"))
	viper.BindPFlag("publisher.enabled", rootCmd.PersistentFlags().Lookup("publisher-enabled"))
	viper.BindPFlag("publisher.brokers", rootCmd.PersistentFlags().Lookup("publisher-brokers"))
	viper.BindPFlag("publisher.topic", rootCmd.PersistentFlags().Lookup("publisher-topic"))
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
}

func initConfig() {
	if err := config.LoadConfig(cfgFile); err != nil {
		panic(err)
	}
	customLogger.InitLogger()
}
