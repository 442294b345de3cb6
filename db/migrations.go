package db

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	config "github.com/freechain/poa-explorer/configs"
)

func RunMigrations() error {
	cfg := &config.Cfg.Postgres
	if cfg.Host == "" {
		return fmt.Errorf("postgres host is not configured")
	}

	log.Info().Msgf("Running Postgres migrations on %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	m, err := migrate.New("file://db/migrations", migrationURL(cfg))
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	log.Info().Msg("Postgres migrations completed")
	return nil
}

func migrationURL(cfg *config.PostgresConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Database,
		sslMode,
	)
}
