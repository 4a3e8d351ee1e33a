package app

import (
	"context"
	"fmt"

	"github.com/logbot/logbot/internal/config"
	"github.com/logbot/logbot/internal/logstore"
)

// OpenStore opens the configured log store. SQL stores that are writable
// are migrated first; guard caps BigQuery scans.
func OpenStore(ctx context.Context, cfg *config.Config, guard logstore.CostGuard) (logstore.Executor, error) {
	switch cfg.StoreDriver {
	case "sqlite", "postgres":
		exec, err := OpenSQLStore(cfg, cfg.SQLiteReadOnly)
		if err != nil {
			return nil, err
		}
		if !(cfg.StoreDriver == "sqlite" && cfg.SQLiteReadOnly) {
			if err := logstore.Migrate(exec.DB(), GooseDialect(cfg.StoreDriver)); err != nil {
				_ = exec.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return exec, nil
	case "bigquery":
		return logstore.NewBigQueryExecutor(ctx, cfg.GCPProjectID, cfg.BigQueryDataset,
			cfg.GoogleApplicationCredentials, cfg.BigQueryLocation, cfg.BigQueryTimeout, guard)
	case "elasticsearch":
		return logstore.NewElasticsearchExecutor(logstore.ElasticsearchConfig{
			Scheme:      cfg.ElasticsearchScheme,
			Host:        cfg.ElasticsearchHost,
			Port:        cfg.ElasticsearchPort,
			User:        cfg.ElasticsearchUser,
			Password:    cfg.ElasticsearchPassword,
			VerifyCerts: cfg.ElasticsearchVerifyCerts,
			MaxRetries:  cfg.ElasticsearchMaxRetries,
			FetchSize:   cfg.ElasticsearchFetchSize,
		})
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// OpenSQLStore opens the SQLite or Postgres store without migrating it.
func OpenSQLStore(cfg *config.Config, readOnly bool) (*logstore.SQLExecutor, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return logstore.NewSQLiteExecutor(cfg.SQLitePath, readOnly)
	case "postgres":
		return logstore.NewPostgresExecutor(cfg.PostgresDSN, cfg.PostgresMaxOpen)
	}
	return nil, fmt.Errorf("store driver %q does not support migrations or imports", cfg.StoreDriver)
}

// GooseDialect maps a store driver to its goose dialect name.
func GooseDialect(driver string) string {
	if driver == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}
