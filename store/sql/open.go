package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-fusionauth/core"
	fusionmigrations "github.com/goliatone/go-fusionauth/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

type persistenceConfig struct {
	driver string
	server string
	debug  bool
}

func (c persistenceConfig) GetDebug() bool {
	return c.debug
}

func (c persistenceConfig) GetDriver() string {
	return c.driver
}

func (c persistenceConfig) GetServer() string {
	return c.server
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return core.DefaultServiceName
}

// Open connects to the configured ledger database. Only the sqlite3 and
// postgres drivers are persistent; the memory driver has no database.
func Open(cfg core.StoreConfig) (*persistence.Client, error) {
	driver := strings.TrimSpace(cfg.Driver)
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, core.NewBadInputError("sqlstore: store dsn is required")
	}

	var dialect schema.Dialect
	switch driver {
	case core.StoreDriverSQLite:
		dialect = sqlitedialect.New()
	case core.StoreDriverPostgres:
		dialect = pgdialect.New()
	default:
		return nil, core.NewBadInputError(fmt.Sprintf("sqlstore: driver %q has no sql database", driver))
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == core.StoreDriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	client, err := persistence.New(persistenceConfig{driver: driver, server: dsn}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	return client, nil
}

// Migrate registers the embedded migrations for the client's dialect and
// applies them.
func Migrate(ctx context.Context, client *persistence.Client, driver string) error {
	if client == nil {
		return fmt.Errorf("sqlstore: persistence client is required")
	}
	_, err := fusionmigrations.Apply(ctx, driver, func(fsys fs.FS) {
		client.RegisterSQLMigrations(fsys)
	}, client.Migrate)
	return err
}
