// Package migrations exposes the embedded event ledger schema per SQL dialect.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	fusionauth "github.com/goliatone/go-fusionauth"
	"github.com/goliatone/go-fusionauth/core"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const rootDir = "data/sql/migrations"

// Tables are the ledger tables created by the up migrations.
var Tables = []string{"fusionauth_trigger_events", "fusionauth_trigger_claims"}

// Migration is one versioned up/down pair.
type Migration struct {
	Version string
	Name    string
	Up      string
	Down    string
}

// Schema is the migration set of a single dialect.
type Schema struct {
	Dialect    string
	Path       string
	FS         fs.FS
	Migrations []Migration
}

// Versions returns the migration versions in apply order.
func (s Schema) Versions() []string {
	out := make([]string, 0, len(s.Migrations))
	for _, migration := range s.Migrations {
		out = append(out, migration.Version)
	}
	return out
}

// DialectFor maps a store driver name to its migration dialect.
func DialectFor(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case core.StoreDriverSQLite, DialectSQLite:
		return DialectSQLite, nil
	case core.StoreDriverPostgres, "pg", "postgresql":
		return DialectPostgres, nil
	default:
		return "", core.NewBadInputError(fmt.Sprintf("migrations: driver %q has no sql schema", driver))
	}
}

// Load reads the migration set for dialect. The embedded tree is used unless
// a root is passed.
func Load(dialect string, roots ...fs.FS) (Schema, error) {
	root := fusionauth.GetMigrationsFS()
	if len(roots) > 0 && roots[0] != nil {
		root = roots[0]
	}
	dir := rootDir
	switch dialect {
	case DialectPostgres:
	case DialectSQLite:
		dir = path.Join(rootDir, DialectSQLite)
	default:
		return Schema{}, core.NewBadInputError(fmt.Sprintf("migrations: unknown dialect %q", dialect))
	}

	sub, err := fs.Sub(root, dir)
	if err != nil {
		return Schema{}, fmt.Errorf("migrations: resolve %s: %w", dir, err)
	}
	migrations, err := scan(sub)
	if err != nil {
		return Schema{}, fmt.Errorf("migrations: %s: %w", dialect, err)
	}
	return Schema{Dialect: dialect, Path: dir, FS: sub, Migrations: migrations}, nil
}

// LoadAll loads every dialect and checks they carry the same versions.
func LoadAll(roots ...fs.FS) ([]Schema, error) {
	var out []Schema
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		schema, err := Load(dialect, roots...)
		if err != nil {
			return nil, err
		}
		out = append(out, schema)
	}
	want := strings.Join(out[0].Versions(), ",")
	for _, schema := range out[1:] {
		if got := strings.Join(schema.Versions(), ","); got != want {
			return nil, fmt.Errorf("migrations: %s versions [%s] differ from %s [%s]",
				schema.Dialect, got, out[0].Dialect, want)
		}
	}
	return out, nil
}

// Apply hands the schema for driver to register and then runs migrate.
func Apply(ctx context.Context, driver string, register func(fs.FS), migrate func(context.Context) error) (Schema, error) {
	if register == nil || migrate == nil {
		return Schema{}, fmt.Errorf("migrations: register and migrate funcs are required")
	}
	dialect, err := DialectFor(driver)
	if err != nil {
		return Schema{}, err
	}
	schema, err := Load(dialect)
	if err != nil {
		return Schema{}, err
	}
	register(schema.FS)
	if err := migrate(ctx); err != nil {
		return schema, fmt.Errorf("migrations: apply %s: %w", dialect, err)
	}
	return schema, nil
}

func scan(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	byVersion := map[string]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		file := entry.Name()
		base, direction, ok := splitDirection(file)
		if !ok {
			return nil, fmt.Errorf("file %q is not an .up.sql or .down.sql migration", file)
		}
		version, name, _ := strings.Cut(base, "_")
		if version == "" || name == "" {
			return nil, fmt.Errorf("file %q has no version prefix", file)
		}
		migration := byVersion[version]
		if migration == nil {
			migration = &Migration{Version: version, Name: name}
			byVersion[version] = migration
		}
		if migration.Name != name {
			return nil, fmt.Errorf("version %s names both %q and %q", version, migration.Name, name)
		}
		if direction == "up" {
			migration.Up = file
		} else {
			migration.Down = file
		}
	}
	if len(byVersion) == 0 {
		return nil, fmt.Errorf("no migrations found")
	}

	out := make([]Migration, 0, len(byVersion))
	for _, migration := range byVersion {
		if migration.Up == "" || migration.Down == "" {
			return nil, fmt.Errorf("version %s is missing its up or down file", migration.Version)
		}
		out = append(out, *migration)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func splitDirection(file string) (string, string, bool) {
	if base, ok := strings.CutSuffix(file, ".up.sql"); ok {
		return base, "up", true
	}
	if base, ok := strings.CutSuffix(file, ".down.sql"); ok {
		return base, "down", true
	}
	return "", "", false
}
