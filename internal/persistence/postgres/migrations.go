package postgres

import (
	"database/sql"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"
)

// Migrations are applied by the api binary at startup (POSTGRES_AUTO_MIGRATE)
// or by the migrate tool.

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrationSource = &migrate.EmbedFileSystemMigrationSource{
	FileSystem: migrationFiles,
	Root:       "migrations",
}

// Upgrade applies every pending migration and returns how many ran.
func Upgrade(db *sql.DB) (int, error) {
	return migrate.Exec(db, "postgres", migrationSource, migrate.Up)
}

// Drop runs all migrations in reverse, dropping every table.
func Drop(db *sql.DB) (int, error) {
	return migrate.Exec(db, "postgres", migrationSource, migrate.Down)
}

// Status lists the applied migration ids and the ones still pending.
func Status(db *sql.DB) (applied []string, pending []string, err error) {
	records, err := migrate.GetMigrationRecords(db, "postgres")
	if err != nil {
		return nil, nil, err
	}
	done := make(map[string]bool, len(records))
	for _, rec := range records {
		done[rec.Id] = true
		applied = append(applied, rec.Id)
	}

	all, err := migrationSource.FindMigrations()
	if err != nil {
		return nil, nil, err
	}
	for _, m := range all {
		if !done[m.Id] {
			pending = append(pending, m.Id)
		}
	}
	return applied, pending, nil
}

// UpgradePool runs Upgrade over a database/sql view of the pool.
func UpgradePool(pool *pgxpool.Pool) (int, error) {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return Upgrade(db)
}
