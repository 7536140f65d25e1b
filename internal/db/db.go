package db

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"regexp"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"
)

type DB struct {
	conn   *sql.DB
	driver string
}

// Connect opens a PostgreSQL connection.
func Connect(dsn string) (*DB, error) {
	conn, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	log.Println("[DB] Connected to PostgreSQL")
	return &DB{conn: conn, driver: driverPostgres}, nil
}

// OpenSQLite opens (or creates) a file-backed SQLite database. Used as the
// fallback store when no DATABASE_URL is configured.
func OpenSQLite(path string) (*DB, error) {
	conn, err := sql.Open(driverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}
	log.Printf("[DB] Using SQLite database at %s\n", path)
	return &DB{conn: conn, driver: driverSQLite}, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) Ping() error {
	return d.conn.Ping()
}

func (d *DB) Migrate() error {
	dir := "migrations/" + d.migrationDir()
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading migrations dir: %w", err)
	}

	for _, entry := range entries {
		content, err := migrationsFS.ReadFile(dir + "/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}
		if _, err := d.conn.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", entry.Name(), err)
		}
		log.Printf("[DB] Applied migration: %s\n", entry.Name())
	}
	return nil
}

func (d *DB) migrationDir() string {
	if d.driver == driverSQLite {
		return "sqlite"
	}
	return "postgres"
}

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// rebind rewrites $N placeholders to ? for SQLite. Queries bind their
// arguments in placeholder order, so positional rewriting is safe.
func (d *DB) rebind(query string) string {
	if d.driver != driverSQLite {
		return query
	}
	return placeholderPattern.ReplaceAllString(query, "?")
}
