package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB wraps a SQL connection plus the dialect it speaks. SQLite is the
// default local backend; the same store runs on PostgreSQL and MySQL by
// switching the driver.
type DB struct {
	conn   *sql.DB
	driver string
}

// Open connects using driver ("sqlite", "postgres", "mysql") and dsn, and
// runs migrations. For SQLite the dsn is a file path; parent directories
// are created as needed.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// SQLite only supports one writer — a single connection prevents
		// SQLITE_BUSY under concurrent autosaves.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, driver: driver}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// rebind rewrites `?` placeholders to the dialect's form. SQLite and
// MySQL take the query as-is; PostgreSQL wants $1..$n.
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) migrate() error {
	text := "TEXT"
	if db.driver == "mysql" {
		// MySQL cannot index a bare TEXT primary key.
		text = "VARCHAR(64)"
	}
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sessions (
			id %s PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, text),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS nodes (
			id %[1]s NOT NULL,
			session_id %[1]s NOT NULL,
			title TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (session_id, id)
		)`, text),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS blocks (
			session_id %[1]s NOT NULL,
			node_id %[1]s NOT NULL,
			ord INTEGER NOT NULL,
			type TEXT NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (session_id, node_id, ord)
		)`, text),
	}
	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}
