package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect selects the SQL flavour used by the collection store.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// Open connects to MySQL or PostgreSQL and verifies the connection.
func Open(dialect Dialect, user, pass, host, port, name string) (*sql.DB, error) {
	var driver, dsn string
	switch dialect {
	case MySQL:
		auth := user
		if pass != "" {
			auth = fmt.Sprintf("%s:%s", user, pass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		driver = "mysql"
		dsn = fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, host, port, name)
	case Postgres:
		driver = "pgx"
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(user, pass),
			Host:     host + ":" + port,
			Path:     "/" + name,
			RawQuery: "sslmode=disable",
		}
		if pass == "" {
			u.User = url.User(user)
		}
		dsn = u.String()
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the record_collections table if it is missing. Each
// row holds one whole collection (trains, users) as a JSON array.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var ddl string
	switch dialect {
	case MySQL:
		ddl = `CREATE TABLE IF NOT EXISTS record_collections (
		         name       VARCHAR(64) NOT NULL PRIMARY KEY,
		         body       LONGTEXT    NOT NULL,
		         updated_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP
		       ) CHARACTER SET utf8mb4`
	case Postgres:
		ddl = `CREATE TABLE IF NOT EXISTS record_collections (
		         name       VARCHAR(64) PRIMARY KEY,
		         body       TEXT        NOT NULL,
		         updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		       )`
	default:
		return fmt.Errorf("unsupported database dialect %q", dialect)
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}
