// Package database centralises sqlx connection helpers for the optional
// snapshot store.  The default driver is go-sql-driver/mysql, which also
// works with MariaDB when configured for the MySQL wire protocol.
//
// Both helpers Ping the database before returning so callers fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Open returns a *sqlx.DB with conservative defaults: 10 max open, 3 idle,
// and a 30-minute connection lifetime.  The snapshot store touches the pool
// only at startup and shutdown, so small numbers are plenty.
func Open(dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(dsn, 10, 3)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle per pool.
func OpenWithOptions(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
