// Package gormdb implements the repository interfaces on GORM over
// embedded SQLite.
//
// WHY AN ORM HERE?
// The data model is four related record types (belongs-to and
// many-to-many). With database/sql that means hand-written JOINs and
// join-table bookkeeping for every query; GORM declares the relations
// once on the model structs and Preload does the rest. AutoMigrate
// reconciles the schema with the structs at startup, so adding a field
// to a model and restarting is the whole migration story.
//
// The SQLite driver is github.com/glebarez/sqlite, a pure-Go GORM
// dialector over the modernc.org SQLite translation. No CGo, so the
// binary still cross-compiles everywhere Go runs.
package gormdb

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/wabain/codekeeper/internal/model"
)

// DB owns the GORM connection and hands it to the per-entity
// repositories created from it.
type DB struct {
	conn *gorm.DB
}

// Open opens (or creates) the SQLite database at path, applies the
// session pragmas, and migrates the schema to match the model structs.
//
// Use ":memory:" for a throwaway database in tests.
func Open(path string, log *slog.Logger) (*DB, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("gormdb: opening database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("gormdb: unwrapping connection pool: %w", err)
	}

	// SQLite allows one writer at a time. A single pooled connection
	// serializes writers ahead of the database lock, and it is the
	// reason the per-session pragmas below cover every query. It also
	// keeps a ":memory:" database alive between calls, since each new
	// pool connection would otherwise start its own empty database.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("gormdb: pinging database: %w", err)
	}

	// WAL lets readers proceed during a write. Foreign keys are off by
	// default in SQLite and the relations here depend on them.
	if err := conn.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("gormdb: setting WAL mode: %w", err)
	}
	if err := conn.Exec("PRAGMA foreign_keys=ON").Error; err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("gormdb: enabling foreign keys: %w", err)
	}

	// AutoMigrate creates missing tables, columns, and indexes. It
	// never drops anything, so it is safe to run on every startup.
	if err := conn.AutoMigrate(
		&model.Person{},
		&model.Tag{},
		&model.Language{},
		&model.Snippet{},
		&model.User{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("gormdb: migrating schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return fmt.Errorf("gormdb: unwrapping connection pool: %w", err)
	}
	return sqlDB.Close()
}
