// Package sqlite implements the credential store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// Pool sizes. Registrations serialise on the single writer; sign-in lookups
// use the reader pool.
const (
	maxWriters = 1
	maxReaders = 4
)

// DB holds separate writer and reader pools over one SQLite database.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens the database file at dbPath in WAL mode, creating it if needed.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	db, err := openDB(ctx, buildDSN(dbPath, nil, "journal_mode(WAL)"))
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", dbPath, err)
	}
	db.path = dbPath
	return db, nil
}

// buildDSN assembles a modernc file: DSN. Every connection gets a busy
// timeout so the reader pool waits out a registration instead of failing.
func buildDSN(name string, params url.Values, pragmas ...string) string {
	pragmas = append([]string{"busy_timeout(5000)", "synchronous(NORMAL)"}, pragmas...)

	query := make([]string, 0, len(params)+len(pragmas))
	for key := range params {
		query = append(query, key+"="+params.Get(key))
	}
	for _, p := range pragmas {
		query = append(query, "_pragma="+p)
	}
	return "file:" + name + "?" + strings.Join(query, "&")
}

func openDB(ctx context.Context, dsn string) (*DB, error) {
	writer, err := openPool(ctx, dsn, maxWriters)
	if err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}

	reader, err := openPool(ctx, dsn, maxReaders)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader}, nil
}

func openPool(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxConns)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

// Path returns the database file path the connections were opened with.
func (db *DB) Path() string { return db.path }

// Close closes both pools and returns the first error.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}
