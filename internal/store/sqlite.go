package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/serroba/redirect-gateway/internal/gateway"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // remote libsql/Turso
	_ "modernc.org/sqlite"                               // embedded SQLite
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS tokens (
		token       TEXT PRIMARY KEY,
		destination TEXT NOT NULL,
		protected   INTEGER NOT NULL DEFAULT 0,
		created_at  INTEGER NOT NULL DEFAULT (CAST(strftime('%s', 'now') AS INTEGER) * 1000000000)
	)
`

// SQLiteStore is a gateway.Repository over an embedded SQLite file or a remote libsql database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens dsn, picking the libsql driver for remote URLs, and creates the schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	driverName := "sqlite"
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if driverName == "sqlite" {
		// In-memory databases exist per connection.
		db.SetMaxOpenConns(1)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	if _, err = db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, link *gateway.Link) error {
	query := `
		INSERT INTO tokens (token, destination, protected, created_at)
		VALUES (?, ?, ?, COALESCE(?, CAST(strftime('%s', 'now') AS INTEGER) * 1000000000))
		ON CONFLICT (token) DO UPDATE
		SET destination = excluded.destination,
		    protected = excluded.protected,
		    created_at = excluded.created_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(link.Token),
		link.Destination,
		link.Protected,
		createdAtNanos(link.CreatedAt),
	)

	return err
}

func (s *SQLiteStore) Get(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	query := `SELECT token, destination, protected, created_at FROM tokens WHERE token = ?`

	return scanSQLiteLink(s.db.QueryRowContext(ctx, query, string(token)))
}

func (s *SQLiteStore) Delete(ctx context.Context, token gateway.Token) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, string(token))

	return err
}

func (s *SQLiteStore) Take(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	query := `DELETE FROM tokens WHERE token = ? RETURNING token, destination, protected, created_at`

	return scanSQLiteLink(s.db.QueryRowContext(ctx, query, string(token)))
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database handle.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

// createdAtNanos leaves a zero time NULL so the column default applies.
func createdAtNanos(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func scanSQLiteLink(row *sql.Row) (*gateway.Link, error) {
	var (
		token     string
		link      gateway.Link
		createdAt int64
	)

	err := row.Scan(&token, &link.Destination, &link.Protected, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gateway.ErrNotFound
		}

		return nil, err
	}

	link.Token = gateway.Token(token)
	link.CreatedAt = time.Unix(0, createdAt).UTC()

	return &link, nil
}

var _ gateway.Repository = (*SQLiteStore)(nil)
