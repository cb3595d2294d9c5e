package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/redirect-gateway/internal/gateway"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS tokens (
		token       TEXT PRIMARY KEY,
		destination TEXT NOT NULL,
		protected   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore is a PostgreSQL implementation of gateway.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed token store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tokens table if it is missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchema)

	return err
}

func (p *PostgresStore) Put(ctx context.Context, link *gateway.Link) error {
	query := `
		INSERT INTO tokens (token, destination, protected, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE
		SET destination = EXCLUDED.destination,
		    protected = EXCLUDED.protected,
		    created_at = EXCLUDED.created_at
	`

	_, err := p.pool.Exec(ctx, query,
		string(link.Token),
		link.Destination,
		link.Protected,
		link.CreatedAt,
	)

	return err
}

func (p *PostgresStore) Get(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	query := `
		SELECT token, destination, protected, created_at
		FROM tokens
		WHERE token = $1
	`

	return scanLink(p.pool.QueryRow(ctx, query, string(token)))
}

func (p *PostgresStore) Delete(ctx context.Context, token gateway.Token) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM tokens WHERE token = $1`, string(token))

	return err
}

func (p *PostgresStore) Take(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	query := `
		DELETE FROM tokens
		WHERE token = $1
		RETURNING token, destination, protected, created_at
	`

	return scanLink(p.pool.QueryRow(ctx, query, string(token)))
}

func scanLink(row pgx.Row) (*gateway.Link, error) {
	var (
		link  gateway.Link
		token string
	)

	err := row.Scan(&token, &link.Destination, &link.Protected, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.ErrNotFound
		}

		return nil, err
	}

	link.Token = gateway.Token(token)

	return &link, nil
}

var _ gateway.Repository = (*PostgresStore)(nil)
